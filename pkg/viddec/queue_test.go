package viddec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func chunk(b ...byte) *InputChunk {
	return &InputChunk{Data: b, Filled: len(b)}
}

func TestQueueCarry(t *testing.T) {
	var q Queue

	c1, c2, c3 := chunk(1, 2, 3, 4), chunk(5, 6), chunk(7, 8, 9)

	require.Nil(t, q.Admit(c1))
	require.Nil(t, q.Admit(c2))
	require.ErrorIs(t, q.Admit(c3), ErrQueueFull)

	require.Equal(t, [][]byte{{1, 2, 3, 4}, {5, 6}}, q.Ranges())
	require.Equal(t, 6, q.Outstanding())
	require.Equal(t, 2, q.LookaheadLen())

	spans, err := q.Span(1, 5)
	require.Nil(t, err)
	require.Equal(t, [][]byte{{2, 3, 4}, {5}}, spans)

	_, err = q.Span(0, 7)
	require.ErrorIs(t, err, ErrOverread)

	// head not drained, the rest goes to the carry buffer
	require.Same(t, c1, q.Commit(2))
	require.Equal(t, int64(2), q.Position())
	require.Equal(t, int64(2), q.Carried())
	require.Equal(t, 1, q.Len())
	require.Same(t, c2, q.Head())
	require.Equal(t, [][]byte{{3, 4}, {5, 6}}, q.Ranges())

	_, err = q.Span(1, 3)
	require.ErrorIs(t, err, ErrOverread)

	spans, err = q.Span(3, 6)
	require.Nil(t, err)
	require.Equal(t, [][]byte{{4}, {5, 6}}, spans)

	// consumption past the head continues in the promoted chunk
	require.Nil(t, q.Admit(c3))
	require.Equal(t, [][]byte{{3, 4}, {5, 6}, {7, 8, 9}}, q.Ranges())

	require.Same(t, c2, q.Commit(5))
	require.Equal(t, int64(7), q.Position())
	require.Equal(t, [][]byte{{8, 9}}, q.Ranges())
	require.Equal(t, int64(2), q.Carried())

	spans, err = q.Span(7, 9)
	require.Nil(t, err)
	require.Equal(t, [][]byte{{8, 9}}, spans)
}

func TestQueueEOS(t *testing.T) {
	var q Queue

	c1, c2 := chunk(1, 2, 3), chunk(4)
	c1.EOS = true

	require.Nil(t, q.Admit(c1))
	require.Nil(t, q.Admit(c2))

	// nothing after the end of stream is outstanding
	require.Equal(t, [][]byte{{1, 2, 3}}, q.Ranges())
	require.Equal(t, 3, q.Outstanding())

	_, err := q.Span(0, 4)
	require.ErrorIs(t, err, ErrOverread)

	// the tail of an end of stream head is dropped
	require.Same(t, c1, q.Commit(1))
	require.Equal(t, int64(3), q.Position())
	require.Equal(t, int64(0), q.Carried())
	require.Equal(t, [][]byte{{4}}, q.Ranges())
}

func TestQueueReset(t *testing.T) {
	var q Queue

	c1, c2 := chunk(1, 2), chunk(3)
	require.Nil(t, q.Admit(c1))
	require.Same(t, c1, q.Commit(1))
	require.Nil(t, q.Admit(c2))

	require.Equal(t, []*InputChunk{c2}, q.Reset())
	require.Equal(t, 0, q.Len())
	require.Empty(t, q.Ranges())
	require.Nil(t, q.Commit(0))
}

func TestTakeSpare(t *testing.T) {
	var q Queue

	free := newTarget(nil, 1)
	used := newTarget(nil, 2).retain()

	c := chunk(1)
	c.spares = []*Target{free, used}
	require.Nil(t, q.Admit(c))

	// the shared spare goes back to its other owner
	require.Same(t, free, q.takeSpare())
	require.Equal(t, 1, used.refs)
	require.Empty(t, c.spares)
	require.Nil(t, q.takeSpare())
}
