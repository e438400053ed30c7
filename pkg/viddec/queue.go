package viddec

// Queue holds at most two input chunks: the head being decoded and the
// lookahead. Bytes are addressed by their absolute position in the stream.
// Unconsumed bytes of a retired head are kept in a carry buffer ahead of the
// promoted chunk, so every host chunk leaves the queue exactly once.
type Queue struct {
	chunks [2]*InputChunk
	depth  int
	off    int    // consumed bytes of chunks[0]
	carry  []byte // unconsumed bytes of retired chunks
	pos    int64  // position of the first outstanding byte

	carried int64
}

func (q *Queue) Admit(chunk *InputChunk) error {
	if q.depth == len(q.chunks) {
		return ErrQueueFull
	}
	q.chunks[q.depth] = chunk
	q.depth++
	return nil
}

func (q *Queue) Len() int {
	return q.depth
}

func (q *Queue) Head() *InputChunk {
	return q.chunks[0]
}

// Position - absolute position of the first outstanding byte
func (q *Queue) Position() int64 {
	return q.pos
}

// Ranges - outstanding bytes in stream order. Nothing after an end of
// stream head is outstanding.
func (q *Queue) Ranges() [][]byte {
	ranges := make([][]byte, 0, 3)
	if len(q.carry) > 0 {
		ranges = append(ranges, q.carry)
	}
	if q.depth == 0 {
		return ranges
	}

	head := q.chunks[0]
	if b := head.Data[q.off:head.Filled]; len(b) > 0 {
		ranges = append(ranges, b)
	}
	if q.depth > 1 && !head.EOS {
		if b := q.chunks[1].Bytes(); len(b) > 0 {
			ranges = append(ranges, b)
		}
	}
	return ranges
}

// Outstanding - number of outstanding bytes
func (q *Queue) Outstanding() int {
	n := q.headLen()
	if q.depth > 1 && !q.chunks[0].EOS {
		n += q.chunks[1].Filled
	}
	return n
}

// LookaheadLen - bytes of the lookahead chunk, zero without one
func (q *Queue) LookaheadLen() int {
	if q.depth < 2 {
		return 0
	}
	return q.chunks[1].Filled
}

// Carried - total bytes copied into the carry buffer
func (q *Queue) Carried() int64 {
	return q.carried
}

func (q *Queue) headLen() int {
	n := len(q.carry)
	if q.depth > 0 {
		n += q.chunks[0].Filled - q.off
	}
	return n
}

// Span maps the absolute byte span [start, end) onto outstanding ranges.
// It fails with ErrOverread if any byte of it is not outstanding.
func (q *Queue) Span(start, end int64) ([][]byte, error) {
	if start < q.pos || end < start || end-q.pos > int64(q.Outstanding()) {
		return nil, ErrOverread
	}

	from, to := int(start-q.pos), int(end-q.pos)

	var spans [][]byte
	for _, b := range q.Ranges() {
		if from < len(b) && to > 0 {
			spans = append(spans, b[max(from, 0):min(to, len(b))])
		}
		from -= len(b)
		to -= len(b)
	}
	return spans, nil
}

// Commit retires the head after n outstanding bytes were consumed and
// returns it. Consumption past the head continues into the promoted
// lookahead; a head that wasn't drained leaves its tail in the carry
// buffer, except at end of stream where the tail is dropped.
func (q *Queue) Commit(n int) *InputChunk {
	if q.depth == 0 {
		return nil
	}

	head := q.chunks[0]
	headLen := q.headLen()
	n = min(max(n, 0), q.Outstanding())

	var carry []byte
	if n < headLen && !head.EOS {
		carry = make([]byte, 0, headLen-n)
		spans, _ := q.Span(q.pos+int64(n), q.pos+int64(headLen))
		for _, b := range spans {
			carry = append(carry, b...)
		}
		q.carried += int64(len(carry))
	}

	if head.EOS {
		q.pos += int64(max(n, headLen))
	} else {
		q.pos += int64(n)
	}

	q.chunks[0], q.chunks[1] = q.chunks[1], nil
	q.depth--
	q.carry = carry
	q.off = max(n-headLen, 0)

	return head
}

// Reset drops all outstanding data and returns the queued chunks
func (q *Queue) Reset() []*InputChunk {
	chunks := make([]*InputChunk, 0, q.depth)
	for i := 0; i < q.depth; i++ {
		chunks = append(chunks, q.chunks[i])
		q.chunks[i] = nil
	}
	q.depth = 0
	q.off = 0
	q.carry = nil
	return chunks
}

// takeSpare finds a spare target on a queued chunk that nobody else owns.
// Spares still used as references are handed back to their other owners.
func (q *Queue) takeSpare() *Target {
	for i := 0; i < q.depth; i++ {
		chunk := q.chunks[i]
		for len(chunk.spares) > 0 {
			t := chunk.spares[len(chunk.spares)-1]
			chunk.spares = chunk.spares[:len(chunk.spares)-1]
			if !t.shared() {
				return t
			}
			t.release()
		}
	}
	return nil
}
