package viddec

import (
	"github.com/viddec/viddec/pkg/bits"
)

type stepResult byte

const (
	stepProgress stepResult = iota
	stepNeedMore
)

// minBits - lowest threshold, a step always sees a whole start code
const minBits = 32

type pass struct {
	c     *bits.Cursor
	start int64 // stream position of the first cursor byte
	eos   bool
	min   int // threshold in bits

	scratch []byte
}

func newPass(ranges [][]byte, start int64, eos bool, lookahead int, scratch []byte) *pass {
	p := &pass{
		c:       bits.NewCursor(ranges...),
		start:   start,
		eos:     eos,
		min:     minBits,
		scratch: scratch,
	}
	if !eos && lookahead*8 > p.min {
		p.min = lookahead * 8
	}
	return p
}

// pos - stream position of the cursor, which steps keep byte aligned
func (p *pass) pos() int64 {
	return p.start + int64(p.c.Consumed()/8)
}

// end - stream position right after the outstanding data
func (p *pass) end() int64 {
	return p.start + int64((p.c.Consumed()+p.c.BitsLeft())/8)
}

// limit - how far a step may advance without knowing what follows
func (p *pass) limit() int {
	return p.c.BitsLeft() - p.min
}

// peek copies up to n bytes at the cursor
func (p *pass) peek(n int) []byte {
	if n > len(p.scratch) {
		p.scratch = make([]byte, n)
	}
	return p.scratch[:p.c.PeekBytes(p.scratch[:n])]
}

// short reports whether a header cut by the end of b will get more data.
// At end of stream a cut header is malformed.
func (p *pass) short(b []byte, n int) bool {
	return len(b) < n && !p.eos
}

// findStartCode moves the cursor to the next start code prefix. It returns
// false when none is found within the step limit.
func (p *pass) findStartCode() bool {
	if p.c.PeekBits(24) == 1 {
		return true
	}
	return p.c.SearchStartCode(p.limit())
}

// code - the byte following the prefix at the cursor, if visible
func (p *pass) code() (byte, bool) {
	if p.c.BitsLeft() < 32 {
		return 0, false
	}
	return byte(p.c.PeekBits(32)), true
}

type pendingSlice struct {
	open  bool
	start int64
}

func (d *Decoder) openSlice(p *pass) {
	d.slice = pendingSlice{open: true, start: p.pos()}
}

// sliceData advances through the payload of the open slice. A slice whose
// end is already visible is submitted whole and the cursor jumps to the
// next start code, even past the threshold. Otherwise the cursor moves up
// to the threshold and the pass submits what it got.
func (d *Decoder) sliceData(p *pass, closes func(p *pass) bool) (stepResult, error) {
	if i := p.c.IndexStartCode(0); i >= 0 {
		p.c.SkipBits(i * 8)

		if err := d.endSlice(p.pos()); err != nil {
			return stepProgress, err
		}

		if closes(p) {
			d.endFrame()
		}
		return stepProgress, nil
	}

	if p.c.SkipPayload(p.limit()/8) == 0 {
		return stepNeedMore, nil
	}
	return stepProgress, nil
}

func (d *Decoder) endSlice(end int64) error {
	start := d.slice.start
	d.slice = pendingSlice{}
	return d.submit(start, end)
}

// flushSlice submits the pending part of the open slice at the end of a
// pass. The rest of the slice follows in later passes.
func (d *Decoder) flushSlice(end int64, eos bool) error {
	start := d.slice.start
	if eos {
		d.slice = pendingSlice{}
	} else {
		d.slice.start = end
	}
	return d.submit(start, end)
}

func (d *Decoder) submit(start, end int64) error {
	if end <= start {
		return nil
	}

	slices, err := d.queue.Span(start, end)
	if err != nil {
		return err
	}

	if !d.pic.open || d.pic.dropped {
		return nil
	}

	d.stats.Slices++
	d.stats.Submitted += end - start

	if err = d.sub.submit(d.pic.target, &d.pic.params, slices); err != nil {
		d.pic.dropped = true
		d.log.Warn().Err(err).Int("order", d.pic.params.DecodeOrder).Msg("[viddec] submit failed, frame dropped")
	}
	return nil
}

// resync skips the start code at the cursor; the next step searches for
// the following one
func (d *Decoder) resync(p *pass, err error) stepResult {
	d.stats.Resyncs++
	d.log.Debug().Err(err).Int64("pos", p.pos()).Msg("[viddec] resync")
	p.c.SkipBits(32)
	return stepProgress
}
