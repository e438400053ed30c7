package bits

// Cursor reads MSB-first bits across several discontiguous byte ranges as
// if they were one buffer. Nothing is copied; the ranges must stay untouched
// while the cursor is in use. Reads past the end return zero bits and raise
// EOF, so a cursor never indexes outside the supplied ranges.
type Cursor struct {
	EOF bool

	ranges [][]byte
	idx    int  // current range
	pos    int  // current byte in range
	bit    byte // bits consumed from the current byte
	left   int  // bits left in total
	total  int
}

func NewCursor(ranges ...[]byte) *Cursor {
	c := &Cursor{}
	for _, b := range ranges {
		if len(b) == 0 {
			continue
		}
		c.ranges = append(c.ranges, b)
		c.left += len(b) * 8
	}
	c.total = c.left
	return c
}

func (c *Cursor) BitsLeft() int {
	return c.left
}

// Consumed - bits consumed since the cursor was built
func (c *Cursor) Consumed() int {
	return c.total - c.left
}

func (c *Cursor) Aligned() bool {
	return c.bit == 0
}

// byteAt - byte i positions after the current one, zero past the end
func (c *Cursor) byteAt(i int) byte {
	idx, pos := c.idx, c.pos+i
	for idx < len(c.ranges) {
		if pos < len(c.ranges[idx]) {
			return c.ranges[idx][pos]
		}
		pos -= len(c.ranges[idx])
		idx++
	}
	return 0
}

// PeekBits returns the next n bits (n <= 32) without consuming them
func (c *Cursor) PeekBits(n byte) uint32 {
	if n == 0 {
		return 0
	}

	var v uint64
	for i := 0; i < 5; i++ {
		v = v<<8 | uint64(c.byteAt(i))
	}
	v = (v << c.bit) & (1<<40 - 1)
	return uint32(v >> (40 - n))
}

func (c *Cursor) SkipBits(n int) {
	if n > c.left {
		n = c.left
		c.EOF = true
	}
	if n <= 0 {
		return
	}

	c.left -= n

	n += int(c.bit)
	c.pos += n / 8
	c.bit = byte(n % 8)

	for c.idx < len(c.ranges) && c.pos >= len(c.ranges[c.idx]) {
		c.pos -= len(c.ranges[c.idx])
		c.idx++
	}
}

func (c *Cursor) ReadBits(n byte) uint32 {
	v := c.PeekBits(n)
	c.SkipBits(int(n))
	return v
}

func (c *Cursor) ReadBit() byte {
	return byte(c.ReadBits(1))
}

// ReadUEGolomb - ReadExponentialGolomb (unsigned)
func (c *Cursor) ReadUEGolomb() uint32 {
	var size byte
	for size = 0; size < 32; size++ {
		if b := c.ReadBit(); b != 0 || c.EOF {
			break
		}
	}
	return c.ReadBits(size) + (1 << size) - 1
}

// ReadSEGolomb - ReadSignedExponentialGolomb
func (c *Cursor) ReadSEGolomb() int32 {
	if b := c.ReadUEGolomb(); b%2 == 0 {
		return -int32(b >> 1)
	} else {
		return int32((b + 1) >> 1)
	}
}

// AlignByte skips the rest of a partially consumed byte
func (c *Cursor) AlignByte() {
	if c.bit != 0 {
		c.SkipBits(8 - int(c.bit))
	}
}

// PeekBytes copies up to len(dst) whole bytes without consuming them and
// returns how many were available.
func (c *Cursor) PeekBytes(dst []byte) int {
	n := c.left / 8
	if n > len(dst) {
		n = len(dst)
	}

	i := 0
	for idx, pos := c.idx, c.pos; idx < len(c.ranges) && i < n; idx, pos = idx+1, 0 {
		i += copy(dst[i:n], c.ranges[idx][pos:])
	}

	if c.bit != 0 {
		for j := 0; j < n; j++ {
			dst[j] = dst[j]<<c.bit | c.byteAt(j+1)>>(8-c.bit)
		}
	}

	return n
}

// IndexStartCode returns the offset in bytes, counted from the current
// byte, of the first 00 00 01 prefix starting at or after from, or -1.
// Nothing is consumed.
func (c *Cursor) IndexStartCode(from int) int {
	return c.indexStartCode(from, c.left/8)
}

// SearchStartCode aligns the cursor and advances it byte by byte, never by
// more than limit bits, until it points at a 00 00 01 prefix. It reports
// whether the prefix was found; if not, the cursor is left at the furthest
// position it was allowed to reach.
func (c *Cursor) SearchStartCode(limit int) bool {
	if c.bit != 0 {
		n := 8 - int(c.bit)
		if n > limit {
			c.SkipBits(limit)
			return false
		}
		c.SkipBits(n)
		limit -= n
	}

	if limit < 0 {
		return false
	}

	if i := c.indexStartCode(0, limit/8); i >= 0 {
		c.SkipBits(i * 8)
		return true
	}

	c.SkipPayload(limit / 8)
	return false
}

// SkipPayload advances by up to n whole bytes but stops before trailing
// zero bytes that may be the beginning of a start code prefix. It returns
// the number of bytes skipped.
func (c *Cursor) SkipPayload(n int) int {
	if left := c.left / 8; n > left {
		n = left
	}
	for i := 0; i < 2 && n > 0 && c.byteAt(n-1) == 0; i++ {
		n--
	}
	c.SkipBits(n * 8)
	return n
}

// indexStartCode - first prefix whose offset lies in [from, to]
func (c *Cursor) indexStartCode(from, to int) int {
	var zeros, i int

	for idx, pos := c.idx, c.pos; idx < len(c.ranges); idx, pos = idx+1, 0 {
		for _, b := range c.ranges[idx][pos:] {
			if i-2 > to {
				return -1
			}
			if b == 1 && zeros >= 2 && i-2 >= from {
				return i - 2
			}
			if b == 0 {
				zeros++
			} else {
				zeros = 0
			}
			i++
		}
	}

	return -1
}
