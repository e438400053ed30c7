package bits

// Writer builds MSB-first bitstreams. It is the counterpart of Reader and is
// mostly used to synthesize syntax structures.
type Writer struct {
	buf  []byte // total buf
	byte byte   // current byte
	bits byte   // bits left in byte
	len  int    // current len of buf
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteBit(b byte) {
	if w.bits == 0 {
		if w.len != 0 {
			w.buf = append(w.buf, w.byte)
		}

		w.byte = 0
		w.bits = 7
		w.len++
	} else {
		w.bits--
	}

	w.byte |= b << w.bits
}

func (w *Writer) WriteFlag(b bool) {
	if b {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
}

func (w *Writer) WriteBits(v uint32, n byte) {
	for i := n - 1; i != 255; i-- {
		w.WriteBit(byte(v>>i) & 0b1)
	}
}

func (w *Writer) WriteBits8(v, n byte) {
	for i := n - 1; i != 255; i-- {
		w.WriteBit((v >> i) & 0b1)
	}
}

// WriteBytes - append whole bytes, bit aligned or not
func (w *Writer) WriteBytes(b ...byte) {
	for _, v := range b {
		w.WriteBits8(v, 8)
	}
}

// WriteUEGolomb - WriteExponentialGolomb (unsigned)
func (w *Writer) WriteUEGolomb(v uint32) {
	v++
	var size byte
	for x := v; x > 1; x >>= 1 {
		size++
	}
	w.WriteBits(0, size)
	w.WriteBits(v, size+1)
}

// WriteSEGolomb - WriteSignedExponentialGolomb
func (w *Writer) WriteSEGolomb(v int32) {
	if v > 0 {
		w.WriteUEGolomb(uint32(v)*2 - 1)
	} else {
		w.WriteUEGolomb(uint32(-v) * 2)
	}
}

// WriteTrailingBits - rbsp_trailing_bits(): stop bit and zero alignment
func (w *Writer) WriteTrailingBits() {
	w.WriteBit(1)
	w.WriteAlign()
}

// WriteAlign - pad with zero bits up to the byte boundary
func (w *Writer) WriteAlign() {
	for w.bits != 0 {
		w.WriteBit(0)
	}
}

func (w *Writer) Bytes() []byte {
	if w.len == 0 {
		return nil
	}
	return append(w.buf, w.byte)
}
