package mpeg12

import (
	"github.com/viddec/viddec/pkg/bits"
)

// Every parser takes data starting at the 00 00 01 prefix of its start code
// and returns how many bytes the header occupies, start code included.
// ErrShortBuffer means the header doesn't fit in the data.

type SequenceHeader struct {
	Width          uint16
	Height         uint16
	AspectRatio    byte
	FrameRateCode  byte
	BitRate        uint32
	VBVBufferSize  uint16
	Constrained    bool
	LoadIntra      bool
	LoadNonIntra   bool
	IntraMatrix    [64]byte // raster order
	NonIntraMatrix [64]byte // raster order
}

type SequenceExtension struct {
	ProfileAndLevel byte
	Progressive     bool
	ChromaFormat    byte
	LowDelay        bool
	FrameRateExtN   byte
	FrameRateExtD   byte
}

type PictureHeader struct {
	TemporalReference uint16
	CodingType        byte
	VBVDelay          uint16
	FullPelForward    bool
	ForwardFCode      byte
	FullPelBackward   bool
	BackwardFCode     byte
}

type PictureCodingExtension struct {
	FCode                    [2][2]byte
	IntraDCPrecision         byte
	PictureStructure         byte
	TopFieldFirst            bool
	FramePredFrameDCT        bool
	ConcealmentMotionVectors bool
	QScaleType               bool
	IntraVLCFormat           bool
	AlternateScan            bool
	RepeatFirstField         bool
	Chroma420Type            bool
	ProgressiveFrame         bool
}

type QuantMatrixExtension struct {
	LoadIntra          bool
	LoadNonIntra       bool
	LoadChromaIntra    bool
	LoadChromaNonIntra bool
	QuantMatrices
}

type GOPHeader struct {
	TimeCode   uint32
	ClosedGOP  bool
	BrokenLink bool
}

// StartCode returns the code byte of data that begins with a start code
func StartCode(b []byte) (byte, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	if b[0] != 0 || b[1] != 0 || b[2] != 1 {
		return 0, ErrMalformed
	}
	return b[3], nil
}

// ExtensionID - extension_start_code_identifier of an extension header
func ExtensionID(b []byte) (byte, error) {
	if err := expect(b, ExtensionStartCode); err != nil {
		return 0, err
	}
	if len(b) < 5 {
		return 0, ErrShortBuffer
	}
	return b[4] >> 4, nil
}

func expect(b []byte, code byte) error {
	c, err := StartCode(b)
	if err != nil {
		return err
	}
	if c != code {
		return ErrMalformed
	}
	return nil
}

func done(r *bits.Reader) (int, error) {
	if r.EOF {
		return 0, ErrShortBuffer
	}
	return 4 + r.BytesRead(), nil
}

func readMatrix(r *bits.Reader, m *[64]byte) {
	for i := 0; i < 64; i++ {
		m[ZigZag[i]] = r.ReadByte()
	}
}

func ParseSequenceHeader(b []byte) (*SequenceHeader, int, error) {
	if err := expect(b, SequenceHeaderCode); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])

	h := &SequenceHeader{
		Width:         uint16(r.ReadBits(12)),
		Height:        uint16(r.ReadBits(12)),
		AspectRatio:   r.ReadBits8(4),
		FrameRateCode: r.ReadBits8(4),
		BitRate:       r.ReadBits(18),
	}

	marker := r.ReadBit()
	h.VBVBufferSize = r.ReadBits16(10)
	h.Constrained = r.ReadFlag()

	h.IntraMatrix = DefaultIntraMatrix
	if h.LoadIntra = r.ReadFlag(); h.LoadIntra {
		readMatrix(r, &h.IntraMatrix)
	}

	if h.LoadNonIntra = r.ReadFlag(); h.LoadNonIntra {
		readMatrix(r, &h.NonIntraMatrix)
	} else {
		for i := range h.NonIntraMatrix {
			h.NonIntraMatrix[i] = 16
		}
	}

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	if marker == 0 || h.Width == 0 || h.Height == 0 || h.FrameRateCode == 0 {
		return nil, 0, ErrMalformed
	}

	return h, n, nil
}

func ParseSequenceExtension(b []byte) (*SequenceExtension, int, error) {
	if err := expectExt(b, ExtSequence); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])
	_ = r.ReadBits8(4) // extension_start_code_identifier

	x := &SequenceExtension{
		ProfileAndLevel: r.ReadByte(),
		Progressive:     r.ReadFlag(),
		ChromaFormat:    r.ReadBits8(2),
	}

	_ = r.ReadBits8(2) // horizontal_size_extension
	_ = r.ReadBits8(2) // vertical_size_extension
	_ = r.ReadBits(12) // bit_rate_extension
	marker := r.ReadBit()
	_ = r.ReadByte() // vbv_buffer_size_extension

	x.LowDelay = r.ReadFlag()
	x.FrameRateExtN = r.ReadBits8(2)
	x.FrameRateExtD = r.ReadBits8(5)

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	if marker == 0 || x.ChromaFormat == 0 {
		return nil, 0, ErrMalformed
	}

	return x, n, nil
}

func ParsePictureHeader(b []byte) (*PictureHeader, int, error) {
	if err := expect(b, PictureStartCode); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])

	h := &PictureHeader{
		TemporalReference: r.ReadBits16(10),
		CodingType:        r.ReadBits8(3),
		VBVDelay:          r.ReadUint16(),
	}

	if h.CodingType == CodingTypeP || h.CodingType == CodingTypeB {
		h.FullPelForward = r.ReadFlag()
		h.ForwardFCode = r.ReadBits8(3)
	}
	if h.CodingType == CodingTypeB {
		h.FullPelBackward = r.ReadFlag()
		h.BackwardFCode = r.ReadBits8(3)
	}

	// extra_bit_picture with extra_information_picture
	for r.ReadFlag() {
		_ = r.ReadByte()
	}

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	if h.CodingType == 0 || h.CodingType > CodingTypeD {
		return nil, 0, ErrMalformed
	}

	return h, n, nil
}

func ParsePictureCodingExtension(b []byte) (*PictureCodingExtension, int, error) {
	if err := expectExt(b, ExtPictureCoding); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])
	_ = r.ReadBits8(4) // extension_start_code_identifier

	x := &PictureCodingExtension{}
	x.FCode[0][0] = r.ReadBits8(4)
	x.FCode[0][1] = r.ReadBits8(4)
	x.FCode[1][0] = r.ReadBits8(4)
	x.FCode[1][1] = r.ReadBits8(4)
	x.IntraDCPrecision = r.ReadBits8(2)
	x.PictureStructure = r.ReadBits8(2)
	x.TopFieldFirst = r.ReadFlag()
	x.FramePredFrameDCT = r.ReadFlag()
	x.ConcealmentMotionVectors = r.ReadFlag()
	x.QScaleType = r.ReadFlag()
	x.IntraVLCFormat = r.ReadFlag()
	x.AlternateScan = r.ReadFlag()
	x.RepeatFirstField = r.ReadFlag()
	x.Chroma420Type = r.ReadFlag()
	x.ProgressiveFrame = r.ReadFlag()

	if compositeDisplay := r.ReadFlag(); compositeDisplay {
		_ = r.ReadBit()    // v_axis
		_ = r.ReadBits8(3) // field_sequence
		_ = r.ReadBit()    // sub_carrier
		_ = r.ReadBits8(7) // burst_amplitude
		_ = r.ReadByte()   // sub_carrier_phase
	}

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	if x.PictureStructure == 0 {
		return nil, 0, ErrMalformed
	}

	return x, n, nil
}

// ParseQuantMatrixExtension - matrices not loaded by the extension are
// taken from q
func ParseQuantMatrixExtension(b []byte, q QuantMatrices) (*QuantMatrixExtension, int, error) {
	if err := expectExt(b, ExtQuantMatrix); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])
	_ = r.ReadBits8(4) // extension_start_code_identifier

	x := &QuantMatrixExtension{QuantMatrices: q}

	// luma matrices apply to chroma too until chroma ones are loaded
	if x.LoadIntra = r.ReadFlag(); x.LoadIntra {
		readMatrix(r, &x.Intra)
		x.ChromaIntra = x.Intra
	}
	if x.LoadNonIntra = r.ReadFlag(); x.LoadNonIntra {
		readMatrix(r, &x.NonIntra)
		x.ChromaNonIntra = x.NonIntra
	}
	if x.LoadChromaIntra = r.ReadFlag(); x.LoadChromaIntra {
		readMatrix(r, &x.ChromaIntra)
	}
	if x.LoadChromaNonIntra = r.ReadFlag(); x.LoadChromaNonIntra {
		readMatrix(r, &x.ChromaNonIntra)
	}

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	return x, n, nil
}

func ParseGOPHeader(b []byte) (*GOPHeader, int, error) {
	if err := expect(b, GroupStartCode); err != nil {
		return nil, 0, err
	}

	r := bits.NewReader(b[4:])

	h := &GOPHeader{
		TimeCode:   r.ReadBits(25),
		ClosedGOP:  r.ReadFlag(),
		BrokenLink: r.ReadFlag(),
	}

	n, err := done(r)
	if err != nil {
		return nil, 0, err
	}

	return h, n, nil
}

func expectExt(b []byte, id byte) error {
	ext, err := ExtensionID(b)
	if err != nil {
		return err
	}
	if ext != id {
		return ErrMalformed
	}
	return nil
}

// Apply updates the matrices in use after a sequence header, which resets
// chroma matrices to the luma ones
func (h *SequenceHeader) Apply(q *QuantMatrices) {
	q.Intra = h.IntraMatrix
	q.NonIntra = h.NonIntraMatrix
	q.ChromaIntra = h.IntraMatrix
	q.ChromaNonIntra = h.NonIntraMatrix
}
