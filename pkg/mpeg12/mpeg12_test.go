package mpeg12

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viddec/viddec/pkg/bits"
)

func TestSequenceHeader(t *testing.T) {
	// 176x144, 4:3, 25 fps
	b, err := hex.DecodeString("000001b30b009023ffffe0180000000001b5")
	require.Nil(t, err)

	h, n, err := ParseSequenceHeader(b)
	require.Nil(t, err)
	require.Equal(t, 12, n)
	require.Equal(t, uint16(176), h.Width)
	require.Equal(t, uint16(144), h.Height)
	require.Equal(t, byte(2), h.AspectRatio)
	require.Equal(t, byte(3), h.FrameRateCode)
	require.Equal(t, DefaultIntraMatrix, h.IntraMatrix)
	require.Equal(t, byte(16), h.NonIntraMatrix[63])

	_, _, err = ParseSequenceHeader(b[:10])
	require.ErrorIs(t, err, ErrShortBuffer)

	_, _, err = ParseSequenceHeader(b[:3])
	require.ErrorIs(t, err, ErrShortBuffer)

	_, _, err = ParseSequenceHeader(b[12:])
	require.ErrorIs(t, err, ErrMalformed)

	require.Equal(t, b[:12], h.Marshal())
}

func TestSequenceHeaderMatrix(t *testing.T) {
	h := &SequenceHeader{Width: 720, Height: 576, AspectRatio: 2, FrameRateCode: 3, BitRate: 20000, LoadIntra: true}
	for i := range h.IntraMatrix {
		h.IntraMatrix[i] = byte(i + 1)
	}

	b := h.Marshal()
	require.Len(t, b, 4+8+64)

	h2, n, err := ParseSequenceHeader(b)
	require.Nil(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, h.IntraMatrix, h2.IntraMatrix)

	var q QuantMatrices
	h2.Apply(&q)
	require.Equal(t, h.IntraMatrix, q.ChromaIntra)
	require.Equal(t, byte(16), q.ChromaNonIntra[0])

	// marker bit cleared
	b[10] &^= 0x20
	_, _, err = ParseSequenceHeader(b)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestExtensions(t *testing.T) {
	seq := &SequenceExtension{ProfileAndLevel: 0x48, Progressive: true, ChromaFormat: 1}
	b := seq.Marshal()

	id, err := ExtensionID(b)
	require.Nil(t, err)
	require.Equal(t, byte(ExtSequence), id)

	seq2, n, err := ParseSequenceExtension(b)
	require.Nil(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, seq, seq2)

	pce := &PictureCodingExtension{
		FCode:            [2][2]byte{{1, 2}, {15, 15}},
		PictureStructure: FramePicture,
		TopFieldFirst:    true,
		AlternateScan:    true,
		ProgressiveFrame: true,
	}
	b = pce.Marshal()

	_, _, err = ParseSequenceExtension(b)
	require.ErrorIs(t, err, ErrMalformed)

	pce2, n, err := ParsePictureCodingExtension(b)
	require.Nil(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, pce, pce2)
}

func TestQuantMatrixExtension(t *testing.T) {
	w := bits.NewWriter()
	w.WriteBytes(0, 0, 1, ExtensionStartCode)
	w.WriteBits8(ExtQuantMatrix, 4)
	w.WriteBit(0) // load_intra_quantiser_matrix
	w.WriteBit(1) // load_non_intra_quantiser_matrix
	for i := 0; i < 64; i++ {
		w.WriteBits8(32, 8)
	}
	w.WriteBit(0)
	w.WriteBit(0)
	b := w.Bytes()

	x, n, err := ParseQuantMatrixExtension(b, DefaultQuantMatrices())
	require.Nil(t, err)
	require.Equal(t, len(b), n)
	require.False(t, x.LoadIntra)
	require.True(t, x.LoadNonIntra)
	require.Equal(t, DefaultIntraMatrix, x.Intra)
	require.Equal(t, byte(32), x.NonIntra[17])
	require.Equal(t, byte(32), x.ChromaNonIntra[17])
	require.Equal(t, DefaultIntraMatrix, x.ChromaIntra)
}

func TestPictureHeader(t *testing.T) {
	for _, h := range []*PictureHeader{
		{TemporalReference: 0, CodingType: CodingTypeI, VBVDelay: 0xFFFF},
		{TemporalReference: 3, CodingType: CodingTypeP, VBVDelay: 0xFFFF, ForwardFCode: 7},
		{TemporalReference: 1, CodingType: CodingTypeB, VBVDelay: 0xFFFF, ForwardFCode: 7, FullPelBackward: true, BackwardFCode: 7},
	} {
		b := h.Marshal()
		h2, n, err := ParsePictureHeader(b)
		require.Nil(t, err)
		require.Equal(t, len(b), n)
		require.Equal(t, h, h2)
	}

	b := (&PictureHeader{CodingType: CodingTypeB}).Marshal()
	_, _, err := ParsePictureHeader(b[:6])
	require.ErrorIs(t, err, ErrShortBuffer)

	b = []byte{0, 0, 1, 0, 0x00, 0x38, 0xFF, 0xF8}
	_, _, err = ParsePictureHeader(b)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestGOPHeader(t *testing.T) {
	h := &GOPHeader{TimeCode: 0x1234, ClosedGOP: true}
	h2, n, err := ParseGOPHeader(h.Marshal())
	require.Nil(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, h, h2)
}

func TestStartCodes(t *testing.T) {
	require.True(t, IsSlice(0x01))
	require.True(t, IsSlice(0xAF))
	require.False(t, IsSlice(PictureStartCode))
	require.False(t, IsSlice(UserDataStartCode))

	require.True(t, EndsPicture(PictureStartCode))
	require.True(t, EndsPicture(SequenceHeaderCode))
	require.True(t, EndsPicture(SequenceEndCode))
	require.False(t, EndsPicture(0x10))

	require.Equal(t, 0, RefCount(CodingTypeI))
	require.Equal(t, 1, RefCount(CodingTypeP))
	require.Equal(t, 2, RefCount(CodingTypeB))
	require.True(t, IsAnchor(CodingTypeP))
	require.False(t, IsAnchor(CodingTypeB))

	_, err := StartCode([]byte{0, 0, 2, 0xB3})
	require.ErrorIs(t, err, ErrMalformed)
}
