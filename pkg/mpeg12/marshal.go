package mpeg12

import (
	"github.com/viddec/viddec/pkg/bits"
)

func startCode(code byte) *bits.Writer {
	w := bits.NewWriter()
	w.WriteBytes(0, 0, 1, code)
	return w
}

func writeMatrix(w *bits.Writer, m *[64]byte) {
	for i := 0; i < 64; i++ {
		w.WriteBits8(m[ZigZag[i]], 8)
	}
}

func (h *SequenceHeader) Marshal() []byte {
	w := startCode(SequenceHeaderCode)
	w.WriteBits(uint32(h.Width), 12)
	w.WriteBits(uint32(h.Height), 12)
	w.WriteBits8(h.AspectRatio, 4)
	w.WriteBits8(h.FrameRateCode, 4)
	w.WriteBits(h.BitRate, 18)
	w.WriteBit(1) // marker_bit
	w.WriteBits(uint32(h.VBVBufferSize), 10)
	w.WriteFlag(h.Constrained)
	w.WriteFlag(h.LoadIntra)
	if h.LoadIntra {
		writeMatrix(w, &h.IntraMatrix)
	}
	w.WriteFlag(h.LoadNonIntra)
	if h.LoadNonIntra {
		writeMatrix(w, &h.NonIntraMatrix)
	}
	return w.Bytes()
}

func (x *SequenceExtension) Marshal() []byte {
	w := startCode(ExtensionStartCode)
	w.WriteBits8(ExtSequence, 4)
	w.WriteBits8(x.ProfileAndLevel, 8)
	w.WriteFlag(x.Progressive)
	w.WriteBits8(x.ChromaFormat, 2)
	w.WriteBits8(0, 2) // horizontal_size_extension
	w.WriteBits8(0, 2) // vertical_size_extension
	w.WriteBits(0, 12) // bit_rate_extension
	w.WriteBit(1)      // marker_bit
	w.WriteBits8(0, 8) // vbv_buffer_size_extension
	w.WriteFlag(x.LowDelay)
	w.WriteBits8(x.FrameRateExtN, 2)
	w.WriteBits8(x.FrameRateExtD, 5)
	return w.Bytes()
}

func (h *PictureHeader) Marshal() []byte {
	w := startCode(PictureStartCode)
	w.WriteBits(uint32(h.TemporalReference), 10)
	w.WriteBits8(h.CodingType, 3)
	w.WriteBits(uint32(h.VBVDelay), 16)
	if h.CodingType == CodingTypeP || h.CodingType == CodingTypeB {
		w.WriteFlag(h.FullPelForward)
		w.WriteBits8(h.ForwardFCode, 3)
	}
	if h.CodingType == CodingTypeB {
		w.WriteFlag(h.FullPelBackward)
		w.WriteBits8(h.BackwardFCode, 3)
	}
	w.WriteBit(0) // extra_bit_picture
	w.WriteAlign()
	return w.Bytes()
}

func (x *PictureCodingExtension) Marshal() []byte {
	w := startCode(ExtensionStartCode)
	w.WriteBits8(ExtPictureCoding, 4)
	w.WriteBits8(x.FCode[0][0], 4)
	w.WriteBits8(x.FCode[0][1], 4)
	w.WriteBits8(x.FCode[1][0], 4)
	w.WriteBits8(x.FCode[1][1], 4)
	w.WriteBits8(x.IntraDCPrecision, 2)
	w.WriteBits8(x.PictureStructure, 2)
	w.WriteFlag(x.TopFieldFirst)
	w.WriteFlag(x.FramePredFrameDCT)
	w.WriteFlag(x.ConcealmentMotionVectors)
	w.WriteFlag(x.QScaleType)
	w.WriteFlag(x.IntraVLCFormat)
	w.WriteFlag(x.AlternateScan)
	w.WriteFlag(x.RepeatFirstField)
	w.WriteFlag(x.Chroma420Type)
	w.WriteFlag(x.ProgressiveFrame)
	w.WriteBit(0) // composite_display_flag
	w.WriteAlign()
	return w.Bytes()
}

func (h *GOPHeader) Marshal() []byte {
	w := startCode(GroupStartCode)
	w.WriteBits(h.TimeCode, 25)
	w.WriteFlag(h.ClosedGOP)
	w.WriteFlag(h.BrokenLink)
	w.WriteAlign()
	return w.Bytes()
}
