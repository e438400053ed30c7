package h264

import (
	"errors"

	"github.com/viddec/viddec/pkg/bits"
)

var (
	ErrShortSlice   = errors.New("h264: slice header truncated")
	ErrBadSlice     = errors.New("h264: malformed slice header")
	ErrNoParamSet   = errors.New("h264: slice refers to unknown parameter set")
	ErrNotSliceNALU = errors.New("h264: not a slice NAL unit")
)

// SliceHeader keeps the part of slice_header() (7.3.3) needed to find
// picture boundaries and to describe the picture to a decoder.
type SliceHeader struct {
	NALType byte
	RefIdc  byte

	FirstMB     uint32
	SliceType   uint32
	PPSID       uint32
	ColourPlane uint8
	FrameNum    uint32
	FieldPic    bool
	BottomField bool
	IDRPicID    uint32

	POCLsb         uint32
	DeltaPOCBottom int32
	DeltaPOC       [2]int32

	RedundantPicCnt uint32

	SPS *SPS
	PPS *PPS
}

// DecodeSliceHeader parses the header of a slice NAL unit (header byte
// included, emulation prevention bytes allowed). The NAL may be cut after
// the slice header, the slice data is never touched.
func DecodeSliceHeader(nalu []byte, spss map[uint32]*SPS, ppss map[uint32]*PPS) (*SliceHeader, error) {
	if len(nalu) == 0 {
		return nil, ErrShortSlice
	}

	forbidden, refIdc, typ := NALUHeader(nalu[0])
	if forbidden {
		return nil, ErrBadSlice
	}
	if !IsSlice(typ) {
		return nil, ErrNotSliceNALU
	}

	r := bits.NewReader(EBSPToRBSP(nalu[1:]))

	h := &SliceHeader{
		NALType:   typ,
		RefIdc:    refIdc,
		FirstMB:   r.ReadUEGolomb(),
		SliceType: r.ReadUEGolomb(),
		PPSID:     r.ReadUEGolomb(),
	}

	if r.EOF {
		return nil, ErrShortSlice
	}
	if h.SliceType > 9 {
		return nil, ErrBadSlice
	}

	if h.PPS = ppss[h.PPSID]; h.PPS == nil {
		return nil, ErrNoParamSet
	}
	if h.SPS = spss[h.PPS.seq_parameter_set_id]; h.SPS == nil {
		return nil, ErrNoParamSet
	}

	sps, pps := h.SPS, h.PPS

	if sps.separatePlanes {
		h.ColourPlane = r.ReadBits8(2)
	}

	h.FrameNum = r.ReadBits(sps.frameNumBits)

	if !sps.frameMbsOnly {
		if h.FieldPic = r.ReadFlag(); h.FieldPic {
			h.BottomField = r.ReadFlag()
		}
	}

	if typ == NALUTypeIFrame {
		h.IDRPicID = r.ReadUEGolomb()
	}

	switch sps.pocType {
	case 0:
		h.POCLsb = r.ReadBits(sps.pocLsbBits)
		if pps.bottom_field_pic_order_in_frame_present_flag != 0 && !h.FieldPic {
			h.DeltaPOCBottom = r.ReadSEGolomb()
		}
	case 1:
		if !sps.deltaPOCZero {
			h.DeltaPOC[0] = r.ReadSEGolomb()
			if pps.bottom_field_pic_order_in_frame_present_flag != 0 && !h.FieldPic {
				h.DeltaPOC[1] = r.ReadSEGolomb()
			}
		}
	}

	if pps.redundant_pic_cnt_present_flag != 0 {
		h.RedundantPicCnt = r.ReadUEGolomb()
	}

	if r.EOF {
		return nil, ErrShortSlice
	}

	return h, nil
}

func (h *SliceHeader) IDR() bool {
	return h.NALType == NALUTypeIFrame
}

// FirstOfNewPicture - 7.4.1.2.4 detection of the first VCL NAL unit of a
// primary coded picture, prev is the previous slice of the current picture
func (h *SliceHeader) FirstOfNewPicture(prev *SliceHeader) bool {
	if prev == nil {
		return true
	}

	switch {
	case h.FrameNum != prev.FrameNum:
		return true
	case h.PPSID != prev.PPSID:
		return true
	case h.FieldPic != prev.FieldPic, h.BottomField != prev.BottomField:
		return true
	case (h.RefIdc == 0) != (prev.RefIdc == 0):
		return true
	case h.IDR() != prev.IDR():
		return true
	case h.IDR() && h.IDRPicID != prev.IDRPicID:
		return true
	}

	switch h.SPS.pocType {
	case 0:
		return h.POCLsb != prev.POCLsb || h.DeltaPOCBottom != prev.DeltaPOCBottom
	case 1:
		return h.DeltaPOC != prev.DeltaPOC
	}

	return false
}
