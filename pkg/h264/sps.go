package h264

import (
	"github.com/viddec/viddec/pkg/bits"
)

// http://www.itu.int/rec/T-REC-H.264 7.3.2.1.1

// SPS keeps the sequence parameter set fields needed to parse slice headers
// and to report the coded picture size. VUI is not parsed.
type SPS struct {
	id         uint32
	profileIDC uint8
	numRefs    uint32

	chromaFormat   uint32
	separatePlanes bool

	frameNumBits byte
	pocType      uint32
	pocLsbBits   byte
	deltaPOCZero bool

	widthMbs     uint32
	heightMaps   uint32
	frameMbsOnly bool

	// left, right, top, bottom in crop units
	crop [4]uint32
}

// high profiles carry chroma format, bit depth and scaling matrices
func highProfile(idc uint8) bool {
	switch idc {
	case 44, 83, 86, 100, 110, 118, 122, 128, 134, 135, 138, 139, 244:
		return true
	}
	return false
}

// DecodeSPS parses a whole SPS NAL unit, header byte included. Emulation
// prevention bytes are removed first. Returns nil on a truncated or foreign NAL.
func DecodeSPS(nalu []byte) *SPS {
	r := bits.NewReader(EBSPToRBSP(nalu))

	if r.ReadByte()&0x1F != NALUTypeSPS {
		return nil
	}

	s := &SPS{profileIDC: r.ReadByte(), chromaFormat: 1}
	r.SkipBits(16) // constraint flags, level_idc
	s.id = r.ReadUEGolomb()

	if highProfile(s.profileIDC) {
		lists := 8
		if s.chromaFormat = r.ReadUEGolomb(); s.chromaFormat == 3 {
			s.separatePlanes = r.ReadFlag()
			lists = 12
		}
		_ = r.ReadUEGolomb() // bit_depth_luma_minus8
		_ = r.ReadUEGolomb() // bit_depth_chroma_minus8
		r.SkipBits(1)        // qpprime_y_zero_transform_bypass_flag

		if r.ReadFlag() {
			for i := 0; i < lists; i++ {
				if !r.ReadFlag() {
					continue
				}
				if i < 6 {
					skipScalingList(r, 16)
				} else {
					skipScalingList(r, 64)
				}
			}
		}
	}

	s.frameNumBits = byte(r.ReadUEGolomb() + 4)

	switch s.pocType = r.ReadUEGolomb(); s.pocType {
	case 0:
		s.pocLsbBits = byte(r.ReadUEGolomb() + 4)
	case 1:
		s.deltaPOCZero = r.ReadFlag()
		_ = r.ReadSEGolomb() // offset_for_non_ref_pic
		_ = r.ReadSEGolomb() // offset_for_top_to_bottom_field
		for n := r.ReadUEGolomb(); n > 0 && !r.EOF; n-- {
			_ = r.ReadSEGolomb()
		}
	}

	s.numRefs = r.ReadUEGolomb()
	r.SkipBits(1) // gaps_in_frame_num_value_allowed_flag

	s.widthMbs = r.ReadUEGolomb() + 1
	s.heightMaps = r.ReadUEGolomb() + 1

	if s.frameMbsOnly = r.ReadFlag(); !s.frameMbsOnly {
		r.SkipBits(1) // mb_adaptive_frame_field_flag
	}
	r.SkipBits(1) // direct_8x8_inference_flag

	if r.ReadFlag() {
		for i := range s.crop {
			s.crop[i] = r.ReadUEGolomb()
		}
	}

	if r.EOF {
		return nil
	}

	return s
}

func skipScalingList(r *bits.Reader, size int) {
	last, next := int32(8), int32(8)
	for j := 0; j < size && !r.EOF; j++ {
		if next != 0 {
			next = (last + r.ReadSEGolomb() + 256) % 256
		}
		if next != 0 {
			last = next
		}
	}
}

// cropUnits returns the horizontal and vertical crop step in luma samples
func (s *SPS) cropUnits() (x, y uint32) {
	x, y = 1, 1
	if !s.separatePlanes {
		switch s.chromaFormat {
		case 1:
			x, y = 2, 2
		case 2:
			x = 2
		}
	}
	if !s.frameMbsOnly {
		y *= 2
	}
	return
}

// Width is the cropped luma width
func (s *SPS) Width() uint16 {
	x, _ := s.cropUnits()
	return uint16(16*s.widthMbs - x*(s.crop[0]+s.crop[1]))
}

// Height is the cropped luma frame height. Field coded streams count two
// map units per macroblock row pair.
func (s *SPS) Height() uint16 {
	_, y := s.cropUnits()
	height := 16 * s.heightMaps
	if !s.frameMbsOnly {
		height *= 2
	}
	return uint16(height - y*(s.crop[2]+s.crop[3]))
}

func (s *SPS) ID() uint32 {
	return s.id
}
