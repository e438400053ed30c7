package h264

// https://www.itu.int/rec/T-REC-H.264
// 7.4.1 NAL unit semantics, Table 7-1

const (
	NALUTypePFrame      = 1  // Coded slice of a non-IDR picture
	NALUTypeSliceDPA    = 2  // Coded slice data partition A
	NALUTypeSliceDPC    = 4  // Coded slice data partition C
	NALUTypeIFrame      = 5  // Coded slice of an IDR picture
	NALUTypeSEI         = 6  // Supplemental enhancement information (SEI)
	NALUTypeSPS         = 7  // Sequence parameter set
	NALUTypePPS         = 8  // Picture parameter set
	NALUTypeAUD         = 9  // Access unit delimiter
	NALUTypeEndSequence = 10 // End of sequence
	NALUTypeEndStream   = 11 // End of stream
	NALUTypeFiller      = 12 // Filler data
	NALUTypeSPSExt      = 13 // Sequence parameter set extension
	NALUTypePrefix      = 14 // Prefix NAL unit
	NALUTypeSubsetSPS   = 15 // Subset sequence parameter set
	NALUTypeReserved18  = 18
)

const (
	SliceTypeP  = 0
	SliceTypeB  = 1
	SliceTypeI  = 2
	SliceTypeSP = 3
	SliceTypeSI = 4
)

// NALUHeader splits the first byte of a NAL unit
func NALUHeader(b byte) (forbidden bool, refIdc, typ byte) {
	return b&0x80 != 0, (b >> 5) & 0b11, b & 0x1F
}

// IsSlice - NAL unit carries a coded slice the decoder submits
func IsSlice(typ byte) bool {
	return typ == NALUTypePFrame || typ == NALUTypeIFrame
}

// StartsAccessUnit - 7.4.1.2.3: these NAL units, when they follow the last
// VCL NAL unit of a primary coded picture, begin a new access unit
func StartsAccessUnit(typ byte) bool {
	switch {
	case typ >= NALUTypeSEI && typ <= NALUTypeEndStream:
		return true
	case typ >= NALUTypePrefix && typ <= NALUTypeReserved18:
		return true
	}
	return false
}

// RefCount - reference pictures a slice type predicts from, capped at two
func RefCount(sliceType uint32) int {
	switch sliceType % 5 {
	case SliceTypeP, SliceTypeSP:
		return 1
	case SliceTypeB:
		return 2
	}
	return 0
}
