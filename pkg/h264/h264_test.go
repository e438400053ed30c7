package h264

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viddec/viddec/pkg/bits"
)

func TestDecodeSPS(t *testing.T) {
	s := "Z0IAMukAUAHjQgAAB9IAAOqcCAA=" // Amcrest AD410
	b, err := base64.StdEncoding.DecodeString(s)
	require.Nil(t, err)

	sps := DecodeSPS(b)
	require.Equal(t, uint16(2560), sps.Width())
	require.Equal(t, uint16(1920), sps.Height())

	s = "R00AKZmgHgCJ+WEAAAMD6AAATiCE" // Sonoff
	b, err = base64.StdEncoding.DecodeString(s)
	require.Nil(t, err)

	sps = DecodeSPS(b)
	require.Equal(t, uint16(1920), sps.Width())
	require.Equal(t, uint16(1080), sps.Height())

	s = "Z01AMqaAKAC1kAA=" // Dahua
	b, err = base64.StdEncoding.DecodeString(s)
	require.Nil(t, err)

	sps = DecodeSPS(b)
	require.Equal(t, uint16(2560), sps.Width())
	require.Equal(t, uint16(1440), sps.Height())

	s = "Z2QAM6wVFKAoAPGQ" // Reolink
	b, err = base64.StdEncoding.DecodeString(s)
	require.Nil(t, err)

	sps = DecodeSPS(b)
	require.Equal(t, uint16(2560), sps.Width())
	require.Equal(t, uint16(1920), sps.Height())
	require.Equal(t, uint8(100), sps.profileIDC)

	s = "Z2QAFqwa0BQF/yzcBAQFAAADAAEAAAMAHo8UIqA=" // TP-Link sub
	b, err = base64.StdEncoding.DecodeString(s)
	require.Nil(t, err)

	sps = DecodeSPS(b)
	require.Equal(t, uint16(640), sps.Width())
	require.Equal(t, uint16(360), sps.Height())

	require.Nil(t, DecodeSPS(b[:4]))
	require.Nil(t, DecodeSPS([]byte{0x68, 0xCE}))
}

func TestEmulationPrevention(t *testing.T) {
	rbsp := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x03, 0xFF}
	ebsp := RBSPToEBSP(rbsp)
	require.Equal(t, []byte{0x00, 0x00, 0x03, 0x00, 0x00, 0x03, 0x00, 0x01, 0x00, 0x00, 0x03, 0x03, 0xFF}, ebsp)
	require.Equal(t, rbsp, EBSPToRBSP(ebsp))

	// nothing to remove returns the source
	b := []byte{0x00, 0x00, 0x01}
	require.Same(t, &b[0], &EBSPToRBSP(b)[0])
}

func testSPS() []byte {
	w := bits.NewWriter()
	w.WriteBytes(0x67, 66, 0, 30)
	w.WriteUEGolomb(0)  // seq_parameter_set_id
	w.WriteUEGolomb(0)  // log2_max_frame_num_minus4
	w.WriteUEGolomb(0)  // pic_order_cnt_type
	w.WriteUEGolomb(0)  // log2_max_pic_order_cnt_lsb_minus4
	w.WriteUEGolomb(2)  // num_ref_frames
	w.WriteBit(0)       // gaps_in_frame_num_value_allowed_flag
	w.WriteUEGolomb(10) // pic_width_in_mbs_minus_1
	w.WriteUEGolomb(8)  // pic_height_in_map_units_minus_1
	w.WriteBit(1)       // frame_mbs_only_flag
	w.WriteBit(1)       // direct_8x8_inference_flag
	w.WriteBit(0)       // frame_cropping_flag
	w.WriteBit(0)       // vui_parameters_present_flag
	w.WriteTrailingBits()
	return RBSPToEBSP(w.Bytes())
}

func testPPS(id uint32) []byte {
	w := bits.NewWriter()
	w.WriteBytes(0x68)
	w.WriteUEGolomb(id) // pic_parameter_set_id
	w.WriteUEGolomb(0)  // seq_parameter_set_id
	w.WriteBit(1)       // entropy_coding_mode_flag
	w.WriteBit(0)       // bottom_field_pic_order_in_frame_present_flag
	w.WriteUEGolomb(0)  // num_slice_groups_minus1
	w.WriteUEGolomb(0)
	w.WriteUEGolomb(0)
	w.WriteBit(0)
	w.WriteBits8(0, 2)
	w.WriteSEGolomb(0)
	w.WriteSEGolomb(0)
	w.WriteSEGolomb(-2) // chroma_qp_index_offset
	w.WriteBit(1)
	w.WriteBit(0)
	w.WriteBit(0) // redundant_pic_cnt_present_flag
	w.WriteTrailingBits()
	return RBSPToEBSP(w.Bytes())
}

func testSlice(nal byte, sliceType, pps, frameNum, idrID, poc uint32) []byte {
	w := bits.NewWriter()
	w.WriteBytes(nal)
	w.WriteUEGolomb(0) // first_mb_in_slice
	w.WriteUEGolomb(sliceType)
	w.WriteUEGolomb(pps)
	w.WriteBits(frameNum, 4)
	if nal&0x1F == NALUTypeIFrame {
		w.WriteUEGolomb(idrID)
	}
	w.WriteBits(poc, 4)
	w.WriteBytes(0xAA, 0x55) // slice data
	w.WriteTrailingBits()
	return RBSPToEBSP(w.Bytes())
}

func TestDecodePPS(t *testing.T) {
	pps := DecodePPS(testPPS(3))
	require.NotNil(t, pps)
	require.Equal(t, uint32(3), pps.ID())
	require.Equal(t, uint32(0), pps.SPSID())
	require.True(t, pps.CABAC())
	require.False(t, pps.Transform8x8())
	require.Equal(t, int32(-2), pps.second_chroma_qp_index_offset)

	require.Nil(t, DecodePPS(testSPS()))
}

func TestSliceHeader(t *testing.T) {
	sps := DecodeSPS(testSPS())
	require.NotNil(t, sps)
	require.Equal(t, uint16(176), sps.Width())
	require.Equal(t, uint16(144), sps.Height())
	require.Equal(t, uint32(2), sps.numRefs)

	spss := map[uint32]*SPS{0: sps}
	ppss := map[uint32]*PPS{0: DecodePPS(testPPS(0)), 1: DecodePPS(testPPS(1))}

	idr, err := DecodeSliceHeader(testSlice(0x65, 7, 0, 0, 1, 0), spss, ppss)
	require.Nil(t, err)
	require.True(t, idr.IDR())
	require.Equal(t, uint32(7), idr.SliceType)
	require.Equal(t, uint32(1), idr.IDRPicID)
	require.Equal(t, 0, RefCount(idr.SliceType))
	require.True(t, idr.FirstOfNewPicture(nil))

	// second slice of the same picture
	same, err := DecodeSliceHeader(testSlice(0x65, 7, 0, 0, 1, 0), spss, ppss)
	require.Nil(t, err)
	require.False(t, same.FirstOfNewPicture(idr))

	p, err := DecodeSliceHeader(testSlice(0x41, 5, 0, 1, 0, 2), spss, ppss)
	require.Nil(t, err)
	require.Equal(t, uint32(1), p.FrameNum)
	require.Equal(t, uint32(2), p.POCLsb)
	require.Equal(t, 1, RefCount(p.SliceType))
	require.True(t, p.FirstOfNewPicture(idr))

	// B picture sharing frame_num, nal_ref_idc drops to zero
	b, err := DecodeSliceHeader(testSlice(0x01, 6, 0, 1, 0, 4), spss, ppss)
	require.Nil(t, err)
	require.Equal(t, 2, RefCount(b.SliceType))
	require.True(t, b.FirstOfNewPicture(p))

	other, err := DecodeSliceHeader(testSlice(0x41, 5, 1, 1, 0, 2), spss, ppss)
	require.Nil(t, err)
	require.True(t, other.FirstOfNewPicture(p))

	idr2, err := DecodeSliceHeader(testSlice(0x65, 7, 0, 0, 2, 0), spss, ppss)
	require.Nil(t, err)
	require.True(t, idr2.FirstOfNewPicture(idr))

	_, err = DecodeSliceHeader(testSlice(0x65, 7, 5, 0, 1, 0), spss, ppss)
	require.ErrorIs(t, err, ErrNoParamSet)

	_, err = DecodeSliceHeader(testSlice(0x65, 7, 0, 0, 1, 0)[:2], spss, ppss)
	require.ErrorIs(t, err, ErrShortSlice)

	_, err = DecodeSliceHeader([]byte{0xE5, 0x88}, spss, ppss)
	require.ErrorIs(t, err, ErrBadSlice)

	_, err = DecodeSliceHeader(testPPS(0), spss, ppss)
	require.ErrorIs(t, err, ErrNotSliceNALU)
}

func TestAccessUnit(t *testing.T) {
	for _, typ := range []byte{NALUTypeSEI, NALUTypeSPS, NALUTypePPS, NALUTypeAUD, NALUTypeEndStream, NALUTypePrefix, NALUTypeReserved18} {
		require.True(t, StartsAccessUnit(typ), typ)
	}
	for _, typ := range []byte{NALUTypePFrame, NALUTypeIFrame, NALUTypeFiller, NALUTypeSPSExt, 19} {
		require.False(t, StartsAccessUnit(typ), typ)
	}
}

func TestSPSCrop(t *testing.T) {
	w := bits.NewWriter()
	w.WriteBytes(0x67, 100, 0, 30)
	w.WriteUEGolomb(0)  // seq_parameter_set_id
	w.WriteUEGolomb(2)  // chroma_format_idc 4:2:2
	w.WriteUEGolomb(0)  // bit_depth_luma_minus8
	w.WriteUEGolomb(0)  // bit_depth_chroma_minus8
	w.WriteBit(0)       // qpprime_y_zero_transform_bypass_flag
	w.WriteBit(0)       // seq_scaling_matrix_present_flag
	w.WriteUEGolomb(0)  // log2_max_frame_num_minus4
	w.WriteUEGolomb(2)  // pic_order_cnt_type
	w.WriteUEGolomb(1)  // num_ref_frames
	w.WriteBit(0)       // gaps_in_frame_num_value_allowed_flag
	w.WriteUEGolomb(44) // pic_width_in_mbs_minus_1
	w.WriteUEGolomb(17) // pic_height_in_map_units_minus_1
	w.WriteBit(0)       // frame_mbs_only_flag
	w.WriteBit(0)       // mb_adaptive_frame_field_flag
	w.WriteBit(1)       // direct_8x8_inference_flag
	w.WriteBit(1)       // frame_cropping_flag
	w.WriteUEGolomb(0)
	w.WriteUEGolomb(8)
	w.WriteUEGolomb(0)
	w.WriteUEGolomb(2)
	w.WriteBit(0) // vui_parameters_present_flag
	w.WriteTrailingBits()

	sps := DecodeSPS(RBSPToEBSP(w.Bytes()))
	require.NotNil(t, sps)
	require.False(t, sps.frameMbsOnly)
	// 4:2:2 crops two columns and, field coded, two rows per unit
	require.Equal(t, uint16(720-16), sps.Width())
	require.Equal(t, uint16(576-4), sps.Height())
}
