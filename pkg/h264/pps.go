package h264

import (
	"github.com/viddec/viddec/pkg/bits"
)

// https://www.itu.int/rec/T-REC-H.264
// 7.3.2.2 Picture parameter set RBSP syntax

//goland:noinspection GoSnakeCaseUsage
type PPS struct {
	pic_parameter_set_id                         uint32
	seq_parameter_set_id                         uint32
	entropy_coding_mode_flag                     byte
	bottom_field_pic_order_in_frame_present_flag byte
	num_slice_groups_minus1                      uint32
	num_ref_idx_l0_default_active_minus1         uint32
	num_ref_idx_l1_default_active_minus1         uint32
	weighted_pred_flag                           byte
	weighted_bipred_idc                          uint8
	pic_init_qp_minus26                          int32
	pic_init_qs_minus26                          int32
	chroma_qp_index_offset                       int32
	deblocking_filter_control_present_flag       byte
	constrained_intra_pred_flag                  byte
	redundant_pic_cnt_present_flag               byte

	transform_8x8_mode_flag         byte
	pic_scaling_matrix_present_flag byte
	second_chroma_qp_index_offset   int32
}

// DecodePPS parses a whole PPS NAL unit, header byte included. Slice group
// maps are not supported and make it return nil, as does a truncated NAL.
func DecodePPS(nalu []byte) *PPS {
	r := bits.NewReader(EBSPToRBSP(nalu))

	hdr := r.ReadByte()
	if hdr&0x1F != NALUTypePPS {
		return nil
	}

	p := &PPS{
		pic_parameter_set_id:                         r.ReadUEGolomb(),
		seq_parameter_set_id:                         r.ReadUEGolomb(),
		entropy_coding_mode_flag:                     r.ReadBit(),
		bottom_field_pic_order_in_frame_present_flag: r.ReadBit(),
		num_slice_groups_minus1:                      r.ReadUEGolomb(),
	}

	if p.num_slice_groups_minus1 > 0 {
		return nil
	}

	p.num_ref_idx_l0_default_active_minus1 = r.ReadUEGolomb()
	p.num_ref_idx_l1_default_active_minus1 = r.ReadUEGolomb()
	p.weighted_pred_flag = r.ReadBit()
	p.weighted_bipred_idc = r.ReadBits8(2)
	p.pic_init_qp_minus26 = r.ReadSEGolomb()
	p.pic_init_qs_minus26 = r.ReadSEGolomb()
	p.chroma_qp_index_offset = r.ReadSEGolomb()
	p.deblocking_filter_control_present_flag = r.ReadBit()
	p.constrained_intra_pred_flag = r.ReadBit()
	p.redundant_pic_cnt_present_flag = r.ReadBit()

	p.second_chroma_qp_index_offset = p.chroma_qp_index_offset

	if r.MoreRBSPData() {
		p.transform_8x8_mode_flag = r.ReadBit()
		p.pic_scaling_matrix_present_flag = r.ReadBit()
		// scaling lists depend on the SPS chroma format, the backend gets
		// them from the raw parameter sets
		if p.pic_scaling_matrix_present_flag == 0 {
			p.second_chroma_qp_index_offset = r.ReadSEGolomb()
		}
	}

	if r.EOF {
		return nil
	}

	return p
}

func (p *PPS) ID() uint32 {
	return p.pic_parameter_set_id
}

func (p *PPS) SPSID() uint32 {
	return p.seq_parameter_set_id
}

func (p *PPS) CABAC() bool {
	return p.entropy_coding_mode_flag != 0
}

func (p *PPS) Transform8x8() bool {
	return p.transform_8x8_mode_flag != 0
}
