package viddec_test

import (
	"hash/crc32"
	"math/rand"

	"github.com/viddec/viddec/pkg/bits"
	"github.com/viddec/viddec/pkg/h264"
	"github.com/viddec/viddec/pkg/mpeg12"
)

// frame - what the soft backend saw of one picture
type frame struct {
	sum  uint32
	size int64
}

func frameOf(slices ...[]byte) frame {
	var f frame
	for _, b := range slices {
		f.sum = crc32.Update(f.sum, crc32.IEEETable, b)
		f.size += int64(len(b))
	}
	return f
}

// payload - n bytes that never form a start code prefix
func payload(rnd *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		if i%7 == 3 && i < n-1 {
			continue // single zero bytes
		}
		b[i] = byte(1 + rnd.Intn(255))
	}
	return b
}

func mpeg2Headers() []byte {
	seq := &mpeg12.SequenceHeader{
		Width: 176, Height: 144, AspectRatio: 2, FrameRateCode: 3, BitRate: 1000, VBVBufferSize: 112,
	}
	ext := &mpeg12.SequenceExtension{ProfileAndLevel: 0x48, Progressive: true, ChromaFormat: 1}
	gop := &mpeg12.GOPHeader{ClosedGOP: true}

	b := seq.Marshal()
	b = append(b, ext.Marshal()...)
	b = append(b, gop.Marshal()...)
	return b
}

func mpeg2Picture(coding byte, temporal uint16) []byte {
	h := &mpeg12.PictureHeader{
		TemporalReference: temporal, CodingType: coding, VBVDelay: 0xFFFF, ForwardFCode: 7, BackwardFCode: 7,
	}
	x := &mpeg12.PictureCodingExtension{
		FCode:             [2][2]byte{{1, 1}, {1, 1}},
		PictureStructure:  mpeg12.FramePicture,
		FramePredFrameDCT: true,
		ProgressiveFrame:  true,
	}
	return append(h.Marshal(), x.Marshal()...)
}

func mpeg2Slice(rnd *rand.Rand, code byte, size int) []byte {
	return append([]byte{0, 0, 1, code}, payload(rnd, size-4)...)
}

// mpeg2Stream - a sequence of pictures of the given coding types with user
// data and a sequence end
func mpeg2Stream(types ...byte) ([]byte, []frame) {
	rnd := rand.New(rand.NewSource(1))

	b := mpeg2Headers()
	b = append(b, 0, 0, 1, mpeg12.UserDataStartCode)
	b = append(b, payload(rnd, 30)...)

	var frames []frame
	for i, coding := range types {
		b = append(b, mpeg2Picture(coding, uint16(i))...)

		var slices [][]byte
		for j := 0; j < 1+i%3; j++ {
			slice := mpeg2Slice(rnd, byte(1+j), 20+rnd.Intn(300))
			slices = append(slices, slice)
			b = append(b, slice...)
		}
		frames = append(frames, frameOf(slices...))
	}

	b = append(b, 0, 0, 1, mpeg12.SequenceEndCode)
	return b, frames
}

func h264SPS() []byte {
	w := bits.NewWriter()
	w.WriteBytes(0x67, 100, 0, 30)
	w.WriteUEGolomb(0) // seq_parameter_set_id
	w.WriteUEGolomb(1) // chroma_format_idc
	w.WriteUEGolomb(0) // bit_depth_luma_minus8
	w.WriteUEGolomb(0) // bit_depth_chroma_minus8
	w.WriteBit(0)      // qpprime_y_zero_transform_bypass_flag
	w.WriteBit(0)      // seq_scaling_matrix_present_flag
	w.WriteUEGolomb(0) // log2_max_frame_num_minus4
	w.WriteUEGolomb(0) // pic_order_cnt_type
	w.WriteUEGolomb(0) // log2_max_pic_order_cnt_lsb_minus4
	w.WriteUEGolomb(2) // num_ref_frames
	w.WriteBit(0)      // gaps_in_frame_num_value_allowed_flag
	w.WriteUEGolomb(10)
	w.WriteUEGolomb(8)
	w.WriteBit(1) // frame_mbs_only_flag
	w.WriteBit(1) // direct_8x8_inference_flag
	w.WriteBit(0) // frame_cropping_flag
	w.WriteBit(0) // vui_parameters_present_flag
	w.WriteTrailingBits()
	return h264.RBSPToEBSP(w.Bytes())
}

func h264PPS() []byte {
	w := bits.NewWriter()
	w.WriteBytes(0x68)
	w.WriteUEGolomb(0) // pic_parameter_set_id
	w.WriteUEGolomb(0) // seq_parameter_set_id
	w.WriteBit(1)      // entropy_coding_mode_flag
	w.WriteBit(0)      // bottom_field_pic_order_in_frame_present_flag
	w.WriteUEGolomb(0) // num_slice_groups_minus1
	w.WriteUEGolomb(1)
	w.WriteUEGolomb(0)
	w.WriteBit(0)
	w.WriteBits8(0, 2)
	w.WriteSEGolomb(0)
	w.WriteSEGolomb(0)
	w.WriteSEGolomb(0)
	w.WriteBit(1)
	w.WriteBit(0)
	w.WriteBit(0) // redundant_pic_cnt_present_flag
	w.WriteTrailingBits()
	return h264.RBSPToEBSP(w.Bytes())
}

type h264Picture struct {
	nal       byte
	sliceType uint32
	frameNum  uint32
	idrID     uint32
	poc       uint32
}

func h264Slice(rnd *rand.Rand, pic h264Picture, firstMB uint32) []byte {
	w := bits.NewWriter()
	w.WriteBytes(pic.nal)
	w.WriteUEGolomb(firstMB)
	w.WriteUEGolomb(pic.sliceType)
	w.WriteUEGolomb(0) // pic_parameter_set_id
	w.WriteBits(pic.frameNum, 4)
	if pic.nal&0x1F == h264.NALUTypeIFrame {
		w.WriteUEGolomb(pic.idrID)
	}
	w.WriteBits(pic.poc, 4)
	w.WriteBytes(payload(rnd, 10+rnd.Intn(200))...)
	w.WriteTrailingBits()
	return h264.RBSPToEBSP(w.Bytes())
}

// h264Stream - two IDR periods with P and non reference B pictures, some
// of them behind an access unit delimiter
func h264Stream() ([]byte, []frame) {
	rnd := rand.New(rand.NewSource(2))

	pics := []h264Picture{
		{nal: 0x65, sliceType: 7},
		{nal: 0x41, sliceType: 5, frameNum: 1, poc: 4},
		{nal: 0x01, sliceType: 6, frameNum: 2, poc: 2},
		{nal: 0x41, sliceType: 5, frameNum: 2, poc: 8},
		{nal: 0x65, sliceType: 7, idrID: 1},
		{nal: 0x41, sliceType: 5, frameNum: 1, poc: 2},
	}

	var b []byte
	nalu := func(nal []byte) []byte {
		unit := append([]byte{0, 0, 1}, nal...)
		b = append(b, unit...)
		return unit
	}

	nalu(h264SPS())
	nalu(h264PPS())

	var frames []frame
	for i, pic := range pics {
		if i%2 == 1 {
			nalu([]byte{0x09, 0xF0}) // access unit delimiter
		}

		var slices [][]byte
		for j := 0; j < 1+i%2; j++ {
			slices = append(slices, nalu(h264Slice(rnd, pic, uint32(j*50))))
		}
		frames = append(frames, frameOf(slices...))
	}

	return b, frames
}
