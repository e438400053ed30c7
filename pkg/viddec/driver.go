package viddec

type Codec byte

const (
	CodecMPEG12 Codec = iota + 1
	CodecH264
)

func (c Codec) String() string {
	switch c {
	case CodecMPEG12:
		return "mpeg12"
	case CodecH264:
		return "h264"
	}
	return "none"
}

// driver finds slice and picture boundaries for one codec. The codec is
// chosen once, when the decoder goes idle.
//
// A step never consumes data it doesn't account for and always leaves the
// cursor byte aligned. It returns stepNeedMore instead of looking past the
// end of the cursor.
type driver struct {
	codec  Codec
	mpeg12 mpeg12Driver
	h264   h264Driver
}

func newDriver(codec Codec) driver {
	dr := driver{codec: codec}
	dr.reset()
	return dr
}

func (dr *driver) step(d *Decoder, p *pass) (stepResult, error) {
	switch dr.codec {
	case CodecMPEG12:
		return dr.mpeg12.step(d, p)
	case CodecH264:
		return dr.h264.step(d, p)
	}
	return stepNeedMore, nil
}

// finish updates references with a picture that is about to close
func (dr *driver) finish(pic *picture) {
	switch dr.codec {
	case CodecMPEG12:
		dr.mpeg12.finish(pic)
	case CodecH264:
		dr.h264.finish(pic)
	}
}

// reset releases references and forgets stream headers
func (dr *driver) reset() {
	dr.mpeg12.reset()
	dr.h264.reset()
}

// refs fills the reference list of picture params in the given order
func refs(params *PictureParams, targets ...*Target) {
	for _, t := range targets {
		if t != nil && params.NumRefs < len(params.Refs) {
			params.Refs[params.NumRefs] = t.Surface
			params.NumRefs++
		}
	}
}
