package viddec

import (
	"errors"

	"github.com/viddec/viddec/pkg/h264"
)

var (
	errForbiddenBit = errors.New("viddec: NAL unit forbidden bit set")
	errParamSet     = errors.New("viddec: malformed parameter set")
	errNeedMore     = errors.New("viddec: slice header not complete")
)

// maxSliceHeader - bytes copied to parse a slice header, prefix included
const maxSliceHeader = 3 + 96

// h264Driver walks Annex B NAL units. Every slice header is parsed to find
// the first slice of a new picture. A two entry sliding window keeps the
// latest reference pictures.
type h264Driver struct {
	sps  map[uint32]*h264.SPS
	pps  map[uint32]*h264.PPS
	last *h264.SliceHeader // latest slice of the open picture
	refs [2]*Target        // newest first

	width  int
	height int
}

func (h *h264Driver) step(d *Decoder, p *pass) (stepResult, error) {
	if d.slice.open {
		return d.sliceData(p, h.closes)
	}

	if !p.findStartCode() {
		return stepProgress, nil
	}

	hdr, ok := p.code()
	if !ok {
		return stepNeedMore, nil
	}

	forbidden, _, typ := h264.NALUHeader(hdr)
	if forbidden {
		return d.resync(p, errForbiddenBit), nil
	}

	if h264.IsSlice(typ) {
		return h.slice(d, p)
	}

	if h264.StartsAccessUnit(typ) {
		d.endFrame()
	}

	switch typ {
	case h264.NALUTypeSPS, h264.NALUTypePPS:
		return h.paramSet(d, p, typ), nil
	case h264.NALUTypeEndSequence, h264.NALUTypeEndStream:
		h.last = nil
	}

	p.c.SkipBits(32)
	return stepProgress, nil
}

// paramSet needs the whole NAL unit, up to the next start code
func (h *h264Driver) paramSet(d *Decoder, p *pass, typ byte) stepResult {
	n := p.c.IndexStartCode(3)
	if n < 0 {
		if !p.eos {
			return stepNeedMore
		}
		n = p.c.BitsLeft() / 8
	}

	nalu := p.peek(n)[3:]

	if typ == h264.NALUTypeSPS {
		sps := h264.DecodeSPS(nalu)
		if sps == nil {
			return d.resync(p, errParamSet)
		}
		h.sps[sps.ID()] = sps

		if width, height := int(sps.Width()), int(sps.Height()); width != h.width || height != h.height {
			h.width, h.height = width, height
			if width != d.geometry.Width || height != d.geometry.Height {
				d.log.Warn().Msgf("[viddec] stream size %dx%d, port size %dx%d", width, height, d.geometry.Width, d.geometry.Height)
			}
		}
	} else {
		pps := h264.DecodePPS(nalu)
		if pps == nil {
			return d.resync(p, errParamSet)
		}
		h.pps[pps.ID()] = pps
	}

	p.c.SkipBits(n * 8)
	return stepProgress
}

func (h *h264Driver) header(p *pass) (*h264.SliceHeader, error) {
	b := p.peek(maxSliceHeader)
	sh, err := h264.DecodeSliceHeader(b[3:], h.sps, h.pps)
	if errors.Is(err, h264.ErrShortSlice) && p.short(b, maxSliceHeader) {
		return nil, errNeedMore
	}
	return sh, err
}

func (h *h264Driver) slice(d *Decoder, p *pass) (stepResult, error) {
	sh, err := h.header(p)
	if err != nil {
		if err == errNeedMore {
			return stepNeedMore, nil
		}
		return d.resync(p, err), nil
	}

	if d.pic.open && sh.FirstOfNewPicture(h.last) {
		d.endFrame()
	}

	if !d.pic.open {
		if sh.IDR() {
			h.releaseRefs()
		}

		params := PictureParams{H264: sh}
		switch h264.RefCount(sh.SliceType) {
		case 1:
			refs(&params, h.refs[0])
		case 2:
			refs(&params, h.refs[0], h.refs[1])
		}

		if err = d.beginFrame(params); err != nil {
			return stepProgress, err
		}
	}

	h.last = sh

	d.openSlice(p)
	p.c.SkipBits(32)
	return d.sliceData(p, h.closes)
}

// closes - the NAL unit at the cursor starts another access unit or the
// first slice of another picture
func (h *h264Driver) closes(p *pass) bool {
	hdr, ok := p.code()
	if !ok {
		return false
	}

	forbidden, _, typ := h264.NALUHeader(hdr)
	switch {
	case forbidden:
		return false
	case h264.StartsAccessUnit(typ):
		return true
	case !h264.IsSlice(typ):
		return false
	}

	sh, err := h.header(p)
	return err == nil && sh.FirstOfNewPicture(h.last)
}

func (h *h264Driver) finish(pic *picture) {
	if pic.dropped || pic.params.H264.RefIdc == 0 {
		return
	}
	if h.refs[1] != nil {
		h.refs[1].release()
	}
	h.refs[0], h.refs[1] = pic.target.retain(), h.refs[0]
}

func (h *h264Driver) releaseRefs() {
	for i, t := range h.refs {
		if t != nil {
			t.release()
			h.refs[i] = nil
		}
	}
}

func (h *h264Driver) reset() {
	h.releaseRefs()
	*h = h264Driver{
		sps: map[uint32]*h264.SPS{},
		pps: map[uint32]*h264.PPS{},
	}
}
