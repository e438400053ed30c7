package viddec

import (
	"errors"

	"github.com/viddec/viddec/pkg/mpeg12"
)

var errNoPictureHeader = errors.New("viddec: slice without picture header")

const (
	mpeg12SequenceSize = 4 + 8 + 2*64
	mpeg12QuantSize    = 4 + 1 + 4*64
	mpeg12PictureSize  = 4 + 8
	mpeg12CodingSize   = 4 + 7
	mpeg12ExtSize      = 4 + 6
	mpeg12GOPSize      = 4 + 4
)

// mpeg12Driver is start code driven: headers stage the next picture, its
// first slice opens it and any code that can't be inside a picture closes
// it. I and P pictures are the anchors B pictures predict from.
type mpeg12Driver struct {
	seq   *mpeg12.SequenceHeader
	ext   *mpeg12.SequenceExtension
	quant mpeg12.QuantMatrices
	next  *mpeg12.Picture // staged by a picture header

	past, future *Target
	width        int
	height       int
}

func (m *mpeg12Driver) step(d *Decoder, p *pass) (stepResult, error) {
	if d.slice.open {
		return d.sliceData(p, m.closes)
	}

	if !p.findStartCode() {
		return stepProgress, nil
	}

	code, ok := p.code()
	if !ok {
		return stepNeedMore, nil
	}

	if mpeg12.EndsPicture(code) {
		d.endFrame()
	}

	switch code {
	case mpeg12.PictureStartCode:
		return m.pictureHeader(d, p), nil
	case mpeg12.SequenceHeaderCode:
		return m.sequenceHeader(d, p), nil
	case mpeg12.ExtensionStartCode:
		return m.extension(d, p), nil
	case mpeg12.GroupStartCode:
		_, n, err := mpeg12.ParseGOPHeader(p.peek(mpeg12GOPSize))
		if err != nil {
			return m.headerError(d, p, mpeg12GOPSize, err), nil
		}
		p.c.SkipBits(n * 8)
		return stepProgress, nil
	case mpeg12.SequenceEndCode:
		m.releaseRefs()
	}

	if mpeg12.IsSlice(code) {
		return m.slice(d, p)
	}

	// user data, sequence error and reserved codes carry nothing we use
	p.c.SkipBits(32)
	return stepProgress, nil
}

func (m *mpeg12Driver) headerError(d *Decoder, p *pass, size int, err error) stepResult {
	if errors.Is(err, mpeg12.ErrShortBuffer) && p.short(p.peek(size), size) {
		return stepNeedMore
	}
	return d.resync(p, err)
}

func (m *mpeg12Driver) sequenceHeader(d *Decoder, p *pass) stepResult {
	h, n, err := mpeg12.ParseSequenceHeader(p.peek(mpeg12SequenceSize))
	if err != nil {
		return m.headerError(d, p, mpeg12SequenceSize, err)
	}

	if width, height := int(h.Width), int(h.Height); width != m.width || height != m.height {
		m.width, m.height = width, height
		if width != d.geometry.Width || height != d.geometry.Height {
			d.log.Warn().Msgf("[viddec] stream size %dx%d, port size %dx%d", width, height, d.geometry.Width, d.geometry.Height)
		}
	}

	m.seq = h
	m.ext = nil
	m.next = nil
	h.Apply(&m.quant)

	p.c.SkipBits(n * 8)
	return stepProgress
}

func (m *mpeg12Driver) extension(d *Decoder, p *pass) stepResult {
	id, err := mpeg12.ExtensionID(p.peek(5))
	if err != nil {
		return m.headerError(d, p, 5, err)
	}

	var n int

	switch id {
	case mpeg12.ExtSequence:
		var x *mpeg12.SequenceExtension
		if x, n, err = mpeg12.ParseSequenceExtension(p.peek(mpeg12ExtSize)); err != nil {
			return m.headerError(d, p, mpeg12ExtSize, err)
		}
		m.ext = x

	case mpeg12.ExtQuantMatrix:
		var x *mpeg12.QuantMatrixExtension
		if x, n, err = mpeg12.ParseQuantMatrixExtension(p.peek(mpeg12QuantSize), m.quant); err != nil {
			return m.headerError(d, p, mpeg12QuantSize, err)
		}
		m.quant = x.QuantMatrices
		if m.next != nil {
			m.next.Quant = m.quant
		}

	case mpeg12.ExtPictureCoding:
		var x *mpeg12.PictureCodingExtension
		if x, n, err = mpeg12.ParsePictureCodingExtension(p.peek(mpeg12CodingSize)); err != nil {
			return m.headerError(d, p, mpeg12CodingSize, err)
		}
		if m.next != nil {
			m.next.Coding = *x
		}

	default:
		n = 4
	}

	p.c.SkipBits(n * 8)
	return stepProgress
}

func (m *mpeg12Driver) pictureHeader(d *Decoder, p *pass) stepResult {
	h, n, err := mpeg12.ParsePictureHeader(p.peek(mpeg12PictureSize))
	if err != nil {
		return m.headerError(d, p, mpeg12PictureSize, err)
	}

	pic := &mpeg12.Picture{MPEG2: m.ext != nil, Header: *h, Quant: m.quant}
	if m.seq != nil {
		pic.Sequence = *m.seq
	}
	if !pic.MPEG2 {
		// MPEG-1 pictures are progressive frames
		pic.Coding = mpeg12.PictureCodingExtension{
			FCode:             [2][2]byte{{h.ForwardFCode, h.ForwardFCode}, {h.BackwardFCode, h.BackwardFCode}},
			PictureStructure:  mpeg12.FramePicture,
			FramePredFrameDCT: true,
			ProgressiveFrame:  true,
		}
	}
	m.next = pic

	p.c.SkipBits(n * 8)
	return stepProgress
}

func (m *mpeg12Driver) slice(d *Decoder, p *pass) (stepResult, error) {
	if !d.pic.open {
		if m.next == nil || m.seq == nil {
			return d.resync(p, errNoPictureHeader), nil
		}

		params := PictureParams{MPEG12: m.next}
		switch mpeg12.RefCount(m.next.Header.CodingType) {
		case 1:
			refs(&params, m.future)
		case 2:
			refs(&params, m.past, m.future)
		}

		if err := d.beginFrame(params); err != nil {
			return stepProgress, err
		}
		m.next = nil
	}

	d.openSlice(p)
	p.c.SkipBits(32)
	return d.sliceData(p, m.closes)
}

// closes - the start code at the cursor ends the picture
func (m *mpeg12Driver) closes(p *pass) bool {
	code, ok := p.code()
	return ok && mpeg12.EndsPicture(code)
}

func (m *mpeg12Driver) finish(pic *picture) {
	if pic.dropped || !mpeg12.IsAnchor(pic.params.MPEG12.Header.CodingType) {
		return
	}
	if m.past != nil {
		m.past.release()
	}
	m.past, m.future = m.future, pic.target.retain()
}

func (m *mpeg12Driver) releaseRefs() {
	if m.past != nil {
		m.past.release()
	}
	if m.future != nil {
		m.future.release()
	}
	m.past, m.future = nil, nil
}

func (m *mpeg12Driver) reset() {
	m.releaseRefs()
	*m = mpeg12Driver{quant: mpeg12.DefaultQuantMatrices()}
}
