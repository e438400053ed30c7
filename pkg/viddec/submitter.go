package viddec

import (
	"fmt"
)

// submitter is the single entry into the backend decode call
type submitter struct {
	backend Backend
	ctx     Context
}

func (s *submitter) submit(target *Target, params *PictureParams, slices [][]byte) error {
	return s.backend.Submit(s.ctx, target.Surface, params, slices)
}

// picture is the state of the picture being decoded
type picture struct {
	open    bool
	dropped bool // a submission failed, no frame will come out
	target  *Target
	params  PictureParams
}

// beginFrame opens a picture and gets it a decode target, reusing a spare
// target of a queued chunk when possible
func (d *Decoder) beginFrame(params PictureParams) error {
	t := d.queue.takeSpare()
	if t == nil {
		surface, err := d.backend.CreateTarget(d.geometry)
		if err != nil {
			return fmt.Errorf("viddec: create target: %w", err)
		}
		t = newTarget(d.backend, surface)
	}

	params.Profile = d.profile
	params.DecodeOrder = d.order
	d.order++

	d.pic = picture{open: true, target: t, params: params}
	d.stats.Pictures++
	return nil
}

// endFrame closes the open picture. A complete picture becomes a frame of
// the chunk returned by the current pass.
func (d *Decoder) endFrame() {
	if !d.pic.open {
		return
	}

	t := d.pic.target
	d.driver.finish(&d.pic)

	if d.pic.dropped {
		d.stats.Dropped++
		t.release()
	} else {
		d.stats.Frames++
		d.frames = append(d.frames, t)
	}

	d.pic = picture{}
}
