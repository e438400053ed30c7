package viddec

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type State byte

const (
	StateLoaded State = iota
	StateIdle
)

func (s State) String() string {
	if s == StateIdle {
		return "idle"
	}
	return "loaded"
}

type Options struct {
	Profile  Profile
	Geometry Geometry
	Log      *zerolog.Logger
}

type Stats struct {
	Chunks    int   // chunks admitted
	Bytes     int64 // bytes admitted
	Passes    int
	Pictures  int // pictures started
	Frames    int // pictures completed
	Dropped   int // pictures lost to submission failures
	Slices    int // backend submissions
	Submitted int64
	Resyncs   int
	Overreads int
	Carried   int64
}

// Decoder reassembles encoded chunks into slices and pictures for a Backend.
//
// Decoder does no locking. The host must serialize every call on one
// instance: DecodeBuffer, FrameDecoded and state changes never run
// concurrently with each other.
type Decoder struct {
	backend Backend
	host    Host
	log     zerolog.Logger

	profile  Profile
	geometry Geometry
	state    State
	err      error // sticky after a fatal backend failure

	ctx    Context
	queue  Queue
	driver driver
	sub    submitter

	pic     picture
	slice   pendingSlice
	frames  []*Target // completed during the current pass
	order   int       // next DecodeOrder
	scratch []byte

	stats Stats
}

func New(backend Backend, host Host, opts Options) *Decoder {
	d := &Decoder{
		backend:  backend,
		host:     host,
		profile:  opts.Profile,
		geometry: opts.Geometry,
		scratch:  make([]byte, 512),
	}

	if opts.Log != nil {
		d.log = *opts.Log
	} else {
		d.log = zerolog.Nop()
	}

	if d.geometry.Width == 0 {
		d.geometry = NewGeometry(DefaultWidth, DefaultHeight)
	}

	return d
}

func (d *Decoder) State() State {
	return d.state
}

func (d *Decoder) Profile() Profile {
	return d.profile
}

func (d *Decoder) Geometry() Geometry {
	return d.geometry
}

func (d *Decoder) Stats() Stats {
	s := d.stats
	s.Carried = d.queue.Carried()
	return s
}

// Err - the fatal error that stopped decoding, if any
func (d *Decoder) Err() error {
	return d.err
}

// SetGeometry is only possible in the loaded state. A change while idle is
// a configuration change the caller has to handle by reloading.
func (d *Decoder) SetGeometry(geo Geometry) error {
	if d.state == StateIdle {
		return ErrGeometryLocked
	}
	d.geometry = geo
	return nil
}

func (d *Decoder) SetProfile(profile Profile) error {
	if d.state == StateIdle {
		return ErrBadState
	}
	d.profile = profile
	return nil
}

// SetState moves the decoder between loaded and idle. Loaded to idle creates
// the decode context and picks the codec driver. Idle to loaded tears
// everything down; queued chunks are returned empty without decoding.
func (d *Decoder) SetState(state State) error {
	switch {
	case d.state == state:
		return nil
	case state == StateIdle:
		return d.load()
	case state == StateLoaded:
		d.unload()
		return nil
	}
	return ErrBadState
}

func (d *Decoder) load() error {
	codec := d.profile.Codec()
	if codec == 0 {
		return ErrNoProfile
	}

	ctx, err := d.backend.CreateContext(d.profile, d.geometry)
	if err != nil {
		return fmt.Errorf("viddec: create context: %w", err)
	}

	d.ctx = ctx
	d.driver = newDriver(codec)
	d.sub = submitter{backend: d.backend, ctx: ctx}
	d.state = StateIdle
	d.err = nil

	d.log.Debug().Msgf("[viddec] idle profile=%s size=%dx%d", d.profile, d.geometry.Width, d.geometry.Height)
	return nil
}

func (d *Decoder) unload() {
	for _, chunk := range d.queue.Reset() {
		d.host.ReturnEmpty(chunk)
	}

	d.teardown()

	if d.ctx != nil {
		d.backend.DestroyContext(d.ctx)
		d.ctx = nil
	}

	d.state = StateLoaded
	d.err = nil

	d.log.Debug().Msg("[viddec] loaded")
}

// teardown releases picture state, references and pending frames
func (d *Decoder) teardown() {
	if d.pic.target != nil {
		d.pic.target.release()
	}
	d.pic = picture{}
	d.slice = pendingSlice{}

	releaseAll(d.frames)
	d.frames = nil

	d.driver.reset()
}

// DecodeBuffer admits one input chunk and runs reassembly passes while a
// lookahead chunk is queued or the head ends the stream. Each pass returns
// the head chunk to the host.
//
// A backend resource failure stops decoding for good: queued chunks are
// returned empty and pictures completed earlier in the same call are
// released without reaching the host.
func (d *Decoder) DecodeBuffer(chunk *InputChunk) error {
	if d.state != StateIdle {
		d.host.ReturnEmpty(chunk)
		return ErrNotIdle
	}

	if d.err != nil {
		d.host.ReturnEmpty(chunk)
		return d.err
	}

	if chunk.Filled == 0 && !chunk.EOS {
		d.host.ReturnEmpty(chunk)
		return nil
	}

	if err := d.queue.Admit(chunk); err != nil {
		d.host.ReturnEmpty(chunk)
		return err
	}

	d.stats.Chunks++
	d.stats.Bytes += int64(chunk.Filled)

	for d.queue.Len() > 1 || (d.queue.Len() == 1 && d.queue.Head().EOS) {
		if err := d.pass(); err != nil {
			d.fail(err)
			return err
		}
	}

	return nil
}

// fail makes a backend resource failure sticky and gives every queued chunk
// back to the host
func (d *Decoder) fail(err error) {
	d.log.Error().Err(err).Msg("[viddec] decode stopped")

	d.err = err
	d.teardown()

	for _, chunk := range d.queue.Reset() {
		d.host.ReturnEmpty(chunk)
	}
}

// pass is one reassembly pass over the outstanding data
func (d *Decoder) pass() error {
	head := d.queue.Head()

	p := newPass(d.queue.Ranges(), d.queue.Position(), head.EOS, d.queue.LookaheadLen(), d.scratch)

	d.stats.Passes++

	if err := d.run(p); err != nil {
		if !errors.Is(err, ErrOverread) {
			return err
		}
		d.abort(p, err)
	}

	end := p.pos()
	if p.eos {
		end = p.end()
	}

	if d.slice.open {
		if err := d.flushSlice(end, p.eos); err != nil {
			d.abort(p, err)
		}
	}

	if p.eos {
		d.flush()
	}

	chunk := d.queue.Commit(int(end - p.start))
	d.returnChunk(chunk)

	return nil
}

func (d *Decoder) run(p *pass) error {
	for p.c.BitsLeft() > p.min {
		before := p.c.Consumed()

		res, err := d.driver.step(d, p)
		if err != nil {
			return err
		}

		if res == stepNeedMore || p.c.Consumed() == before {
			break
		}
	}
	return nil
}

// abort stops using the current picture after an internal accounting error
func (d *Decoder) abort(p *pass, err error) {
	d.stats.Overreads++
	d.log.Warn().Err(err).Int64("pos", p.pos()).Msg("[viddec] pass aborted")

	d.slice = pendingSlice{}
	if d.pic.open {
		d.pic.dropped = true
	}
}

func (d *Decoder) returnChunk(chunk *InputChunk) {
	if len(d.frames) == 0 {
		d.host.ReturnEmpty(chunk)
		return
	}

	chunk.frames = append(chunk.frames, d.frames...)
	d.frames = d.frames[:0]
	d.host.ReturnFilled(chunk)
}
