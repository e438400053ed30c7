package decode

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/viddec/viddec/pkg/viddec"
)

// Sink takes decoded NV12 frames of the session geometry
type Sink func(frame []byte, geo viddec.Geometry) error

// session feeds one input through a decoder. It is the host of the
// decoder: input chunks and output slots are owned here and recycled.
type session struct {
	cfg     Config
	log     zerolog.Logger
	backend viddec.Backend
	dec     *viddec.Decoder
	sink    Sink

	chunks []*viddec.InputChunk // every allocated chunk
	free   []*viddec.InputChunk
	filled []*viddec.InputChunk

	slots []*viddec.OutputSlot
	next  int

	sizes []int
	size  int // index in sizes

	frames int
}

func newSession(cfg Config, backend viddec.Backend, profile viddec.Profile, sink Sink, log zerolog.Logger) *session {
	s := &session{
		cfg:     cfg,
		log:     log,
		backend: backend,
		sink:    sink,
		sizes:   cfg.chunkSizes(),
	}

	s.dec = viddec.New(backend, s, viddec.Options{
		Profile:  profile,
		Geometry: cfg.Geometry(),
		Log:      &s.log,
	})

	maxSize := 0
	for _, size := range s.sizes {
		maxSize = max(maxSize, size)
	}

	for i := 0; i < cfg.InputBuffers; i++ {
		chunk := viddec.NewInputChunk(maxSize)
		s.chunks = append(s.chunks, chunk)
		s.free = append(s.free, chunk)
	}

	frameSize := s.dec.Geometry().FrameSize()
	for i := 0; i < cfg.OutputBuffers; i++ {
		s.slots = append(s.slots, viddec.NewOutputSlot(frameSize, cfg.Handles))
	}

	return s
}

func (s *session) ReturnEmpty(chunk *viddec.InputChunk) {
	chunk.Reset()
	s.free = append(s.free, chunk)
}

func (s *session) ReturnFilled(chunk *viddec.InputChunk) {
	s.filled = append(s.filled, chunk)
}

// run decodes r to the end or until the first error
func (s *session) run(ctx context.Context, r io.Reader) (err error) {
	if err = s.dec.SetState(viddec.StateIdle); err != nil {
		return err
	}

	defer s.close()

	for eos := false; !eos; {
		if err = ctx.Err(); err != nil {
			return err
		}

		chunk := s.take()

		if eos, err = s.fill(chunk, r); err != nil {
			s.ReturnEmpty(chunk)
			return err
		}

		if err = s.dec.DecodeBuffer(chunk); err != nil {
			return err
		}

		if err = s.deliver(); err != nil {
			return err
		}
	}

	return nil
}

// take a free chunk, there is always one: the decoder holds at most one
// chunk between calls
func (s *session) take() *viddec.InputChunk {
	chunk := s.free[0]
	s.free = s.free[1:]
	return chunk
}

// fill reads the next chunk size worth of input, a short read is the end
// of the stream
func (s *session) fill(chunk *viddec.InputChunk, r io.Reader) (bool, error) {
	size := s.sizes[s.size%len(s.sizes)]
	s.size++

	n, err := io.ReadFull(r, chunk.Data[:size])
	chunk.Filled = n

	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		chunk.EOS = true
		return true, nil
	}
	return false, err
}

// deliver every frame of the chunks returned filled and recycle them
func (s *session) deliver() error {
	for len(s.filled) > 0 {
		chunk := s.filled[0]
		s.filled = s.filled[1:]

		for chunk.Frames() > 0 {
			if err := s.frame(chunk); err != nil {
				s.ReturnEmpty(chunk)
				return err
			}
		}

		s.ReturnEmpty(chunk)
	}
	return nil
}

func (s *session) frame(chunk *viddec.InputChunk) error {
	slot := s.slots[s.next%len(s.slots)]
	s.next++

	// a slot holding a target gets a new one swapped in without pixels
	swap := slot.Target() != nil

	if err := s.dec.FrameDecoded(chunk, slot); err != nil {
		return err
	}

	if swap {
		if err := s.dec.Resolve(slot); err != nil {
			return err
		}
	}

	s.frames++

	return s.sink(slot.Data[:slot.Filled], s.dec.Geometry())
}

func (s *session) close() {
	// queued chunks come back through ReturnEmpty
	_ = s.dec.SetState(viddec.StateLoaded)

	for _, chunk := range s.filled {
		chunk.Reset()
	}
	s.filled = nil

	for _, chunk := range s.chunks {
		s.dec.FreeChunk(chunk)
	}
	for _, slot := range s.slots {
		s.dec.ReleaseSlot(slot)
	}
}
