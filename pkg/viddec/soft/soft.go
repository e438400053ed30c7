// Package soft is a decode backend that needs no hardware. A picture is
// rendered from a checksum of the slice data submitted for it, so equal
// submissions give equal pictures however the data was split.
package soft

import (
	"errors"
	"hash/crc32"

	"github.com/viddec/viddec/pkg/viddec"
)

var (
	ErrContext = errors.New("soft: unknown context")
	ErrTarget  = errors.New("soft: unknown target")
	ErrPlane   = errors.New("soft: wrong plane")
	ErrRefs    = errors.New("soft: too many references")
)

type Backend struct {
	// failure injection for tests
	ContextErr error
	TargetErr  error
	SubmitErr  func(params *viddec.PictureParams) error

	Submits int
	Bytes   int64

	contexts map[*context]struct{}
	targets  map[*surface]struct{}
	mapped   int
	lastID   int
}

type context struct {
	profile viddec.Profile
	geo     viddec.Geometry
	tmpl    viddec.ContextTemplate
}

type surface struct {
	id    int
	geo   viddec.Geometry
	order int
	sum   uint32
	size  int64
}

func New() *Backend {
	return &Backend{
		contexts: map[*context]struct{}{},
		targets:  map[*surface]struct{}{},
	}
}

func (b *Backend) CreateContext(profile viddec.Profile, geo viddec.Geometry) (viddec.Context, error) {
	if b.ContextErr != nil {
		return nil, b.ContextErr
	}
	ctx := &context{profile: profile, geo: geo, tmpl: profile.Template()}
	b.contexts[ctx] = struct{}{}
	return ctx, nil
}

func (b *Backend) CreateTarget(geo viddec.Geometry) (viddec.Surface, error) {
	if b.TargetErr != nil {
		return nil, b.TargetErr
	}
	b.lastID++
	s := &surface{id: b.lastID, geo: geo, order: -1}
	b.targets[s] = struct{}{}
	return s, nil
}

func (b *Backend) Submit(ctx viddec.Context, target viddec.Surface, params *viddec.PictureParams, slices [][]byte) error {
	c := ctx.(*context)
	if _, ok := b.contexts[c]; !ok {
		return ErrContext
	}

	if params.NumRefs > c.tmpl.MaxReferences || params.NumRefs > len(params.Refs) {
		return ErrRefs
	}

	s, err := b.surface(target)
	if err != nil {
		return err
	}

	for _, ref := range params.Refs[:params.NumRefs] {
		if _, err = b.surface(ref); err != nil {
			return err
		}
	}

	if b.SubmitErr != nil {
		if err = b.SubmitErr(params); err != nil {
			return err
		}
	}

	// a new picture in a reused target
	if s.order != params.DecodeOrder {
		s.order = params.DecodeOrder
		s.sum = 0
		s.size = 0
	}

	for _, slice := range slices {
		s.sum = crc32.Update(s.sum, crc32.IEEETable, slice)
		s.size += int64(len(slice))
		b.Bytes += int64(len(slice))
	}

	b.Submits++
	return nil
}

func (b *Backend) MapForRead(target viddec.Surface, plane int) (viddec.Plane, error) {
	s, err := b.surface(target)
	if err != nil {
		return viddec.Plane{}, err
	}

	stride := Stride(s.geo.Width)

	var data []byte
	switch plane {
	case 0:
		data = make([]byte, stride*s.geo.Height)
		render(data, stride, s.geo.Width, s.geo.Height, s.sum)
	case 1:
		data = make([]byte, stride*(s.geo.Height/2))
		render(data, stride, s.geo.Width, s.geo.Height/2, ^s.sum)
	default:
		return viddec.Plane{}, ErrPlane
	}

	b.mapped++
	return viddec.Plane{Data: data, Stride: stride, Unmap: func() { b.mapped-- }}, nil
}

func (b *Backend) DestroyTarget(target viddec.Surface) {
	delete(b.targets, target.(*surface))
}

func (b *Backend) DestroyContext(ctx viddec.Context) {
	delete(b.contexts, ctx.(*context))
}

// Live - targets created and not destroyed yet
func (b *Backend) Live() int {
	return len(b.targets)
}

// Contexts - contexts created and not destroyed yet
func (b *Backend) Contexts() int {
	return len(b.contexts)
}

// Mapped - planes mapped and not unmapped yet
func (b *Backend) Mapped() int {
	return b.mapped
}

// Checksum of the slice data of the last picture decoded into the target
// and its size
func (b *Backend) Checksum(target viddec.Surface) (uint32, int64) {
	s, err := b.surface(target)
	if err != nil {
		return 0, 0
	}
	return s.sum, s.size
}

func (b *Backend) surface(target viddec.Surface) (*surface, error) {
	s, _ := target.(*surface)
	if _, ok := b.targets[s]; !ok || s == nil {
		return nil, ErrTarget
	}
	return s, nil
}

// Stride - rows of mapped planes are padded to 64 bytes
func Stride(width int) int {
	return (width + 63) &^ 63
}

func render(data []byte, stride, width, height int, sum uint32) {
	for y := 0; y < height; y++ {
		row := data[y*stride:]
		for x := 0; x < width; x++ {
			row[x] = byte(sum>>(8*((x+y)&3))) + byte(x^y)
		}
	}
}
