package viddec

import (
	"github.com/viddec/viddec/pkg/h264"
	"github.com/viddec/viddec/pkg/mpeg12"
)

// Context and Surface are opaque backend handles
type Context any
type Surface any

// Plane is a mapped view of one plane of a surface. Unmap must be called
// when the caller is done reading.
type Plane struct {
	Data   []byte
	Stride int
	Unmap  func()
}

// Backend is the video decode engine. Submit is fire and forget from the
// decoder's point of view: the surface content is only read after the
// picture is complete.
type Backend interface {
	CreateContext(profile Profile, geo Geometry) (Context, error)
	CreateTarget(geo Geometry) (Surface, error)
	Submit(ctx Context, target Surface, params *PictureParams, slices [][]byte) error
	MapForRead(target Surface, plane int) (Plane, error)
	DestroyTarget(target Surface)
	DestroyContext(ctx Context)
}

// Host owns the input buffers. Every chunk handed to DecodeBuffer comes back
// through exactly one of these calls.
type Host interface {
	ReturnEmpty(chunk *InputChunk)
	ReturnFilled(chunk *InputChunk)
}

// PictureParams describe the picture a submission belongs to
type PictureParams struct {
	Profile Profile

	// DecodeOrder numbers pictures from zero in submission order
	DecodeOrder int

	Refs    [2]Surface
	NumRefs int

	MPEG12 *mpeg12.Picture
	H264   *h264.SliceHeader // first slice, with its SPS and PPS
}

// ContextTemplate - decode context limits shared by both codecs
type ContextTemplate struct {
	MaxReferences int
	ChromaFormat  string
	Chunked       bool // slices may be submitted in several parts
}

func (p Profile) Template() ContextTemplate {
	return ContextTemplate{MaxReferences: 2, ChromaFormat: "420", Chunked: true}
}
