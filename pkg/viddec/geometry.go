package viddec

const (
	DefaultWidth  = 176
	DefaultHeight = 144
)

// Geometry of decoded frames. Output is NV12: a luma plane of Stride x
// Height bytes followed by interleaved chroma of Stride x Height/2 bytes.
type Geometry struct {
	Width       int
	Height      int
	Stride      int
	SliceHeight int
}

func NewGeometry(width, height int) Geometry {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return Geometry{Width: width, Height: height, Stride: width, SliceHeight: height}
}

// FrameSize - output buffer size
func (g Geometry) FrameSize() int {
	return g.Stride * g.SliceHeight * 3 / 2
}

// InputBufferSize - input buffer size suggested to the host
func (g Geometry) InputBufferSize() int {
	return g.Width * g.Height * 512 / 256
}

// PortDefaults - buffer counts and sizes announced for both ports
type PortDefaults struct {
	InputMin, InputActual   int
	InputSize               int
	OutputMin, OutputActual int
	OutputSize              int
}

func (g Geometry) PortDefaults() PortDefaults {
	return PortDefaults{
		InputMin:     8,
		InputActual:  8,
		InputSize:    g.InputBufferSize(),
		OutputMin:    4,
		OutputActual: 8,
		OutputSize:   g.FrameSize(),
	}
}
