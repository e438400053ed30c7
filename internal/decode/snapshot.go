package decode

import (
	"image"
	"io"
	"strconv"

	"github.com/viddec/viddec/pkg/viddec"
	"github.com/viddec/viddec/pkg/y4m"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// snapshot keeps a copy of the last frame
type snapshot struct {
	frame []byte
	geo   viddec.Geometry
}

func (s *snapshot) keep(frame []byte, geo viddec.Geometry) {
	s.frame = append(s.frame[:0], frame...)
	s.geo = geo
}

func (s *snapshot) empty() bool {
	return len(s.frame) == 0
}

// Image of the last frame scaled to width, the height keeps the aspect
// ratio. Zero width keeps the decoded size.
func (s *snapshot) Image(width int) image.Image {
	geo := s.geo
	fmtp := "width=" + strconv.Itoa(geo.Width) + ";height=" + strconv.Itoa(geo.Height)

	i420 := y4m.NV12ToI420(nil, s.frame, geo.Width, geo.Height, geo.Stride, geo.SliceHeight)
	src := y4m.NewImage(fmtp)(i420)

	if width <= 0 || width == geo.Width {
		return src
	}

	height := geo.Height * width / geo.Width
	dst := image.NewRGBA(image.Rect(0, 0, width, max(height, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func (s *snapshot) WriteBMP(w io.Writer, width int) error {
	return bmp.Encode(w, s.Image(width))
}
