package y4m

import (
	"bytes"
	"image"
	"strconv"
	"strings"
)

const frameHdr = "FRAME\n"

// ParseHeader turns a stream header into a fmtp line like
// "width=1280;height=720;colorspace=420jpeg"
func ParseHeader(b []byte) (fmtp string) {
	for len(b) > 0 {
		// YUV4MPEG2 W1280 H720 F24:1 Ip A1:1 C420mpeg2 XYSCSS=420MPEG2
		// https://manned.org/yuv4mpeg.5
		key := b[0]

		var value string
		if i := bytes.IndexByte(b, ' '); i > 0 {
			value, b = string(b[1:i]), b[i+1:]
		} else {
			value, b = string(b[1:]), nil
		}

		switch key {
		case 'W':
			fmtp = "width=" + value
		case 'H':
			fmtp += ";height=" + value
		case 'C':
			fmtp += ";colorspace=" + value
		}
	}
	return
}

// Header - stream header for 4:2:0 frames, rate like "25:1"
func Header(width, height int, rate string) string {
	return "YUV4MPEG2 W" + strconv.Itoa(width) + " H" + strconv.Itoa(height) +
		" F" + rate + " Ip A1:1 C420jpeg\n"
}

func between(s, prefix, suffix string) string {
	i := strings.Index(s, prefix)
	if i < 0 {
		return ""
	}
	s = s[i+len(prefix):]
	if i = strings.Index(s, suffix); i >= 0 {
		return s[:i]
	}
	return s
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func GetSize(fmtp string) int {
	w := atoi(between(fmtp, "width=", ";"))
	h := atoi(between(fmtp, "height=", ";"))

	switch between(fmtp, "colorspace=", ";") {
	case "mono":
		return w * h
	case "", "420", "420mpeg2", "420jpeg", "420paldv":
		return w * h * 3 / 2
	case "422":
		return w * h * 2
	case "444":
		return w * h * 3
	}

	return 0
}

// NewImage returns a function that wraps raw frames of the stream as images
// without copying
func NewImage(fmtp string) func(frame []byte) image.Image {
	w := atoi(between(fmtp, "width=", ";"))
	h := atoi(between(fmtp, "height=", ";"))
	rect := image.Rect(0, 0, w, h)

	ycbcr := func(cw, ch int, ratio image.YCbCrSubsampleRatio) func(frame []byte) image.Image {
		i1 := w * h
		i2 := i1 + cw*ch
		i3 := i2 + cw*ch

		return func(frame []byte) image.Image {
			return &image.YCbCr{
				Y:              frame[:i1],
				Cb:             frame[i1:i2],
				Cr:             frame[i2:i3],
				YStride:        w,
				CStride:        cw,
				SubsampleRatio: ratio,
				Rect:           rect,
			}
		}
	}

	switch between(fmtp, "colorspace=", ";") {
	case "mono":
		return func(frame []byte) image.Image {
			return &image.Gray{Pix: frame, Stride: w, Rect: rect}
		}
	case "", "420", "420mpeg2", "420jpeg", "420paldv":
		return ycbcr(w/2, h/2, image.YCbCrSubsampleRatio420)
	case "422":
		return ycbcr(w/2, h, image.YCbCrSubsampleRatio422)
	case "444":
		return ycbcr(w, h, image.YCbCrSubsampleRatio444)
	}

	return nil
}

// NV12ToI420 converts a frame with interleaved chroma rows below a luma
// plane of stride x sliceHeight into planar 4:2:0 of width x height
func NV12ToI420(dst, src []byte, width, height, stride, sliceHeight int) []byte {
	size := width * height * 3 / 2
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	y := dst[:width*height]
	cb := dst[width*height : width*height*5/4]
	cr := dst[width*height*5/4:]

	for row := 0; row < height; row++ {
		copy(y[row*width:(row+1)*width], src[row*stride:])
	}

	uv := src[stride*sliceHeight:]
	cw := width / 2
	for row := 0; row < height/2; row++ {
		line := uv[row*stride:]
		for x := 0; x < cw; x++ {
			cb[row*cw+x] = line[2*x]
			cr[row*cw+x] = line[2*x+1]
		}
	}

	return dst
}
