package y4m

import (
	"bufio"
	"io"
)

// Writer writes decoded NV12 frames as a YUV4MPEG2 stream
type Writer struct {
	wr     *bufio.Writer
	header string
	width  int
	height int
	frame  []byte

	Frames int
	Bytes  int64
}

func NewWriter(w io.Writer, width, height int, rate string) *Writer {
	return &Writer{
		wr:     bufio.NewWriterSize(w, 64*1024),
		header: Header(width, height, rate),
		width:  width,
		height: height,
	}
}

func (w *Writer) WriteNV12(b []byte, stride, sliceHeight int) error {
	if w.header != "" {
		if err := w.write([]byte(w.header)); err != nil {
			return err
		}
		w.header = ""
	}

	w.frame = NV12ToI420(w.frame, b, w.width, w.height, stride, sliceHeight)

	if err := w.write([]byte(frameHdr)); err != nil {
		return err
	}
	if err := w.write(w.frame); err != nil {
		return err
	}

	w.Frames++
	return nil
}

func (w *Writer) write(b []byte) error {
	n, err := w.wr.Write(b)
	w.Bytes += int64(n)
	return err
}

func (w *Writer) Flush() error {
	return w.wr.Flush()
}
