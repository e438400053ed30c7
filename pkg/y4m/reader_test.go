package y4m

import (
	"bufio"
	"errors"
	"io"
)

// reader reads back what Writer produced
type reader struct {
	Fmtp string
	Size int // frame size in bytes

	rd *bufio.Reader
}

func openReader(r io.Reader) (*reader, error) {
	rd := bufio.NewReaderSize(r, 64*1024)
	b, err := rd.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	b = b[:len(b)-1] // remove \n

	fmtp := ParseHeader(b)

	size := GetSize(fmtp)
	if size == 0 {
		return nil, errors.New("y4m: unsupported format: " + string(b))
	}

	return &reader{Fmtp: fmtp, Size: size, rd: rd}, nil
}

// ReadFrame returns the next frame, io.EOF after the last one
func (r *reader) ReadFrame() ([]byte, error) {
	hdr, err := r.rd.ReadSlice('\n')
	if err != nil {
		return nil, err
	}
	if len(hdr) < 5 || string(hdr[:5]) != frameHdr[:5] {
		return nil, errors.New("y4m: wrong frame header")
	}

	frame := make([]byte, r.Size)
	if _, err = io.ReadFull(r.rd, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
