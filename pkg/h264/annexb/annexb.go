// Package annexb - conversion between length prefixed (AVCC) and start code
// (Annex B) framing of H264 NAL units
package annexb

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const StartCode = "\x00\x00\x00\x01"

var ErrWrongSize = errors.New("annexb: NAL unit size out of range")

// DecodeAVCC replaces 4-byte NAL unit sizes with start codes in place.
// safeClone should be used if the original slice is still needed.
func DecodeAVCC(b []byte, safeClone bool) ([]byte, error) {
	if safeClone {
		b = bytes.Clone(b)
	}
	for i := 0; i < len(b); {
		if i+4 > len(b) {
			return nil, ErrWrongSize
		}
		size := int(binary.BigEndian.Uint32(b[i:]))
		if size > len(b)-i-4 {
			return nil, ErrWrongSize
		}
		copy(b[i:], StartCode)
		i += 4 + size
	}
	return b, nil
}

// AppendNALUs appends every NAL unit prefixed with a start code
func AppendNALUs(dst []byte, nalus ...[]byte) []byte {
	for _, nalu := range nalus {
		dst = append(dst, StartCode...)
		dst = append(dst, nalu...)
	}
	return dst
}

// SplitNALUs returns the NAL units of an Annex B stream without their start
// codes. Trailing zero bytes of a NAL unit are kept.
func SplitNALUs(b []byte) (nalus [][]byte) {
	start := -1
	for i := 0; i+3 <= len(b); {
		if b[i] != 0 || b[i+1] != 0 || b[i+2] != 1 {
			i++
			continue
		}
		if start >= 0 {
			nalus = append(nalus, trimZero(b[start:i]))
		}
		i += 3
		start = i
	}
	if start >= 0 && start < len(b) {
		nalus = append(nalus, b[start:])
	}
	return
}

// trimZero drops the leading zero of a 4-byte start code that follows
func trimZero(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}
