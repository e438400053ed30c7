// Package mpeg12 - MPEG-1 (ISO/IEC 11172-2) and MPEG-2 (ISO/IEC 13818-2)
// video syntax above the slice layer
package mpeg12

import (
	"errors"
)

// start code values, the byte after the 00 00 01 prefix
const (
	PictureStartCode   = 0x00
	SliceMinStartCode  = 0x01
	SliceMaxStartCode  = 0xAF
	UserDataStartCode  = 0xB2
	SequenceHeaderCode = 0xB3
	SequenceErrorCode  = 0xB4
	ExtensionStartCode = 0xB5
	SequenceEndCode    = 0xB7
	GroupStartCode     = 0xB8
)

// extension_start_code_identifier
const (
	ExtSequence        = 1
	ExtSequenceDisplay = 2
	ExtQuantMatrix     = 3
	ExtPictureCoding   = 8
)

// picture_coding_type
const (
	CodingTypeI = 1
	CodingTypeP = 2
	CodingTypeB = 3
	CodingTypeD = 4
)

// picture_structure
const (
	TopField     = 1
	BottomField  = 2
	FramePicture = 3
)

var (
	ErrShortBuffer = errors.New("mpeg12: need more data")
	ErrMalformed   = errors.New("mpeg12: malformed header")
)

func IsSlice(code byte) bool {
	return code >= SliceMinStartCode && code <= SliceMaxStartCode
}

// EndsPicture - codes that can't appear inside a coded picture
func EndsPicture(code byte) bool {
	return code == PictureStartCode || code > SliceMaxStartCode
}

// RefCount - anchor pictures a picture is predicted from
func RefCount(codingType byte) int {
	switch codingType {
	case CodingTypeP:
		return 1
	case CodingTypeB:
		return 2
	}
	return 0
}

// IsAnchor - I and P pictures serve as references for later pictures
func IsAnchor(codingType byte) bool {
	return codingType == CodingTypeI || codingType == CodingTypeP
}

// ZigZag - scan[0] of 7.3, maps transmission order to raster order
var ZigZag = [64]byte{
	0, 1, 8, 16, 9, 2, 3, 10, 17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34, 27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36, 29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46, 53, 60, 61, 54, 47, 55, 62, 63,
}

// DefaultIntraMatrix in raster order
var DefaultIntraMatrix = [64]byte{
	8, 16, 19, 22, 26, 27, 29, 34,
	16, 16, 22, 24, 27, 29, 34, 37,
	19, 22, 26, 27, 29, 34, 34, 38,
	22, 22, 26, 27, 29, 34, 37, 40,
	22, 26, 27, 29, 32, 35, 40, 48,
	26, 27, 29, 32, 35, 40, 48, 58,
	26, 27, 29, 34, 38, 46, 56, 69,
	27, 29, 35, 38, 46, 56, 69, 83,
}

// QuantMatrices are kept in raster order
type QuantMatrices struct {
	Intra          [64]byte
	NonIntra       [64]byte
	ChromaIntra    [64]byte
	ChromaNonIntra [64]byte
}

func DefaultQuantMatrices() QuantMatrices {
	q := QuantMatrices{Intra: DefaultIntraMatrix}
	for i := range q.NonIntra {
		q.NonIntra[i] = 16
	}
	q.ChromaIntra = q.Intra
	q.ChromaNonIntra = q.NonIntra
	return q
}

// Picture is everything a decoder needs to know about one coded picture
type Picture struct {
	MPEG2    bool // sequence extension present
	Sequence SequenceHeader
	Header   PictureHeader
	Coding   PictureCodingExtension
	Quant    QuantMatrices
}
