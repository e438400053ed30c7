package h264

// EBSPToRBSP removes emulation_prevention_three_byte (00 00 03 -> 00 00).
// The source is not modified; it is returned as is when there is nothing
// to remove.
func EBSPToRBSP(b []byte) []byte {
	var zeros int
	for i, c := range b {
		if zeros >= 2 && c == 3 {
			return ebspToRBSP(b, i)
		}
		if c == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return b
}

func ebspToRBSP(b []byte, i int) []byte {
	dst := make([]byte, i, len(b))
	copy(dst, b[:i])

	zeros := 0
	for _, c := range b[i+1:] {
		if zeros >= 2 && c == 3 {
			zeros = 0
			continue
		}
		dst = append(dst, c)
		if c == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}

// RBSPToEBSP inserts emulation_prevention_three_byte wherever the payload
// would otherwise contain a start code prefix
func RBSPToEBSP(b []byte) []byte {
	dst := make([]byte, 0, len(b)+len(b)/64)

	zeros := 0
	for _, c := range b {
		if zeros >= 2 && c <= 3 {
			dst = append(dst, 3)
			zeros = 0
		}
		dst = append(dst, c)
		if c == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}
