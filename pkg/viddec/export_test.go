package viddec

// MoveSliceStart points the open slice at pos and reports the decode order
// of its picture
func (d *Decoder) MoveSliceStart(pos int64) (int, bool) {
	if !d.slice.open {
		return 0, false
	}
	d.slice.start = pos
	return d.pic.params.DecodeOrder, true
}
