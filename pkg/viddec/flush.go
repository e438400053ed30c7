package viddec

// flush ends the stream: an open picture is closed as if its end was seen,
// references are released and the parsers start over
func (d *Decoder) flush() {
	d.slice = pendingSlice{}
	d.endFrame()
	d.driver.reset()
}
