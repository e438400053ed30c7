package viddec

// InputChunk is one host input buffer. Data[:Filled] holds encoded bytes.
type InputChunk struct {
	Data   []byte
	Filled int
	EOS    bool
	Handle any

	frames []*Target // decoded pictures waiting for FrameDecoded
	spares []*Target // targets swapped out of output slots
}

func NewInputChunk(size int) *InputChunk {
	return &InputChunk{Data: make([]byte, size)}
}

// Bytes - the filled part
func (c *InputChunk) Bytes() []byte {
	return c.Data[:c.Filled]
}

// Frames - pictures still to be delivered with FrameDecoded
func (c *InputChunk) Frames() int {
	return len(c.frames)
}

// Reset prepares a returned chunk for refilling. Attached targets stay.
func (c *InputChunk) Reset() {
	c.Filled = 0
	c.EOS = false
}

// OutputSlot is one host output buffer
type OutputSlot struct {
	Data   []byte
	Filled int

	// Handles - the consumer takes decode targets, so the slot may carry
	// one instead of pixels
	Handles bool

	target *Target
}

func NewOutputSlot(size int, handles bool) *OutputSlot {
	return &OutputSlot{Data: make([]byte, size), Handles: handles}
}

// Target - the decode target held by the slot, nil if none
func (s *OutputSlot) Target() *Target {
	return s.target
}
