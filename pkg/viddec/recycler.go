package viddec

// FrameDecoded delivers the oldest frame attached to a chunk returned with
// ReturnFilled into an output slot.
//
// A slot that already holds a decode target gets the new one swapped in and
// its old target goes to the chunk as a spare for later pictures. Otherwise
// the planes are copied into the slot; slots that take handles keep the
// target too, so their next delivery is a swap. The slot is either filled
// completely or not at all.
func (d *Decoder) FrameDecoded(chunk *InputChunk, slot *OutputSlot) error {
	if len(chunk.frames) == 0 {
		return ErrNoFrame
	}

	t := chunk.frames[0]
	chunk.frames[0] = nil
	chunk.frames = chunk.frames[1:]

	slot.Filled = 0

	// nothing decodes after the end of stream, spares are of no use
	if chunk.EOS {
		defer func() {
			releaseAll(chunk.spares)
			chunk.spares = nil
		}()
	}

	if old := slot.target; old != nil {
		slot.target = t
		slot.Filled = len(slot.Data)
		chunk.spares = append(chunk.spares, old)
		return nil
	}

	if err := d.copyOut(t, slot); err != nil {
		t.release()
		return err
	}

	slot.Filled = len(slot.Data)

	if slot.Handles {
		slot.target = t
	} else {
		t.release()
	}

	return nil
}

// Resolve copies the pixels of the target a slot holds into its buffer
func (d *Decoder) Resolve(slot *OutputSlot) error {
	if slot.target == nil {
		return ErrNoTarget
	}
	if err := d.copyOut(slot.target, slot); err != nil {
		slot.Filled = 0
		return err
	}
	slot.Filled = len(slot.Data)
	return nil
}

// ReleaseSlot drops the target of a slot the host is freeing
func (d *Decoder) ReleaseSlot(slot *OutputSlot) {
	if slot.target != nil {
		slot.target.release()
		slot.target = nil
	}
	slot.Filled = 0
}

// FreeChunk drops the targets still attached to a chunk the host is freeing
func (d *Decoder) FreeChunk(chunk *InputChunk) {
	releaseAll(chunk.frames)
	releaseAll(chunk.spares)
	chunk.frames = nil
	chunk.spares = nil
}

// copyOut writes the target as NV12 at the port stride: luma rows, then
// interleaved chroma rows of half height
func (d *Decoder) copyOut(t *Target, slot *OutputSlot) error {
	geo := d.geometry
	if len(slot.Data) < geo.FrameSize() {
		return ErrSlotTooSmall
	}

	dst := slot.Data

	for i, rows := range []int{geo.Height, geo.Height / 2} {
		plane, err := d.backend.MapForRead(t.Surface, i)
		if err != nil {
			return err
		}

		ok := rows == 0 || len(plane.Data) >= (rows-1)*plane.Stride+geo.Width
		if ok {
			copyRect(dst, geo.Stride, plane.Data, plane.Stride, geo.Width, rows)
		}

		if plane.Unmap != nil {
			plane.Unmap()
		}

		if !ok {
			return ErrPlaneTooSmall
		}

		// chroma starts after the luma plane of slice height rows
		if i == 0 {
			dst = dst[geo.Stride*geo.SliceHeight:]
		}
	}

	return nil
}

func copyRect(dst []byte, dstStride int, src []byte, srcStride int, width, height int) {
	for y := 0; y < height; y++ {
		copy(dst[y*dstStride:y*dstStride+width], src[y*srcStride:])
	}
}
