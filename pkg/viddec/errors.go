package viddec

import (
	"errors"
)

var (
	ErrQueueFull      = errors.New("viddec: input queue full")
	ErrOverread       = errors.New("viddec: span outside outstanding data")
	ErrGeometryLocked = errors.New("viddec: geometry can't change while idle")
	ErrNotIdle        = errors.New("viddec: decoder not idle")
	ErrBadState       = errors.New("viddec: unsupported state transition")
	ErrNoProfile      = errors.New("viddec: unknown profile")
	ErrNoFrame        = errors.New("viddec: no decoded frame attached")
	ErrNoTarget       = errors.New("viddec: slot holds no decode target")
	ErrSlotTooSmall   = errors.New("viddec: output slot too small")
	ErrPlaneTooSmall  = errors.New("viddec: mapped plane too small")
)
