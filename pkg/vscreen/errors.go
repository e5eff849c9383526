package vscreen

import (
	"errors"
	"fmt"
)

// Sentinel errors for the vscreen package.
var (
	// ErrBufferOverflow is returned when a write, erase or cursor move would
	// address a cell outside the buffer. It is fatal for the session.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrInvalidSize is returned when width or height is not positive or
	// the screen exceeds MaxDimension or MaxCells.
	ErrInvalidSize = errors.New("invalid screen size")
)

// UnrecognizedControlError describes a complete control sequence outside the
// recognised set. It is reported to the notice hook and never returned from
// Apply.
type UnrecognizedControlError struct {
	Seq []byte
}

func (e *UnrecognizedControlError) Error() string {
	return fmt.Sprintf("%q was not handled", e.Seq)
}
