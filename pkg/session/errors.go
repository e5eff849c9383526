package session

import (
	"errors"
	"fmt"

	"github.com/mauromedda/ansicursor/pkg/reassembly"
	"github.com/mauromedda/ansicursor/pkg/vscreen"
)

// Sentinel errors classifying terminal session failures. Use errors.Is.
var (
	// ErrInputFailure means the input reader reported an I/O error.
	ErrInputFailure = errors.New("input failure")

	// ErrBufferOverflow means a literal did not fit the scratch buffer, or a
	// write or erase fell outside the screen buffer.
	ErrBufferOverflow = errors.New("buffer overflow")
)

// Error is the terminal error returned by Run. Kind is one of the sentinel
// errors above; Err is the underlying cause.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("session: %v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// classify wraps a reader or screen error into an *Error. Errors that match
// neither kind are returned unchanged.
func classify(err error) error {
	var ie *reassembly.InputError
	switch {
	case errors.As(err, &ie):
		return &Error{Kind: ErrInputFailure, Err: err}
	case errors.Is(err, reassembly.ErrBufferOverflow), errors.Is(err, vscreen.ErrBufferOverflow):
		return &Error{Kind: ErrBufferOverflow, Err: err}
	default:
		return err
	}
}
