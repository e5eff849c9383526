// ABOUTME: Host terminal control for the CLI: raw mode on stdin and size queries via x/term
// ABOUTME: Raw mode lets keystrokes reach the child on the PTY unprocessed

package hostterm

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// Terminal is the host terminal the CLI runs in.
type Terminal interface {
	IsTerminal() bool
	EnterRawMode() error
	ExitRawMode() error
	Size() (width, height int, err error)
}

// Process is the real host terminal backed by os.Stdin and os.Stdout.
type Process struct {
	mu       sync.Mutex
	in       int
	out      int
	oldState *term.State
}

// NewProcess returns a Process bound to the current stdin and stdout.
func NewProcess() *Process {
	return &Process{in: int(os.Stdin.Fd()), out: int(os.Stdout.Fd())}
}

// IsTerminal reports whether both stdin and stdout are terminals.
func (t *Process) IsTerminal() bool {
	return term.IsTerminal(t.in) && term.IsTerminal(t.out)
}

// EnterRawMode switches stdin to raw mode, saving the previous state.
// Calling it twice keeps the first saved state.
func (t *Process) EnterRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil
	}
	state, err := term.MakeRaw(t.in)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// ExitRawMode restores the terminal to its previous state.
func (t *Process) ExitRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(t.in, t.oldState); err != nil {
		return fmt.Errorf("exiting raw mode: %w", err)
	}
	t.oldState = nil
	return nil
}

// Size returns the current dimensions of stdout.
func (t *Process) Size() (width, height int, err error) {
	w, h, err := term.GetSize(t.out)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return w, h, nil
}
