// ABOUTME: Virtual implements Terminal for tests without a real TTY
// ABOUTME: Tracks raw-mode enter/exit calls and reports a fixed size

package hostterm

import "sync"

// Virtual is a fake Terminal for unit tests.
type Virtual struct {
	mu         sync.Mutex
	width      int
	height     int
	tty        bool
	rawMode    bool
	enterCount int
	exitCount  int
}

// NewVirtual returns a Virtual terminal of the given size. tty controls
// what IsTerminal reports.
func NewVirtual(width, height int, tty bool) *Virtual {
	return &Virtual{width: width, height: height, tty: tty}
}

// IsTerminal returns the configured tty flag.
func (v *Virtual) IsTerminal() bool { return v.tty }

// EnterRawMode records a raw-mode entry.
func (v *Virtual) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = true
	v.enterCount++
	return nil
}

// ExitRawMode records a raw-mode exit.
func (v *Virtual) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = false
	v.exitCount++
	return nil
}

// Size returns the configured dimensions.
func (v *Virtual) Size() (width, height int, err error) {
	return v.width, v.height, nil
}

// IsRawMode reports whether raw mode is active.
func (v *Virtual) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rawMode
}

// EnterCount returns how many times EnterRawMode was called.
func (v *Virtual) EnterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enterCount
}

// ExitCount returns how many times ExitRawMode was called.
func (v *Virtual) ExitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exitCount
}
