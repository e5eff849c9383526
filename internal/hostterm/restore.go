// ABOUTME: Panic recovery that restores the host terminal before reporting the panic
// ABOUTME: RestoreOnPanic exits the process; RecoverGoroutine lets main handle shutdown

package hostterm

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RestoreOnPanic should be deferred at the top of main. On panic it exits
// raw mode, prints the panic value and stack, then exits with code 1.
func RestoreOnPanic(t Terminal) {
	r := recover()
	if r == nil {
		return
	}

	_ = t.ExitRawMode()
	fmt.Fprintf(os.Stderr, "\npanic: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}

// RecoverGoroutine should be deferred at the top of goroutines that run
// while the host is in raw mode. It restores the terminal and prints the
// panic without exiting.
func RecoverGoroutine(t Terminal) {
	r := recover()
	if r == nil {
		return
	}

	_ = t.ExitRawMode()
	fmt.Fprintf(os.Stderr, "\ngoroutine panic: %v\n\n%s\n", r, debug.Stack())
}
