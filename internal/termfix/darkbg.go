// ABOUTME: Pins the lipgloss background to dark before Bubble Tea's init can query the terminal
// ABOUTME: Import with _ ahead of any package that imports bubbletea

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// Bubble Tea's init asks lipgloss for the background colour, which sends
	// OSC 11 to the host. With a PTY child forwarding keystrokes, the reply
	// would land on the child's input. Setting it explicitly skips the query.
	//
	// This package must not import bubbletea, directly or transitively, so
	// that init order runs this first.
	lipgloss.SetHasDarkBackground(true)
}
