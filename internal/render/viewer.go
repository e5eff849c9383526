// ABOUTME: Bubble Tea live viewer for the virtual screen; the sink forwards frames as messages
// ABOUTME: Shows every intermediate snapshot in a bordered box with a status footer

package render

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FrameMsg carries one decoded snapshot to the viewer.
type FrameMsg struct {
	Lines []string
}

// DoneMsg tells the viewer the session ended. Err is nil on end of stream.
type DoneMsg struct {
	Err error
}

// ViewerModel is the tea.Model that displays the virtual screen. Once the
// host window size is known the box is shown in a scrollable viewport.
type ViewerModel struct {
	title  string
	lines  []string
	frames int
	done   bool
	err    error

	vp    viewport.Model
	sized bool
}

// NewViewerModel returns a model showing height blank rows of width cells.
func NewViewerModel(title string, width, height int, dec Decoder) ViewerModel {
	blank := make([]byte, width*height)
	for i := range blank {
		blank[i] = ' '
	}
	return ViewerModel{title: title, lines: Lines(blank, width, dec), vp: viewport.New(0, 0)}
}

// Init returns nil; frames arrive through Program.Send.
func (m ViewerModel) Init() tea.Cmd {
	return nil
}

// Update handles frames, session completion and the quit keys.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.lines = msg.Lines
		m.frames++
		m.vp.SetContent(Box(m.lines, m.title))
		return m, nil
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	case tea.WindowSizeMsg:
		// One line is kept for the footer.
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-1, 1)
		m.vp.SetContent(Box(m.lines, m.title))
		m.sized = true
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

var footerStyle = lipgloss.NewStyle().Faint(true)

// View renders the screen box and a one-line status footer.
func (m ViewerModel) View() string {
	status := fmt.Sprintf("%d frames", m.frames)
	switch {
	case m.err != nil:
		status += fmt.Sprintf(" | error: %v", m.err)
	case m.done:
		status += " | stream ended"
	}
	status += " | q to quit"

	body := Box(m.lines, m.title)
	if m.sized {
		body = m.vp.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footerStyle.Render(status))
}

// Frames returns how many frames the model has received.
func (m ViewerModel) Frames() int { return m.frames }

// Sender is the subset of *tea.Program the viewer sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ViewerSink forwards each snapshot to a running tea.Program.
type ViewerSink struct {
	p     Sender
	width int
	dec   Decoder
}

// NewViewerSink returns a sink that sends FrameMsg values to p.
func NewViewerSink(p Sender, width int, dec Decoder) *ViewerSink {
	return &ViewerSink{p: p, width: width, dec: dec}
}

// OnUpdate decodes buf and sends it; the lines do not alias buf.
func (s *ViewerSink) OnUpdate(buf []byte) {
	s.p.Send(FrameMsg{Lines: Lines(buf, s.width, s.dec)})
}
