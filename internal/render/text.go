// ABOUTME: Plain-text and framed render sinks writing screen snapshots to an io.Writer
// ABOUTME: Frame boxes the rows with a lipgloss border; both skip unchanged frames

package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Text writes every changed snapshot as width-sized rows followed by a
// blank separator line.
type Text struct {
	w     io.Writer
	width int
	dec   Decoder
	last  []byte
	err   error

	// Frames counts snapshots written.
	Frames int
}

// NewText returns a Text sink writing to w.
func NewText(w io.Writer, width int, dec Decoder) *Text {
	return &Text{w: w, width: width, dec: dec}
}

// OnUpdate writes buf unless it equals the previous snapshot. The first
// write error is kept and later updates are dropped.
func (t *Text) OnUpdate(buf []byte) {
	if t.err != nil || bytes.Equal(buf, t.last) {
		return
	}
	t.last = append(t.last[:0], buf...)

	var b strings.Builder
	for _, line := range Lines(buf, t.width, t.dec) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.err = fmt.Errorf("writing frame: %w", err)
		return
	}
	t.Frames++
}

// Err returns the first write error.
func (t *Text) Err() error { return t.err }

// Frame keeps the latest snapshot and draws it inside a border on Flush.
type Frame struct {
	width int
	dec   Decoder
	title string
	last  []byte
}

// NewFrame returns a Frame sink. title is drawn above the box when set.
func NewFrame(width int, dec Decoder, title string) *Frame {
	return &Frame{width: width, dec: dec, title: title}
}

// OnUpdate stores a copy of buf.
func (f *Frame) OnUpdate(buf []byte) {
	f.last = append(f.last[:0], buf...)
}

// String renders the latest snapshot.
func (f *Frame) String() string {
	return Box(Lines(f.last, f.width, f.dec), f.title)
}

// Flush writes the rendered box to w.
func (f *Frame) Flush(w io.Writer) error {
	if _, err := fmt.Fprintln(w, f.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Box draws lines inside a rounded border with an optional title line.
func Box(lines []string, title string) string {
	box := boxStyle.Render(strings.Join(lines, "\n"))
	if title == "" {
		return box
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)
}
