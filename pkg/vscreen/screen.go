// ABOUTME: Screen pairs the cell buffer with a cursor and applies tokens to both
// ABOUTME: Literal writes use the linear wrap model; unrecognised controls are no-ops

package vscreen

import (
	"fmt"

	"github.com/mauromedda/ansicursor/internal/log"
	"github.com/mauromedda/ansicursor/pkg/ansi"
)

// DefaultFill is the blank byte used when no fill is configured.
const DefaultFill = ' '

// Cursor is the write position. X may exceed the width after a literal
// write; the next write is bounds checked against the linear buffer.
type Cursor struct {
	X int
	Y int
}

// Option configures a Screen.
type Option func(*screenConfig)

type screenConfig struct {
	fill   byte
	notice func(error)
}

// WithFill sets the byte used to initialise and erase cells.
func WithFill(b byte) Option {
	return func(c *screenConfig) {
		c.fill = b
	}
}

// WithNotice sets the hook that receives non-fatal diagnostics such as
// *UnrecognizedControlError. The default hook logs at debug level.
func WithNotice(fn func(error)) Option {
	return func(c *screenConfig) {
		c.notice = fn
	}
}

// Screen is the virtual display: a fixed buffer and one cursor.
// It is not safe for concurrent use.
type Screen struct {
	buf    *Buffer
	cursor Cursor
	notice func(error)
}

// New creates a blank width x height screen with the cursor at the origin.
func New(width, height int, opts ...Option) (*Screen, error) {
	cfg := screenConfig{
		fill:   DefaultFill,
		notice: logNotice,
	}
	for _, o := range opts {
		o(&cfg)
	}

	buf, err := NewBuffer(width, height, cfg.fill)
	if err != nil {
		return nil, err
	}
	return &Screen{buf: buf, notice: cfg.notice}, nil
}

func logNotice(err error) {
	log.Debug("vscreen: %v", err)
}

// Width returns the number of columns.
func (s *Screen) Width() int { return s.buf.Width() }

// Height returns the number of rows.
func (s *Screen) Height() int { return s.buf.Height() }

// Cursor returns the current cursor position.
func (s *Screen) Cursor() Cursor { return s.cursor }

// SetCursor moves the cursor without validation.
func (s *Screen) SetCursor(c Cursor) { s.cursor = c }

// Bytes returns the whole buffer. The slice is a read-only view and is
// overwritten by later Apply calls.
func (s *Screen) Bytes() []byte { return s.buf.Bytes() }

// Snapshot returns a copy of the buffer.
func (s *Screen) Snapshot() []byte {
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}

// Row returns row y as a string.
func (s *Screen) Row(y int) string { return string(s.buf.Row(y)) }

// Lines returns every row as a string.
func (s *Screen) Lines() []string {
	lines := make([]string, s.buf.Height())
	for y := range lines {
		lines[y] = s.Row(y)
	}
	return lines
}

// Reset blanks the buffer and homes the cursor.
func (s *Screen) Reset() {
	s.buf.Clear()
	s.cursor = Cursor{}
}

// Apply interprets one token against the cursor and buffer. On error the
// screen is left unchanged.
func (s *Screen) Apply(tok ansi.Token) error {
	switch tok.Kind {
	case ansi.KindLiteral:
		return s.writeLiteral(tok.Raw)
	case ansi.KindControl:
		return s.applyControl(tok)
	default:
		return fmt.Errorf("unknown token kind %v", tok.Kind)
	}
}

func (s *Screen) writeLiteral(text []byte) error {
	w := s.buf.Width()
	if s.cursor.X < 0 || s.cursor.Y < 0 {
		return fmt.Errorf("%w: cursor at (%d, %d)", ErrBufferOverflow, s.cursor.X, s.cursor.Y)
	}
	if err := s.buf.WriteAt(s.buf.Index(s.cursor.X, s.cursor.Y), text); err != nil {
		return err
	}
	n := len(text)
	s.cursor.Y += n / w
	s.cursor.X += n % w
	return nil
}

func (s *Screen) applyControl(tok ansi.Token) error {
	c := s.cursor
	w := s.buf.Width()

	switch tok.Op {
	case ansi.OpSetCursorPosition:
		s.cursor = Cursor{X: tok.Col, Y: tok.Row}
	case ansi.OpCursorUp:
		return s.moveTo(c.X, c.Y-tok.N)
	case ansi.OpCursorDown:
		return s.moveTo(c.X, c.Y+tok.N)
	case ansi.OpCursorForward:
		return s.moveTo(c.X+tok.N, c.Y)
	case ansi.OpCursorBackward:
		return s.moveTo(c.X-tok.N, c.Y)
	case ansi.OpEraseToEndOfLine:
		return s.buf.Blank(s.buf.Index(c.X, c.Y), c.Y*w+w)
	case ansi.OpEraseToEndOfDisplay:
		return s.buf.Blank(s.buf.Index(c.X, c.Y), s.buf.Len())
	case ansi.OpOther:
		if s.notice != nil {
			s.notice(&UnrecognizedControlError{Seq: tok.Raw})
		}
	default:
		return fmt.Errorf("unknown control op %v", tok.Op)
	}
	return nil
}

// moveTo sets the cursor, rejecting coordinates before the origin. Values
// past the right or bottom edge are tolerated until the next write.
func (s *Screen) moveTo(x, y int) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("%w: cursor move to (%d, %d)", ErrBufferOverflow, x, y)
	}
	s.cursor = Cursor{X: x, Y: y}
	return nil
}
