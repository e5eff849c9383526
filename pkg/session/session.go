// ABOUTME: Session drives reassembler -> screen -> render sink for one input stream
// ABOUTME: Sequential and single-owner: one Apply and one OnUpdate per released token, in order

package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mauromedda/ansicursor/internal/log"
	"github.com/mauromedda/ansicursor/pkg/reassembly"
	"github.com/mauromedda/ansicursor/pkg/vscreen"
)

// Default screen dimensions.
const (
	DefaultWidth  = 80
	DefaultHeight = 25
)

// ErrAlreadyRun is returned when Run is called more than once.
var ErrAlreadyRun = errors.New("session already run")

// Sink receives the full screen buffer after every applied token. The
// slice is only valid for the duration of the call and must not be modified.
type Sink interface {
	OnUpdate(buf []byte)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(buf []byte)

// OnUpdate calls f(buf).
func (f SinkFunc) OnUpdate(buf []byte) { f(buf) }

// Stats counts what a session has processed.
type Stats struct {
	Tokens       int
	Literals     int
	Controls     int
	Unrecognized int
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	width   int
	height  int
	fill    byte
	scratch int
	notice  func(error)
}

// WithSize sets the screen dimensions.
func WithSize(width, height int) Option {
	return func(c *sessionConfig) {
		c.width = width
		c.height = height
	}
}

// WithFill sets the blank byte for init and erase.
func WithFill(b byte) Option {
	return func(c *sessionConfig) {
		c.fill = b
	}
}

// WithScratchSize sets the reassembler buffer capacity.
func WithScratchSize(n int) Option {
	return func(c *sessionConfig) {
		c.scratch = n
	}
}

// WithNotice sets a hook for non-fatal diagnostics.
func WithNotice(fn func(error)) Option {
	return func(c *sessionConfig) {
		c.notice = fn
	}
}

// Session owns one screen, one reassembler and one sink. Nothing is shared
// between sessions.
type Session struct {
	src     io.Reader
	sink    Sink
	screen  *vscreen.Screen
	scratch int
	notice  func(error)
	stats   Stats
	ran     bool
}

// New creates a session over src. No input is read until Run.
func New(src io.Reader, sink Sink, opts ...Option) (*Session, error) {
	cfg := sessionConfig{
		width:   DefaultWidth,
		height:  DefaultHeight,
		fill:    vscreen.DefaultFill,
		scratch: reassembly.DefaultSize,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.scratch < reassembly.MinSize {
		return nil, fmt.Errorf("%w: %d", reassembly.ErrInvalidSize, cfg.scratch)
	}
	if sink == nil {
		sink = SinkFunc(func([]byte) {})
	}

	s := &Session{
		src:     src,
		sink:    sink,
		scratch: cfg.scratch,
		notice:  cfg.notice,
	}
	screen, err := vscreen.New(cfg.width, cfg.height,
		vscreen.WithFill(cfg.fill),
		vscreen.WithNotice(s.onNotice),
	)
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	s.screen = screen

	if cfg.scratch <= cfg.width*cfg.height {
		log.Debug("session: scratch buffer %d <= screen %dx%d; long literal runs will overflow",
			cfg.scratch, cfg.width, cfg.height)
	}
	return s, nil
}

func (s *Session) onNotice(err error) {
	var uc *vscreen.UnrecognizedControlError
	if errors.As(err, &uc) {
		s.stats.Unrecognized++
	}
	log.Debug("session: %v", err)
	if s.notice != nil {
		s.notice(err)
	}
}

// Screen returns the session's screen.
func (s *Session) Screen() *vscreen.Screen { return s.screen }

// Stats returns counters for the tokens processed so far.
func (s *Session) Stats() Stats { return s.stats }

// Run reads src to the end, applying every token and rendering after each.
// It returns nil at end of stream, ctx.Err() when cancelled between tokens,
// or an *Error for input failures and buffer overflows. A read already in
// progress is not interrupted by ctx; close the source to unblock it.
func (s *Session) Run(ctx context.Context) error {
	if s.ran {
		return ErrAlreadyRun
	}
	s.ran = true

	r, err := reassembly.NewReader(s.src, s.scratch)
	if err != nil {
		return classify(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tok, err := r.Next()
		if errors.Is(err, io.EOF) {
			log.Debug("session: end of stream after %d tokens", s.stats.Tokens)
			return nil
		}
		if err != nil {
			return classify(err)
		}

		if err := s.screen.Apply(tok); err != nil {
			return classify(fmt.Errorf("applying %v: %w", tok, err))
		}
		s.stats.Tokens++
		if tok.IsLiteral() {
			s.stats.Literals++
		} else {
			s.stats.Controls++
		}

		s.sink.OnUpdate(s.screen.Bytes())
	}
}
