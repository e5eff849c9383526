// ABOUTME: Wires source, session and render sink together for one CLI run
// ABOUTME: Runs the session and source shutdown under an errgroup and forwards host keystrokes

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/ansicursor/internal/config"
	"github.com/mauromedda/ansicursor/internal/hostterm"
	"github.com/mauromedda/ansicursor/internal/log"
	"github.com/mauromedda/ansicursor/internal/render"
	"github.com/mauromedda/ansicursor/internal/source"
	"github.com/mauromedda/ansicursor/pkg/session"
)

const (
	sshTimeout = 15 * time.Second

	// childGrace is how long a child may keep running once its terminal
	// is closed before it is killed.
	childGrace = 2 * time.Second
)

// app holds the resolved settings for one run.
type app struct {
	cfg    *config.Settings
	input  string
	host   hostterm.Terminal
	stdout io.Writer

	// open returns the byte stream; tests replace it.
	open func(ctx context.Context) (*input, error)
}

// input is the session's byte stream plus what closes it. w is set when
// the source accepts keystrokes.
type input struct {
	r     io.Reader
	w     io.Writer
	close func() error
	wait  func() error
	kill  func() error
	title string
}

func (in *input) interactive() bool { return in.w != nil }

// reap waits for the source to exit. A source with a kill hook that is
// still running after grace is killed, then waited for.
func (in *input) reap(grace time.Duration) error {
	if in.wait == nil {
		return nil
	}
	if in.kill == nil {
		return in.wait()
	}

	done := make(chan error, 1)
	go func() { done <- in.wait() }()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		log.Debug("source still running %v after the session ended; killing it", grace)
		if err := in.kill(); err != nil {
			log.Warn("%v", err)
		}
		return <-done
	}
}

func newApp(cfg *config.Settings, inputName string, host hostterm.Terminal, stdout io.Writer) *app {
	a := &app{cfg: cfg, input: inputName, host: host, stdout: stdout}
	a.open = a.openSource
	return a
}

// renderMode resolves "auto": the live viewer when a command or remote
// session runs on an interactive host, plain text otherwise.
func (a *app) renderMode() string {
	if a.cfg.Render != config.RenderAuto {
		return a.cfg.Render
	}
	if (len(a.cfg.Command) > 0 || a.cfg.SSH.Target != "") && a.host.IsTerminal() {
		return config.RenderTUI
	}
	return config.RenderText
}

func (a *app) openSource(ctx context.Context) (*input, error) {
	if a.cfg.SSH.Target != "" {
		remote, err := source.DialSSH(ctx, source.SSHConfig{
			Target:     a.cfg.SSH.Target,
			Password:   a.cfg.SSHPassword(),
			Command:    a.cfg.SSH.Command,
			KnownHosts: a.cfg.SSH.KnownHosts,
			Timeout:    sshTimeout,
		}, a.cfg.Width, a.cfg.Height)
		if err != nil {
			return nil, err
		}
		log.Debug("connected to %s with a %dx%d pty", a.cfg.SSH.Target, a.cfg.Width, a.cfg.Height)
		return &input{r: remote, w: remote, close: remote.Close, wait: remote.Wait, title: a.cfg.SSH.Target}, nil
	}

	if len(a.cfg.Command) > 0 {
		child, err := source.StartCommand(ctx, a.cfg.Command, a.cfg.Environ(), a.cfg.Width, a.cfg.Height)
		if err != nil {
			return nil, err
		}
		log.Debug("started %q (pid %d) on a %dx%d pty", a.cfg.Command, child.Pid(), a.cfg.Width, a.cfg.Height)
		return &input{r: child, w: child, close: child.Close, wait: child.Wait, kill: child.Kill, title: strings.Join(a.cfg.Command, " ")}, nil
	}

	rc, err := source.Open(a.input)
	if err != nil {
		return nil, err
	}
	title := a.input
	if title == "" || title == "-" {
		title = "stdin"
	}
	return &input{r: rc, close: rc.Close, title: title}, nil
}

func (a *app) run(ctx context.Context) error {
	dec, err := render.NewDecoder(a.cfg.Encoding)
	if err != nil {
		return err
	}

	in, err := a.open(ctx)
	if err != nil {
		return err
	}

	mode := a.renderMode()
	log.Debug("render mode %s, encoding %s", mode, a.cfg.Encoding)

	switch mode {
	case config.RenderTUI:
		err = a.runViewer(ctx, in, dec)
	case config.RenderFrame:
		frame := render.NewFrame(a.cfg.Width, dec, in.title)
		err = a.runSession(ctx, in, frame, true)
		if ferr := frame.Flush(a.stdout); ferr != nil && err == nil {
			err = ferr
		}
	case config.RenderNone:
		err = a.runSession(ctx, in, nil, true)
	default:
		out := a.stdout
		if in.interactive() && a.host.IsTerminal() {
			out = crlfWriter{w: out}
		}
		text := render.NewText(out, a.cfg.Width, dec)
		err = a.runSession(ctx, in, text, true)
		if terr := text.Err(); terr != nil && err == nil {
			err = terr
		}
	}

	if werr := in.reap(childGrace); werr != nil {
		log.Debug("source exited: %v", werr)
	}
	return err
}

// runSession drives one session over in. The source is closed when the
// session ends or ctx is cancelled, which unblocks any pending read. When
// forward is set and the source takes input on an interactive host, host
// keystrokes are copied to it in raw mode.
func (a *app) runSession(ctx context.Context, in *input, sink session.Sink, forward bool) error {
	sess, err := session.New(in.r, sink,
		session.WithSize(a.cfg.Width, a.cfg.Height),
		session.WithFill(a.cfg.FillByte()),
		session.WithScratchSize(a.cfg.Scratch),
	)
	if err != nil {
		_ = in.close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return sess.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return in.close()
	})

	if forward && in.interactive() && a.host.IsTerminal() {
		if err := a.host.EnterRawMode(); err != nil {
			log.Warn("keystrokes not forwarded: %v", err)
		} else {
			defer func() { _ = a.host.ExitRawMode() }()
			// Stdin cannot be unblocked, so the forwarder is not waited on.
			go func() {
				defer hostterm.RecoverGoroutine(a.host)
				if err := hostterm.Forward(gctx, in.w, os.Stdin); err != nil {
					log.Debug("%v", err)
				}
			}()
		}
	}

	err = g.Wait()
	st := sess.Stats()
	log.Debug("session done: %d tokens, %d literals, %d controls, %d unrecognized",
		st.Tokens, st.Literals, st.Controls, st.Unrecognized)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// runViewer shows the session in a Bubble Tea program until the user quits.
// Quitting early cancels the session and closes the source.
func (a *app) runViewer(ctx context.Context, in *input, dec render.Decoder) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(a.stdout)}
	if !in.interactive() {
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(render.NewViewerModel(in.title, a.cfg.Width, a.cfg.Height, dec), opts...)

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := a.runSession(sessCtx, in, render.NewViewerSink(p, a.cfg.Width, dec), false)
		p.Send(render.DoneMsg{Err: err})
		done <- err
	}()

	// Log lines on stderr would tear the alternate screen.
	prev := log.SetOutput(io.Discard)
	_, perr := p.Run()
	log.SetOutput(prev)
	cancel()
	serr := <-done

	if perr != nil {
		return fmt.Errorf("running viewer: %w", perr)
	}
	if errors.Is(serr, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return serr
}

// crlfWriter restores carriage returns that raw mode stops the host
// terminal from adding.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
