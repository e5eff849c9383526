// ABOUTME: Input sources: a child process on a PTY sized to the virtual screen, or a file/stdin
// ABOUTME: Maps the PTY's EIO-after-exit into io.EOF so sessions end cleanly

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Sentinel errors for StartCommand.
var (
	ErrNoCommand = errors.New("no command given")

	// ErrPtySize is returned for a window size a PTY cannot carry.
	ErrPtySize = errors.New("invalid pty size")
)

// maxPtySide is the largest row or column count in a PTY window size.
const maxPtySide = 1<<16 - 1

// Command is a child process whose terminal output is read through a PTY.
type Command struct {
	cmd *exec.Cmd
	pty *os.File
	r   io.Reader
}

// StartCommand starts argv on a new PTY of cols x rows. env replaces the
// child's environment when non-nil.
func StartCommand(ctx context.Context, argv []string, env []string, cols, rows int) (*Command, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	if cols <= 0 || rows <= 0 || cols > maxPtySide || rows > maxPtySide {
		return nil, fmt.Errorf("%w: %dx%d", ErrPtySize, cols, rows)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if env != nil {
		cmd.Env = env
	}

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("starting %s on pty: %w", argv[0], err)
	}
	return &Command{cmd: cmd, pty: f, r: eofOnEIO{f}}, nil
}

// Read reads the child's terminal output.
func (c *Command) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Write sends input to the child's terminal.
func (c *Command) Write(p []byte) (int, error) {
	n, err := c.pty.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to pty: %w", err)
	}
	return n, nil
}

// Close closes the PTY, which unblocks a pending Read.
func (c *Command) Close() error {
	if err := c.pty.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing pty: %w", err)
	}
	return nil
}

// Wait waits for the child to exit.
func (c *Command) Wait() error {
	if err := c.cmd.Wait(); err != nil {
		return fmt.Errorf("waiting for child: %w", err)
	}
	return nil
}

// Kill terminates the child. A child that already exited is not an error.
func (c *Command) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing child: %w", err)
	}
	return nil
}

// Pid returns the child's process id.
func (c *Command) Pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// eofOnEIO turns the EIO a Linux PTY master returns once the child side is
// closed into io.EOF.
type eofOnEIO struct {
	r io.Reader
}

func (e eofOnEIO) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && errors.Is(err, syscall.EIO) {
		return n, io.EOF
	}
	return n, err
}

// Open returns a reader for name: stdin for "" or "-", otherwise the file.
func Open(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}
