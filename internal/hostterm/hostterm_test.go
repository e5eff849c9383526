// ABOUTME: Tests for the virtual terminal, input forwarding and goroutine panic recovery
// ABOUTME: Uses table-driven and parallel sub-tests; no real TTY is required

package hostterm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// compile-time checks: both implementations satisfy Terminal.
var (
	_ Terminal = (*Virtual)(nil)
	_ Terminal = (*Process)(nil)
)

func TestVirtual_RawMode(t *testing.T) {
	t.Parallel()
	vt := NewVirtual(80, 25, true)

	if vt.IsRawMode() {
		t.Fatal("expected raw mode to be off initially")
	}
	if err := vt.EnterRawMode(); err != nil {
		t.Fatalf("EnterRawMode() unexpected error: %v", err)
	}
	if !vt.IsRawMode() {
		t.Fatal("expected raw mode after EnterRawMode")
	}
	if err := vt.ExitRawMode(); err != nil {
		t.Fatalf("ExitRawMode() unexpected error: %v", err)
	}
	if vt.IsRawMode() {
		t.Fatal("expected raw mode off after ExitRawMode")
	}
	if vt.EnterCount() != 1 || vt.ExitCount() != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", vt.EnterCount(), vt.ExitCount())
	}
	if w, h, _ := vt.Size(); w != 80 || h != 25 {
		t.Errorf("Size() = (%d, %d), want (80, 25)", w, h)
	}
	if !vt.IsTerminal() {
		t.Error("IsTerminal() = false, want true")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("pty gone") }

func TestForward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     io.Reader
		dst     io.Writer
		want    string
		wantErr bool
	}{
		{name: "copies until eof", src: strings.NewReader("ls\r"), want: "ls\r"},
		{name: "one byte reads", src: iotest.OneByteReader(strings.NewReader("exit\r")), want: "exit\r"},
		{name: "read error", src: iotest.ErrReader(errors.New("stdin closed")), wantErr: true},
		{name: "write error", src: strings.NewReader("x"), dst: failWriter{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			dst := tt.dst
			if dst == nil {
				dst = &out
			}
			err := Forward(context.Background(), dst, tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Forward() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.String() != tt.want {
				t.Errorf("forwarded %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestForward_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := Forward(ctx, &out, strings.NewReader("ignored")); err != nil {
		t.Fatalf("Forward() = %v, want nil", err)
	}
	if out.Len() != 0 {
		t.Errorf("forwarded %q after cancel", out.String())
	}
}

func TestRecoverGoroutine_RestoresTerminal(t *testing.T) {
	t.Parallel()

	vt := NewVirtual(80, 25, true)
	_ = vt.EnterRawMode()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer RecoverGoroutine(vt)
		panic("forwarder panic")
	}()
	<-done

	if vt.IsRawMode() {
		t.Error("expected raw mode to be restored after panic")
	}
}

func TestRecoverGoroutine_NoPanic(t *testing.T) {
	t.Parallel()

	vt := NewVirtual(80, 25, true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer RecoverGoroutine(vt)
	}()
	<-done

	if vt.ExitCount() != 0 {
		t.Errorf("ExitCount() = %d, want 0", vt.ExitCount())
	}
}
