// ABOUTME: Tests for the SSH source against an in-process gliderlabs/ssh server
// ABOUTME: Covers target parsing, PTY size negotiation, password rejection and input echo

package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// startServer runs an SSH server on a loopback port that accepts the
// password "secret" and hands sessions to handler.
func startServer(t *testing.T, handler ssh.Handler) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	srv := &ssh.Server{
		Handler: handler,
		PasswordHandler: func(_ ssh.Context, password string) bool {
			return password == "secret"
		},
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })
	return ln.Addr().String()
}

func testSSHConfig(addr string) SSHConfig {
	return SSHConfig{
		Target:          "demo@" + addr,
		Password:        "secret",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
}

func TestSplitTarget(t *testing.T) {
	t.Setenv("USER", "fallback")

	tests := []struct {
		name     string
		target   string
		wantUser string
		wantAddr string
		wantErr  bool
	}{
		{name: "user and host", target: "root@example.org", wantUser: "root", wantAddr: "example.org:22"},
		{name: "explicit port", target: "root@example.org:2222", wantUser: "root", wantAddr: "example.org:2222"},
		{name: "default user", target: "example.org", wantUser: "fallback", wantAddr: "example.org:22"},
		{name: "ipv6", target: "me@[::1]", wantUser: "me", wantAddr: "[::1]:22"},
		{name: "empty host", target: "me@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, addr, err := SplitTarget(tt.target)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitTarget(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			}
			if user != tt.wantUser || addr != tt.wantAddr {
				t.Errorf("SplitTarget(%q) = (%q, %q), want (%q, %q)", tt.target, user, addr, tt.wantUser, tt.wantAddr)
			}
		})
	}
}

func TestDialSSH_PTYOutput(t *testing.T) {
	t.Parallel()

	addr := startServer(t, func(s ssh.Session) {
		pty, _, ok := s.Pty()
		if !ok {
			_, _ = io.WriteString(s, "no pty")
			_ = s.Exit(1)
			return
		}
		_, _ = fmt.Fprintf(s, "\x1b[2;1H%s %dx%d", s.User(), pty.Window.Width, pty.Window.Height)
		_ = s.Exit(0)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := DialSSH(ctx, testSSHConfig(addr), 40, 5)
	if err != nil {
		t.Fatalf("DialSSH: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if want := "\x1b[2;1Hdemo 40x5"; string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
	if err := r.Wait(); err != nil {
		t.Errorf("Wait: %v", err)
	}
}

func TestDialSSH_ForwardsInput(t *testing.T) {
	t.Parallel()

	addr := startServer(t, func(s ssh.Session) {
		line, _ := bufio.NewReader(s).ReadString('\r')
		_, _ = io.WriteString(s, "got "+strings.TrimSpace(line))
		_ = s.Exit(0)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := testSSHConfig(addr)
	cfg.Command = "cat"
	r, err := DialSSH(ctx, cfg, 80, 25)
	if err != nil {
		t.Fatalf("DialSSH: %v", err)
	}
	defer r.Close()

	if _, err := r.Write([]byte("ping\r")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "got ping" {
		t.Errorf("output = %q, want %q", data, "got ping")
	}
}

func TestDialSSH_WrongPassword(t *testing.T) {
	t.Parallel()

	addr := startServer(t, func(s ssh.Session) { _ = s.Exit(0) })

	cfg := testSSHConfig(addr)
	cfg.Password = "guess"
	if _, err := DialSSH(context.Background(), cfg, 80, 25); err == nil {
		t.Fatal("expected handshake failure")
	}
}

func TestDialSSH_MissingKnownHosts(t *testing.T) {
	t.Parallel()

	cfg := SSHConfig{Target: "me@127.0.0.1:1", KnownHosts: filepath.Join(t.TempDir(), "absent")}
	if _, err := DialSSH(context.Background(), cfg, 80, 25); err == nil {
		t.Fatal("expected error for missing known_hosts")
	}
}
