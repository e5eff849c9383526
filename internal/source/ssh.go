// ABOUTME: Remote input source: an SSH session with a PTY sized to the virtual screen
// ABOUTME: Password auth from the environment replaces shelling out to sshpass

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultSSHPort is used when the target has no port.
const DefaultSSHPort = "22"

// ErrNoTarget is returned when an SSH target has no host.
var ErrNoTarget = errors.New("no ssh target given")

// SSHConfig describes one remote session.
type SSHConfig struct {
	// Target is user@host[:port]. User defaults to $USER.
	Target   string
	Password string
	// Command runs instead of the login shell when set.
	Command string
	// KnownHosts is the known_hosts file; empty means ~/.ssh/known_hosts.
	KnownHosts      string
	HostKeyCallback gossh.HostKeyCallback
	Timeout         time.Duration
}

// Remote is an SSH session whose terminal output is read like a stream.
type Remote struct {
	client *gossh.Client
	sess   *gossh.Session
	stdout io.Reader
	stdin  io.WriteCloser
}

// SplitTarget parses user@host[:port] into a user and a dialable address.
func SplitTarget(target string) (user, addr string, err error) {
	user = os.Getenv("USER")
	host := target
	if i := strings.LastIndex(target, "@"); i >= 0 {
		user, host = target[:i], target[i+1:]
	}
	if host == "" {
		return "", "", ErrNoTarget
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), DefaultSSHPort)
	}
	return user, host, nil
}

// DialSSH connects, requests a cols x rows PTY and starts the shell or
// cfg.Command.
func DialSSH(ctx context.Context, cfg SSHConfig, cols, rows int) (*Remote, error) {
	user, addr, err := SplitTarget(cfg.Target)
	if err != nil {
		return nil, err
	}

	hostKey := cfg.HostKeyCallback
	if hostKey == nil {
		hostKey, err = knownHostsCallback(cfg.KnownHosts)
		if err != nil {
			return nil, err
		}
	}

	clientCfg := &gossh.ClientConfig{
		User:            user,
		HostKeyCallback: hostKey,
		Timeout:         cfg.Timeout,
	}
	if cfg.Password != "" {
		clientCfg.Auth = []gossh.AuthMethod{gossh.Password(cfg.Password)}
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	c, chans, reqs, err := gossh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	client := gossh.NewClient(c, chans, reqs)

	r, err := startRemote(client, cfg.Command, cols, rows)
	if err != nil {
		client.Close()
		return nil, err
	}
	return r, nil
}

func startRemote(client *gossh.Client, command string, cols, rows int) (*Remote, error) {
	sess, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("opening ssh session: %w", err)
	}

	modes := gossh.TerminalModes{
		gossh.ECHO:          1,
		gossh.TTY_OP_ISPEED: 14400,
		gossh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("xterm", rows, cols, modes); err != nil {
		sess.Close()
		return nil, fmt.Errorf("requesting pty: %w", err)
	}

	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("ssh stdout: %w", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("ssh stdin: %w", err)
	}

	if command != "" {
		err = sess.Start(command)
	} else {
		err = sess.Shell()
	}
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("starting remote shell: %w", err)
	}
	return &Remote{client: client, sess: sess, stdout: stdout, stdin: stdin}, nil
}

func knownHostsCallback(path string) (gossh.HostKeyCallback, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts: %w", err)
	}
	return cb, nil
}

// Read reads the remote terminal output.
func (r *Remote) Read(p []byte) (int, error) {
	return r.stdout.Read(p)
}

// Write sends input to the remote terminal.
func (r *Remote) Write(p []byte) (int, error) {
	n, err := r.stdin.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to ssh session: %w", err)
	}
	return n, nil
}

// Wait waits for the remote command to exit.
func (r *Remote) Wait() error {
	if err := r.sess.Wait(); err != nil {
		return fmt.Errorf("waiting for remote: %w", err)
	}
	return nil
}

// Close ends the session and the connection, which unblocks a pending Read.
func (r *Remote) Close() error {
	_ = r.sess.Close()
	if err := r.client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing ssh connection: %w", err)
	}
	return nil
}
