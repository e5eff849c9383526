// ABOUTME: CLI entry point for ansicursor: feeds a command's PTY output or a byte stream
// ABOUTME: through the virtual screen and renders every snapshot as text, a frame or a live TUI

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/ansicursor/internal/termfix"

	"github.com/mauromedda/ansicursor/internal/config"
	"github.com/mauromedda/ansicursor/internal/hostterm"
	"github.com/mauromedda/ansicursor/internal/log"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if args.version {
		fmt.Printf("ansicursor %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second signal kills the process if shutdown stalls on a blocked read.
	context.AfterFunc(ctx, stop)

	host := hostterm.NewProcess()
	defer hostterm.RestoreOnPanic(host)

	if err := run(ctx, args, host, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings merges config files with flag overrides and validates the result.
func loadSettings(args cliArgs, cwd string) (*config.Settings, error) {
	var (
		base *config.Settings
		err  error
	)
	if args.config != "" {
		base, err = config.LoadFile(args.config)
	} else {
		base, err = config.Load(cwd)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := config.Merge(base, args.overrides())
	config.ResolveEnvVars(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run loads settings and drives one session to completion.
func run(ctx context.Context, args cliArgs, host hostterm.Terminal, stdout io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := loadSettings(args, cwd)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	return newApp(cfg, args.input, host, stdout).run(ctx)
}
