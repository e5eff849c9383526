// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Flags override config file values; trailing arguments are the local or remote command

package main

import (
	"flag"
	"io"
	"strings"

	"github.com/mauromedda/ansicursor/internal/config"
)

type cliArgs struct {
	width    int
	height   int
	fill     string
	scratch  int
	render   string
	encoding string
	input    string
	ssh      string
	config   string
	verbose  bool
	version  bool
	command  []string
}

func parseFlags(argv []string, stderr io.Writer) (cliArgs, error) {
	var args cliArgs

	fs := flag.NewFlagSet("ansicursor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&args.width, "width", 0, "Virtual screen width in cells (default 80)")
	fs.IntVar(&args.height, "height", 0, "Virtual screen height in rows (default 25)")
	fs.StringVar(&args.fill, "fill", "", "Fill byte for blank cells (default space)")
	fs.IntVar(&args.scratch, "scratch", 0, "Read buffer size in bytes (default 4096)")
	fs.StringVar(&args.render, "render", "", "Render mode: auto, text, frame, tui or none")
	fs.StringVar(&args.encoding, "encoding", "", "Display encoding of screen bytes: ascii or cp437")
	fs.StringVar(&args.input, "input", "-", "File to read when no command is given (- for stdin)")
	fs.StringVar(&args.ssh, "ssh", "", "Read a remote session at user@host[:port]; password from $SSHPASS")
	fs.StringVar(&args.config, "config", "", "Config file (default ~/.ansicursor/config.yaml merged with ./.ansicursor.yaml)")
	fs.BoolVar(&args.verbose, "v", false, "Log debug output to stderr")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")

	if err := fs.Parse(argv); err != nil {
		return cliArgs{}, err
	}
	args.command = fs.Args()
	return args, nil
}

// overrides returns the flag values as a Settings layer for config.Merge.
// With -ssh the trailing arguments become the remote command.
func (a cliArgs) overrides() *config.Settings {
	if a.ssh != "" {
		return &config.Settings{
			Width:    a.width,
			Height:   a.height,
			Fill:     a.fill,
			Scratch:  a.scratch,
			Render:   a.render,
			Encoding: a.encoding,
			SSH:      config.SSHSettings{Target: a.ssh, Command: strings.Join(a.command, " ")},
			Verbose:  a.verbose,
		}
	}
	return &config.Settings{
		Width:    a.width,
		Height:   a.height,
		Fill:     a.fill,
		Scratch:  a.scratch,
		Render:   a.render,
		Encoding: a.encoding,
		Command:  a.command,
		Verbose:  a.verbose,
	}
}
