// ABOUTME: Settings loading with global + project YAML config merge and validation
// ABOUTME: Non-zero project values override global ones; defaults fill whatever is left

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/ansicursor/pkg/vscreen"
)

// Render modes.
const (
	RenderAuto  = "auto"
	RenderText  = "text"
	RenderFrame = "frame"
	RenderTUI   = "tui"
	RenderNone  = "none"
)

// Encodings used to display screen bytes.
const (
	EncodingASCII = "ascii"
	EncodingCP437 = "cp437"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultWidth    = 80
	DefaultHeight   = 25
	DefaultFill     = " "
	DefaultScratch  = 4096
	DefaultRender   = RenderAuto
	DefaultEncoding = EncodingASCII

	// DefaultPasswordEnv matches sshpass -e.
	DefaultPasswordEnv = "SSHPASS"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Settings holds the merged configuration.
type Settings struct {
	Width    int               `yaml:"width,omitempty"`
	Height   int               `yaml:"height,omitempty"`
	Fill     string            `yaml:"fill,omitempty"`
	Scratch  int               `yaml:"scratch,omitempty"`
	Render   string            `yaml:"render,omitempty"`
	Encoding string            `yaml:"encoding,omitempty"`
	Command  []string          `yaml:"command,omitempty"`
	Env      map[string]string `yaml:"env,omitempty"`
	SSH      SSHSettings       `yaml:"ssh,omitempty"`
	Verbose  bool              `yaml:"verbose,omitempty"`
}

// SSHSettings selects a remote session as the input instead of a local command.
type SSHSettings struct {
	Target      string `yaml:"target,omitempty"`
	Command     string `yaml:"command,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
	KnownHosts  string `yaml:"known_hosts,omitempty"`
}

// Load reads and merges global and project-local settings.
// Project settings override global settings. Missing files are not errors.
func Load(projectRoot string) (*Settings, error) {
	global, err := LoadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := LoadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return Merge(global, project), nil
}

// LoadFile reads Settings from a YAML file. It returns zero Settings and the
// os error if the file does not exist.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// Merge overlays top onto base. Non-zero values in top win.
func Merge(base, top *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if top == nil {
		result := *base
		return &result
	}

	result := *base

	if top.Width != 0 {
		result.Width = top.Width
	}
	if top.Height != 0 {
		result.Height = top.Height
	}
	if top.Fill != "" {
		result.Fill = top.Fill
	}
	if top.Scratch != 0 {
		result.Scratch = top.Scratch
	}
	if top.Render != "" {
		result.Render = top.Render
	}
	if top.Encoding != "" {
		result.Encoding = top.Encoding
	}
	if len(top.Command) > 0 {
		result.Command = append([]string(nil), top.Command...)
	}
	if top.SSH.Target != "" {
		result.SSH.Target = top.SSH.Target
	}
	if top.SSH.Command != "" {
		result.SSH.Command = top.SSH.Command
	}
	if top.SSH.PasswordEnv != "" {
		result.SSH.PasswordEnv = top.SSH.PasswordEnv
	}
	if top.SSH.KnownHosts != "" {
		result.SSH.KnownHosts = top.SSH.KnownHosts
	}
	if top.Verbose {
		result.Verbose = true
	}

	if len(top.Env) > 0 {
		env := make(map[string]string, len(base.Env)+len(top.Env))
		for k, v := range base.Env {
			env[k] = v
		}
		for k, v := range top.Env {
			env[k] = v
		}
		result.Env = env
	}

	return &result
}

// ApplyDefaults fills zero fields with package defaults.
func (s *Settings) ApplyDefaults() {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Fill == "" {
		s.Fill = DefaultFill
	}
	if s.Scratch == 0 {
		s.Scratch = DefaultScratch
	}
	if s.Render == "" {
		s.Render = DefaultRender
	}
	if s.Encoding == "" {
		s.Encoding = DefaultEncoding
	}
	if s.SSH.PasswordEnv == "" {
		s.SSH.PasswordEnv = DefaultPasswordEnv
	}
}

// Validate checks the settings after defaults have been applied.
func (s *Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalid, s.Width, s.Height)
	}
	if err := vscreen.CheckSize(s.Width, s.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(s.Fill) != 1 {
		return fmt.Errorf("%w: fill %q must be a single byte", ErrInvalid, s.Fill)
	}
	if s.Scratch < 2 {
		return fmt.Errorf("%w: scratch %d must be at least 2", ErrInvalid, s.Scratch)
	}
	switch s.Render {
	case RenderAuto, RenderText, RenderFrame, RenderTUI, RenderNone:
	default:
		return fmt.Errorf("%w: unknown render mode %q", ErrInvalid, s.Render)
	}
	switch s.Encoding {
	case EncodingASCII, EncodingCP437:
	default:
		return fmt.Errorf("%w: unknown encoding %q", ErrInvalid, s.Encoding)
	}
	if s.SSH.Target != "" && len(s.Command) > 0 {
		return fmt.Errorf("%w: ssh target and local command are mutually exclusive", ErrInvalid)
	}
	return nil
}

// FillByte returns the configured fill as a byte. Call after Validate.
func (s *Settings) FillByte() byte {
	if s.Fill == "" {
		return DefaultFill[0]
	}
	return s.Fill[0]
}

// SSHPassword returns the password from the configured environment variable.
func (s *Settings) SSHPassword() string {
	return os.Getenv(s.SSH.PasswordEnv)
}

// Environ returns os.Environ() with the configured Env appended.
func (s *Settings) Environ() []string {
	env := os.Environ()
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	return env
}
