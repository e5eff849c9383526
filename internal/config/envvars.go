// ABOUTME: Environment variable expansion in config string fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; unset vars become empty

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in the command, env values and ssh fields.
func ResolveEnvVars(s *Settings) {
	for i, arg := range s.Command {
		s.Command[i] = expandEnv(arg)
	}
	for k, v := range s.Env {
		s.Env[k] = expandEnv(v)
	}
	s.SSH.Target = expandEnv(s.SSH.Target)
	s.SSH.Command = expandEnv(s.SSH.Command)
	s.SSH.KnownHosts = expandEnv(s.SSH.KnownHosts)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
