// ABOUTME: Standard filesystem paths for ansicursor configuration
// ABOUTME: Resolves ~/.ansicursor/config.yaml (global) and .ansicursor.yaml (project)

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName   = ".ansicursor"
	configFileName  = "config.yaml"
	projectFileName = ".ansicursor.yaml"
)

// GlobalDir returns the user-global config directory (~/.ansicursor/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, projectFileName)
}
