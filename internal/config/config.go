// Package config handles configuration file loading and parsing.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "histoast"

// ConfigDir returns the histoast configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName)
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(ConfigDir(), AppName+".toml")
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
