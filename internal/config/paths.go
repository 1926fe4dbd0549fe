package config

import (
	"os"
	"path/filepath"
)

// AppName is the directory name under the XDG config home.
const AppName = "river-swww"

// FileName is the configuration file name inside Dir.
const FileName = "config.json"

// configHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

// Dir returns the river-swww configuration directory.
func Dir() string {
	base := configHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, AppName)
}

// DefaultPath returns the path Load reads when no --config flag is given.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}
