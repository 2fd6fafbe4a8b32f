package config

import (
	"os"
	"path/filepath"
)

// Extensions are the config file formats looked for, in order.
var Extensions = []string{"yml", "yaml", "json", "toml"}

// LocalConfigName is the base name of a project config file.
const LocalConfigName = ".gyp-ninja"

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range Extensions {
			path := filepath.Join(dir, LocalConfigName+"."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// GlobalConfigDir is the directory holding the user's config file:
// $XDG_CONFIG_HOME/gyp-ninja, or the OS user config directory.
func GlobalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gyp-ninja")
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "gyp-ninja")
}

// FindGlobalConfig returns the user's config file, or "" when there is none
func FindGlobalConfig() string {
	dir := GlobalConfigDir()
	if dir == "" {
		return ""
	}

	for _, ext := range Extensions {
		path := filepath.Join(dir, "config."+ext)

		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
