package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "FLOWVIEW_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "flowview.yaml"
	// ConfigFileNameTOML is the TOML spelling of the default config file name
	ConfigFileNameTOML = "flowview.toml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "flowview"
)

// FindConfigPath searches for config file in priority order:
// 1. $FLOWVIEW_CONFIG (explicit path)
// 2. ./flowview.yaml, then ./flowview.toml (working directory)
// 3. $XDG_CONFIG_HOME/flowview/config.{yaml,toml}
// 4. ~/.config/flowview/config.{yaml,toml}
// 5. /etc/flowview/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	for _, name := range []string{ConfigFileName, ConfigFileNameTOML} {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	var dirs []string
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		dirs = append(dirs, filepath.Join(xdgHome, ConfigDirName))
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.toml"} {
			if path := filepath.Join(dir, name); fileExists(path) {
				return path
			}
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

// DefaultConfigPath returns the preferred location for a new config file
// Prefers XDG config home, falls back to working directory
func DefaultConfigPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, "config.yaml")
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}

	return ConfigFileName
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
