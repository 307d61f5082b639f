// Package config loads the ledger settings from file, environment and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user directories the ledger keeps its files in.
const AppName = "ledger"

// ConfigDir is where config.yaml and the Drive token live:
// $XDG_CONFIG_HOME/ledger, else ~/.config/ledger.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ExpandPath resolves a leading ~ to the home directory, then $VAR
// references. Paths the home directory cannot resolve are left as given.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
