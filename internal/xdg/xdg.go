// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg provides XDG Base Directory paths for the resto client.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "resto"

// File and directory names inside the config directory.
const (
	SettingsFile = "settings.yaml"
	ServersFile  = "servers.yaml"
	// Zones holds the region *.geojson files.
	Zones = "zones"
)

func base(envVar string, fallback ...string) (string, error) {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", oops.Code("XDG_NO_HOME").
			With("env", envVar).
			Errorf("neither %s nor HOME is set", envVar)
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}

// ConfigDir returns the XDG config directory for resto.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return base("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for resto.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	return base("XDG_DATA_HOME", ".local", "share")
}

// DownloadDir returns the default download directory, ~/Downloads/resto
// when a Downloads folder exists, the data directory otherwise.
func DownloadDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		downloads := filepath.Join(home, "Downloads")
		if info, err := os.Stat(downloads); err == nil && info.IsDir() {
			return filepath.Join(downloads, appName), nil
		}
	}
	return DataDir()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
