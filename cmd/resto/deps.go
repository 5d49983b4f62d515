// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"io"
	"net/http"
	"os"

	"github.com/holomush/restoclient/internal/auth"
	"github.com/holomush/restoclient/internal/xdg"
)

// Deps contains injectable dependencies for the CLI.
// All fields with nil values will use their default implementations.
type Deps struct {
	// HTTPClient sends every request.
	// Default: a client with no overall timeout, downloads may be long.
	HTTPClient *http.Client

	// Prompter asks for missing credentials.
	// Default: auth.TerminalPrompter on stdin/stderr
	Prompter auth.Prompter

	// ConfigDirGetter returns the configuration directory.
	// Default: xdg.ConfigDir
	ConfigDirGetter func() (string, error)

	// DownloadDirGetter returns the download directory used when none is set.
	// Default: xdg.DownloadDir
	DownloadDirGetter func() (string, error)

	// Stdout and Stderr receive command output and logs.
	Stdout io.Writer
	Stderr io.Writer
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{}
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}
	if out.Prompter == nil {
		out.Prompter = auth.NewTerminalPrompter(os.Stdin, out.Stderr)
	}
	if out.ConfigDirGetter == nil {
		out.ConfigDirGetter = xdg.ConfigDir
	}
	if out.DownloadDirGetter == nil {
		out.DownloadDirGetter = xdg.DownloadDir
	}
	return &out
}
