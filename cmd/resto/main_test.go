// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd(&Deps{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"set", "unset", "show", "search", "download", "configure_server", "settings"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd(&Deps{})
	for _, name := range []string{"config-dir", "log-format", "verbosity", "metrics-file", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
}

func TestRun_UnknownCommandFails(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"nope"}, &Deps{Stdout: new(bytes.Buffer), Stderr: stderr})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, humanSize(tt.n))
		})
	}
}

func TestTextProgress(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newTextProgress(buf)

	p.Start("S2A.zip", 100)
	p.Advance(25)
	p.Advance(25)
	p.Finish()

	assert.Equal(t, "downloading S2A.zip (100 B)\n  S2A.zip: 20%\n  S2A.zip: 50%\n  S2A.zip: done, 50 B\n", buf.String())
}
