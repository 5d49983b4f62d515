// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/internal/auth"
)

func newPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = r.Close()
	})
	return r, w
}

func TestTerminalPrompter_ReadsLines(t *testing.T) {
	r, w := newPipe(t)
	out := new(bytes.Buffer)
	p := auth.NewTerminalPrompter(r, out)

	_, err := io.WriteString(w, "alice\nse cret\n")
	require.NoError(t, err)

	username, err := p.PromptUsername(context.Background(), "kalideos")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	password, err := p.PromptPassword(context.Background(), "kalideos", "alice")
	require.NoError(t, err)
	assert.Equal(t, "se cret", password)
	assert.Contains(t, out.String(), "username for kalideos")
	assert.Contains(t, out.String(), "password for kalideos server (user alice)")
}

func TestTerminalPrompter_CancelWhileWaiting(t *testing.T) {
	tests := []struct {
		name   string
		prompt func(ctx context.Context, p *auth.TerminalPrompter) error
	}{
		{"username", func(ctx context.Context, p *auth.TerminalPrompter) error {
			_, err := p.PromptUsername(ctx, "kalideos")
			return err
		}},
		{"password", func(ctx context.Context, p *auth.TerminalPrompter) error {
			_, err := p.PromptPassword(ctx, "kalideos", "alice")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newPipe(t)
			p := auth.NewTerminalPrompter(r, io.Discard)
			ctx, cancel := context.WithCancel(context.Background())

			errc := make(chan error, 1)
			go func() { errc <- tt.prompt(ctx, p) }()
			time.Sleep(20 * time.Millisecond)
			cancel()

			select {
			case err := <-errc:
				require.ErrorIs(t, err, context.Canceled)
			case <-time.After(5 * time.Second):
				t.Fatal("prompt did not return after cancellation")
			}
		})
	}
}
