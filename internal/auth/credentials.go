// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/holomush/restoclient/pkg/errutil"
)

// Prompter asks the operator for missing credentials.
type Prompter interface {
	PromptUsername(ctx context.Context, server string) (string, error)
	PromptPassword(ctx context.Context, server, username string) (string, error)
}

// Credentials holds the username and password used against one server.
type Credentials struct {
	mu       sync.Mutex
	server   string
	username string
	password string
	prompter Prompter
}

// NewCredentials creates credentials for server with an optional persisted
// username. prompter may be nil, in which case missing credentials are an
// error instead of a prompt.
func NewCredentials(server, username string, prompter Prompter) *Credentials {
	return &Credentials{
		server:   server,
		username: strings.ToLower(username),
		prompter: prompter,
	}
}

// Server returns the server these credentials belong to.
func (c *Credentials) Server() string {
	return c.server
}

// Set updates username and password. Both nil is a no-op. Otherwise the
// password is always overwritten (nil clears it) and the username is
// lowercased and replaced when given. It reports whether the username changed.
func (c *Credentials) Set(username, password *string) bool {
	if username == nil && password == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	if username != nil {
		lowered := strings.ToLower(*username)
		changed = lowered != c.username
		c.username = lowered
	}
	c.password = ""
	if password != nil {
		c.password = *password
	}
	return changed
}

// Reset clears username and password.
func (c *Credentials) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = ""
	c.password = ""
}

// Username returns the current username, possibly empty.
func (c *Credentials) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// UsernameB64 returns the username encoded the way license routes expect it.
func (c *Credentials) UsernameB64() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username()))
}

// Complete reports whether both username and password are known.
func (c *Credentials) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username != "" && c.password != ""
}

// EnsureInteractive prompts for whatever is missing.
func (c *Credentials) EnsureInteractive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.username != "" && c.password != "" {
		return nil
	}
	if c.prompter == nil {
		return errutil.User("CREDENTIALS_REQUIRED").
			With("server", c.server).
			Errorf("Credentials are required for server %s, use --username and --password", c.server)
	}
	if c.username == "" {
		u, err := c.prompter.PromptUsername(ctx, c.server)
		if err != nil {
			return err
		}
		c.username = strings.ToLower(strings.TrimSpace(u))
	}
	if c.password == "" {
		p, err := c.prompter.PromptPassword(ctx, c.server, c.username)
		if err != nil {
			return err
		}
		c.password = p
	}
	return nil
}

// Basic returns the raw username and password for HTTP Basic authentication,
// prompting for missing parts first.
func (c *Credentials) Basic(ctx context.Context) (string, string, error) {
	if err := c.EnsureInteractive(ctx); err != nil {
		return "", "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.password, nil
}
