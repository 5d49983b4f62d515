// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/holomush/restoclient/pkg/errutil"
)

// TerminalPrompter reads credentials from a terminal. The password is read
// without echo when in is a terminal.
type TerminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminalPrompter creates a prompter reading from in and writing prompts
// to out.
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// PromptUsername asks for a username.
func (p *TerminalPrompter) PromptUsername(ctx context.Context, server string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprintf(p.out, "Please enter your username for %s server: ", server)
	line, err := await(ctx, func() (string, error) { return p.reader.ReadString('\n') })
	if ctxErr := ctx.Err(); ctxErr != nil && line == "" {
		return "", ctxErr
	}
	if err != nil && line == "" {
		return "", errutil.User("PROMPT_FAILED").With("server", server).Wrapf(err, "cannot read username")
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword asks for the password of username, masked when possible.
func (p *TerminalPrompter) PromptPassword(ctx context.Context, server, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprintf(p.out, "Please enter your password for %s server (user %s): ", server, username)

	fd := int(p.in.Fd()) //nolint:gosec // fd fits in int on supported platforms
	if term.IsTerminal(fd) {
		state, stateErr := term.GetState(fd)
		secret, err := await(ctx, func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		})
		_, _ = fmt.Fprintln(p.out)
		if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
			// echo stays off while ReadPassword is still blocked
			if stateErr == nil {
				_ = term.Restore(fd, state)
			}
			return "", ctxErr
		}
		if err != nil {
			return "", errutil.User("PROMPT_FAILED").With("server", server).Wrapf(err, "cannot read password")
		}
		return string(secret), nil
	}

	line, err := await(ctx, func() (string, error) { return p.reader.ReadString('\n') })
	if ctxErr := ctx.Err(); ctxErr != nil && line == "" {
		return "", ctxErr
	}
	if err != nil && line == "" {
		return "", errutil.User("PROMPT_FAILED").With("server", server).Wrapf(err, "cannot read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// await runs a blocking read and gives up when ctx ends. The abandoned read
// keeps its goroutine until input arrives or the process exits.
func await(ctx context.Context, read func() (string, error)) (string, error) {
	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := read()
		done <- result{line, err}
	}()
	select {
	case r := <-done:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
