// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/pkg/errutil"
)

// Service applies the authorization policy of one server.
type Service struct {
	creds  *Credentials
	tokens *TokenManager
	logger *slog.Logger
}

// NewService creates a Service. logger defaults to slog.Default.
func NewService(creds *Credentials, tokens *TokenManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{creds: creds, tokens: tokens, logger: logger}
}

// Credentials exposes the underlying credential store.
func (s *Service) Credentials() *Credentials {
	return s.creds
}

// Tokens exposes the underlying token manager.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// SetCredentials updates the credentials and discards the token when the
// username changed.
func (s *Service) SetCredentials(username, password *string) {
	if s.creds.Set(username, password) {
		s.logger.Debug("username changed, discarding token", "server", s.creds.Server())
		s.tokens.Reset()
	}
}

// Reset clears username, password and token.
func (s *Service) Reset() {
	s.creds.Reset()
	s.tokens.Reset()
}

// AuthorizationHeader returns the Authorization header value to attach to a
// request with requirement req, or "" for none.
func (s *Service) AuthorizationHeader(ctx context.Context, req dialect.Requirement) (string, error) {
	switch req {
	case dialect.Always:
		if err := s.tokens.EnsureValid(ctx); err != nil {
			return "", s.denied(err)
		}
		return bearer(s.tokens.CurrentValue()), nil
	case dialect.Opportunistic:
		if token := s.tokens.CurrentValue(); token != "" {
			return bearer(token), nil
		}
		if !s.creds.Complete() {
			return "", nil
		}
		if err := s.tokens.Renew(ctx); err != nil {
			return "", s.denied(err)
		}
		return bearer(s.tokens.CurrentValue()), nil
	default:
		return "", nil
	}
}

// BasicCredentials returns the raw username and password used by token
// requests, prompting for missing parts.
func (s *Service) BasicCredentials(ctx context.Context) (string, string, error) {
	return s.creds.Basic(ctx)
}

func (s *Service) denied(err error) error {
	if errutil.HasCode(err, errutil.CodeAccessDenied) {
		s.Reset()
	}
	return err
}

func bearer(token string) string {
	return "Bearer " + token
}
