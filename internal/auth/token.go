// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/pkg/errutil"
)

// TokenResult is a GetToken answer normalized across dialects.
type TokenResult struct {
	Success bool
	Token   string
	Message string
}

// TokenAPI is the authentication service as seen by the token manager.
// CheckToken and RevokeToken return an error wrapping dialect.ErrUnsupported
// when the server's dialect has no such route.
type TokenAPI interface {
	GetToken(ctx context.Context) (TokenResult, error)
	CheckToken(ctx context.Context, token string) (bool, error)
	RevokeToken(ctx context.Context, token string) error
}

// TokenManager owns the bearer token of one server.
type TokenManager struct {
	mu      sync.Mutex
	api     TokenAPI
	server  string
	value   string
	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewTokenManager creates a token manager. logger defaults to slog.Default;
// metrics may be nil.
func NewTokenManager(server string, api TokenAPI, logger *slog.Logger, metrics *observability.Metrics) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		api:     api,
		server:  server,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for JWT expiry checks.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// CurrentValue returns the cached token, empty when absent.
func (m *TokenManager) CurrentValue() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Restore seeds the cache with a previously persisted token.
func (m *TokenManager) Restore(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = token
}

// Reset drops the cached token without contacting the server.
func (m *TokenManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
}

// EnsureValid makes sure a valid token is cached, renewing it when absent,
// expired, or rejected by CheckToken. A dialect without CheckToken counts as
// rejected. At most one GetToken is issued.
func (m *TokenManager) EnsureValid(ctx context.Context) error {
	current := m.CurrentValue()
	if current == "" {
		return m.Renew(ctx)
	}
	if tokenExpired(current, m.now()) {
		m.logger.DebugContext(ctx, "cached token expired", "server", m.server)
		return m.Renew(ctx)
	}

	valid, err := m.api.CheckToken(ctx, current)
	switch {
	case errors.Is(err, dialect.ErrUnsupported):
		m.logger.DebugContext(ctx, "server cannot check tokens, renewing", "server", m.server)
		return m.Renew(ctx)
	case err != nil:
		return err
	case !valid:
		m.logger.DebugContext(ctx, "cached token rejected", "server", m.server)
		return m.Renew(ctx)
	}
	return nil
}

// Renew revokes the current token, if any, and acquires a new one.
// Revocation failures never block renewal.
func (m *TokenManager) Renew(ctx context.Context) error {
	if old := m.CurrentValue(); old != "" {
		err := m.api.RevokeToken(ctx, old)
		switch {
		case err == nil, errors.Is(err, dialect.ErrUnsupported):
		default:
			errutil.LogWarn(m.logger, "token revocation failed", err)
		}
		m.Reset()
	}

	res, err := m.api.GetToken(ctx)
	if err != nil {
		if errutil.HasCode(err, errutil.CodeAccessDenied) {
			m.metrics.RecordTokenRenewal("denied")
			m.logger.DebugContext(ctx, "token request refused", "server", m.server, "error", err)
			return accessDenied(m.server, "")
		}
		m.metrics.RecordTokenRenewal("error")
		return err
	}
	if !res.Success || res.Token == "" {
		m.metrics.RecordTokenRenewal("denied")
		return accessDenied(m.server, res.Message)
	}

	m.mu.Lock()
	m.value = res.Token
	m.mu.Unlock()
	m.metrics.RecordTokenRenewal("ok")
	return nil
}
