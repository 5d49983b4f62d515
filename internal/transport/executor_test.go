// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/internal/transport"
	"github.com/holomush/restoclient/pkg/errutil"
)

type staticAuthorizer struct {
	header string
	err    error
	seen   []dialect.Requirement
}

func (s *staticAuthorizer) AuthorizationHeader(_ context.Context, req dialect.Requirement) (string, error) {
	s.seen = append(s.seen, req)
	if req == dialect.Never {
		return "", nil
	}
	return s.header, s.err
}

type staticBasic struct{ user, pass string }

func (s staticBasic) BasicCredentials(context.Context) (string, string, error) {
	return s.user, s.pass, nil
}

func testClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

func route(method string, auth dialect.Requirement) dialect.Route {
	return dialect.Route{Kind: dialect.GetCollections, Action: "listing collections", Method: method, Accept: dialect.AcceptJSON, Auth: auth}
}

func TestExecutor_AttachesAuthorization(t *testing.T) {
	defer goleak.VerifyNone(t)

	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	authz := &staticAuthorizer{header: "Bearer tok"}
	exec := transport.NewExecutor(transport.Options{Client: testClient(), Authorizer: authz})

	var out map[string]bool
	err := exec.DoJSON(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Always), URL: srv.URL}, &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, dialect.AcceptJSON, gotAccept)
	assert.Equal(t, []dialect.Requirement{dialect.Always}, authz.seen)
}

func TestExecutor_NeverSendsNoHeader(t *testing.T) {
	defer goleak.VerifyNone(t)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, "{}")
	}))
	defer srv.Close()

	exec := transport.NewExecutor(transport.Options{Client: testClient(), Authorizer: &staticAuthorizer{header: "Bearer tok"}})

	var out map[string]any
	require.NoError(t, exec.DoJSON(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Never), URL: srv.URL}, &out))
	assert.Empty(t, gotAuth)
}

func TestExecutor_BasicAndForm(t *testing.T) {
	defer goleak.VerifyNone(t)

	var user, pass, ident, pw string
	var hasBasic bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, hasBasic = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		ident = r.PostForm.Get("ident")
		pw = r.PostForm.Get("pass")
		_, _ = io.WriteString(w, "the-token")
	}))
	defer srv.Close()

	authz := &staticAuthorizer{header: "Bearer tok"}
	exec := transport.NewExecutor(transport.Options{
		Client:     testClient(),
		Authorizer: authz,
		Basic:      staticBasic{"alice", "pw"},
	})

	text, err := exec.DoText(context.Background(), transport.Request{
		Route: route(http.MethodPost, dialect.Always),
		URL:   srv.URL,
		Form:  url.Values{"ident": {"alice"}, "pass": {"pw"}},
		Basic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "the-token", text)
	assert.True(t, hasBasic)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "pw", pass)
	assert.Equal(t, "alice", ident)
	assert.Equal(t, "pw", pw)
	assert.Empty(t, authz.seen, "basic requests never consult the authorizer")
}

func TestExecutor_ExplicitAuthorization(t *testing.T) {
	defer goleak.VerifyNone(t)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	authz := &staticAuthorizer{header: "Bearer other"}
	exec := transport.NewExecutor(transport.Options{Client: testClient(), Authorizer: authz})

	resp, err := exec.Do(context.Background(), transport.Request{
		Route:         route(http.MethodPost, dialect.Always),
		URL:           srv.URL,
		Authorization: "Bearer old",
	})
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "Bearer old", gotAuth)
	assert.Empty(t, authz.seen)
}

func TestExecutor_Classification(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name   string
		status int
		code   string
		domain string
	}{
		{"forbidden", http.StatusForbidden, errutil.CodeAccessDenied, errutil.DomainUser},
		{"not found", http.StatusNotFound, errutil.CodeHTTPStatus, errutil.DomainServer},
		{"server error", http.StatusInternalServerError, errutil.CodeHTTPStatus, errutil.DomainServer},
		{"unauthorized", http.StatusUnauthorized, errutil.CodeHTTPStatus, errutil.DomainServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "nope")
			}))
			defer srv.Close()

			metrics := observability.NewMetrics(prometheus.NewRegistry())
			exec := transport.NewExecutor(transport.Options{Client: testClient(), Metrics: metrics})

			_, err := exec.Do(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Never), URL: srv.URL})
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
			assert.Equal(t, tt.domain, errutil.Domain(err))
			errutil.AssertErrorContext(t, err, "status", tt.status)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("listing collections", strconv.Itoa(tt.status))), 0)
		})
	}
}

func TestExecutor_TransportFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	exec := transport.NewExecutor(transport.Options{Client: testClient()})

	_, err := exec.Do(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Never), URL: addr})
	errutil.AssertErrorCode(t, err, errutil.CodeTransport)
	assert.Equal(t, errutil.DomainServer, errutil.Domain(err))
}

func TestExecutor_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := transport.NewExecutor(transport.Options{Client: testClient()})
	_, err := exec.Do(ctx, transport.Request{Route: route(http.MethodGet, dialect.Never), URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecutor_AuthorizerErrorStopsRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	denied := errutil.User(errutil.CodeAccessDenied).Errorf("Invalid username/password")
	exec := transport.NewExecutor(transport.Options{Client: testClient(), Authorizer: &staticAuthorizer{err: denied}})

	_, err := exec.Do(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Always), URL: srv.URL})
	errutil.AssertUserError(t, err, errutil.CodeAccessDenied)
	assert.False(t, called)
}

func TestExecutor_InvalidJSON(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	exec := transport.NewExecutor(transport.Options{Client: testClient()})

	var out map[string]any
	err := exec.DoJSON(context.Background(), transport.Request{Route: route(http.MethodGet, dialect.Never), URL: srv.URL}, &out)
	errutil.AssertErrorCode(t, err, "INVALID_RESPONSE")
}

func TestExecutor_BasicWithoutSource(t *testing.T) {
	exec := transport.NewExecutor(transport.Options{Client: testClient()})

	_, err := exec.Do(context.Background(), transport.Request{Route: route(http.MethodPost, dialect.Always), URL: "http://127.0.0.1:1/", Basic: true})
	errutil.AssertErrorCode(t, err, "NO_BASIC_SOURCE")
	assert.Equal(t, errutil.DomainDesign, errutil.Domain(err))
}
