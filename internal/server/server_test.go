// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/internal/server"
	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/pkg/errutil"
)

// fakeResto serves the dotcloud catalog and default authentication routes.
type fakeResto struct {
	mu       sync.Mutex
	srv      *httptest.Server
	requests []string
	// refuseToken answers the token request with 403.
	refuseToken bool
	signed      bool
}

func newFakeResto(t *testing.T) *fakeResto {
	t.Helper()
	f := &fakeResto{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeResto) log(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeResto) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeResto) handle(w http.ResponseWriter, r *http.Request) {
	f.log(r)
	switch r.URL.Path {
	case "/api/users/connect":
		if f.refuseToken {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		user, pass, _ := r.BasicAuth()
		if user == "alice" && pass == "secret" {
			_, _ = io.WriteString(w, `{"token": "tok"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token": ""}`)
	case "/api/users/checkToken":
		_, _ = io.WriteString(w, `{"status": "success"}`)
	case "/collections":
		_, _ = io.WriteString(w, `{"collections": [{"name": "S2"}, {"name": "KALCNES"}], "statistics": {"collection": {"S2": 1}}}`)
	case "/api/collections/S2/search.json":
		_, _ = fmt.Fprintf(w, `{"type": "FeatureCollection", "properties": {}, "features": [
  {"type": "Feature", "id": "f1", "properties": {
    "productIdentifier": "S2A_TEST", "collection": "S2",
    "services": {"download": {"url": "%s/download/S2A_TEST", "mimeType": "application/zip", "size": 7}}}}]}`, f.srv.URL)
	case "/api/users/YWxpY2U=/signatures/L1/":
		f.mu.Lock()
		f.signed = true
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"status": "success"}`)
	case "/download/S2A_TEST":
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		f.mu.Lock()
		signed := f.signed
		f.mu.Unlock()
		if !signed {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"ErrorCode": 3002, "ErrorMessage": "license", "license_id": "L1"}`)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = io.WriteString(w, "payload")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeResto) definition() servers.Server {
	return servers.Server{
		Name:          "test",
		RestoURL:      f.srv.URL + "/",
		RestoProtocol: dialect.RestoDotcloud,
		AuthURL:       f.srv.URL + "/",
		AuthProtocol:  dialect.AuthDefault,
	}
}

func newServer(t *testing.T, f *fakeResto, state server.State) *server.Server {
	t.Helper()
	s, err := server.New(f.definition(), state, server.Options{})
	require.NoError(t, err)
	return s
}

func ptr(s string) *string { return &s }

func TestNew_UnknownDialect(t *testing.T) {
	_, err := server.New(servers.Server{Name: "x", RestoProtocol: "nope", AuthProtocol: dialect.AuthDefault}, server.State{}, server.Options{})
	errutil.AssertUserError(t, err, "DIALECT_UNKNOWN")
}

func TestSetCollection(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{})

	require.NoError(t, s.SetCollection(context.Background(), "s2"))
	assert.Equal(t, "S2", s.Collection())

	err := s.SetCollection(context.Background(), "nope")
	errutil.AssertUserError(t, err, "NO_SUCH_COLLECTION")
	assert.Equal(t, "S2", s.Collection())

	s.ClearCollection()
	assert.Empty(t, s.Collection())
}

func TestSearch_RequiresCollection(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{})

	crit, err := s.ParseCriteria(nil)
	require.NoError(t, err)
	_, _, err = s.Search(context.Background(), crit)
	errutil.AssertUserError(t, err, "NO_COLLECTION")
	assert.Empty(t, f.Requests())
}

func TestDownloadByID_SignsLicense(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{Username: "Alice", Collection: "S2"})
	s.SetCredentials(nil, ptr("secret"))
	downloadDir := t.TempDir()

	path, err := s.DownloadByID(context.Background(), "S2A_TEST", feature.Product, downloadDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(downloadDir, "test", "S2A_TEST.zip"), path)
	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	assert.Equal(t, []string{
		"GET /api/users/connect",
		"GET /api/collections/S2/search.json",
		"GET /api/users/checkToken",
		"GET /download/S2A_TEST",
		"GET /api/users/checkToken",
		"POST /api/users/YWxpY2U=/signatures/L1/",
		"GET /api/users/checkToken",
		"GET /download/S2A_TEST",
	}, f.Requests())

	state := s.State()
	assert.Equal(t, server.State{Username: "alice", Token: "tok", Collection: "S2"}, state)
}

func TestDownload_MissingCredentialsWithoutPrompter(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{Collection: "S2"})

	fe, err := s.Feature(context.Background(), "S2A_TEST")
	require.NoError(t, err)

	_, err = s.Download(context.Background(), fe, feature.Product, t.TempDir())
	errutil.AssertUserError(t, err, "CREDENTIALS_REQUIRED")
}

func TestLogin_AccessDeniedResetsAccount(t *testing.T) {
	f := newFakeResto(t)
	f.refuseToken = true
	s := newServer(t, f, server.State{Username: "alice", Token: ""})
	s.SetCredentials(nil, ptr("secret"))

	err := s.Login(context.Background())
	errutil.AssertUserError(t, err, errutil.CodeAccessDenied)

	assert.Empty(t, s.State().Username)
	assert.Empty(t, s.State().Token)
	assert.False(t, s.Auth().Credentials().Complete())
}

func TestSetCredentials_UsernameChangeDropsToken(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{Username: "alice", Token: "tok"})

	s.SetCredentials(ptr("alice"), ptr("secret"))
	assert.Equal(t, "tok", s.State().Token)

	s.SetCredentials(ptr("bob"), nil)
	assert.Empty(t, s.State().Token)
	assert.Equal(t, "bob", s.State().Username)
}

func TestDataDir(t *testing.T) {
	f := newFakeResto(t)
	s := newServer(t, f, server.State{})
	base := t.TempDir()

	dir, err := s.DataDir(base)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(base, "test"), dir)

	_, err = s.DataDir("")
	errutil.AssertUserError(t, err, "INVALID_DOWNLOAD_DIR")
}
