// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package servers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/pkg/errutil"
)

func TestLoad_MissingFileHasWellKnown(t *testing.T) {
	db, err := servers.Load(filepath.Join(t.TempDir(), "servers.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cop_nci", "creodias", "kalideos", "peps", "pleiades", "ro", "rocket", "sent_hub", "theia",
	}, db.Names())

	s, err := db.Get("PePs")
	require.NoError(t, err)
	assert.Equal(t, "peps", s.Name)
	assert.True(t, s.BuiltIn)
	assert.Equal(t, "https://peps.cnes.fr/resto/", s.RestoURL)
	assert.Equal(t, "peps_version", s.RestoProtocol)
	assert.Equal(t, "default", s.AuthProtocol)
}

func TestGet_Unknown(t *testing.T) {
	db, err := servers.Load(filepath.Join(t.TempDir(), "servers.yaml"))
	require.NoError(t, err)

	_, err = db.Get("atlantis")
	errutil.AssertUserError(t, err, "UNKNOWN_SERVER")
	assert.False(t, db.Exists("atlantis"))
	assert.True(t, db.Exists("THEIA"))
}

func TestAdd_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "servers.yaml")
	db, err := servers.Load(path)
	require.NoError(t, err)

	require.NoError(t, db.Add(servers.Server{
		Name:          "MyResto",
		RestoURL:      "https://example.org/resto",
		RestoProtocol: "dotcloud",
		AuthProtocol:  "default",
	}))
	require.NoError(t, db.Save())

	reloaded, err := servers.Load(path)
	require.NoError(t, err)
	s, err := reloaded.Get("myresto")
	require.NoError(t, err)
	assert.False(t, s.BuiltIn)
	assert.Equal(t, "https://example.org/resto/", s.RestoURL)
	assert.Equal(t, "https://example.org/resto/", s.AuthURL, "auth URL defaults to resto URL")
	assert.Contains(t, reloaded.Names(), "myresto")
}

func TestAdd_Rejects(t *testing.T) {
	db, err := servers.Load(filepath.Join(t.TempDir(), "servers.yaml"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		server servers.Server
		code   string
	}{
		{"built-in", servers.Server{Name: "peps", RestoURL: "https://x/", RestoProtocol: "dotcloud", AuthProtocol: "default"}, "SERVER_BUILTIN"},
		{"no url", servers.Server{Name: "x", RestoProtocol: "dotcloud", AuthProtocol: "default"}, "SERVER_INVALID"},
		{"bad resto protocol", servers.Server{Name: "x", RestoURL: "https://x/", RestoProtocol: "nope", AuthProtocol: "default"}, "DIALECT_UNKNOWN"},
		{"bad auth protocol", servers.Server{Name: "x", RestoURL: "https://x/", RestoProtocol: "dotcloud", AuthProtocol: "nope"}, "DIALECT_UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errutil.AssertUserError(t, db.Add(tt.server), tt.code)
		})
	}
}

func TestRemove(t *testing.T) {
	db, err := servers.Load(filepath.Join(t.TempDir(), "servers.yaml"))
	require.NoError(t, err)
	require.NoError(t, db.Add(servers.Server{Name: "mine", RestoURL: "https://x/", RestoProtocol: "dotcloud", AuthProtocol: "default"}))

	require.NoError(t, db.Remove("MINE"))
	assert.False(t, db.Exists("mine"))

	errutil.AssertUserError(t, db.Remove("mine"), "UNKNOWN_SERVER")
	errutil.AssertUserError(t, db.Remove("theia"), "SERVER_BUILTIN")
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mine: [unclosed"), 0o600))

	_, err := servers.Load(path)
	errutil.AssertUserError(t, err, "SERVERS_INVALID")
}

func TestLoad_InvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	content := "mine:\n  resto_base_url: https://x/\n  resto_protocol: bogus\n  auth_protocol: default\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := servers.Load(path)
	require.Error(t, err)
	assert.True(t, errutil.IsUserError(err))
}
