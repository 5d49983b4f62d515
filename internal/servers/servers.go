// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package servers holds the database of resto server descriptions: the
// well-known servers shipped with the client plus the ones configured by the
// user, which are persisted in a YAML file.
package servers

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/pkg/errutil"
)

// Server describes one resto server: its catalog service and its
// authentication service, which may share a base URL.
type Server struct {
	Name          string `yaml:"-"`
	RestoURL      string `yaml:"resto_base_url"`
	RestoProtocol string `yaml:"resto_protocol"`
	AuthURL       string `yaml:"auth_base_url"`
	AuthProtocol  string `yaml:"auth_protocol"`
	BuiltIn       bool   `yaml:"-"`
}

// Validate checks that both protocols are known and both URLs are set.
// Base URLs are normalized to end with a single slash.
func (s *Server) Validate() error {
	if s.Name == "" {
		return errutil.User("SERVER_INVALID").Errorf("server name is required")
	}
	if s.RestoURL == "" {
		return errutil.User("SERVER_INVALID").With("server", s.Name).Errorf("resto base URL is required")
	}
	if s.AuthURL == "" {
		s.AuthURL = s.RestoURL
	}
	if _, err := dialect.Resto(s.RestoProtocol); err != nil {
		return err
	}
	if _, err := dialect.Auth(s.AuthProtocol); err != nil {
		return err
	}
	s.RestoURL = dialect.EnsureTrailingSlash(s.RestoURL)
	s.AuthURL = dialect.EnsureTrailingSlash(s.AuthURL)
	s.RestoProtocol = strings.ToLower(s.RestoProtocol)
	s.AuthProtocol = strings.ToLower(s.AuthProtocol)
	return nil
}

var wellKnown = map[string]Server{
	"kalideos": {
		RestoURL: "https://www.kalideos.fr/resto2/", RestoProtocol: dialect.RestoDotcloud,
		AuthURL: "https://www.kalideos.fr/drupal/api/resto/authenticate/", AuthProtocol: dialect.AuthSSODotcloud,
	},
	"ro": {
		RestoURL: "https://www.recovery-observatory.org/resto2/", RestoProtocol: dialect.RestoDotcloud,
		AuthURL: "https://www.recovery-observatory.org/drupal/api/resto/authenticate/", AuthProtocol: dialect.AuthSSODotcloud,
	},
	"pleiades": {
		RestoURL: "https://www.pleiades-cnes.fr/resto2/", RestoProtocol: dialect.RestoDotcloud,
		AuthURL: "https://www.pleiades-cnes.fr/drupal/api/resto/sso_cnes/authenticate/", AuthProtocol: dialect.AuthSSODotcloud,
	},
	"peps": {
		RestoURL: "https://peps.cnes.fr/resto/", RestoProtocol: dialect.RestoPepsVersion,
		AuthURL: "https://peps.cnes.fr/resto/", AuthProtocol: dialect.AuthDefault,
	},
	"theia": {
		RestoURL: "https://theia.cnes.fr/atdistrib/resto2/", RestoProtocol: dialect.RestoTheiaVersion,
		AuthURL: "https://theia.cnes.fr/atdistrib/services/authenticate/", AuthProtocol: dialect.AuthSSOTheia,
	},
	"creodias": {
		RestoURL: "https://finder.creodias.eu/resto/", RestoProtocol: dialect.RestoTheiaVersion,
		AuthURL: "https://finder.creodias.eu/resto/", AuthProtocol: dialect.AuthSSOTheia,
	},
	"cop_nci": {
		RestoURL: "https://copernicus.nci.org.au/sara.server/1.0/", RestoProtocol: dialect.RestoTheiaVersion,
		AuthURL: "https://copernicus.nci.org.au/sara.server/1.0/", AuthProtocol: dialect.AuthDefault,
	},
	"sent_hub": {
		RestoURL: "http://opensearch.sentinel-hub.com/resto/", RestoProtocol: dialect.RestoTheiaVersion,
		AuthURL: "http://opensearch.sentinel-hub.com/resto/", AuthProtocol: dialect.AuthDefault,
	},
	"rocket": {
		RestoURL: "https://resto.mapshup.com/2.2/", RestoProtocol: dialect.RestoTheiaVersion,
		AuthURL: "https://resto.mapshup.com/2.2/", AuthProtocol: dialect.AuthDefault,
	},
}

// CanonicalName returns the lookup form of a server name.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Database is the set of known servers.
type Database struct {
	path string
	user map[string]Server
}

// Load reads user-defined servers from path. A missing file yields a
// database holding only the well-known servers.
func Load(path string) (*Database, error) {
	db := &Database{path: path, user: map[string]Server{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, oops.Code("SERVERS_READ_FAILED").With("path", path).Wrap(err)
	}

	var raw map[string]Server
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errutil.User("SERVERS_INVALID").With("path", path).Wrapf(err, "servers file %s is not valid YAML", path)
	}
	for name, s := range raw {
		s.Name = CanonicalName(name)
		if err := s.Validate(); err != nil {
			return nil, oops.With("path", path).With("server", s.Name).Wrap(err)
		}
		db.user[s.Name] = s
	}
	return db, nil
}

// Get returns the server called name.
func (db *Database) Get(name string) (Server, error) {
	canonical := CanonicalName(name)
	if s, ok := db.user[canonical]; ok {
		return s, nil
	}
	if s, ok := wellKnown[canonical]; ok {
		s.Name = canonical
		s.BuiltIn = true
		return s, nil
	}
	return Server{}, errutil.User("UNKNOWN_SERVER").
		With("server", canonical).
		Errorf("Server %s does not exist in the servers database", canonical)
}

// Exists reports whether name is a known server.
func (db *Database) Exists(name string) bool {
	_, err := db.Get(name)
	return err == nil
}

// Names lists every known server, sorted.
func (db *Database) Names() []string {
	all := maps.Clone(wellKnown)
	maps.Copy(all, db.user)
	return slices.Sorted(maps.Keys(all))
}

// All returns every known server, sorted by name.
func (db *Database) All() []Server {
	out := make([]Server, 0, len(wellKnown)+len(db.user))
	for _, name := range db.Names() {
		s, _ := db.Get(name)
		out = append(out, s)
	}
	return out
}

// Add records a user-defined server. Well-known servers cannot be redefined.
func (db *Database) Add(s Server) error {
	s.Name = CanonicalName(s.Name)
	if _, ok := wellKnown[s.Name]; ok {
		return errutil.User("SERVER_BUILTIN").
			With("server", s.Name).
			Errorf("Server %s is a well-known server and cannot be redefined", s.Name)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	db.user[s.Name] = s
	return nil
}

// Remove deletes a user-defined server.
func (db *Database) Remove(name string) error {
	canonical := CanonicalName(name)
	if _, ok := wellKnown[canonical]; ok {
		return errutil.User("SERVER_BUILTIN").
			With("server", canonical).
			Errorf("Server %s is a well-known server and cannot be deleted", canonical)
	}
	if _, ok := db.user[canonical]; !ok {
		return errutil.User("UNKNOWN_SERVER").
			With("server", canonical).
			Errorf("Server %s does not exist in the servers database", canonical)
	}
	delete(db.user, canonical)
	return nil
}

// Save writes the user-defined servers back to the database file.
func (db *Database) Save() error {
	data, err := yaml.Marshal(db.user)
	if err != nil {
		return oops.Code("SERVERS_ENCODE_FAILED").Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(db.path), 0o700); err != nil {
		return oops.Code("SERVERS_WRITE_FAILED").With("path", db.path).Wrap(err)
	}
	if err := os.WriteFile(db.path, data, 0o600); err != nil {
		return oops.Code("SERVERS_WRITE_FAILED").With("path", db.path).Wrap(err)
	}
	return nil
}
