// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package settings persists the client state between runs: the current
// server session and the client parameters.
//
// Values come from two layers. The settings file holds what `resto set`
// recorded; command-line flags override it for one run and are never saved.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/restoclient/pkg/errutil"
)

// SchemaVersion is written to new settings files.
const SchemaVersion = "1.0.0"

// supportedVersions is the range of settings file versions this client reads.
const supportedVersions = "^1"

// Setting keys.
const (
	KeySchemaVersion = "schema_version"
	KeyServer        = "server"
	KeyCollection    = "collection"
	KeyUsername      = "username"
	KeyToken         = "token"
	KeyDownloadDir   = "download_dir"
	KeyRegion        = "region"
	KeyVerbosity     = "verbosity"
)

// Verbosity levels.
const (
	VerbosityNormal = "NORMAL"
	VerbosityDebug  = "DEBUG"
)

// Verbosities lists the accepted verbosity levels.
var Verbosities = []string{VerbosityNormal, VerbosityDebug}

// File is the shape of the settings file.
type File struct {
	SchemaVersion string `koanf:"schema_version" json:"schema_version,omitempty" jsonschema:"title=Schema version,description=Version of the settings file format"`
	Server        string `koanf:"server" json:"server,omitempty" jsonschema:"description=Name of the current server"`
	Collection    string `koanf:"collection" json:"collection,omitempty" jsonschema:"description=Current collection of the current server"`
	Username      string `koanf:"username" json:"username,omitempty" jsonschema:"description=Account used on the current server"`
	Token         string `koanf:"token" json:"token,omitempty" jsonschema:"description=Last token obtained for the account"`
	DownloadDir   string `koanf:"download_dir" json:"download_dir,omitempty" jsonschema:"description=Directory receiving downloaded files"`
	Region        string `koanf:"region" json:"region,omitempty" jsonschema:"description=Region used by default in searches"`
	Verbosity     string `koanf:"verbosity" json:"verbosity,omitempty" jsonschema:"enum=NORMAL,enum=DEBUG"`
}

// Store holds the settings of one run.
type Store struct {
	path  string
	file  *koanf.Koanf
	flags *koanf.Koanf
}

// New returns an empty store saved to path.
func New(path string) *Store {
	s := &Store{path: path, file: koanf.New("."), flags: koanf.New(".")}
	_ = s.file.Set(KeySchemaVersion, SchemaVersion)
	return s
}

// Load reads the settings file at path. A missing file yields empty
// settings. Files written before versioning are upgraded to SchemaVersion.
func Load(path string) (*Store, error) {
	s := New(path)

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the config directory
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, oops.Code("SETTINGS_READ_FAILED").With("path", path).Wrap(err)
	}
	if err := ValidateSchema(data); err != nil {
		return nil, errutil.User("SETTINGS_INVALID").
			With("path", path).
			Wrapf(err, "settings file %s is invalid", path)
	}

	s.file = koanf.New(".")
	if err := s.file.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errutil.User("SETTINGS_INVALID").
			With("path", path).
			Wrapf(err, "settings file %s is not valid YAML", path)
	}
	if err := s.checkVersion(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) checkVersion() error {
	raw := s.file.String(KeySchemaVersion)
	if raw == "" {
		return s.file.Set(KeySchemaVersion, SchemaVersion)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return errutil.User("SETTINGS_VERSION").
			With("path", s.path).
			With("version", raw).
			Wrapf(err, "settings file %s has an invalid schema_version %q", s.path, raw)
	}
	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return oops.Code("SETTINGS_VERSION").Wrap(err)
	}
	if !c.Check(v) {
		return errutil.User("SETTINGS_VERSION").
			With("path", s.path).
			With("version", raw).
			Errorf("settings file %s has version %s, this client reads %s", s.path, raw, supportedVersions)
	}
	return nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// BindFlags overrides settings with the flags of fs that the user set.
// keys maps flag names to setting keys.
func (s *Store) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	provider := posflag.ProviderWithFlag(fs, ".", s.flags, func(f *pflag.Flag) (string, any) {
		key, ok := keys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := s.flags.Load(provider, nil); err != nil {
		return oops.Code("SETTINGS_FLAGS_FAILED").Wrap(err)
	}
	return nil
}

func (s *Store) get(key string) string {
	if s.flags.Exists(key) {
		return s.flags.String(key)
	}
	return s.file.String(key)
}

// Persisted returns the value recorded in the file, ignoring flags.
func (s *Store) Persisted(key string) string {
	return s.file.String(key)
}

// Server returns the current server name.
func (s *Store) Server() string { return s.get(KeyServer) }

// Collection returns the current collection name.
func (s *Store) Collection() string { return s.get(KeyCollection) }

// Username returns the account name for the current server.
func (s *Store) Username() string { return s.get(KeyUsername) }

// Token returns the persisted token for the current server.
func (s *Store) Token() string { return s.file.String(KeyToken) }

// DownloadDir returns the download directory.
func (s *Store) DownloadDir() string { return s.get(KeyDownloadDir) }

// Region returns the default search region.
func (s *Store) Region() string { return s.get(KeyRegion) }

// Verbosity returns the verbosity level, NORMAL when unset.
func (s *Store) Verbosity() string {
	if v := s.get(KeyVerbosity); v != "" {
		return strings.ToUpper(v)
	}
	return VerbosityNormal
}

// SetServer records the current server. Changing server forgets the
// collection and the account of the previous one.
func (s *Store) SetServer(name string) {
	if name != s.file.String(KeyServer) {
		s.file.Delete(KeyCollection)
		s.file.Delete(KeyUsername)
		s.file.Delete(KeyToken)
	}
	s.set(KeyServer, name)
}

// SetSession records the state of the current server session.
func (s *Store) SetSession(username, token, collection string) {
	s.set(KeyUsername, username)
	s.set(KeyToken, token)
	s.set(KeyCollection, collection)
}

// SetDownloadDir records the download directory, which must exist.
func (s *Store) SetDownloadDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errutil.User("INVALID_DOWNLOAD_DIR").
			With("dir", dir).
			Errorf("%s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return oops.Code("INVALID_DOWNLOAD_DIR").With("dir", dir).Wrap(err)
	}
	s.set(KeyDownloadDir, abs)
	return nil
}

// SetRegion records the default search region.
func (s *Store) SetRegion(name string) {
	s.set(KeyRegion, strings.ToLower(name))
}

// SetVerbosity records the verbosity level.
func (s *Store) SetVerbosity(level string) error {
	level = strings.ToUpper(level)
	if !slices.Contains(Verbosities, level) {
		return errutil.User("INVALID_VERBOSITY").
			With("verbosity", level).
			Errorf("invalid verbosity %s, choose from %s", level, strings.Join(Verbosities, ", "))
	}
	s.set(KeyVerbosity, level)
	return nil
}

// Unset removes key from the file. Unsetting the server also removes the
// session attached to it.
func (s *Store) Unset(key string) {
	if key == KeyServer {
		s.SetServer("")
	}
	s.file.Delete(key)
}

// set stores value, removing the key when value is empty.
func (s *Store) set(key, value string) {
	if value == "" {
		s.file.Delete(key)
		return
	}
	_ = s.file.Set(key, value)
}

// Values returns the persisted settings.
func (s *Store) Values() (File, error) {
	var f File
	if err := s.file.Unmarshal("", &f); err != nil {
		return File{}, oops.Code("SETTINGS_DECODE_FAILED").Wrap(err)
	}
	return f, nil
}

// Save writes the settings file atomically.
func (s *Store) Save() error {
	data, err := s.file.Marshal(yaml.Parser())
	if err != nil {
		return oops.Code("SETTINGS_ENCODE_FAILED").Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return oops.Code("SETTINGS_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return oops.Code("SETTINGS_WRITE_FAILED").With("path", tmp).Wrap(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return oops.Code("SETTINGS_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}

// Persist saves s and reports a failure through errp unless it already
// holds an error. Meant to be deferred by commands.
func Persist(s *Store, errp *error) {
	if err := s.Save(); err != nil && *errp == nil {
		*errp = err
	}
}
