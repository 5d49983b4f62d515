// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package server assembles everything needed to talk to one resto server:
// dialects, credentials, token, request executor, catalog and downloads.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/holomush/restoclient/internal/auth"
	"github.com/holomush/restoclient/internal/collection"
	"github.com/holomush/restoclient/internal/criteria"
	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/download"
	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/internal/restoapi"
	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/internal/transport"
	"github.com/holomush/restoclient/pkg/errutil"
)

// State is the persisted part of a server session.
type State struct {
	Username   string
	Token      string
	Collection string
}

// Options configures a Server.
type Options struct {
	Client    *http.Client
	Prompter  auth.Prompter
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	UserAgent string
	Regions   criteria.RegionResolver

	StagingInterval time.Duration
	StagingRetries  uint64
	Progress        download.Progress
}

// Server is a session with one resto server.
type Server struct {
	def        servers.Server
	auth       *auth.Service
	catalog    *restoapi.Catalog
	downloads  *download.Orchestrator
	regions    criteria.RegionResolver
	logger     *slog.Logger
	collection string
}

// New creates a session with def, restoring state.
func New(def servers.Server, state State, opts Options) (*Server, error) {
	restoDialect, err := dialect.Resto(def.RestoProtocol)
	if err != nil {
		return nil, err
	}
	authDialect, err := dialect.Auth(def.AuthProtocol)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("server", def.Name)

	exec := transport.NewExecutor(transport.Options{
		Client:    opts.Client,
		Logger:    logger,
		Metrics:   opts.Metrics,
		UserAgent: opts.UserAgent,
	})
	creds := auth.NewCredentials(def.Name, state.Username, opts.Prompter)
	authAPI := restoapi.NewAuthAPI(exec, authDialect, def.AuthURL, basicSource{creds})
	tokens := auth.NewTokenManager(def.Name, authAPI, logger, opts.Metrics)
	tokens.Restore(state.Token)
	svc := auth.NewService(creds, tokens, logger)
	exec.SetAuthorizer(svc)
	exec.SetBasicSource(svc)

	s := &Server{
		def:        def,
		auth:       svc,
		catalog:    restoapi.NewCatalog(exec, restoDialect, def.RestoURL, creds),
		regions:    opts.Regions,
		logger:     logger,
		collection: state.Collection,
	}
	s.downloads = download.New(backend{s}, download.Options{
		ProductURLSuffix: restoDialect.ProductURLSuffix,
		StagingInterval:  opts.StagingInterval,
		StagingRetries:   opts.StagingRetries,
		Progress:         opts.Progress,
		Logger:           logger,
		Metrics:          opts.Metrics,
	})
	return s, nil
}

// Name returns the canonical server name.
func (s *Server) Name() string { return s.def.Name }

// Definition returns the server description.
func (s *Server) Definition() servers.Server { return s.def }

// Protocol returns the catalog dialect name.
func (s *Server) Protocol() string { return s.def.RestoProtocol }

// Auth exposes the authentication service.
func (s *Server) Auth() *auth.Service { return s.auth }

// State returns what must be persisted for the next run.
func (s *Server) State() State {
	return State{
		Username:   s.auth.Credentials().Username(),
		Token:      s.auth.Tokens().CurrentValue(),
		Collection: s.collection,
	}
}

// SetCredentials updates the account used with this server.
func (s *Server) SetCredentials(username, password *string) {
	s.auth.SetCredentials(username, password)
}

// ResetAccount forgets username, password and token.
func (s *Server) ResetAccount() {
	s.auth.Reset()
}

// Login obtains a valid token, prompting for missing credentials.
func (s *Server) Login(ctx context.Context) error {
	_, err := s.auth.AuthorizationHeader(ctx, dialect.Always)
	return err
}

// Collections returns the collections of the server.
func (s *Server) Collections(ctx context.Context) (*collection.Set, error) {
	return s.catalog.Collections(ctx)
}

// Describe returns the collections with their statistics.
func (s *Server) Describe(ctx context.Context) (*collection.Set, error) {
	return s.catalog.Describe(ctx)
}

// Collection returns the current collection name, possibly empty.
func (s *Server) Collection() string { return s.collection }

// SetCollection selects the current collection. An empty name selects the
// only collection of the server when there is exactly one, and clears the
// selection otherwise.
func (s *Server) SetCollection(ctx context.Context, name string) error {
	set, err := s.catalog.Collections(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		s.collection, _ = set.Default()
		return nil
	}
	canonical, err := set.Normalize(name)
	if err != nil {
		return err
	}
	s.collection = canonical
	return nil
}

// ClearCollection forgets the current collection.
func (s *Server) ClearCollection() {
	s.collection = ""
}

// CollectionDescription returns the description of the current collection.
func (s *Server) CollectionDescription(ctx context.Context) (*collection.Collection, error) {
	name, err := s.requireCollection()
	if err != nil {
		return nil, err
	}
	return s.catalog.Collection(ctx, name)
}

// ParseCriteria builds search criteria from key:value arguments.
func (s *Server) ParseCriteria(args []string) (*criteria.Criteria, error) {
	var opts []criteria.Option
	if s.regions != nil {
		opts = append(opts, criteria.WithRegions(s.regions))
	}
	return criteria.ParseArgs(s.def.RestoProtocol, args, opts...)
}

// Search runs crit in the current collection.
func (s *Server) Search(ctx context.Context, crit *criteria.Criteria) (*feature.SearchResult, []byte, error) {
	name, err := s.requireCollection()
	if err != nil {
		return nil, nil, err
	}
	return s.catalog.Search(ctx, name, crit)
}

// Feature fetches one feature of the current collection.
func (s *Server) Feature(ctx context.Context, id string) (*feature.Feature, error) {
	name, err := s.requireCollection()
	if err != nil {
		return nil, err
	}
	return s.catalog.FeatureByID(ctx, name, id)
}

// Download writes the file of the given kind of f into the server directory
// below downloadDir.
func (s *Server) Download(ctx context.Context, f *feature.Feature, kind feature.FileKind, downloadDir string) (string, error) {
	dir, err := s.DataDir(downloadDir)
	if err != nil {
		return "", err
	}
	return s.downloads.Download(ctx, f, kind, dir)
}

// DownloadByID fetches the feature id from the current collection, then
// downloads its file of the given kind.
func (s *Server) DownloadByID(ctx context.Context, id string, kind feature.FileKind, downloadDir string) (string, error) {
	f, err := s.Feature(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Download(ctx, f, kind, downloadDir)
}

// DataDir returns <downloadDir>/<server>, creating it if needed.
func (s *Server) DataDir(downloadDir string) (string, error) {
	if downloadDir == "" {
		return "", errutil.User("INVALID_DOWNLOAD_DIR").Errorf("no download directory is set")
	}
	dir := filepath.Join(downloadDir, s.def.Name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errutil.User("INVALID_DOWNLOAD_DIR").
			With("dir", dir).
			Wrapf(err, "cannot create download directory %s", dir)
	}
	return dir, nil
}

func (s *Server) requireCollection() (string, error) {
	if s.collection == "" {
		return "", errutil.User("NO_COLLECTION").
			With("server", s.def.Name).
			Errorf("No collection selected on server %s, use: resto set collection <name>", s.def.Name)
	}
	return s.collection, nil
}

// basicSource feeds the SSO form fields before the auth service exists.
type basicSource struct {
	creds *auth.Credentials
}

func (b basicSource) BasicCredentials(ctx context.Context) (string, string, error) {
	return b.creds.Basic(ctx)
}

// backend adapts the session to the download orchestrator.
type backend struct {
	s *Server
}

func (b backend) Fetch(ctx context.Context, kind feature.FileKind, url string) (*http.Response, error) {
	return b.s.catalog.Fetch(ctx, kind, url)
}

func (b backend) SignLicense(ctx context.Context, licenseID string) error {
	return b.s.catalog.SignLicense(ctx, licenseID)
}

// Refetch reloads f from the collection it belongs to, which may differ from
// the current one.
func (b backend) Refetch(ctx context.Context, f *feature.Feature) (*feature.Feature, error) {
	name, _ := f.Properties["collection"].(string)
	if name == "" {
		var err error
		if name, err = b.s.requireCollection(); err != nil {
			return nil, err
		}
	}
	b.s.logger.DebugContext(ctx, "refetching feature", "feature", f.Title(), "collection", name)
	return b.s.catalog.FeatureByID(ctx, name, f.Title())
}
