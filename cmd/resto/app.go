// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/holomush/restoclient/internal/download"
	"github.com/holomush/restoclient/internal/logging"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/internal/region"
	"github.com/holomush/restoclient/internal/server"
	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/internal/settings"
	"github.com/holomush/restoclient/internal/xdg"
	"github.com/holomush/restoclient/pkg/errutil"
)

// flagKeys maps flags to the settings they override for one run.
var flagKeys = map[string]string{
	"server":       settings.KeyServer,
	"collection":   settings.KeyCollection,
	"username":     settings.KeyUsername,
	"download-dir": settings.KeyDownloadDir,
	"verbosity":    settings.KeyVerbosity,
}

// sessionFlags select the server session of one command.
type sessionFlags struct {
	server     string
	collection string
	username   string
	password   string
}

func (f *sessionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.server, "server", "", "server to use for this command instead of the current one")
	fs.StringVar(&f.collection, "collection", "", "collection to use for this command instead of the current one")
	fs.StringVarP(&f.username, "username", "u", "", "account to use on the server")
	fs.StringVarP(&f.password, "password", "p", "", "password of the account (prompted when needed)")
}

// downloadFlags tune the download orchestrator.
type downloadFlags struct {
	dir             string
	stagingInterval time.Duration
	stagingRetries  uint64
}

func (f *downloadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.dir, "download-dir", "", "directory receiving files for this command")
	fs.DurationVar(&f.stagingInterval, "staging-interval", download.DefaultStagingInterval,
		"wait between attempts while a product is staged from tape")
	fs.Uint64Var(&f.stagingRetries, "staging-retries", 0, "maximum staging waits (0 = wait until interrupted)")
}

// app is the state shared by the commands of one run.
type app struct {
	deps      *Deps
	g         *globalOptions
	cmd       *cobra.Command
	configDir string
	settings  *settings.Store
	servers   *servers.Database
	regions   *region.Store
	logger    *slog.Logger
	recorder  *observability.Recorder
	cancel    context.CancelFunc

	srv      *server.Server
	download downloadFlags
	// keepCollection and keepAccount persist a collection or an account set
	// through flags of this run.
	keepCollection bool
	keepAccount    bool
}

// openApp loads settings and the servers database and sets up logging. The
// caller must defer close.
func openApp(cmd *cobra.Command, g *globalOptions, deps *Deps) (*app, context.Context, error) {
	configDir := g.configDir
	if configDir == "" {
		dir, err := deps.ConfigDirGetter()
		if err != nil {
			return nil, nil, err
		}
		configDir = dir
	}

	store, err := settings.Load(filepath.Join(configDir, xdg.SettingsFile))
	if err != nil {
		return nil, nil, err
	}
	if err := store.BindFlags(cmd.Flags(), flagKeys); err != nil {
		return nil, nil, err
	}
	g.debug = store.Verbosity() == settings.VerbosityDebug

	logger := logging.Setup("resto", version, g.logFormat, logging.LevelForVerbosity(store.Verbosity()), deps.Stderr)
	logger, _ = logging.WithRunID(logger)

	db, err := servers.Load(filepath.Join(configDir, xdg.ServersFile))
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cancel := func() {}
	if g.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
	}

	logger.DebugContext(ctx, "command started", "command", cmd.CommandPath(), "config_dir", configDir)
	return &app{
		deps:      deps,
		g:         g,
		cmd:       cmd,
		configDir: configDir,
		settings:  store,
		servers:   db,
		regions:   region.NewStore(filepath.Join(configDir, xdg.Zones)),
		logger:    logger,
		recorder:  observability.NewRecorder(),
		cancel:    cancel,
	}, ctx, nil
}

// close persists the settings and the metrics. It runs on every exit path
// and reports its own failure through errp.
func (a *app) close(errp *error) {
	defer a.cancel()
	a.saveSession()
	settings.Persist(a.settings, errp)
	if a.g.metricsFile != "" {
		if err := a.recorder.WriteTextfile(a.g.metricsFile); err != nil {
			errutil.LogWarn(a.logger, "cannot write metrics", err)
		}
	}
}

func (a *app) changed(flag string) bool {
	return a.cmd.Flags().Changed(flag)
}

// session opens the session with the server selected by flags or settings.
func (a *app) session(ctx context.Context) (*server.Server, error) {
	if a.srv != nil {
		return a.srv, nil
	}
	name := a.settings.Server()
	if name == "" {
		return nil, noServer()
	}
	def, err := a.servers.Get(name)
	if err != nil {
		return nil, err
	}

	state := server.State{Username: a.settings.Username(), Collection: a.settings.Collection()}
	if def.Name == servers.CanonicalName(a.settings.Persisted(settings.KeyServer)) {
		if state.Username == a.settings.Persisted(settings.KeyUsername) {
			state.Token = a.settings.Token()
		}
	} else {
		if !a.changed("username") {
			state.Username = ""
		}
		if !a.changed("collection") {
			state.Collection = ""
		}
	}

	srv, err := server.New(def, state, server.Options{
		Client:          a.deps.HTTPClient,
		Prompter:        a.deps.Prompter,
		Logger:          a.logger,
		Metrics:         a.recorder.Metrics(),
		UserAgent:       "resto-client/" + version,
		Regions:         a.regions,
		StagingInterval: a.download.stagingInterval,
		StagingRetries:  a.download.stagingRetries,
		Progress:        newTextProgress(a.deps.Stderr),
	})
	if err != nil {
		return nil, err
	}
	if a.changed("password") {
		password, _ := a.cmd.Flags().GetString("password")
		srv.SetCredentials(nil, &password)
	}
	if a.changed("collection") {
		if err := srv.SetCollection(ctx, state.Collection); err != nil {
			return nil, err
		}
	}
	a.srv = srv
	return srv, nil
}

// saveSession records the state of the current server session. Sessions
// with another server than the persisted one are not recorded.
func (a *app) saveSession() {
	if a.srv == nil {
		return
	}
	if a.srv.Name() != servers.CanonicalName(a.settings.Persisted(settings.KeyServer)) {
		return
	}
	st := a.srv.State()
	username, token := a.settings.Persisted(settings.KeyUsername), a.settings.Token()
	if a.keepAccount || !a.changed("username") {
		username, token = st.Username, st.Token
	}
	collection := a.settings.Persisted(settings.KeyCollection)
	if a.keepCollection {
		collection = st.Collection
	}
	a.settings.SetSession(username, token, collection)
}

// downloadDir returns the directory receiving files, creating the default
// one when nothing is set.
func (a *app) downloadDir() (string, error) {
	if dir := a.settings.DownloadDir(); dir != "" {
		return dir, nil
	}
	dir, err := a.deps.DownloadDirGetter()
	if err != nil {
		return "", err
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return "", errutil.User("INVALID_DOWNLOAD_DIR").With("dir", dir).Wrapf(err, "cannot create %s", dir)
	}
	return dir, nil
}

// runFunc is the body of a command that needs settings.
type runFunc func(ctx context.Context, a *app, args []string) error

// withApp adapts fn to cobra, opening the app before and closing it after.
func withApp(g *globalOptions, deps *Deps, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, ctx, err := openApp(cmd, g, deps)
		if err != nil {
			return err
		}
		defer a.close(&err)
		return fn(ctx, a, args)
	}
}

func (a *app) out() io.Writer {
	return a.cmd.OutOrStdout()
}

func noServer() error {
	return errutil.User("NO_SERVER").Errorf("No server is set, use: resto set server <name>")
}
