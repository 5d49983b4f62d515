// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/auth"
	"github.com/holomush/restoclient/internal/collection"
	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/internal/settings"
)

// collectionsConfig holds flags for show collections.
type collectionsConfig struct {
	filter string
	stats  bool
}

// newShowCmd creates the show command and its subcommands.
func newShowCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show settings, servers, collections, features or the account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "settings",
		Short: "Show the persistent settings",
		Args:  cobra.NoArgs,
		RunE:  withApp(g, deps, runShowSettings),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "server [name]",
		Short: "Show the definition of a server (default: the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(g, deps, runShowServer),
	})

	sf := &sessionFlags{}
	coll := &cobra.Command{
		Use:   "collection",
		Short: "Show the current collection",
		Args:  cobra.NoArgs,
		RunE:  withApp(g, deps, runShowCollection),
	}
	sf.register(coll.Flags())
	cmd.AddCommand(coll)

	cfg := &collectionsConfig{}
	sf = &sessionFlags{}
	colls := &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the current server",
		Args:  cobra.NoArgs,
		RunE: withApp(g, deps, func(ctx context.Context, a *app, _ []string) error {
			return runShowCollections(ctx, a, cfg)
		}),
	}
	colls.Flags().StringVar(&cfg.filter, "filter", "", "only list collections matching this glob pattern")
	colls.Flags().BoolVar(&cfg.stats, "stats", false, "print feature counts per facet")
	sf.register(colls.Flags())
	cmd.AddCommand(colls)

	sf = &sessionFlags{}
	feat := &cobra.Command{
		Use:   "feature <id>",
		Short: "Show the metadata of a feature of the current collection",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(g, deps, runShowFeature),
	}
	sf.register(feat.Flags())
	cmd.AddCommand(feat)

	sf = &sessionFlags{}
	account := &cobra.Command{
		Use:   "account",
		Short: "Show the account of the current server",
		Args:  cobra.NoArgs,
		RunE:  withApp(g, deps, runShowAccount),
	}
	sf.register(account.Flags())
	cmd.AddCommand(account)

	return cmd
}

func runShowSettings(_ context.Context, a *app, _ []string) error {
	f, err := a.settings.Values()
	if err != nil {
		return err
	}
	token := ""
	if f.Token != "" {
		token = "(set)"
	}
	rows := [][2]string{
		{settings.KeyServer, f.Server},
		{settings.KeyCollection, f.Collection},
		{settings.KeyUsername, f.Username},
		{settings.KeyToken, token},
		{settings.KeyDownloadDir, f.DownloadDir},
		{settings.KeyRegion, f.Region},
		{settings.KeyVerbosity, a.settings.Verbosity()},
	}

	w := tabwriter.NewWriter(a.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(w, "-------\t-----")
	for _, r := range rows {
		value := r[1]
		if value == "" {
			value = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", r[0], value)
	}
	return w.Flush()
}

func runShowServer(_ context.Context, a *app, args []string) error {
	name := a.settings.Server()
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		return noServer()
	}
	def, err := a.servers.Get(name)
	if err != nil {
		return err
	}
	return writeServer(a.out(), def)
}

func writeServer(out io.Writer, def servers.Server) error {
	origin := "user defined"
	if def.BuiltIn {
		origin = "built-in"
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVER\tSERVICE\tPROTOCOL\tBASE URL")
	_, _ = fmt.Fprintln(w, "------\t-------\t--------\t--------")
	_, _ = fmt.Fprintf(w, "%s (%s)\tresto\t%s\t%s\n", def.Name, origin, def.RestoProtocol, def.RestoURL)
	_, _ = fmt.Fprintf(w, "\tauth\t%s\t%s\n", def.AuthProtocol, def.AuthURL)
	return w.Flush()
}

func runShowCollection(ctx context.Context, a *app, _ []string) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	c, err := srv.CollectionDescription(ctx)
	if err != nil {
		return err
	}
	return c.WriteDetails(a.out())
}

func runShowCollections(ctx context.Context, a *app, cfg *collectionsConfig) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	var set *collection.Set
	if cfg.stats {
		set, err = srv.Describe(ctx)
	} else {
		set, err = srv.Collections(ctx)
	}
	if err != nil {
		return err
	}
	list, err := set.Filter(cfg.filter)
	if err != nil {
		return err
	}
	if err := collection.WriteTable(a.out(), list, srv.Collection()); err != nil {
		return err
	}
	if !cfg.stats {
		return nil
	}
	for _, c := range list {
		if err := c.WriteStatistics(a.out()); err != nil {
			return err
		}
	}
	if set.Synthesis != nil && cfg.filter == "" {
		return set.Synthesis.WriteStatistics(a.out())
	}
	return nil
}

func runShowFeature(ctx context.Context, a *app, args []string) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	f, err := srv.Feature(ctx, args[0])
	if err != nil {
		return err
	}
	return f.WriteTable(a.out())
}

func runShowAccount(ctx context.Context, a *app, _ []string) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	st := srv.State()
	username, token := st.Username, "none"
	if username == "" {
		username = "-"
	}
	if st.Token != "" {
		token = "present"
		if exp, ok := auth.TokenExpiry(st.Token); ok {
			token = "expires " + exp.UTC().Format(time.RFC3339)
			if !exp.After(time.Now()) {
				token = "expired " + exp.UTC().Format(time.RFC3339)
			}
		}
	}

	w := tabwriter.NewWriter(a.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVER\tUSERNAME\tTOKEN")
	_, _ = fmt.Fprintln(w, "------\t--------\t-----")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", srv.Name(), username, token)
	return w.Flush()
}
