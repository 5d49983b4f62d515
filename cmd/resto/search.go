// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/criteria"
	"github.com/holomush/restoclient/internal/feature"
)

// searchConfig holds flags for the search command.
type searchConfig struct {
	jsonOutput   bool
	download     string
	listCriteria bool
	session      sessionFlags
	downloads    downloadFlags
}

// newSearchCmd creates the search command.
func newSearchCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cfg := &searchConfig{}

	cmd := &cobra.Command{
		Use:   "search [key:value ...]",
		Short: "Search features in the current collection",
		Long: `Search features in the current collection. Criteria are written key:value,
a key given several times is a list. Without a region criterion the region
setting restricts the search. Use --list-criteria to see the keys the server
accepts.`,
		Example: `  resto search platform:S2A startDate:2024-01-01 cloudCover:[0,20[
  resto search region:toulouse --download quicklook`,
		RunE: withApp(g, deps, func(ctx context.Context, a *app, args []string) error {
			return runSearch(ctx, a, cfg, args)
		}),
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "print the raw response")
	cmd.Flags().StringVar(&cfg.download, "download", "",
		"download this file kind of every feature found (product, quicklook, thumbnail, annexes)")
	cmd.Flags().BoolVar(&cfg.listCriteria, "list-criteria", false, "list the criteria of the current server and exit")
	cfg.session.register(cmd.Flags())
	cfg.downloads.register(cmd.Flags())

	return cmd
}

func runSearch(ctx context.Context, a *app, cfg *searchConfig, args []string) error {
	var kind feature.FileKind
	if cfg.download != "" {
		k, err := feature.ParseFileKind(cfg.download)
		if err != nil {
			return err
		}
		kind = k
	}

	a.download = cfg.downloads
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	if cfg.listCriteria {
		return writeCriteria(a, srv.Protocol())
	}

	crit, err := srv.ParseCriteria(args)
	if err != nil {
		return err
	}
	if region := a.settings.Region(); region != "" && !hasCriterion(args, "region") {
		if err := crit.Set("region", region); err != nil {
			return err
		}
	}

	a.logger.DebugContext(ctx, "searching", "collection", srv.Collection(), "criteria", crit.Keys())
	result, raw, err := srv.Search(ctx, crit)
	if err != nil {
		return err
	}

	if cfg.jsonOutput {
		_, _ = fmt.Fprintln(a.out(), string(raw))
	} else {
		total := len(result.Features)
		if result.Properties.TotalResults != nil {
			total = *result.Properties.TotalResults
		}
		_, _ = fmt.Fprintf(a.out(), "%d results shown on a total of %d results\n", len(result.Features), total)
		for _, id := range result.IDs() {
			_, _ = fmt.Fprintln(a.out(), id)
		}
	}

	if cfg.download == "" || len(result.Features) == 0 {
		return nil
	}
	dir, err := a.downloadDir()
	if err != nil {
		return err
	}
	for _, f := range result.Features {
		path, err := srv.Download(ctx, f, kind, dir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(a.out(), path)
	}
	return nil
}

// hasCriterion reports whether args carry key, ignoring case.
func hasCriterion(args []string, key string) bool {
	for _, arg := range args {
		k, _, _ := strings.Cut(arg, ":")
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return true
		}
	}
	return false
}

func writeCriteria(a *app, protocol string) error {
	w := tabwriter.NewWriter(a.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CRITERION\tTYPE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "---------\t----\t-----------")
	for _, d := range criteria.Definitions(protocol) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Key, d.Type, d.Help)
	}
	return w.Flush()
}
