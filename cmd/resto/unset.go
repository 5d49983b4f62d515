// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/settings"
)

// unsetKeys maps unset subcommands to the settings they remove.
var unsetKeys = []struct {
	name  string
	short string
	keys  []string
}{
	{"server", "Forget the current server, its account and collection", []string{settings.KeyServer}},
	{"account", "Forget the account of the current server", []string{settings.KeyUsername, settings.KeyToken}},
	{"collection", "Forget the current collection", []string{settings.KeyCollection}},
	{"download_dir", "Use the default download directory", []string{settings.KeyDownloadDir}},
	{"region", "Stop restricting searches to a region", []string{settings.KeyRegion}},
	{"verbosity", "Restore the normal verbosity", []string{settings.KeyVerbosity}},
}

// newUnsetCmd creates the unset command and its subcommands.
func newUnsetCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset",
		Short: "Remove a persistent setting",
	}
	for _, u := range unsetKeys {
		keys := u.keys
		cmd.AddCommand(&cobra.Command{
			Use:   u.name,
			Short: u.short,
			Args:  cobra.NoArgs,
			RunE: withApp(g, deps, func(_ context.Context, a *app, _ []string) error {
				for _, k := range keys {
					a.settings.Unset(k)
				}
				return nil
			}),
		})
	}
	return cmd
}
