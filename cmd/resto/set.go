// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/settings"
	"github.com/holomush/restoclient/pkg/errutil"
)

// newSetCmd creates the set command and its subcommands.
func newSetCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a persistent setting",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "server <name>",
		Short: "Set the current server",
		Long: `Set the current server. Changing server forgets the account and the
collection of the previous one. When the new server has a single collection
it becomes the current collection.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(g, deps, runSetServer),
	})

	account := &cobra.Command{
		Use:   "account <username>",
		Short: "Set the account used on the current server",
		Long: `Set the account used on the current server. When --password is given the
account is checked by obtaining a token, otherwise the password is asked
when a request first needs it.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(g, deps, runSetAccount),
	}
	account.Flags().StringP("password", "p", "", "password of the account")
	cmd.AddCommand(account)

	cmd.AddCommand(&cobra.Command{
		Use:   "collection <name>",
		Short: "Set the current collection of the current server",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(g, deps, runSetCollection),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "download_dir <dir>",
		Short: "Set the directory receiving downloads",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, deps, func(_ context.Context, a *app, args []string) error {
			return a.settings.SetDownloadDir(args[0])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "region <name>",
		Short: "Set the region used by searches without geometry",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(g, deps, runSetRegion),
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "verbosity <level>",
		Short:     "Set the verbosity level",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Verbosities,
		RunE: withApp(g, deps, func(_ context.Context, a *app, args []string) error {
			return a.settings.SetVerbosity(args[0])
		}),
	})

	return cmd
}

// runSetServer records the server, then selects its only collection.
// Failing to list collections does not undo the server change.
func runSetServer(ctx context.Context, a *app, args []string) error {
	def, err := a.servers.Get(args[0])
	if err != nil {
		return err
	}
	a.settings.SetServer(def.Name)

	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	if srv.Collection() == "" {
		if err := srv.SetCollection(ctx, ""); err != nil {
			errutil.LogWarn(a.logger, "cannot list collections of "+def.Name, err)
		} else {
			a.keepCollection = true
		}
	}
	_, _ = fmt.Fprintf(a.out(), "server: %s\n", def.Name)
	if c := srv.Collection(); c != "" {
		_, _ = fmt.Fprintf(a.out(), "collection: %s\n", c)
	}
	return nil
}

func runSetAccount(ctx context.Context, a *app, args []string) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	a.keepAccount = true

	var password *string
	if a.changed("password") {
		p, _ := a.cmd.Flags().GetString("password")
		password = &p
	}
	username := args[0]
	srv.SetCredentials(&username, password)
	if password == nil {
		return nil
	}
	return srv.Login(ctx)
}

func runSetCollection(ctx context.Context, a *app, args []string) error {
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := srv.SetCollection(ctx, args[0]); err != nil {
		return err
	}
	a.keepCollection = true
	_, _ = fmt.Fprintf(a.out(), "collection: %s\n", srv.Collection())
	return nil
}

func runSetRegion(_ context.Context, a *app, args []string) error {
	name, err := a.regions.Normalize(args[0])
	if err != nil {
		return err
	}
	a.settings.SetRegion(name)
	return nil
}
