// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/servers"
	"github.com/holomush/restoclient/internal/settings"
	"github.com/holomush/restoclient/pkg/errutil"
)

// newConfigureServerCmd creates the configure_server command.
func newConfigureServerCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure_server",
		Short: "Manage the servers database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name> <resto_url> <resto_protocol> [<auth_url> <auth_protocol>]",
		Short: "Define a new server",
		Long: `Define a new server. Without an authentication service the resto URL is
used with the default authentication protocol.

Resto protocols: ` + strings.Join(dialect.RestoNames(), ", ") + `
Auth protocols: ` + strings.Join(dialect.AuthNames(), ", "),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 && len(args) != 5 {
				return fmt.Errorf("accepts 3 or 5 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: withApp(g, deps, runCreateServer),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user-defined server",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(g, deps, runDeleteServer),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the known servers",
		Args:  cobra.NoArgs,
		RunE:  withApp(g, deps, runListServers),
	})

	return cmd
}

func runCreateServer(_ context.Context, a *app, args []string) error {
	def := servers.Server{
		Name:          args[0],
		RestoURL:      args[1],
		RestoProtocol: args[2],
		AuthURL:       args[1],
		AuthProtocol:  dialect.AuthDefault,
	}
	if len(args) == 5 {
		def.AuthURL = args[3]
		def.AuthProtocol = args[4]
	}
	if a.servers.Exists(def.Name) {
		return errorServerExists(def.Name)
	}
	if err := a.servers.Add(def); err != nil {
		return err
	}
	return a.servers.Save()
}

// runDeleteServer removes a server, unsetting it when it is the current one.
func runDeleteServer(_ context.Context, a *app, args []string) error {
	if err := a.servers.Remove(args[0]); err != nil {
		return err
	}
	if servers.CanonicalName(a.settings.Persisted(settings.KeyServer)) == servers.CanonicalName(args[0]) {
		a.settings.Unset(settings.KeyServer)
	}
	return a.servers.Save()
}

func runListServers(_ context.Context, a *app, _ []string) error {
	current := servers.CanonicalName(a.settings.Server())
	w := tabwriter.NewWriter(a.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVER\tRESTO PROTOCOL\tAUTH PROTOCOL\tRESTO URL")
	_, _ = fmt.Fprintln(w, "------\t--------------\t-------------\t---------")
	for _, s := range a.servers.All() {
		name := s.Name
		if name == current {
			name += " (*)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.RestoProtocol, s.AuthProtocol, s.RestoURL)
	}
	return w.Flush()
}

func errorServerExists(name string) error {
	return errutil.User("SERVER_EXISTS").
		With("server", servers.CanonicalName(name)).
		Errorf("Server %s already exists, delete it first", servers.CanonicalName(name))
}
