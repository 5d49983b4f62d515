// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/settings"
)

// newSettingsCmd creates the settings command.
func newSettingsCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect the settings file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := settings.GenerateSchema()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the path of the settings file",
		Args:  cobra.NoArgs,
		RunE: withApp(g, deps, func(_ context.Context, a *app, _ []string) error {
			_, _ = fmt.Fprintln(a.out(), a.settings.Path())
			return nil
		}),
	})

	return cmd
}
