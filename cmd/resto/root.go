// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/settings"
)

// globalOptions holds the flags available to all subcommands.
type globalOptions struct {
	configDir   string
	logFormat   string
	verbosity   string
	metricsFile string
	timeout     time.Duration

	// debug is resolved once settings are loaded.
	debug bool
}

// NewRootCmd creates the root command for the resto CLI.
func NewRootCmd(deps *Deps) *cobra.Command {
	cmd, _ := newRootCmd(deps.withDefaults())
	return cmd
}

func newRootCmd(deps *Deps) (*cobra.Command, *globalOptions) {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "resto",
		Short: "resto - search and retrieve products from resto catalogs",
		Long: `resto is a client for resto search-and-retrieval servers. It keeps a
current server, account and collection between runs, searches features with
key:value criteria, and downloads products, quicklooks, thumbnails and annexes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configDir, "config-dir", "", "configuration directory (default: XDG config dir)")
	pf.StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&g.verbosity, "verbosity", "", "verbosity for this run ("+settings.VerbosityNormal+", "+settings.VerbosityDebug+")")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.DurationVar(&g.timeout, "timeout", 0, "abort the command after this duration (0 = no limit)")

	cmd.AddCommand(newSetCmd(g, deps))
	cmd.AddCommand(newUnsetCmd(g, deps))
	cmd.AddCommand(newShowCmd(g, deps))
	cmd.AddCommand(newSearchCmd(g, deps))
	cmd.AddCommand(newDownloadCmd(g, deps))
	cmd.AddCommand(newConfigureServerCmd(g, deps))
	cmd.AddCommand(newSettingsCmd(g, deps))

	return cmd, g
}
