// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/restoclient/internal/feature"
)

// downloadConfig holds flags for the download command.
type downloadConfig struct {
	session   sessionFlags
	downloads downloadFlags
}

// newDownloadCmd creates the download command.
func newDownloadCmd(g *globalOptions, deps *Deps) *cobra.Command {
	cfg := &downloadConfig{}

	cmd := &cobra.Command{
		Use:   "download <product|quicklook|thumbnail|annexes> <id> [id ...]",
		Short: "Download files of features of the current collection",
		Long: `Download the product, quicklook, thumbnail or annexes of features of the
current collection into <download_dir>/<server>. Licenses that must be signed
are signed on the way. Products staged from tape are waited for, checking
again every --staging-interval.`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{string(feature.Product), string(feature.Quicklook), string(feature.Thumbnail), string(feature.Annexes)},
		RunE: withApp(g, deps, func(ctx context.Context, a *app, args []string) error {
			return runDownload(ctx, a, cfg, args)
		}),
	}
	cfg.session.register(cmd.Flags())
	cfg.downloads.register(cmd.Flags())

	return cmd
}

func runDownload(ctx context.Context, a *app, cfg *downloadConfig, args []string) error {
	kind, err := feature.ParseFileKind(args[0])
	if err != nil {
		return err
	}
	a.download = cfg.downloads
	srv, err := a.session(ctx)
	if err != nil {
		return err
	}
	dir, err := a.downloadDir()
	if err != nil {
		return err
	}
	for _, id := range args[1:] {
		path, err := srv.DownloadByID(ctx, id, kind, dir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(a.out(), path)
	}
	return nil
}
