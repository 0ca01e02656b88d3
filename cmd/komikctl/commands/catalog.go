// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
	"github.com/taibuivan/komikflow/internal/ingest/catalogsync"
)

func newCatalogCommand(flags *globalFlags) *cobra.Command {
	request := catalogsync.Request{}

	cmd := &cobra.Command{
		Use:   "catalog [--source CODE|ALL] [--max-pages N]",
		Short: "Crawls the listing pages of the active sources into the catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				result, err := application.CatalogSync.Run(cmd.Context(), request)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&request.SourceCode, "source", catalogsync.AllSources, "Source code to crawl, or ALL.")
	cmd.Flags().IntVar(&request.MaxPages, "max-pages", 0, "Listing pages per source (0 uses CATALOG_MAX_PAGES).")
	return cmd
}
