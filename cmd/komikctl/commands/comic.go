// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
	"github.com/taibuivan/komikflow/internal/ingest/comicsync"
)

func newComicCommand(flags *globalFlags) *cobra.Command {
	request := comicsync.Request{}

	cmd := &cobra.Command{
		Use:   "comic --url URL --source CODE [--id COMIC_ID]",
		Short: "Scrapes one comic detail page and stores its metadata and chapters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				result, err := application.ComicSync.Run(cmd.Context(), request)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&request.SourceURL, "url", "", "Absolute URL of the comic detail page.")
	cmd.Flags().StringVar(&request.SourceCode, "source", "", "Code of the source the page belongs to.")
	cmd.Flags().StringVar(&request.ComicID, "id", "", "Existing comic to update instead of creating one.")
	return cmd
}
