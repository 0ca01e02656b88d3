// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
)

func newPagesCommand(flags *globalFlags) *cobra.Command {
	var chapterID string

	cmd := &cobra.Command{
		Use:   "pages --chapter CHAPTER_ID",
		Short: "Prints the page images of a chapter, scraping them when the cache is stale.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				result, err := application.PageCache.GetPages(cmd.Context(), chapterID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&chapterID, "chapter", "", "Chapter ID.")
	return cmd
}
