// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
)

func newSourcesCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Lists and toggles the configured comic sites.",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Prints every configured source.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				sources, err := application.Admin.ListSources(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), sources)
			})
		},
	}

	var active bool
	setActive := &cobra.Command{
		Use:   "set-active CODE [--active=false]",
		Short: "Enables or disables scraping for one source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				source, err := application.Admin.SetSourceActive(cmd.Context(), args[0], active)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), source)
			})
		},
	}
	setActive.Flags().BoolVar(&active, "active", true, "New activation state.")

	cmd.AddCommand(list, setActive)
	return cmd
}
