// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package commands

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
)

// Building the application migrates the store, so this command only reports.
func newMigrateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies pending schema migrations to the record store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(application *app.App) error {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"status": "migrated",
					"driver": application.Config.StoreDriver,
				})
			})
		},
	}
}
