// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package commands holds the komikctl command tree.

Every command builds the same application as the HTTP server, runs one
operation and writes a single JSON document to stdout. Logs go to stderr.
Failures are written as the error envelope the API uses and make the
process exit with status 1.
*/
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/komikflow/internal/app"
	"github.com/taibuivan/komikflow/internal/ingest"
	"github.com/taibuivan/komikflow/internal/platform/apperr"
	"github.com/taibuivan/komikflow/internal/platform/config"
	"github.com/taibuivan/komikflow/internal/platform/constants"
)

// globalFlags override the environment for one invocation.
type globalFlags struct {
	driver      string
	databaseURL string
	debug       bool
}

// overrides maps the flags that were set onto their environment keys.
func (flags *globalFlags) overrides() map[string]string {
	values := map[string]string{}
	if flags.driver != "" {
		values["STORE_DRIVER"] = flags.driver
	}
	if flags.databaseURL != "" {
		values["DATABASE_URL"] = flags.databaseURL
	}
	if flags.debug {
		values["DEBUG"] = "true"
	}
	return values
}

// NewRootCommand assembles the komikctl command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "komikctl",
		Short:         "komikctl runs Komikflow catalog, comic and page scrapes from the shell.",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "Record store driver (postgres or sqlite). Overrides STORE_DRIVER.")
	root.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "", "Postgres DSN or SQLite path. Overrides DATABASE_URL.")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging on stderr.")

	root.AddCommand(
		newCatalogCommand(flags),
		newComicCommand(flags),
		newPagesCommand(flags),
		newMigrateCommand(flags),
		newSourcesCommand(flags),
	)
	return root
}

// ExecuteContext runs komikctl with os.Args. Errors are already printed.
func ExecuteContext(ctx context.Context) error {
	root := NewRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		writeError(root.OutOrStdout(), err)
	}
	return err
}

// # Helpers

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, run func(application *app.App) error) error {
	cfg, err := config.LoadWith(flags.overrides())
	if err != nil {
		return err
	}

	logger := app.NewLogger(cmd.ErrOrStderr(), cfg.Debug)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return run(application)
}

func writeJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// writeError prints err in the API error envelope.
func writeError(writer io.Writer, err error) {
	classified := ingest.Classify(err)

	envelope := apperr.AppError{Code: "COMMAND_ERROR", Message: classified.Error()}
	var appErr *apperr.AppError
	if errors.As(classified, &appErr) {
		envelope = *appErr
	}

	// A shell user gets the cause that the API keeps in its logs.
	if envelope.Code == "INTERNAL_ERROR" && envelope.Cause != nil {
		envelope.Message = ingest.Message(classified)
	}
	_ = writeJSON(writer, envelope)
}
