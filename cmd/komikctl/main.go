// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command komikctl runs the ingest operations from the shell and prints
// their results as JSON.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/komikflow/cmd/komikctl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
