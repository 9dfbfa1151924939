// Command processor parses a CSV feed of transactions, applies them to the
// in-memory ledger and writes the final client balances as CSV on stdout.
// Logs go to stderr so the snapshot stays clean. Bad rows are skipped;
// only an unreadable input aborts the run.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledgerline/ledgerline/internal/engine"
	"github.com/ledgerline/ledgerline/internal/logging"
	"github.com/ledgerline/ledgerline/internal/notification"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}

	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "warn"
	}
	logger := logging.New(level, os.Stderr)

	processor := engine.New(logger, notification.NewLoggerNotifier(logger))

	report, err := processor.ProcessFile(context.Background(), os.Args[1])
	if err != nil {
		logger.Error("process feed", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	if err := processor.WriteSnapshot(os.Stdout); err != nil {
		logger.Error("write snapshot", "error", err)
		os.Exit(1)
	}

	logger.Info("run complete", "processed", report.Processed, "skipped", report.Skipped)
}
