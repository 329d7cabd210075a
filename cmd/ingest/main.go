/*
main.go - One-shot ingest pipeline

PURPOSE:
  Ingests every new statement in the invoices folder, prints the ledger as
  CSV to stdout and writes the chart.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Open the SQLite ledger
  3. Find statement files and ingest them in order (a missing folder
     counts as empty)
  4. Dump the ledger to stdout
  5. Reconstruct the series and render the chart

COMMAND-LINE FLAGS:
  -db       SQLite database path (LEDGER_DB_PATH)
  -dir      Invoices folder (INVOICES_DIR)
  -ext      Statement file extension (INVOICES_EXT)
  -out      Chart output directory (GRAPHICS_DIR)
  -no-dump  Skip the CSV dump

EXIT STATUS:
  Non-zero when configuration, storage or chart rendering fails. Files that
  could not be read are reported in the log and retried on the next run.

SEE ALSO:
  - cmd/server/main.go: long-running variant with HTTP API
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/warp/statement-ledger/config"
	"github.com/warp/statement-ledger/extract"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/logging"
	"github.com/warp/statement-ledger/report"
	"github.com/warp/statement-ledger/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ingest:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	flags := flag.NewFlagSet("ingest", flag.ContinueOnError)
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flags.StringVar(&cfg.InvoicesDir, "dir", cfg.InvoicesDir, "folder with statement files")
	flags.StringVar(&cfg.InvoicesExt, "ext", cfg.InvoicesExt, "statement file extension")
	flags.StringVar(&cfg.GraphicsDir, "out", cfg.GraphicsDir, "chart output directory")
	noDump := flags.Bool("no-dump", false, "do not print the ledger as CSV")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging(logging.ComponentIngest))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// A missing folder is an empty one: the ledger is still dumped and charted.
	paths, err := extract.FindFiles(cfg.InvoicesDir, cfg.InvoicesExt)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("invoices folder not found, nothing to ingest", "dir", cfg.InvoicesDir)
	case err != nil:
		return err
	}

	ingester := ledger.NewIngester(store, extract.ByExtension(logger), logger)
	rep, err := ingester.IngestAll(ctx, paths)
	if err != nil {
		return fmt.Errorf("ingest aborted: %w", err)
	}
	for _, path := range rep.Unattributed() {
		logger.Warn("statement without month code", logging.FieldFile, path)
	}

	if !*noDump {
		if err := report.DumpLedger(ctx, store, stdout); err != nil {
			return fmt.Errorf("failed to dump ledger: %w", err)
		}
	}

	series, err := ledger.LoadSeries(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to reconstruct series: %w", err)
	}

	chartPath := filepath.Join(cfg.GraphicsDir, cfg.ChartFile)
	if err := report.WriteChartFile(chartPath, series); err != nil {
		return err
	}
	logging.WithComponent(logger, logging.ComponentReport).Info("chart written", "path", chartPath)
	return nil
}
