/*
main.go - HTTP server entry point

PURPOSE:
  Serves the statement ledger over HTTP and, when a schedule is configured,
  ingests new statements periodically.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize SQLite store
  3. Create the ingester and API handler
  4. Start the ingest scheduler (if INGEST_SCHEDULE is set)
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (PORT)
  -db        SQLite database path (LEDGER_DB_PATH)
             Use ":memory:" for an in-memory database
  -dir       Invoices folder (INVOICES_DIR)
  -schedule  Cron spec for scheduled ingest (INGEST_SCHEDULE)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler and wait for a running pass
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/statement-ledger/api"
	"github.com/warp/statement-ledger/config"
	"github.com/warp/statement-ledger/extract"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/logging"
	"github.com/warp/statement-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Flags
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.InvoicesDir, "dir", cfg.InvoicesDir, "folder with statement files")
	flag.StringVar(&cfg.IngestSchedule, "schedule", cfg.IngestSchedule, "cron spec for scheduled ingest")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Logging(logging.ComponentApp))
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logging.WithComponent(logger, logging.ComponentStorage).Error("failed to initialize database", logging.FieldError, err)
		os.Exit(1)
	}
	defer store.Close()

	ingestLog := logging.WithComponent(logger, logging.ComponentIngest)
	ingester := ledger.NewIngester(store, extract.ByExtension(ingestLog), ingestLog)
	handler := api.NewHandler(store, ingester, cfg.InvoicesDir, cfg.InvoicesExt,
		logging.WithComponent(logger, logging.ComponentHTTP))

	var scheduler *api.IngestScheduler
	if cfg.IngestSchedule != "" {
		scheduler, err = api.NewIngestScheduler(handler, cfg.IngestSchedule,
			logging.WithComponent(logger, logging.ComponentScheduler))
		if err != nil {
			logger.Error("failed to configure scheduler", logging.FieldError, err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // POST /api/ingest runs a full pass
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", "http://localhost:"+cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", logging.FieldError, err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", logging.FieldError, err)
	}

	logger.Info("server stopped")
}
