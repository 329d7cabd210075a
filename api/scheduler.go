/*
scheduler.go - Scheduled ingest passes

PURPOSE:
  Runs an ingest pass over the invoices folder on a cron schedule, so new
  statements dropped into the folder show up without a manual POST.

DESIGN:
  - Uses robfig/cron with the standard five-field syntax (and @daily etc.)
  - Passes never overlap: the Ingester holds a run lock, and a tick that
    finds a pass still running is logged and skipped
  - Panics inside a pass are recovered by the cron chain

USAGE:
  scheduler, err := NewIngestScheduler(handler, "0 9 * * *", logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunIngest and the manual POST /api/ingest
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/logging"
)

// IngestScheduler triggers Handler.RunIngest on a cron schedule.
type IngestScheduler struct {
	Handler *Handler
	Spec    string
	Logger  *slog.Logger

	cron *cron.Cron
}

// NewIngestScheduler validates spec and registers the job. Start it with Start.
func NewIngestScheduler(h *Handler, spec string, logger *slog.Logger) (*IngestScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &IngestScheduler{
		Handler: h,
		Spec:    spec,
		Logger:  logger,
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return nil, fmt.Errorf("invalid ingest schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *IngestScheduler) Start() {
	s.cron.Start()
	s.Logger.Info("scheduler started", "schedule", s.Spec)
}

// Stop stops the schedule and waits for a running pass to finish.
func (s *IngestScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow runs one pass immediately.
func (s *IngestScheduler) RunNow() {
	rep, err := s.Handler.RunIngest(context.Background())
	switch {
	case errors.Is(err, ledger.ErrIngestInProgress):
		s.Logger.Info("ingest pass still running, skipping tick")
	case err != nil:
		s.Logger.Error("scheduled ingest failed", logging.FieldError, err)
	default:
		s.Logger.Info("scheduled ingest finished",
			logging.FieldRunID, rep.RunID,
			"ingested", rep.Count(ledger.StatusIngested),
			"failed", rep.Count(ledger.StatusFailed)+rep.Count(ledger.StatusNoText),
		)
	}
}
