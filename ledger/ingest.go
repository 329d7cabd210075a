package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/statement-ledger/logging"
	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// INGEST DRIVER
// =============================================================================

// TextExtractor turns a document into raw text. It returns ErrNoText (or
// any other error) when nothing usable could be read.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

type FileStatus string

const (
	StatusIngested         FileStatus = "ingested"
	StatusAlreadyProcessed FileStatus = "already_processed"
	StatusNoText           FileStatus = "no_text"
	StatusFailed           FileStatus = "failed"
)

// FileResult describes what happened to one input file.
type FileResult struct {
	Path         string
	Status       FileStatus
	Month        statement.MonthCode // empty when the statement was unattributable
	Installments int
	Warnings     []string
	Err          error
}

// Report summarizes one ingest run.
type Report struct {
	RunID string
	Files []FileResult
}

// Count returns how many files ended with the given status.
func (r Report) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Unattributed lists files that were ingested but had no month code.
func (r Report) Unattributed() []string {
	var paths []string
	for _, f := range r.Files {
		if f.Status == StatusIngested && f.Month == "" {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Ingester processes statement files one at a time, in the order given.
//
// INVARIANTS:
//   - A file already marked processed is never extracted again.
//   - A file whose text cannot be extracted is left unmarked.
//   - Facts and the processed marker of one file are written atomically.
//   - Only one run executes at a time.
type Ingester struct {
	Store     TxStore
	Extractor TextExtractor
	Logger    *slog.Logger

	mu sync.Mutex
}

func NewIngester(store TxStore, extractor TextExtractor, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{Store: store, Extractor: extractor, Logger: logger}
}

// IngestAll ingests every path. Per-file extraction problems are recorded in
// the report and never stop the run; a store failure aborts it.
func (in *Ingester) IngestAll(ctx context.Context, paths []string) (Report, error) {
	if !in.mu.TryLock() {
		return Report{}, ErrIngestInProgress
	}
	defer in.mu.Unlock()

	report := Report{RunID: uuid.NewString()}
	log := in.logger().With(logging.FieldRunID, report.RunID)
	log.Info("ingest started", "files", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := in.ingest(ctx, log, path)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, res)
	}

	log.Info("ingest finished",
		"ingested", report.Count(StatusIngested),
		"already_processed", report.Count(StatusAlreadyProcessed),
		"no_text", report.Count(StatusNoText),
		"failed", report.Count(StatusFailed),
	)
	return report, nil
}

// IngestFile ingests a single path.
func (in *Ingester) IngestFile(ctx context.Context, path string) (FileResult, error) {
	if !in.mu.TryLock() {
		return FileResult{}, ErrIngestInProgress
	}
	defer in.mu.Unlock()

	return in.ingest(ctx, in.logger(), path)
}

func (in *Ingester) ingest(ctx context.Context, log *slog.Logger, path string) (FileResult, error) {
	log = log.With(logging.FieldFile, path)
	res := FileResult{Path: path}

	done, err := in.Store.IsProcessed(ctx, path)
	if err != nil {
		return res, fmt.Errorf("check processed %s: %w", path, err)
	}
	if done {
		log.Info("already processed")
		res.Status = StatusAlreadyProcessed
		return res, nil
	}

	log.Info("processing")
	text, err := in.Extractor.ExtractText(ctx, path)
	if err == nil && text == "" {
		err = ErrNoText
	}
	if err != nil {
		res.Err = &FileError{Path: path, Err: err}
		if errors.Is(err, ErrNoText) {
			res.Status = StatusNoText
			log.Warn("no text extracted, will retry on next run")
		} else {
			res.Status = StatusFailed
			log.Error("text extraction failed, will retry on next run", logging.FieldError, err)
		}
		return res, nil
	}

	facts := statement.Extract(text)
	res.Month = facts.Month
	res.Warnings = facts.Warnings
	for _, w := range facts.Warnings {
		log.Warn(w)
	}

	err = in.Store.WithTx(ctx, func(s Store) error {
		if facts.Attributed() {
			if err := writeFacts(ctx, s, facts); err != nil {
				return err
			}
			res.Installments = len(facts.Installments)
		}
		return s.MarkProcessed(ctx, path)
	})
	if err != nil {
		return res, fmt.Errorf("store facts for %s: %w", path, err)
	}

	if !facts.Attributed() {
		log.Warn("unattributable statement: no month code found, facts discarded")
	} else {
		log.Info("ingested",
			"month", facts.Month,
			"balance_primary", facts.Balance.Primary.String(),
			"balance_secondary", facts.Balance.Secondary.String(),
			"installments", res.Installments,
		)
	}
	res.Status = StatusIngested
	return res, nil
}

func writeFacts(ctx context.Context, s Store, facts statement.Facts) error {
	err := s.UpsertBalance(ctx, BalanceRecord{
		Month:     facts.Month,
		Primary:   facts.Balance.Primary,
		Secondary: facts.Balance.Secondary,
	})
	if err != nil {
		return err
	}

	for _, inst := range facts.Installments {
		err := s.UpsertInstallment(ctx, InstallmentRecord{
			StatementMonth: facts.Month,
			DueMonth:       inst.Due,
			Amount:         inst.Amount,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}
