/*
Package ledger persists statement facts by month and rebuilds time series from them.

PURPOSE:
  The ledger is the durable record of what every ingested statement said.
  It holds three kinds of record:
  - BalanceRecord:      one per statement month (last write wins)
  - InstallmentRecord:  one per (statement month, due month) pair
  - ProcessedFile:      one per ingested file identifier

UPSERT CONTRACT:
  Every write is insert-or-overwrite of the whole record. Writing the same
  record twice leaves the store unchanged. No record is ever deleted.

DEDUPLICATION:
  Files are deduplicated by identifier (their path), not content. Copying a
  statement under a new name ingests it again; because balances and
  installments are keyed by month, the second ingest overwrites rather than
  duplicates.

IMPLEMENTATIONS:
  - store/sqlite: durable SQLite store
  - ledger/store: in-memory store for tests and dry runs

SEE ALSO:
  - ingest.go: the ingest driver writing through Store
  - series.go: chronological reconstruction reading from Store
*/
package ledger

import (
	"context"
	"time"

	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// RECORDS
// =============================================================================

// BalanceRecord is the current balance reported by the statement of Month.
// Either amount may be not found and is then persisted as NULL.
type BalanceRecord struct {
	Month     statement.MonthCode
	Primary   statement.Money
	Secondary statement.Money
}

// InstallmentRecord is one future amount listed by the statement of
// StatementMonth. Each statement keeps its own schedule; overlapping due
// months from different statements are never merged.
type InstallmentRecord struct {
	StatementMonth statement.MonthCode
	DueMonth       statement.MonthCode
	Amount         statement.Money
}

// ProcessedFile marks a file identifier as ingested.
type ProcessedFile struct {
	ID          string
	ProcessedAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence contract for the ledger.
type Store interface {
	// UpsertBalance inserts the record or overwrites every field of the
	// existing record for the same month.
	UpsertBalance(ctx context.Context, rec BalanceRecord) error

	// UpsertInstallment inserts or overwrites the amount for the
	// (statement month, due month) pair.
	UpsertInstallment(ctx context.Context, rec InstallmentRecord) error

	// IsProcessed reports whether the file identifier was already ingested.
	IsProcessed(ctx context.Context, fileID string) (bool, error)

	// MarkProcessed records the file identifier. Marking twice is a no-op.
	MarkProcessed(ctx context.Context, fileID string) error

	// Balances returns every balance record, in no particular order.
	Balances(ctx context.Context) ([]BalanceRecord, error)

	// Installments returns every installment record, in no particular order.
	Installments(ctx context.Context) ([]InstallmentRecord, error)

	// ProcessedFiles returns every processed marker, in no particular order.
	ProcessedFiles(ctx context.Context) ([]ProcessedFile, error)
}

// TxStore is a Store that can group writes atomically.
type TxStore interface {
	Store

	// WithTx runs fn against a transactional view of the store. If fn
	// returns an error nothing it wrote is kept.
	WithTx(ctx context.Context, fn func(Store) error) error
}
