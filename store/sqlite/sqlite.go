/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Durable home of the statement ledger. One database file holds the three
  record kinds; the schema is created on New() if it does not exist.

KEY TABLES:
  balances:        month PRIMARY KEY, primary/secondary balance (nullable)
  installments:    (statement_month, due_month) PRIMARY KEY, amount (nullable)
  processed_files: file_id PRIMARY KEY, processed_at

AMOUNTS:
  Amounts are stored as decimal TEXT, never REAL, so a value read back is
  exactly the value written. "Not found" is NULL.

UPSERTS:
  Every write is a single INSERT ... ON CONFLICT DO UPDATE statement, so a
  reader never sees a half-written record and repeating a write changes
  nothing.

CONNECTIONS:
  database/sql checks a connection out of the pool for each call and hands
  it back when the call (or its rows/transaction) completes, so every
  operation scopes its own connection and releases it on failure too.
  ":memory:" databases are pinned to one connection since each new
  connection would otherwise see an empty database.

USAGE:
  store, err := sqlite.New("invoices.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ingester := ledger.NewIngester(store, extract.ByExtension(), logger)

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/statement-ledger/ledger"
)

var _ ledger.TxStore = (*Store)(nil)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	q  querier
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, q: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the tables if they are missing. There is no versioning.
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS balances (
		month             TEXT PRIMARY KEY,
		primary_balance   TEXT,
		secondary_balance TEXT
	);

	CREATE TABLE IF NOT EXISTS installments (
		statement_month TEXT NOT NULL,
		due_month       TEXT NOT NULL,
		amount          TEXT,
		PRIMARY KEY (statement_month, due_month)
	);

	CREATE TABLE IF NOT EXISTS processed_files (
		file_id      TEXT PRIMARY KEY,
		processed_at TEXT NOT NULL
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// UpsertBalance inserts or overwrites the balance for rec.Month.
func (s *Store) UpsertBalance(ctx context.Context, rec ledger.BalanceRecord) error {
	query := `
		INSERT INTO balances (month, primary_balance, secondary_balance)
		VALUES (?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			primary_balance = excluded.primary_balance,
			secondary_balance = excluded.secondary_balance
	`

	_, err := s.q.ExecContext(ctx, query, string(rec.Month), rec.Primary, rec.Secondary)
	if err != nil {
		return fmt.Errorf("failed to upsert balance %s: %w", rec.Month, err)
	}
	return nil
}

// UpsertInstallment inserts or overwrites one installment amount.
func (s *Store) UpsertInstallment(ctx context.Context, rec ledger.InstallmentRecord) error {
	query := `
		INSERT INTO installments (statement_month, due_month, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(statement_month, due_month) DO UPDATE SET
			amount = excluded.amount
	`

	_, err := s.q.ExecContext(ctx, query, string(rec.StatementMonth), string(rec.DueMonth), rec.Amount)
	if err != nil {
		return fmt.Errorf("failed to upsert installment %s/%s: %w", rec.StatementMonth, rec.DueMonth, err)
	}
	return nil
}

// MarkProcessed records fileID. The first processed_at is kept.
func (s *Store) MarkProcessed(ctx context.Context, fileID string) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO processed_files (file_id, processed_at) VALUES (?, ?) ON CONFLICT(file_id) DO NOTHING",
		fileID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to mark %s processed: %w", fileID, err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// IsProcessed checks whether fileID was already ingested.
func (s *Store) IsProcessed(ctx context.Context, fileID string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM processed_files WHERE file_id = ?",
		fileID,
	).Scan(&count)

	return count > 0, err
}

// Balances returns every balance row.
func (s *Store) Balances(ctx context.Context) ([]ledger.BalanceRecord, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT month, primary_balance, secondary_balance FROM balances",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var out []ledger.BalanceRecord
	for rows.Next() {
		var b ledger.BalanceRecord
		if err := rows.Scan(&b.Month, &b.Primary, &b.Secondary); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Installments returns every installment row.
func (s *Store) Installments(ctx context.Context) ([]ledger.InstallmentRecord, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT statement_month, due_month, amount FROM installments",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var out []ledger.InstallmentRecord
	for rows.Next() {
		var i ledger.InstallmentRecord
		if err := rows.Scan(&i.StatementMonth, &i.DueMonth, &i.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// ProcessedFiles returns every processed marker, oldest first.
func (s *Store) ProcessedFiles(ctx context.Context) ([]ledger.ProcessedFile, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT file_id, processed_at FROM processed_files ORDER BY processed_at, file_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed files: %w", err)
	}
	defer rows.Close()

	var out []ledger.ProcessedFile
	for rows.Next() {
		var (
			f  ledger.ProcessedFile
			at string
		)
		if err := rows.Scan(&f.ID, &at); err != nil {
			return nil, fmt.Errorf("failed to scan processed file: %w", err)
		}
		f.ProcessedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, f)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Store{db: s.db, q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}
