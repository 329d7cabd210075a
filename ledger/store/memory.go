// Package store provides in-memory ledger.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

var _ ledger.TxStore = (*Memory)(nil)

type Memory struct {
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

type installmentKey struct {
	Statement statement.MonthCode
	Due       statement.MonthCode
}

type state struct {
	balances     map[statement.MonthCode]ledger.BalanceRecord
	installments map[installmentKey]ledger.InstallmentRecord
	processed    map[string]time.Time
}

func newState() state {
	return state{
		balances:     make(map[statement.MonthCode]ledger.BalanceRecord),
		installments: make(map[installmentKey]ledger.InstallmentRecord),
		processed:    make(map[string]time.Time),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.installments {
		c.installments[k] = v
	}
	for k, v := range s.processed {
		c.processed[k] = v
	}
	return c
}

func NewMemory() *Memory {
	return &Memory{state: newState(), now: time.Now}
}

func (m *Memory) UpsertBalance(_ context.Context, rec ledger.BalanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.balances[rec.Month] = rec
	return nil
}

func (m *Memory) UpsertInstallment(_ context.Context, rec ledger.InstallmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.installments[installmentKey{rec.StatementMonth, rec.DueMonth}] = rec
	return nil
}

func (m *Memory) IsProcessed(_ context.Context, fileID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.state.processed[fileID]
	return ok, nil
}

func (m *Memory) MarkProcessed(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.processed[fileID]; !ok {
		m.state.processed[fileID] = m.now().UTC()
	}
	return nil
}

func (m *Memory) Balances(_ context.Context) ([]ledger.BalanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.BalanceRecord, 0, len(m.state.balances))
	for _, b := range m.state.balances {
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) Installments(_ context.Context) ([]ledger.InstallmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.InstallmentRecord, 0, len(m.state.installments))
	for _, i := range m.state.installments {
		out = append(out, i)
	}
	return out, nil
}

func (m *Memory) ProcessedFiles(_ context.Context) ([]ledger.ProcessedFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.ProcessedFile, 0, len(m.state.processed))
	for id, at := range m.state.processed {
		out = append(out, ledger.ProcessedFile{ID: id, ProcessedAt: at})
	}
	return out, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against a private copy of the state and swaps it in only
// when fn succeeds.
func (m *Memory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	m.mu.RLock()
	draft := &Memory{state: m.state.clone(), now: m.now}
	m.mu.RUnlock()

	if err := fn(draft); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = draft.state
	m.mu.Unlock()
	return nil
}
