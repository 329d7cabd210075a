package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// SERIES - Chronological view of the ledger
// =============================================================================

// BalancePoint is one month of the balance series.
type BalancePoint struct {
	Month     statement.MonthCode
	At        statement.YearMonth
	Primary   statement.Money
	Secondary statement.Money
}

// InstallmentPoint is one due month of the latest statement's schedule.
type InstallmentPoint struct {
	Due    statement.MonthCode
	At     statement.YearMonth
	Amount statement.Money
}

// Series is what the chart renderer consumes.
type Series struct {
	// Balances covers every stored month, oldest first.
	Balances []BalancePoint

	// SecondaryBalances keeps only months with a present, non-zero
	// secondary-currency balance.
	SecondaryBalances []BalancePoint

	// LatestStatement is the most recent statement month with installments;
	// empty when the ledger holds none.
	LatestStatement statement.MonthCode

	// Installments is LatestStatement's schedule, earliest due month first.
	Installments []InstallmentPoint
}

// LoadSeries reads the whole ledger and reconstructs its series.
func LoadSeries(ctx context.Context, store Store) (Series, error) {
	balances, err := store.Balances(ctx)
	if err != nil {
		return Series{}, fmt.Errorf("load balances: %w", err)
	}
	installments, err := store.Installments(ctx)
	if err != nil {
		return Series{}, fmt.Errorf("load installments: %w", err)
	}
	return Reconstruct(balances, installments)
}

// Reconstruct orders unordered ledger rows chronologically. Any month code
// that cannot be resolved fails the whole reconstruction.
func Reconstruct(balances []BalanceRecord, installments []InstallmentRecord) (Series, error) {
	var s Series

	for _, b := range balances {
		at, err := b.Month.Resolve()
		if err != nil {
			return Series{}, fmt.Errorf("balance series: %w", err)
		}
		s.Balances = append(s.Balances, BalancePoint{
			Month:     b.Month,
			At:        at,
			Primary:   b.Primary,
			Secondary: b.Secondary,
		})
	}
	sort.SliceStable(s.Balances, func(i, j int) bool {
		return s.Balances[i].At.Before(s.Balances[j].At)
	})

	for _, p := range s.Balances {
		if p.Secondary.Found() && !p.Secondary.IsZero() {
			s.SecondaryBalances = append(s.SecondaryBalances, p)
		}
	}

	latest, err := latestStatement(installments)
	if err != nil {
		return Series{}, err
	}
	if latest == "" {
		return s, nil
	}
	s.LatestStatement = latest

	for _, inst := range installments {
		if inst.StatementMonth != latest {
			continue
		}
		at, err := inst.DueMonth.Resolve()
		if err != nil {
			return Series{}, fmt.Errorf("installment series: %w", err)
		}
		s.Installments = append(s.Installments, InstallmentPoint{
			Due:    inst.DueMonth,
			At:     at,
			Amount: inst.Amount,
		})
	}
	sort.SliceStable(s.Installments, func(i, j int) bool {
		return s.Installments[i].At.Before(s.Installments[j].At)
	})

	return s, nil
}

// latestStatement picks the chronologically greatest statement month. Every
// record's months are resolved first, so a bad code anywhere is reported.
func latestStatement(installments []InstallmentRecord) (statement.MonthCode, error) {
	var (
		latest   statement.MonthCode
		latestAt statement.YearMonth
	)
	for _, inst := range installments {
		at, err := inst.StatementMonth.Resolve()
		if err != nil {
			return "", fmt.Errorf("installment series: %w", err)
		}
		if _, err := inst.DueMonth.Resolve(); err != nil {
			return "", fmt.Errorf("installment series: %w", err)
		}
		if latest == "" || at.After(latestAt) {
			latest, latestAt = inst.StatementMonth, at
		}
	}
	return latest, nil
}

// =============================================================================
// LISTING ORDER
// =============================================================================

// SortBalances orders records by month for listings. Unlike Reconstruct it
// never fails: unresolvable months go last.
func SortBalances(recs []BalanceRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return statement.CompareMonthCodes(recs[i].Month, recs[j].Month) < 0
	})
}

// SortInstallments orders records by statement month, then due month.
func SortInstallments(recs []InstallmentRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if c := statement.CompareMonthCodes(recs[i].StatementMonth, recs[j].StatementMonth); c != 0 {
			return c < 0
		}
		return statement.CompareMonthCodes(recs[i].DueMonth, recs[j].DueMonth) < 0
	})
}
