package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/ledger/store"
	"github.com/warp/statement-ledger/statement"
)

func money(s string) statement.Money { return statement.MustMoney(s) }

func balanceMonths(points []ledger.BalancePoint) []statement.MonthCode {
	var out []statement.MonthCode
	for _, p := range points {
		out = append(out, p.Month)
	}
	return out
}

func TestReconstruct_BalancesChronological(t *testing.T) {
	// GIVEN: balances inserted out of order, spanning a year boundary
	balances := []ledger.BalanceRecord{
		{Month: "FEB-24", Primary: money("300"), Secondary: money("0")},
		{Month: "DIC-23", Primary: money("100"), Secondary: money("10")},
		{Month: "ENE-24", Primary: money("200"), Secondary: statement.NotFound()},
		{Month: "NOV-23", Primary: money("50"), Secondary: money("5")},
	}

	// WHEN
	s, err := ledger.Reconstruct(balances, nil)

	// THEN: every month is present, oldest first
	require.NoError(t, err)
	assert.Equal(t, []statement.MonthCode{"NOV-23", "DIC-23", "ENE-24", "FEB-24"}, balanceMonths(s.Balances))

	// AND: the secondary series drops zero and missing values
	assert.Equal(t, []statement.MonthCode{"NOV-23", "DIC-23"}, balanceMonths(s.SecondaryBalances))

	// AND: no installments means an empty schedule, not an error
	assert.Equal(t, statement.MonthCode(""), s.LatestStatement)
	assert.Empty(t, s.Installments)
}

func TestReconstruct_LatestStatementOnly(t *testing.T) {
	// GIVEN: two statements list overlapping due months
	installments := []ledger.InstallmentRecord{
		{StatementMonth: "ENE-24", DueMonth: "Feb-24", Amount: money("100")},
		{StatementMonth: "ENE-24", DueMonth: "Mar-24", Amount: money("200")},
		{StatementMonth: "FEB-24", DueMonth: "Abr-24", Amount: money("150")},
		{StatementMonth: "FEB-24", DueMonth: "Mar-24", Amount: money("210")},
	}

	s, err := ledger.Reconstruct(nil, installments)

	require.NoError(t, err)
	assert.Equal(t, statement.MonthCode("FEB-24"), s.LatestStatement)
	require.Len(t, s.Installments, 2)
	assert.Equal(t, statement.MonthCode("Mar-24"), s.Installments[0].Due)
	assert.True(t, s.Installments[0].Amount.Equal(money("210")), "FEB-24's own amount, not ENE-24's")
	assert.Equal(t, statement.MonthCode("Abr-24"), s.Installments[1].Due)
}

func TestReconstruct_LatestAcrossYearBoundary(t *testing.T) {
	installments := []ledger.InstallmentRecord{
		{StatementMonth: "ENE-24", DueMonth: "Feb-24", Amount: money("1")},
		{StatementMonth: "DIC-23", DueMonth: "Ene-24", Amount: money("2")},
	}

	s, err := ledger.Reconstruct(nil, installments)

	require.NoError(t, err)
	assert.Equal(t, statement.MonthCode("ENE-24"), s.LatestStatement)
}

func TestReconstruct_UnknownMonthIsFatal(t *testing.T) {
	tests := []struct {
		name         string
		balances     []ledger.BalanceRecord
		installments []ledger.InstallmentRecord
	}{
		{
			name:     "balance month",
			balances: []ledger.BalanceRecord{{Month: "ENE-24"}, {Month: "XXX-24"}},
		},
		{
			name:         "statement month",
			installments: []ledger.InstallmentRecord{{StatementMonth: "QQQ-24", DueMonth: "Feb-24"}},
		},
		{
			name: "due month of an older statement",
			installments: []ledger.InstallmentRecord{
				{StatementMonth: "FEB-24", DueMonth: "Mar-24"},
				{StatementMonth: "ENE-24", DueMonth: "Zzz-24"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Reconstruct(tt.balances, tt.installments)
			assert.ErrorIs(t, err, statement.ErrUnknownMonth)
		})
	}
}

func TestLoadSeries_FromStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.UpsertBalance(ctx, ledger.BalanceRecord{Month: "FEB-24", Primary: money("2"), Secondary: money("0")}))
	require.NoError(t, mem.UpsertBalance(ctx, ledger.BalanceRecord{Month: "ENE-24", Primary: money("1"), Secondary: money("0")}))
	require.NoError(t, mem.UpsertInstallment(ctx, ledger.InstallmentRecord{StatementMonth: "FEB-24", DueMonth: "Mar-24", Amount: money("5")}))

	s, err := ledger.LoadSeries(ctx, mem)

	require.NoError(t, err)
	assert.Equal(t, []statement.MonthCode{"ENE-24", "FEB-24"}, balanceMonths(s.Balances))
	assert.Empty(t, s.SecondaryBalances)
	assert.Equal(t, statement.MonthCode("FEB-24"), s.LatestStatement)
	assert.Len(t, s.Installments, 1)
}

func TestSortBalances_ChronologicalUnresolvableLast(t *testing.T) {
	recs := []ledger.BalanceRecord{{Month: "ABR-24"}, {Month: "XYZ-24"}, {Month: "DIC-23"}, {Month: "ENE-24"}}

	ledger.SortBalances(recs)

	var got []statement.MonthCode
	for _, r := range recs {
		got = append(got, r.Month)
	}
	assert.Equal(t, []statement.MonthCode{"DIC-23", "ENE-24", "ABR-24", "XYZ-24"}, got)
}

func TestSortInstallments_ByStatementThenDue(t *testing.T) {
	recs := []ledger.InstallmentRecord{
		{StatementMonth: "ENE-24", DueMonth: "Ene-25"},
		{StatementMonth: "ENE-24", DueMonth: "Abr-24"},
		{StatementMonth: "DIC-23", DueMonth: "Mar-24"},
	}

	ledger.SortInstallments(recs)

	assert.Equal(t, statement.MonthCode("DIC-23"), recs[0].StatementMonth)
	assert.Equal(t, statement.MonthCode("Abr-24"), recs[1].DueMonth)
	assert.Equal(t, statement.MonthCode("Ene-25"), recs[2].DueMonth)
}
