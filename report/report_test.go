package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/ledger/store"
	"github.com/warp/statement-ledger/report"
	"github.com/warp/statement-ledger/statement"
)

func money(s string) statement.Money { return statement.MustMoney(s) }

func sampleSeries(t *testing.T) ledger.Series {
	t.Helper()
	s, err := ledger.Reconstruct(
		[]ledger.BalanceRecord{
			{Month: "ENE-24", Primary: money("1000"), Secondary: money("50")},
			{Month: "DIC-23", Primary: money("900.5"), Secondary: money("0")},
			{Month: "FEB-24", Primary: statement.NotFound(), Secondary: money("12.35")},
		},
		[]ledger.InstallmentRecord{
			{StatementMonth: "ENE-24", DueMonth: "Mar-24", Amount: money("200.50")},
			{StatementMonth: "ENE-24", DueMonth: "Feb-24", Amount: money("100")},
		},
	)
	require.NoError(t, err)
	return s
}

// =============================================================================
// CHART
// =============================================================================

func render(t *testing.T, s ledger.Series) image.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.NewChart().Render(&buf, s))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	return img
}

func titles(panels []report.Panel) []string {
	out := make([]string, 0, len(panels))
	for _, p := range panels {
		out = append(out, p.Title)
	}
	return out
}

func TestChart_RendersThreePanels(t *testing.T) {
	s := sampleSeries(t)
	c := report.NewChart()

	panels := c.Panels(s)

	assert.Equal(t, []string{
		"Saldos Mensuales en Pesos",
		"Saldos Mensuales en Dólares",
		"Cuotas a vencer de la factura (ENE-24)",
	}, titles(panels))

	// AND: the primary panel skips FEB-24, whose primary balance was not found
	assert.Equal(t, []string{"DIC-23", "ENE-24"}, panels[0].Labels)
	assert.Equal(t, "900.5", panels[0].Values[0].String())
	assert.Equal(t, []string{"ENE-24", "FEB-24"}, panels[1].Labels)
	assert.True(t, panels[2].Bars)
	assert.Equal(t, []string{"Feb-24", "Mar-24"}, panels[2].Labels)

	// AND: the image stacks one panel per row
	img := render(t, s)
	assert.Equal(t, c.Width, img.Bounds().Dx())
	assert.Equal(t, 3*c.PanelHeight, img.Bounds().Dy())
}

func TestChart_OmitsEmptyPanels(t *testing.T) {
	s, err := ledger.Reconstruct([]ledger.BalanceRecord{
		{Month: "ENE-24", Primary: money("1"), Secondary: money("0")},
	}, nil)
	require.NoError(t, err)

	c := report.NewChart()
	assert.Equal(t, []string{"Saldos Mensuales en Pesos"}, titles(c.Panels(s)))

	img := render(t, s)
	assert.Equal(t, c.PanelHeight, img.Bounds().Dy())
}

func TestChart_EmptySeries(t *testing.T) {
	c := report.NewChart()

	panels := c.Panels(ledger.Series{})

	require.Len(t, panels, 1)
	assert.Empty(t, panels[0].Values)
	assert.Equal(t, c.PanelHeight, render(t, ledger.Series{}).Bounds().Dy())
}

func TestChart_InstallmentsWithoutAmounts(t *testing.T) {
	s, err := ledger.Reconstruct(nil, []ledger.InstallmentRecord{
		{StatementMonth: "ENE-24", DueMonth: "Feb-24", Amount: statement.NotFound()},
	})
	require.NoError(t, err)

	c := report.NewChart()
	panels := c.Panels(s)

	require.Len(t, panels, 2)
	assert.Empty(t, panels[1].Values)
	assert.Equal(t, 2*c.PanelHeight, render(t, s).Bounds().Dy())
}

func TestWriteChartFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphics", "grafico_facturas.png")

	require.NoError(t, report.WriteChartFile(path, sampleSeries(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

// =============================================================================
// CSV
// =============================================================================

func TestWriteLedgerCSV(t *testing.T) {
	balances := []ledger.BalanceRecord{
		{Month: "ENE-24", Primary: money("1000"), Secondary: statement.NotFound()},
		{Month: "DIC-23", Primary: money("900.5"), Secondary: money("0")},
	}
	installments := []ledger.InstallmentRecord{
		{StatementMonth: "ENE-24", DueMonth: "Mar-24", Amount: money("200.50")},
		{StatementMonth: "DIC-23", DueMonth: "Ene-24", Amount: money("10")},
		{StatementMonth: "ENE-24", DueMonth: "Feb-24", Amount: money("100")},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteLedgerCSV(&buf, balances, installments))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"record", "statement_month", "due_month", "primary_balance", "secondary_balance", "amount"},
		{"balance", "DIC-23", "", "900.50", "0.00", ""},
		{"balance", "ENE-24", "", "1000.00", "", ""},
		{"installment", "DIC-23", "Ene-24", "", "", "10.00"},
		{"installment", "ENE-24", "Feb-24", "", "", "100.00"},
		{"installment", "ENE-24", "Mar-24", "", "", "200.50"},
	}, rows)

	// AND: the caller's slices keep their order
	assert.Equal(t, statement.MonthCode("ENE-24"), balances[0].Month)
}

func TestWriteLedgerCSV_UnresolvableMonthsLast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteLedgerCSV(&buf, []ledger.BalanceRecord{
		{Month: "XXX-24", Primary: money("1")},
		{Month: "FEB-24", Primary: money("2")},
	}, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "FEB-24", rows[1][1])
	assert.Equal(t, "XXX-24", rows[2][1])
}

func TestDumpLedger_FromStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.UpsertBalance(ctx, ledger.BalanceRecord{Month: "ENE-24", Primary: money("1"), Secondary: money("2")}))

	var buf bytes.Buffer
	require.NoError(t, report.DumpLedger(ctx, mem, &buf))

	assert.Contains(t, buf.String(), "balance,ENE-24,,1.00,2.00,")
}
