package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/statement"
)

var ledgerHeader = []string{"record", "statement_month", "due_month", "primary_balance", "secondary_balance", "amount"}

// WriteLedgerCSV dumps balances, then installments, one row each. Rows are in
// chronological order; months that cannot be resolved go last in text order.
// Amounts not found on the statement are written as empty cells.
func WriteLedgerCSV(out io.Writer, balances []ledger.BalanceRecord, installments []ledger.InstallmentRecord) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(ledgerHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	balances = append([]ledger.BalanceRecord(nil), balances...)
	ledger.SortBalances(balances)
	for _, b := range balances {
		row := []string{"balance", string(b.Month), "", formatAmount(b.Primary), formatAmount(b.Secondary), ""}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	installments = append([]ledger.InstallmentRecord(nil), installments...)
	ledger.SortInstallments(installments)
	for _, i := range installments {
		row := []string{"installment", string(i.StatementMonth), string(i.DueMonth), "", "", formatAmount(i.Amount)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// DumpLedger reads every record from store and writes it with WriteLedgerCSV.
func DumpLedger(ctx context.Context, store ledger.Store, out io.Writer) error {
	balances, err := store.Balances(ctx)
	if err != nil {
		return err
	}
	installments, err := store.Installments(ctx)
	if err != nil {
		return err
	}
	return WriteLedgerCSV(out, balances, installments)
}

func formatAmount(m statement.Money) string {
	if !m.Found() {
		return ""
	}
	return m.Decimal.StringFixed(2)
}
