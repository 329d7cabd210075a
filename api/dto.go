/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned by the ledger API. Amounts are
  rendered as fixed two-place strings so clients never see float rounding;
  an amount that was not found on the statement is null.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// LEDGER RECORDS
// =============================================================================

type BalanceDTO struct {
	Month     string  `json:"month"`
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
}

type InstallmentDTO struct {
	StatementMonth string  `json:"statementMonth"`
	DueMonth       string  `json:"dueMonth"`
	Amount         *string `json:"amount"`
}

type ProcessedFileDTO struct {
	ID          string    `json:"id"`
	ProcessedAt time.Time `json:"processedAt"`
}

// =============================================================================
// SERIES
// =============================================================================

type BalancePointDTO struct {
	Month     string  `json:"month"`
	Period    string  `json:"period"` // YYYY-MM
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
}

type InstallmentPointDTO struct {
	Due    string  `json:"due"`
	Period string  `json:"period"`
	Amount *string `json:"amount"`
}

type SeriesDTO struct {
	Balances          []BalancePointDTO     `json:"balances"`
	SecondaryBalances []BalancePointDTO     `json:"secondaryBalances"`
	LatestStatement   string                `json:"latestStatement,omitempty"`
	Installments      []InstallmentPointDTO `json:"installments"`
}

// =============================================================================
// INGEST
// =============================================================================

type FileResultDTO struct {
	Path         string   `json:"path"`
	Status       string   `json:"status"`
	Month        string   `json:"month,omitempty"`
	Installments int      `json:"installments"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type IngestResponse struct {
	RunID        string          `json:"runId"`
	Files        []FileResultDTO `json:"files"`
	Counts       map[string]int  `json:"counts"`
	Unattributed []string        `json:"unattributed,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func amountPtr(m statement.Money) *string {
	if !m.Found() {
		return nil
	}
	s := m.Decimal.StringFixed(2)
	return &s
}

func toBalanceDTOs(recs []ledger.BalanceRecord) []BalanceDTO {
	out := make([]BalanceDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, BalanceDTO{
			Month:     string(r.Month),
			Primary:   amountPtr(r.Primary),
			Secondary: amountPtr(r.Secondary),
		})
	}
	return out
}

func toInstallmentDTOs(recs []ledger.InstallmentRecord) []InstallmentDTO {
	out := make([]InstallmentDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, InstallmentDTO{
			StatementMonth: string(r.StatementMonth),
			DueMonth:       string(r.DueMonth),
			Amount:         amountPtr(r.Amount),
		})
	}
	return out
}

func toBalancePointDTOs(points []ledger.BalancePoint) []BalancePointDTO {
	out := make([]BalancePointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, BalancePointDTO{
			Month:     string(p.Month),
			Period:    p.At.String(),
			Primary:   amountPtr(p.Primary),
			Secondary: amountPtr(p.Secondary),
		})
	}
	return out
}

func toSeriesDTO(s ledger.Series) SeriesDTO {
	dto := SeriesDTO{
		Balances:          toBalancePointDTOs(s.Balances),
		SecondaryBalances: toBalancePointDTOs(s.SecondaryBalances),
		LatestStatement:   string(s.LatestStatement),
		Installments:      make([]InstallmentPointDTO, 0, len(s.Installments)),
	}
	for _, i := range s.Installments {
		dto.Installments = append(dto.Installments, InstallmentPointDTO{
			Due:    string(i.Due),
			Period: i.At.String(),
			Amount: amountPtr(i.Amount),
		})
	}
	return dto
}

func toIngestResponse(r ledger.Report) IngestResponse {
	resp := IngestResponse{
		RunID:        r.RunID,
		Files:        make([]FileResultDTO, 0, len(r.Files)),
		Counts:       make(map[string]int),
		Unattributed: r.Unattributed(),
	}
	for _, f := range r.Files {
		dto := FileResultDTO{
			Path:         f.Path,
			Status:       string(f.Status),
			Month:        string(f.Month),
			Installments: f.Installments,
			Warnings:     f.Warnings,
		}
		if f.Err != nil {
			dto.Error = f.Err.Error()
		}
		resp.Files = append(resp.Files, dto)
		resp.Counts[string(f.Status)]++
	}
	return resp
}
