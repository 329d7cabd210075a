/*
handlers.go - HTTP API handlers for the statement ledger

PURPOSE:
  Exposes the ledger and the ingest driver over HTTP. Handles request and
  response encoding and delegates to the ledger package.

ENDPOINTS:
  Ledger:
    GET    /api/balances       Every stored balance
    GET    /api/installments   Every stored installment amount
    GET    /api/files          Processed files, oldest first
    GET    /api/ledger.csv     Ledger dump as CSV

  Series:
    GET    /api/series         Chronological series (what the chart plots)
    GET    /api/chart.png      Rendered chart

  Ingest:
    POST   /api/ingest         Run one ingest pass over the invoices folder

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status:
  - 409: An ingest pass is already running
  - 422: The ledger holds a month code that cannot be resolved
  - 500: Storage or filesystem errors

SECURITY NOTE:
  No authentication. Run it on a trusted host.

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Cron-driven ingest passes
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/warp/statement-ledger/extract"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/logging"
	"github.com/warp/statement-ledger/report"
	"github.com/warp/statement-ledger/statement"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    ledger.Store
	Ingester *ledger.Ingester
	Logger   *slog.Logger

	// Where POST /api/ingest and the scheduler look for statements.
	InvoicesDir string
	InvoicesExt string
}

func NewHandler(store ledger.Store, ingester *ledger.Ingester, invoicesDir, invoicesExt string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:       store,
		Ingester:    ingester,
		Logger:      logger,
		InvoicesDir: invoicesDir,
		InvoicesExt: invoicesExt,
	}
}

// RunIngest discovers statement files and ingests them in one pass.
func (h *Handler) RunIngest(ctx context.Context) (ledger.Report, error) {
	paths, err := extract.FindFiles(h.InvoicesDir, h.InvoicesExt)
	if err != nil {
		return ledger.Report{}, err
	}
	return h.Ingester.IngestAll(ctx, paths)
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.Balances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load balances", err)
		return
	}
	ledger.SortBalances(recs)
	writeJSON(w, http.StatusOK, toBalanceDTOs(recs))
}

func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.Installments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load installments", err)
		return
	}
	ledger.SortInstallments(recs)
	writeJSON(w, http.StatusOK, toInstallmentDTOs(recs))
}

func (h *Handler) ListProcessedFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.Store.ProcessedFiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load processed files", err)
		return
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ProcessedAt.Equal(files[j].ProcessedAt) {
			return files[i].ProcessedAt.Before(files[j].ProcessedAt)
		}
		return files[i].ID < files[j].ID
	})

	out := make([]ProcessedFileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, ProcessedFileDTO{ID: f.ID, ProcessedAt: f.ProcessedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) LedgerCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.DumpLedger(r.Context(), h.Store, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to dump ledger", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// SERIES HANDLERS
// =============================================================================

func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSeries(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSeriesDTO(s))
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSeries(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.NewChart().Render(&buf, s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) loadSeries(w http.ResponseWriter, r *http.Request) (ledger.Series, bool) {
	s, err := ledger.LoadSeries(r.Context(), h.Store)
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, statement.ErrUnknownMonth), errors.Is(err, statement.ErrMalformedMonthCode):
		writeError(w, http.StatusUnprocessableEntity, "ledger holds an unresolvable month code", err)
	default:
		writeError(w, http.StatusInternalServerError, "failed to load ledger", err)
	}
	return ledger.Series{}, false
}

// =============================================================================
// INGEST HANDLERS
// =============================================================================

func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	rep, err := h.RunIngest(r.Context())
	if errors.Is(err, ledger.ErrIngestInProgress) {
		writeError(w, http.StatusConflict, "an ingest pass is already running", err)
		return
	}
	if err != nil {
		h.Logger.Error("ingest pass failed", logging.FieldError, err)
		writeError(w, http.StatusInternalServerError, "ingest failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toIngestResponse(rep))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
