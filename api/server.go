/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local dashboard

ROUTE GROUPS:
  /api/*      Ledger, series and ingest endpoints
  /           Endpoint index

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/balances", h.ListBalances)
		r.Get("/installments", h.ListInstallments)
		r.Get("/files", h.ListProcessedFiles)
		r.Get("/ledger.csv", h.LedgerCSV)

		r.Get("/series", h.GetSeries)
		r.Get("/chart.png", h.GetChart)

		r.Post("/ingest", h.TriggerIngest)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Statement Ledger</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Statement Ledger API</h1>
<ul>
<li><a href="/api/balances">/api/balances</a> - Monthly balances</li>
<li><a href="/api/installments">/api/installments</a> - Installment amounts</li>
<li><a href="/api/files">/api/files</a> - Processed files</li>
<li><a href="/api/series">/api/series</a> - Chronological series</li>
<li><a href="/api/chart.png">/api/chart.png</a> - Chart</li>
<li><a href="/api/ledger.csv">/api/ledger.csv</a> - CSV dump</li>
<li>POST /api/ingest - Ingest new statements</li>
</ul>
</body>
</html>`))
	})

	return r
}
