// Package adapthttp is the driving HTTP adapter that routes requests
// to application services.
package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"weightlog/internal/app"
)

// Server routes requests to the application services.
type Server struct {
	journal  *app.JournalService
	charts   *app.ChartsService
	settings *app.SettingsService
	billing  *app.BillingService
	log      *zap.Logger
}

// New creates a Server wired to the given application services.
func New(journal *app.JournalService, charts *app.ChartsService, settings *app.SettingsService, billing *app.BillingService, log *zap.Logger) *Server {
	return &Server{journal: journal, charts: charts, settings: settings, billing: billing, log: log}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/entries", s.handleEntries)
	api.HandleFunc("/entries/day", s.handleEntriesForDay)
	api.HandleFunc("/cases", s.handleCases)

	api.HandleFunc("/charts/candles", s.handleCandles)
	api.HandleFunc("/charts/trend", s.handleTrend)

	api.HandleFunc("/bmi", s.handleBMI)

	api.HandleFunc("/profile", s.handleProfile)
	api.HandleFunc("/setup", s.handleSetup)
	api.HandleFunc("/settings", s.handleSettings)
	api.HandleFunc("/access", s.handleAccess)

	api.HandleFunc("/billing/status", s.handleBillingStatus)
	api.HandleFunc("/billing/purchase", s.handleBillingPurchase)
	api.HandleFunc("/billing/restore", s.handleBillingRestore)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return withNoCache(s.logRequests(root))
}
