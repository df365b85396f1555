package adapthttp

import (
	"net/http"

	"weightlog/internal/app"
)

func (s *Server) handleBillingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	subscribed := s.billing.Subscribed(ctx)
	if r.URL.Query().Get("refresh") == "true" {
		subscribed = s.billing.Refresh(ctx)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscribed": subscribed,
		"productId":  app.ProductID,
	})
}

func (s *Server) handleBillingPurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	outcome, err := s.billing.Purchase(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	// A user cancellation is a silent outcome, not an error.
	writeJSON(w, http.StatusOK, map[string]any{
		"outcome":    outcome,
		"subscribed": outcome == app.OutcomeCompleted,
	})
}

func (s *Server) handleBillingRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	subscribed, err := s.billing.Restore(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribed": subscribed})
}
