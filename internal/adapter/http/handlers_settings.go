package adapthttp

import (
	"net/http"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.settings.Profile(ctx))

	case http.MethodPut:
		var body struct {
			HeightCm float64 `json:"heightCm"`
			WeightKg float64 `json:"weightKg"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.settings.SetProfile(ctx, body.HeightCm, body.WeightKg); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, s.settings.Profile(ctx))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"firstLaunch": s.settings.FirstLaunch(ctx)})

	case http.MethodPost:
		var body struct {
			HeightCm float64 `json:"heightCm"`
			WeightKg float64 `json:"weightKg"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.settings.CompleteSetup(ctx, body.HeightCm, body.WeightKg); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"measurementUnit": s.settings.MeasurementUnit(ctx),
			"appLanguage":     s.settings.Language(ctx),
		})

	case http.MethodPut:
		var body struct {
			MeasurementUnit string `json:"measurementUnit"`
			AppLanguage     string `json:"appLanguage"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.MeasurementUnit != "" {
			if err := s.settings.SetMeasurementUnit(ctx, body.MeasurementUnit); err != nil {
				writeError(w, statusForError(err), err)
				return
			}
		}
		if body.AppLanguage != "" {
			if err := s.settings.SetLanguage(ctx, body.AppLanguage); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"measurementUnit": s.settings.MeasurementUnit(ctx),
			"appLanguage":     s.settings.Language(ctx),
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	dayStr := r.URL.Query().Get("date")
	day, err := domain.ParseDay(dayStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	today := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"date":       dayStr,
		"accessible": app.DateAccessible(day, today, s.billing.Subscribed(r.Context())),
		"future":     app.DateInFuture(day, today),
	})
}
