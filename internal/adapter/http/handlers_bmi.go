package adapthttp

import (
	"net/http"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func (s *Server) handleBMI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	profile := s.settings.Profile(ctx)
	weight := profile.WeightKg
	if weight <= 0 {
		// Fall back to the newest journal entry when the profile has
		// no weight yet.
		if latest, ok := domain.LatestEntry(s.journal.Entries(ctx)); ok {
			weight = latest.Weight
		}
	}

	bmi, ok := app.ComputeBMI(profile.HeightCm, weight)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"bmi":        nil,
			"categories": app.BMICategories(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bmi":        app.RoundBMI(bmi),
		"heightCm":   profile.HeightCm,
		"weightKg":   weight,
		"category":   app.ClassifyBMI(bmi),
		"categories": app.BMICategories(),
	})
}
