package adapthttp

import (
	"net/http"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

// chartRange resolves the start/end/granularity/unit parameters shared
// by the chart endpoints. The default range is the last 90 days in the
// stored unit.
func (s *Server) chartRange(r *http.Request) (startDay, endDay string, g app.Granularity, unit string, err error) {
	now := time.Now()
	endDay = r.URL.Query().Get("end")
	if endDay == "" {
		endDay = localDayString(now)
	}
	startDay = r.URL.Query().Get("start")
	if startDay == "" {
		startDay = localDayString(now.AddDate(0, 0, -90))
	}
	g, err = app.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		return "", "", "", "", err
	}
	unit = r.URL.Query().Get("unit")
	if unit == "" {
		unit = domain.UnitForMeasurement(s.settings.MeasurementUnit(r.Context()))
	}
	return startDay, endDay, g, unit, nil
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	startDay, endDay, g, unit, err := s.chartRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	buckets, err := s.charts.Candles(r.Context(), startDay, endDay, g, caseSetQuery(r), unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start":       startDay,
		"end":         endDay,
		"granularity": g,
		"unit":        unit,
		"items":       buckets,
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	startDay, endDay, g, unit, err := s.chartRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	window := intQuery(r, "window", 7)

	points, err := s.charts.Trend(r.Context(), startDay, endDay, g, caseSetQuery(r), unit, window)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window": window,
		"unit":   unit,
		"items":  points,
	})
}
