package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeUpgradeRequired denies access to history outside the free
// window; the client is expected to surface an upgrade prompt.
func writeUpgradeRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]any{
		"error":           "subscription required for this date",
		"upgradeRequired": true,
	})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func int64Query(r *http.Request, key string) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, fmt.Errorf("missing %q query parameter", key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %q query parameter: %w", key, err)
	}
	return n, nil
}

// caseSetQuery parses the comma-separated "cases" parameter. An absent
// parameter selects every case so the filter can never be empty.
func caseSetQuery(r *http.Request) domain.CaseSet {
	raw := r.URL.Query().Get("cases")
	if raw == "" {
		return domain.AllCases()
	}
	set := domain.CaseSet{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[domain.ParseCase(part)] = true
		}
	}
	return set
}

func localDayString(t time.Time) string {
	return t.In(time.Local).Format(domain.DayFormat)
}

// statusForError maps application errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, app.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrDuplicateTimestamp),
		errors.Is(err, app.ErrPurchaseInProgress):
		return http.StatusConflict
	case errors.Is(err, app.ErrDailyLimitExceeded),
		errors.Is(err, app.ErrFutureDate),
		errors.Is(err, app.ErrEmptyCaseFilter),
		errors.Is(err, app.ErrBadMeasurementUnit),
		errors.Is(err, domain.ErrHeightOutOfRange),
		errors.Is(err, domain.ErrWeightOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrProductUnavailable),
		errors.Is(err, app.ErrPurchaseNetwork),
		errors.Is(err, app.ErrPurchaseFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
