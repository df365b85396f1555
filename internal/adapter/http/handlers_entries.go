package adapthttp

import (
	"context"
	"net/http"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		subscribed := s.billing.Subscribed(ctx)
		today := time.Now()

		entries := s.journal.Entries(ctx)
		items := make([]domain.WeightEntry, 0, len(entries))
		for _, e := range entries {
			day, err := domain.ParseDay(e.Day)
			if err != nil {
				continue
			}
			if app.DateAccessible(day, today, subscribed) {
				items = append(items, e)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var body struct {
			Weight    float64 `json:"weight"`
			Timestamp int64   `json:"timestamp"`
			Case      string  `json:"case"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := domain.ValidateWeight(body.Weight); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ts := body.Timestamp
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		if !s.checkTimestampAccess(w, ctx, ts) {
			return
		}
		entry, err := s.journal.Add(ctx, body.Weight, ts, domain.ParseCase(body.Case))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry, "case": entry.Case.Info()})

	case http.MethodPut:
		var body struct {
			Timestamp    int64   `json:"timestamp"`
			NewWeight    float64 `json:"newWeight"`
			NewTimestamp int64   `json:"newTimestamp"`
			NewCase      string  `json:"newCase"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := domain.ValidateWeight(body.NewWeight); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		target, ok := s.findEntry(ctx, body.Timestamp)
		if !ok {
			writeError(w, statusForError(app.ErrEntryNotFound), app.ErrEntryNotFound)
			return
		}
		if !s.checkTimestampAccess(w, ctx, target.Timestamp) {
			return
		}
		newTS := body.NewTimestamp
		if newTS == 0 {
			newTS = body.Timestamp
		}
		if !s.checkTimestampAccess(w, ctx, newTS) {
			return
		}
		entry, err := s.journal.Edit(ctx, body.Timestamp, body.NewWeight, newTS, domain.ParseCase(body.NewCase))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry, "case": entry.Case.Info()})

	case http.MethodDelete:
		ts, err := int64Query(r, "timestamp")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		// Deleting a missing entry stays a no-op, but an existing entry
		// on a locked day is protected like any other mutation.
		if target, ok := s.findEntry(ctx, ts); ok {
			if !s.checkTimestampAccess(w, ctx, target.Timestamp) {
				return
			}
		}
		s.journal.Delete(ctx, ts)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// findEntry returns the stored entry identified by ts.
func (s *Server) findEntry(ctx context.Context, ts int64) (domain.WeightEntry, bool) {
	for _, e := range s.journal.Entries(ctx) {
		if e.Timestamp == ts {
			return e, true
		}
	}
	return domain.WeightEntry{}, false
}

// checkTimestampAccess enforces the history access policy for a
// mutation on the day of ts. Future days are let through here; the
// journal rejects them with a proper validation error.
func (s *Server) checkTimestampAccess(w http.ResponseWriter, ctx context.Context, ts int64) bool {
	day := time.UnixMilli(ts).In(time.Local)
	today := time.Now()
	if app.DateInFuture(day, today) {
		return true
	}
	if !app.DateAccessible(day, today, s.billing.Subscribed(ctx)) {
		writeUpgradeRequired(w)
		return false
	}
	return true
}

func (s *Server) handleEntriesForDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	dayStr := r.URL.Query().Get("date")
	if dayStr == "" {
		dayStr = localDayString(time.Now())
	}
	day, err := domain.ParseDay(dayStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !app.DateAccessible(day, time.Now(), s.billing.Subscribed(ctx)) {
		writeUpgradeRequired(w)
		return
	}

	items := make([]domain.WeightEntry, 0, app.MaxEntriesPerDay)
	for _, e := range s.journal.Entries(ctx) {
		if e.Day == dayStr {
			items = append(items, e)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":      dayStr,
		"items":     items,
		"remaining": max(0, app.MaxEntriesPerDay-len(items)),
	})
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	type caseItem struct {
		ID domain.Case `json:"id"`
		domain.CaseInfo
	}
	items := make([]caseItem, 0, len(domain.Cases()))
	for _, c := range domain.Cases() {
		items = append(items, caseItem{ID: c, CaseInfo: c.Info()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
