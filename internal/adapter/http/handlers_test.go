package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapthttp "weightlog/internal/adapter/http"
	"weightlog/internal/adapter/memory"
	"weightlog/internal/app"
	"weightlog/internal/domain"
)

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	gateway *memory.Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	gateway := memory.NewGateway()

	journal := app.NewJournalService(store, log)
	billing := app.NewBillingService(gateway, store, log)
	settings := app.NewSettingsService(store, log)
	charts := app.NewChartsService(journal, billing)

	return &testEnv{
		handler: adapthttp.New(journal, charts, settings, billing, log).Handler(),
		store:   store,
		gateway: gateway,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

func todayNoonMilli() int64 {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local).UnixMilli()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestEntriesCRUD(t *testing.T) {
	env := newTestEnv(t)
	ts := todayNoonMilli()

	rec, body := env.do(t, http.MethodPost, "/api/entries", map[string]any{
		"weight":    70.5,
		"timestamp": ts,
		"case":      "empty_stomach",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := body["entry"].(map[string]any)
	require.Equal(t, 70.5, entry["weight"])
	require.Equal(t, "empty_stomach", entry["case"])
	caseInfo := body["case"].(map[string]any)
	require.Equal(t, "#007AFF", caseInfo["color"])

	rec, body = env.do(t, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)

	rec, body = env.do(t, http.MethodPut, "/api/entries", map[string]any{
		"timestamp": ts,
		"newWeight": 69.0,
		"newCase":   "after_workout",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry = body["entry"].(map[string]any)
	require.Equal(t, 69.0, entry["weight"])

	rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/entries?timestamp=%d", ts), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["items"])
}

func TestEntries_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/entries", map[string]any{"weight": 500.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Editing a missing entry is a 404.
	rec, _ = env.do(t, http.MethodPut, "/api/entries", map[string]any{
		"timestamp": int64(12345),
		"newWeight": 70.0,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/entries", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, "timestamp parameter is required")
}

func TestEntries_DailyLimit(t *testing.T) {
	env := newTestEnv(t)
	ts := todayNoonMilli()

	for i := 0; i < app.MaxEntriesPerDay; i++ {
		rec, _ := env.do(t, http.MethodPost, "/api/entries", map[string]any{
			"weight":    70.0 + float64(i),
			"timestamp": ts + int64(i)*60_000,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, _ := env.do(t, http.MethodPost, "/api/entries", map[string]any{
		"weight":    75.0,
		"timestamp": ts + 6*60_000,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/entries/day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], app.MaxEntriesPerDay)
	require.Equal(t, float64(0), body["remaining"])
}

func TestEntries_DuplicateTimestampConflicts(t *testing.T) {
	env := newTestEnv(t)
	ts := todayNoonMilli()

	rec, _ := env.do(t, http.MethodPost, "/api/entries", map[string]any{"weight": 70.0, "timestamp": ts})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/entries", map[string]any{"weight": 71.0, "timestamp": ts})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEntries_HistoryLockedForNonSubscribers(t *testing.T) {
	env := newTestEnv(t)
	oldTS := time.Now().AddDate(0, -5, 0).UnixMilli()

	rec, body := env.do(t, http.MethodPost, "/api/entries", map[string]any{
		"weight":    70.0,
		"timestamp": oldTS,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, true, body["upgradeRequired"])

	oldDay := time.Now().AddDate(0, -5, 0).Format(domain.DayFormat)
	rec, body = env.do(t, http.MethodGet, "/api/entries/day?date="+oldDay, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, true, body["upgradeRequired"])
}

func (e *testEnv) seedEntries(t *testing.T, entries []domain.WeightEntry) {
	t.Helper()
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, e.store.Set(context.Background(), domain.KeyWeightEntries, string(raw)))
}

func TestEntries_LockedHistoryMutationsDenied(t *testing.T) {
	env := newTestEnv(t)
	old := time.Now().AddDate(0, -5, 0)
	oldTS := old.UnixMilli()
	env.seedEntries(t, []domain.WeightEntry{
		{Day: old.Format(domain.DayFormat), Timestamp: oldTS, Weight: 80.0, Case: domain.CaseNone},
	})

	rec, body := env.do(t, http.MethodDelete, fmt.Sprintf("/api/entries?timestamp=%d", oldTS), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, true, body["upgradeRequired"])

	// Moving a locked entry is just as much a mutation of it.
	rec, body = env.do(t, http.MethodPut, "/api/entries", map[string]any{
		"timestamp":    oldTS,
		"newWeight":    79.0,
		"newTimestamp": todayNoonMilli(),
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, true, body["upgradeRequired"])

	// A subscriber may delete the same entry.
	rec, _ = env.do(t, http.MethodPost, "/api/billing/purchase", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/entries?timestamp=%d", oldTS), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEntriesForDay_RemainingNeverNegative(t *testing.T) {
	env := newTestEnv(t)
	noon := todayNoonMilli()
	day := time.Now().Format(domain.DayFormat)

	// An over-full day written by an older client must not produce a
	// negative remaining count.
	entries := make([]domain.WeightEntry, 0, app.MaxEntriesPerDay+1)
	for i := 0; i <= app.MaxEntriesPerDay; i++ {
		entries = append(entries, domain.WeightEntry{
			Day: day, Timestamp: noon + int64(i), Weight: 70.0, Case: domain.CaseNone,
		})
	}
	env.seedEntries(t, entries)

	rec, body := env.do(t, http.MethodGet, "/api/entries/day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], app.MaxEntriesPerDay+1)
	require.Equal(t, float64(0), body["remaining"])
}

func TestEntries_HistoryOpensAfterPurchase(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/billing/purchase", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "completed", body["outcome"])
	require.Equal(t, true, body["subscribed"])

	oldTS := time.Now().AddDate(0, -5, 0).UnixMilli()
	rec, _ = env.do(t, http.MethodPost, "/api/entries", map[string]any{
		"weight":    70.0,
		"timestamp": oldTS,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCases(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, http.MethodGet, "/api/cases", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := body["items"].([]any)
	require.Len(t, items, 4)
	first := items[0].(map[string]any)
	require.Equal(t, "empty_stomach", first["id"])
	require.Equal(t, "#007AFF", first["color"])
}

func TestCharts(t *testing.T) {
	env := newTestEnv(t)
	ts := todayNoonMilli()

	for i, w := range []float64{70.0, 71.0} {
		rec, _ := env.do(t, http.MethodPost, "/api/entries", map[string]any{
			"weight":    w,
			"timestamp": ts + int64(i)*60_000,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, body := env.do(t, http.MethodGet, "/api/charts/candles", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "kg", body["unit"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	bucket := items[0].(map[string]any)
	require.Equal(t, 70.5, bucket["average"])

	rec, body = env.do(t, http.MethodGet, "/api/charts/trend?window=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, body["items"], 1)

	rec, _ = env.do(t, http.MethodGet, "/api/charts/candles?granularity=year", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCharts_UnitFollowsSettings(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPut, "/api/settings", map[string]any{"measurementUnit": "imperial"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/charts/candles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "lb", body["unit"])
}

func TestBMI(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/bmi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["bmi"], "no measurements yet")
	require.NotEmpty(t, body["categories"])

	rec, _ = env.do(t, http.MethodPost, "/api/setup", map[string]any{"heightCm": 170.0, "weightKg": 68.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body = env.do(t, http.MethodGet, "/api/bmi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 23.5, body["bmi"])
	category := body["category"].(map[string]any)
	require.Equal(t, "normal", category["category"])
}

func TestSetupFlow(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["firstLaunch"])

	rec, _ = env.do(t, http.MethodPost, "/api/setup", map[string]any{"heightCm": 170.0, "weightKg": 68.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["firstLaunch"])

	rec, _ = env.do(t, http.MethodPost, "/api/setup", map[string]any{"heightCm": 50.0, "weightKg": 68.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccess(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/access?date=2020-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["accessible"])
	require.Equal(t, false, body["future"])

	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.DayFormat)
	rec, body = env.do(t, http.MethodGet, "/api/access?date="+tomorrow, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["future"])

	rec, _ = env.do(t, http.MethodGet, "/api/access?date=garbage", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillingStatusAndRestore(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/billing/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["subscribed"])
	require.Equal(t, "weight_tracker_monthly_subscription", body["productId"])

	// A purchase made on another device shows up via restore.
	env.gateway.Grant(app.ProductID)
	rec, body = env.do(t, http.MethodPost, "/api/billing/restore", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, true, body["subscribed"])
}

func TestBilling_PurchaseCancelled(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.gateway.Init(context.Background()))
	env.gateway.PurchaseErr = &domain.PurchaseError{Code: domain.PurchaseCodeCancelled}

	rec, body := env.do(t, http.MethodPost, "/api/billing/purchase", nil)
	require.Equal(t, http.StatusOK, rec.Code, "cancellation is not an error")
	require.Equal(t, "cancelled", body["outcome"])
	require.Equal(t, false, body["subscribed"])
}

func TestBilling_PurchaseUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.gateway.Init(context.Background()))
	env.gateway.PurchaseErr = &domain.PurchaseError{Code: domain.PurchaseCodeItemUnavailable}

	rec, _ := env.do(t, http.MethodPost, "/api/billing/purchase", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodDelete, "/api/bmi", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/billing/purchase", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
