package app_test

import (
	"errors"
	"testing"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func sampleEntries() []domain.WeightEntry {
	// Stored order: day ascending, newest-first within a day.
	return []domain.WeightEntry{
		{Day: "2024-01-01", Timestamp: 2000, Weight: 71.0, Case: domain.CaseAfterMeal},
		{Day: "2024-01-01", Timestamp: 1000, Weight: 70.0, Case: domain.CaseEmptyStomach},
		{Day: "2024-01-03", Timestamp: 3000, Weight: 70.5, Case: domain.CaseAfterWorkout},
		{Day: "2024-01-08", Timestamp: 4000, Weight: 69.8, Case: domain.CaseNone},
		{Day: "2024-02-02", Timestamp: 5000, Weight: 69.0, Case: domain.CaseEmptyStomach},
	}
}

func TestAggregateByPeriod_Day(t *testing.T) {
	entries := sampleEntries()
	buckets, err := app.AggregateByPeriod(entries, "2024-01-01", "2024-01-31", app.GranularityDay, domain.AllCases())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	first := buckets[0]
	if first.Key != "2024-01-01" {
		t.Errorf("first bucket key = %q", first.Key)
	}
	if first.Average != 70.5 || first.Low != 70.0 || first.High != 71.0 || first.Count != 2 {
		t.Errorf("unexpected stats: %+v", first)
	}
	// Open/close follow stored order.
	if first.Open != 71.0 || first.Close != 70.0 {
		t.Errorf("open/close = %v/%v; want 71/70", first.Open, first.Close)
	}
}

func TestAggregateByPeriod_CaseFilter(t *testing.T) {
	entries := sampleEntries()
	buckets, err := app.AggregateByPeriod(entries, "2024-01-01", "2024-01-01", app.GranularityDay,
		domain.NewCaseSet(domain.CaseAfterMeal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Average != 71.0 || buckets[0].Count != 1 {
		t.Errorf("filtered stats: %+v", buckets[0])
	}
}

func TestAggregateByPeriod_EmptyFilter(t *testing.T) {
	_, err := app.AggregateByPeriod(sampleEntries(), "2024-01-01", "2024-01-31", app.GranularityDay, nil)
	if !errors.Is(err, app.ErrEmptyCaseFilter) {
		t.Fatalf("expected ErrEmptyCaseFilter, got %v", err)
	}
}

func TestAggregateByPeriod_FilteredOutBucketOmitted(t *testing.T) {
	// 2024-01-03 has only an after_workout entry; filtering it away
	// must omit the bucket entirely rather than emit zeros.
	buckets, err := app.AggregateByPeriod(sampleEntries(), "2024-01-01", "2024-01-31", app.GranularityDay,
		domain.NewCaseSet(domain.CaseEmptyStomach, domain.CaseAfterMeal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range buckets {
		if b.Key == "2024-01-03" {
			t.Errorf("bucket %q should be omitted", b.Key)
		}
	}
}

func TestAggregateByPeriod_WeekAndMonth(t *testing.T) {
	entries := sampleEntries()

	// 2024-01-01 is a Monday, so its week starts Sunday 2023-12-31;
	// 2024-01-08 is the following Monday (week of 2024-01-07).
	weeks, err := app.AggregateByPeriod(entries, "2024-01-01", "2024-01-31", app.GranularityWeek, domain.AllCases())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 week buckets, got %d", len(weeks))
	}
	if weeks[0].Key != "2023-12-31" || weeks[1].Key != "2024-01-07" {
		t.Errorf("week keys = %q, %q", weeks[0].Key, weeks[1].Key)
	}
	if weeks[0].Count != 3 {
		t.Errorf("first week count = %d; want 3", weeks[0].Count)
	}

	months, err := app.AggregateByPeriod(entries, "2024-01-01", "2024-02-28", app.GranularityMonth, domain.AllCases())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 2 || months[0].Key != "2024-01-01" || months[1].Key != "2024-02-01" {
		t.Errorf("month buckets = %+v", months)
	}
}

func TestAggregateByPeriod_Invariants(t *testing.T) {
	entries := sampleEntries()
	before := make([]domain.WeightEntry, len(entries))
	copy(before, entries)

	buckets, err := app.AggregateByPeriod(entries, "2024-01-01", "2024-12-31", app.GranularityDay, domain.AllCases())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range buckets {
		if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
			t.Errorf("bucket %q violates low <= open,close <= high: %+v", b.Key, b)
		}
		if i > 0 && buckets[i-1].Key >= b.Key {
			t.Errorf("bucket keys not strictly ascending at %d", i)
		}
	}
	for i := range entries {
		if entries[i] != before[i] {
			t.Fatal("input collection was mutated")
		}
	}
}

func TestMovingAverage(t *testing.T) {
	buckets := []app.Bucket{
		{Key: "2024-01-01", Close: 70},
		{Key: "2024-01-02", Close: 71},
		{Key: "2024-01-04", Close: 72},
		{Key: "2024-01-05", Close: 73},
	}

	points := app.MovingAverage(buckets, 2)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	want := []struct {
		key   string
		value float64
	}{
		{"2024-01-02", 70.5},
		{"2024-01-04", 71.5}, // positional window, gaps not backfilled
		{"2024-01-05", 72.5},
	}
	for i, w := range want {
		if points[i].Key != w.key || points[i].Value != w.value {
			t.Errorf("point %d = %+v; want %+v", i, points[i], w)
		}
	}

	if got := app.MovingAverage(buckets, 5); got != nil {
		t.Errorf("window larger than data should yield nil, got %v", got)
	}
	if got := app.MovingAverage(buckets, 0); got != nil {
		t.Errorf("non-positive window should yield nil, got %v", got)
	}
}

func TestParseGranularity(t *testing.T) {
	if g, err := app.ParseGranularity(""); err != nil || g != app.GranularityDay {
		t.Errorf("empty granularity = %v, %v", g, err)
	}
	if _, err := app.ParseGranularity("year"); err == nil {
		t.Error("expected error for unknown granularity")
	}
}
