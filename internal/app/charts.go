package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weightlog/internal/domain"
)

// EntrySource supplies a snapshot of the entry collection.
type EntrySource interface {
	Entries(ctx context.Context) []domain.WeightEntry
}

// SubscriptionSource supplies the current subscription flag.
type SubscriptionSource interface {
	Subscribed(ctx context.Context) bool
}

// ChartsService builds display-ready aggregates from the journal. For
// non-subscribers the requested range is clipped to the accessible
// history window before aggregating.
type ChartsService struct {
	entries EntrySource
	subs    SubscriptionSource
	now     func() time.Time
}

// NewChartsService creates a ChartsService over the given sources.
func NewChartsService(entries EntrySource, subs SubscriptionSource) *ChartsService {
	return &ChartsService{entries: entries, subs: subs, now: time.Now}
}

// Candles returns per-bucket statistics for the inclusive day range,
// with weights converted to the requested unit ("kg" or "lb").
func (s *ChartsService) Candles(ctx context.Context, startDay, endDay string, g Granularity, filter domain.CaseSet, unit string) ([]Bucket, error) {
	if unit != "kg" && unit != "lb" {
		return nil, errors.New(`unit must be "kg" or "lb"`)
	}
	start, err := domain.ParseDay(startDay)
	if err != nil {
		return nil, fmt.Errorf("bad start day %q: %w", startDay, err)
	}
	if _, err := domain.ParseDay(endDay); err != nil {
		return nil, fmt.Errorf("bad end day %q: %w", endDay, err)
	}

	today := s.now()
	if !s.subs.Subscribed(ctx) {
		if cutoff := AccessCutoff(today); start.Before(cutoff) {
			startDay = cutoff.Format(domain.DayFormat)
		}
	}

	buckets, err := AggregateByPeriod(s.entries.Entries(ctx), startDay, endDay, g, filter)
	if err != nil {
		return nil, err
	}
	if unit != "kg" {
		for i := range buckets {
			buckets[i].Open = domain.ConvertWeight(buckets[i].Open, "kg", unit)
			buckets[i].High = domain.ConvertWeight(buckets[i].High, "kg", unit)
			buckets[i].Low = domain.ConvertWeight(buckets[i].Low, "kg", unit)
			buckets[i].Close = domain.ConvertWeight(buckets[i].Close, "kg", unit)
			buckets[i].Average = domain.ConvertWeight(buckets[i].Average, "kg", unit)
		}
	}
	return buckets, nil
}

// Trend returns the trailing moving average of bucket closes for the
// same range and filtering as Candles.
func (s *ChartsService) Trend(ctx context.Context, startDay, endDay string, g Granularity, filter domain.CaseSet, unit string, window int) ([]MovingAveragePoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("window must be >= 1, got %d", window)
	}
	buckets, err := s.Candles(ctx, startDay, endDay, g, filter, unit)
	if err != nil {
		return nil, err
	}
	return MovingAverage(buckets, window), nil
}
