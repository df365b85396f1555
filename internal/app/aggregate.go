// Package app holds the application services and business logic.
package app

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"weightlog/internal/domain"
)

// Granularity selects the bucketing unit for aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a query value to a Granularity. An empty value
// defaults to day.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(s), nil
	case "":
		return GranularityDay, nil
	}
	return "", fmt.Errorf("granularity must be day, week or month, got %q", s)
}

// ErrEmptyCaseFilter indicates an aggregation request with no case
// tags selected. The filter set must never be empty.
var ErrEmptyCaseFilter = errors.New("case filter must not be empty")

// Bucket is one aggregated unit (day, week or month) of weight entries.
// Open and close follow the stored order of the collection.
type Bucket struct {
	Key     string  `json:"key"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Close   float64 `json:"close"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AggregateByPeriod filters entries to [startDay, endDay] and the given
// case set, groups them by bucket key, and computes per-bucket
// statistics. Buckets with no matching entries are omitted. The input
// collection is never mutated or reordered.
func AggregateByPeriod(entries []domain.WeightEntry, startDay, endDay string, g Granularity, filter domain.CaseSet) ([]Bucket, error) {
	if len(filter) == 0 {
		return nil, ErrEmptyCaseFilter
	}

	weights := make(map[string][]float64)
	for _, e := range entries {
		if e.Day < startDay || e.Day > endDay {
			continue
		}
		if !filter.Has(domain.ParseCase(string(e.Case))) {
			continue
		}
		key, err := bucketKey(e.Day, g)
		if err != nil {
			return nil, err
		}
		weights[key] = append(weights[key], e.Weight)
	}

	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		ws := weights[k]
		b := Bucket{
			Key:   k,
			Open:  ws[0],
			High:  ws[0],
			Low:   ws[0],
			Close: ws[len(ws)-1],
			Count: len(ws),
		}
		var sum float64
		for _, w := range ws {
			if w > b.High {
				b.High = w
			}
			if w < b.Low {
				b.Low = w
			}
			sum += w
		}
		b.Average = sum / float64(len(ws))
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// bucketKey normalizes a day string to its bucket key: the day itself,
// the Sunday starting its week, or the first of its month.
func bucketKey(day string, g Granularity) (string, error) {
	if g == GranularityDay {
		return day, nil
	}
	d, err := domain.ParseDay(day)
	if err != nil {
		return "", fmt.Errorf("bad day %q: %w", day, err)
	}
	switch g {
	case GranularityWeek:
		return d.AddDate(0, 0, -int(d.Weekday())).Format(domain.DayFormat), nil
	case GranularityMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).Format(domain.DayFormat), nil
	}
	return "", fmt.Errorf("unknown granularity %q", g)
}

// MovingAveragePoint pairs a bucket key with a trailing average of
// bucket closes.
type MovingAveragePoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// MovingAverage computes a simple trailing moving average of Close over
// window consecutive buckets by position. Gaps between bucket keys are
// not backfilled, and no point is produced for the first window-1
// positions.
func MovingAverage(buckets []Bucket, window int) []MovingAveragePoint {
	if window < 1 || len(buckets) < window {
		return nil
	}

	points := make([]MovingAveragePoint, 0, len(buckets)-window+1)
	var sum float64
	for i, b := range buckets {
		sum += b.Close
		if i >= window {
			sum -= buckets[i-window].Close
		}
		if i >= window-1 {
			points = append(points, MovingAveragePoint{
				Key:   b.Key,
				Value: sum / float64(window),
			})
		}
	}
	return points
}
