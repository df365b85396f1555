// Package domain contains the core business entities and ports.
package domain

import (
	"sort"
	"time"
)

// DayFormat is the layout of calendar day strings ("YYYY-MM-DD").
const DayFormat = "2006-01-02"

// Case is the meal-relative context tag attached to a weight entry.
type Case string

const (
	CaseEmptyStomach Case = "empty_stomach"
	CaseAfterMeal    Case = "after_meal"
	CaseAfterWorkout Case = "after_workout"
	CaseNone         Case = "none"
)

// CaseInfo is the display metadata for a case tag.
type CaseInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Tint  string `json:"tint"`
}

var caseInfos = map[Case]CaseInfo{
	CaseEmptyStomach: {Label: "Empty stomach", Color: "#007AFF", Tint: "#007AFF1F"},
	CaseAfterMeal:    {Label: "After meal", Color: "#34C759", Tint: "#34C7591F"},
	CaseAfterWorkout: {Label: "After workout", Color: "#FF9500", Tint: "#FF95001F"},
	CaseNone:         {Label: "Not selected", Color: "#5856D6", Tint: "#5856D61F"},
}

// Cases returns every case tag in display order.
func Cases() []Case {
	return []Case{CaseEmptyStomach, CaseAfterMeal, CaseAfterWorkout, CaseNone}
}

// Valid reports whether c is one of the known case tags.
func (c Case) Valid() bool {
	_, ok := caseInfos[c]
	return ok
}

// Info returns the display metadata for c, falling back to the
// CaseNone styling for unknown tags.
func (c Case) Info() CaseInfo {
	if info, ok := caseInfos[c]; ok {
		return info
	}
	return caseInfos[CaseNone]
}

// ParseCase maps a stored tag to a Case. Absent or unknown tags
// default to CaseNone.
func ParseCase(s string) Case {
	c := Case(s)
	if !c.Valid() {
		return CaseNone
	}
	return c
}

// CaseSet is a set of case tags used to filter aggregation input.
type CaseSet map[Case]bool

// NewCaseSet builds a CaseSet from the given tags.
func NewCaseSet(cases ...Case) CaseSet {
	s := make(CaseSet, len(cases))
	for _, c := range cases {
		s[c] = true
	}
	return s
}

// AllCases returns a CaseSet containing every case tag.
func AllCases() CaseSet {
	return NewCaseSet(Cases()...)
}

// Has reports whether c is in the set.
func (s CaseSet) Has(c Case) bool {
	return s[c]
}

// WeightEntry is one timestamped weight measurement. The timestamp is
// the entry's identity for edit and delete; Day is always derived from
// it so the two can never disagree.
type WeightEntry struct {
	Day       string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Weight    float64 `json:"weight"`
	Case      Case    `json:"case"`
}

// DayOfTimestamp returns the local calendar day of an epoch-millisecond
// timestamp.
func DayOfTimestamp(ms int64) string {
	return time.UnixMilli(ms).In(time.Local).Format(DayFormat)
}

// ParseDay parses a "YYYY-MM-DD" day string in the local timezone.
func ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, day, time.Local)
}

// SortEntries orders the collection by day ascending with entries for
// the same day newest-first. The sort is stable so ties keep their
// current relative order.
func SortEntries(entries []WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].Timestamp > entries[j].Timestamp
	})
}

// LatestEntry returns the most recent entry per the collection order
// (last day, highest timestamp). ok is false for an empty collection.
func LatestEntry(entries []WeightEntry) (WeightEntry, bool) {
	if len(entries) == 0 {
		return WeightEntry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Day > latest.Day || (e.Day == latest.Day && e.Timestamp > latest.Timestamp) {
			latest = e
		}
	}
	return latest, true
}
