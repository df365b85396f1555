package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// MaxEntriesPerDay caps how many entries may share one calendar day.
const MaxEntriesPerDay = 5

var (
	// ErrDailyLimitExceeded indicates the day already has the maximum
	// number of entries.
	ErrDailyLimitExceeded = errors.New("daily entry limit exceeded")
	// ErrFutureDate indicates the entry's day falls after today.
	ErrFutureDate = errors.New("entry date is in the future")
	// ErrEntryNotFound indicates no entry matches the target timestamp.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrDuplicateTimestamp indicates the timestamp is already taken.
	// Timestamps are the entry identity, so they must stay unique.
	ErrDuplicateTimestamp = errors.New("entry timestamp already exists")
)

// AddEntry returns a new collection with an entry for the given
// measurement appended and the ordering invariant restored. The day is
// derived from the timestamp. The input slice is not mutated.
func AddEntry(entries []domain.WeightEntry, weightKg float64, timestamp int64, c domain.Case, now time.Time) ([]domain.WeightEntry, error) {
	day := domain.DayOfTimestamp(timestamp)
	if DateInFuture(time.UnixMilli(timestamp).In(now.Location()), now) {
		return nil, ErrFutureDate
	}

	sameDay := 0
	for _, e := range entries {
		if e.Timestamp == timestamp {
			return nil, ErrDuplicateTimestamp
		}
		if e.Day == day {
			sameDay++
		}
	}
	if sameDay >= MaxEntriesPerDay {
		return nil, ErrDailyLimitExceeded
	}

	out := make([]domain.WeightEntry, len(entries), len(entries)+1)
	copy(out, entries)
	out = append(out, domain.WeightEntry{
		Day:       day,
		Timestamp: timestamp,
		Weight:    weightKg,
		Case:      c,
	})
	domain.SortEntries(out)
	return out, nil
}

// EditEntry returns a new collection with the entry identified by
// targetTimestamp replaced. The day is re-derived from the new
// timestamp. The daily cap is enforced on creation only, so moving an
// entry onto a full day is allowed.
func EditEntry(entries []domain.WeightEntry, targetTimestamp int64, newWeightKg float64, newTimestamp int64, newCase domain.Case, now time.Time) ([]domain.WeightEntry, error) {
	if DateInFuture(time.UnixMilli(newTimestamp).In(now.Location()), now) {
		return nil, ErrFutureDate
	}

	idx := -1
	for i, e := range entries {
		if e.Timestamp == targetTimestamp {
			idx = i
		} else if e.Timestamp == newTimestamp {
			return nil, ErrDuplicateTimestamp
		}
	}
	if idx == -1 {
		return nil, ErrEntryNotFound
	}

	out := make([]domain.WeightEntry, len(entries))
	copy(out, entries)
	out[idx] = domain.WeightEntry{
		Day:       domain.DayOfTimestamp(newTimestamp),
		Timestamp: newTimestamp,
		Weight:    newWeightKg,
		Case:      newCase,
	}
	domain.SortEntries(out)
	return out, nil
}

// DeleteEntry returns a new collection without the entry identified by
// targetTimestamp. Deleting a missing entry is a no-op.
func DeleteEntry(entries []domain.WeightEntry, targetTimestamp int64) []domain.WeightEntry {
	out := make([]domain.WeightEntry, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp != targetTimestamp {
			out = append(out, e)
		}
	}
	return out
}

// JournalService owns the weight entry collection: it enforces the
// mutation invariants, serializes writes so concurrent mutations cannot
// lose updates, and persists through the store. When persistence fails
// the in-memory collection remains the source of truth for the session.
type JournalService struct {
	store domain.Store
	log   *zap.Logger
	now   func() time.Time

	mu      sync.Mutex
	entries []domain.WeightEntry
	loaded  bool
}

// NewJournalService creates a JournalService backed by the given store.
func NewJournalService(store domain.Store, log *zap.Logger) *JournalService {
	return &JournalService{store: store, log: log, now: time.Now}
}

// Load reads the persisted collection. Stored tags are normalized to
// known cases and the ordering invariant is restored.
func (s *JournalService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *JournalService) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	raw, ok, err := s.store.Get(ctx, domain.KeyWeightEntries)
	if err != nil {
		s.log.Warn("loading weight entries failed, starting from memory", zap.Error(err))
		s.loaded = true
		return err
	}
	if ok {
		var entries []domain.WeightEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			s.log.Warn("stored weight entries are corrupt, starting from memory", zap.Error(err))
		} else {
			for i := range entries {
				entries[i].Case = domain.ParseCase(string(entries[i].Case))
			}
			domain.SortEntries(entries)
			s.entries = entries
		}
	}
	s.loaded = true
	return nil
}

// Entries returns a snapshot copy of the collection.
func (s *JournalService) Entries(ctx context.Context) []domain.WeightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.load(ctx)

	out := make([]domain.WeightEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Add records a new measurement. On success the profile weight is
// updated when the new entry is the most recent one.
func (s *JournalService) Add(ctx context.Context, weightKg float64, timestamp int64, c domain.Case) (domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.load(ctx)

	next, err := AddEntry(s.entries, weightKg, timestamp, c, s.now())
	if err != nil {
		return domain.WeightEntry{}, err
	}
	s.entries = next
	s.persist(ctx)

	added := domain.WeightEntry{
		Day:       domain.DayOfTimestamp(timestamp),
		Timestamp: timestamp,
		Weight:    weightKg,
		Case:      c,
	}
	if latest, ok := domain.LatestEntry(s.entries); ok && latest.Timestamp == timestamp {
		if err := s.store.Set(ctx, domain.KeyUserWeight, strconv.FormatFloat(weightKg, 'f', -1, 64)); err != nil {
			s.log.Warn("updating profile weight failed", zap.Error(err))
		}
	}
	return added, nil
}

// Edit replaces the weight, timestamp and case of the entry identified
// by targetTimestamp.
func (s *JournalService) Edit(ctx context.Context, targetTimestamp int64, newWeightKg float64, newTimestamp int64, newCase domain.Case) (domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.load(ctx)

	next, err := EditEntry(s.entries, targetTimestamp, newWeightKg, newTimestamp, newCase, s.now())
	if err != nil {
		return domain.WeightEntry{}, err
	}
	s.entries = next
	s.persist(ctx)

	return domain.WeightEntry{
		Day:       domain.DayOfTimestamp(newTimestamp),
		Timestamp: newTimestamp,
		Weight:    newWeightKg,
		Case:      newCase,
	}, nil
}

// Delete removes the entry identified by targetTimestamp. Removing a
// missing entry succeeds silently.
func (s *JournalService) Delete(ctx context.Context, targetTimestamp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.load(ctx)

	s.entries = DeleteEntry(s.entries, targetTimestamp)
	s.persist(ctx)
}

// persist writes the collection; failures are logged and the in-memory
// state carries the session (no retry).
func (s *JournalService) persist(ctx context.Context) {
	raw, err := json.Marshal(s.entries)
	if err != nil {
		s.log.Error("encoding weight entries failed", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, domain.KeyWeightEntries, string(raw)); err != nil {
		s.log.Warn("persisting weight entries failed, keeping in-memory state", zap.Error(err))
	}
}
