package app

import "time"

// historyMonths is how many calendar months of history, counted back
// from the first of the current month, a non-subscriber may reach.
const historyMonths = 3

// DateAccessible reports whether day may be viewed or edited given the
// subscription state. Subscribers always have access; everyone else can
// reach the current month plus the previous three calendar months. The
// cutoff is calendar arithmetic, not a fixed day count, so on any day
// of month M the whole of M-3 is still visible.
func DateAccessible(day, today time.Time, subscribed bool) bool {
	if subscribed {
		return true
	}
	cutoff := time.Date(today.Year(), today.Month()-historyMonths, 1, 0, 0, 0, 0, today.Location())
	return !startOfDay(day).Before(cutoff)
}

// AccessCutoff returns the earliest accessible day for a non-subscriber.
func AccessCutoff(today time.Time) time.Time {
	return time.Date(today.Year(), today.Month()-historyMonths, 1, 0, 0, 0, 0, today.Location())
}

// DateInFuture reports whether day falls strictly after today, ignoring
// time-of-day. Entry creation and edits are rejected for future days
// regardless of subscription tier.
func DateInFuture(day, today time.Time) bool {
	return startOfDay(day).After(startOfDay(today))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
