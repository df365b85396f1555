package domain

import "context"

// Store is the port for the string-keyed JSON value store. Keys are
// independent; there is no transactional guarantee across them.
type Store interface {
	// Get returns the stored value for key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Persisted keys.
const (
	KeyWeightEntries      = "weightEntries"
	KeyUserHeight         = "userHeight"
	KeyUserWeight         = "userWeight"
	KeyFirstLaunch        = "isFirstLaunch"
	KeyMeasurementUnit    = "measurementUnit"
	KeyAppLanguage        = "appLanguage"
	KeySubscriptionStatus = "user_subscription_status"
)
