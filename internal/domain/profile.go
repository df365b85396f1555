package domain

import "errors"

var (
	// ErrHeightOutOfRange indicates a height outside the accepted range.
	ErrHeightOutOfRange = errors.New("height must be between 100 and 250 cm")
	// ErrWeightOutOfRange indicates a weight outside the accepted range.
	ErrWeightOutOfRange = errors.New("weight must be between 20 and 200 kg")
)

// UserProfile holds the user's body measurements. The weight mirrors
// the most recent journal entry.
type UserProfile struct {
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
}

// ValidateHeight checks a height in centimeters against the accepted
// range [100, 250].
func ValidateHeight(cm float64) error {
	if cm < 100 || cm > 250 {
		return ErrHeightOutOfRange
	}
	return nil
}

// ValidateWeight checks a weight in kilograms against the accepted
// range [20, 200].
func ValidateWeight(kg float64) error {
	if kg < 20 || kg > 200 {
		return ErrWeightOutOfRange
	}
	return nil
}
