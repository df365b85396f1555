package app

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// ErrBadMeasurementUnit indicates an unknown measurement system.
var ErrBadMeasurementUnit = errors.New(`measurement unit must be "metric" or "imperial"`)

// SettingsService reads and writes the user profile and the app
// settings through the store. Each key is independent; missing keys
// fall back to defaults.
type SettingsService struct {
	store domain.Store
	log   *zap.Logger
}

// NewSettingsService creates a SettingsService backed by the given store.
func NewSettingsService(store domain.Store, log *zap.Logger) *SettingsService {
	return &SettingsService{store: store, log: log}
}

// Profile returns the stored body measurements. Missing or unreadable
// values are reported as zero.
func (s *SettingsService) Profile(ctx context.Context) domain.UserProfile {
	return domain.UserProfile{
		HeightCm: s.floatValue(ctx, domain.KeyUserHeight),
		WeightKg: s.floatValue(ctx, domain.KeyUserWeight),
	}
}

// SetProfile validates and stores the body measurements.
func (s *SettingsService) SetProfile(ctx context.Context, heightCm, weightKg float64) error {
	if err := domain.ValidateHeight(heightCm); err != nil {
		return err
	}
	if err := domain.ValidateWeight(weightKg); err != nil {
		return err
	}
	if err := s.store.Set(ctx, domain.KeyUserHeight, formatFloat(heightCm)); err != nil {
		return err
	}
	return s.store.Set(ctx, domain.KeyUserWeight, formatFloat(weightKg))
}

// FirstLaunch reports whether the one-time setup flow has not completed
// yet. A missing flag means a fresh install.
func (s *SettingsService) FirstLaunch(ctx context.Context) bool {
	v, ok, err := s.store.Get(ctx, domain.KeyFirstLaunch)
	if err != nil {
		s.log.Warn("reading first-launch flag failed", zap.Error(err))
		return false
	}
	return !ok || v != "false"
}

// CompleteSetup stores the initial measurements and clears the
// first-launch flag.
func (s *SettingsService) CompleteSetup(ctx context.Context, heightCm, weightKg float64) error {
	if err := s.SetProfile(ctx, heightCm, weightKg); err != nil {
		return err
	}
	return s.store.Set(ctx, domain.KeyFirstLaunch, "false")
}

// MeasurementUnit returns the display measurement system, defaulting
// to metric.
func (s *SettingsService) MeasurementUnit(ctx context.Context) string {
	v, ok, err := s.store.Get(ctx, domain.KeyMeasurementUnit)
	if err != nil {
		s.log.Warn("reading measurement unit failed", zap.Error(err))
	}
	if !ok || (v != domain.MeasurementMetric && v != domain.MeasurementImperial) {
		return domain.MeasurementMetric
	}
	return v
}

// SetMeasurementUnit stores the display measurement system.
func (s *SettingsService) SetMeasurementUnit(ctx context.Context, system string) error {
	if system != domain.MeasurementMetric && system != domain.MeasurementImperial {
		return ErrBadMeasurementUnit
	}
	return s.store.Set(ctx, domain.KeyMeasurementUnit, system)
}

// Language returns the stored ISO language code, defaulting to "en".
func (s *SettingsService) Language(ctx context.Context) string {
	v, ok, err := s.store.Get(ctx, domain.KeyAppLanguage)
	if err != nil {
		s.log.Warn("reading app language failed", zap.Error(err))
	}
	if !ok || v == "" {
		return "en"
	}
	return v
}

// SetLanguage stores the ISO language code.
func (s *SettingsService) SetLanguage(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("language code must not be empty")
	}
	return s.store.Set(ctx, domain.KeyAppLanguage, code)
}

func (s *SettingsService) floatValue(ctx context.Context, key string) float64 {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("reading stored value failed", zap.String("key", key), zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.log.Warn("stored value is not a number", zap.String("key", key), zap.Error(err))
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
