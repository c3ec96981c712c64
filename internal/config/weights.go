package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration marks a configuration that must stop startup.
var ErrConfiguration = errors.New("invalid configuration")

const weightTolerance = 1e-6

// ScoringConfig holds the claim factor weights and the disaster resolution thresholds.
type ScoringConfig struct {
	LocationWeight     float64 `yaml:"location_weight"`
	TimeWeight         float64 `yaml:"time_weight"`
	EvidenceTypeWeight float64 `yaml:"evidence_type_weight"`
	VisualWeight       float64 `yaml:"visual_weight"`
	MetadataWeight     float64 `yaml:"metadata_weight"`

	MaxDistanceKm float64 `yaml:"max_distance_km"`

	// MaxDaysBefore is how many whole days before a disaster still earn credit.
	// Zero keeps only incidents less than a day early. ApplyDefaults fills 1,
	// but an explicit 0 in a config file is kept.
	MaxDaysBefore      int     `yaml:"max_days_before"`
	MaxDaysAfter       int     `yaml:"max_days_after"`
	ResolveMinCombined float64 `yaml:"resolve_min_combined"`
}

func (s *ScoringConfig) weights() map[string]float64 {
	return map[string]float64{
		"location_weight":      s.LocationWeight,
		"time_weight":          s.TimeWeight,
		"evidence_type_weight": s.EvidenceTypeWeight,
		"visual_weight":        s.VisualWeight,
		"metadata_weight":      s.MetadataWeight,
	}
}

// Validate returns ErrConfiguration when the weights do not sum to 1.0 or a threshold is out of range.
func (s *ScoringConfig) Validate() error {
	if err := validateWeights("scoring", s.weights()); err != nil {
		return err
	}
	switch {
	case s.MaxDistanceKm <= 0:
		return fmt.Errorf("%w: scoring.max_distance_km must be positive", ErrConfiguration)
	case s.MaxDaysBefore < 0:
		return fmt.Errorf("%w: scoring.max_days_before must not be negative", ErrConfiguration)
	case s.MaxDaysAfter <= 0:
		return fmt.Errorf("%w: scoring.max_days_after must be positive", ErrConfiguration)
	case s.ResolveMinCombined < 0 || s.ResolveMinCombined > 100:
		return fmt.Errorf("%w: scoring.resolve_min_combined must be within [0, 100]", ErrConfiguration)
	}
	return nil
}

// MatchingConfig holds the person-match factor weights and thresholds.
type MatchingConfig struct {
	NameWeight     float64 `yaml:"name_weight"`
	AgeWeight      float64 `yaml:"age_weight"`
	GenderWeight   float64 `yaml:"gender_weight"`
	LocationWeight float64 `yaml:"location_weight"`
	PhysicalWeight float64 `yaml:"physical_weight"`

	AgeTolerance        int     `yaml:"age_tolerance"`
	LocationThresholdKm float64 `yaml:"location_threshold_km"`
	MinConfidence       float64 `yaml:"min_confidence"`
	// Workers bounds concurrent candidate evaluation. Zero means unbounded;
	// ApplyDefaults fills 8, but an explicit 0 in a config file is kept.
	Workers int `yaml:"workers"`
}

func (m *MatchingConfig) weights() map[string]float64 {
	return map[string]float64{
		"name_weight":     m.NameWeight,
		"age_weight":      m.AgeWeight,
		"gender_weight":   m.GenderWeight,
		"location_weight": m.LocationWeight,
		"physical_weight": m.PhysicalWeight,
	}
}

// Validate returns ErrConfiguration when the weights do not sum to 1.0 or a threshold is out of range.
func (m *MatchingConfig) Validate() error {
	if err := validateWeights("matching", m.weights()); err != nil {
		return err
	}
	switch {
	case m.AgeTolerance <= 0:
		return fmt.Errorf("%w: matching.age_tolerance must be positive", ErrConfiguration)
	case m.LocationThresholdKm <= 0:
		return fmt.Errorf("%w: matching.location_threshold_km must be positive", ErrConfiguration)
	case m.MinConfidence < 0 || m.MinConfidence > 100:
		return fmt.Errorf("%w: matching.min_confidence must be within [0, 100]", ErrConfiguration)
	case m.Workers < 0:
		return fmt.Errorf("%w: matching.workers must not be negative", ErrConfiguration)
	}
	return nil
}

func validateWeights(group string, weights map[string]float64) error {
	var sum float64
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %s.%s must be a non-negative number", ErrConfiguration, group, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: %s weights sum to %.6f, want 1.0", ErrConfiguration, group, sum)
	}
	return nil
}
