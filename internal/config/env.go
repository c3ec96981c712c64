package config

import (
	"fmt"
	"strconv"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from environment variables such as LOCATION_WEIGHT or
// MONGODB_URL. Unset variables leave the YAML value in place.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"LOCATION_WEIGHT", &cfg.Scoring.LocationWeight},
		{"TIME_WEIGHT", &cfg.Scoring.TimeWeight},
		{"EVIDENCE_TYPE_WEIGHT", &cfg.Scoring.EvidenceTypeWeight},
		{"VISUAL_RELEVANCE_WEIGHT", &cfg.Scoring.VisualWeight},
		{"METADATA_INTEGRITY_WEIGHT", &cfg.Scoring.MetadataWeight},
		{"NAME_SIMILARITY_WEIGHT", &cfg.Matching.NameWeight},
		{"AGE_OVERLAP_WEIGHT", &cfg.Matching.AgeWeight},
		{"GENDER_WEIGHT", &cfg.Matching.GenderWeight},
		{"LOCATION_PROXIMITY_WEIGHT", &cfg.Matching.LocationWeight},
		{"PHYSICAL_DESC_WEIGHT", &cfg.Matching.PhysicalWeight},
		{"LOCATION_THRESHOLD_KM", &cfg.Matching.LocationThresholdKm},
	}
	for _, f := range floats {
		raw, ok := lookup(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrConfiguration, f.key, raw)
		}
		*f.dst = v
	}

	if raw, ok := lookup("AGE_TOLERANCE"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: AGE_TOLERANCE=%q is not an integer", ErrConfiguration, raw)
		}
		cfg.Matching.AgeTolerance = v
	}
	if raw, ok := lookup("MAX_UPLOAD_SIZE"); ok && raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MAX_UPLOAD_SIZE=%q is not an integer", ErrConfiguration, raw)
		}
		cfg.Server.MaxUploadBytes = v
	}
	if raw, ok := lookup("MONGODB_URL"); ok && raw != "" {
		cfg.Storage.MongoURI = raw
	}
	if raw, ok := lookup("DATABASE_NAME"); ok && raw != "" {
		cfg.Storage.MongoDatabase = raw
	}
	return nil
}
