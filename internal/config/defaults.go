package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg. A weight group
// is only defaulted when all of its weights are zero, so a partial group fails
// validation instead of being silently completed.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.UploadRatePerSecond == 0 {
		cfg.Server.UploadRatePerSecond = 5
	}
	if cfg.Server.UploadBurst == 0 {
		cfg.Server.UploadBurst = 10
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/claimsat/data/db/claimsat.db"
	}
	if cfg.Storage.MongoURI == "" {
		cfg.Storage.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.Storage.MongoDatabase == "" {
		cfg.Storage.MongoDatabase = "claimsat_reunify"
	}

	if cfg.Media.Driver == "" {
		cfg.Media.Driver = "fs"
	}
	if cfg.Media.Directory == "" {
		cfg.Media.Directory = "/usr/local/var/claimsat/data/media"
	}
	if cfg.Media.Region == "" {
		cfg.Media.Region = "us-east-1"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = 10 * time.Minute
	}

	s := &cfg.Scoring
	if s.LocationWeight == 0 && s.TimeWeight == 0 && s.EvidenceTypeWeight == 0 &&
		s.VisualWeight == 0 && s.MetadataWeight == 0 {
		s.LocationWeight = 0.30
		s.TimeWeight = 0.20
		s.EvidenceTypeWeight = 0.15
		s.VisualWeight = 0.20
		s.MetadataWeight = 0.15
	}
	if s.MaxDistanceKm == 0 {
		s.MaxDistanceKm = 50
	}
	if s.MaxDaysBefore == 0 {
		s.MaxDaysBefore = 1
	}
	if s.MaxDaysAfter == 0 {
		s.MaxDaysAfter = 30
	}
	if s.ResolveMinCombined == 0 {
		s.ResolveMinCombined = 30
	}

	m := &cfg.Matching
	if m.NameWeight == 0 && m.AgeWeight == 0 && m.GenderWeight == 0 &&
		m.LocationWeight == 0 && m.PhysicalWeight == 0 {
		m.NameWeight = 0.30
		m.AgeWeight = 0.20
		m.GenderWeight = 0.10
		m.LocationWeight = 0.25
		m.PhysicalWeight = 0.15
	}
	if m.AgeTolerance == 0 {
		m.AgeTolerance = 3
	}
	if m.LocationThresholdKm == 0 {
		m.LocationThresholdKm = 50
	}
	if m.MinConfidence == 0 {
		m.MinConfidence = 30
	}
	if m.Workers == 0 {
		m.Workers = 8
	}

	if cfg.Inbox.Extensions == nil {
		cfg.Inbox.Extensions = []string{".jpg", ".jpeg", ".png", ".mp4", ".mov", ".avi"}
	}
	if cfg.Sweep.Schedule == "" {
		cfg.Sweep.Schedule = "*/15 * * * *"
	}
}
