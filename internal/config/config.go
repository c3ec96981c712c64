// Package config provides configuration loading and structs for the claimsat server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Media    MediaConfig    `yaml:"media"`
	Cache    CacheConfig    `yaml:"cache"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Matching MatchingConfig `yaml:"matching"`
	Inbox    InboxConfig    `yaml:"inbox"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                string  `yaml:"host"`
	Port                int     `yaml:"port"`
	UploadRatePerSecond float64 `yaml:"upload_rate_per_second"`
	UploadBurst         int     `yaml:"upload_burst"`
	MaxUploadBytes      int64   `yaml:"max_upload_bytes"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // sqlite or mongo
	DatabasePath  string `yaml:"database_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// MediaConfig selects where raw evidence bytes are kept.
type MediaConfig struct {
	Driver          string `yaml:"driver"` // fs or s3
	Directory       string `yaml:"directory"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// CacheConfig configures the evidence analysis cache. RedisAddr adds a shared layer.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	RedisAddr       string        `yaml:"redis_addr"`
}

// InboxConfig lists directories watched for evidence files. A file at
// <dir>/<claim_id>/<name> is attached to that claim.
type InboxConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// SweepConfig schedules periodic re-matching of open missing-person reports.
type SweepConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Load reads and parses the config file at path, expands paths, applies defaults
// and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := keepExplicitZeros(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Media.Directory = expandPath(cfg.Media.Directory, configDir)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], configDir)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// keepExplicitZeros restores settings for which zero is a meaningful value
// but ApplyDefaults treats it as unset: scoring.max_days_before (same-day
// tolerance only) and matching.workers (unbounded).
func keepExplicitZeros(data []byte, cfg *Config) error {
	var explicit struct {
		Scoring struct {
			MaxDaysBefore *int `yaml:"max_days_before"`
		} `yaml:"scoring"`
		Matching struct {
			Workers *int `yaml:"workers"`
		} `yaml:"matching"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return err
	}
	if v := explicit.Scoring.MaxDaysBefore; v != nil {
		cfg.Scoring.MaxDaysBefore = *v
	}
	if v := explicit.Matching.Workers; v != nil {
		cfg.Matching.Workers = *v
	}
	return nil
}

// Default returns a validated configuration built only from defaults and the
// environment. It is used when no config file exists.
func Default() (*Config, error) {
	var cfg Config
	ApplyDefaults(&cfg)
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. Weight groups that do not sum to 1.0 are
// rejected, never renormalized.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrConfiguration, c.Server.Port)
	}
	switch c.Storage.Driver {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrConfiguration, c.Storage.Driver)
	}
	switch c.Media.Driver {
	case "fs":
	case "s3":
		if c.Media.Bucket == "" {
			return fmt.Errorf("%w: media.bucket is required for the s3 driver", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown media.driver %q", ErrConfiguration, c.Media.Driver)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	return c.Matching.Validate()
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
