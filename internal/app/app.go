// Package app wires configuration into the storage, media, cache, metrics,
// and domain services shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/RameshMYatnalli/new-claimsat/internal/cache"
	"github.com/RameshMYatnalli/new-claimsat/internal/claims"
	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/disaster"
	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/media"
	"github.com/RameshMYatnalli/new-claimsat/internal/metrics"
	"github.com/RameshMYatnalli/new-claimsat/internal/reunify"
	"github.com/RameshMYatnalli/new-claimsat/internal/server"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Components holds every initialized dependency. Close releases them.
type Components struct {
	Config    *config.Config
	Storage   storage.Storage
	Media     media.Store
	Cache     cache.Cache
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Claims    *claims.Service
	Reunify   *reunify.Service
	Disasters *disaster.Service

	closers []func() error
}

// Build opens the configured backends and constructs the services.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Components{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	store, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store
	c.closers = append(c.closers, store.Close)

	mediaStore, err := OpenMedia(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}
	c.Media = mediaStore

	c.Cache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	if cfg.Cache.RedisAddr != "" {
		shared, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			logger.Warn("redis cache unavailable, using memory only",
				zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		} else {
			c.closers = append(c.closers, shared.Close)
			c.Cache = cache.NewLayeredCache(c.Cache, shared)
		}
	}

	c.Metrics = metrics.NewMetrics()
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := c.Metrics.Register(c.Registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	resolver, err := disaster.NewResolver(store, cfg.Scoring)
	if err != nil {
		return nil, err
	}
	engine, err := claims.NewEngine(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	analyzer := evidence.NewAnalyzer(
		evidence.WithCache(c.Cache, cfg.Cache.TTL),
		evidence.WithLogger(logger),
	)
	c.Claims = claims.NewService(store, engine, resolver, analyzer, logger,
		claims.WithMedia(mediaStore),
		claims.WithMetrics(c.Metrics),
	)

	matcher, err := reunify.NewMatcher(cfg.Matching)
	if err != nil {
		return nil, err
	}
	c.Reunify = reunify.NewService(store, reunify.NewOrchestrator(matcher, cfg.Matching.Workers), logger,
		reunify.WithMetrics(c.Metrics),
	)
	c.Disasters = disaster.NewService(store, logger)

	ok = true
	return c, nil
}

// OpenStorage opens the record store selected by cfg.Driver.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "sqlite", "":
		s, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s, err := storage.NewMongoStorage(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage.driver %q", config.ErrConfiguration, cfg.Driver)
	}
}

// OpenMedia opens the media store selected by cfg.Driver.
func OpenMedia(cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Driver {
	case "fs", "":
		m, err := media.NewFSStore(cfg.Directory)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "s3":
		m, err := media.NewS3Store(media.S3Config{
			Bucket:          cfg.Bucket,
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: unknown media.driver %q", config.ErrConfiguration, cfg.Driver)
	}
}

// Server returns an HTTP server over the components.
func (c *Components) Server(logger *zap.Logger) *server.Server {
	return server.NewServer(server.Services{
		Claims:    c.Claims,
		Reunify:   c.Reunify,
		Disasters: c.Disasters,
		Storage:   c.Storage,
	}, c.Config, logger, server.WithGatherer(c.Registry))
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
