// Package server provides the HTTP API for claim scoring and reunification.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/claims"
	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/disaster"
	"github.com/RameshMYatnalli/new-claimsat/internal/metrics"
	"github.com/RameshMYatnalli/new-claimsat/internal/reunify"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Services bundles the domain services the API exposes.
type Services struct {
	Claims    *claims.Service
	Reunify   *reunify.Service
	Disasters *disaster.Service
	Storage   storage.Storage
}

// Server is the HTTP server for the claimsat API.
type Server struct {
	svc      Services
	config   *config.Config
	limiter  *clientLimiter
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer exposes the given registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a server with the given dependencies.
func NewServer(svc Services, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:      svc,
		config:   cfg,
		limiter:  newClientLimiter(cfg.Server.UploadRatePerSecond, cfg.Server.UploadBurst),
		gatherer: prometheus.DefaultGatherer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route tree. It is exposed for tests and embedding.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler(s.gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/claims", func(r chi.Router) {
			r.Post("/", s.handleCreateClaim)
			r.Get("/", s.handleListClaims)
			r.Get("/{id}", s.handleGetClaim)
			r.Post("/{id}/evidence", s.handleUploadEvidence)
			r.Post("/{id}/score", s.handleScoreClaim)
			r.Get("/{id}/events", s.handleListClaimEvents)
		})

		r.Route("/reunify", func(r chi.Router) {
			r.Post("/missing-persons", s.handleRegisterMissingPerson)
			r.Get("/missing-persons", s.handleListMissingPersons)
			r.Get("/missing-persons/{id}", s.handleGetMissingPerson)
			r.Get("/missing-persons/{id}/matches", s.handleMatchesForMissingPerson)

			r.Post("/survivors", s.handleRegisterSurvivor)
			r.Get("/survivors", s.handleListSurvivors)
			r.Get("/survivors/{id}", s.handleGetSurvivor)
			r.Get("/survivors/{id}/matches", s.handleMatchesForSurvivor)

			r.Get("/matches", s.handleListMatches)
			r.Post("/matches/{id}/verify", s.handleVerifyMatch)
		})

		r.Route("/disasters", func(r chi.Router) {
			r.Post("/", s.handleCreateDisaster)
			r.Get("/", s.handleListDisasters)
			r.Get("/{id}", s.handleGetDisaster)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
