// Package sweep periodically re-runs matching for every open missing-person
// report so that survivors registered later are picked up.
package sweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/RameshMYatnalli/new-claimsat/internal/metrics"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs a sweep every 15 minutes.
const DefaultSchedule = "*/15 * * * *"

// Matcher is the part of the reunification service a sweep drives.
type Matcher interface {
	OpenMissingPersons(ctx context.Context) ([]*models.MissingPerson, error)
	FindMatchesForMissingPerson(ctx context.Context, personID string, minConfidence float64) ([]*models.Match, error)
}

// Result summarizes one sweep.
type Result struct {
	Persons  int `json:"persons"`
	Matches  int `json:"matches"`
	Failures int `json:"failures"`
}

// Sweeper runs sweeps on demand or on a cron schedule.
type Sweeper struct {
	matcher       Matcher
	minConfidence float64
	metrics       *metrics.Metrics
	logger        *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a sweeper. m may be nil.
func New(matcher Matcher, minConfidence float64, m *metrics.Metrics, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{matcher: matcher, minConfidence: minConfidence, metrics: m, logger: logger}
}

// RunOnce matches every open missing person. A failure for one person is
// logged and counted; only a failure to list persons or a cancelled context
// aborts the sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	persons, err := s.matcher.OpenMissingPersons(ctx)
	if err != nil {
		s.metrics.IncSweepRuns(metrics.StatusFailure)
		return res, fmt.Errorf("failed to list open missing persons: %w", err)
	}
	for _, p := range persons {
		if err := ctx.Err(); err != nil {
			s.metrics.IncSweepRuns(metrics.StatusFailure)
			return res, err
		}
		res.Persons++
		matches, err := s.matcher.FindMatchesForMissingPerson(ctx, p.ID, s.minConfidence)
		if err != nil {
			res.Failures++
			s.logger.Warn("sweep matching failed", zap.String("person_id", p.ID), zap.Error(err))
			continue
		}
		res.Matches += len(matches)
	}
	s.metrics.IncSweepRuns(metrics.StatusSuccess)
	s.logger.Info("sweep complete",
		zap.Int("persons", res.Persons),
		zap.Int("matches", res.Matches),
		zap.Int("failures", res.Failures))
	return res, nil
}

// Start schedules RunOnce on schedule. Runs that would overlap a previous one
// are skipped.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sweep already started")
	}

	logger := cronLogger{s.logger.Sugar()}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
