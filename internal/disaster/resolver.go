// Package disaster associates a claim with the disaster it most plausibly
// belongs to and reports the location and time factors of that association.
package disaster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"github.com/RameshMYatnalli/new-claimsat/internal/timescore"
)

// Store is the subset of the record store the resolver reads.
type Store interface {
	GetDisaster(ctx context.Context, id string) (*models.Disaster, error)
	ListDisasters(ctx context.Context, filter models.DisasterFilter) ([]*models.Disaster, error)
}

// Resolution is the outcome of resolving a claim. A nil Disaster means no
// disaster matched and both factor scores are zero.
type Resolution struct {
	Disaster            *models.Disaster
	LocationScore       float64
	LocationExplanation string
	TimeScore           float64
	TimeExplanation     string
}

// Matched reports whether a disaster was found.
func (r Resolution) Matched() bool { return r.Disaster != nil }

func noMatch() Resolution {
	return Resolution{
		LocationExplanation: "No matching disaster found",
		TimeExplanation:     "No disaster to verify against",
	}
}

// Resolver picks the disaster for a claim and scores the claim against it.
type Resolver struct {
	store         Store
	timeScorer    timescore.Scorer
	maxDistanceKm float64
	minCombined   float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used for open-ended windows and unparseable dates.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.timeScorer.Now = now }
}

// NewResolver creates a resolver reading disasters from store. It fails with
// config.ErrConfiguration when cfg is invalid.
func NewResolver(store Store, cfg config.ScoringConfig, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		store:         store,
		timeScorer:    timescore.NewScorer(cfg.MaxDaysBefore, cfg.MaxDaysAfter),
		maxDistanceKm: cfg.MaxDistanceKm,
		minCombined:   cfg.ResolveMinCombined,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Score computes the location and time factors of a claim against d.
func (r *Resolver) Score(d *models.Disaster, loc geo.Point, incident string) Resolution {
	locScore, locExpl := geo.LocationScore(loc, d.Location.Coordinates, r.maxDistanceKm)
	timeScore, timeExpl := r.timeScorer.ScoreISO(incident, d.Window())
	return Resolution{
		Disaster:            d,
		LocationScore:       locScore,
		LocationExplanation: locExpl,
		TimeScore:           timeScore,
		TimeExplanation:     timeExpl,
	}
}

// Best returns the candidate with the highest mean of location and time
// scores, or nil when no candidate scores above the acceptance threshold.
// Candidates are considered in ascending id order and only a strictly higher
// score replaces the current best, so ties go to the smallest id.
func (r *Resolver) Best(candidates []*models.Disaster, loc geo.Point, incident string) (*models.Disaster, float64) {
	sorted := make([]*models.Disaster, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var best *models.Disaster
	var bestScore float64
	for _, d := range sorted {
		res := r.Score(d, loc, incident)
		combined := (res.LocationScore + res.TimeScore) / 2
		if combined > bestScore {
			best, bestScore = d, combined
		}
	}
	if best == nil || bestScore <= r.minCombined {
		return nil, bestScore
	}
	return best, bestScore
}

// Resolve finds the disaster for a claim. With an explicit id that record is
// used as is; an unknown id yields no match. Without one, every active
// disaster is considered. Store failures other than not-found are returned.
func (r *Resolver) Resolve(ctx context.Context, loc geo.Point, incident, disasterID string) (Resolution, error) {
	var d *models.Disaster
	if disasterID != "" {
		got, err := r.store.GetDisaster(ctx, disasterID)
		if errors.Is(err, storage.ErrNotFound) {
			return noMatch(), nil
		}
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load disaster %s: %w", disasterID, err)
		}
		d = got
	} else {
		active, err := r.store.ListDisasters(ctx, models.DisasterFilter{Status: models.DisasterActive})
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to list active disasters: %w", err)
		}
		d, _ = r.Best(active, loc, incident)
	}
	if d == nil {
		return noMatch(), nil
	}
	return r.Score(d, loc, incident), nil
}
