package reunify

import (
	"context"
	"fmt"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/ident"
	"github.com/RameshMYatnalli/new-claimsat/internal/metrics"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"go.uber.org/zap"
)

// DefaultListLimit caps person and match listings when the filter sets no limit.
const DefaultListLimit = 100

// Store is the person and match persistence the service needs. A zero
// filter Limit means no limit.
type Store interface {
	CreateMissingPerson(ctx context.Context, p *models.MissingPerson) error
	GetMissingPerson(ctx context.Context, id string) (*models.MissingPerson, error)
	ListMissingPersons(ctx context.Context, filter models.PersonFilter) ([]*models.MissingPerson, error)
	UpdateMissingPersonStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error

	CreateSurvivor(ctx context.Context, s *models.Survivor) error
	GetSurvivor(ctx context.Context, id string) (*models.Survivor, error)
	ListSurvivors(ctx context.Context, filter models.PersonFilter) ([]*models.Survivor, error)
	UpdateSurvivorStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error

	// UpsertMatch inserts m, or refreshes the confidence and factors of the
	// existing match for the same pair, keeping its id and verification.
	UpsertMatch(ctx context.Context, m *models.Match) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error)
	UpdateMatchVerification(ctx context.Context, id string, v models.Verification, status models.MatchStatus, at time.Time) (*models.Match, error)
}

// Service runs the reunification workflows over a store.
type Service struct {
	store        Store
	orchestrator *Orchestrator
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics records matching metrics.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a reunification service.
func NewService(store Store, orchestrator *Orchestrator, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:        store,
		orchestrator: orchestrator,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterMissingPerson stores a new report with status missing.
func (s *Service) RegisterMissingPerson(ctx context.Context, in models.MissingPersonInput) (*models.MissingPerson, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.MissingPerson{
		ID:                  ident.NewMissingPersonID(),
		DisasterID:          in.DisasterID,
		Name:                in.Name,
		Age:                 in.Age,
		Gender:              in.Gender,
		Height:              in.Height,
		Weight:              in.Weight,
		PhysicalDescription: in.PhysicalDescription,
		LastSeenLocation:    in.LastSeenLocation,
		LastSeenDate:        in.LastSeenDate,
		LastSeenCoordinates: in.LastSeenCoordinates,
		ReportedBy:          in.ReportedBy,
		ReporterContact:     in.ReporterContact,
		ReporterRelation:    in.ReporterRelation,
		Status:              models.PersonMissing,
		PhotoURL:            in.PhotoURL,
		AdditionalInfo:      in.AdditionalInfo,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateMissingPerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to register missing person: %w", err)
	}
	s.logger.Debug("missing person registered", zap.String("person_id", p.ID), zap.String("disaster_id", p.DisasterID))
	return p, nil
}

// RegisterSurvivor stores a new survivor with status searching.
func (s *Service) RegisterSurvivor(ctx context.Context, in models.SurvivorInput) (*models.Survivor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	sv := &models.Survivor{
		ID:                  ident.NewSurvivorID(),
		DisasterID:          in.DisasterID,
		Name:                in.Name,
		Age:                 in.Age,
		Gender:              in.Gender,
		Height:              in.Height,
		Weight:              in.Weight,
		PhysicalDescription: in.PhysicalDescription,
		CurrentLocation:     in.CurrentLocation,
		CurrentCoordinates:  in.CurrentCoordinates,
		ShelterName:         in.ShelterName,
		RegisteredBy:        in.RegisteredBy,
		RegisteredAt:        now,
		Status:              models.PersonSearching,
		MedicalCondition:    in.MedicalCondition,
		PhotoURL:            in.PhotoURL,
		AdditionalInfo:      in.AdditionalInfo,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateSurvivor(ctx, sv); err != nil {
		return nil, fmt.Errorf("failed to register survivor: %w", err)
	}
	s.logger.Debug("survivor registered", zap.String("survivor_id", sv.ID), zap.String("disaster_id", sv.DisasterID))
	return sv, nil
}

// GetMissingPerson returns one missing-person report.
func (s *Service) GetMissingPerson(ctx context.Context, id string) (*models.MissingPerson, error) {
	return s.store.GetMissingPerson(ctx, id)
}

// GetSurvivor returns one survivor.
func (s *Service) GetSurvivor(ctx context.Context, id string) (*models.Survivor, error) {
	return s.store.GetSurvivor(ctx, id)
}

// ListMissingPersons returns reports newest first.
func (s *Service) ListMissingPersons(ctx context.Context, filter models.PersonFilter) ([]*models.MissingPerson, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return s.store.ListMissingPersons(ctx, filter)
}

// ListSurvivors returns survivors newest first.
func (s *Service) ListSurvivors(ctx context.Context, filter models.PersonFilter) ([]*models.Survivor, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return s.store.ListSurvivors(ctx, filter)
}

// FindMatchesForMissingPerson compares a missing person with the survivors of
// the same disaster and stores every match at or above minConfidence.
func (s *Service) FindMatchesForMissingPerson(ctx context.Context, personID string, minConfidence float64) ([]*models.Match, error) {
	p, err := s.store.GetMissingPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	survivors, err := s.store.ListSurvivors(ctx, models.PersonFilter{
		DisasterID: p.DisasterID,
		Statuses:   CandidateStatuses(FromMissingPerson),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load survivors: %w", err)
	}
	pool := make([]models.PersonRecord, len(survivors))
	for i, sv := range survivors {
		pool[i] = sv.Record()
	}
	return s.findAndStore(ctx, p.Record(), FromMissingPerson, pool, minConfidence)
}

// FindMatchesForSurvivor compares a survivor with the open missing-person
// reports of the same disaster and stores every match at or above minConfidence.
func (s *Service) FindMatchesForSurvivor(ctx context.Context, survivorID string, minConfidence float64) ([]*models.Match, error) {
	sv, err := s.store.GetSurvivor(ctx, survivorID)
	if err != nil {
		return nil, err
	}
	persons, err := s.store.ListMissingPersons(ctx, models.PersonFilter{
		DisasterID: sv.DisasterID,
		Statuses:   CandidateStatuses(FromSurvivor),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load missing persons: %w", err)
	}
	pool := make([]models.PersonRecord, len(persons))
	for i, p := range persons {
		pool[i] = p.Record()
	}
	return s.findAndStore(ctx, sv.Record(), FromSurvivor, pool, minConfidence)
}

func (s *Service) findAndStore(ctx context.Context, anchor models.PersonRecord, side Side, pool []models.PersonRecord, minConfidence float64) ([]*models.Match, error) {
	found, evaluated, err := s.orchestrator.FindMatches(ctx, anchor, side, pool, minConfidence)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveMatching(side.String(), evaluated, len(found))

	now := s.now()
	out := make([]*models.Match, 0, len(found))
	for i := range found {
		m := found[i]
		m.ID = ident.NewID()
		m.MatchedAt = now
		stored, err := s.store.UpsertMatch(ctx, &m)
		if err != nil {
			s.logger.Error("failed to store match",
				zap.String("missing_person_id", m.MissingPersonID),
				zap.String("survivor_id", m.SurvivorID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to store match: %w", err)
		}
		out = append(out, stored)
	}
	s.logger.Debug("matching complete",
		zap.String("anchor_id", anchor.ID),
		zap.String("side", side.String()),
		zap.Int("evaluated", evaluated),
		zap.Int("matches", len(out)))
	return out, nil
}

// ListMatches returns stored matches, highest confidence first.
func (s *Service) ListMatches(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return s.store.ListMatches(ctx, filter)
}

// VerifyMatch records an authority's decision. A confirmed match marks both
// persons reunited; a rejected one leaves them searchable.
func (s *Service) VerifyMatch(ctx context.Context, matchID string, v models.Verification) (*models.Match, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	status := models.MatchRejected
	if v.Verified {
		status = models.MatchConfirmed
	}
	now := s.now()
	m, err := s.store.UpdateMatchVerification(ctx, matchID, v, status, now)
	if err != nil {
		return nil, err
	}
	if v.Verified {
		if err := s.store.UpdateMissingPersonStatus(ctx, m.MissingPersonID, models.PersonReunited, now); err != nil {
			return nil, fmt.Errorf("failed to update missing person %s: %w", m.MissingPersonID, err)
		}
		if err := s.store.UpdateSurvivorStatus(ctx, m.SurvivorID, models.PersonReunited, now); err != nil {
			return nil, fmt.Errorf("failed to update survivor %s: %w", m.SurvivorID, err)
		}
	}
	s.logger.Info("match verified",
		zap.String("match_id", matchID),
		zap.String("status", string(status)),
		zap.String("verified_by", v.VerifiedBy))
	return m, nil
}

// OpenMissingPersons returns every missing person whose search is still open,
// across all disasters.
func (s *Service) OpenMissingPersons(ctx context.Context) ([]*models.MissingPerson, error) {
	return s.store.ListMissingPersons(ctx, models.PersonFilter{
		Statuses: []models.PersonStatus{models.PersonMissing, models.PersonSearching},
	})
}
