package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/disaster"
	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/ident"
	"github.com/RameshMYatnalli/new-claimsat/internal/media"
	"github.com/RameshMYatnalli/new-claimsat/internal/metrics"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"go.uber.org/zap"
)

// DefaultListLimit caps ListClaims when the filter sets no limit.
const DefaultListLimit = 50

// Store is the claim persistence the service needs.
type Store interface {
	CreateClaim(ctx context.Context, c *models.Claim) error
	GetClaim(ctx context.Context, id string) (*models.Claim, error)
	ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error)
	AddEvidence(ctx context.Context, claimID string, ev *models.Evidence) error
	SaveClaimScore(ctx context.Context, claimID string, score *models.ClaimScore) error
	AddClaimEvent(ctx context.Context, ev *models.ClaimEvent) error
	ListClaimEvents(ctx context.Context, claimID string) ([]*models.ClaimEvent, error)
}

// Upload is one evidence file with the metadata supplied alongside it.
type Upload struct {
	Filename    string
	Data        []byte
	CaptureTime string
	Location    *geo.Point
	PerformedBy string
}

// Service runs claim workflows over a store.
type Service struct {
	store    Store
	engine   *Engine
	resolver *disaster.Resolver
	analyzer *evidence.Analyzer
	media    media.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMedia keeps uploaded bytes in m. Without it only the analysis is kept.
func WithMedia(m media.Store) ServiceOption {
	return func(s *Service) { s.media = m }
}

// WithMetrics records scoring and analysis metrics.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a claim service.
func NewService(store Store, engine *Engine, resolver *disaster.Resolver, analyzer *evidence.Analyzer, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    store,
		engine:   engine,
		resolver: resolver,
		analyzer: analyzer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClaim validates in and stores a new pending claim.
func (s *Service) CreateClaim(ctx context.Context, in models.ClaimInput) (*models.Claim, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	c := &models.Claim{
		ID:                ident.NewClaimID(),
		ClaimantName:      in.ClaimantName,
		ClaimantContact:   in.ClaimantContact,
		PropertyAddress:   in.PropertyAddress,
		Location:          in.Location,
		DisasterID:        in.DisasterID,
		IncidentDate:      in.IncidentDate,
		DamageDescription: in.DamageDescription,
		EstimatedLoss:     in.EstimatedLoss,
		Evidence:          []models.Evidence{},
		Status:            models.ClaimPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.CreateClaim(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}
	s.recordEvent(ctx, c.ID, models.EventCreated, in, "")
	s.logger.Debug("claim created", zap.String("claim_id", c.ID), zap.String("disaster_id", c.DisasterID))
	return c, nil
}

// AddEvidence analyzes an uploaded file and attaches it to the claim. The
// analysis never fails on bad media; undecodable images score zero.
func (s *Service) AddEvidence(ctx context.Context, claimID string, up Upload) (*models.Evidence, error) {
	if len(up.Data) == 0 {
		return nil, fmt.Errorf("%w: evidence file is empty", models.ErrValidation)
	}
	if up.Location != nil && !up.Location.Valid() {
		return nil, fmt.Errorf("%w: evidence location %s is out of range", models.ErrValidation, *up.Location)
	}
	if _, err := s.store.GetClaim(ctx, claimID); err != nil {
		return nil, err
	}

	ext := evidence.ExtensionFor(up.Filename, up.Data)
	analysis := s.analyzer.Analyze(ctx, up.Data, ext)
	s.metrics.IncEvidenceAnalyzed(string(analysis.Kind))

	ev := &models.Evidence{
		ID:                ident.NewID(),
		Type:              analysis.Kind,
		Filename:          up.Filename,
		FileHash:          analysis.ContentHash,
		FileSize:          int64(len(up.Data)),
		CaptureTime:       up.CaptureTime,
		Location:          up.Location,
		VisualScore:       analysis.Score,
		VisualExplanation: analysis.Explanation,
		UploadedAt:        s.now(),
	}
	if s.media != nil {
		key := media.EvidenceKey(claimID, ev.ID, ext)
		if err := s.media.Put(ctx, key, up.Data, mime.TypeByExtension(ext)); err != nil {
			s.logger.Error("failed to store evidence media", zap.String("claim_id", claimID), zap.Error(err))
			return nil, fmt.Errorf("failed to store evidence: %w", err)
		}
		ev.MediaKey = key
	}
	if err := s.store.AddEvidence(ctx, claimID, ev); err != nil {
		return nil, fmt.Errorf("failed to attach evidence: %w", err)
	}
	s.recordEvent(ctx, claimID, models.EventEvidenceAdded, ev, up.PerformedBy)
	s.logger.Debug("evidence added",
		zap.String("claim_id", claimID),
		zap.String("kind", string(ev.Type)),
		zap.Float64("visual_score", ev.VisualScore))
	return ev, nil
}

// ScoreClaim resolves the claim's disaster, scores it, and stores the score
// and the derived status.
func (s *Service) ScoreClaim(ctx context.Context, claimID string) (*models.ClaimScore, error) {
	c, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	res, err := s.resolver.Resolve(ctx, c.Location, c.IncidentDate, c.DisasterID)
	if err != nil {
		s.logger.Error("disaster resolution failed", zap.String("claim_id", claimID), zap.Error(err))
		return nil, err
	}
	score := s.engine.Score(res, c.Evidence)
	score.ScoredAt = s.now()

	if err := s.store.SaveClaimScore(ctx, claimID, &score); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}
	s.metrics.ObserveClaimScore(string(score.Status), score.ConfidenceScore)
	s.recordEvent(ctx, claimID, models.EventScored, score, "")
	if score.Status != c.Status {
		s.recordEvent(ctx, claimID, models.EventStatusChanged, map[string]any{
			"from": c.Status,
			"to":   score.Status,
		}, "")
	}
	s.logger.Debug("claim scored",
		zap.String("claim_id", claimID),
		zap.String("disaster_id", score.DisasterID),
		zap.Float64("confidence", score.ConfidenceScore),
		zap.String("status", string(score.Status)))
	return &score, nil
}

// GetClaim returns one claim.
func (s *Service) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	return s.store.GetClaim(ctx, id)
}

// ListClaims returns claims newest first.
func (s *Service) ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return s.store.ListClaims(ctx, filter)
}

// ListEvents returns the audit trail of a claim, oldest first.
func (s *Service) ListEvents(ctx context.Context, claimID string) ([]*models.ClaimEvent, error) {
	if _, err := s.store.GetClaim(ctx, claimID); err != nil {
		return nil, err
	}
	return s.store.ListClaimEvents(ctx, claimID)
}

// recordEvent appends to the audit trail. A failed write is logged and does
// not undo the operation it describes.
func (s *Service) recordEvent(ctx context.Context, claimID string, typ models.EventType, data any, by string) {
	ev := &models.ClaimEvent{
		ID:          ident.NewID(),
		ClaimID:     claimID,
		Type:        typ,
		Data:        eventData(data),
		Timestamp:   s.now(),
		PerformedBy: by,
	}
	if err := s.store.AddClaimEvent(ctx, ev); err != nil {
		s.logger.Error("failed to record claim event",
			zap.String("claim_id", claimID),
			zap.String("event_type", string(typ)),
			zap.Error(err))
	}
}

func eventData(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
