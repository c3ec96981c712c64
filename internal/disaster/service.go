package disaster

import (
	"context"
	"fmt"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/ident"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"go.uber.org/zap"
)

// AdminStore is the disaster persistence the admin service needs.
type AdminStore interface {
	Store
	CreateDisaster(ctx context.Context, d *models.Disaster) error
}

// Service registers and looks up disasters.
type Service struct {
	store  AdminStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a disaster admin service.
func NewService(store AdminStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// CreateDisaster validates and stores a disaster. A missing id is generated.
func (s *Service) CreateDisaster(ctx context.Context, in models.DisasterInput) (*models.Disaster, error) {
	d, err := in.ToDisaster(s.now())
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = ident.NewDisasterID()
	}
	if err := s.store.CreateDisaster(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create disaster: %w", err)
	}
	s.logger.Info("disaster registered",
		zap.String("disaster_id", d.ID),
		zap.String("type", string(d.Type)),
		zap.String("status", string(d.Status)))
	return d, nil
}

// GetDisaster returns one disaster.
func (s *Service) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	return s.store.GetDisaster(ctx, id)
}

// ListDisasters returns disasters ordered by id.
func (s *Service) ListDisasters(ctx context.Context, filter models.DisasterFilter) ([]*models.Disaster, error) {
	return s.store.ListDisasters(ctx, filter)
}
