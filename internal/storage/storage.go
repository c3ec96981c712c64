// Package storage defines the persistence interface for disasters, claims,
// and reunification records.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when creating a record whose id already exists.
	ErrConflict = errors.New("already exists")
)

// Storage is implemented by every backend. List methods treat a zero Limit
// as unlimited.
type Storage interface {
	// Disaster operations
	CreateDisaster(ctx context.Context, d *models.Disaster) error
	SaveDisaster(ctx context.Context, d *models.Disaster) error
	GetDisaster(ctx context.Context, id string) (*models.Disaster, error)
	ListDisasters(ctx context.Context, filter models.DisasterFilter) ([]*models.Disaster, error)

	// Claim operations
	CreateClaim(ctx context.Context, c *models.Claim) error
	GetClaim(ctx context.Context, id string) (*models.Claim, error)
	ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error)
	AddEvidence(ctx context.Context, claimID string, ev *models.Evidence) error
	SaveClaimScore(ctx context.Context, claimID string, score *models.ClaimScore) error
	AddClaimEvent(ctx context.Context, ev *models.ClaimEvent) error
	ListClaimEvents(ctx context.Context, claimID string) ([]*models.ClaimEvent, error)

	// Person operations
	CreateMissingPerson(ctx context.Context, p *models.MissingPerson) error
	GetMissingPerson(ctx context.Context, id string) (*models.MissingPerson, error)
	ListMissingPersons(ctx context.Context, filter models.PersonFilter) ([]*models.MissingPerson, error)
	UpdateMissingPersonStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error
	CreateSurvivor(ctx context.Context, s *models.Survivor) error
	GetSurvivor(ctx context.Context, id string) (*models.Survivor, error)
	ListSurvivors(ctx context.Context, filter models.PersonFilter) ([]*models.Survivor, error)
	UpdateSurvivorStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error

	// Match operations. Matches are unique per (missing person, survivor) pair.
	UpsertMatch(ctx context.Context, m *models.Match) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error)
	UpdateMatchVerification(ctx context.Context, id string, v models.Verification, status models.MatchStatus, at time.Time) (*models.Match, error)

	// Stats
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// Stats summarizes what a backend holds.
type Stats struct {
	Disasters       int64 `json:"disasters"`
	Claims          int64 `json:"claims"`
	ClaimEvents     int64 `json:"claim_events"`
	MissingPersons  int64 `json:"missing_persons"`
	Survivors       int64 `json:"survivors"`
	Matches         int64 `json:"matches"`
	VerifiedMatches int64 `json:"verified_matches"`
	// SizeBytes is the on-disk size of the database when the backend can tell.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}
