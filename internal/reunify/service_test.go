package reunify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/ident"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"go.uber.org/zap"
)

type memStore struct {
	mu        sync.Mutex
	missing   map[string]*models.MissingPerson
	survivors map[string]*models.Survivor
	matches   map[string]*models.Match
}

func newMemStore() *memStore {
	return &memStore{
		missing:   map[string]*models.MissingPerson{},
		survivors: map[string]*models.Survivor{},
		matches:   map[string]*models.Match{},
	}
}

func statusIn(s models.PersonStatus, allowed []models.PersonStatus) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

func (m *memStore) CreateMissingPerson(_ context.Context, p *models.MissingPerson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.missing[p.ID] = &cp
	return nil
}

func (m *memStore) GetMissingPerson(_ context.Context, id string) (*models.MissingPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.missing[id]
	if !ok {
		return nil, fmt.Errorf("%w: missing person %s", storage.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListMissingPersons(_ context.Context, f models.PersonFilter) ([]*models.MissingPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.MissingPerson
	for _, p := range m.missing {
		if (f.DisasterID == "" || p.DisasterID == f.DisasterID) && statusIn(p.Status, f.Statuses) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateMissingPersonStatus(_ context.Context, id string, status models.PersonStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.missing[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Status, p.UpdatedAt = status, at
	return nil
}

func (m *memStore) CreateSurvivor(_ context.Context, s *models.Survivor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.survivors[s.ID] = &cp
	return nil
}

func (m *memStore) GetSurvivor(_ context.Context, id string) (*models.Survivor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.survivors[id]
	if !ok {
		return nil, fmt.Errorf("%w: survivor %s", storage.ErrNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListSurvivors(_ context.Context, f models.PersonFilter) ([]*models.Survivor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Survivor
	for _, s := range m.survivors {
		if (f.DisasterID == "" || s.DisasterID == f.DisasterID) && statusIn(s.Status, f.Statuses) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateSurvivorStatus(_ context.Context, id string, status models.PersonStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.survivors[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.Status, s.UpdatedAt = status, at
	return nil
}

func (m *memStore) UpsertMatch(_ context.Context, match *models.Match) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ident.PairKey(match.MissingPersonID, match.SurvivorID)
	if existing, ok := m.matches[key]; ok {
		existing.ConfidenceScore = match.ConfidenceScore
		existing.Factors = match.Factors
		cp := *existing
		return &cp, nil
	}
	cp := *match
	m.matches[key] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) GetMatch(_ context.Context, id string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if match.ID == id {
			cp := *match
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: match %s", storage.ErrNotFound, id)
}

func (m *memStore) ListMatches(_ context.Context, f models.MatchFilter) ([]*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Match
	for _, match := range m.matches {
		if match.ConfidenceScore < f.MinConfidence {
			continue
		}
		if f.Verified != nil && match.Verified != *f.Verified {
			continue
		}
		cp := *match
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfidenceScore > out[j].ConfidenceScore })
	return out, nil
}

func (m *memStore) UpdateMatchVerification(_ context.Context, id string, v models.Verification, status models.MatchStatus, at time.Time) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if match.ID == id {
			match.Verified = v.Verified
			match.VerifiedBy = v.VerifiedBy
			match.VerificationNotes = v.VerificationNotes
			match.VerifiedAt = &at
			match.Status = status
			cp := *match
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: match %s", storage.ErrNotFound, id)
}

var fixedNow = time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store, NewOrchestrator(newMatcher(t), 4), zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }))
	return svc, store
}

func missingInput(name string, age int, gender models.Gender) models.MissingPersonInput {
	return models.MissingPersonInput{
		DisasterID:       "DIS001",
		Name:             name,
		Age:              intPtr(age),
		Gender:           gender,
		LastSeenLocation: "T. Nagar",
		LastSeenDate:     "2024-11-18",
		ReportedBy:       "Lakshmi",
		ReporterContact:  "+91-9000000000",
	}
}

func survivorInput(name string, age int, gender models.Gender) models.SurvivorInput {
	return models.SurvivorInput{
		DisasterID:      "DIS001",
		Name:            name,
		Age:             intPtr(age),
		Gender:          gender,
		CurrentLocation: "Relief camp 4",
		RegisteredBy:    "NDRF",
	}
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.RegisterMissingPerson(ctx, missingInput("Rajesh Kumar", 45, models.GenderMale))
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.PersonMissing || len(p.ID) != 10 || !p.CreatedAt.Equal(fixedNow) {
		t.Errorf("missing person = %+v", p)
	}
	s, err := svc.RegisterSurvivor(ctx, survivorInput("", 45, models.GenderMale))
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != models.PersonSearching || len(s.ID) != 10 {
		t.Errorf("survivor = %+v", s)
	}

	bad := missingInput("Rajesh", 200, models.GenderMale)
	if _, err := svc.RegisterMissingPerson(ctx, bad); !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := svc.GetSurvivor(ctx, "SV00000000"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_FindMatches_upsertsAndVerifies(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	p, _ := svc.RegisterMissingPerson(ctx, missingInput("Rajesh Kumar", 45, models.GenderMale))
	good, _ := svc.RegisterSurvivor(ctx, survivorInput("Rajesh Kumar", 46, models.GenderMale))
	_, _ = svc.RegisterSurvivor(ctx, survivorInput("Priya Sharma", 60, models.GenderFemale))

	matches, err := svc.FindMatchesForMissingPerson(ctx, p.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].SurvivorID != good.ID || matches[0].ID == "" {
		t.Fatalf("matches = %+v", matches)
	}
	first := matches[0]

	// The same pair found from the survivor side updates the stored match.
	again, err := svc.FindMatchesForSurvivor(ctx, good.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0].ID != first.ID {
		t.Fatalf("rematch = %+v, want id %s", again, first.ID)
	}
	if len(store.matches) != 1 {
		t.Errorf("stored matches = %d, want 1", len(store.matches))
	}

	if _, err := svc.VerifyMatch(ctx, first.ID, models.Verification{Verified: true}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("missing verifier: err = %v", err)
	}
	verified, err := svc.VerifyMatch(ctx, first.ID, models.Verification{Verified: true, VerifiedBy: "officer-7"})
	if err != nil {
		t.Fatal(err)
	}
	if verified.Status != models.MatchConfirmed || !verified.Verified || verified.VerifiedAt == nil {
		t.Errorf("verified = %+v", verified)
	}
	gotP, _ := svc.GetMissingPerson(ctx, p.ID)
	gotS, _ := svc.GetSurvivor(ctx, good.ID)
	if gotP.Status != models.PersonReunited || gotS.Status != models.PersonReunited {
		t.Errorf("statuses = %s / %s, want reunited", gotP.Status, gotS.Status)
	}

	// Reunited persons drop out of later searches.
	none, err := svc.FindMatchesForMissingPerson(ctx, p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range none {
		if m.SurvivorID == good.ID {
			t.Errorf("reunited survivor matched again: %+v", m)
		}
	}
}

func TestService_VerifyMatch_rejectKeepsPersonsSearchable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p, _ := svc.RegisterMissingPerson(ctx, missingInput("Anand", 30, models.GenderMale))
	s, _ := svc.RegisterSurvivor(ctx, survivorInput("Anand", 30, models.GenderMale))

	matches, err := svc.FindMatchesForSurvivor(ctx, s.ID, 30)
	if err != nil || len(matches) != 1 {
		t.Fatalf("matches = %v, err = %v", matches, err)
	}
	m, err := svc.VerifyMatch(ctx, matches[0].ID, models.Verification{Verified: false, VerifiedBy: "officer-7", VerificationNotes: "different family"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != models.MatchRejected {
		t.Errorf("status = %s, want rejected", m.Status)
	}
	gotP, _ := svc.GetMissingPerson(ctx, p.ID)
	if gotP.Status != models.PersonMissing {
		t.Errorf("missing person status = %s", gotP.Status)
	}
	if _, err := svc.VerifyMatch(ctx, "nope", models.Verification{VerifiedBy: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown match: err = %v", err)
	}
}

func TestService_ListMatches(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p, _ := svc.RegisterMissingPerson(ctx, missingInput("Rajesh Kumar", 45, models.GenderMale))
	_, _ = svc.RegisterSurvivor(ctx, survivorInput("Rajesh Kumar", 45, models.GenderMale))
	_, _ = svc.RegisterSurvivor(ctx, survivorInput("Rajesh", 47, models.GenderMale))
	if _, err := svc.FindMatchesForMissingPerson(ctx, p.ID, 30); err != nil {
		t.Fatal(err)
	}

	all, err := svc.ListMatches(ctx, models.MatchFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ConfidenceScore < all[1].ConfidenceScore {
		t.Errorf("matches = %+v", all)
	}
	high, _ := svc.ListMatches(ctx, models.MatchFilter{MinConfidence: 79})
	if len(high) != 1 {
		t.Errorf("min_confidence filter returned %d, want 1", len(high))
	}
}
