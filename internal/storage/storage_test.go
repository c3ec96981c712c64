package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
)

var suiteNow = time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// runStorageSuite exercises every Storage method against a fresh backend.
func runStorageSuite(t *testing.T, s Storage) {
	t.Run("disasters", func(t *testing.T) { testDisasters(t, s) })
	t.Run("claims", func(t *testing.T) { testClaims(t, s) })
	t.Run("persons", func(t *testing.T) { testPersons(t, s) })
	t.Run("matches", func(t *testing.T) { testMatches(t, s) })
	t.Run("stats", func(t *testing.T) {
		st, err := s.Stats(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := Stats{Disasters: 2, Claims: 2, ClaimEvents: 3, MissingPersons: 2, Survivors: 2, Matches: 2, VerifiedMatches: 1}
		st.SizeBytes = 0
		if *st != want {
			t.Errorf("Stats = %+v, want %+v", *st, want)
		}
	})
}

func testDisasters(t *testing.T, s Storage) {
	ctx := context.Background()
	d1 := &models.Disaster{
		ID:   "DIS001",
		Name: "Chennai Floods 2024",
		Type: models.DisasterFlood,
		Location: models.GeoJSONPolygon{Type: "Polygon", Coordinates: geo.Polygon{{
			{80.2, 13.0}, {80.3, 13.0}, {80.3, 13.1}, {80.2, 13.1}, {80.2, 13.0},
		}}},
		StartDate: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
		Status:    models.DisasterActive,
		CreatedAt: suiteNow,
	}
	if err := s.CreateDisaster(ctx, d1); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateDisaster(ctx, d1); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate create: err = %v, want ErrConflict", err)
	}

	d2 := &models.Disaster{ID: "DIS002", Name: "Cyclone", Type: models.DisasterCyclone, Status: models.DisasterResolved, CreatedAt: suiteNow}
	if err := s.SaveDisaster(ctx, d2); err != nil {
		t.Fatal(err)
	}
	d2.Name = "Cyclone Michaung"
	if err := s.SaveDisaster(ctx, d2); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDisaster(ctx, "DIS001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != d1.Name || !got.StartDate.Equal(d1.StartDate) || len(got.Location.Coordinates[0]) != 5 {
		t.Errorf("GetDisaster = %+v", got)
	}
	if got, _ := s.GetDisaster(ctx, "DIS002"); got == nil || got.Name != "Cyclone Michaung" {
		t.Errorf("SaveDisaster did not replace: %+v", got)
	}
	if _, err := s.GetDisaster(ctx, "DIS999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	active, err := s.ListDisasters(ctx, models.DisasterFilter{Status: models.DisasterActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != "DIS001" {
		t.Errorf("active disasters = %v", ids(active, func(d *models.Disaster) string { return d.ID }))
	}
	all, _ := s.ListDisasters(ctx, models.DisasterFilter{})
	if got := ids(all, func(d *models.Disaster) string { return d.ID }); got != "[DIS001 DIS002]" {
		t.Errorf("all disasters = %s", got)
	}
}

func testClaims(t *testing.T, s Storage) {
	ctx := context.Background()
	c1 := &models.Claim{ID: "CLM00000001", ClaimantName: "Asha", Location: geo.Point{Lat: 13.05, Lng: 80.25}, Status: models.ClaimPending, CreatedAt: suiteNow}
	c2 := &models.Claim{ID: "CLM00000002", ClaimantName: "Ravi", Status: models.ClaimPending, CreatedAt: suiteNow.Add(time.Minute)}
	for _, c := range []*models.Claim{c1, c2} {
		if err := s.CreateClaim(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListClaims(ctx, models.ClaimFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(list, func(c *models.Claim) string { return c.ID }); got != "[CLM00000002 CLM00000001]" {
		t.Errorf("ListClaims order = %s", got)
	}
	if limited, _ := s.ListClaims(ctx, models.ClaimFilter{Limit: 1}); len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}

	ev := &models.Evidence{ID: "ev-1", Type: evidence.KindImage, FileHash: "abc", VisualScore: 0.8, UploadedAt: suiteNow}
	if err := s.AddEvidence(ctx, c1.ID, ev); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEvidence(ctx, "CLM99999999", ev); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddEvidence unknown claim: err = %v", err)
	}

	score := &models.ClaimScore{ConfidenceScore: 82.5, Status: models.ClaimApproved, DisasterID: "DIS001", ScoredAt: suiteNow}
	if err := s.SaveClaimScore(ctx, c1.ID, score); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetClaim(ctx, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Evidence) != 1 || got.Evidence[0].FileHash != "abc" {
		t.Errorf("evidence = %+v", got.Evidence)
	}
	if got.Status != models.ClaimApproved || got.Score == nil || got.Score.ConfidenceScore != 82.5 || got.DisasterID != "DIS001" {
		t.Errorf("scored claim = %+v", got)
	}

	approved, _ := s.ListClaims(ctx, models.ClaimFilter{Status: models.ClaimApproved})
	byDisaster, _ := s.ListClaims(ctx, models.ClaimFilter{DisasterID: "DIS001"})
	if len(approved) != 1 || len(byDisaster) != 1 {
		t.Errorf("filters: approved=%d byDisaster=%d", len(approved), len(byDisaster))
	}

	for i, typ := range []models.EventType{models.EventCreated, models.EventEvidenceAdded, models.EventScored} {
		e := &models.ClaimEvent{ID: fmt.Sprintf("evt-%d", i), ClaimID: c1.ID, Type: typ, Data: map[string]any{"n": i}, Timestamp: suiteNow}
		if err := s.AddClaimEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	events, err := s.ListClaimEvents(ctx, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(events, func(e *models.ClaimEvent) string { return string(e.Type) }); got != "[created evidence_added scored]" {
		t.Errorf("events = %s", got)
	}
}

func testPersons(t *testing.T, s Storage) {
	ctx := context.Background()
	mps := []*models.MissingPerson{
		{ID: "MP00000001", DisasterID: "DIS001", Name: "Rajesh Kumar", Age: intPtr(45), Status: models.PersonMissing, CreatedAt: suiteNow},
		{ID: "MP00000002", DisasterID: "DIS002", Name: "Meena", Status: models.PersonSearching, CreatedAt: suiteNow},
	}
	for _, p := range mps {
		if err := s.CreateMissingPerson(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	svs := []*models.Survivor{
		{ID: "SV00000001", DisasterID: "DIS001", Name: "Rajesh", Status: models.PersonSearching, CreatedAt: suiteNow},
		{ID: "SV00000002", DisasterID: "DIS001", Status: models.PersonFound, CreatedAt: suiteNow.Add(time.Second)},
	}
	for _, sv := range svs {
		if err := s.CreateSurvivor(ctx, sv); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetMissingPerson(ctx, "MP00000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Age == nil || *got.Age != 45 {
		t.Errorf("missing person = %+v", got)
	}
	byDisaster, _ := s.ListMissingPersons(ctx, models.PersonFilter{DisasterID: "DIS001"})
	searching, _ := s.ListMissingPersons(ctx, models.PersonFilter{Statuses: []models.PersonStatus{models.PersonSearching}})
	if len(byDisaster) != 1 || len(searching) != 1 || searching[0].ID != "MP00000002" {
		t.Errorf("filters: byDisaster=%d searching=%v", len(byDisaster), searching)
	}

	if err := s.UpdateMissingPersonStatus(ctx, "MP00000001", models.PersonReunited, suiteNow); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetMissingPerson(ctx, "MP00000001"); got.Status != models.PersonReunited {
		t.Errorf("status = %s", got.Status)
	}
	if err := s.UpdateMissingPersonStatus(ctx, "MP99999999", models.PersonReunited, suiteNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	open, _ := s.ListSurvivors(ctx, models.PersonFilter{
		DisasterID: "DIS001",
		Statuses:   []models.PersonStatus{models.PersonSearching, models.PersonFound},
	})
	if got := ids(open, func(sv *models.Survivor) string { return sv.ID }); got != "[SV00000002 SV00000001]" {
		t.Errorf("survivors = %s", got)
	}
	if err := s.UpdateSurvivorStatus(ctx, "SV00000001", models.PersonReunited, suiteNow); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSurvivor(ctx, "SV99999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func testMatches(t *testing.T, s Storage) {
	ctx := context.Background()
	m := &models.Match{
		ID:              "match-1",
		MissingPersonID: "MP00000001",
		SurvivorID:      "SV00000001",
		DisasterID:      "DIS001",
		ConfidenceScore: 80,
		Status:          models.MatchPending,
		MatchedAt:       suiteNow,
	}
	stored, err := s.UpsertMatch(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != "match-1" || stored.ConfidenceScore != 80 {
		t.Errorf("first upsert = %+v", stored)
	}

	again := *m
	again.ID = "match-ignored"
	again.ConfidenceScore = 85
	stored, err = s.UpsertMatch(ctx, &again)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != "match-1" || stored.ConfidenceScore != 85 {
		t.Errorf("second upsert = %+v", stored)
	}

	verified, err := s.UpdateMatchVerification(ctx, "match-1",
		models.Verification{Verified: true, VerifiedBy: "officer-7", VerificationNotes: "photo confirmed"},
		models.MatchConfirmed, suiteNow)
	if err != nil {
		t.Fatal(err)
	}
	if !verified.Verified || verified.VerifiedAt == nil || verified.Status != models.MatchConfirmed {
		t.Errorf("verified = %+v", verified)
	}
	if _, err := s.UpdateMatchVerification(ctx, "nope", models.Verification{VerifiedBy: "x"}, models.MatchRejected, suiteNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	// Rematching keeps the verification.
	again.ConfidenceScore = 70
	stored, err = s.UpsertMatch(ctx, &again)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Verified || stored.VerifiedBy != "officer-7" || stored.Status != models.MatchConfirmed || stored.ConfidenceScore != 70 {
		t.Errorf("rematch lost verification: %+v", stored)
	}

	other := &models.Match{ID: "match-2", MissingPersonID: "MP00000002", SurvivorID: "SV00000002", ConfidenceScore: 40, Status: models.MatchPending, MatchedAt: suiteNow}
	if _, err := s.UpsertMatch(ctx, other); err != nil {
		t.Fatal(err)
	}

	all, _ := s.ListMatches(ctx, models.MatchFilter{})
	if got := ids(all, func(m *models.Match) string { return m.ID }); got != "[match-1 match-2]" {
		t.Errorf("ListMatches = %s", got)
	}
	high, _ := s.ListMatches(ctx, models.MatchFilter{MinConfidence: 50})
	unverified := false
	pending, _ := s.ListMatches(ctx, models.MatchFilter{Verified: &unverified})
	if len(high) != 1 || len(pending) != 1 || pending[0].ID != "match-2" {
		t.Errorf("filters: high=%d pending=%d", len(high), len(pending))
	}
	if got, err := s.GetMatch(ctx, "match-2"); err != nil || got.SurvivorID != "SV00000002" {
		t.Errorf("GetMatch = %+v, %v", got, err)
	}
}

func ids[T any](items []*T, id func(*T) string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return fmt.Sprint(out)
}
