package disaster

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"go.uber.org/zap"
)

func (f *fakeStore) CreateDisaster(_ context.Context, d *models.Disaster) error {
	for _, existing := range f.disasters {
		if existing.ID == d.ID {
			return storage.ErrConflict
		}
	}
	f.disasters = append(f.disasters, d)
	return nil
}

func disasterInput() models.DisasterInput {
	return models.DisasterInput{
		Name: "Chennai Floods 2024",
		Type: models.DisasterFlood,
		Location: models.GeoJSONPolygon{Coordinates: geo.Polygon{{
			{80.2, 13.0}, {80.3, 13.0}, {80.3, 13.1}, {80.2, 13.1}, {80.2, 13.0},
		}}},
		StartDate: "2024-11-15",
		EndDate:   "2024-11-25",
		Severity:  4,
	}
}

func TestService_CreateDisaster(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	d, err := svc.CreateDisaster(ctx, disasterInput())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(d.ID, "DIS") || d.Status != models.DisasterActive || d.Location.Type != "Polygon" {
		t.Errorf("disaster = %+v", d)
	}
	if got, err := svc.GetDisaster(ctx, d.ID); err != nil || got.Name != d.Name {
		t.Errorf("GetDisaster = %+v, %v", got, err)
	}

	in := disasterInput()
	in.ID = "DIS001"
	if _, err := svc.CreateDisaster(ctx, in); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateDisaster(ctx, in); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate: err = %v, want ErrConflict", err)
	}

	bad := disasterInput()
	bad.Type = "meteor"
	if _, err := svc.CreateDisaster(ctx, bad); !errors.Is(err, models.ErrValidation) {
		t.Errorf("bad type: err = %v, want ErrValidation", err)
	}

	list, err := svc.ListDisasters(ctx, models.DisasterFilter{Status: models.DisasterActive})
	if err != nil || len(list) != 2 {
		t.Errorf("ListDisasters = %d, %v", len(list), err)
	}
}
