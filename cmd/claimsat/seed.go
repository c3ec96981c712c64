package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/app"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
)

const sampleDisasterID = "DIS001"

type seedResult struct {
	DisasterID      string
	DisasterExisted bool
	MissingPersons  []*models.MissingPerson
	Survivors       []*models.Survivor
	Claim           *models.Claim
}

func (r *seedResult) Print(w io.Writer) {
	if r.DisasterExisted {
		fmt.Fprintf(w, "Disaster %s already present, reused\n", r.DisasterID)
	} else {
		fmt.Fprintf(w, "Disaster: %s\n", r.DisasterID)
	}
	for _, p := range r.MissingPersons {
		fmt.Fprintf(w, "Missing person: %s - %s\n", p.ID, p.Name)
	}
	for _, s := range r.Survivors {
		fmt.Fprintf(w, "Survivor: %s - %s\n", s.ID, s.Name)
	}
	if r.Claim != nil {
		fmt.Fprintf(w, "Claim: %s - %s\n", r.Claim.ID, r.Claim.ClaimantName)
	}
	fmt.Fprintf(w, "\nTry:\n  claimsat match -missing %s\n", r.MissingPersons[0].ID)
}

func intPtr(v int) *int { return &v }

// seed loads a sample flood in Chennai with two missing persons, two matching
// survivors, and one claim. Dates are relative to now.
func seed(ctx context.Context, c *app.Components, now time.Time) (*seedResult, error) {
	day := 24 * time.Hour
	res := &seedResult{DisasterID: sampleDisasterID}

	_, err := c.Disasters.CreateDisaster(ctx, models.DisasterInput{
		ID:   sampleDisasterID,
		Name: "Chennai Floods 2024",
		Type: models.DisasterFlood,
		Location: models.GeoJSONPolygon{
			Type: "Polygon",
			Coordinates: geo.Polygon{{
				{80.2, 13.0}, {80.3, 13.0}, {80.3, 13.1}, {80.2, 13.1}, {80.2, 13.0},
			}},
		},
		StartDate:   now.Add(-2 * day).Format(time.RFC3339),
		Severity:    4,
		Description: "Severe flooding in Chennai due to heavy monsoon rains",
	})
	switch {
	case errors.Is(err, storage.ErrConflict):
		res.DisasterExisted = true
	case err != nil:
		return nil, fmt.Errorf("disaster: %w", err)
	}

	lastSeen := now.Add(-day).Format(time.RFC3339)
	missing := []models.MissingPersonInput{
		{
			DisasterID:          sampleDisasterID,
			Name:                "Ramesh Kumar",
			Age:                 intPtr(45),
			Gender:              models.GenderMale,
			Height:              intPtr(170),
			PhysicalDescription: "Medium build, black hair, wearing blue shirt",
			LastSeenLocation:    "Anna Nagar, Chennai",
			LastSeenDate:        lastSeen,
			LastSeenCoordinates: &geo.Point{Lat: 13.05, Lng: 80.25},
			ReportedBy:          "Lakshmi Kumar",
			ReporterContact:     "+91-9876543210",
			ReporterRelation:    "Wife",
		},
		{
			DisasterID:          sampleDisasterID,
			Name:                "Priya Sharma",
			Age:                 intPtr(28),
			Gender:              models.GenderFemale,
			Height:              intPtr(160),
			PhysicalDescription: "Slim build, long hair, wearing red saree",
			LastSeenLocation:    "T Nagar, Chennai",
			LastSeenDate:        lastSeen,
			LastSeenCoordinates: &geo.Point{Lat: 13.04, Lng: 80.24},
			ReportedBy:          "Suresh Sharma",
			ReporterContact:     "+91-9876543211",
			ReporterRelation:    "Brother",
		},
	}
	for _, in := range missing {
		p, err := c.Reunify.RegisterMissingPerson(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("missing person %s: %w", in.Name, err)
		}
		res.MissingPersons = append(res.MissingPersons, p)
	}

	survivors := []models.SurvivorInput{
		{
			DisasterID:          sampleDisasterID,
			Name:                "Ramesh",
			Age:                 intPtr(46),
			Gender:              models.GenderMale,
			Height:              intPtr(168),
			PhysicalDescription: "Medium build, black hair, blue clothing",
			CurrentLocation:     "Relief Camp A, Anna Nagar",
			CurrentCoordinates:  &geo.Point{Lat: 13.06, Lng: 80.26},
			ShelterName:         "Anna Nagar Relief Camp",
			RegisteredBy:        "Red Cross Chennai",
		},
		{
			DisasterID:          sampleDisasterID,
			Name:                "Priya",
			Age:                 intPtr(27),
			Gender:              models.GenderFemale,
			Height:              intPtr(162),
			PhysicalDescription: "Slim, long dark hair, red clothing",
			CurrentLocation:     "Relief Camp B, T Nagar",
			CurrentCoordinates:  &geo.Point{Lat: 13.045, Lng: 80.245},
			ShelterName:         "T Nagar Community Center",
			RegisteredBy:        "District Administration",
		},
	}
	for _, in := range survivors {
		s, err := c.Reunify.RegisterSurvivor(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("survivor %s: %w", in.Name, err)
		}
		res.Survivors = append(res.Survivors, s)
	}

	loss := 500000.0
	claim, err := c.Claims.CreateClaim(ctx, models.ClaimInput{
		ClaimantName:      "Vijay Reddy",
		ClaimantContact:   "+91-9876543212",
		PropertyAddress:   "123 Main Street, Anna Nagar, Chennai",
		Location:          geo.Point{Lat: 13.05, Lng: 80.25},
		DisasterID:        sampleDisasterID,
		IncidentDate:      lastSeen,
		DamageDescription: "Ground floor completely flooded, furniture damaged",
		EstimatedLoss:     &loss,
	})
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	res.Claim = claim
	return res, nil
}
