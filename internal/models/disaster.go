package models

import (
	"strings"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/timescore"
)

// DisasterType classifies a disaster.
type DisasterType string

const (
	DisasterFlood      DisasterType = "flood"
	DisasterEarthquake DisasterType = "earthquake"
	DisasterCyclone    DisasterType = "cyclone"
	DisasterLandslide  DisasterType = "landslide"
	DisasterFire       DisasterType = "fire"
	DisasterTsunami    DisasterType = "tsunami"
	DisasterOther      DisasterType = "other"
)

// Valid reports whether t is a known disaster type.
func (t DisasterType) Valid() bool {
	switch t {
	case DisasterFlood, DisasterEarthquake, DisasterCyclone, DisasterLandslide,
		DisasterFire, DisasterTsunami, DisasterOther:
		return true
	}
	return false
}

// DisasterStatus is the lifecycle state of a disaster. Only active disasters
// take part in automatic claim resolution.
type DisasterStatus string

const (
	DisasterActive     DisasterStatus = "active"
	DisasterMonitoring DisasterStatus = "monitoring"
	DisasterResolved   DisasterStatus = "resolved"
)

// GeoJSONPolygon is the affected area in GeoJSON form.
type GeoJSONPolygon struct {
	Type        string      `json:"type" bson:"type"`
	Coordinates geo.Polygon `json:"coordinates" bson:"coordinates"`
}

// Disaster is a disaster record with its affected area and time window.
type Disaster struct {
	ID          string         `json:"disaster_id" bson:"disaster_id"`
	Name        string         `json:"name" bson:"name"`
	Type        DisasterType   `json:"type" bson:"type"`
	Location    GeoJSONPolygon `json:"location" bson:"location"`
	StartDate   time.Time      `json:"start_date" bson:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Status      DisasterStatus `json:"status" bson:"status"`
	Severity    int            `json:"severity,omitempty" bson:"severity,omitempty"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// Window returns the disaster's time window. A nil end date means ongoing.
func (d *Disaster) Window() timescore.Window {
	return timescore.Window{Start: d.StartDate, End: d.EndDate}
}

// DisasterInput is the request body for registering a disaster.
type DisasterInput struct {
	ID          string         `json:"disaster_id"`
	Name        string         `json:"name"`
	Type        DisasterType   `json:"type"`
	Location    GeoJSONPolygon `json:"location"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date,omitempty"`
	Status      DisasterStatus `json:"status,omitempty"`
	Severity    int            `json:"severity,omitempty"`
	Description string         `json:"description,omitempty"`
}

// ToDisaster validates in and converts it to a record stamped with now.
func (in *DisasterInput) ToDisaster(now time.Time) (*Disaster, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name is required")
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown disaster type %q", in.Type)
	}
	if !in.Location.Coordinates.Valid() {
		return nil, invalid("location must be a polygon with at least three positions")
	}
	if in.Severity != 0 && (in.Severity < 1 || in.Severity > 5) {
		return nil, invalid("severity must be between 1 and 5")
	}
	start, err := timescore.ParseTimestamp(in.StartDate)
	if err != nil {
		return nil, invalid("start_date: %v", err)
	}
	var end *time.Time
	if in.EndDate != "" {
		e, err := timescore.ParseTimestamp(in.EndDate)
		if err != nil {
			return nil, invalid("end_date: %v", err)
		}
		if e.Before(start) {
			return nil, invalid("end_date precedes start_date")
		}
		end = &e
	}
	status := in.Status
	switch status {
	case "":
		status = DisasterActive
	case DisasterActive, DisasterMonitoring, DisasterResolved:
	default:
		return nil, invalid("unknown disaster status %q", status)
	}
	loc := in.Location
	if loc.Type == "" {
		loc.Type = "Polygon"
	}
	return &Disaster{
		ID:          in.ID,
		Name:        in.Name,
		Type:        in.Type,
		Location:    loc,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Severity:    in.Severity,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DisasterFilter narrows ListDisasters.
type DisasterFilter struct {
	Status DisasterStatus
}
