package models

import (
	"strings"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
)

// Gender as reported. Comparison is case-insensitive.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// PersonStatus tracks a person through the reunification process.
type PersonStatus string

const (
	PersonMissing   PersonStatus = "missing"
	PersonFound     PersonStatus = "found"
	PersonSearching PersonStatus = "searching"
	PersonReunited  PersonStatus = "reunited"
)

func validPersonStatus(s PersonStatus) bool {
	switch s {
	case PersonMissing, PersonFound, PersonSearching, PersonReunited:
		return true
	}
	return false
}

// PersonRecord is the side-neutral view of a missing person or survivor that
// the matcher compares. Optional fields are nil or empty when unknown.
type PersonRecord struct {
	ID                  string
	DisasterID          string
	Name                string
	Age                 *int
	Gender              Gender
	Height              *int
	Weight              *int
	PhysicalDescription string
	Location            *geo.Point
	Status              PersonStatus
}

// MissingPerson is a person reported missing after a disaster.
type MissingPerson struct {
	ID                  string       `json:"person_id" bson:"person_id"`
	DisasterID          string       `json:"disaster_id" bson:"disaster_id"`
	Name                string       `json:"name" bson:"name"`
	Age                 *int         `json:"age,omitempty" bson:"age,omitempty"`
	Gender              Gender       `json:"gender,omitempty" bson:"gender,omitempty"`
	Height              *int         `json:"height,omitempty" bson:"height,omitempty"`
	Weight              *int         `json:"weight,omitempty" bson:"weight,omitempty"`
	PhysicalDescription string       `json:"physical_description,omitempty" bson:"physical_description,omitempty"`
	LastSeenLocation    string       `json:"last_seen_location" bson:"last_seen_location"`
	LastSeenDate        string       `json:"last_seen_date" bson:"last_seen_date"`
	LastSeenCoordinates *geo.Point   `json:"last_seen_coordinates,omitempty" bson:"last_seen_coordinates,omitempty"`
	ReportedBy          string       `json:"reported_by" bson:"reported_by"`
	ReporterContact     string       `json:"reporter_contact" bson:"reporter_contact"`
	ReporterRelation    string       `json:"reporter_relation,omitempty" bson:"reporter_relation,omitempty"`
	Status              PersonStatus `json:"status" bson:"status"`
	PhotoURL            string       `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	AdditionalInfo      string       `json:"additional_info,omitempty" bson:"additional_info,omitempty"`
	CreatedAt           time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" bson:"updated_at"`
}

// Record returns the matcher view of p.
func (p *MissingPerson) Record() PersonRecord {
	return PersonRecord{
		ID:                  p.ID,
		DisasterID:          p.DisasterID,
		Name:                p.Name,
		Age:                 p.Age,
		Gender:              p.Gender,
		Height:              p.Height,
		Weight:              p.Weight,
		PhysicalDescription: p.PhysicalDescription,
		Location:            p.LastSeenCoordinates,
		Status:              p.Status,
	}
}

// Survivor is a person registered at a shelter or by an authority.
type Survivor struct {
	ID                  string       `json:"survivor_id" bson:"survivor_id"`
	DisasterID          string       `json:"disaster_id" bson:"disaster_id"`
	Name                string       `json:"name,omitempty" bson:"name,omitempty"`
	Age                 *int         `json:"age,omitempty" bson:"age,omitempty"`
	Gender              Gender       `json:"gender,omitempty" bson:"gender,omitempty"`
	Height              *int         `json:"height,omitempty" bson:"height,omitempty"`
	Weight              *int         `json:"weight,omitempty" bson:"weight,omitempty"`
	PhysicalDescription string       `json:"physical_description,omitempty" bson:"physical_description,omitempty"`
	CurrentLocation     string       `json:"current_location" bson:"current_location"`
	CurrentCoordinates  *geo.Point   `json:"current_coordinates,omitempty" bson:"current_coordinates,omitempty"`
	ShelterName         string       `json:"shelter_name,omitempty" bson:"shelter_name,omitempty"`
	RegisteredBy        string       `json:"registered_by" bson:"registered_by"`
	RegisteredAt        time.Time    `json:"registered_at" bson:"registered_at"`
	Status              PersonStatus `json:"status" bson:"status"`
	MedicalCondition    string       `json:"medical_condition,omitempty" bson:"medical_condition,omitempty"`
	PhotoURL            string       `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	AdditionalInfo      string       `json:"additional_info,omitempty" bson:"additional_info,omitempty"`
	CreatedAt           time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" bson:"updated_at"`
}

// Record returns the matcher view of s.
func (s *Survivor) Record() PersonRecord {
	return PersonRecord{
		ID:                  s.ID,
		DisasterID:          s.DisasterID,
		Name:                s.Name,
		Age:                 s.Age,
		Gender:              s.Gender,
		Height:              s.Height,
		Weight:              s.Weight,
		PhysicalDescription: s.PhysicalDescription,
		Location:            s.CurrentCoordinates,
		Status:              s.Status,
	}
}

// MissingPersonInput is the request body for reporting a missing person.
type MissingPersonInput struct {
	DisasterID          string     `json:"disaster_id"`
	Name                string     `json:"name"`
	Age                 *int       `json:"age,omitempty"`
	Gender              Gender     `json:"gender,omitempty"`
	Height              *int       `json:"height,omitempty"`
	Weight              *int       `json:"weight,omitempty"`
	PhysicalDescription string     `json:"physical_description,omitempty"`
	LastSeenLocation    string     `json:"last_seen_location"`
	LastSeenDate        string     `json:"last_seen_date"`
	LastSeenCoordinates *geo.Point `json:"last_seen_coordinates,omitempty"`
	ReportedBy          string     `json:"reported_by"`
	ReporterContact     string     `json:"reporter_contact"`
	ReporterRelation    string     `json:"reporter_relation,omitempty"`
	PhotoURL            string     `json:"photo_url,omitempty"`
	AdditionalInfo      string     `json:"additional_info,omitempty"`
}

// Validate checks the required fields and value ranges.
func (in *MissingPersonInput) Validate() error {
	required := []struct{ name, value string }{
		{"disaster_id", in.DisasterID},
		{"name", in.Name},
		{"last_seen_location", in.LastSeenLocation},
		{"last_seen_date", in.LastSeenDate},
		{"reported_by", in.ReportedBy},
		{"reporter_contact", in.ReporterContact},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	return validateTraits(in.Age, in.Gender, in.LastSeenCoordinates)
}

// SurvivorInput is the request body for registering a survivor.
type SurvivorInput struct {
	DisasterID          string     `json:"disaster_id"`
	Name                string     `json:"name,omitempty"`
	Age                 *int       `json:"age,omitempty"`
	Gender              Gender     `json:"gender,omitempty"`
	Height              *int       `json:"height,omitempty"`
	Weight              *int       `json:"weight,omitempty"`
	PhysicalDescription string     `json:"physical_description,omitempty"`
	CurrentLocation     string     `json:"current_location"`
	CurrentCoordinates  *geo.Point `json:"current_coordinates,omitempty"`
	ShelterName         string     `json:"shelter_name,omitempty"`
	RegisteredBy        string     `json:"registered_by"`
	MedicalCondition    string     `json:"medical_condition,omitempty"`
	PhotoURL            string     `json:"photo_url,omitempty"`
	AdditionalInfo      string     `json:"additional_info,omitempty"`
}

// Validate checks the required fields and value ranges.
func (in *SurvivorInput) Validate() error {
	required := []struct{ name, value string }{
		{"disaster_id", in.DisasterID},
		{"current_location", in.CurrentLocation},
		{"registered_by", in.RegisteredBy},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	return validateTraits(in.Age, in.Gender, in.CurrentCoordinates)
}

func validateTraits(age *int, gender Gender, loc *geo.Point) error {
	if age != nil && (*age < 0 || *age > 150) {
		return invalid("age must be between 0 and 150")
	}
	switch Gender(strings.ToLower(string(gender))) {
	case "", GenderMale, GenderFemale, GenderOther, GenderUnknown:
	default:
		return invalid("unknown gender %q", gender)
	}
	if loc != nil && !loc.Valid() {
		return invalid("coordinates %s are out of range", *loc)
	}
	return nil
}

// PersonFilter narrows the person listings.
type PersonFilter struct {
	DisasterID string
	Statuses   []PersonStatus
	Limit      int
}

// ParseStatuses splits a comma-separated status list, rejecting unknown values.
func ParseStatuses(s string) ([]PersonStatus, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []PersonStatus
	for _, part := range strings.Split(s, ",") {
		st := PersonStatus(strings.ToLower(strings.TrimSpace(part)))
		if !validPersonStatus(st) {
			return nil, invalid("unknown person status %q", part)
		}
		out = append(out, st)
	}
	return out, nil
}
