package models

import (
	"strings"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
)

// ClaimStatus is derived from the confidence score. New claims are pending.
type ClaimStatus string

const (
	ClaimPending        ClaimStatus = "pending"
	ClaimApproved       ClaimStatus = "approved"
	ClaimReviewRequired ClaimStatus = "review_required"
	ClaimRejected       ClaimStatus = "rejected"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimReviewRequired, ClaimRejected:
		return true
	}
	return false
}

// Evidence is one uploaded media item attached to a claim. VisualScore and
// VisualExplanation cache the analysis made at upload time.
type Evidence struct {
	ID                string        `json:"evidence_id" bson:"evidence_id"`
	Type              evidence.Kind `json:"type" bson:"type"`
	Filename          string        `json:"filename,omitempty" bson:"filename,omitempty"`
	FileHash          string        `json:"file_hash" bson:"file_hash"`
	FileSize          int64         `json:"file_size" bson:"file_size"`
	CaptureTime       string        `json:"capture_time,omitempty" bson:"capture_time,omitempty"`
	Location          *geo.Point    `json:"location,omitempty" bson:"location,omitempty"`
	VisualScore       float64       `json:"visual_score" bson:"visual_score"`
	VisualExplanation string        `json:"visual_explanation" bson:"visual_explanation"`
	MediaKey          string        `json:"media_key,omitempty" bson:"media_key,omitempty"`
	UploadedAt        time.Time     `json:"uploaded_at" bson:"uploaded_at"`
}

// ScoringFactors holds the five claim factor scores with their explanations.
type ScoringFactors struct {
	LocationScore                float64 `json:"location_score" bson:"location_score"`
	LocationExplanation          string  `json:"location_explanation" bson:"location_explanation"`
	TimeScore                    float64 `json:"time_score" bson:"time_score"`
	TimeExplanation              string  `json:"time_explanation" bson:"time_explanation"`
	EvidenceTypeScore            float64 `json:"evidence_type_score" bson:"evidence_type_score"`
	EvidenceTypeExplanation      string  `json:"evidence_type_explanation" bson:"evidence_type_explanation"`
	VisualRelevanceScore         float64 `json:"visual_relevance_score" bson:"visual_relevance_score"`
	VisualRelevanceExplanation   string  `json:"visual_relevance_explanation" bson:"visual_relevance_explanation"`
	MetadataIntegrityScore       float64 `json:"metadata_integrity_score" bson:"metadata_integrity_score"`
	MetadataIntegrityExplanation string  `json:"metadata_integrity_explanation" bson:"metadata_integrity_explanation"`
}

// ClaimScore is the result of one scoring run.
type ClaimScore struct {
	ConfidenceScore  float64        `json:"confidence_score" bson:"confidence_score"`
	Status           ClaimStatus    `json:"status" bson:"status"`
	Factors          ScoringFactors `json:"factors" bson:"factors"`
	FinalExplanation string         `json:"final_explanation" bson:"final_explanation"`
	DisasterID       string         `json:"disaster_id,omitempty" bson:"disaster_id,omitempty"`
	ScoredAt         time.Time      `json:"scored_at" bson:"scored_at"`
}

// Claim is a damage claim with its evidence and latest score.
type Claim struct {
	ID                string      `json:"claim_id" bson:"claim_id"`
	ClaimantName      string      `json:"claimant_name" bson:"claimant_name"`
	ClaimantContact   string      `json:"claimant_contact" bson:"claimant_contact"`
	PropertyAddress   string      `json:"property_address" bson:"property_address"`
	Location          geo.Point   `json:"location" bson:"location"`
	DisasterID        string      `json:"disaster_id,omitempty" bson:"disaster_id,omitempty"`
	IncidentDate      string      `json:"incident_date" bson:"incident_date"`
	DamageDescription string      `json:"damage_description" bson:"damage_description"`
	EstimatedLoss     *float64    `json:"estimated_loss,omitempty" bson:"estimated_loss,omitempty"`
	Evidence          []Evidence  `json:"evidence" bson:"evidence"`
	Score             *ClaimScore `json:"score,omitempty" bson:"score,omitempty"`
	Status            ClaimStatus `json:"status" bson:"status"`
	CreatedAt         time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" bson:"updated_at"`
}

// ClaimInput is the request body for filing a claim.
type ClaimInput struct {
	ClaimantName      string    `json:"claimant_name"`
	ClaimantContact   string    `json:"claimant_contact"`
	PropertyAddress   string    `json:"property_address"`
	Location          geo.Point `json:"location"`
	DisasterID        string    `json:"disaster_id,omitempty"`
	IncidentDate      string    `json:"incident_date"`
	DamageDescription string    `json:"damage_description"`
	EstimatedLoss     *float64  `json:"estimated_loss,omitempty"`
}

// Validate checks the required fields. The incident date is kept as given;
// unparseable dates are scored leniently rather than rejected.
func (in *ClaimInput) Validate() error {
	required := []struct{ name, value string }{
		{"claimant_name", in.ClaimantName},
		{"claimant_contact", in.ClaimantContact},
		{"property_address", in.PropertyAddress},
		{"incident_date", in.IncidentDate},
		{"damage_description", in.DamageDescription},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	if !in.Location.Valid() {
		return invalid("location %s is out of range", in.Location)
	}
	if in.EstimatedLoss != nil && *in.EstimatedLoss < 0 {
		return invalid("estimated_loss must not be negative")
	}
	return nil
}

// EventType names an audit trail entry.
type EventType string

const (
	EventCreated       EventType = "created"
	EventEvidenceAdded EventType = "evidence_added"
	EventScored        EventType = "scored"
	EventStatusChanged EventType = "status_changed"
)

// ClaimEvent is one entry of a claim's audit trail.
type ClaimEvent struct {
	ID          string         `json:"event_id" bson:"event_id"`
	ClaimID     string         `json:"claim_id" bson:"claim_id"`
	Type        EventType      `json:"event_type" bson:"event_type"`
	Data        map[string]any `json:"event_data" bson:"event_data"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
	PerformedBy string         `json:"performed_by,omitempty" bson:"performed_by,omitempty"`
}

// ClaimFilter narrows ListClaims. Results are newest first.
type ClaimFilter struct {
	Status     ClaimStatus
	DisasterID string
	Limit      int
}
