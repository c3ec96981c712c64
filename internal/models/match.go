package models

import "time"

// MatchStatus is the verification state of a proposed match.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchConfirmed MatchStatus = "confirmed"
	MatchRejected  MatchStatus = "rejected"
)

// MatchFactors holds the five person-matching factor scores with explanations.
type MatchFactors struct {
	NameSimilarityScore     float64 `json:"name_similarity_score" bson:"name_similarity_score"`
	NameExplanation         string  `json:"name_explanation" bson:"name_explanation"`
	AgeOverlapScore         float64 `json:"age_overlap_score" bson:"age_overlap_score"`
	AgeExplanation          string  `json:"age_explanation" bson:"age_explanation"`
	GenderScore             float64 `json:"gender_score" bson:"gender_score"`
	GenderExplanation       string  `json:"gender_explanation" bson:"gender_explanation"`
	LocationProximityScore  float64 `json:"location_proximity_score" bson:"location_proximity_score"`
	LocationExplanation     string  `json:"location_explanation" bson:"location_explanation"`
	PhysicalDescScore       float64 `json:"physical_desc_score" bson:"physical_desc_score"`
	PhysicalDescExplanation string  `json:"physical_desc_explanation" bson:"physical_desc_explanation"`
}

// Match is a proposed pairing of a missing person with a survivor. Only the
// verification fields change after creation.
type Match struct {
	ID                string       `json:"match_id" bson:"match_id"`
	MissingPersonID   string       `json:"missing_person_id" bson:"missing_person_id"`
	SurvivorID        string       `json:"survivor_id" bson:"survivor_id"`
	DisasterID        string       `json:"disaster_id,omitempty" bson:"disaster_id,omitempty"`
	ConfidenceScore   float64      `json:"confidence_score" bson:"confidence_score"`
	Factors           MatchFactors `json:"factors" bson:"factors"`
	Verified          bool         `json:"verified" bson:"verified"`
	VerifiedBy        string       `json:"verified_by,omitempty" bson:"verified_by,omitempty"`
	VerifiedAt        *time.Time   `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	VerificationNotes string       `json:"verification_notes,omitempty" bson:"verification_notes,omitempty"`
	Status            MatchStatus  `json:"status" bson:"status"`
	MatchedAt         time.Time    `json:"matched_at" bson:"matched_at"`
}

// Verification is an authority's decision on a match.
type Verification struct {
	Verified          bool   `json:"verified"`
	VerifiedBy        string `json:"verified_by"`
	VerificationNotes string `json:"verification_notes,omitempty"`
}

// Validate requires the deciding authority to be named.
func (v *Verification) Validate() error {
	if v.VerifiedBy == "" {
		return invalid("verified_by is required")
	}
	return nil
}

// MatchFilter narrows ListMatches. Verified is tri-state; nil means any.
type MatchFilter struct {
	MinConfidence float64
	Verified      *bool
	DisasterID    string
	Limit         int
}
