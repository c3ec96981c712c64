// Package reunify proposes matches between missing-person reports and
// registered survivors using fuzzy, explainable factor scores.
package reunify

import (
	"fmt"
	"strings"

	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/similarity"
	"github.com/RameshMYatnalli/new-claimsat/pkg/utils"
)

// Neutral is the score given to a factor whose input is missing on either side.
const Neutral = 50.0

// NameSimilarity compares two names after lower-casing and trimming. Names
// that are empty after trimming count as missing and score 0.
func NameSimilarity(a, b string) (float64, string) {
	n1, n2 := utils.Normalize(a), utils.Normalize(b)
	if n1 == "" || n2 == "" {
		return 0, "One or both names missing"
	}
	if n1 == n2 {
		return 100, fmt.Sprintf("Exact name match: '%s'", a)
	}
	if ratio, ok := similarity.Containment(n1, n2); ok {
		return 80 + ratio*20, fmt.Sprintf("Partial name match: '%s' ≈ '%s'", a, b)
	}
	sim := similarity.EditSimilarity(n1, n2)
	switch {
	case sim >= 70:
		return sim, fmt.Sprintf("High name similarity: '%s' ≈ '%s' (%.0f%%)", a, b, sim)
	case sim >= 50:
		return sim, fmt.Sprintf("Moderate name similarity: '%s' ≈ '%s' (%.0f%%)", a, b, sim)
	default:
		return sim, fmt.Sprintf("Low name similarity: '%s' vs '%s' (%.0f%%)", a, b, sim)
	}
}

// AgeOverlap scores two ages: 100 when equal, 70-100 within tolerance, 30-70
// within twice the tolerance, 0 beyond.
func AgeOverlap(a, b *int, tolerance int) (float64, string) {
	if a == nil || b == nil {
		return Neutral, "Age information missing for one or both persons"
	}
	if tolerance <= 0 {
		tolerance = 3
	}
	diff := *a - *b
	if diff < 0 {
		diff = -diff
	}
	tol := float64(tolerance)
	switch {
	case diff == 0:
		return 100, fmt.Sprintf("Exact age match: %d years", *a)
	case diff <= tolerance:
		return 100 - float64(diff)/tol*30, fmt.Sprintf("Age within tolerance: %d vs %d (±%d years)", *a, *b, tolerance)
	case diff <= 2*tolerance:
		return 70 - float64(diff-tolerance)/tol*40, fmt.Sprintf("Age close but outside tolerance: %d vs %d", *a, *b)
	default:
		return 0, fmt.Sprintf("Age mismatch: %d vs %d (difference: %d years)", *a, *b, diff)
	}
}

// GenderScore is 100 for a case-insensitive match and 0 otherwise.
func GenderScore(a, b models.Gender) (float64, string) {
	if strings.TrimSpace(string(a)) == "" || strings.TrimSpace(string(b)) == "" {
		return Neutral, "Gender information missing"
	}
	if strings.EqualFold(string(a), string(b)) {
		return 100, fmt.Sprintf("Gender match: %s", a)
	}
	return 0, fmt.Sprintf("Gender mismatch: %s vs %s", a, b)
}

// PhysicalDescSimilarity is the Jaccard overlap of the descriptions' word sets.
func PhysicalDescSimilarity(a, b string) (float64, string) {
	if a == "" || b == "" {
		return Neutral, "Physical description missing for one or both persons"
	}
	if len(similarity.Tokens(a))+len(similarity.Tokens(b)) == 0 {
		return 0, "No description overlap"
	}
	score, common := similarity.Jaccard(a, b)
	switch {
	case score >= 50:
		return score, fmt.Sprintf("High description similarity (%d matching keywords)", common)
	case score >= 25:
		return score, fmt.Sprintf("Moderate description similarity (%d matching keywords)", common)
	default:
		return score, "Low description similarity"
	}
}

// Matcher scores a missing person against a survivor.
type Matcher struct {
	cfg config.MatchingConfig
}

// NewMatcher fails with config.ErrConfiguration when cfg is invalid.
func NewMatcher(cfg config.MatchingConfig) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg}, nil
}

// LocationProximity scores two coordinates with quadratic decay up to the
// configured threshold.
func (m *Matcher) LocationProximity(a, b *geo.Point) (float64, string) {
	if a == nil || b == nil {
		return Neutral, "Location data missing for proximity calculation"
	}
	return geo.LocationProximity(*a, *b, m.cfg.LocationThresholdKm)
}

// MatchScore returns the weighted, clamped confidence of a pair and its factor breakdown.
func (m *Matcher) MatchScore(missing, survivor models.PersonRecord) (float64, models.MatchFactors) {
	var f models.MatchFactors
	f.NameSimilarityScore, f.NameExplanation = NameSimilarity(missing.Name, survivor.Name)
	f.AgeOverlapScore, f.AgeExplanation = AgeOverlap(missing.Age, survivor.Age, m.cfg.AgeTolerance)
	f.GenderScore, f.GenderExplanation = GenderScore(missing.Gender, survivor.Gender)
	f.LocationProximityScore, f.LocationExplanation = m.LocationProximity(missing.Location, survivor.Location)
	f.PhysicalDescScore, f.PhysicalDescExplanation = PhysicalDescSimilarity(missing.PhysicalDescription, survivor.PhysicalDescription)

	w := m.cfg
	total := f.NameSimilarityScore*w.NameWeight +
		f.AgeOverlapScore*w.AgeWeight +
		f.GenderScore*w.GenderWeight +
		f.LocationProximityScore*w.LocationWeight +
		f.PhysicalDescScore*w.PhysicalWeight
	return utils.ClampScore(total), f
}
