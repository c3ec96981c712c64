// Package claims scores damage claims and manages their evidence and audit trail.
package claims

import (
	"fmt"
	"strings"

	"github.com/RameshMYatnalli/new-claimsat/internal/config"
	"github.com/RameshMYatnalli/new-claimsat/internal/disaster"
	"github.com/RameshMYatnalli/new-claimsat/internal/evidence"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/pkg/utils"
)

// Status thresholds on the clamped confidence score.
const (
	ApprovedThreshold       = 75.0
	ReviewRequiredThreshold = 50.0
	LowConfidenceThreshold  = 25.0
)

// Visual is the cached 0-1 visual relevance of one evidence item.
type Visual struct {
	Score       float64
	Explanation string
}

// Factors are the five claim factor scores, each in [0, 100].
type Factors struct {
	Location     float64
	Time         float64
	EvidenceType float64
	Visual       float64
	Metadata     float64
}

// Engine combines claim factors with a validated weight set.
type Engine struct {
	weights config.ScoringConfig
}

// NewEngine fails with config.ErrConfiguration when cfg is invalid.
func NewEngine(cfg config.ScoringConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: cfg}, nil
}

// EvidenceTypeScore prefers video over images over anything else.
func EvidenceTypeScore(items []models.Evidence) (float64, string) {
	if len(items) == 0 {
		return 0, "No evidence provided"
	}
	var videos, images int
	for _, it := range items {
		switch it.Type {
		case evidence.KindVideo:
			videos++
		case evidence.KindImage:
			images++
		}
	}
	switch {
	case videos > 0:
		return 100, fmt.Sprintf("Video evidence provided (%d video(s))", videos)
	case images > 0:
		return 75, fmt.Sprintf("Image evidence provided (%d image(s))", images)
	default:
		return 50, "Evidence provided but type unclear"
	}
}

// MetadataIntegrityScore averages the share of items with a capture time and
// the share with a location.
func MetadataIntegrityScore(items []models.Evidence) (float64, string) {
	if len(items) == 0 {
		return 0, "No evidence to verify metadata"
	}
	var timed, located int
	for _, it := range items {
		if it.CaptureTime != "" {
			timed++
		}
		if it.Location != nil {
			located++
		}
	}
	n := len(items)
	timePct := float64(timed) / float64(n) * 100
	locPct := float64(located) / float64(n) * 100
	return (timePct + locPct) / 2, fmt.Sprintf("%d/%d with timestamps, %d/%d with location data", timed, n, located, n)
}

// VisualAggregate is the mean visual score scaled to 0-100, or 50 when nothing was analyzed.
func VisualAggregate(visuals []Visual) (float64, string) {
	if len(visuals) == 0 {
		return 50, "No visual analysis performed"
	}
	scores := make([]float64, len(visuals))
	var expl []string
	for i, v := range visuals {
		scores[i] = v.Score
		if i < 2 {
			expl = append(expl, v.Explanation)
		}
	}
	return utils.Mean(scores) * 100, strings.Join(expl, "; ")
}

// VisualsOf returns the cached visual analysis of every item.
func VisualsOf(items []models.Evidence) []Visual {
	out := make([]Visual, len(items))
	for i, it := range items {
		out[i] = Visual{Score: it.VisualScore, Explanation: it.VisualExplanation}
	}
	return out
}

// ComputeScore returns the weighted sum of f clamped to [0, 100].
func (e *Engine) ComputeScore(f Factors) float64 {
	w := e.weights
	total := f.Location*w.LocationWeight +
		f.Time*w.TimeWeight +
		f.EvidenceType*w.EvidenceTypeWeight +
		f.Visual*w.VisualWeight +
		f.Metadata*w.MetadataWeight
	return utils.ClampScore(total)
}

// ClassifyStatus maps a clamped score to a status. The two middle bands share
// review_required and differ only in wording.
func ClassifyStatus(score float64) (models.ClaimStatus, string) {
	switch {
	case score >= ApprovedThreshold:
		return models.ClaimApproved, "High confidence - claim appears legitimate"
	case score >= ReviewRequiredThreshold:
		return models.ClaimReviewRequired, "Medium confidence - manual review recommended"
	case score >= LowConfidenceThreshold:
		return models.ClaimReviewRequired, "Low confidence - thorough review required"
	default:
		return models.ClaimRejected, "Very low confidence - likely invalid claim"
	}
}

// Score combines a disaster resolution with the claim's evidence. The result
// has no timestamp; callers stamp ScoredAt.
func (e *Engine) Score(res disaster.Resolution, items []models.Evidence) models.ClaimScore {
	evType, evTypeExpl := EvidenceTypeScore(items)
	visual, visualExpl := VisualAggregate(VisualsOf(items))
	meta, metaExpl := MetadataIntegrityScore(items)

	f := Factors{
		Location:     res.LocationScore,
		Time:         res.TimeScore,
		EvidenceType: evType,
		Visual:       visual,
		Metadata:     meta,
	}
	total := e.ComputeScore(f)
	status, statusExpl := ClassifyStatus(total)

	score := models.ClaimScore{
		ConfidenceScore: total,
		Status:          status,
		Factors: models.ScoringFactors{
			LocationScore:                f.Location,
			LocationExplanation:          res.LocationExplanation,
			TimeScore:                    f.Time,
			TimeExplanation:              res.TimeExplanation,
			EvidenceTypeScore:            f.EvidenceType,
			EvidenceTypeExplanation:      evTypeExpl,
			VisualRelevanceScore:         f.Visual,
			VisualRelevanceExplanation:   visualExpl,
			MetadataIntegrityScore:       f.Metadata,
			MetadataIntegrityExplanation: metaExpl,
		},
		FinalExplanation: fmt.Sprintf(
			"%s. Score breakdown: Location (%.1f), Time (%.1f), Evidence Type (%.1f), Visual (%.1f), Metadata (%.1f)",
			statusExpl, f.Location, f.Time, f.EvidenceType, f.Visual, f.Metadata),
	}
	if res.Disaster != nil {
		score.DisasterID = res.Disaster.ID
	}
	return score
}
