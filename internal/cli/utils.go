// Package cli formats claim scores, matches, and store status for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
	"github.com/RameshMYatnalli/new-claimsat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json". Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteClaimScore writes a claim's score and factor breakdown.
func WriteClaimScore(w io.Writer, claimID string, score *models.ClaimScore, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			ClaimID string `json:"claim_id"`
			*models.ClaimScore
		}{claimID, score})
	}
	fmt.Fprintf(w, "\nClaim %s: %.2f (%s)\n", claimID, score.ConfidenceScore, score.Status)
	if score.DisasterID != "" {
		fmt.Fprintf(w, "Disaster: %s\n", score.DisasterID)
	}
	f := score.Factors
	rows := []struct {
		name  string
		score float64
		expl  string
	}{
		{"location", f.LocationScore, f.LocationExplanation},
		{"time", f.TimeScore, f.TimeExplanation},
		{"evidence type", f.EvidenceTypeScore, f.EvidenceTypeExplanation},
		{"visual", f.VisualRelevanceScore, f.VisualRelevanceExplanation},
		{"metadata", f.MetadataIntegrityScore, f.MetadataIntegrityExplanation},
	}
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s %6.2f  %s\n", r.name, r.score, utils.Truncate(r.expl, 120))
	}
	fmt.Fprintf(w, "\n%s\n", score.FinalExplanation)
	return nil
}

// WriteMatches writes the matches found for anchorID, best first.
func WriteMatches(w io.Writer, anchorID string, matches []*models.Match, format OutputFormat) error {
	if format == OutputJSON {
		if matches == nil {
			matches = []*models.Match{}
		}
		return writeJSON(w, map[string]any{
			"anchor_id": anchorID,
			"count":     len(matches),
			"matches":   matches,
		})
	}
	fmt.Fprintf(w, "\nFound %d matches for %s\n\n", len(matches), anchorID)
	for i, m := range matches {
		f := m.Factors
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s <-> %s | Confidence: %.2f | %s\n", i+1, m.MissingPersonID, m.SurvivorID, m.ConfidenceScore, m.Status)
		fmt.Fprintf(w, "   name %.0f, age %.0f, gender %.0f, location %.0f, physical %.0f\n",
			f.NameSimilarityScore, f.AgeOverlapScore, f.GenderScore, f.LocationProximityScore, f.PhysicalDescScore)
		fmt.Fprintf(w, "   Match ID: %s\n", m.ID)
	}
	return nil
}

// WriteStats writes record counts from the store.
func WriteStats(w io.Writer, stats *storage.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintf(w, "Disasters:        %d\n", stats.Disasters)
	fmt.Fprintf(w, "Claims:           %d (%d events)\n", stats.Claims, stats.ClaimEvents)
	fmt.Fprintf(w, "Missing persons:  %d\n", stats.MissingPersons)
	fmt.Fprintf(w, "Survivors:        %d\n", stats.Survivors)
	fmt.Fprintf(w, "Matches:          %d (%d verified)\n", stats.Matches, stats.VerifiedMatches)
	if stats.SizeBytes > 0 {
		fmt.Fprintf(w, "Database size:    %s\n", FormatBytes(stats.SizeBytes))
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
