package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteClaimScore(t *testing.T) {
	score := &models.ClaimScore{
		ConfidenceScore:  82.5,
		Status:           models.ClaimApproved,
		DisasterID:       "DIS001",
		FinalExplanation: "High confidence claim.",
		Factors: models.ScoringFactors{
			LocationScore:       100,
			LocationExplanation: "Claim location is within the disaster zone",
		},
	}

	var buf bytes.Buffer
	if err := WriteClaimScore(&buf, "CLM0000ABCD", score, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		ClaimID    string  `json:"claim_id"`
		Confidence float64 `json:"confidence_score"`
		Status     string  `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.ClaimID != "CLM0000ABCD" || decoded.Confidence != 82.5 || decoded.Status != "approved" {
		t.Errorf("decoded: %+v", decoded)
	}

	buf.Reset()
	if err := WriteClaimScore(&buf, "CLM0000ABCD", score, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"CLM0000ABCD", "82.50", "approved", "DIS001", "within the disaster zone", "High confidence claim."} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMatches(t *testing.T) {
	matches := []*models.Match{
		{ID: "m-1", MissingPersonID: "MP00000001", SurvivorID: "SV00000001", ConfidenceScore: 91.2, Status: models.MatchPending},
	}

	var buf bytes.Buffer
	if err := WriteMatches(&buf, "MP00000001", matches, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 matches for MP00000001", "SV00000001", "91.20", "m-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteMatches(&buf, "SV00000009", nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Count   int               `json:"count"`
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Count != 0 || decoded.Matches == nil {
		t.Errorf("empty result should encode an empty list: %s", buf.String())
	}
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	stats := &storage.Stats{Disasters: 1, Claims: 3, ClaimEvents: 9, Matches: 2, VerifiedMatches: 1, SizeBytes: 4096}
	if err := WriteStats(&buf, stats, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Claims:           3 (9 events)", "2 (1 verified)", "4.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		1 << 20: "1.0 MiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
