package similarity

import (
	"math"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical name", "ramesh kumar", "ramesh kumar", 0},
		{"identical unicode", "ரமேஷ்", "ரமேஷ்", 0},

		{"empty a", "", "priya", 5},
		{"empty b", "priya", "", 5},

		{"one substitution", "suresh", "suresj", 1},
		{"one insertion", "anil", "anill", 1},
		{"one deletion", "lakshmi", "lakshi", 1},

		{"kitten to sitting", "kitten", "sitting", 3},
		{"transliteration", "mohammed", "muhammad", 2},
		{"unicode substitution", "josé", "jose", 1},
		{"case matters", "Ramesh", "ramesh", 1},
		{"transposition counts twice", "ab", "ba", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevenshteinDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
			if rev := LevenshteinDistance(tt.b, tt.a); rev != result {
				t.Errorf("LevenshteinDistance is not symmetric: (%q,%q)=%d, (%q,%q)=%d",
					tt.a, tt.b, result, tt.b, tt.a, rev)
			}
		})
	}
}

func TestEditSimilarity(t *testing.T) {
	if got := EditSimilarity("", ""); got != 0 {
		t.Errorf("EditSimilarity of empties = %v, want 0", got)
	}
	if got := EditSimilarity("kitten", "sitting"); math.Abs(got-(1-3.0/7)*100) > 1e-9 {
		t.Errorf("EditSimilarity(kitten, sitting) = %v", got)
	}
	if got := EditSimilarity("abc", "xyz"); got != 0 {
		t.Errorf("EditSimilarity of disjoint = %v, want 0", got)
	}
}

func TestContainment(t *testing.T) {
	ratio, ok := Containment("ramesh", "ramesh kumar")
	if !ok || math.Abs(ratio-6.0/12) > 1e-9 {
		t.Errorf("Containment = %v, %v; want 0.5, true", ratio, ok)
	}
	if _, ok := Containment("ramesh", "suresh"); ok {
		t.Error("no containment expected")
	}
	if _, ok := Containment("", "x"); ok {
		t.Error("empty string should not count as contained")
	}
}
