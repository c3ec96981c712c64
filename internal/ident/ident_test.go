package ident

import (
	"regexp"
	"strings"
	"testing"
)

func TestShortIDs(t *testing.T) {
	tests := []struct {
		name string
		gen  func() string
		re   *regexp.Regexp
	}{
		{"claim", NewClaimID, regexp.MustCompile(`^CLM[0-9A-F]{8}$`)},
		{"missing person", NewMissingPersonID, regexp.MustCompile(`^MP[0-9A-F]{8}$`)},
		{"survivor", NewSurvivorID, regexp.MustCompile(`^SV[0-9A-F]{8}$`)},
		{"disaster", NewDisasterID, regexp.MustCompile(`^DIS[0-9A-F]{8}$`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !tt.re.MatchString(id) {
				t.Errorf("id %q does not match %s", id, tt.re)
			}
			if tt.gen() == id {
				t.Errorf("two generated ids collided: %q", id)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("NewID() = %q, want uuid form", id)
	}
}

func TestPairKey(t *testing.T) {
	a := PairKey("MP1", "SV1")
	if a != PairKey("MP1", "SV1") {
		t.Error("PairKey should be deterministic")
	}
	if a == PairKey("SV1", "MP1") {
		t.Error("PairKey should depend on role order")
	}
	if a == PairKey("MP1S", "V1") {
		t.Error("PairKey should separate its parts")
	}
	if !strings.HasPrefix(a, "pair:") {
		t.Errorf("PairKey() = %q, want pair: prefix", a)
	}
}
