package utils

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 42, 0, 100, 42},
		{"below", -5, 0, 100, 0},
		{"above", 250, 0, 100, 100},
		{"nan", math.NaN(), 0, 100, 0},
		{"edge", 100, 0, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
	if ClampScore(120) != 100 || ClampScore(-1) != 0 {
		t.Error("ClampScore should bound to [0,100]")
	}
}

func TestMeanStdDev(t *testing.T) {
	if Mean(nil) != 0 {
		t.Error("mean of empty should be 0")
	}
	if got := Mean([]float64{0.9, 0.7}); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Mean = %v, want 0.8", got)
	}
	if got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); math.Abs(got-2) > 1e-9 {
		t.Errorf("StdDev = %v, want 2", got)
	}
	if StdDev([]float64{3, 3, 3}) != 0 {
		t.Error("constant series should have zero spread")
	}
}
