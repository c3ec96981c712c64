package timescore

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 11, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestScore(t *testing.T) {
	fixedNow := day(28)
	s := NewScorer(DefaultMaxDaysBefore, DefaultMaxDaysAfter)
	s.Now = func() time.Time { return fixedNow }

	closed := Window{Start: day(1), End: ptr(day(5))}
	tests := []struct {
		name     string
		incident time.Time
		window   Window
		want     float64
	}{
		{"inside", day(3), closed, 100},
		{"at start", day(1), closed, 100},
		{"at end", day(5), closed, 100},
		{"hours before start", day(1).Add(-6 * time.Hour), closed, 80},
		{"one day before", day(1).Add(-25 * time.Hour), closed, 60},
		{"two days before", day(1).Add(-49 * time.Hour), closed, 0},
		{"hours after end", day(5).Add(5 * time.Hour), closed, 100},
		{"six days after", day(11), closed, 90},
		{"thirty days after", day(5).AddDate(0, 0, 30), closed, 50},
		{"thirty-one days after", day(5).AddDate(0, 0, 31), closed, 0},
		{"open window inside", day(20), Window{Start: day(1)}, 100},
		{"open window after now", day(30), Window{Start: day(1)}, 100 - 2.0/30*50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, expl := s.Score(tt.incident, tt.window)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v (%s)", got, tt.want, expl)
			}
			if expl == "" {
				t.Error("expected explanation")
			}
		})
	}
}

func TestScore_afterDecayMonotone(t *testing.T) {
	s := NewScorer(1, 30)
	w := Window{Start: day(1), End: ptr(day(2))}
	prev := 100.0
	for d := 0; d <= 30; d++ {
		got, _ := s.Score(day(2).AddDate(0, 0, d), w)
		if got > prev || got < 50 {
			t.Fatalf("day %d: score %v (prev %v)", d, got, prev)
		}
		prev = got
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-11-01T10:00:00Z", time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-11-01T10:00:00+05:30", time.Date(2024, 11, 1, 4, 30, 0, 0, time.UTC)},
		{"2024-11-01T10:00:00.123456", time.Date(2024, 11, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2024-11-01T10:00:00", time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-11-01", time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "yesterday", "2024-13-45"} {
		if _, err := ParseTimestamp(bad); !errors.Is(err, ErrDateParse) {
			t.Errorf("ParseTimestamp(%q) error = %v, want ErrDateParse", bad, err)
		}
	}
}

func TestScoreISO_unparseableFallsBackToNow(t *testing.T) {
	now := day(3)
	s := NewScorer(1, 30)
	s.Now = func() time.Time { return now }
	got, _ := s.ScoreISO("not a date", Window{Start: day(1), End: ptr(day(5))})
	if got != 100 {
		t.Errorf("fallback to now inside window should score 100, got %v", got)
	}
	got, _ = s.ScoreISO("not a date", Window{Start: day(10), End: ptr(day(12))})
	if got != 0 {
		t.Errorf("fallback to now far before window should score 0, got %v", got)
	}
}

func TestNewScorer_defaults(t *testing.T) {
	s := NewScorer(-1, 0)
	if s.MaxDaysBefore != DefaultMaxDaysBefore || s.MaxDaysAfter != DefaultMaxDaysAfter {
		t.Errorf("NewScorer defaults = %+v", s)
	}
}

func TestScore_zeroDaysBefore(t *testing.T) {
	s := NewScorer(0, 30)
	w := Window{Start: day(10), End: ptr(day(12))}
	if got, _ := s.Score(day(10).Add(-6*time.Hour), w); got != 80 {
		t.Errorf("same-day early incident = %v, want 80", got)
	}
	if got, _ := s.Score(day(10).Add(-25*time.Hour), w); got != 0 {
		t.Errorf("one day early with zero tolerance = %v, want 0", got)
	}
}
