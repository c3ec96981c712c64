// Package timescore scores how well an incident time fits a disaster's active window.
package timescore

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DefaultMaxDaysBefore is how many whole days before the window still earn credit.
	DefaultMaxDaysBefore = 1
	// DefaultMaxDaysAfter is how many whole days after the window still earn credit.
	DefaultMaxDaysAfter = 30
)

// ErrDateParse is returned by ParseTimestamp for values it cannot read.
var ErrDateParse = errors.New("unparseable timestamp")

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrDateParse)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateParse, s)
}

// ParseOrNow parses s and falls back to now when it cannot be read. The fallback keeps
// scoring gradable; a score computed from it says nothing about the real incident time.
func ParseOrNow(s string, now time.Time) time.Time {
	t, err := ParseTimestamp(s)
	if err != nil {
		return now
	}
	return t
}

// Window is a disaster's active interval. A nil End means the disaster is ongoing.
type Window struct {
	Start time.Time
	End   *time.Time
}

// Scorer computes time proximity scores.
type Scorer struct {
	MaxDaysBefore int
	MaxDaysAfter  int
	// Now supplies the end of open windows; time.Now when nil.
	Now func() time.Time
}

// NewScorer returns a scorer with the given tolerances. Non-positive after-tolerances
// and negative before-tolerances fall back to the defaults.
func NewScorer(maxDaysBefore, maxDaysAfter int) Scorer {
	if maxDaysBefore < 0 {
		maxDaysBefore = DefaultMaxDaysBefore
	}
	if maxDaysAfter <= 0 {
		maxDaysAfter = DefaultMaxDaysAfter
	}
	return Scorer{MaxDaysBefore: maxDaysBefore, MaxDaysAfter: maxDaysAfter}
}

func (s Scorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// wholeDays truncates d to whole days.
func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

// Score rates incident against w:
//   - inside [start, end]: 100
//   - d whole days before start: max(0, 80-20d) while d <= MaxDaysBefore, else 0
//   - d whole days after end: max(50, 100-50d/MaxDaysAfter) while d <= MaxDaysAfter, else 0
func (s Scorer) Score(incident time.Time, w Window) (float64, string) {
	maxAfter := s.MaxDaysAfter
	if maxAfter <= 0 {
		maxAfter = DefaultMaxDaysAfter
	}
	end := s.now()
	if w.End != nil {
		end = *w.End
	}

	if !incident.Before(w.Start) && !incident.After(end) {
		return 100, fmt.Sprintf("Incident occurred during disaster period (%d days duration)", wholeDays(end.Sub(w.Start)))
	}

	if incident.Before(w.Start) {
		days := wholeDays(w.Start.Sub(incident))
		if days <= s.MaxDaysBefore {
			score := math.Max(0, 80-float64(days)*20)
			return score, fmt.Sprintf("Incident occurred %d day(s) before disaster (suspicious timing)", days)
		}
		return 0, fmt.Sprintf("Incident occurred %d days before disaster (too early)", days)
	}

	days := wholeDays(incident.Sub(end))
	if days <= maxAfter {
		score := math.Max(50, 100-float64(days)/float64(maxAfter)*50)
		return score, fmt.Sprintf("Incident occurred %d day(s) after disaster ended (secondary damage possible)", days)
	}
	return 0, fmt.Sprintf("Incident occurred %d days after disaster (too late)", days)
}

// ScoreISO parses the incident time leniently and scores it against w.
func (s Scorer) ScoreISO(incident string, w Window) (float64, string) {
	return s.Score(ParseOrNow(incident, s.now()), w)
}
