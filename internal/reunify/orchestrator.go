package reunify

import (
	"context"
	"sort"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
	"golang.org/x/sync/errgroup"
)

// Side names which record a search is anchored on.
type Side int

const (
	// FromMissingPerson compares one missing person against survivors.
	FromMissingPerson Side = iota
	// FromSurvivor compares one survivor against missing persons.
	FromSurvivor
)

func (s Side) String() string {
	if s == FromSurvivor {
		return "survivor"
	}
	return "missing_person"
}

// eligible lists the candidate statuses searched from each side.
var eligible = map[Side][]models.PersonStatus{
	FromMissingPerson: {models.PersonSearching, models.PersonFound},
	FromSurvivor:      {models.PersonMissing, models.PersonSearching},
}

// CandidateStatuses returns the statuses a candidate must have to be compared
// against an anchor on side.
func CandidateStatuses(side Side) []models.PersonStatus {
	return append([]models.PersonStatus(nil), eligible[side]...)
}

// Orchestrator applies a Matcher across a candidate pool. It holds no state
// between calls.
type Orchestrator struct {
	matcher *Matcher
	workers int
}

// NewOrchestrator bounds concurrent evaluation to workers; zero or less means unbounded.
func NewOrchestrator(m *Matcher, workers int) *Orchestrator {
	return &Orchestrator{matcher: m, workers: workers}
}

// Eligible returns the candidates in the anchor's disaster whose status is
// searchable from side.
func Eligible(anchor models.PersonRecord, side Side, pool []models.PersonRecord) []models.PersonRecord {
	allowed := make(map[models.PersonStatus]bool)
	for _, st := range eligible[side] {
		allowed[st] = true
	}
	var out []models.PersonRecord
	for _, c := range pool {
		if c.DisasterID == anchor.DisasterID && allowed[c.Status] {
			out = append(out, c)
		}
	}
	return out
}

// FindMatches scores every eligible candidate against anchor and returns those
// at or above minConfidence, highest first with ties in ascending candidate id
// order. Matches carry no id or timestamp; evaluated is the number of pairs scored.
func (o *Orchestrator) FindMatches(ctx context.Context, anchor models.PersonRecord, side Side, pool []models.PersonRecord, minConfidence float64) (matches []models.Match, evaluated int, err error) {
	candidates := Eligible(anchor, side, pool)
	scored := make([]models.Match, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			missing, survivor := anchor, c
			if side == FromSurvivor {
				missing, survivor = c, anchor
			}
			confidence, factors := o.matcher.MatchScore(missing, survivor)
			scored[i] = models.Match{
				MissingPersonID: missing.ID,
				SurvivorID:      survivor.ID,
				DisasterID:      anchor.DisasterID,
				ConfidenceScore: confidence,
				Factors:         factors,
				Status:          models.MatchPending,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, m := range scored {
		if m.ConfidenceScore >= minConfidence {
			matches = append(matches, m)
		}
	}
	candidateID := func(m models.Match) string {
		if side == FromSurvivor {
			return m.MissingPersonID
		}
		return m.SurvivorID
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ConfidenceScore != matches[j].ConfidenceScore {
			return matches[i].ConfidenceScore > matches[j].ConfidenceScore
		}
		return candidateID(matches[i]) < candidateID(matches[j])
	})
	return matches, len(candidates), nil
}
