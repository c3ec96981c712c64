// Package metrics provides Prometheus metrics for claim scoring and person matching.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricClaimsScoredTotal        = "claimsat_claims_scored_total"
	MetricClaimConfidence          = "claimsat_claim_confidence"
	MetricEvidenceAnalyzedTotal    = "claimsat_evidence_analyzed_total"
	MetricMatchCandidatesEvaluated = "claimsat_match_candidates_evaluated_total"
	MetricMatchesFoundTotal        = "claimsat_matches_found_total"
	MetricSweepRunsTotal           = "claimsat_sweep_runs_total"
)

// Anchor labels for matching metrics.
const (
	AnchorMissingPerson = "missing_person"
	AnchorSurvivor      = "survivor"
)

// Sweep outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	claimsScored        *prometheus.CounterVec
	claimConfidence     prometheus.Histogram
	evidenceAnalyzed    *prometheus.CounterVec
	candidatesEvaluated *prometheus.CounterVec
	matchesFound        *prometheus.CounterVec
	sweepRuns           *prometheus.CounterVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		claimsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricClaimsScoredTotal,
				Help: "Total number of claim scoring runs by resulting status",
			},
			[]string{"status"},
		),
		claimConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricClaimConfidence,
				Help:    "Distribution of claim confidence scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		evidenceAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricEvidenceAnalyzedTotal,
				Help: "Total number of evidence files analyzed by kind",
			},
			[]string{"kind"},
		),
		candidatesEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricMatchCandidatesEvaluated,
				Help: "Total number of candidate pairs scored by anchor side",
			},
			[]string{"anchor"},
		),
		matchesFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricMatchesFoundTotal,
				Help: "Total number of candidate pairs at or above the confidence threshold by anchor side",
			},
			[]string{"anchor"},
		),
		sweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSweepRunsTotal,
				Help: "Total number of scheduled re-match sweeps by outcome",
			},
			[]string{"status"},
		),
	}
}

// Register registers all metrics with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.claimsScored,
		m.claimConfidence,
		m.evidenceAnalyzed,
		m.candidatesEvaluated,
		m.matchesFound,
		m.sweepRuns,
	}
}

// ObserveClaimScore records one scoring run.
func (m *Metrics) ObserveClaimScore(status string, confidence float64) {
	if m == nil {
		return
	}
	m.claimsScored.WithLabelValues(status).Inc()
	m.claimConfidence.Observe(confidence)
}

// IncEvidenceAnalyzed counts one analyzed evidence file.
func (m *Metrics) IncEvidenceAnalyzed(kind string) {
	if m == nil {
		return
	}
	m.evidenceAnalyzed.WithLabelValues(kind).Inc()
}

// ObserveMatching records how many candidates were scored and how many matched.
func (m *Metrics) ObserveMatching(anchor string, evaluated, found int) {
	if m == nil {
		return
	}
	m.candidatesEvaluated.WithLabelValues(anchor).Add(float64(evaluated))
	m.matchesFound.WithLabelValues(anchor).Add(float64(found))
}

// IncSweepRuns counts one sweep by outcome.
func (m *Metrics) IncSweepRuns(status string) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(status).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
