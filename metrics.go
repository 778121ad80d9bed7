package twosquares

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes reported through Metrics.Outcome
const (
	OutcomeRepresented      = "represented"
	OutcomeNoRepresentation = "no_representation"
	OutcomeCached           = "cached"
	OutcomeError            = "error"
)

// Metrics receives operational telemetry from a Decomposer
type Metrics interface {
	// PrimeCacheAccess records a prime cache lookup
	PrimeCacheAccess(hit bool)
	// Combination records one combinator run
	Combination(strategy string, slots, results int, d time.Duration)
	// Outcome records how a number decomposition ended
	Outcome(outcome string)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) PrimeCacheAccess(bool) {}

func (NopMetrics) Combination(string, int, int, time.Duration) {}

func (NopMetrics) Outcome(string) {}

// PrometheusMetrics exports Metrics as prometheus collectors under the
// "twosquares" namespace.
type PrometheusMetrics struct {
	cacheAccess *prometheus.CounterVec
	combineDur  *prometheus.HistogramVec
	slots       prometheus.Histogram
	results     prometheus.Histogram
	outcomes    *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		cacheAccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twosquares",
			Name:      "prime_cache_access_total",
			Help:      "Prime decomposition cache lookups by result.",
		}, []string{"result"}),
		combineDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "twosquares",
			Name:      "combination_duration_seconds",
			Help:      "Time spent enumerating Gaussian integer products.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"strategy"}),
		slots: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "twosquares",
			Name:      "combination_slots",
			Help:      "Sign-choice slots per combination.",
			Buckets:   prometheus.LinearBuckets(0, 4, 9),
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "twosquares",
			Name:      "combination_results",
			Help:      "Distinct pairs produced per combination.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twosquares",
			Name:      "decompositions_total",
			Help:      "Number decompositions by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.cacheAccess, m.combineDur, m.slots, m.results, m.outcomes} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) PrimeCacheAccess(hit bool) {
	if hit {
		m.cacheAccess.WithLabelValues("hit").Inc()
		return
	}
	m.cacheAccess.WithLabelValues("miss").Inc()
}

func (m *PrometheusMetrics) Combination(strategy string, slots, results int, d time.Duration) {
	m.combineDur.WithLabelValues(strategy).Observe(d.Seconds())
	m.slots.Observe(float64(slots))
	m.results.Observe(float64(results))
}

func (m *PrometheusMetrics) Outcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}
