package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Upstream FHIR API
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Live search
	SearchSessions    prometheus.Gauge
	SearchEmissions   *prometheus.CounterVec
	StaleResultsDrops prometheus.Counter

	// Views
	DegradedResponses *prometheus.CounterVec
}

// New creates the application metrics and registers them with reg. A nil
// registerer leaves them unregistered, which is what tests want.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fhir",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the FHIR API",
		}, []string{"resource", "status"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fhir",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests sent to the FHIR API",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		SearchSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "live_sessions",
			Help:      "Current number of open live search sessions",
		}),
		SearchEmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "emissions_total",
			Help:      "Debounced search panel emissions by kind",
		}, []string{"kind"}),
		StaleResultsDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "stale_results_discarded_total",
			Help:      "Results discarded because a newer request was issued",
		}),
		DegradedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "degraded_responses_total",
			Help:      "Responses served from stale or demo data after an upstream failure",
		}, []string{"view"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.UpstreamRequests,
			m.UpstreamLatency,
			m.SearchSessions,
			m.SearchEmissions,
			m.StaleResultsDrops,
			m.DegradedResponses,
		)
	}

	return m
}

// NewNop returns unregistered metrics.
func NewNop() *Metrics {
	return New("test", nil)
}
