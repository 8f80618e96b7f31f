package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for one refresh run

// Registry holds every refresh metric. It is separate from the default
// registry so a push carries only run metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// API Call metrics
	APICallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_props_api_calls_total",
			Help: "Total number of odds API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_props_api_call_duration_seconds",
			Help:    "Duration of odds API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIRequestsRemaining = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_props_api_requests_remaining",
			Help: "Odds API quota remaining as reported by the provider",
		},
	)

	// Pipeline metrics
	PropsFetched = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_props_fetched",
			Help: "Prop lines fetched in the last run",
		},
	)

	PropsScored = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_props_scored_total",
			Help: "Prop lines that produced a finite prediction",
		},
	)

	PropsSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_props_skipped_total",
			Help: "Prop lines excluded from ranking",
		},
		[]string{"reason"},
	)

	EdgesReported = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_props_edges_reported",
			Help: "Edges printed in the last run",
		},
	)

	RunDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_props_run_duration_seconds",
			Help:    "Duration of a refresh run in seconds",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120},
		},
	)

	RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_props_runs_total",
			Help: "Refresh runs by outcome",
		},
		[]string{"status"},
	)
)

// Skip reasons
const (
	SkipNoFeatures = "no_features"
	SkipNonFinite  = "non_finite"
)

// Push sends the registry to a Prometheus Pushgateway. Each run replaces
// the job's group, so the gateway holds only the latest run.
func Push(url, job string) error {
	err := push.New(url, job).
		Gatherer(Registry).
		Push()
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
