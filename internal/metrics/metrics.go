// internal/metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregation Cycle Metrics
var (
	// AggregationCyclesTotal tracks completed aggregation cycles by result
	AggregationCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_cycles_total",
			Help: "Total aggregation cycles by result (success/partial/error)",
		},
		[]string{"result"},
	)

	// AggregationCycleDuration tracks aggregation cycle duration in seconds
	AggregationCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_cycle_duration_seconds",
			Help:    "Aggregation cycle duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// TrendsCreatedTotal tracks trend records created
	TrendsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_created_total",
			Help: "Total trend records created",
		},
	)

	// TrendsUpdatedTotal tracks trend records updated
	TrendsUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_updated_total",
			Help: "Total trend records updated",
		},
	)

	// TrendsRemovedTotal tracks trend records removed because they left the trending set
	TrendsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trends_removed_total",
			Help: "Total trend records removed after leaving the trending set",
		},
	)

	// TrendUpdateFailuresTotal tracks per-trend update failures inside a cycle
	TrendUpdateFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_update_failures_total",
			Help: "Total per-trend update failures inside aggregation cycles",
		},
	)

	// TrendingSetSize tracks the size of the most recent trending set
	TrendingSetSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trending_set_size",
			Help: "Number of topics in the most recent trending set",
		},
	)
)

// Provider Metrics
var (
	// ProviderRequestsTotal tracks upstream provider requests by provider and status
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total upstream provider requests by provider and status (success/error)",
		},
		[]string{"provider", "status"},
	)

	// ProviderRequestDuration tracks upstream provider request latency by provider
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Upstream provider request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)
)

// Stream Intake Metrics
var (
	// StreamObservationsTotal tracks tweet observations consumed from the ingest subject
	StreamObservationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_observations_total",
			Help: "Total tweet observations consumed from the ingest subject",
		},
	)

	// StreamObservationsDroppedTotal tracks ingest payloads dropped by reason
	StreamObservationsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_observations_dropped_total",
			Help: "Total ingest payloads dropped by reason (malformed/unnamed/record_error)",
		},
		[]string{"reason"},
	)
)
