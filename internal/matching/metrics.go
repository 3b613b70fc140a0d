package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_pools_generated_total",
			Help: "Total number of daily match pools generated",
		},
	)

	matchesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_matches_delivered_total",
			Help: "Total number of matches delivered to users",
		},
	)

	fallbackActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_fallback_activations_total",
			Help: "Pools generated with no fresh candidates available",
		},
	)

	candidatesExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_excluded_total",
			Help: "Candidates excluded from pools due to scoring failures",
		},
	)

	compositeScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_composite_scores",
			Help:    "Distribution of composite compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_batch_duration_seconds",
			Help:    "Duration of the nightly pool generation batch",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)
