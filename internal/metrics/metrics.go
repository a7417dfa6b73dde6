// Package metrics provides Prometheus metrics for the tool finder backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal counts marketplace API requests by provider and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolfinder",
			Name:      "upstream_requests_total",
			Help:      "Total number of marketplace API requests",
		},
		[]string{"provider", "status"},
	)

	// CandidateBatchSize observes how many records each fetch produced.
	CandidateBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "toolfinder",
			Name:      "candidate_batch_size",
			Help:      "Distribution of candidate records fetched per request",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 500},
		},
		[]string{"provider"},
	)

	// RecommendationsTotal counts recommendation requests by outcome.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolfinder",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	// RankDuration measures time spent scoring and ordering candidates.
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "toolfinder",
			Name:      "rank_duration_seconds",
			Help:      "Duration of candidate ranking in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	// HTTPRequestsTotal counts served HTTP requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolfinder",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
)
