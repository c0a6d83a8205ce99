// Package metrics exposes Prometheus instrumentation for the search pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts completed search invocations by outcome
	// (ok, invalid_input, backend_unavailable).
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skumatch_searches_total",
			Help: "Total number of search invocations",
		},
		[]string{"outcome"},
	)

	// StrategyFailuresTotal counts strategies that errored against the backend.
	StrategyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skumatch_strategy_failures_total",
			Help: "Total number of failed search strategies",
		},
		[]string{"strategy"},
	)

	// ExactMatchExitsTotal counts searches resolved by the exact strategy alone.
	ExactMatchExitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skumatch_exact_match_exits_total",
			Help: "Total number of searches short-circuited by an exact match",
		},
	)

	// RerankTotal counts re-rank gate decisions
	// (skipped_confident, applied, failed, over_budget, unavailable).
	RerankTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skumatch_rerank_total",
			Help: "Total number of re-rank gate decisions",
		},
		[]string{"outcome"},
	)

	// SearchDuration observes end-to-end search latency.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skumatch_search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
