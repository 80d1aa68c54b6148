// Package metrics provides Prometheus metrics for knowledge-base health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MergeResults counts learned-pattern merge outcomes.
	// Labels: result (created, updated, unchanged)
	MergeResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llkb",
			Subsystem: "merge",
			Name:      "patterns_total",
			Help:      "Total number of discovered patterns processed by merge, by outcome",
		},
		[]string{"result"},
	)

	// HistoryAppends counts history log append attempts.
	// Labels: result (success, error)
	HistoryAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llkb",
			Subsystem: "history",
			Name:      "appends_total",
			Help:      "Total number of history event append attempts",
		},
		[]string{"result"},
	)

	// RateLimitHits counts extraction requests refused by the governor.
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llkb",
			Subsystem: "governor",
			Name:      "rate_limit_hits_total",
			Help:      "Total number of extraction requests refused by rate governance",
		},
	)

	// AnalyticsUpdates counts analytics roll-up runs.
	// Labels: result (success, error)
	AnalyticsUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llkb",
			Subsystem: "analytics",
			Name:      "updates_total",
			Help:      "Total number of analytics roll-up runs",
		},
		[]string{"result"},
	)
)
