// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package metrics defines the Prometheus instrumentation for ShopRec:
// API latency and throughput, recommendation serving by fallback tier,
// snapshot build outcomes, and DuckDB query performance. All metrics
// register on the default registry via promauto and are exposed on
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics.

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation serving metrics.

	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation queries answered, by serving tier",
		},
		[]string{"tier"}, // "similarity", "co_occurrence", "popularity"
	)

	RecommendNotFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_not_found_total",
			Help: "Total recommendation queries for unknown products",
		},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Snapshot build metrics.

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_build_duration_seconds",
			Help:    "Duration of recommendation snapshot builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	SnapshotBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_build_errors_total",
			Help: "Total failed snapshot builds",
		},
	)

	SnapshotGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_generation",
			Help: "Generation number of the published recommendation snapshot",
		},
	)

	SnapshotEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_events",
			Help: "Number of events in the published snapshot",
		},
	)

	RefreshRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_rejected_total",
			Help: "Total refresh triggers rejected because a build was running or throttled",
		},
	)

	// DuckDB metrics.

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Source circuit breaker metrics.

	BreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_breaker_state_changes_total",
			Help: "Circuit breaker state transitions for the event source",
		},
		[]string{"from", "to"},
	)

	BreakerRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "source_breaker_rejected_total",
			Help: "Event source calls rejected by an open circuit breaker",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendQuery records one answered recommendation query.
func RecordRecommendQuery(tier string, duration time.Duration) {
	RecommendRequestsTotal.WithLabelValues(tier).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordSnapshotBuild records a build attempt outcome.
func RecordSnapshotBuild(duration time.Duration, generation uint64, events int, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuildErrors.Inc()
		return
	}
	SnapshotGeneration.Set(float64(generation))
	SnapshotEvents.Set(float64(events))
}

// RecordDBQuery records one DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
