// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the aggregation pipeline:
// - Source fetcher latency, yields, and failures
// - Circuit breaker state and transitions
// - Warm cache tier hits and background refreshes
// - Geocoder outcomes
// - API endpoint latency and throughput

var (
	// Source Fetcher Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Duration of upstream source fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8},
		},
		[]string{"source"},
	)

	FetchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_items_total",
			Help: "Total raw items returned by each source",
		},
		[]string{"source"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_errors_total",
			Help: "Total fetch failures per source",
		},
		[]string{"source", "error_type"}, // "network", "status", "decode", "timeout"
	)

	FetchSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_skipped_total",
			Help: "Fetches skipped without a network call",
		},
		[]string{"source", "reason"}, // "no_credential", "breaker_open"
	)

	// Circuit Breaker Metrics
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_breaker_state",
			Help: "Circuit breaker state per source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_breaker_transitions_total",
			Help: "Circuit breaker state transitions per source",
		},
		[]string{"source", "from", "to"},
	)

	// Warm Cache Metrics
	WarmCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warm_cache_hits_total",
			Help: "Warm cache hits by freshness tier",
		},
		[]string{"tier"}, // "fresh", "stale", "expired", "miss"
	)

	BackgroundRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warm_cache_background_refreshes_total",
			Help: "Background refreshes started for stale warm cache entries",
		},
	)

	RefreshSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warm_cache_refresh_suppressed_total",
			Help: "Background refreshes suppressed by the in-flight guard",
		},
	)

	// Fallback Metrics
	FallbackServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallback_total",
			Help: "Requests served from a fallback layer",
		},
		[]string{"layer"}, // "secondary_cache", "seed", "error"
	)

	// Geocoder Metrics
	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Geocode lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "negative_cache", "known", "coordinate", "miss", "rate_limited", "error"
	)

	// Secondary Cache Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Durable store operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// API Endpoint Metrics
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveFetch records one fetch attempt's duration and yield.
func ObserveFetch(source string, start time.Time, items int) {
	FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	FetchItems.WithLabelValues(source).Add(float64(items))
}

// ObserveFetchError classifies and counts one failed fetch.
func ObserveFetchError(source string, err error) {
	errType := "network"
	if errors.Is(err, context.DeadlineExceeded) {
		errType = "timeout"
	}
	FetchErrors.WithLabelValues(source, errType).Inc()
}

// ObserveAPIRequest records one handled API request.
func ObserveAPIRequest(method, endpoint string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}
