// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package metrics provides Prometheus instrumentation for Storefront.

Metrics are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:3000/metrics

Families:
  - api_*: request counts, latency and in-flight requests
  - db_*: query latency and errors by operation and table
  - cart_*: mutation outcomes and optimistic-lock conflicts
  - page_cache_*: rendered page cache efficiency and invalidations
  - auth_gate_decisions_total: gate outcomes per policy
  - circuit_breaker_*: breaker state per protected dependency
  - events_*: page invalidation publish/consume counts
  - websocket_connections: connected live-update clients
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of SQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed SQL queries",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Cart Metrics
	CartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart mutations by operation and outcome code",
		},
		[]string{"operation", "outcome"},
	)

	CartUpdateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_update_conflicts_total",
			Help: "Cart writes rejected because another writer changed the cart first",
		},
	)

	CartsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_claims_total",
			Help: "Anonymous session carts assigned to a user on sign-in",
		},
	)

	// Page Cache Metrics
	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_hits_total",
			Help: "Rendered page cache hits",
		},
	)

	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_misses_total",
			Help: "Rendered page cache misses",
		},
	)

	PageCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "page_cache_entries",
			Help: "Current number of cached pages",
		},
	)

	PageInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "page_cache_invalidations_total",
			Help: "Rendered pages evicted by invalidation events",
		},
	)

	// Auth Metrics
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_decisions_total",
			Help: "Auth gate decisions by policy and outcome",
		},
		[]string{"policy", "decision"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Sign-in and sign-up attempts by outcome",
		},
		[]string{"method", "outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_sessions_active",
			Help: "Server-side sessions held by the session store after the last sweep",
		},
	)

	SessionCartsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_carts_issued_total",
			Help: "New sessionCartId cookies issued",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events handled by topic",
		},
		[]string{"topic"},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Connected live-update clients",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCartOperation records one AddItem/RemoveItem outcome.
// outcome is "ok" or the failure code.
func RecordCartOperation(operation, outcome string) {
	CartOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordGateDecision records an auth gate outcome.
func RecordGateDecision(policy, decision string) {
	GateDecisions.WithLabelValues(policy, decision).Inc()
}

// RecordAuthAttempt records a sign-in or sign-up outcome.
func RecordAuthAttempt(method string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AuthAttempts.WithLabelValues(method, outcome).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
// States are passed as gobreaker's String() values.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	var v float64
	switch to {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}
