// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package authz

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts authorization decisions by subject, action, and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"subject", "action", "decision"},
	)

	// AuthzDecisionDuration tracks decision latency.
	AuthzDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"cache_hit"},
	)

	AuthzCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authz_cache_hits_total",
		Help: "Authorization decision cache hits",
	})

	AuthzCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authz_cache_misses_total",
		Help: "Authorization decision cache misses",
	})
)

// recordDecision records one enforcement. Subjects other than role names are
// folded into "user_id" to bound label cardinality.
func recordDecision(subject, action string, allowed, cacheHit bool, d time.Duration) {
	label := subject
	switch subject {
	case "admin", "user":
	default:
		label = "user_id"
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(label, action, decision).Inc()
	AuthzDecisionDuration.WithLabelValues(strconv.FormatBool(cacheHit)).Observe(d.Seconds())
}
