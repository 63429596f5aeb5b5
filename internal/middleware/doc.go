// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package middleware provides HTTP infrastructure middleware shared by every
route: request ids, access logging, Prometheus instrumentation and a
sliding-window latency monitor.

All middleware has the chi signature func(http.Handler) http.Handler and is
installed by internal/api in this order:

	r.Use(middleware.RequestID)          // ids into the logging context
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)  // labels by route pattern
	r.Use(perf.Middleware)

Route patterns, not raw paths, label metrics so /product/{slug} is one
series regardless of catalogue size.
*/
package middleware
