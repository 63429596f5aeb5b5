// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package cache holds rendered page fragments keyed by request path.

Product pages are rendered once and served from here until they expire or a
PageInvalidated event names their path. Only session-independent markup is
cached; per-visitor cart state is rendered on every request.

	pages := cache.New(cfg.Cache.PageTTL)
	if p, ok := pages.Get("/product/polo-shirt"); ok {
	    // serve p.Body, honouring If-None-Match against p.ETag
	}
	pages.Invalidate("/product/polo-shirt")

Run evicts expired entries on a ticker and is registered with the
supervisor tree. Hits, misses, entry counts and invalidations are exported
through internal/metrics.
*/
package cache
