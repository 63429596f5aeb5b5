// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package cart implements shopping cart mutations.

The Service resolves the caller's cart identity (sessionCartId cookie plus
optional signed-in user), fetches the cart, applies one add or remove,
recomputes prices with internal/pricing, persists, and invalidates the
product page. Every outcome is returned as a Result:

	res := svc.AddItem(ctx, item)
	if !res.Success {
	    // res.Message is safe to show; res.Code is machine readable
	}

Concurrency:

Writes are guarded twice. Within a process a keyed lock serialises
mutations per identity. Across processes the Repository performs a
compare-and-swap on the cart version; a lost race returns
ErrVersionConflict and the service re-runs fetch-mutate-write up to
Config.MaxUpdateAttempts times.

Storage is reached only through the Repository, Claimer and ProductFinder
ports; BreakerStore adds a circuit breaker in front of any implementation.
*/
package cart
