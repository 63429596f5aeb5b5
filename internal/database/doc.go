// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package database persists carts, products and users over database/sql.

Two drivers are supported: DuckDB (default, github.com/duckdb/duckdb-go/v2)
and pure-Go SQLite (modernc.org/sqlite). Schema is applied through
versioned migrations recorded in schema_migrations.

*DB satisfies cart.Repository, cart.Claimer and cart.ProductFinder.
UpdateCart is a compare-and-swap on the carts.version column; a lost race
surfaces as cart.ErrVersionConflict and the cart service retries.

Product lookups are cached in an expirable LRU that is purged on every
stock change.
*/
package database
