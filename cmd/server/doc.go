// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package main is the entry point for the Storefront server.

Storefront serves a product catalog with a session cart. Anonymous visitors
get a cart cookie on their first page view; signing in claims that cart for
the account. A route gate redirects visitors between the sign-in pages and
the rest of the app according to AUTH_GATE_POLICY.

# Startup

 1. Configuration: .env, config.yaml and environment variables (koanf)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: SQLite or DuckDB, optionally seeded with sample data
 4. Events: page invalidation over gochannel or NATS (optionally embedded)
 5. Auth: session store (memory or BadgerDB), JWT, gate, Casbin RBAC
 6. HTTP: chi router with pages, JSON API, metrics and websocket
 7. Supervisor tree: suture v4, see package supervisor

# Configuration

Common variables:

	HTTP_PORT=3000
	DB_DRIVER=sqlite DB_PATH=/data/storefront.db
	SEED_SAMPLE_DATA=true
	AUTH_GATE_POLICY=full-app       # or middleware-only
	JWT_SECRET=$(openssl rand -base64 32)
	SESSION_STORE=badger SESSION_STORE_PATH=/data/sessions
	EVENTS_TRANSPORT=nats NATS_EMBEDDED=true

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests within HTTP_SHUTDOWN_TIMEOUT, then the bus, session store and
database are closed.
*/
package main
