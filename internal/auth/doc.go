// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package auth provides authentication, the page gate, and the anonymous cart
session cookie.

Key Components:

  - Accounts: credential sign-up and sign-in with bcrypt password hashing
  - SessionStore: server-side sessions (memory or BadgerDB), with
    SessionStoreFactory running periodic cleanup
  - JWTManager: HS256 bearer tokens for API clients
  - Authenticator: resolves the request Subject from the session cookie or
    an Authorization: Bearer header
  - Gate: applies a Policy to page requests selected by a Matcher
  - CartSessionIssuer: issues and reads the sessionCartId cookie

Gate Policies:

The gate policy is chosen by AUTH_GATE_POLICY:

 1. full-app (default): signed-in visitors on /sign-in or /sign-up are
    redirected to the home page; everything else is allowed.
 2. middleware-only: only signed-in visitors are allowed. Denied requests
    are redirected to /sign-in?callbackUrl=<original path>. The sign-in and
    sign-up pages themselves are always reachable.

The Matcher excludes /api, /_next/static, /_next/image, /static, /metrics
and *.png by default. Excluded paths bypass both the gate and cart cookie
issuance.

Middleware Order:

	r.Use(authenticator.Authenticate)
	r.Use(cartSessions.Middleware)
	r.Use(gate.Middleware)

Authenticate must run before the gate so session presence is known.
CartSessionIssuer stores the cart id in the request context, so handlers see
a freshly issued id on the same request. RequestSession adapts the context
values to cart.SessionSource.
*/
package auth
