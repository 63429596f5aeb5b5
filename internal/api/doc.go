// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package api provides the HTTP surface of Storefront: server-rendered pages,
the JSON API and the websocket feed, routed with chi.

Request pipeline (outermost first):

  - request id, real IP, panic recovery, access log, Prometheus metrics
  - CORS
  - authentication (session cookie or bearer token)
  - sessionCartId issuance for page requests
  - the auth gate, on paths selected by its matcher

Response envelopes:

  - Cart endpoints answer 200 with {"success","message","code","data"} for
    every domain outcome. Only an unreadable body is a 400.
  - Everything else uses APIResponse with an upper-snake error code.

The product fragment of /product/{slug} is kept in the page cache and
evicted through the invalidation pipeline when its product changes. The
layout around it (cart badge, user menu) is rendered per request.
*/
package api
