// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package websocket pushes live storefront updates to browsers.

The only server-originated message today is "page_invalidated", sent when
a cart mutation or stock change makes a product page stale. Open product
pages listen on /api/ws and reload their stock and cart badge when their
path is announced.

Key Components:

  - Hub: owns the client set and fans broadcasts out in client id order
  - Client: one connection with a read pump and a write pump
  - Handler: the HTTP upgrade endpoint

The hub runs as a supervised service (Serve). When its context ends every
client channel is closed, which makes each write pump send a close frame.
Register reports false after shutdown so late upgrades are refused cleanly.

Messages are JSON:

	{"type": "page_invalidated", "data": {"path": "/product/polo-shirt", ...}}

Clients may send {"type":"ping"} and receive {"type":"pong"}.
*/
package websocket
