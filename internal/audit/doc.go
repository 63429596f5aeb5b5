// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package audit keeps a security audit trail of sign-ins, sign-ups, cart
claims and admin changes.

Events are queued on a buffered channel and written by one background
goroutine, so handlers never block on the store. When the buffer is full
the event is dropped and a warning is logged.

	auditor := audit.NewLogger(audit.NewMemoryStore(10000), audit.DefaultConfig())
	defer auditor.Close()

	auditor.LogSignIn(ctx, audit.Actor{ID: user.ID, Email: user.Email}, audit.SourceFromRequest(r), true)

Logger.Run applies the retention period and is supervised like the other
janitors. Admins read the trail from GET /api/admin/audit.
*/
package audit
