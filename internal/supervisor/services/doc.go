// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package services adapts storefront components to the suture v4 Service
interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Each wrapper translates a component's lifecycle (ListenAndServe/Shutdown,
RunWithContext, Run with an interval) into Serve and implements
fmt.Stringer so supervisor logs name the service.

	HTTPServerService    *http.Server with graceful shutdown
	WebSocketHubService  *websocket.Hub
	JanitorService       page cache and session store sweeps
	EventRouterService   Watermill router consuming page invalidations
	EmbeddedNATSService  in-process NATS broker

Returning ctx.Err() after cancellation tells suture the stop was requested.
Any other error is a failure and counts toward the restart budget.
*/
package services
