// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package supervisor runs the storefront's long-lived services under a suture v4
supervisor tree.

# Layers

	storefront (root)
	├── data-layer
	│   ├── page-cache-janitor
	│   ├── session-janitor
	│   └── audit-retention
	├── messaging-layer
	│   ├── nats-server        (embedded broker only)
	│   ├── event-router
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Each layer is its own supervisor, so a crashing invalidation consumer is
restarted without touching the HTTP server. Failures decay over
FailureDecay seconds; past FailureThreshold the layer backs off for
FailureBackoff before restarting.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewJanitorService("page-cache-janitor", pages, time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Supervisor events are logged through sutureslog.
*/
package supervisor
