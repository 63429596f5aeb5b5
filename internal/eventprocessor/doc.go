// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package eventprocessor distributes page invalidation events between
storefront instances.

When a cart mutation changes what a product page should show, the cart
service calls an Invalidator. The Invalidator publishes a PageInvalidated
event through a circuit breaker. Every instance runs a Router with an
InvalidationHandler that evicts the path from its page cache and pushes a
"page_invalidated" message to connected websocket clients.

# Transports

Two transports are supported, selected by EVENTS_TRANSPORT:

  - gochannel: in-process, for single-instance deployments and tests
  - nats: core NATS, either an external broker (NATS_URL) or an
    EmbeddedServer started in-process

Core NATS is used without JetStream. Every instance must see every event,
and a lost invalidation only means a page expires by TTL instead.

# Failure Handling

Publishing never fails a cart mutation. Errors are logged and counted, and
after repeated failures the breaker opens so requests stop waiting on a
dead broker. On the consuming side, undecodable payloads are acked and
dropped while transient handler errors are retried with backoff.

# Usage

	bus, err := eventprocessor.NewBus(&cfg.Events, "", logging.NewWatermillLogger())
	inv := eventprocessor.NewInvalidator(bus.Publisher, cfg.Events.Topic,
	    eventprocessor.NewCircuitBreaker(eventprocessor.DefaultCircuitBreakerConfig()))

	router, err := eventprocessor.NewRouter(eventprocessor.DefaultRouterConfig(), logging.NewWatermillLogger())
	eventprocessor.NewInvalidationHandler(pageCache, hub, cfg.Events.Topic).Register(router, bus.Subscriber)
	go router.Run(ctx)
*/
package eventprocessor
