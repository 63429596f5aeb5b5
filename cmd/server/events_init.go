// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/eventprocessor"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/supervisor"
	"github.com/tomtom215/storefront/internal/supervisor/services"
	ws "github.com/tomtom215/storefront/internal/websocket"
)

// EventComponents carries page invalidations between instances. With the
// gochannel transport it only loops back into this process.
type EventComponents struct {
	server      *eventprocessor.EmbeddedServer
	bus         *eventprocessor.Bus
	invalidator *eventprocessor.Invalidator
	handler     *eventprocessor.InvalidationHandler
	routerCfg   eventprocessor.RouterConfig
	logger      watermill.LoggerAdapter
}

// InitEvents opens the configured transport, starting an embedded NATS
// server first when asked to.
func InitEvents(cfg *config.EventsConfig, pages *cache.Cache, hub *ws.Hub) (*EventComponents, error) {
	c := &EventComponents{logger: logging.NewWatermillLogger()}

	var url string
	if cfg.Transport == eventprocessor.TransportNATS && cfg.NATSEmbedded {
		srv, err := eventprocessor.NewEmbeddedServer(eventprocessor.ServerConfig{Host: cfg.NATSHost, Port: cfg.NATSPort})
		if err != nil {
			return nil, err
		}
		c.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	bus, err := eventprocessor.NewBus(cfg, url, c.logger)
	if err != nil {
		c.Shutdown()
		return nil, err
	}
	c.bus = bus

	source, _ := os.Hostname()
	breaker := eventprocessor.NewCircuitBreaker(eventprocessor.DefaultCircuitBreakerConfig())
	c.invalidator = eventprocessor.NewInvalidator(bus.Publisher, cfg.Topic, breaker).WithSource(source)

	var broadcaster eventprocessor.Broadcaster
	if hub != nil {
		broadcaster = hub
	}
	c.handler = eventprocessor.NewInvalidationHandler(pages, broadcaster, cfg.Topic)

	c.routerCfg = eventprocessor.DefaultRouterConfig()
	if cfg.RetryCount > 0 {
		c.routerCfg.RetryMaxRetries = cfg.RetryCount
	}
	if cfg.RetryInitialInterval > 0 {
		c.routerCfg.RetryInitialInterval = cfg.RetryInitialInterval
	}
	if cfg.CloseTimeout > 0 {
		c.routerCfg.CloseTimeout = cfg.CloseTimeout
	}

	logging.Info().Str("transport", bus.Transport()).Str("topic", cfg.Topic).Msg("Page invalidation events enabled")
	return c, nil
}

// Invalidator returns the publisher side for the cart service and admin API.
func (c *EventComponents) Invalidator() *eventprocessor.Invalidator {
	return c.invalidator
}

// buildRouter returns a router with the invalidation consumer registered.
func (c *EventComponents) buildRouter() (services.EventRouter, error) {
	r, err := eventprocessor.NewRouter(c.routerCfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.handler.Register(r, c.bus.Subscriber)
	return r, nil
}

// AddToSupervisor puts the broker and consumer in the messaging layer.
func (c *EventComponents) AddToSupervisor(tree *supervisor.SupervisorTree) {
	if c.server != nil {
		tree.AddMessagingService(services.NewEmbeddedNATSService(c.server))
	}
	tree.AddMessagingService(services.NewEventRouterService(c.buildRouter))
	logging.Info().Msg("Event router added to supervisor tree (messaging layer)")
}

// Shutdown closes the bus. The embedded server is stopped by its service
// when the tree stops, or here when the tree never ran.
func (c *EventComponents) Shutdown() {
	if c == nil {
		return
	}
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event bus")
		}
	}
	if c.server != nil && c.server.IsRunning() {
		done := make(chan struct{})
		go func() {
			c.server.Shutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			logging.Warn().Msg("Embedded NATS server did not stop in time")
		}
	}
}

func describeTransport(cfg *config.EventsConfig) string {
	if cfg.Transport == eventprocessor.TransportNATS && cfg.NATSEmbedded {
		return fmt.Sprintf("nats (embedded %s:%d)", cfg.NATSHost, cfg.NATSPort)
	}
	return cfg.Transport
}
