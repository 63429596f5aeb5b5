// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package services

import (
	"context"
	"fmt"
)

// EventRouter is satisfied by *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
}

// RouterFactory builds a router with its handlers registered. A Watermill
// router cannot be run twice, so every restart gets a fresh one.
type RouterFactory func() (EventRouter, error)

// EventRouterService runs the page invalidation consumer.
type EventRouterService struct {
	build RouterFactory
}

// NewEventRouterService creates the service.
func NewEventRouterService(build RouterFactory) *EventRouterService {
	return &EventRouterService{build: build}
}

// Serve implements suture.Service.
func (e *EventRouterService) Serve(ctx context.Context) error {
	router, err := e.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	if err := router.Run(ctx); err != nil {
		return err
	}
	// Watermill returns nil when ctx ends.
	return ctx.Err()
}

func (e *EventRouterService) String() string {
	return "event-router"
}

// BrokerServer is satisfied by *eventprocessor.EmbeddedServer.
type BrokerServer interface {
	Serve(ctx context.Context) error
}

// EmbeddedNATSService ties the embedded broker's lifetime to the tree.
type EmbeddedNATSService struct {
	server BrokerServer
}

// NewEmbeddedNATSService wraps an already started server.
func NewEmbeddedNATSService(server BrokerServer) *EmbeddedNATSService {
	return &EmbeddedNATSService{server: server}
}

// Serve implements suture.Service.
func (n *EmbeddedNATSService) Serve(ctx context.Context) error {
	return n.server.Serve(ctx)
}

func (n *EmbeddedNATSService) String() string {
	return "nats-server"
}
