// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
)

// MessageTypePageInvalidated is the websocket message type for pushes.
const MessageTypePageInvalidated = "page_invalidated"

// PageEvictor drops a cached page. Implemented by *cache.Cache.
type PageEvictor interface {
	Invalidate(path string) bool
}

// Broadcaster pushes a typed JSON message to live clients. Implemented by
// *websocket.Hub.
type Broadcaster interface {
	BroadcastJSON(messageType string, data any)
}

// InvalidationHandler consumes PageInvalidated events.
type InvalidationHandler struct {
	pages PageEvictor
	hub   Broadcaster
	topic string
}

// NewInvalidationHandler creates the consumer. hub may be nil.
func NewInvalidationHandler(pages PageEvictor, hub Broadcaster, topic string) *InvalidationHandler {
	return &InvalidationHandler{pages: pages, hub: hub, topic: topic}
}

// Handle evicts the page and notifies websocket clients. Malformed
// payloads are acked and dropped; retrying cannot fix them.
func (h *InvalidationHandler) Handle(msg *message.Message) error {
	ctx := logging.ContextWithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))
	metrics.EventsConsumed.WithLabelValues(h.topic).Inc()

	event, err := DecodePageInvalidated(msg)
	if err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed invalidation event")
			return nil
		}
		return err
	}

	evicted := h.pages.Invalidate(event.Path)
	if h.hub != nil {
		h.hub.BroadcastJSON(MessageTypePageInvalidated, event)
	}

	logging.Ctx(ctx).Debug().
		Str("path", event.Path).
		Str("source", event.Source).
		Bool("evicted", evicted).
		Msg("Page invalidated")
	return nil
}

// Register adds the handler to r, subscribed to its topic on sub.
func (h *InvalidationHandler) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("page_invalidation", h.topic, sub, h.Handle)
}
