// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
)

// Invalidator publishes PageInvalidated events. It implements
// cart.Invalidator: failures are logged and counted, never returned.
type Invalidator struct {
	publisher message.Publisher
	topic     string
	source    string
	breaker   *gobreaker.CircuitBreaker[any]
}

var _ cart.Invalidator = (*Invalidator)(nil)

// NewInvalidator creates an invalidator publishing to topic. breaker may
// be nil.
func NewInvalidator(pub message.Publisher, topic string, breaker *gobreaker.CircuitBreaker[any]) *Invalidator {
	return &Invalidator{publisher: pub, topic: topic, breaker: breaker}
}

// WithSource returns a copy that stamps events with source.
func (i *Invalidator) WithSource(source string) *Invalidator {
	cp := *i
	cp.source = source
	return &cp
}

// Invalidate publishes a PageInvalidated event for path.
func (i *Invalidator) Invalidate(ctx context.Context, path string) {
	if err := i.publish(ctx, path); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", path).Str("topic", i.topic).
			Msg("Page invalidation not published")
	}
}

func (i *Invalidator) publish(ctx context.Context, path string) error {
	msg, err := NewPageInvalidated(path, i.source).ToMessage()
	if err != nil {
		return err
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if i.breaker != nil {
		_, err = i.breaker.Execute(func() (any, error) {
			return nil, i.publisher.Publish(i.topic, msg)
		})
	} else {
		err = i.publisher.Publish(i.topic, msg)
	}
	metrics.RecordEventPublished(i.topic, err)
	return err
}
