// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/storefront/internal/config"
)

// Transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// Bus is a publisher/subscriber pair over one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	transport  string
	closers    []func() error
}

// NewBus opens the transport named by cfg.Transport. url overrides
// cfg.NATSURL when non-empty, which is how an embedded server's address is
// passed in.
func NewBus(cfg *config.EventsConfig, url string, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case TransportGoChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger)
		return &Bus{
			Publisher:  ch,
			Subscriber: ch,
			transport:  TransportGoChannel,
			closers:    []func() error{ch.Close},
		}, nil

	case TransportNATS:
		if url == "" {
			url = cfg.NATSURL
		}
		if url == "" {
			return nil, fmt.Errorf("%w: nats transport needs a url", ErrInvalidConfig)
		}
		return newNATSBus(url, cfg.CloseTimeout, logger)

	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}
}

// newNATSBus connects over core NATS. Invalidation is best-effort and
// idempotent, so JetStream persistence is not used.
func newNATSBus(url string, closeTimeout time.Duration, logger watermill.LoggerAdapter) (*Bus, error) {
	if closeTimeout <= 0 {
		closeTimeout = 10 * time.Second
	}
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	jsDisabled := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   jsDisabled,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		CloseTimeout:     closeTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        jsDisabled,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Bus{
		Publisher:  pub,
		Subscriber: sub,
		transport:  TransportNATS,
		closers:    []func() error{pub.Close, sub.Close},
	}, nil
}

// Transport returns the transport name.
func (b *Bus) Transport() string {
	return b.transport
}

// Close closes the publisher and subscriber.
func (b *Bus) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
