// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package audit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/storefront/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Retention is how long events are kept. Zero keeps them forever.
	Retention time.Duration

	// BufferSize is the size of the async write buffer.
	BufferSize int

	// LogToStdout also writes events through the application logger.
	LogToStdout bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Retention:  90 * 24 * time.Hour,
		BufferSize: 1000,
	}
}

// Logger records audit events asynchronously so request handlers never
// wait on the store.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger starts the background writer. Close stops it.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain what is already buffered.
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		if data, err := json.Marshal(event); err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

// Log queues event. A full buffer drops the event with a warning.
func (l *Logger) Log(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case <-l.stopChan:
		return
	default:
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// Close flushes buffered events and stops the writer.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Run deletes events older than the retention period every interval
// until ctx is done. It is run as a supervised service.
func (l *Logger) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.config.Retention <= 0 {
				continue
			}
			n, err := l.store.Delete(ctx, time.Now().Add(-l.config.Retention))
			if err != nil {
				logging.Error().Err(err).Msg("Audit cleanup error")
			} else if n > 0 {
				logging.Info().Int64("count", n).Msg("Cleaned up old audit events")
			}
		}
	}
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// LogSignIn records a sign-in attempt. actor.ID is empty on failure.
func (l *Logger) LogSignIn(ctx context.Context, actor Actor, source Source, success bool) {
	e := &Event{
		Type:        EventTypeSignIn,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Description: "User signed in",
		RequestID:   logging.RequestIDFromContext(ctx),
	}
	if !success {
		e.Severity = SeverityWarning
		e.Outcome = OutcomeFailure
		e.Description = "Sign-in failed: invalid credentials"
	}
	l.Log(e)
}

// LogSignUp records a registration attempt.
func (l *Logger) LogSignUp(ctx context.Context, actor Actor, source Source, success bool, reason string) {
	e := &Event{
		Type:        EventTypeSignUp,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Description: "Account created",
		RequestID:   logging.RequestIDFromContext(ctx),
	}
	if !success {
		e.Outcome = OutcomeFailure
		e.Description = "Sign-up rejected: " + reason
	}
	l.Log(e)
}

// LogSignOut records a sign-out.
func (l *Logger) LogSignOut(ctx context.Context, actor Actor, source Source) {
	l.Log(&Event{
		Type:        EventTypeSignOut,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Description: "User signed out",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogCartClaimed records an anonymous cart moving to an account.
func (l *Logger) LogCartClaimed(ctx context.Context, actor Actor, source Source, cartID string) {
	l.Log(&Event{
		Type:        EventTypeCartClaimed,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      &Target{ID: cartID, Type: "cart"},
		Source:      source,
		Description: "Session cart claimed on sign-in",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAdminAction records a privileged change. metadata may be nil.
func (l *Logger) LogAdminAction(ctx context.Context, eventType EventType, actor Actor, source Source, target *Target, description string, metadata any) {
	e := &Event{
		Type:        eventType,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      target,
		Source:      source,
		Description: description,
		RequestID:   logging.RequestIDFromContext(ctx),
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			e.Metadata = raw
		}
	}
	l.Log(e)
}

// SourceFromRequest extracts the client address and user agent.
// RemoteAddr is already rewritten by the RealIP middleware.
func SourceFromRequest(r *http.Request) Source {
	return Source{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}
