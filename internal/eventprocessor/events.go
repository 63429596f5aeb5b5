// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// SchemaVersion is the current PageInvalidated schema version.
const SchemaVersion = 1

// Metadata keys set on every published message.
const (
	MetadataPath   = "path"
	MetadataSource = "source"
)

var (
	// ErrInvalidEvent is returned for events that fail validation.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidConfig is returned when the bus configuration is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PageInvalidated announces that the rendered view at Path is stale.
type PageInvalidated struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Path          string    `json:"path"`
	At            time.Time `json:"at"`
	// Source names the operation that caused the invalidation, such as
	// "cart.add_item".
	Source string `json:"source,omitempty"`
}

// NewPageInvalidated creates an event for path stamped with the current time.
func NewPageInvalidated(path, source string) *PageInvalidated {
	return &PageInvalidated{
		SchemaVersion: SchemaVersion,
		EventID:       watermill.NewUUID(),
		Path:          path,
		At:            time.Now().UTC(),
		Source:        source,
	}
}

// Validate checks required fields.
func (e *PageInvalidated) Validate() error {
	if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("%w: path %q must be absolute", ErrInvalidEvent, e.Path)
	}
	if e.EventID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}
	return nil
}

// ToMessage encodes e as a watermill message keyed by its event id.
func (e *PageInvalidated) ToMessage() (*message.Message, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set(MetadataPath, e.Path)
	if e.Source != "" {
		msg.Metadata.Set(MetadataSource, e.Source)
	}
	return msg, nil
}

// DecodePageInvalidated decodes and validates a message payload.
func DecodePageInvalidated(msg *message.Message) (*PageInvalidated, error) {
	var e PageInvalidated
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
