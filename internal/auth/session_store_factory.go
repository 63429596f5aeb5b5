// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
)

// SessionStoreType defines the type of session storage backend.
type SessionStoreType string

const (
	// SessionStoreMemory uses in-memory storage (default, not persistent).
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger uses BadgerDB for persistent session storage.
	SessionStoreBadger SessionStoreType = "badger"
)

// SessionStoreFactory opens the configured backend and owns its lifetime.
type SessionStoreFactory struct {
	db    *badger.DB
	store SessionStore
}

// NewSessionStoreFactory opens a session store. For "badger" a BadgerDB is
// opened at path; "memory" or "" need nothing.
func NewSessionStoreFactory(storeType SessionStoreType, path string) (*SessionStoreFactory, error) {
	switch storeType {
	case SessionStoreBadger:
		opts := badger.DefaultOptions(path)
		opts.Logger = nil

		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for sessions: %w", err)
		}
		return &SessionStoreFactory{db: db, store: NewBadgerSessionStore(db)}, nil
	case SessionStoreMemory, "":
		return &SessionStoreFactory{store: NewMemorySessionStore()}, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", storeType)
	}
}

// Store returns the session store.
func (f *SessionStoreFactory) Store() SessionStore {
	return f.store
}

// Run removes expired sessions every interval until ctx is done. It is
// run as a supervised service.
func (f *SessionStoreFactory) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := f.store.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Session cleanup failed")
				continue
			}
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired sessions removed")
			}
			if live, err := f.Count(); err == nil {
				metrics.ActiveSessions.Set(float64(live))
			}
		}
	}
}

// Count returns the number of stored sessions.
func (f *SessionStoreFactory) Count() (int, error) {
	switch s := f.store.(type) {
	case *BadgerSessionStore:
		return s.Count()
	case *MemorySessionStore:
		return s.Len(), nil
	default:
		return 0, nil
	}
}

// Close closes the underlying BadgerDB if one was opened.
func (f *SessionStoreFactory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
