// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/logging"
)

var (
	// ErrNotFound is cart.ErrNotFound, shared so the cart service can match
	// product and cart misses alike.
	ErrNotFound = cart.ErrNotFound

	// ErrEmailTaken is returned by CreateUser when the email is registered.
	ErrEmailTaken = errors.New("email already registered")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackQuietly aborts tx after a failed step.
func rollbackQuietly(tx interface{ Rollback() error }) {
	_ = tx.Rollback()
}

// isTransactionConflict reports a DuckDB optimistic-concurrency abort or an
// SQLite busy/locked error. Both mean another writer got there first.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked")
}

// isUniqueViolation reports a unique constraint failure on either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "Duplicate key") ||
		strings.Contains(errStr, "violates unique constraint") ||
		strings.Contains(errStr, "violates primary key constraint")
}
