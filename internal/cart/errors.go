// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"errors"
	"fmt"
)

// Service-level failures. Messages are shown to shoppers verbatim.
var (
	ErrSessionMissing    = errors.New("Cart Session not found") //nolint:staticcheck // user-facing text
	ErrProductNotFound   = errors.New("Product not found")      //nolint:staticcheck // user-facing text
	ErrCartNotFound      = errors.New("Cart not found")         //nolint:staticcheck // user-facing text
	ErrItemNotFound      = errors.New("Item not found")         //nolint:staticcheck // user-facing text
	ErrInsufficientStock = errors.New("Not enough stock")       //nolint:staticcheck // user-facing text
)

// Repository-level failures.
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("cart was modified concurrently")
	ErrPersistence     = errors.New("cart store failure")
)

// Result codes carried in Result.Code.
const (
	CodeOK                = "ok"
	CodeSessionMissing    = "session_missing"
	CodeValidation        = "validation"
	CodeProductNotFound   = "product_not_found"
	CodeCartNotFound      = "cart_not_found"
	CodeItemNotFound      = "item_not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodePersistence       = "persistence"
	CodeInternal          = "internal"
)

// ValidationError reports a malformed candidate item.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InsufficientStockError carries the stock figures behind ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return ErrInsufficientStock.Error()
}

// Unwrap lets errors.Is match ErrInsufficientStock.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// PersistenceError wraps a store failure.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// classify maps an error to its result code and shopper-facing message.
// Store internals never reach the message.
func classify(err error) (code, message string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return CodeValidation, verr.Reason
	case errors.Is(err, ErrSessionMissing):
		return CodeSessionMissing, ErrSessionMissing.Error()
	case errors.Is(err, ErrProductNotFound):
		return CodeProductNotFound, ErrProductNotFound.Error()
	case errors.Is(err, ErrCartNotFound):
		return CodeCartNotFound, ErrCartNotFound.Error()
	case errors.Is(err, ErrItemNotFound):
		return CodeItemNotFound, ErrItemNotFound.Error()
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock, ErrInsufficientStock.Error()
	case errors.Is(err, ErrVersionConflict):
		return CodeConflict, "Cart was updated elsewhere, please try again"
	case errors.Is(err, ErrNotFound):
		return CodeNotFound, "Cart not found"
	case errors.Is(err, ErrPersistence):
		return CodePersistence, "Could not save cart, please try again"
	default:
		return CodeInternal, "Something went wrong, please try again"
	}
}
