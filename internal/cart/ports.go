// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"

	"github.com/tomtom215/storefront/internal/models"
)

// Repository persists carts. Implemented by internal/database.
type Repository interface {
	// FetchCart returns the cart for id (user id wins over session id),
	// or ErrNotFound.
	FetchCart(ctx context.Context, id models.CartIdentity) (*models.Cart, error)

	// CreateCart inserts c, assigning ID, Version and timestamps.
	CreateCart(ctx context.Context, c *models.Cart) error

	// UpdateCart overwrites items and prices of c.ID when the stored version
	// still equals c.Version. On success c.Version is incremented.
	// Returns ErrNotFound for an unknown id and ErrVersionConflict when the
	// stored version moved on.
	UpdateCart(ctx context.Context, c *models.Cart) error
}

// Claimer moves an anonymous session cart to a user.
type Claimer interface {
	// ClaimSessionCart deletes the user's other carts and assigns userID
	// to the cart keyed by sessionCartID. Returns ErrNotFound when no
	// anonymous cart exists for the session.
	ClaimSessionCart(ctx context.Context, sessionCartID, userID string) error
}

// ProductFinder looks up catalogue entries.
type ProductFinder interface {
	// FindProductByID returns the product or ErrNotFound.
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
}

// Invalidator drops cached renderings of a page. Fire-and-forget.
type Invalidator interface {
	Invalidate(ctx context.Context, path string)
}

// SessionSource reads request-scoped identity. Implemented by internal/auth.
type SessionSource interface {
	// SessionCartID returns the sessionCartId cookie value or "".
	SessionCartID(ctx context.Context) string
	// UserID returns the signed-in user's id or "".
	UserID(ctx context.Context) string
}

// ProductPath is the cached page that shows a product.
func ProductPath(slug string) string {
	return "/product/" + slug
}
