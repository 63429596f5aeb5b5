// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package models

import "time"

// Per-line bounds. Keep in step with the CartItem validate tags.
const (
	MaxItemQty   = 10000
	MaxItemPrice = Money(100_000_000) // 1,000,000.00
)

// CartItem is a product snapshot held in a cart.
type CartItem struct {
	ProductID string `json:"productId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Slug      string `json:"slug" validate:"required"`
	Image     string `json:"image,omitempty"`
	Price     Money  `json:"price" validate:"gte=0,lte=100000000"`
	Qty       int    `json:"qty" validate:"gte=1,lte=10000"`
}

// PriceBreakdown is the computed price summary of a cart.
type PriceBreakdown struct {
	ItemsPrice    Money `json:"itemsPrice"`
	ShippingPrice Money `json:"shippingPrice"`
	TaxPrice      Money `json:"taxPrice"`
	TotalPrice    Money `json:"totalPrice"`
}

// Cart is a collection of line items tied to a session token and,
// once the visitor signs in, to a user.
type Cart struct {
	ID            string     `json:"id"`
	SessionCartID string     `json:"sessionCartId"`
	UserID        string     `json:"userId,omitempty"`
	Items         []CartItem `json:"items"`
	PriceBreakdown
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartIdentity selects a cart. UserID wins when set.
type CartIdentity struct {
	SessionCartID string
	UserID        string
}

// IsZero reports whether no identifier is set.
func (id CartIdentity) IsZero() bool {
	return id.SessionCartID == "" && id.UserID == ""
}

// FindItem returns the index of the item for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the total quantity across all items.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}

// Clone returns a deep copy so callers can mutate items freely.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
