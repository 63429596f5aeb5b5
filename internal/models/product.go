// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package models

import "time"

// Product is a catalogue entry.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Price       Money     `json:"price"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	NumReviews  int       `json:"numReviews"`
	IsFeatured  bool      `json:"isFeatured"`
	Banner      string    `json:"banner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Image returns the first image or "".
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// AsCartItem snapshots the product as a single-quantity cart line.
func (p *Product) AsCartItem() CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.Image(),
		Price:     p.Price,
		Qty:       1,
	}
}

// StockUpdateRequest is the admin payload for setting product stock.
type StockUpdateRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}
