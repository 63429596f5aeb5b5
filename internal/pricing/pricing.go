// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package pricing computes cart price breakdowns.
//
// All arithmetic is done on integer cents. Percentages round half away from
// zero, which for non-negative amounts is (x*pct + 50) / 100.
package pricing

import (
	"math"

	"github.com/tomtom215/storefront/internal/models"
)

// Pricing policy constants.
const (
	// FreeShippingThreshold is exclusive: items must cost strictly more.
	FreeShippingThreshold models.Money = 10000
	FlatShipping          models.Money = 1000
	TaxRatePercent                     = 15

	// MaxItemsPrice caps the subtotal so tax and total stay representable.
	MaxItemsPrice models.Money = math.MaxInt64 / 100
)

// Calculate returns the breakdown for items. It never fails; an empty
// slice yields 0.00 items, 10.00 shipping, 0.00 tax and 10.00 total.
// Lines with a negative price or quantity count as zero, and the subtotal
// saturates at MaxItemsPrice.
func Calculate(items []models.CartItem) models.PriceBreakdown {
	var itemsPrice models.Money
	for _, it := range items {
		itemsPrice = addCapped(itemsPrice, lineTotal(it))
	}

	shipping := FlatShipping
	if itemsPrice > FreeShippingThreshold {
		shipping = 0
	}

	tax := percent(itemsPrice, TaxRatePercent)

	return models.PriceBreakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice + shipping + tax,
	}
}

func percent(m models.Money, pct int64) models.Money {
	c := m.Cents() * pct
	if c < 0 {
		return models.Money(-((-c + 50) / 100))
	}
	return models.Money((c + 50) / 100)
}

func lineTotal(it models.CartItem) models.Money {
	if it.Price <= 0 || it.Qty <= 0 {
		return 0
	}
	if int64(it.Price) > int64(MaxItemsPrice)/int64(it.Qty) {
		return MaxItemsPrice
	}
	return it.Price.Mul(it.Qty)
}

func addCapped(a, b models.Money) models.Money {
	if b > MaxItemsPrice-a {
		return MaxItemsPrice
	}
	return a + b
}
