// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package models defines data structures for the Storefront application.

This package contains the data models shared by the storage layer, the cart
service and the HTTP API. It serves as the single source of truth for data
structure definitions.

Key Components:

  - Money: fixed-point amount in integer cents, rendered with two decimals
  - CartItem: product snapshot plus quantity held in a cart
  - Cart: session or user cart with its computed price breakdown
  - Product: catalogue entry read by the cart service
  - User: credentials account with a role

Money Handling:

All amounts are held as int64 cents. Formatting to "12.34" strings only
happens at the JSON boundary, so no floating-point value is ever summed.

	m, _ := models.ParseMoney("50.00")
	fmt.Println(m.Mul(3)) // 150.00
*/
package models
