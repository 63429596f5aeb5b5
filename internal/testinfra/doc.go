// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package testinfra starts Docker containers for integration tests.
//
// It is compiled only with the integration build tag:
//
//	go test -tags integration ./internal/eventprocessor/...
//
// NATSContainer runs a real NATS server so the NATS event transport can be
// exercised against a broker that is not embedded in the test binary.
// Tests are skipped when Docker is unavailable.
package testinfra
