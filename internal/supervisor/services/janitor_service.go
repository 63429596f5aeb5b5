// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package services

import (
	"context"
	"time"
)

// IntervalRunner does periodic housekeeping until ctx is done. Satisfied
// by *cache.Cache and *auth.SessionStoreFactory.
type IntervalRunner interface {
	Run(ctx context.Context, interval time.Duration) error
}

// JanitorService runs an IntervalRunner under supervision.
type JanitorService struct {
	runner   IntervalRunner
	interval time.Duration
	name     string
}

// NewJanitorService wraps runner. name identifies it in supervisor logs.
func NewJanitorService(name string, runner IntervalRunner, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{runner: runner, interval: interval, name: name}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	return j.runner.Run(ctx, j.interval)
}

func (j *JanitorService) String() string {
	return j.name
}
