// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package authz

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// decisionCache memoizes enforcement results keyed by (subject, object, action).
type decisionCache struct {
	lru *expirable.LRU[string, bool]
}

func newDecisionCache(size int, ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &decisionCache{lru: expirable.NewLRU[string, bool](size, nil, ttl)}
}

func cacheKey(subject, object, action string) string {
	return subject + "\x00" + object + "\x00" + action
}

func (c *decisionCache) get(subject, object, action string) (allowed, ok bool) {
	allowed, ok = c.lru.Get(cacheKey(subject, object, action))
	if ok {
		AuthzCacheHits.Inc()
	} else {
		AuthzCacheMisses.Inc()
	}
	return allowed, ok
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.lru.Add(cacheKey(subject, object, action), allowed)
}

// invalidateSubject drops every cached decision for subject.
func (c *decisionCache) invalidateSubject(subject string) {
	prefix := subject + "\x00"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

func (c *decisionCache) purge() {
	c.lru.Purge()
}

func (c *decisionCache) len() int {
	return c.lru.Len()
}
