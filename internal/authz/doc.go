// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package authz guards the admin API with Casbin RBAC.
//
// The embedded model is an ACL with role inheritance and keyMatch paths:
//
//	m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act
//
// The embedded policy grants the admin role read, write and delete on
// /api/admin/*; admin inherits user. Cart and catalogue endpoints are not
// routed through this package.
//
// Usage:
//
//	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
//	mw := authz.NewMiddleware(enforcer)
//	r.With(mw.AuthorizeRequest).Put("/api/admin/products/{id}/stock", h.UpdateStock)
//
// HTTP methods map to actions: GET, HEAD and OPTIONS are "read"; POST, PUT
// and PATCH are "write"; DELETE is "delete". Decisions are cached in an
// expirable LRU that is cleared whenever policies or roles change.
package authz
