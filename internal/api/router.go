// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/storefront/internal/middleware"
	ws "github.com/tomtom215/storefront/internal/websocket"
)

// Router builds the HTTP surface.
type Router struct {
	handler *Handler
	chi     *ChiMiddleware
}

// NewRouter creates a router over deps.
func NewRouter(deps Deps) (*Router, error) {
	h, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	return &Router{
		handler: h,
		chi:     NewChiMiddleware(ChiMiddlewareConfigFrom(&deps.Config.Security)),
	}, nil
}

// Handler returns the root http.Handler.
//
// Order matters: the subject and the sessionCartId must be in the context
// before the gate evaluates a page request.
func (router *Router) Handler() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	if h.Perf != nil {
		r.Use(h.Perf.Middleware)
	}
	r.Use(router.chi.CORS())
	r.Use(h.Authenticator.Authenticate)
	r.Use(h.CartSessions.Middleware)
	r.Use(h.Gate.Middleware)

	r.NotFound(h.NotFound)

	// ========================
	// Pages
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5))
		r.Use(PageSecurityHeaders())

		r.Get("/", h.HomePage)
		r.Get("/product/{slug}", h.ProductPage)
		r.Get("/cart", h.CartPage)

		r.Get("/sign-in", h.SignInPage)
		r.Get("/sign-up", h.SignUpPage)
		r.With(router.chi.RateLimitAuth()).Post("/sign-in", h.SignInForm)
		r.With(router.chi.RateLimitAuth()).Post("/sign-up", h.SignUpForm)
		r.Post("/sign-out", h.SignOutForm)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI; the spec is registered by the docs package.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// ========================
	// API
	// ========================
	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(router.chi.RateLimit())

		r.Get("/health", h.Health)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{slug}", h.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Delete("/items/{productId}", h.RemoveCartItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(router.chi.RateLimitAuth())
			r.Post("/sign-up", h.SignUp)
			r.Post("/sign-in", h.SignIn)
			r.Post("/sign-out", h.SignOut)
		})

		// Casbin decides from the role and the request path.
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Authenticator.RequireAuth)
			r.Use(h.Authz.AuthorizeRequest)
			r.Put("/products/{id}/stock", h.UpdateStock)
			r.Get("/performance", h.PerformanceStats)
			r.Get("/cache", h.CacheStats)
			r.Delete("/cache", h.ClearCache)
			r.Get("/audit", h.AuditLog)
		})

		if h.Hub != nil {
			r.Handle("/ws", ws.NewHandler(h.Hub, h.Config.Security.CORSOrigins))
		}
	})

	return r
}
