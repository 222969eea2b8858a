// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/middleware"
	"github.com/shoprec/shoprec/internal/recommend"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	recommend     *RecommendHandler
	catalog       *CatalogHandler
	health        *HealthHandler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router for the given service components.
func NewRouter(cfg *config.Config, svc *recommend.Service, updater *recommend.Updater, catalog Catalog, source SourceStatus, version string) *Router {
	return &Router{
		recommend:     NewRecommendHandler(svc, updater, source),
		catalog:       NewCatalogHandler(catalog, &cfg.API),
		health:        NewHealthHandler(svc, catalog, version),
		chiMiddleware: NewChiMiddlewareFromConfig(&cfg.API),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler shape for use with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works

	// Probes and scrapers bypass rate limiting.
	r.Get("/healthz", router.health.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/status", router.recommend.GetStatus)
			r.Post("/refresh", router.recommend.Refresh)
			r.Get("/{productID}", router.recommend.GetRecommendations)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", router.catalog.ListProducts)
			r.Post("/", router.catalog.CreateProduct)
			r.Get("/{id}", router.catalog.GetProduct)
			r.Get("/{id}/stats", router.recommend.GetProductStats)
		})

		r.Post("/events", router.catalog.CreateEvent)
	})

	return r
}
