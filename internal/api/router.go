// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package api exposes the HTTP surface: the recommendations endpoint,
// preference management, health probes, and Prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/engine"
	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

// Router wires handlers to their dependencies.
type Router struct {
	cfg     *config.Config
	engine  *engine.Engine
	history store.HistoryStore
	prefs   store.PreferenceStore
	geocode geo.GeocodeFunc
	ready   func() bool
}

// New builds the router. ready reports whether the process can serve
// traffic; the readiness probe returns 503 until it does.
func New(cfg *config.Config, eng *engine.Engine, history store.HistoryStore, prefs store.PreferenceStore, geocode geo.GeocodeFunc, ready func() bool) *Router {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &Router{
		cfg:     cfg,
		engine:  eng,
		history: history,
		prefs:   prefs,
		geocode: geocode,
		ready:   ready,
	}
}

// Handler assembles the chi mux with the full middleware stack.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.API.CORSOrigins,
		AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health/live", rt.handleLiveness)
	r.Get("/health/ready", rt.handleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.API.RateLimitReqs, rt.cfg.API.RateLimitWindow))
		r.Use(prometheusMetrics)

		r.Get("/recommendations", rt.handleRecommendations)
		r.Get("/preferences/{userID}", rt.handleGetPreferences)
		r.Put("/preferences/{userID}", rt.handleSetPreferences)
		r.Post("/visits/{userID}", rt.handleAddVisit)
	})

	return r
}
