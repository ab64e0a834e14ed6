// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package main is the entry point for the Wayfarer server.
//
// Wayfarer aggregates "things to do nearby" from public APIs, event
// scrapers, and RSS feeds, then filters, deduplicates, and ranks them into
// a small personalized list. The server initializes in order:
//
//  1. Configuration: Koanf v2 layered load (defaults, config.yaml, env)
//  2. Logging: zerolog, console or JSON format
//  3. Store: embedded Badger database for the durable cache and history
//  4. Geocoder: rate-limited Nominatim client with positive/negative caches
//  5. Sources: one fetcher per configured upstream, each behind a breaker
//  6. Engine: warm cache, fan-out, normalization, filtering, ranking
//  7. Supervisor: suture tree running the HTTP server and the janitors
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests and
// background refreshes before closing the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/wayfarerhq/wayfarer/internal/api"
	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/engine"
	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/sources"
	"github.com/wayfarerhq/wayfarer/internal/store"
	"github.com/wayfarerhq/wayfarer/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wayfarer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("starting wayfarer")

	db, err := store.OpenBadger(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("failed to close store")
		}
	}()

	geocoder := geo.NewGeocoder(geo.GeocoderOptions{
		BaseURL:       cfg.Geocoder.BaseURL,
		UserAgent:     cfg.Geocoder.UserAgent,
		Timeout:       cfg.Geocoder.Timeout,
		RatePerSec:    cfg.Geocoder.RatePerSec,
		NegativeTTL:   cfg.Geocoder.NegativeTTL,
		RateLimitHold: cfg.Geocoder.RateLimitHold,
	})

	var crawler *sources.DescriptionCrawler
	if cfg.Crawler.Enabled {
		crawler = sources.NewDescriptionCrawler(cfg.Crawler.Timeout, cfg.Crawler.CacheTTL, cfg.Crawler.MaxBytes, cfg.Crawler.MaxChars)
	}

	fetchers := sources.All(cfg.Sources, crawler)
	logging.Info().Int("sources", len(fetchers)).Msg("source fetchers configured")

	eng := engine.New(cfg, fetchers, geocoder.Geocode, db, db)
	defer eng.Close()

	var ready atomic.Bool
	router := api.New(cfg, eng, db, db, geocoder.Geocode, ready.Load)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddAPI(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	tree.AddMaintenance(supervisor.NewTickerService("store-sweep", cfg.Database.SweepInterval, func(ctx context.Context) error {
		_, err := db.SweepExpired(ctx)
		return err
	}))
	tree.AddMaintenance(supervisor.NewTickerService("badger-gc", cfg.Database.GCInterval, func(_ context.Context) error {
		return db.RunGC()
	}))
	tree.AddMaintenance(supervisor.NewTickerService("warm-cache-sweep", cfg.Cache.StaleWindow, func(_ context.Context) error {
		eng.SweepWarmCache()
		return nil
	}))
	if crawler != nil {
		tree.AddMaintenance(supervisor.NewTickerService("crawler-sweep", cfg.Crawler.CacheTTL, func(_ context.Context) error {
			crawler.Sweep()
			return nil
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready.Store(true)
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("wayfarer stopped")
	return nil
}
