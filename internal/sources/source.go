// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package sources implements one fetcher per external provider. Every
// fetcher produces the common RawItem shape, tolerates total upstream
// failure, and short-circuits to an empty result when its credential is
// absent.
package sources

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Query is the common input every fetcher receives.
type Query struct {
	Lat         float64
	Lng         float64
	RadiusMiles float64
	// Location is the user's raw location string; scraping fetchers use
	// it to build city-scoped discovery URLs.
	Location   string
	Categories []models.Category
	Interests  []string
	// Limit caps how many items the fetcher should return. Fetchers may
	// return fewer; they must not return more.
	Limit int
}

// Fetcher is the contract every source adapter implements. Fetch must never
// panic past its boundary; a total failure returns an error (feeding the
// circuit breaker) and no items. A fetcher without its credential returns
// (nil, nil) with no network call.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]models.RawItem, error)
}

// newClient builds a resty client with the per-request timeout every
// fetcher must enforce. Retries stay off: failures feed the breaker.
func newClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "wayfarer/1.0 (+https://github.com/wayfarerhq/wayfarer)")
}

// skipNoCredential records a credential short-circuit for observability.
func skipNoCredential(source string) {
	metrics.FetchSkipped.WithLabelValues(source, "no_credential").Inc()
}

// clampLimit bounds a requested limit to [1, max] with a default.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// All constructs the full fetcher set from configuration. Fetchers for
// disabled or keyless sources are still registered; their short-circuit
// keeps behavior uniform and lets a key arrive via config reload later.
func All(cfg config.SourcesConfig, crawler *DescriptionCrawler) []Fetcher {
	timeout := cfg.FetchTimeout
	fetchers := []Fetcher{
		NewGooglePlaces(cfg.GooglePlacesKey, timeout),
		NewYelp(cfg.YelpKey, timeout),
		NewTicketmaster(cfg.TicketmasterKey, timeout),
		NewNPS(cfg.NPSKey, timeout),
		NewEventbrite(cfg.EventbriteToken, cfg.EventbriteScrape, timeout),
		NewTripAdvisor(cfg.TripAdvisorKey, timeout),
	}
	if cfg.PatchEnabled {
		fetchers = append(fetchers, NewPatch(timeout))
	}
	if cfg.OverpassEnabled {
		fetchers = append(fetchers, NewOverpass(cfg.OverpassURL, timeout))
	}
	if cfg.LumaEnabled {
		fetchers = append(fetchers, NewLuma(timeout))
	}
	if cfg.MeetupEnabled {
		fetchers = append(fetchers, NewMeetup(timeout))
	}
	if cfg.FamiliesFeedURL != "" {
		fetchers = append(fetchers, NewFamiliesFeed(cfg.FamiliesFeedURL, timeout))
	}
	if len(cfg.FeedURLs) > 0 {
		fetchers = append(fetchers, NewFeeds(cfg.FeedURLs, timeout, crawler))
	}
	return fetchers
}
