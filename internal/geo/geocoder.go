// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package geo

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
)

// GeocodeFunc resolves an address or city string to coordinates. The bool
// reports success; callers downgrade the item's resolution tier to n/a on
// failure rather than erroring.
type GeocodeFunc func(ctx context.Context, query string) (lat, lng float64, ok bool)

// GeocoderOptions configures a Geocoder.
type GeocoderOptions struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	RatePerSec  float64
	NegativeTTL time.Duration
	// RateLimitHold suspends all lookups this long after an upstream 429.
	RateLimitHold time.Duration
}

// Geocoder resolves location strings via Nominatim with local caching.
// Lookups are throttled by a token bucket, results (including failures) are
// cached, and a 429 from upstream latches the client off for a hold period.
type Geocoder struct {
	client *resty.Client
	limit  *rate.Limiter
	log    zerolog.Logger
	opts   GeocoderOptions

	mu       sync.Mutex
	cache    map[string]point
	negative map[string]time.Time
	// heldUntil is nonzero while the 429 latch is engaged.
	heldUntil time.Time
}

type point struct {
	lat, lng float64
}

// coordinateRe matches "37.7749,-122.4194" style strings so coordinate
// input bypasses the network entirely.
var coordinateRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// knownLocations short-circuits lookups for locations that dominate the
// request mix. Keys are lowercase.
var knownLocations = map[string]point{
	"san francisco":     {37.7749, -122.4194},
	"san francisco, ca": {37.7749, -122.4194},
	"oakland":           {37.8044, -122.2712},
	"oakland, ca":       {37.8044, -122.2712},
	"berkeley":          {37.8715, -122.2730},
	"berkeley, ca":      {37.8715, -122.2730},
	"alameda":           {37.7652, -122.2416},
	"alameda, ca":       {37.7652, -122.2416},
	"san jose":          {37.3382, -121.8863},
	"san jose, ca":      {37.3382, -121.8863},
	"palo alto":         {37.4419, -122.1430},
	"palo alto, ca":     {37.4419, -122.1430},
	"golden gate park":  {37.7694, -122.4862},
}

// NewGeocoder builds a Geocoder with the given options.
func NewGeocoder(opts GeocoderOptions) *Geocoder {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	return &Geocoder{
		client:   client,
		limit:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		log:      logging.With().Str("component", "geocoder").Logger(),
		opts:     opts,
		cache:    make(map[string]point),
		negative: make(map[string]time.Time),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a location string to coordinates. Resolution order:
// coordinate fast path, known-location table, positive cache, negative
// cache, then one throttled Nominatim lookup.
func (g *Geocoder) Geocode(ctx context.Context, query string) (float64, float64, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, 0, false
	}

	if m := coordinateRe.FindStringSubmatch(q); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lng, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			metrics.GeocodeRequests.WithLabelValues("coordinate").Inc()
			return lat, lng, true
		}
	}

	if p, ok := knownLocations[q]; ok {
		metrics.GeocodeRequests.WithLabelValues("known").Inc()
		return p.lat, p.lng, true
	}

	if lat, lng, ok, done := g.checkCaches(q); done {
		return lat, lng, ok
	}

	return g.lookup(ctx, q)
}

// checkCaches consults the positive and negative caches and the 429 latch.
// done=true means the answer is final without a network call.
func (g *Geocoder) checkCaches(q string) (lat, lng float64, ok, done bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, hit := g.cache[q]; hit {
		metrics.GeocodeRequests.WithLabelValues("hit").Inc()
		return p.lat, p.lng, true, true
	}
	if until, hit := g.negative[q]; hit {
		if time.Now().Before(until) {
			metrics.GeocodeRequests.WithLabelValues("negative_cache").Inc()
			return 0, 0, false, true
		}
		delete(g.negative, q)
	}
	if time.Now().Before(g.heldUntil) {
		metrics.GeocodeRequests.WithLabelValues("rate_limited").Inc()
		return 0, 0, false, true
	}
	return 0, 0, false, false
}

func (g *Geocoder) lookup(ctx context.Context, q string) (float64, float64, bool) {
	if err := g.limit.Wait(ctx); err != nil {
		return 0, 0, false
	}

	var results []nominatimResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      q,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		g.log.Warn().Err(err).Str("query", q).Msg("geocode request failed")
		return 0, 0, false
	}

	if resp.StatusCode() == 429 {
		metrics.GeocodeRequests.WithLabelValues("rate_limited").Inc()
		g.mu.Lock()
		g.heldUntil = time.Now().Add(g.opts.RateLimitHold)
		g.mu.Unlock()
		g.log.Warn().Str("query", q).Dur("hold", g.opts.RateLimitHold).
			Msg("geocoder rate limited upstream, holding")
		return 0, 0, false
	}

	if !resp.IsSuccess() || len(results) == 0 {
		metrics.GeocodeRequests.WithLabelValues("miss").Inc()
		g.rememberNegative(q)
		return 0, 0, false
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		g.rememberNegative(q)
		return 0, 0, false
	}

	g.mu.Lock()
	g.cache[q] = point{lat, lng}
	g.mu.Unlock()
	return lat, lng, true
}

// rememberNegative caches a failed lookup so the same unresolvable string
// does not burn the rate budget again within the TTL.
func (g *Geocoder) rememberNegative(q string) {
	g.mu.Lock()
	g.negative[q] = time.Now().Add(g.opts.NegativeTTL)
	g.mu.Unlock()
}
