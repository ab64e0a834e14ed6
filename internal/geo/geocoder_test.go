// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeocoder(t *testing.T, handler http.HandlerFunc) (*Geocoder, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewGeocoder(GeocoderOptions{
		BaseURL:       srv.URL,
		UserAgent:     "wayfarer-test",
		Timeout:       2 * time.Second,
		RatePerSec:    1000, // no throttling in tests
		NegativeTTL:   time.Hour,
		RateLimitHold: time.Hour,
	})
	return g, srv
}

func TestGeocodeCoordinateFastPath(t *testing.T) {
	var calls atomic.Int32
	g, _ := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	lat, lng, ok := g.Geocode(context.Background(), "37.8044,-122.2712")
	require.True(t, ok)
	assert.InDelta(t, 37.8044, lat, 0.0001)
	assert.InDelta(t, -122.2712, lng, 0.0001)
	assert.Zero(t, calls.Load(), "coordinate input must not hit the network")
}

func TestGeocodeKnownLocation(t *testing.T) {
	var calls atomic.Int32
	g, _ := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	lat, lng, ok := g.Geocode(context.Background(), "San Francisco")
	require.True(t, ok)
	assert.InDelta(t, 37.7749, lat, 0.0001)
	assert.InDelta(t, -122.4194, lng, 0.0001)
	assert.Zero(t, calls.Load())
}

func TestGeocodeLookupAndCache(t *testing.T) {
	var calls atomic.Int32
	g, _ := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "fox theater, oakland", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"37.8080","lon":"-122.2700"}]`))
	})

	lat, lng, ok := g.Geocode(context.Background(), "Fox Theater, Oakland")
	require.True(t, ok)
	assert.InDelta(t, 37.8080, lat, 0.0001)
	assert.InDelta(t, -122.2700, lng, 0.0001)

	// Second lookup serves from cache.
	_, _, ok = g.Geocode(context.Background(), "Fox Theater, Oakland")
	require.True(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocodeNegativeCache(t *testing.T) {
	var calls atomic.Int32
	g, _ := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, _, ok := g.Geocode(context.Background(), "nowhere at all")
	assert.False(t, ok)
	_, _, ok = g.Geocode(context.Background(), "nowhere at all")
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load(), "failed lookup must be cached")
}

func TestGeocodeRateLimitLatch(t *testing.T) {
	var calls atomic.Int32
	g, _ := testGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, ok := g.Geocode(context.Background(), "first query")
	assert.False(t, ok)

	// The latch suppresses even unrelated lookups.
	_, _, ok = g.Geocode(context.Background(), "second query")
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load(), "latched geocoder must not call upstream")
}
