// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

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

func TestTripAdvisorShortCircuitsWithoutKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ta := NewTripAdvisor("", 2*time.Second)
	ta.client.SetBaseURL(srv.URL)

	items, err := ta.Fetch(context.Background(), Query{Lat: 37.77, Lng: -122.41, RadiusMiles: 5})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, calls.Load(), "keyless fetcher must not touch the network")
}

func TestTripAdvisorFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location/nearby_search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "mi", r.URL.Query().Get("radiusUnit"))
		assert.Equal(t, "50", r.URL.Query().Get("radius"), "radius caps at 50 miles")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{
			"location_id":"60713","name":"Angel Island State Park",
			"description":"Island park with hiking and bay views",
			"distance":"7.5",
			"address_obj":{"street1":"","city":"Tiburon","state":"California"}
		}]}`))
	}))
	defer srv.Close()

	ta := NewTripAdvisor("test-key", 2*time.Second)
	ta.client.SetBaseURL(srv.URL)

	items, err := ta.Fetch(context.Background(), Query{Lat: 37.80, Lng: -122.26, RadiusMiles: 75, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Angel Island State Park", item.Title)
	assert.Equal(t, "tripadvisor_60713", item.ExternalID)
	assert.Equal(t, "https://www.tripadvisor.com/Attraction_Review-g60713", item.Link)
	assert.Equal(t, "Tiburon, California", item.Location, "empty address parts are dropped")
	require.NotNil(t, item.DistanceMiles)
	assert.Equal(t, 7.5, *item.DistanceMiles)
	require.NotNil(t, item.TravelTimeMin)
	assert.Equal(t, 18, *item.TravelTimeMin)
	assert.Equal(t, "attractions", string(item.Category))
}

func TestTripAdvisorFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ta := NewTripAdvisor("test-key", 2*time.Second)
	ta.client.SetBaseURL(srv.URL)

	_, err := ta.Fetch(context.Background(), Query{Lat: 37.8, Lng: -122.3, RadiusMiles: 5})
	assert.Error(t, err, "non-200 must error so the breaker records it")
}
