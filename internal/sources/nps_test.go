// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPSFetchScopesByStateAndRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parks", r.URL.Path)
		assert.Equal(t, "CA", r.URL.Query().Get("stateCode"), "state derived from the user's region")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"p1","fullName":"Muir Woods National Monument","url":"https://nps.test/muwo",
			 "description":"Old growth redwoods","latitude":"37.8970","longitude":"-122.5811",
			 "entranceFees":[{"cost":"15.00"}]},
			{"id":"p2","fullName":"Yosemite National Park","url":"https://nps.test/yose",
			 "description":"Granite cliffs","latitude":"37.8651","longitude":"-119.5383",
			 "entranceFees":[{"cost":"35.00"}]}
		]}`))
	}))
	defer srv.Close()

	n := NewNPS("test-key", 2*time.Second)
	n.client.SetBaseURL(srv.URL)

	items, err := n.Fetch(context.Background(), Query{
		Lat: 37.80, Lng: -122.26, RadiusMiles: 30, Location: "Oakland, CA", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1, "parks beyond the radius are dropped")
	assert.Equal(t, "Muir Woods National Monument", items[0].Title)
	assert.Equal(t, "nps_p1", items[0].ExternalID)
}

func TestNPSFetchOmitsStateWithoutRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("stateCode"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	n := NewNPS("test-key", 2*time.Second)
	n.client.SetBaseURL(srv.URL)

	items, err := n.Fetch(context.Background(), Query{
		Lat: 37.80, Lng: -122.26, RadiusMiles: 30, Location: "Lake Merritt",
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}
