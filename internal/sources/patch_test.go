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

const patchTestFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Oakland Patch</title>
<item><title>Summer Festival This Weekend</title><link>https://patch.test/festival</link>
<description>Live music and food trucks at the lake.</description></item>
<item><title>City Council Approves Budget</title><link>https://patch.test/budget</link>
<description>The council passed next year's budget.</description></item>
</channel></rss>`

func TestPatchClosestSlugs(t *testing.T) {
	p := NewPatch(2 * time.Second)
	// Downtown Oakland puts Berkeley and San Francisco next in line.
	slugs := p.closestSlugs(37.8044, -122.2712)
	assert.Equal(t, []string{"oakland", "berkeley", "san-francisco"}, slugs)
}

func TestPatchFetch(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(patchTestFeed))
	}))
	defer srv.Close()

	p := NewPatch(2 * time.Second)
	p.baseURL = srv.URL

	items, err := p.Fetch(context.Background(), Query{Lat: 37.8044, Lng: -122.2712, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 6, "two items from each of the three closest cities")
	assert.Equal(t, "/oakland/rss", paths[0], "closest city is polled first")

	festival := items[0]
	assert.Equal(t, "Summer Festival This Weekend", festival.Title)
	assert.Equal(t, "Patch (oakland)", festival.Source)
	assert.Equal(t, "events", string(festival.Category), "event keywords classify as events")
	assert.Equal(t, "free", string(festival.Price))

	news := items[1]
	assert.Equal(t, "community", string(news.Category), "plain news classifies as community")
}

func TestPatchFetchAllCitiesFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPatch(2 * time.Second)
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), Query{Lat: 37.8044, Lng: -122.2712})
	assert.Error(t, err, "total feed failure must reach the breaker")
}
