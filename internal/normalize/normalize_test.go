// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

const (
	userLat = 37.7749
	userLng = -122.4194
)

// stubGeocode resolves a fixed table; anything else fails.
func stubGeocode(table map[string][2]float64) func(ctx context.Context, q string) (float64, float64, bool) {
	return func(_ context.Context, q string) (float64, float64, bool) {
		if p, ok := table[q]; ok {
			return p[0], p[1], true
		}
		return 0, 0, false
	}
}

func TestNormalizeExplicitHints(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	miles := 4.0
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:         "Close By",
		Source:        "Yelp",
		DistanceMiles: &miles,
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierExact, rec.Tier)
	require.NotNil(t, rec.DistanceMiles)
	assert.Equal(t, 4.0, *rec.DistanceMiles)
	require.NotNil(t, rec.TravelTimeMin)
	assert.Equal(t, 10, *rec.TravelTimeMin, "travel time derived at 25 mph")
	assert.Equal(t, "4.0 mi", rec.DistanceDisplay)
}

func TestNormalizeProviderCoordinates(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:  "Lake Merritt",
		Source: "OpenStreetMap",
		Lat:    37.8044,
		Lng:    -122.2712,
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierExact, rec.Tier)
	require.NotNil(t, rec.DistanceMiles)
	assert.InDelta(t, 8.3, *rec.DistanceMiles, 0.5)
}

func TestNormalizeAddressGeocodesExact(t *testing.T) {
	n := New(stubGeocode(map[string][2]float64{
		"123 Main St, Springfield, IL": {39.7817, -89.6501},
	}), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:    "Springfield Stop",
		Source:   "Local Feeds",
		Location: "123 Main St, Springfield, IL",
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierExact, rec.Tier)
	assert.NotNil(t, rec.DistanceMiles)
}

func TestNormalizeCityOnlyIsEstimated(t *testing.T) {
	n := New(stubGeocode(map[string][2]float64{
		"Oakland, CA": {37.8044, -122.2712},
	}), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:    "Somewhere In Oakland",
		Source:   "Local Feeds",
		Location: "Oakland, CA",
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierEstimated, rec.Tier)
	assert.Contains(t, rec.DistanceDisplay, "(estimated)")
}

func TestNormalizeEmptyLocationIsNA(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:  "Mystery Event",
		Source: "Local Feeds",
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierNA, rec.Tier)
	assert.Nil(t, rec.DistanceMiles)
	assert.Nil(t, rec.TravelTimeMin)
	assert.Equal(t, "n/a", rec.DistanceDisplay)
}

func TestNormalizeGeocodeFailureIsNA(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:    "Unresolvable Venue",
		Source:   "Local Feeds",
		Location: "Some Theater That Does Not Exist",
	}, userLat, userLng, "CA")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.TierNA, rec.Tier)
}

func TestNormalizeRegionHintAppended(t *testing.T) {
	var seen string
	geocode := func(_ context.Context, q string) (float64, float64, bool) {
		seen = q
		return 37.8, -122.27, true
	}
	n := New(geocode, 25)
	n.Normalize(context.Background(), models.RawItem{
		Title:    "Fox Theater Show",
		Source:   "Ticketmaster",
		Location: "Fox Theater",
	}, userLat, userLng, "CA")

	assert.Equal(t, "Fox Theater, CA", seen)
}

func TestNormalizeDefaults(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	rec := n.Normalize(context.Background(), models.RawItem{
		Title:  "Bare Item",
		Source: "Local Feeds",
		Link:   "https://example.test/e/9",
	}, userLat, userLng, "")

	require.NoError(t, rec.Validate())
	assert.Equal(t, models.CategoryAttractions, rec.Category)
	assert.Equal(t, models.PriceCheap, rec.PriceFlag)
	assert.Contains(t, rec.PlaceID, "feed_")
	assert.Len(t, rec.PlaceID, len("feed_")+12)
}

func TestPlaceIDStable(t *testing.T) {
	a := placeID(models.RawItem{Title: "Same", Link: "https://x.test/1"})
	b := placeID(models.RawItem{Title: "Same", Link: "https://x.test/1"})
	c := placeID(models.RawItem{Title: "Different", Link: "https://x.test/1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBatchCapsAndSkipsEmptyTitles(t *testing.T) {
	n := New(stubGeocode(nil), 25)
	raws := []models.RawItem{
		{Title: "One", Source: "s"},
		{Title: "", Source: "s"},
		{Title: "Two", Source: "s"},
		{Title: "Three", Source: "s"},
	}
	out := n.Batch(context.Background(), raws, userLat, userLng, "", 3)
	require.Len(t, out, 2, "cap applies before the empty-title drop")
	assert.Equal(t, "One", out[0].Title)
	assert.Equal(t, "Two", out[1].Title)
}
