// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

func TestFuzzyTitleKey(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		sameKey bool
	}{
		{"case and punctuation", "Farmers Market", "farmers market!!", true},
		{"stopwords removed", "The Farmers Market", "Farmers Market", true},
		{"word order ignored", "Market Farmers", "Farmers Market", true},
		{"free is a stopword", "Free Concert in the Park", "Concert Park", true},
		{"different events differ", "Farmers Market", "Flea Market", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.sameKey {
				assert.Equal(t, FuzzyTitleKey(tt.a), FuzzyTitleKey(tt.b))
			} else {
				assert.NotEqual(t, FuzzyTitleKey(tt.a), FuzzyTitleKey(tt.b))
			}
		})
	}
}

func TestCollapseFuzzyDuplicatesKeepsFirst(t *testing.T) {
	items := []models.Recommendation{
		{PlaceID: "1", Title: "Farmers Market", FeedSource: "Yelp"},
		{PlaceID: "2", Title: "farmers market!!", FeedSource: "Eventbrite"},
		{PlaceID: "3", Title: "Night Hike", FeedSource: "Meetup"},
	}

	out := CollapseFuzzyDuplicates(items)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].PlaceID, "first occurrence survives")
	assert.Equal(t, "3", out[1].PlaceID)
}
