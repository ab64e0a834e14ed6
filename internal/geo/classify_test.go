// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		location string
		expected LocationKind
	}{
		{"", LocationNone},
		{"   ", LocationNone},
		{"123 Main St, Springfield, IL", LocationAddress},
		{"450 Powell Street", LocationAddress},
		{"9000 Skyline Blvd", LocationAddress},
		{"Oakland, CA", LocationCityOnly},
		{"San Jose, CA", LocationCityOnly},
		{"Chabot Space & Science Center", LocationVenue},
		{"Fox Theater", LocationVenue},
		{"Downtown Berkeley", LocationVenue},
		{"Jack London Square", LocationVenue},
		{"The Lost Church", LocationVenue},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.location), "location %q", tt.location)
		})
	}
}

func TestCleanLocation(t *testing.T) {
	assert.Equal(t, "Oakland Museum of California",
		CleanLocation("OMCA | Oakland Museum of California | Oakland"))
	assert.Equal(t, "Fox Theater", CleanLocation("  Fox Theater  "))
}

func TestAppendRegionHint(t *testing.T) {
	assert.Equal(t, "Fox Theater, CA", AppendRegionHint("Fox Theater", "CA"))
	// Already has a region suffix; left alone.
	assert.Equal(t, "Oakland, CA", AppendRegionHint("Oakland, CA", "CA"))
	// No hint available.
	assert.Equal(t, "Fox Theater", AppendRegionHint("Fox Theater", ""))
}

func TestRegionHint(t *testing.T) {
	assert.Equal(t, "CA", RegionHint("1234 Broadway, Oakland, CA 94612"))
	assert.Equal(t, "IL", RegionHint("Springfield, IL"))
	assert.Equal(t, "", RegionHint("somewhere with no state"))
}
