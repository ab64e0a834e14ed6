// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

func TestForInterestMatch(t *testing.T) {
	rec := &models.Recommendation{
		Title:    "Live Jazz at the Boom Boom Room",
		Category: models.CategoryEntertainment,
	}
	user := &models.UserContext{
		Preferences: models.Preferences{Interests: []string{"jazz"}},
	}

	got := For(rec, user)
	assert.Contains(t, got, "matches your interest in jazz")
}

func TestForCanonicalInterestExpansion(t *testing.T) {
	rec := &models.Recommendation{
		Title:       "SFMOMA Gallery Night",
		Description: "Modern art after hours at the museum",
		Category:    models.CategoryMuseums,
	}
	user := &models.UserContext{
		Preferences: models.Preferences{Interests: []string{"arts_culture"}},
	}

	got := For(rec, user)
	assert.Contains(t, got, "matches your interest in arts and culture")
}

func TestForFamilyRequiresKidFriendly(t *testing.T) {
	user := &models.UserContext{
		Preferences: models.Preferences{GroupType: models.GroupFamily},
	}

	kidRec := &models.Recommendation{
		Title:       "Children's Creativity Museum",
		Category:    models.CategoryMuseums,
		KidFriendly: true,
	}
	assert.Contains(t, For(kidRec, user), "whole family")

	barRec := &models.Recommendation{
		Title:    "Whiskey Tasting",
		Category: models.CategoryFood,
	}
	assert.NotContains(t, For(barRec, user), "whole family")
}

func TestForFreeAndClose(t *testing.T) {
	rec := &models.Recommendation{
		Title:     "Dolores Park",
		Category:  models.CategoryParks,
		PriceFlag: models.PriceFree,
	}
	rec.SetDistance(2.1, 6, models.TierExact)

	got := For(rec, nil)
	assert.Contains(t, got, "free to visit")
	assert.Contains(t, got, "6 min away")
}

func TestForFallsBackToCategory(t *testing.T) {
	rec := &models.Recommendation{
		Title:     "Ferry Building Marketplace",
		Category:  models.CategoryShopping,
		PriceFlag: models.PriceModerate,
	}
	rec.ClearDistance()

	got := For(rec, nil)
	assert.Equal(t, "Good for browsing.", got)
}

func TestForAlwaysEndsWithPeriod(t *testing.T) {
	for _, cat := range models.Categories {
		rec := &models.Recommendation{Title: "X", Category: cat, PriceFlag: models.PriceModerate}
		rec.ClearDistance()
		got := For(rec, nil)
		assert.NotEmpty(t, got)
		assert.Equal(t, byte('.'), got[len(got)-1])
	}
}
