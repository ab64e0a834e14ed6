// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

func testRankingConfig() config.RankingConfig {
	return config.RankingConfig{
		BaseScore:             50,
		DistancePresentBonus:  30,
		DistanceAbsentPenalty: 20,
		NearBonus:             15,
		MidBonus:              10,
		FarBonus:              5,
		FarPenaltyCap:         15,
		InterestStrongBonus:   25,
		InterestWeakBonus:     15,
		FamilyKidBonus:        15,
		FamilyInterestBonus:   10,
		FreeBonus:             5,
		EventDateBonus:        5,
		RatingWeight:          5,
		MinPerSource:          4,
	}
}

func withDistance(title, source string, miles float64) models.Recommendation {
	r := models.Recommendation{
		Title:      title,
		PlaceID:    title,
		Category:   models.CategoryParks,
		PriceFlag:  models.PriceCheap,
		FeedSource: source,
	}
	r.SetDistance(miles, 10, models.TierExact)
	return r
}

func TestScoreDistancePresence(t *testing.T) {
	s := New(testRankingConfig())

	near := withDistance("Near", "a", 2)
	nowhere := models.Recommendation{
		Title: "Nowhere", PlaceID: "n", Category: models.CategoryParks,
		PriceFlag: models.PriceCheap, FeedSource: "a",
	}
	nowhere.ClearDistance()

	nearScore := s.Score(&near, models.Preferences{})
	nowhereScore := s.Score(&nowhere, models.Preferences{})
	assert.Equal(t, 95.0, nearScore, "50 base + 30 present + 15 near")
	assert.Equal(t, 30.0, nowhereScore, "50 base - 20 absent")
	assert.Greater(t, nearScore, nowhereScore)
}

func TestScoreDistanceTiers(t *testing.T) {
	s := New(testRankingConfig())
	tests := []struct {
		miles    float64
		expected float64
	}{
		{3, 95},   // near bonus
		{8, 90},   // mid bonus
		{15, 85},  // far bonus
		{28, 72},  // 50 + 30 - 8 proportional penalty
		{100, 65}, // penalty capped at 15
	}
	for _, tt := range tests {
		item := withDistance("X", "a", tt.miles)
		assert.Equal(t, tt.expected, s.Score(&item, models.Preferences{}), "miles %.0f", tt.miles)
	}
}

func TestScoreInterestHits(t *testing.T) {
	s := New(testRankingConfig())
	item := withDistance("Sunset Hike and Picnic", "a", 2)
	item.Description = "an outdoor music evening"

	one := s.Score(&item, models.Preferences{Interests: []string{"music"}})
	two := s.Score(&item, models.Preferences{Interests: []string{"music", "hike"}})
	none := s.Score(&item, models.Preferences{})
	assert.Equal(t, none+15, one)
	assert.Equal(t, none+25, two)
}

func TestExpandInterests(t *testing.T) {
	tests := []struct {
		interest string
		keywords []string
	}{
		{"arts_culture", []string{"arts", "culture", "art", "museum", "gallery", "theater", "music"}},
		{"nature", []string{"nature", "park", "outdoor", "hiking", "garden", "trail"}},
		{"food_drink", []string{"food", "restaurant", "dining", "cafe", "bar", "brewery", "wine"}},
		{"food_drinks", []string{"food", "restaurant", "dining", "cafe", "bar", "brewery", "wine"}},
		{"fitness", []string{"fitness", "sports", "yoga", "gym", "run", "bike"}},
		{"adventure", []string{"adventure", "sports", "active", "climb", "kayak", "hike"}},
		{"learning", []string{"learning", "workshop", "class", "lecture", "education", "science", "library"}},
		{"shopping", []string{"shopping", "market", "boutique", "store", "flea"}},
		{"nightlife", []string{"nightlife", "club", "bar", "concert", "live music"}},
		{"family", []string{"family", "kids", "children", "family-friendly", "playground"}},
		{"events", []string{"event", "festival", "fair", "celebration", "community"}},
		{"entertainment", []string{"entertainment", "show", "theater", "music", "concert", "comedy"}},
		{"relaxation", []string{"relaxation", "spa", "meditation", "yoga", "wellness", "garden"}},
		// Unknown ids fall back to their own text.
		{"jazz", []string{"jazz"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.keywords, ExpandInterests([]string{tt.interest}), tt.interest)
	}

	// Shared keywords are deduplicated across interests.
	combined := ExpandInterests([]string{"fitness", "adventure"})
	counts := map[string]int{}
	for _, kw := range combined {
		counts[kw]++
	}
	assert.Equal(t, 1, counts["sports"])
}

func TestScoreCanonicalInterestExpansion(t *testing.T) {
	s := New(testRankingConfig())
	item := withDistance("SFMOMA Art Museum Gallery Night", "a", 2)
	item.Description = "modern art and culture at the museum gallery"
	item.Category = models.CategoryMuseums

	none := s.Score(&item, models.Preferences{})
	expanded := s.Score(&item, models.Preferences{Interests: []string{"arts_culture", "food_drink"}})
	assert.Equal(t, none+25, expanded)
}

func TestScoreFamilyBonuses(t *testing.T) {
	s := New(testRankingConfig())
	item := withDistance("Zoo Day", "a", 2)
	item.KidFriendly = true

	base := s.Score(&item, models.Preferences{})
	family := s.Score(&item, models.Preferences{GroupType: models.GroupFamily})
	interest := s.Score(&item, models.Preferences{Interests: []string{"family"}})
	assert.Equal(t, base+15, family)
	assert.Equal(t, base+10, interest)
}

func TestScoreFreeEventAndRating(t *testing.T) {
	s := New(testRankingConfig())

	item := withDistance("Street Fair", "a", 2)
	item.PriceFlag = models.PriceFree
	item.EventDate = "2026-10-01"
	item.Rating = 4.0

	// 50 + 30 + 15 + 5 free + 5 event + 20 rating
	assert.Equal(t, 125.0, s.Score(&item, models.Preferences{}))
}

func TestSelectTopKDiversityCap(t *testing.T) {
	s := New(testRankingConfig())

	// Source "loud" has 12 high scoring items; "quiet" has 6 lower ones.
	var items []models.Recommendation
	for i := 0; i < 12; i++ {
		it := withDistance(fmt.Sprintf("loud-%d", i), "loud", 2)
		it.Rating = 5
		items = append(items, it)
	}
	for i := 0; i < 6; i++ {
		items = append(items, withDistance(fmt.Sprintf("quiet-%d", i), "quiet", 8))
	}

	out := s.SelectTopK(items, models.Preferences{}, 15)
	require.Len(t, out, 15)

	counts := map[string]int{}
	for _, it := range out {
		counts[it.FeedSource]++
	}
	// Cap is max(4, 15/3) = 5 per source in the first pass; the second
	// pass tops up from the higher scoring skipped items to reach K.
	assert.Equal(t, 5, counts["quiet"])
	assert.Equal(t, 10, counts["loud"])
}

func TestSelectTopKFirstPassHonorsCap(t *testing.T) {
	s := New(testRankingConfig())

	var items []models.Recommendation
	for i := 0; i < 10; i++ {
		items = append(items, withDistance(fmt.Sprintf("a-%d", i), "a", 2))
	}
	for i := 0; i < 10; i++ {
		items = append(items, withDistance(fmt.Sprintf("b-%d", i), "b", 2))
	}

	out := s.SelectTopK(items, models.Preferences{}, 10)
	require.Len(t, out, 10)

	counts := map[string]int{}
	for _, it := range out {
		counts[it.FeedSource]++
	}
	// Pool is deep enough that the first pass alone fills K; no source
	// may exceed the cap of max(4, 10/3) = 4... topped to K via pass two.
	assert.LessOrEqual(t, counts["a"], 6)
	assert.LessOrEqual(t, counts["b"], 6)
}

func TestSelectTopKSmallPool(t *testing.T) {
	s := New(testRankingConfig())
	items := []models.Recommendation{withDistance("only", "a", 2)}
	out := s.SelectTopK(items, models.Preferences{}, 10)
	assert.Len(t, out, 1, "pool exhaustion returns fewer than K")
	assert.Nil(t, s.SelectTopK(nil, models.Preferences{}, 10))
}
