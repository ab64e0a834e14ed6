// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

func testFilter() *Filter {
	return New(Options{
		DedupWindowDays: 365,
		RecentWeeks:     4,
		AvgSpeedMPH:     25,
		MinRadiusMiles:  3,
		RelaxFactor:     1.5,
	})
}

// rec builds a recommendation with a resolved distance.
func rec(placeID, title string, category models.Category, miles float64, price models.PriceFlag, kid bool) models.Recommendation {
	r := models.Recommendation{
		PlaceID:     placeID,
		Title:       title,
		Category:    category,
		PriceFlag:   price,
		KidFriendly: kid,
		FeedSource:  "test",
	}
	minutes := int(miles / 25 * 60)
	if minutes < 5 {
		minutes = 5
	}
	r.SetDistance(miles, minutes, models.TierExact)
	return r
}

// naRec builds a recommendation with no verifiable location.
func naRec(placeID, title string, category models.Category) models.Recommendation {
	r := models.Recommendation{
		PlaceID:    placeID,
		Title:      title,
		Category:   category,
		PriceFlag:  models.PriceCheap,
		FeedSource: "test",
	}
	r.ClearDistance()
	return r
}

func TestHistoryPlaceIDs(t *testing.T) {
	f := testFilter()
	now := time.Now()
	user := &models.UserContext{
		Visited: []models.VisitedPlace{
			{PlaceID: "recent-visit", VisitedAt: now.AddDate(0, 0, -30)},
			{PlaceID: "old-visit", VisitedAt: now.AddDate(0, 0, -400)},
		},
		Recent: []models.RecentRecommendation{
			{PlaceID: "recent-rec", RecommendedAt: now.AddDate(0, 0, -7)},
			{PlaceID: "old-rec", RecommendedAt: now.AddDate(0, 0, -60)},
		},
	}

	history := f.HistoryPlaceIDs(user, now)
	assert.Contains(t, history, "recent-visit")
	assert.Contains(t, history, "recent-rec")
	assert.NotContains(t, history, "old-visit", "outside the 365 day window")
	assert.NotContains(t, history, "old-rec", "outside the 4 week window")
}

func TestDedupIdempotent(t *testing.T) {
	f := testFilter()
	items := []models.Recommendation{
		rec("a", "A", models.CategoryParks, 2, models.PriceFree, true),
		rec("b", "B", models.CategoryParks, 3, models.PriceFree, true),
		rec("c", "C", models.CategoryParks, 4, models.PriceFree, true),
	}
	history := map[string]struct{}{"b": {}}

	once := f.Dedup(items, history)
	twice := f.Dedup(once, history)
	require.Len(t, once, 2)
	assert.Equal(t, once, twice, "dedup must be idempotent")
}

func TestApplyCategoryKidBudget(t *testing.T) {
	f := testFilter()
	now := time.Now()
	items := []models.Recommendation{
		rec("park", "City Park", models.CategoryParks, 2, models.PriceFree, true),
		rec("museum", "Art Museum", models.CategoryMuseums, 2, models.PriceModerate, false),
		rec("bar", "Wine Bar", models.CategoryFood, 2, models.PricePricey, false),
	}

	out := f.Apply(items, models.Preferences{
		Categories:  []models.Category{models.CategoryParks},
		KidFriendly: true,
		Budget:      models.BudgetFree,
	}, now)

	require.Len(t, out, 1)
	assert.Equal(t, "park", out[0].PlaceID)
}

func TestApplyTravelCeilingsAndNABypass(t *testing.T) {
	f := testFilter()
	now := time.Now()
	items := []models.Recommendation{
		rec("near", "Near Park", models.CategoryParks, 2, models.PriceFree, false),
		rec("far", "Far Park", models.CategoryParks, 40, models.PriceFree, false),
		naRec("unknown", "Park With No Location", models.CategoryParks),
	}

	out := f.Apply(items, models.Preferences{
		TravelBuckets: []models.TravelBucket{models.Travel0to15},
	}, now)

	ids := placeIDs(out)
	assert.Contains(t, ids, "near")
	assert.NotContains(t, ids, "far")
	assert.Contains(t, ids, "unknown", "n/a tier bypasses the travel filter")
}

func TestApplyPastEventDropped(t *testing.T) {
	f := testFilter()
	now := time.Now()

	past := rec("past", "Last Month Fair", models.CategoryEvents, 2, models.PriceFree, false)
	past.EventDate = now.AddDate(0, -1, 0).Format("2006-01-02")
	future := rec("future", "Next Month Fair", models.CategoryEvents, 2, models.PriceFree, false)
	future.EventDate = now.AddDate(0, 1, 0).Format("2006-01-02")
	undated := rec("undated", "Garbled Date Fair", models.CategoryEvents, 2, models.PriceFree, false)
	undated.EventDate = "soonish"

	out := f.Apply([]models.Recommendation{past, future, undated}, models.Preferences{}, now)
	ids := placeIDs(out)
	assert.NotContains(t, ids, "past")
	assert.Contains(t, ids, "future")
	assert.Contains(t, ids, "undated", "unparseable dates are kept")
}

func TestRelaxationMonotonicity(t *testing.T) {
	f := testFilter()
	now := time.Now()
	// Strict ceilings for 0-15 are 15 min / 6.25 mi; this item sits
	// between strict and relaxed (6.25 * 1.5 = 9.375 mi).
	items := []models.Recommendation{
		rec("between", "Trailhead", models.CategoryNature, 8, models.PriceFree, false),
	}
	prefs := models.Preferences{
		Categories:    []models.Category{models.CategoryParks},
		TravelBuckets: []models.TravelBucket{models.Travel0to15},
	}

	strict := f.Apply(items, prefs, now)
	relaxed, pass := f.ApplyWithRelaxation(items, prefs, now)
	assert.Empty(t, strict)
	assert.GreaterOrEqual(t, len(relaxed), len(strict), "relaxed pass never returns fewer items")
	assert.Equal(t, "relaxed", pass)
}

func TestRelaxationClosestFallback(t *testing.T) {
	f := testFilter()
	now := time.Now()
	items := []models.Recommendation{
		naRec("nowhere", "Unplaceable", models.CategoryEvents),
		rec("far", "Distant Park", models.CategoryParks, 200, models.PricePricey, false),
		rec("farther", "Remoter Park", models.CategoryParks, 300, models.PricePricey, false),
	}
	prefs := models.Preferences{
		Budget:        models.BudgetFree,
		TravelBuckets: []models.TravelBucket{models.Travel0to15},
	}

	out, pass := f.ApplyWithRelaxation(items, prefs, now)
	assert.Equal(t, "closest", pass)
	require.Len(t, out, 3)
	assert.Equal(t, "far", out[0].PlaceID, "sorted by distance ascending")
	assert.Equal(t, "nowhere", out[2].PlaceID, "items without distance sort last")
}

func TestGroupInappropriate(t *testing.T) {
	tests := []struct {
		text       string
		group      models.GroupType
		suppressed bool
	}{
		{"Singles Mixer Downtown", models.GroupFamily, true},
		{"21+ Comedy Night", models.GroupFamily, true},
		{"B2B Networking Breakfast", models.GroupFamily, true},
		{"Toddler Storytime", models.GroupCouple, true},
		{"Toddler Storytime", models.GroupSolo, true},
		{"Wine Tasting at the Vineyard", models.GroupFamily, true},
		{"Wine Tasting at the Vineyard", models.GroupFriends, false},
		{"Brewery Tour and Flight", models.GroupFamily, true},
		{"Startup Pitch Night", models.GroupFamily, true},
		{"Journaling Workshop for Beginners", models.GroupFamily, true},
		{"Journaling Workshop for Beginners", models.GroupSolo, false},
		{"Toddler Storytime", models.GroupFamily, false},
		{"Farmers Market", models.GroupFamily, false},
		{"Anything Goes", models.GroupType("unknown"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.suppressed, GroupInappropriate(tt.text, tt.group),
			"text %q group %s", tt.text, tt.group)
	}
}

func TestBudgetAllowList(t *testing.T) {
	assert.Equal(t, []models.PriceFlag{models.PriceFree}, BudgetAllowList(models.BudgetFree))
	assert.Len(t, BudgetAllowList(models.BudgetLow), 2)
	assert.Len(t, BudgetAllowList(models.BudgetModerate), 3)
	assert.Len(t, BudgetAllowList(models.BudgetAny), 5)
	// Unset budget gets the default allow-list up to $$$.
	assert.Len(t, BudgetAllowList(models.BudgetTier("")), 4)
}

func placeIDs(items []models.Recommendation) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PlaceID)
	}
	return ids
}
