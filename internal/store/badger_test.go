// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

func testStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(config.DatabaseConfig{InMemory: true, GCDiscardRatio: 0.5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecommendationCacheRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	items := []models.Recommendation{
		{RecID: "r1", PlaceID: "p1", Title: "Exploratorium", FeedSource: "Google Places"},
		{RecID: "r2", PlaceID: "p2", Title: "Lands End Trail", FeedSource: "OpenStreetMap"},
	}

	require.NoError(t, s.Persist(ctx, "alice", "key1", items, time.Now().Add(time.Hour)))

	got, err := s.Read(ctx, "alice", "key1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Exploratorium", got[0].Title)
	assert.Equal(t, "r2", got[1].RecID)
}

func TestRecommendationCacheMiss(t *testing.T) {
	s := testStore(t)

	_, err := s.Read(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationCacheExpired(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	items := []models.Recommendation{{RecID: "r1", PlaceID: "p1", Title: "Old"}}
	require.NoError(t, s.Persist(ctx, "alice", "key1", items, time.Now().Add(-time.Minute)))

	_, err := s.Read(ctx, "alice", "key1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationCacheKeyIsolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Persist(ctx, "alice", "k1",
		[]models.Recommendation{{RecID: "a", Title: "A"}}, time.Now().Add(time.Hour)))
	require.NoError(t, s.Persist(ctx, "bob", "k1",
		[]models.Recommendation{{RecID: "b", Title: "B"}}, time.Now().Add(time.Hour)))

	got, err := s.Read(ctx, "alice", "k1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].RecID)
}

func TestVisitedHistory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddVisited(ctx, "alice", models.VisitedPlace{
		PlaceID:   "p1",
		VisitedAt: time.Now().Add(-24 * time.Hour),
	}))
	require.NoError(t, s.AddVisited(ctx, "alice", models.VisitedPlace{
		PlaceID:   "p2",
		VisitedAt: time.Now(),
	}))

	visits, err := s.VisitedList(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, visits, 2)

	// Re-visiting the same place overwrites rather than duplicates.
	require.NoError(t, s.AddVisited(ctx, "alice", models.VisitedPlace{
		PlaceID:   "p1",
		VisitedAt: time.Now(),
	}))
	visits, err = s.VisitedList(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, visits, 2)

	other, err := s.VisitedList(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecentRecommendations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := models.RecentRecommendation{
		PlaceID:       "p1",
		RecID:         "golden_gate_park_2026-W36_0",
		Week:          "2026-W36",
		RecommendedAt: time.Now(),
	}
	require.NoError(t, s.AddRecentRecommendation(ctx, "alice", rec))

	recents, err := s.RecentRecommendations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recents, 1)
	assert.Equal(t, "p1", recents[0].PlaceID)
	assert.Equal(t, "2026-W36", recents[0].Week)
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Preferences(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	prefs := models.Preferences{
		Categories:    []models.Category{models.CategoryParks, models.CategoryMuseums},
		KidFriendly:   true,
		Budget:        models.BudgetLow,
		TravelBuckets: []models.TravelBucket{models.Travel0to15, models.Travel15to30},
		Interests:     []string{"hiking", "art"},
		GroupType:     models.GroupFamily,
	}
	require.NoError(t, s.SetPreferences(ctx, "alice", prefs))

	got, err := s.Preferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, prefs, got)
}

func TestSweepExpired(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Persist(ctx, "alice", "live",
		[]models.Recommendation{{RecID: "a"}}, time.Now().Add(time.Hour)))
	// Expiry in the past but TTL unset, so only the sweeper removes it.
	require.NoError(t, s.Persist(ctx, "alice", "dead",
		[]models.Recommendation{{RecID: "b"}}, time.Now().Add(-time.Minute)))

	removed, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Read(ctx, "alice", "live")
	assert.NoError(t, err)
}
