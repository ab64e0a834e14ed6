// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package store provides the durable collaborators the engine depends on:
// the secondary recommendation cache, visited and recently-recommended
// history, and stored preferences.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

// ErrNotFound is returned when a read targets a missing key.
var ErrNotFound = errors.New("store: not found")

// RecommendationCache is the durable secondary cache, independent of the
// in-memory warm cache. Entries carry an explicit expiry.
type RecommendationCache interface {
	Persist(ctx context.Context, userID, cacheKey string, items []models.Recommendation, expiresAt time.Time) error
	// Read returns the cached items, or ErrNotFound when absent or
	// expired.
	Read(ctx context.Context, userID, cacheKey string) ([]models.Recommendation, error)
}

// HistoryStore feeds the dedup filter and records what was served.
type HistoryStore interface {
	VisitedList(ctx context.Context, userID string) ([]models.VisitedPlace, error)
	AddVisited(ctx context.Context, userID string, visit models.VisitedPlace) error
	RecentRecommendations(ctx context.Context, userID string) ([]models.RecentRecommendation, error)
	// AddRecentRecommendation is called once per returned item to feed
	// future dedup.
	AddRecentRecommendation(ctx context.Context, userID string, rec models.RecentRecommendation) error
}

// PreferenceStore holds each user's stored preference set.
type PreferenceStore interface {
	Preferences(ctx context.Context, userID string) (models.Preferences, error)
	SetPreferences(ctx context.Context, userID string, prefs models.Preferences) error
}
