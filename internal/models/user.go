// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package models

import "time"

// BudgetTier is the user's spend preference, mapped to a price-flag
// allow-list by the filter layer.
type BudgetTier string

const (
	BudgetFree     BudgetTier = "free"
	BudgetLow      BudgetTier = "low"
	BudgetModerate BudgetTier = "moderate"
	BudgetAny      BudgetTier = "any"
)

// GroupType describes who the user is planning for. It drives the
// group-appropriateness filter and the family kid-friendly bonus.
type GroupType string

const (
	GroupFamily  GroupType = "family"
	GroupCouple  GroupType = "couple"
	GroupSolo    GroupType = "solo"
	GroupFriends GroupType = "friends"
)

// TravelBucket is a user-selected travel-time band.
type TravelBucket string

const (
	Travel0to15  TravelBucket = "0-15"
	Travel15to30 TravelBucket = "15-30"
	Travel30to60 TravelBucket = "30-60"
	Travel60Plus TravelBucket = "60+"
)

// Preferences is the user's stored recommendation preference set.
type Preferences struct {
	Categories    []Category     `json:"categories"`
	KidFriendly   bool           `json:"kid_friendly"`
	Budget        BudgetTier     `json:"budget"`
	TravelBuckets []TravelBucket `json:"travel_buckets"`
	Interests     []string       `json:"interests"`
	GroupType     GroupType      `json:"group_type"`
	EnergyLevel   string         `json:"energy_level,omitempty"`
	// Location is the user's free-text home location (address, city, or
	// "lat,lng"); resolved to coordinates before fetching.
	Location string `json:"location"`
}

// VisitedPlace is one entry of the user's visited history.
type VisitedPlace struct {
	PlaceID   string    `json:"place_id"`
	VisitedAt time.Time `json:"visited_at"`
}

// RecentRecommendation is one entry of the recently-recommended history,
// scoped to a week bucket for dedup.
type RecentRecommendation struct {
	PlaceID       string    `json:"place_id"`
	RecID         string    `json:"rec_id"`
	Week          string    `json:"week"`
	RecommendedAt time.Time `json:"recommended_at"`
}

// UserContext carries everything the engine needs about the requesting
// user: identity, resolved coordinates, preferences, and dedup history.
// It is read-only from the engine's perspective.
type UserContext struct {
	UserID string `json:"user_id"`
	// Lat/Lng are the user's resolved home coordinates.
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// LocationString is the raw location the coordinates were resolved
	// from; it participates in the warm cache key.
	LocationString string `json:"location_string"`

	Preferences Preferences            `json:"preferences"`
	Visited     []VisitedPlace         `json:"visited"`
	Recent      []RecentRecommendation `json:"recent"`
}
