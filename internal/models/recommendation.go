// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package models defines the canonical data model shared by the fetchers,
// normalizer, filters, ranker, and cache layer.
package models

import (
	"fmt"
	"math"
	"time"
)

// DistanceTier is the confidence level of a recommendation's geocoded
// distance. Only exact and estimated items participate in radius and travel
// filtering; n/a items bypass those filters and are scored lower.
type DistanceTier string

const (
	// TierExact means the item was geocoded from a specific address or
	// carried explicit numeric distance data.
	TierExact DistanceTier = "exact"
	// TierEstimated means the distance is a city-center proxy, not the venue.
	TierEstimated DistanceTier = "estimated"
	// TierNA means no location was available or geocoding failed.
	TierNA DistanceTier = "n/a"
)

// Filterable reports whether the tier carries distance data usable for
// radius and travel-time filtering.
func (t DistanceTier) Filterable() bool {
	return t == TierExact || t == TierEstimated
}

// PriceFlag is the canonical price bucket.
type PriceFlag string

const (
	PriceFree     PriceFlag = "free"
	PriceCheap    PriceFlag = "$"
	PriceModerate PriceFlag = "$$"
	PricePricey   PriceFlag = "$$$"
	PriceLuxury   PriceFlag = "$$$$"
)

// PriceFlagFromLevel maps a numeric provider price level (0-4) to a flag.
func PriceFlagFromLevel(level int) PriceFlag {
	switch level {
	case 0:
		return PriceFree
	case 1:
		return PriceCheap
	case 2:
		return PriceModerate
	case 3:
		return PricePricey
	case 4:
		return PriceLuxury
	default:
		return PriceCheap
	}
}

// Category is the fixed taxonomy every source maps into.
type Category string

const (
	CategoryParks         Category = "parks"
	CategoryMuseums       Category = "museums"
	CategoryFood          Category = "food"
	CategoryAttractions   Category = "attractions"
	CategoryEvents        Category = "events"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryNature        Category = "nature"
	CategoryFamily        Category = "family"
	CategorySports        Category = "sports"
	CategoryArts          Category = "arts"
	CategoryCommunity     Category = "community"
)

// Categories lists the full taxonomy in display order.
var Categories = []Category{
	CategoryParks, CategoryMuseums, CategoryFood, CategoryAttractions,
	CategoryEvents, CategoryShopping, CategoryEntertainment, CategoryNature,
	CategoryFamily, CategorySports, CategoryArts, CategoryCommunity,
}

// RawItem is the producer-specific transient shape every fetcher emits.
// Optional fields are pointers so "absent" is distinguishable from zero.
type RawItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	// Location is the raw location string: an address, venue name, city,
	// or empty when the source carried none.
	Location string `json:"location"`
	// Source is the fetcher's display label, e.g. "Yelp" or "Eventbrite".
	Source string `json:"source"`

	// Explicit hints from sources that already know distance. When present
	// they are trusted verbatim and geocoding is skipped.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	TravelTimeMin *int     `json:"travel_time_min,omitempty"`

	Price       PriceFlag `json:"price,omitempty"`
	KidFriendly *bool     `json:"kid_friendly,omitempty"`
	// EventDate is an ISO date (2006-01-02) or RFC 3339 timestamp, empty
	// for non-event items.
	EventDate string `json:"event_date,omitempty"`
	EventTime string `json:"event_time,omitempty"`
	// ExternalID is the provider's stable id when it has one; feed items
	// without one get a content hash during normalization.
	ExternalID string `json:"external_id,omitempty"`

	Category      Category `json:"category,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	TotalRatings  int      `json:"total_ratings,omitempty"`
	PhotoURL      string   `json:"photo_url,omitempty"`
	IndoorOutdoor string   `json:"indoor_outdoor,omitempty"`
	// Lat/Lng are set by sources that return coordinates directly
	// (Google Places, Overpass, NPS); zero values mean unknown.
	Lat float64 `json:"lat,omitempty"`
	Lng float64 `json:"lng,omitempty"`
}

// Recommendation is the canonical output unit.
type Recommendation struct {
	RecID   string `json:"rec_id"`
	PlaceID string `json:"place_id"`

	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Explanation string   `json:"explanation,omitempty"`
	Description string   `json:"description,omitempty"`

	// DistanceMiles and TravelTimeMin are both set or both nil, matching
	// the resolution tier.
	DistanceMiles   *float64     `json:"distance_miles"`
	TravelTimeMin   *int         `json:"travel_time_min"`
	Tier            DistanceTier `json:"distance_tier"`
	DistanceDisplay string       `json:"distance_display"`

	PriceFlag     PriceFlag `json:"price_flag"`
	KidFriendly   bool      `json:"kid_friendly"`
	IndoorOutdoor string    `json:"indoor_outdoor,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	TotalRatings  int       `json:"total_ratings,omitempty"`
	PhotoURL      string    `json:"photo_url,omitempty"`

	FeedSource  string `json:"feed_source"`
	SourceURL   string `json:"source_url,omitempty"`
	EventLink   string `json:"event_link,omitempty"`
	GooglePlace bool   `json:"google_place"`

	EventDate string `json:"event_date,omitempty"`
}

// HasDistance reports whether the recommendation carries resolved distance
// data.
func (r *Recommendation) HasDistance() bool {
	return r.DistanceMiles != nil && r.TravelTimeMin != nil
}

// SetDistance populates distance, travel time, tier, and the display string
// together so the tier invariant cannot be violated piecemeal.
func (r *Recommendation) SetDistance(miles float64, minutes int, tier DistanceTier) {
	if !tier.Filterable() {
		r.ClearDistance()
		return
	}
	m := math.Round(miles*10) / 10
	r.DistanceMiles = &m
	r.TravelTimeMin = &minutes
	r.Tier = tier
	if tier == TierEstimated {
		r.DistanceDisplay = fmt.Sprintf("~%.1f mi (estimated)", m)
	} else {
		r.DistanceDisplay = fmt.Sprintf("%.1f mi", m)
	}
}

// ClearDistance marks the recommendation as having no verifiable location.
func (r *Recommendation) ClearDistance() {
	r.DistanceMiles = nil
	r.TravelTimeMin = nil
	r.Tier = TierNA
	r.DistanceDisplay = "n/a"
}

// Validate checks the structural invariants: category and price flag are
// always set, and distance and travel time are populated together or not at
// all, consistently with the tier.
func (r *Recommendation) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("recommendation %q: empty category", r.Title)
	}
	if r.PriceFlag == "" {
		return fmt.Errorf("recommendation %q: empty price flag", r.Title)
	}
	if (r.DistanceMiles == nil) != (r.TravelTimeMin == nil) {
		return fmt.Errorf("recommendation %q: distance and travel time must be set together", r.Title)
	}
	if r.HasDistance() != r.Tier.Filterable() {
		return fmt.Errorf("recommendation %q: tier %s inconsistent with distance presence", r.Title, r.Tier)
	}
	return nil
}

// WeekBucket formats t's ISO week as "2026-W35", the bucket rec IDs and the
// recent-recommendation history are scoped to.
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
