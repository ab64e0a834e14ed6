// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package normalize converts raw source items into canonical
// recommendations, resolving each item's distance through the tiered
// geocoding policy.
package normalize

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math"

	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Normalizer converts RawItems into Recommendations. Geocoding failures
// downgrade the item to the n/a tier; they never abort the batch.
type Normalizer struct {
	geocode  geo.GeocodeFunc
	avgSpeed float64
	log      zerolog.Logger
}

// New builds a Normalizer around the geocode collaborator.
func New(geocode geo.GeocodeFunc, avgSpeedMPH float64) *Normalizer {
	return &Normalizer{
		geocode:  geocode,
		avgSpeed: avgSpeedMPH,
		log:      logging.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize converts one raw item. Distance resolution precedence:
//  1. Explicit numeric distance or travel time on the item: trusted
//     verbatim, tier exact, no geocoding.
//  2. Provider coordinates on the item: haversine from the user, tier
//     exact.
//  3. Location-string classification: none skips geocoding (tier n/a);
//     city-only geocodes to a city-center proxy (tier estimated); venue or
//     address strings get the user's region hint appended when they lack
//     one and geocode to tier exact. Any geocode failure lands on n/a.
func (n *Normalizer) Normalize(ctx context.Context, raw models.RawItem, userLat, userLng float64, regionHint string) models.Recommendation {
	rec := models.Recommendation{
		Title:         raw.Title,
		Category:      raw.Category,
		Description:   raw.Description,
		PriceFlag:     raw.Price,
		Rating:        raw.Rating,
		TotalRatings:  raw.TotalRatings,
		PhotoURL:      raw.PhotoURL,
		IndoorOutdoor: raw.IndoorOutdoor,
		FeedSource:    raw.Source,
		SourceURL:     raw.Link,
		EventDate:     raw.EventDate,
		GooglePlace:   raw.Source == "Google Places",
		PlaceID:       placeID(raw),
	}
	if raw.KidFriendly != nil {
		rec.KidFriendly = *raw.KidFriendly
	}
	if raw.EventDate != "" {
		rec.EventLink = raw.Link
	}

	// Every recommendation carries a category and price flag even when
	// the source supplied neither.
	if rec.Category == "" {
		rec.Category = models.CategoryAttractions
	}
	if rec.PriceFlag == "" {
		rec.PriceFlag = models.PriceCheap
	}

	n.resolveDistance(ctx, &rec, raw, userLat, userLng, regionHint)
	return rec
}

func (n *Normalizer) resolveDistance(ctx context.Context, rec *models.Recommendation, raw models.RawItem, userLat, userLng float64, regionHint string) {
	// Tier 1: explicit hints are trusted verbatim.
	if raw.DistanceMiles != nil || raw.TravelTimeMin != nil {
		miles, minutes := n.fillHints(raw.DistanceMiles, raw.TravelTimeMin)
		rec.SetDistance(miles, minutes, models.TierExact)
		return
	}

	// Tier 2: provider coordinates skip geocoding.
	if raw.Lat != 0 || raw.Lng != 0 {
		miles := geo.Haversine(userLat, userLng, raw.Lat, raw.Lng)
		rec.SetDistance(miles, geo.TravelMinutes(miles, n.avgSpeed), models.TierExact)
		return
	}

	location := geo.CleanLocation(raw.Location)
	switch geo.Classify(location) {
	case geo.LocationNone:
		rec.ClearDistance()

	case geo.LocationCityOnly:
		lat, lng, ok := n.geocode(ctx, location)
		if !ok {
			rec.ClearDistance()
			return
		}
		miles := geo.Haversine(userLat, userLng, lat, lng)
		rec.SetDistance(miles, geo.TravelMinutes(miles, n.avgSpeed), models.TierEstimated)

	default: // venue or specific address
		lat, lng, ok := n.geocode(ctx, geo.AppendRegionHint(location, regionHint))
		if !ok {
			rec.ClearDistance()
			return
		}
		miles := geo.Haversine(userLat, userLng, lat, lng)
		rec.SetDistance(miles, geo.TravelMinutes(miles, n.avgSpeed), models.TierExact)
	}
}

// fillHints completes a half-specified hint pair: distance implies travel
// time at the average speed and vice versa.
func (n *Normalizer) fillHints(distance *float64, travel *int) (float64, int) {
	switch {
	case distance != nil && travel != nil:
		return *distance, *travel
	case distance != nil:
		return *distance, geo.TravelMinutes(*distance, n.avgSpeed)
	default:
		speed := n.avgSpeed
		if speed <= 0 {
			speed = geo.DefaultAvgSpeedMPH
		}
		return math.Round(float64(*travel)/60*speed*10) / 10, *travel
	}
}

// placeID returns the provider's stable id, or a content hash of link and
// title for feed items without one.
func placeID(raw models.RawItem) string {
	if raw.ExternalID != "" {
		return raw.ExternalID
	}
	sum := md5.Sum([]byte(raw.Link + "|" + raw.Title))
	return "feed_" + hex.EncodeToString(sum[:])[:12]
}

// Batch normalizes raw items up to the limit, dropping empty titles.
func (n *Normalizer) Batch(ctx context.Context, raws []models.RawItem, userLat, userLng float64, regionHint string, limit int) []models.Recommendation {
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	out := make([]models.Recommendation, 0, len(raws))
	for _, raw := range raws {
		if raw.Title == "" {
			continue
		}
		out = append(out, n.Normalize(ctx, raw, userLat, userLng, regionHint))
	}
	return out
}
