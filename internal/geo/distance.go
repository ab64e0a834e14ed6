// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package geo provides distance math, travel-time estimation,
// location-string classification, and geocoding.
package geo

import (
	"math"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

// earthRadiusMiles is the mean Earth radius in statute miles.
const earthRadiusMiles = 3959.0

// DefaultAvgSpeedMPH is the fixed average travel speed used to derive
// travel time from distance. A deliberate simplification standing in for a
// real routing engine.
const DefaultAvgSpeedMPH = 25.0

// Haversine returns the great-circle distance between two coordinates in
// miles.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// TravelMinutes estimates door-to-door travel time for a distance at the
// given average speed, with a 5-minute floor.
func TravelMinutes(distanceMiles, avgSpeedMPH float64) int {
	if avgSpeedMPH <= 0 {
		avgSpeedMPH = DefaultAvgSpeedMPH
	}
	minutes := int(math.Round(distanceMiles / avgSpeedMPH * 60))
	if minutes < 5 {
		minutes = 5
	}
	return minutes
}

// BucketCeilingMinutes converts a travel bucket to its max-minutes ceiling.
// Unknown buckets get the 30-minute default.
func BucketCeilingMinutes(bucket models.TravelBucket) int {
	switch bucket {
	case models.Travel0to15:
		return 15
	case models.Travel15to30:
		return 30
	case models.Travel30to60:
		return 60
	case models.Travel60Plus:
		return 90
	default:
		return 30
	}
}

// MaxTravelMinutes returns the largest ceiling across the user's selected
// buckets, defaulting to 30 when none are selected.
func MaxTravelMinutes(buckets []models.TravelBucket) int {
	if len(buckets) == 0 {
		return 30
	}
	maxMin := 0
	for _, b := range buckets {
		if c := BucketCeilingMinutes(b); c > maxMin {
			maxMin = c
		}
	}
	return maxMin
}

// RadiusMiles converts a minutes ceiling to a search radius at the given
// speed, floored at minRadius miles.
func RadiusMiles(maxMinutes int, avgSpeedMPH, minRadius float64) float64 {
	if avgSpeedMPH <= 0 {
		avgSpeedMPH = DefaultAvgSpeedMPH
	}
	r := float64(maxMinutes) / 60 * avgSpeedMPH
	if r < minRadius {
		return minRadius
	}
	return r
}
