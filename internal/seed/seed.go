// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package seed holds the built-in fallback dataset served when every live
// source and cache layer has failed. The places are well-known, evergreen
// San Francisco destinations so a response is never empty.
package seed

import (
	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

type place struct {
	id          string
	title       string
	description string
	category    models.Category
	price       models.PriceFlag
	kidFriendly bool
	outdoor     bool
	rating      float64
	lat, lng    float64
}

var places = []place{
	{
		id:          "seed_golden_gate_park",
		title:       "Golden Gate Park",
		description: "Sprawling urban park with gardens, museums, lakes, and miles of trails.",
		category:    models.CategoryParks,
		price:       models.PriceFree,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.8,
		lat:         37.7694, lng: -122.4862,
	},
	{
		id:          "seed_exploratorium",
		title:       "Exploratorium",
		description: "Hands-on science museum on the Embarcadero with hundreds of interactive exhibits.",
		category:    models.CategoryMuseums,
		price:       models.PriceModerate,
		kidFriendly: true,
		rating:      4.7,
		lat:         37.8017, lng: -122.3973,
	},
	{
		id:          "seed_alcatraz",
		title:       "Alcatraz Island",
		description: "Historic island prison reachable by ferry, with audio tours and bay views.",
		category:    models.CategoryAttractions,
		price:       models.PriceModerate,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.7,
		lat:         37.8270, lng: -122.4230,
	},
	{
		id:          "seed_lands_end",
		title:       "Lands End Trail",
		description: "Coastal hiking trail with Golden Gate Bridge views and the Sutro Baths ruins.",
		category:    models.CategoryNature,
		price:       models.PriceFree,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.9,
		lat:         37.7827, lng: -122.5064,
	},
	{
		id:          "seed_cal_academy",
		title:       "California Academy of Sciences",
		description: "Aquarium, planetarium, rainforest dome, and natural history museum under one living roof.",
		category:    models.CategoryMuseums,
		price:       models.PricePricey,
		kidFriendly: true,
		rating:      4.6,
		lat:         37.7699, lng: -122.4661,
	},
	{
		id:          "seed_fishermans_wharf",
		title:       "Fisherman's Wharf",
		description: "Waterfront district with sea lions at Pier 39, seafood stands, and street performers.",
		category:    models.CategoryAttractions,
		price:       models.PriceFree,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.3,
		lat:         37.8080, lng: -122.4177,
	},
	{
		id:          "seed_twin_peaks",
		title:       "Twin Peaks",
		description: "Panoramic overlook of the whole city, best around sunset.",
		category:    models.CategoryNature,
		price:       models.PriceFree,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.8,
		lat:         37.7544, lng: -122.4477,
	},
	{
		id:          "seed_sfmoma",
		title:       "SFMOMA",
		description: "Seven floors of modern and contemporary art in the heart of SoMa.",
		category:    models.CategoryArts,
		price:       models.PriceModerate,
		rating:      4.6,
		lat:         37.7857, lng: -122.4011,
	},
	{
		id:          "seed_baker_beach",
		title:       "Baker Beach",
		description: "Sandy beach below the Presidio cliffs with a straight shot view of the Golden Gate.",
		category:    models.CategoryParks,
		price:       models.PriceFree,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.7,
		lat:         37.7936, lng: -122.4833,
	},
	{
		id:          "seed_japanese_tea_garden",
		title:       "Japanese Tea Garden",
		description: "Oldest public Japanese garden in the US, with koi ponds, pagodas, and a tea house.",
		category:    models.CategoryParks,
		price:       models.PriceCheap,
		kidFriendly: true,
		outdoor:     true,
		rating:      4.5,
		lat:         37.7702, lng: -122.4702,
	},
}

// Recommendations builds the fallback set, with distances computed from the
// user's position. Always returns every seed place; the caller truncates.
func Recommendations(lat, lng, avgSpeedMPH float64) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(places))
	for _, p := range places {
		rec := models.Recommendation{
			PlaceID:     p.id,
			Title:       p.title,
			Description: p.description,
			Category:    p.category,
			PriceFlag:   p.price,
			KidFriendly: p.kidFriendly,
			Rating:      p.rating,
			FeedSource:  "Built-in",
		}
		if p.outdoor {
			rec.IndoorOutdoor = "outdoor"
		}
		if lat != 0 || lng != 0 {
			miles := geo.Haversine(lat, lng, p.lat, p.lng)
			rec.SetDistance(miles, geo.TravelMinutes(miles, avgSpeedMPH), models.TierExact)
		} else {
			rec.ClearDistance()
		}
		out = append(out, rec)
	}
	return out
}
