// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Fixed lookup tables mapping provider-specific taxonomy into the canonical
// category set. Unmapped values fall back to a generic bucket.

// googleTypeCategory maps Google place types to categories.
var googleTypeCategory = map[string]models.Category{
	"park":               models.CategoryParks,
	"campground":         models.CategoryNature,
	"natural_feature":    models.CategoryNature,
	"museum":             models.CategoryMuseums,
	"art_gallery":        models.CategoryArts,
	"restaurant":         models.CategoryFood,
	"cafe":               models.CategoryFood,
	"bakery":             models.CategoryFood,
	"bar":                models.CategoryFood,
	"amusement_park":     models.CategoryAttractions,
	"zoo":                models.CategoryAttractions,
	"aquarium":           models.CategoryAttractions,
	"tourist_attraction": models.CategoryAttractions,
	"shopping_mall":      models.CategoryShopping,
	"book_store":         models.CategoryShopping,
	"movie_theater":      models.CategoryEntertainment,
	"bowling_alley":      models.CategoryEntertainment,
	"night_club":         models.CategoryEntertainment,
	"stadium":            models.CategorySports,
	"gym":                models.CategorySports,
	"library":            models.CategoryCommunity,
	"church":             models.CategoryCommunity,
}

// categoryGoogleType is the inverse direction: which place type to request
// when the user filtered to a category.
var categoryGoogleType = map[models.Category]string{
	models.CategoryParks:         "park",
	models.CategoryMuseums:       "museum",
	models.CategoryFood:          "restaurant",
	models.CategoryAttractions:   "tourist_attraction",
	models.CategoryShopping:      "shopping_mall",
	models.CategoryEntertainment: "movie_theater",
	models.CategoryNature:        "campground",
	models.CategorySports:        "stadium",
	models.CategoryArts:          "art_gallery",
	models.CategoryCommunity:     "library",
	models.CategoryFamily:        "amusement_park",
}

// kidFriendlyTypes marks place types assumed suitable for children.
var kidFriendlyTypes = map[string]bool{
	"park":           true,
	"zoo":            true,
	"aquarium":       true,
	"amusement_park": true,
	"museum":         true,
	"library":        true,
}

// outdoorTypes marks place types treated as outdoor venues.
var outdoorTypes = map[string]bool{
	"park":            true,
	"campground":      true,
	"natural_feature": true,
	"zoo":             true,
	"amusement_park":  true,
	"stadium":         true,
}

// CategoryForGoogleTypes picks the first mappable type, falling back to
// attractions.
func CategoryForGoogleTypes(types []string) models.Category {
	for _, t := range types {
		if c, ok := googleTypeCategory[t]; ok {
			return c
		}
	}
	return models.CategoryAttractions
}

// yelpCategoryMap maps Yelp category aliases to canonical categories.
var yelpCategoryMap = map[string]models.Category{
	"parks":           models.CategoryParks,
	"hiking":          models.CategoryNature,
	"beaches":         models.CategoryNature,
	"museums":         models.CategoryMuseums,
	"galleries":       models.CategoryArts,
	"restaurants":     models.CategoryFood,
	"food":            models.CategoryFood,
	"cafes":           models.CategoryFood,
	"arcades":         models.CategoryEntertainment,
	"movietheaters":   models.CategoryEntertainment,
	"musicvenues":     models.CategoryEntertainment,
	"shopping":        models.CategoryShopping,
	"kids_activities": models.CategoryFamily,
	"zoos":            models.CategoryAttractions,
	"aquariums":       models.CategoryAttractions,
	"landmarks":       models.CategoryAttractions,
	"festivals":       models.CategoryEvents,
	"active":          models.CategorySports,
	"fitness":         models.CategorySports,
}

// interestYelpTerm maps a user interest to the Yelp search term used when
// the interest has a better alias than its literal text.
var interestYelpTerm = map[string]string{
	"outdoors":      "parks hiking",
	"food":          "restaurants",
	"art":           "art galleries",
	"music":         "live music",
	"family":        "kids activities",
	"fitness":       "fitness",
	"history":       "museums landmarks",
	"entertainment": "entertainment",
}

// YelpTermForInterests composes the Yelp search term from user interests.
func YelpTermForInterests(interests []string) string {
	if len(interests) == 0 {
		return "things to do"
	}
	terms := make([]string, 0, len(interests))
	for _, in := range interests {
		key := strings.ToLower(strings.TrimSpace(in))
		if term, ok := interestYelpTerm[key]; ok {
			terms = append(terms, term)
		} else {
			terms = append(terms, key)
		}
	}
	return strings.Join(terms, " ")
}

// CategoryForYelpAliases maps the first known Yelp alias, falling back to
// attractions.
func CategoryForYelpAliases(aliases []string) models.Category {
	for _, a := range aliases {
		if c, ok := yelpCategoryMap[a]; ok {
			return c
		}
	}
	return models.CategoryAttractions
}

// ticketmasterSegmentCategory maps Discovery API segments to categories.
// Everything Ticketmaster sells is an event; the segment refines it.
var ticketmasterSegmentCategory = map[string]models.Category{
	"music":          models.CategoryEntertainment,
	"sports":         models.CategorySports,
	"arts & theatre": models.CategoryArts,
	"film":           models.CategoryEntertainment,
	"family":         models.CategoryFamily,
}

// CategoryForSegment maps a Ticketmaster segment name, falling back to
// events.
func CategoryForSegment(segment string) models.Category {
	if c, ok := ticketmasterSegmentCategory[strings.ToLower(segment)]; ok {
		return c
	}
	return models.CategoryEvents
}

// overpassTagCategory maps OSM leisure/tourism/amenity tag values.
var overpassTagCategory = map[string]models.Category{
	"park":           models.CategoryParks,
	"playground":     models.CategoryFamily,
	"garden":         models.CategoryParks,
	"nature_reserve": models.CategoryNature,
	"viewpoint":      models.CategoryNature,
	"museum":         models.CategoryMuseums,
	"gallery":        models.CategoryArts,
	"library":        models.CategoryCommunity,
	"attraction":     models.CategoryAttractions,
}

// CategoryForOverpassTags inspects an element's tags in preference order.
func CategoryForOverpassTags(tags map[string]string) models.Category {
	for _, key := range []string{"leisure", "tourism", "amenity"} {
		if v, ok := tags[key]; ok {
			if c, found := overpassTagCategory[v]; found {
				return c
			}
		}
	}
	return models.CategoryAttractions
}
