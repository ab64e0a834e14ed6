// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package explain builds the one-line human explanation attached to each
// recommendation.
package explain

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/models"
	"github.com/wayfarerhq/wayfarer/internal/rank"
)

var categoryPhrases = map[models.Category]string{
	models.CategoryParks:         "a nice spot to get outside",
	models.CategoryMuseums:       "worth a visit if you're in a museum mood",
	models.CategoryFood:          "a good pick if you're hungry",
	models.CategoryAttractions:   "a local attraction worth checking out",
	models.CategoryEvents:        "happening nearby",
	models.CategoryShopping:      "good for browsing",
	models.CategoryEntertainment: "a fun way to spend a few hours",
	models.CategoryNature:        "great if you want some fresh air",
	models.CategoryFamily:        "built with families in mind",
	models.CategorySports:        "good if you want to be active",
	models.CategoryArts:          "worth it for the art alone",
	models.CategoryCommunity:     "a chance to meet people nearby",
}

var groupPhrases = map[models.GroupType]string{
	models.GroupFamily:  "good for the whole family",
	models.GroupCouple:  "a solid date idea",
	models.GroupSolo:    "easy to enjoy on your own",
	models.GroupFriends: "fun with a group",
}

// For composes the explanation from the strongest applicable signals, most
// specific first. Always returns something non-empty.
func For(rec *models.Recommendation, user *models.UserContext) string {
	var parts []string

	if user != nil {
		if hit := interestMention(rec, user.Preferences.Interests); hit != "" {
			parts = append(parts, fmt.Sprintf("matches your interest in %s", hit))
		}
		if p, ok := groupPhrases[user.Preferences.GroupType]; ok && len(parts) < 2 {
			if user.Preferences.GroupType != models.GroupFamily || rec.KidFriendly {
				parts = append(parts, p)
			}
		}
	}

	if rec.PriceFlag == models.PriceFree && len(parts) < 2 {
		parts = append(parts, "free to visit")
	}

	if rec.HasDistance() && *rec.TravelTimeMin <= 15 && len(parts) < 2 {
		parts = append(parts, fmt.Sprintf("only about %d min away", *rec.TravelTimeMin))
	}

	if len(parts) == 0 {
		if p, ok := categoryPhrases[rec.Category]; ok {
			parts = append(parts, p)
		} else {
			parts = append(parts, "popular nearby")
		}
	}

	if rec.Rating >= 4.5 && len(parts) < 2 {
		parts = append(parts, "highly rated")
	}

	return sentence(parts)
}

// interestLabels turn canonical interest ids into mention-friendly text.
var interestLabels = map[string]string{
	"arts_culture":  "arts and culture",
	"food_drink":    "food and drinks",
	"food_drinks":   "food and drinks",
	"nature":        "nature and the outdoors",
	"learning":      "learning something new",
	"events":        "local events",
	"entertainment": "entertainment and shows",
	"relaxation":    "relaxation and wellness",
}

// interestMention returns the label of the first interest whose expanded
// keywords appear in the item text, or "" when none match.
func interestMention(rec *models.Recommendation, interests []string) string {
	if len(interests) == 0 {
		return ""
	}
	haystack := strings.ToLower(rec.Title + " " + rec.Description + " " + string(rec.Category))
	for _, interest := range interests {
		for _, kw := range rank.Keywords(interest) {
			if strings.Contains(haystack, kw) {
				return interestLabel(interest)
			}
		}
	}
	return ""
}

func interestLabel(interest string) string {
	id := strings.ToLower(strings.TrimSpace(interest))
	if label, ok := interestLabels[id]; ok {
		return label
	}
	return strings.ReplaceAll(id, "_", " ")
}

func sentence(parts []string) string {
	joined := strings.Join(parts, " and ")
	if joined == "" {
		return ""
	}
	return strings.ToUpper(joined[:1]) + joined[1:] + "."
}
