// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package filter

import (
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Keyword lists marking content classes that only suit certain groups.
// Matching is substring based over the item's title and description.
var (
	kidsOnlyKeywords = []string{
		"story time", "storytime", "story hour",
		"toddler time", "baby time", "mommy and me",
		"kids craft", "children's craft",
		"preschool", "kindergarten",
	}
	singlesDatingKeywords = []string{
		"speed dating", "singles", "single mingle", "singles mixer",
		"dating event", "meet singles",
		"matchmaking", "find love", "looking for love",
	}
	adultOnlyKeywords = []string{
		"adult only", "adults only",
		"21+", "21 and over", "18+", "bar crawl", "pub crawl",
		"wine tasting", "beer tasting", "happy hour", "cocktail party",
		"nightclub", "late night party", "after dark",
		"brewery tour", "winery tour", "distillery tour",
	}
	professionalKeywords = []string{
		"startup", "startups", "pitch", "pitching", "investor",
		"networking", "mixer", "mix &", "professional",
		"entrepreneur", "founders", "venture capital", "vc ",
		"business networking", "tech meetup", "industry",
		"conference", "summit", "workshop for professionals",
		"b2b", "saas", "fintech",
	}
	personalDevelopmentKeywords = []string{
		"journaling", "self-reflection", "self reflection",
		"eq-journaling", "eq journaling", "emotional intelligence",
		"meditation retreat", "silent retreat",
		"personal growth workshop", "self-help",
		"therapy session", "support group",
		"mindfulness for adults", "adult meditation",
	}
)

// groupSuppressions maps each group type to the keyword classes it should
// never see. Families lose dating, adult, professional, and solo
// self-improvement content; groups without small children lose kids-only
// programming.
var groupSuppressions = map[models.GroupType][][]string{
	models.GroupFamily: {
		singlesDatingKeywords, adultOnlyKeywords,
		professionalKeywords, personalDevelopmentKeywords,
	},
	models.GroupCouple:  {singlesDatingKeywords, kidsOnlyKeywords},
	models.GroupSolo:    {kidsOnlyKeywords},
	models.GroupFriends: {kidsOnlyKeywords},
}

// GroupInappropriate reports whether the text describes content
// inappropriate for the requesting group type. Unknown group types
// suppress nothing.
func GroupInappropriate(text string, group models.GroupType) bool {
	classes, ok := groupSuppressions[group]
	if !ok {
		return false
	}
	lower := strings.ToLower(text)
	for _, class := range classes {
		for _, kw := range class {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
