// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package rank scores recommendations against user preferences and selects
// a source-diverse top K.
package rank

import (
	"sort"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Scorer applies the additive scoring policy and diversity-capped
// selection. Weights come from configuration; only the relative policy is
// structural.
type Scorer struct {
	cfg config.RankingConfig
}

// New builds a Scorer.
func New(cfg config.RankingConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes one item's score. Location-bearing items are strongly
// preferred over unverifiable ones; proximity, interest matches, family
// fit, free admission, timeliness, and ratings each add on top.
func (s *Scorer) Score(item *models.Recommendation, prefs models.Preferences) float64 {
	score := s.cfg.BaseScore

	if item.HasDistance() {
		score += s.cfg.DistancePresentBonus
		score += s.distanceBonus(*item.DistanceMiles)
	} else {
		score -= s.cfg.DistanceAbsentPenalty
	}

	switch hits := s.interestHits(item, prefs.Interests); {
	case hits >= 2:
		score += s.cfg.InterestStrongBonus
	case hits == 1:
		score += s.cfg.InterestWeakBonus
	}

	if item.KidFriendly {
		if prefs.GroupType == models.GroupFamily {
			score += s.cfg.FamilyKidBonus
		} else if hasInterest(prefs.Interests, "family") {
			score += s.cfg.FamilyInterestBonus
		}
	}

	if item.PriceFlag == models.PriceFree {
		score += s.cfg.FreeBonus
	}
	if item.EventDate != "" {
		score += s.cfg.EventDateBonus
	}
	if item.Rating > 0 {
		score += item.Rating * s.cfg.RatingWeight
	}

	return score
}

func (s *Scorer) distanceBonus(miles float64) float64 {
	switch {
	case miles <= 5:
		return s.cfg.NearBonus
	case miles <= 10:
		return s.cfg.MidBonus
	case miles <= 20:
		return s.cfg.FarBonus
	default:
		penalty := miles - 20
		if penalty > s.cfg.FarPenaltyCap {
			penalty = s.cfg.FarPenaltyCap
		}
		return -penalty
	}
}

// interestKeywords expands a canonical interest id into the keywords that
// count toward a match. Profile ids like "arts_culture" never appear
// verbatim in item text; their keywords do.
var interestKeywords = map[string][]string{
	"arts_culture":  {"arts", "culture", "art", "museum", "gallery", "theater", "music"},
	"nature":        {"nature", "park", "outdoor", "hiking", "garden", "trail"},
	"food_drink":    {"food", "restaurant", "dining", "cafe", "bar", "brewery", "wine"},
	"food_drinks":   {"food", "restaurant", "dining", "cafe", "bar", "brewery", "wine"},
	"fitness":       {"fitness", "sports", "yoga", "gym", "run", "bike"},
	"adventure":     {"adventure", "sports", "active", "climb", "kayak", "hike"},
	"learning":      {"learning", "workshop", "class", "lecture", "education", "science", "library"},
	"shopping":      {"shopping", "market", "boutique", "store", "flea"},
	"nightlife":     {"nightlife", "club", "bar", "concert", "live music"},
	"family":        {"family", "kids", "children", "family-friendly", "playground"},
	"events":        {"event", "festival", "fair", "celebration", "community"},
	"entertainment": {"entertainment", "show", "theater", "music", "concert", "comedy"},
	"relaxation":    {"relaxation", "spa", "meditation", "yoga", "wellness", "garden"},
}

// Keywords returns the match keywords for one interest. Ids without a table
// entry match on their own text.
func Keywords(interest string) []string {
	id := strings.ToLower(strings.TrimSpace(interest))
	if id == "" {
		return nil
	}
	if kws, ok := interestKeywords[id]; ok {
		return kws
	}
	return []string{id}
}

// ExpandInterests resolves the user's interest ids to a deduplicated
// keyword list.
func ExpandInterests(interests []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, interest := range interests {
		for _, kw := range Keywords(interest) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// interestHits counts expanded interest keywords appearing in the item's
// title, description, or category.
func (s *Scorer) interestHits(item *models.Recommendation, interests []string) int {
	keywords := ExpandInterests(interests)
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(item.Title + " " + item.Description + " " + string(item.Category))
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			hits++
		}
	}
	return hits
}

func hasInterest(interests []string, want string) bool {
	for _, in := range interests {
		if strings.EqualFold(strings.TrimSpace(in), want) {
			return true
		}
	}
	return false
}

// DiversityCap derives the per-source cap for a requested count: roughly a
// third of the request, floored at the configured minimum.
func (s *Scorer) DiversityCap(k int) int {
	c := k / 3
	if c < s.cfg.MinPerSource {
		c = s.cfg.MinPerSource
	}
	return c
}

// SelectTopK sorts by score descending and fills the result in two passes.
// The first pass caps items per source at the diversity cap so no single
// source dominates; the second pass tops up from the full ordering,
// ignoring the cap, until K is reached or the pool is exhausted.
func (s *Scorer) SelectTopK(items []models.Recommendation, prefs models.Preferences, k int) []models.Recommendation {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	scored := make([]scoredItem, len(items))
	for i := range items {
		scored[i] = scoredItem{item: items[i], score: s.Score(&items[i], prefs)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := s.DiversityCap(k)
	perSource := make(map[string]int)
	taken := make(map[int]struct{}, k)
	out := make([]models.Recommendation, 0, k)

	for i, sc := range scored {
		if len(out) == k {
			return out
		}
		if perSource[sc.item.FeedSource] >= limit {
			continue
		}
		perSource[sc.item.FeedSource]++
		taken[i] = struct{}{}
		out = append(out, sc.item)
	}

	for i, sc := range scored {
		if len(out) == k {
			break
		}
		if _, ok := taken[i]; ok {
			continue
		}
		out = append(out, sc.item)
	}
	return out
}

type scoredItem struct {
	item  models.Recommendation
	score float64
}
