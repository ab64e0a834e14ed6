// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package filter

import (
	"sort"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/models"
)

// titleStopwords are dropped before comparing titles across sources.
var titleStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "at": {}, "in": {}, "on": {},
	"for": {}, "of": {}, "and": {}, "to": {}, "with": {},
	"free": {}, "new": {},
}

// FuzzyTitleKey reduces a title to its normalized token set: lowercased,
// punctuation stripped, stopwords and single characters removed, tokens
// sorted. Titles from different sources that describe the same thing
// collapse to the same key.
func FuzzyTitleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		if _, stop := titleStopwords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	sort.Strings(kept)
	return strings.Join(kept, " ")
}

// CollapseFuzzyDuplicates removes items whose titles reduce to an already
// seen fuzzy key, keeping the first occurrence. Run before scoring so a
// duplicate cannot occupy two result slots.
func CollapseFuzzyDuplicates(items []models.Recommendation) []models.Recommendation {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.Recommendation, 0, len(items))
	for _, item := range items {
		key := FuzzyTitleKey(item.Title)
		if key == "" {
			out = append(out, item)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
