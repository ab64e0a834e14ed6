// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package filter removes ineligible recommendations: history duplicates,
// category/budget/kid mismatches, out-of-range items, past events, group
// inappropriate content, and fuzzy title duplicates.
package filter

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Options carries the filter tuning values.
type Options struct {
	DedupWindowDays int
	RecentWeeks     int
	AvgSpeedMPH     float64
	MinRadiusMiles  float64
	RelaxFactor     float64
}

// Filter applies the post-normalization eligibility rules.
type Filter struct {
	opts Options
	log  zerolog.Logger
}

// New builds a Filter.
func New(opts Options) *Filter {
	return &Filter{
		opts: opts,
		log:  logging.With().Str("component", "filter").Logger(),
	}
}

// HistoryPlaceIDs collects the place IDs suppressed by history: places
// visited within the dedup window and places recommended within the recent
// window.
func (f *Filter) HistoryPlaceIDs(user *models.UserContext, now time.Time) map[string]struct{} {
	history := make(map[string]struct{})

	visitedCutoff := now.AddDate(0, 0, -f.opts.DedupWindowDays)
	for _, v := range user.Visited {
		if v.VisitedAt.After(visitedCutoff) {
			history[v.PlaceID] = struct{}{}
		}
	}

	recentCutoff := now.AddDate(0, 0, -7*f.opts.RecentWeeks)
	for _, r := range user.Recent {
		if r.RecommendedAt.After(recentCutoff) {
			history[r.PlaceID] = struct{}{}
		}
	}
	return history
}

// Dedup removes items whose place ID appears in the history set. The
// operation is idempotent: reapplying it with the same history is a no-op.
func (f *Filter) Dedup(items []models.Recommendation, history map[string]struct{}) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(items))
	for _, item := range items {
		if _, suppressed := history[item.PlaceID]; suppressed {
			continue
		}
		out = append(out, item)
	}
	return out
}

// BudgetAllowList maps a budget tier to the price flags it admits.
func BudgetAllowList(budget models.BudgetTier) []models.PriceFlag {
	switch budget {
	case models.BudgetFree:
		return []models.PriceFlag{models.PriceFree}
	case models.BudgetLow:
		return []models.PriceFlag{models.PriceFree, models.PriceCheap}
	case models.BudgetModerate:
		return []models.PriceFlag{models.PriceFree, models.PriceCheap, models.PriceModerate}
	case models.BudgetAny:
		return []models.PriceFlag{
			models.PriceFree, models.PriceCheap, models.PriceModerate,
			models.PricePricey, models.PriceLuxury,
		}
	default:
		return []models.PriceFlag{
			models.PriceFree, models.PriceCheap, models.PriceModerate, models.PricePricey,
		}
	}
}

// ceilings holds the travel constraints derived from the user's buckets.
type ceilings struct {
	maxMinutes int
	maxMiles   float64
}

func (f *Filter) ceilingsFor(prefs models.Preferences, relax float64) ceilings {
	maxMinutes := geo.MaxTravelMinutes(prefs.TravelBuckets)
	maxMiles := geo.RadiusMiles(maxMinutes, f.opts.AvgSpeedMPH, f.opts.MinRadiusMiles)
	return ceilings{
		maxMinutes: int(float64(maxMinutes) * relax),
		maxMiles:   maxMiles * relax,
	}
}

// Apply runs the strict preference filters over the candidate set. History
// dedup runs separately (Dedup) so the relaxation fallback can skip
// everything except it.
func (f *Filter) Apply(items []models.Recommendation, prefs models.Preferences, now time.Time) []models.Recommendation {
	return f.apply(items, prefs, now, f.ceilingsFor(prefs, 1), true)
}

func (f *Filter) apply(items []models.Recommendation, prefs models.Preferences, now time.Time, c ceilings, categoryFilter bool) []models.Recommendation {
	allowed := allowSet(BudgetAllowList(prefs.Budget))
	selected := categorySet(prefs.Categories)

	out := make([]models.Recommendation, 0, len(items))
	for _, item := range items {
		if isPastEvent(item.EventDate, now) {
			continue
		}
		if GroupInappropriate(item.Title+" "+item.Description, prefs.GroupType) {
			continue
		}
		if categoryFilter && len(selected) > 0 {
			if _, ok := selected[item.Category]; !ok {
				continue
			}
		}
		if prefs.KidFriendly && !item.KidFriendly {
			continue
		}
		if _, ok := allowed[item.PriceFlag]; !ok {
			continue
		}
		// Items without verifiable distance bypass the travel filter.
		if item.Tier.Filterable() {
			if *item.DistanceMiles > c.maxMiles || *item.TravelTimeMin > c.maxMinutes {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// ApplyWithRelaxation runs the strict pass, then progressively relaxes:
// ceilings scaled by the relax factor with the category filter dropped,
// then the closest items ignoring every filter except history dedup (which
// the caller applied before this). The returned label names the pass that
// produced the result.
func (f *Filter) ApplyWithRelaxation(items []models.Recommendation, prefs models.Preferences, now time.Time) ([]models.Recommendation, string) {
	strict := f.Apply(items, prefs, now)
	if len(strict) > 0 {
		return strict, "strict"
	}

	if len(prefs.Categories) > 0 {
		relaxed := f.apply(items, prefs, now, f.ceilingsFor(prefs, f.opts.RelaxFactor), false)
		if len(relaxed) > 0 {
			f.log.Debug().Int("count", len(relaxed)).Msg("strict filter empty, served relaxed pass")
			return relaxed, "relaxed"
		}
	}

	closest := make([]models.Recommendation, len(items))
	copy(closest, items)
	sort.SliceStable(closest, func(i, j int) bool {
		di, dj := closest[i].DistanceMiles, closest[j].DistanceMiles
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	f.log.Debug().Int("count", len(closest)).Msg("all filters relaxed, serving closest items")
	return closest, "closest"
}

func allowSet(flags []models.PriceFlag) map[models.PriceFlag]struct{} {
	s := make(map[models.PriceFlag]struct{}, len(flags))
	for _, fl := range flags {
		s[fl] = struct{}{}
	}
	return s
}

func categorySet(cats []models.Category) map[models.Category]struct{} {
	s := make(map[models.Category]struct{}, len(cats))
	for _, c := range cats {
		s[c] = struct{}{}
	}
	return s
}

// isPastEvent reports whether the event date parses and is strictly before
// today. Unparseable dates are kept; dropping them would throw away live
// items over formatting noise.
func isPastEvent(eventDate string, now time.Time) bool {
	if eventDate == "" {
		return false
	}
	if len(eventDate) > 10 {
		eventDate = eventDate[:10]
	}
	d, err := time.Parse("2006-01-02", eventDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}
