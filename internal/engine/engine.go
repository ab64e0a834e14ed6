// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package engine orchestrates a recommendation request end to end: warm
// cache lookup, parallel source fan-out behind circuit breakers,
// normalization, filtering, ranking, and the fallback chain when live data
// is unavailable.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/explain"
	"github.com/wayfarerhq/wayfarer/internal/filter"
	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
	"github.com/wayfarerhq/wayfarer/internal/normalize"
	"github.com/wayfarerhq/wayfarer/internal/rank"
	"github.com/wayfarerhq/wayfarer/internal/seed"
	"github.com/wayfarerhq/wayfarer/internal/sources"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

// Sentinel sourcesUsed values for responses not built from live sources.
var (
	sourcesFromCache = []string{"cache"}
	sourcesFromSeed  = []string{"mock"}
	sourcesError     = []string{"error"}
)

// Result is one complete recommendation response.
type Result struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	// SourcesUsed lists the live sources that contributed, or a single
	// sentinel: "cache" (durable fallback), "mock" (seed data), "error".
	SourcesUsed []string `json:"sources_used"`
	// FilterLevel is "strict", "relaxed", or "closest".
	FilterLevel string    `json:"filter_level"`
	Week        string    `json:"week"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Engine wires the full pipeline together. Safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	fetchers []*guardedFetcher

	normalizer *normalize.Normalizer
	filter     *filter.Filter
	scorer     *rank.Scorer
	warm       *warmCache

	cache   store.RecommendationCache
	history store.HistoryStore

	// refreshWG tracks background refreshes so Close can drain them.
	refreshWG sync.WaitGroup

	now func() time.Time
}

// New assembles the engine. The geocode function is shared with the
// normalizer so source items and user addresses hit the same caches.
func New(cfg *config.Config, fetchers []sources.Fetcher, geocode geo.GeocodeFunc, cache store.RecommendationCache, history store.HistoryStore) *Engine {
	guarded := make([]*guardedFetcher, 0, len(fetchers))
	for _, f := range fetchers {
		guarded = append(guarded, newGuardedFetcher(f, cfg.Breaker))
	}
	return &Engine{
		cfg:        cfg,
		fetchers:   guarded,
		normalizer: normalize.New(geocode, cfg.Filter.AvgSpeedMPH),
		filter: filter.New(filter.Options{
			DedupWindowDays: cfg.Filter.DedupWindowDays,
			RecentWeeks:     cfg.Filter.RecentWeeks,
			AvgSpeedMPH:     cfg.Filter.AvgSpeedMPH,
			MinRadiusMiles:  cfg.Filter.MinRadiusMiles,
			RelaxFactor:     cfg.Filter.RelaxFactor,
		}),
		scorer:  rank.New(cfg.Ranking),
		warm:    newWarmCache(cfg.Cache.FreshWindow, cfg.Cache.StaleWindow),
		cache:   cache,
		history: history,
		now:     time.Now,
	}
}

// Recommend serves count recommendations for the user. Fresh warm entries
// return immediately; stale entries return while one background refresh
// rebuilds the entry; expired or missing entries rebuild inline. A total
// live failure walks the fallback chain instead of returning an error.
func (e *Engine) Recommend(ctx context.Context, user *models.UserContext, count int) (*Result, error) {
	if count <= 0 {
		count = e.cfg.API.DefaultCount
	}
	if count > e.cfg.API.MaxCount {
		count = e.cfg.API.MaxCount
	}

	now := e.now()
	key := CacheKey(user)

	items, srcs, tier := e.warm.Get(key, now)
	switch tier {
	case CacheFresh:
		return e.result(items, srcs, "strict", count, now), nil
	case CacheStale:
		if e.warm.TryBeginRefresh(key) {
			e.refreshWG.Add(1)
			go e.refreshInBackground(key, user, count)
		}
		return e.result(items, srcs, "strict", count, now), nil
	}

	return e.build(ctx, key, user, count)
}

// refreshInBackground rebuilds a stale warm entry outside the request path.
// It gets its own deadline since the originating request has already been
// answered.
func (e *Engine) refreshInBackground(key string, user *models.UserContext, count int) {
	defer e.refreshWG.Done()
	defer e.warm.EndRefresh(key)

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Sources.GlobalDeadline+2*time.Second)
	defer cancel()

	if _, err := e.build(ctx, key, user, count); err != nil {
		logging.Warn().Err(err).Str("cache_key", key).Msg("background refresh failed")
	}
}

// Close waits for in-flight background refreshes to finish.
func (e *Engine) Close() {
	e.refreshWG.Wait()
}

// SweepWarmCache drops expired warm entries. Called by the janitor.
func (e *Engine) SweepWarmCache() int {
	return e.warm.Sweep(e.now())
}

func (e *Engine) build(ctx context.Context, key string, user *models.UserContext, count int) (*Result, error) {
	now := e.now()

	raws, sourcesUsed := e.fanOut(ctx, user)
	if len(raws) == 0 {
		return e.fallback(ctx, user, count, now), nil
	}

	regionHint := geo.RegionHint(user.LocationString)
	recs := e.normalizer.Batch(ctx, raws, user.Lat, user.Lng, regionHint, e.cfg.Sources.MaxRawItems)

	history := e.filter.HistoryPlaceIDs(user, now)
	recs = e.filter.Dedup(recs, history)

	recs, level := e.filter.ApplyWithRelaxation(recs, user.Preferences, now)
	recs = filter.CollapseFuzzyDuplicates(recs)
	top := e.scorer.SelectTopK(recs, user.Preferences, count)

	if len(top) == 0 {
		return e.fallback(ctx, user, count, now), nil
	}

	week := models.WeekBucket(now)
	for i := range top {
		top[i].RecID = fmt.Sprintf("%s_%s_%d", slug(top[i].Title), week, i)
		top[i].Explanation = explain.For(&top[i], user)
	}

	if err := e.persist(ctx, user, key, top, week, now); err != nil {
		logging.Error().Err(err).Str("user_id", user.UserID).Msg("failed to persist recommendations")
		metrics.FallbackServed.WithLabelValues("error").Inc()
		return &Result{
			Recommendations: []models.Recommendation{},
			SourcesUsed:     sourcesError,
			FilterLevel:     level,
			Week:            week,
			GeneratedAt:     now,
		}, nil
	}

	e.warm.Put(key, top, sourcesUsed, now)
	return e.result(top, sourcesUsed, level, count, now), nil
}

// fanOut queries every source in parallel under the global deadline. Each
// fetcher gets its own shorter timeout so one slow upstream cannot consume
// the whole budget. Failures are logged and dropped; the request proceeds
// with whatever arrived.
func (e *Engine) fanOut(ctx context.Context, user *models.UserContext) ([]models.RawItem, []string) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Sources.GlobalDeadline)
	defer cancel()

	maxMinutes := geo.MaxTravelMinutes(user.Preferences.TravelBuckets)
	q := sources.Query{
		Lat:         user.Lat,
		Lng:         user.Lng,
		RadiusMiles: geo.RadiusMiles(maxMinutes, e.cfg.Filter.AvgSpeedMPH, e.cfg.Filter.MinRadiusMiles),
		Location:    user.LocationString,
		Categories:  user.Preferences.Categories,
		Interests:   user.Preferences.Interests,
		Limit:       e.cfg.Sources.MaxRawItems,
	}

	var mu sync.Mutex
	var all []models.RawItem
	used := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Sources.MaxWorkers)

	for _, f := range e.fetchers {
		f := f
		g.Go(func() error {
			fctx, fcancel := context.WithTimeout(gctx, e.cfg.Sources.FetchTimeout)
			defer fcancel()

			items, err := f.Fetch(fctx, q)
			if err != nil {
				metrics.ObserveFetchError(f.Name(), err)
				logging.Warn().Err(err).Str("source", f.Name()).Msg("source fetch failed")
				return nil
			}
			if len(items) == 0 {
				return nil
			}

			mu.Lock()
			all = append(all, items...)
			used[f.Name()] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	//nolint:errcheck // workers never return errors, failures are dropped per source
	g.Wait()

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return all, names
}

// fallback walks secondary cache, then seed data. Never returns an error:
// the seed layer always produces something.
func (e *Engine) fallback(ctx context.Context, user *models.UserContext, count int, now time.Time) *Result {
	key := CacheKey(user)
	week := models.WeekBucket(now)

	if e.cache != nil {
		cached, err := e.cache.Read(ctx, user.UserID, key)
		if err == nil && len(cached) > 0 {
			metrics.FallbackServed.WithLabelValues("secondary_cache").Inc()
			logging.Info().Str("user_id", user.UserID).Msg("serving recommendations from durable cache")
			return e.result(cached, sourcesFromCache, "strict", count, now)
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logging.Warn().Err(err).Msg("durable cache read failed")
		}
	}

	metrics.FallbackServed.WithLabelValues("seed").Inc()
	logging.Info().Str("user_id", user.UserID).Msg("serving seed recommendations")

	recs := seed.Recommendations(user.Lat, user.Lng, e.cfg.Filter.AvgSpeedMPH)
	filtered, level := e.filter.ApplyWithRelaxation(recs, user.Preferences, now)
	if len(filtered) == 0 {
		// Relaxation ends at closest-ignoring-filters, so this only
		// happens if the seed set itself is empty.
		filtered, level = recs, "closest"
	}
	top := e.scorer.SelectTopK(filtered, user.Preferences, count)
	for i := range top {
		top[i].RecID = fmt.Sprintf("%s_%s_%d", slug(top[i].Title), week, i)
		top[i].Explanation = explain.For(&top[i], user)
	}
	return e.result(top, sourcesFromSeed, level, count, now)
}

// persist writes the durable cache entry and records each served item in the
// recent history so next week's dedup sees it.
func (e *Engine) persist(ctx context.Context, user *models.UserContext, key string, items []models.Recommendation, week string, now time.Time) error {
	if e.cache != nil {
		if err := e.cache.Persist(ctx, user.UserID, key, items, now.Add(e.cfg.Cache.SecondaryTTL)); err != nil {
			return err
		}
	}
	if e.history != nil {
		for _, item := range items {
			rec := models.RecentRecommendation{
				PlaceID:       item.PlaceID,
				RecID:         item.RecID,
				Week:          week,
				RecommendedAt: now,
			}
			if err := e.history.AddRecentRecommendation(ctx, user.UserID, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) result(items []models.Recommendation, sourcesUsed []string, level string, count int, now time.Time) *Result {
	if len(items) > count {
		items = items[:count]
	}
	return &Result{
		Recommendations: items,
		SourcesUsed:     sourcesUsed,
		FilterLevel:     level,
		Week:            models.WeekBucket(now),
		GeneratedAt:     now,
	}
}

// slug lowercases the title and collapses runs of non-alphanumerics to a
// single underscore, producing the stable prefix of a rec ID.
func slug(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
