// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const patchName = "Patch"

// patchCity maps a Patch.com city feed slug to the city's coordinates.
type patchCity struct {
	lat  float64
	lng  float64
	slug string
}

// patchCities are the Bay Area cities with Patch feeds. The fetcher polls
// the few closest to the user rather than a fixed set.
var patchCities = []patchCity{
	{37.5485, -121.9886, "fremont"},
	{37.5297, -122.0402, "newark"},
	{37.5934, -122.0439, "union-city"},
	{37.6688, -122.0808, "hayward"},
	{37.6879, -122.0902, "castro-valley"},
	{37.8044, -122.2712, "oakland"},
	{37.8716, -122.2727, "berkeley"},
	{37.5586, -122.2711, "san-mateo"},
	{37.3382, -121.8863, "san-jose"},
	{37.4419, -122.1430, "palo-alto"},
	{37.5022, -122.2594, "redwood-city"},
	{37.4005, -122.1081, "sunnyvale"},
	{37.3688, -122.0363, "cupertino"},
	{37.3861, -122.0839, "mountain-view"},
	{37.7749, -122.4194, "san-francisco"},
}

// patchEventKeywords decide whether a Patch item is an event or plain
// local news.
var patchEventKeywords = []string{
	"event", "festival", "fair", "concert", "show", "class",
	"workshop", "opening", "celebration", "market", "parade",
}

// Patch polls Patch.com city RSS feeds for local news and events. No
// credential is required; the fetcher picks the cities closest to the
// query point.
type Patch struct {
	baseURL   string
	maxCities int
	parser    *gofeed.Parser
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPatch builds the fetcher.
func NewPatch(timeout time.Duration) *Patch {
	parser := gofeed.NewParser()
	parser.UserAgent = "wayfarer/1.0 (+https://github.com/wayfarerhq/wayfarer)"
	return &Patch{
		baseURL:   "https://patch.com/california",
		maxCities: 3,
		parser:    parser,
		timeout:   timeout,
		log:       logging.With().Str("component", "source").Str("source", patchName).Logger(),
	}
}

// Name implements Fetcher.
func (p *Patch) Name() string { return patchName }

// closestSlugs returns the feed slugs of the cities nearest the query
// point, closest first.
func (p *Patch) closestSlugs(lat, lng float64) []string {
	type cityDist struct {
		miles float64
		slug  string
	}
	dists := make([]cityDist, 0, len(patchCities))
	for _, c := range patchCities {
		dists = append(dists, cityDist{geo.Haversine(lat, lng, c.lat, c.lng), c.slug})
	}
	sort.Slice(dists, func(i, j int) bool { return dists[i].miles < dists[j].miles })

	n := p.maxCities
	if n > len(dists) {
		n = len(dists)
	}
	slugs := make([]string, 0, n)
	for _, d := range dists[:n] {
		slugs = append(slugs, d.slug)
	}
	return slugs
}

// Fetch implements Fetcher. Individual city feeds that fail are skipped;
// the fetch errors only when every city failed.
func (p *Patch) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	start := time.Now()
	limit := clampLimit(q.Limit, 10, 25)
	slugs := p.closestSlugs(q.Lat, q.Lng)

	var items []models.RawItem
	var lastErr error
	failures := 0
	for _, slug := range slugs {
		feed, err := p.parseFeed(ctx, slug)
		if err != nil {
			failures++
			lastErr = err
			metrics.FetchErrors.WithLabelValues(patchName, "network").Inc()
			p.log.Warn().Err(err).Str("city", slug).Msg("city feed failed")
			continue
		}
		for _, entry := range feed.Items {
			if entry.Title == "" {
				continue
			}
			items = append(items, p.convert(entry, slug))
			if len(items) == limit {
				break
			}
		}
		if len(items) == limit {
			break
		}
	}

	if failures == len(slugs) && len(slugs) > 0 {
		return nil, fmt.Errorf("all %d city feeds failed: %w", failures, lastErr)
	}

	metrics.ObserveFetch(patchName, start, len(items))
	return items, nil
}

func (p *Patch) parseFeed(ctx context.Context, slug string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.parser.ParseURLWithContext(p.baseURL+"/"+slug+"/rss", ctx)
}

func (p *Patch) convert(entry *gofeed.Item, slug string) models.RawItem {
	desc := truncate(stripHTML(entry.Description), 500)
	haystack := strings.ToLower(entry.Title + " " + desc)

	category := models.CategoryCommunity
	for _, kw := range patchEventKeywords {
		if strings.Contains(haystack, kw) {
			category = models.CategoryEvents
			break
		}
	}

	kidFriendly := false
	return models.RawItem{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: desc,
		Source:      fmt.Sprintf("%s (%s)", patchName, slug),
		Category:    category,
		Price:       models.PriceFree,
		KidFriendly: &kidFriendly,
	}
}
