// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const (
	feedsName        = "Local Feeds"
	familiesFeedName = "Family Events"
)

// feedCategoryKeywords maps feed category text and title keywords to the
// canonical taxonomy.
var feedCategoryKeywords = map[string]models.Category{
	"park":       models.CategoryParks,
	"outdoor":    models.CategoryNature,
	"hike":       models.CategoryNature,
	"museum":     models.CategoryMuseums,
	"art":        models.CategoryArts,
	"music":      models.CategoryEntertainment,
	"concert":    models.CategoryEntertainment,
	"theater":    models.CategoryArts,
	"food":       models.CategoryFood,
	"restaurant": models.CategoryFood,
	"market":     models.CategoryShopping,
	"kids":       models.CategoryFamily,
	"family":     models.CategoryFamily,
	"sport":      models.CategorySports,
	"festival":   models.CategoryEvents,
	"community":  models.CategoryCommunity,
}

// categoryForFeedItem maps an item's categories then its title, falling
// back to events.
func categoryForFeedItem(item *gofeed.Item) models.Category {
	for _, cat := range item.Categories {
		lower := strings.ToLower(cat)
		for kw, c := range feedCategoryKeywords {
			if strings.Contains(lower, kw) {
				return c
			}
		}
	}
	lowerTitle := strings.ToLower(item.Title)
	for kw, c := range feedCategoryKeywords {
		if strings.Contains(lowerTitle, kw) {
			return c
		}
	}
	return models.CategoryEvents
}

// Feeds polls a configured set of RSS/Atom feeds. Feed items rarely carry
// structured locations, so most resolve to the estimated or n/a tier.
type Feeds struct {
	urls    []string
	parser  *gofeed.Parser
	crawler *DescriptionCrawler
	timeout time.Duration
	log     zerolog.Logger
}

// NewFeeds builds the fetcher over the given feed URLs. The crawler, when
// non-nil, fills empty descriptions from the linked page.
func NewFeeds(urls []string, timeout time.Duration, crawler *DescriptionCrawler) *Feeds {
	parser := gofeed.NewParser()
	parser.UserAgent = "wayfarer/1.0 (+https://github.com/wayfarerhq/wayfarer)"
	return &Feeds{
		urls:    urls,
		parser:  parser,
		crawler: crawler,
		timeout: timeout,
		log:     logging.With().Str("component", "source").Str("source", feedsName).Logger(),
	}
}

// Name implements Fetcher.
func (f *Feeds) Name() string { return feedsName }

// Fetch implements Fetcher. A feed that fails to parse is skipped, not
// fatal; the fetch errors only when every feed failed.
func (f *Feeds) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	start := time.Now()
	limit := clampLimit(q.Limit, 20, 40)

	var items []models.RawItem
	var lastErr error
	failures := 0
	for _, feedURL := range f.urls {
		feed, err := f.parseFeed(ctx, feedURL)
		if err != nil {
			failures++
			lastErr = err
			metrics.FetchErrors.WithLabelValues(feedsName, "network").Inc()
			f.log.Warn().Err(err).Str("feed", feedURL).Msg("feed parse failed")
			continue
		}
		for _, entry := range feed.Items {
			if entry.Title == "" {
				continue
			}
			items = append(items, f.convert(ctx, entry))
			if len(items) >= limit {
				break
			}
		}
		if len(items) >= limit {
			break
		}
	}

	if failures == len(f.urls) && len(f.urls) > 0 {
		return nil, fmt.Errorf("all %d feeds failed: %w", failures, lastErr)
	}

	metrics.ObserveFetch(feedsName, start, len(items))
	return items, nil
}

func (f *Feeds) parseFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.parser.ParseURLWithContext(feedURL, ctx)
}

func (f *Feeds) convert(ctx context.Context, entry *gofeed.Item) models.RawItem {
	desc := truncate(stripHTML(entry.Description), 500)
	if desc == "" && f.crawler != nil && entry.Link != "" {
		desc = f.crawler.Describe(ctx, entry.Link)
	}

	item := models.RawItem{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: desc,
		Source:      feedsName,
		Category:    categoryForFeedItem(entry),
		Price:       models.PriceCheap,
	}
	if entry.PublishedParsed != nil {
		// Feed timestamps are publication dates, not event dates; only
		// future-dated entries are treated as events.
		if entry.PublishedParsed.After(time.Now()) {
			item.EventDate = entry.PublishedParsed.Format("2006-01-02")
		}
	}
	return item
}

// FamiliesFeed polls a kid-focused events feed whose item bodies carry the
// venue on its own line. Everything it yields is kid friendly.
type FamiliesFeed struct {
	url     string
	parser  *gofeed.Parser
	timeout time.Duration
	log     zerolog.Logger
}

// NewFamiliesFeed builds the fetcher.
func NewFamiliesFeed(url string, timeout time.Duration) *FamiliesFeed {
	parser := gofeed.NewParser()
	parser.UserAgent = "wayfarer/1.0 (+https://github.com/wayfarerhq/wayfarer)"
	return &FamiliesFeed{
		url:     url,
		parser:  parser,
		timeout: timeout,
		log:     logging.With().Str("component", "source").Str("source", familiesFeedName).Logger(),
	}
}

// Name implements Fetcher.
func (f *FamiliesFeed) Name() string { return familiesFeedName }

// Fetch implements Fetcher.
func (f *FamiliesFeed) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	start := time.Now()

	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	feed, err := f.parser.ParseURLWithContext(f.url, tctx)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(familiesFeedName, "network").Inc()
		return nil, err
	}

	kidFriendly := true
	limit := clampLimit(q.Limit, 20, 40)
	items := make([]models.RawItem, 0, limit)
	for _, entry := range feed.Items {
		if entry.Title == "" {
			continue
		}
		items = append(items, models.RawItem{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: truncate(stripHTML(entry.Description), 500),
			Location:    extractVenueLine(entry.Description),
			Source:      familiesFeedName,
			Category:    models.CategoryFamily,
			Price:       models.PriceCheap,
			KidFriendly: &kidFriendly,
		})
		if len(items) == limit {
			break
		}
	}

	metrics.ObserveFetch(familiesFeedName, start, len(items))
	return items, nil
}

// extractVenueLine pulls a venue or address line out of an item body whose
// lines are separated by <br> tags. The first line that classifies as a
// location wins; pure prose lines are skipped by length.
func extractVenueLine(description string) string {
	normalized := strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").
		Replace(description)
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(stripHTML(line))
		if line == "" || len(line) > 80 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "where:") || strings.HasPrefix(lower, "location:") {
			return strings.TrimSpace(line[strings.Index(line, ":")+1:])
		}
	}
	return ""
}
