// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/wayfarerhq/wayfarer/internal/logging"
)

// DescriptionCrawler fills empty item descriptions by fetching the linked
// page and reading its metadata, preferring og:description over the plain
// meta description. Results, including failures, are cached with a TTL so
// the same link is not refetched per request.
type DescriptionCrawler struct {
	client   *resty.Client
	ttl      time.Duration
	maxBytes int64
	maxChars int
	log      zerolog.Logger

	mu    sync.Mutex
	cache map[string]describeEntry
}

type describeEntry struct {
	description string
	fetchedAt   time.Time
}

// NewDescriptionCrawler builds a crawler with the given limits.
func NewDescriptionCrawler(timeout, ttl time.Duration, maxBytes int64, maxChars int) *DescriptionCrawler {
	return &DescriptionCrawler{
		client:   newClient(timeout).SetDoNotParseResponse(true),
		ttl:      ttl,
		maxBytes: maxBytes,
		maxChars: maxChars,
		log:      logging.With().Str("component", "describe_crawler").Logger(),
		cache:    make(map[string]describeEntry),
	}
}

// Describe returns a description for the link, or empty string. It never
// errors: enrichment is best effort.
func (d *DescriptionCrawler) Describe(ctx context.Context, link string) string {
	d.mu.Lock()
	if entry, ok := d.cache[link]; ok && time.Since(entry.fetchedAt) < d.ttl {
		d.mu.Unlock()
		return entry.description
	}
	d.mu.Unlock()

	desc := d.fetch(ctx, link)

	d.mu.Lock()
	d.cache[link] = describeEntry{description: desc, fetchedAt: time.Now()}
	d.mu.Unlock()
	return desc
}

func (d *DescriptionCrawler) fetch(ctx context.Context, link string) string {
	resp, err := d.client.R().SetContext(ctx).Get(link)
	if err != nil {
		d.log.Debug().Err(err).Str("link", link).Msg("description fetch failed")
		return ""
	}
	body := resp.RawBody()
	if body == nil {
		return ""
	}
	defer body.Close()

	if !resp.IsSuccess() {
		return ""
	}

	desc := extractMetaDescription(io.LimitReader(body, d.maxBytes))
	return truncate(desc, d.maxChars)
}

// extractMetaDescription scans document head metadata. og:description wins
// over the plain description tag.
func extractMetaDescription(r io.Reader) string {
	z := html.NewTokenizer(r)
	plain := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return plain
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.Data == "body" {
			// Meta tags live in the head; stop before scanning content.
			return plain
		}
		if tok.Data != "meta" {
			continue
		}

		var name, property, content string
		for _, a := range tok.Attr {
			switch a.Key {
			case "name":
				name = a.Val
			case "property":
				property = a.Val
			case "content":
				content = a.Val
			}
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if strings.EqualFold(property, "og:description") {
			return content
		}
		if strings.EqualFold(name, "description") && plain == "" {
			plain = content
		}
	}
}

// Sweep drops expired cache entries. Runs under the supervision tree.
func (d *DescriptionCrawler) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := 0
	for link, entry := range d.cache {
		if time.Since(entry.fetchedAt) >= d.ttl {
			delete(d.cache, link)
			removed++
		}
	}
	return removed
}
