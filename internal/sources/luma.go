// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const lumaName = "Luma"

// Luma scrapes the city discovery page's Next.js data payload. Luma has no
// public API; the page embeds its event list as JSON under __NEXT_DATA__.
type Luma struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewLuma builds the fetcher.
func NewLuma(timeout time.Duration) *Luma {
	return &Luma{
		client: newClient(timeout).SetBaseURL("https://lu.ma"),
		log:    logging.With().Str("component", "source").Str("source", lumaName).Logger(),
	}
}

// Name implements Fetcher.
func (l *Luma) Name() string { return lumaName }

// Fetch implements Fetcher. The payload layout shifts between deploys, so
// the event objects are located by shape (name + start time), not by path.
func (l *Luma) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	slug := citySlug(q.Location)
	if slug == "" {
		return nil, nil
	}
	start := time.Now()

	resp, err := l.client.R().
		SetContext(ctx).
		Get("/" + slug)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(lumaName, "network").Inc()
		return nil, fmt.Errorf("luma request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(lumaName, "status").Inc()
		return nil, fmt.Errorf("luma status %d", resp.StatusCode())
	}

	payload := extractNextData(string(resp.Body()))
	if payload == "" {
		return nil, nil
	}

	var root any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		metrics.FetchErrors.WithLabelValues(lumaName, "decode").Inc()
		return nil, fmt.Errorf("luma payload decode: %w", err)
	}

	limit := clampLimit(q.Limit, 20, 40)
	var items []models.RawItem
	collectLumaEvents(root, &items, limit)

	metrics.ObserveFetch(lumaName, start, len(items))
	return items, nil
}

// collectLumaEvents walks the decoded payload collecting objects that look
// like events: a name plus a start timestamp.
func collectLumaEvents(node any, items *[]models.RawItem, limit int) {
	if len(*items) >= limit {
		return
	}
	switch v := node.(type) {
	case map[string]any:
		if item, ok := lumaEventFromMap(v); ok {
			*items = append(*items, item)
			return
		}
		for _, child := range v {
			collectLumaEvents(child, items, limit)
		}
	case []any:
		for _, child := range v {
			collectLumaEvents(child, items, limit)
		}
	}
}

func lumaEventFromMap(m map[string]any) (models.RawItem, bool) {
	name, _ := m["name"].(string)
	if name == "" {
		return models.RawItem{}, false
	}
	startAt, _ := m["start_at"].(string)
	if startAt == "" {
		startAt, _ = m["startAt"].(string)
	}
	if startAt == "" {
		return models.RawItem{}, false
	}

	item := models.RawItem{
		Title:     name,
		Source:    lumaName,
		Category:  models.CategoryEvents,
		Price:     models.PriceFree, // most Luma community events are free
		EventDate: startAt,
	}
	if apiID, ok := m["api_id"].(string); ok && apiID != "" {
		item.ExternalID = "luma_" + apiID
		item.Link = "https://lu.ma/" + apiID
	} else if u, ok := m["url"].(string); ok {
		item.Link = u
	}
	if addr, ok := m["geo_address_info"].(map[string]any); ok {
		if full, ok := addr["full_address"].(string); ok {
			item.Location = full
		} else if cityState, ok := addr["city_state"].(string); ok {
			item.Location = cityState
		}
	}
	if cover, ok := m["cover_url"].(string); ok {
		item.PhotoURL = cover
	}
	return item, true
}
