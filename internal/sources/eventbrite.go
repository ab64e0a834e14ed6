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
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const eventbriteName = "Eventbrite"

// Eventbrite fetches local events. With an API token it uses the events
// API; without one it can fall back to scraping the public city discovery
// page's JSON-LD, which needs no credential.
type Eventbrite struct {
	token       string
	allowScrape bool
	client      *resty.Client
	scrape      *resty.Client
	log         zerolog.Logger
}

// NewEventbrite builds the fetcher. With no token and scraping disabled it
// short-circuits.
func NewEventbrite(token string, allowScrape bool, timeout time.Duration) *Eventbrite {
	return &Eventbrite{
		token:       token,
		allowScrape: allowScrape,
		client:      newClient(timeout).SetBaseURL("https://www.eventbriteapi.com/v3"),
		scrape:      newClient(timeout).SetBaseURL("https://www.eventbrite.com"),
		log:         logging.With().Str("component", "source").Str("source", eventbriteName).Logger(),
	}
}

// Name implements Fetcher.
func (e *Eventbrite) Name() string { return eventbriteName }

type eventbriteAPIResponse struct {
	Events []struct {
		ID   string `json:"id"`
		Name struct {
			Text string `json:"text"`
		} `json:"name"`
		Description struct {
			Text string `json:"text"`
		} `json:"description"`
		URL   string `json:"url"`
		Start struct {
			Local string `json:"local"`
		} `json:"start"`
		IsFree bool `json:"is_free"`
		Venue  *struct {
			Name    string `json:"name"`
			Address struct {
				LocalizedAddressDisplay string `json:"localized_address_display"`
			} `json:"address"`
		} `json:"venue"`
	} `json:"events"`
}

// Fetch implements Fetcher.
func (e *Eventbrite) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if e.token == "" && !e.allowScrape {
		skipNoCredential(eventbriteName)
		return nil, nil
	}
	start := time.Now()

	var items []models.RawItem
	var err error
	if e.token != "" {
		items, err = e.fetchAPI(ctx, q)
	} else {
		items, err = e.fetchScrape(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	metrics.ObserveFetch(eventbriteName, start, len(items))
	return items, nil
}

func (e *Eventbrite) fetchAPI(ctx context.Context, q Query) ([]models.RawItem, error) {
	var out eventbriteAPIResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetAuthToken(e.token).
		SetQueryParams(map[string]string{
			"location.latitude":  fmt.Sprintf("%f", q.Lat),
			"location.longitude": fmt.Sprintf("%f", q.Lng),
			"location.within":    fmt.Sprintf("%dmi", max(int(q.RadiusMiles), 1)),
			"expand":             "venue",
		}).
		SetResult(&out).
		Get("/events/search/")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(eventbriteName, "network").Inc()
		return nil, fmt.Errorf("eventbrite request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(eventbriteName, "status").Inc()
		return nil, fmt.Errorf("eventbrite status %d", resp.StatusCode())
	}

	items := make([]models.RawItem, 0, len(out.Events))
	for _, ev := range out.Events {
		if ev.Name.Text == "" {
			continue
		}
		price := models.PriceModerate
		if ev.IsFree {
			price = models.PriceFree
		}
		location := ""
		if ev.Venue != nil {
			location = ev.Venue.Name
			if addr := ev.Venue.Address.LocalizedAddressDisplay; addr != "" {
				location = addr
			}
		}
		items = append(items, models.RawItem{
			Title:       ev.Name.Text,
			Link:        ev.URL,
			Description: truncate(ev.Description.Text, 500),
			Location:    location,
			Source:      eventbriteName,
			ExternalID:  "eb_" + ev.ID,
			Category:    models.CategoryEvents,
			Price:       price,
			EventDate:   ev.Start.Local,
		})
	}
	return items, nil
}

// fetchScrape parses the public city discovery page's JSON-LD event
// listings.
func (e *Eventbrite) fetchScrape(ctx context.Context, q Query) ([]models.RawItem, error) {
	slug := citySlug(q.Location)
	if slug == "" {
		return nil, nil
	}

	resp, err := e.scrape.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/d/%s/events/", slug))
	if err != nil {
		metrics.FetchErrors.WithLabelValues(eventbriteName, "network").Inc()
		return nil, fmt.Errorf("eventbrite scrape: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(eventbriteName, "status").Inc()
		return nil, fmt.Errorf("eventbrite scrape status %d", resp.StatusCode())
	}

	limit := clampLimit(q.Limit, 20, 40)
	events := parseLDEvents(extractJSONLD(string(resp.Body())))
	items := make([]models.RawItem, 0, len(events))
	for _, ev := range events {
		if ev.Name == "" {
			continue
		}
		price := models.PriceModerate
		if ldEventFree(ev.Offers) {
			price = models.PriceFree
		}
		items = append(items, models.RawItem{
			Title:       ev.Name,
			Link:        ev.URL,
			Description: truncate(ev.Description, 500),
			Location:    ldEventLocation(ev.Location),
			Source:      eventbriteName,
			Category:    models.CategoryEvents,
			Price:       price,
			EventDate:   ev.StartDate,
			PhotoURL:    ldEventImage(ev.Image),
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}
