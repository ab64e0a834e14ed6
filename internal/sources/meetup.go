// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const meetupName = "Meetup"

// Meetup fetches nearby events. The unauthenticated GraphQL endpoint is
// tried first; when it refuses (it is rate limited aggressively), the
// public search page's JSON-LD is the fallback.
type Meetup struct {
	gql    *resty.Client
	scrape *resty.Client
	log    zerolog.Logger
}

// NewMeetup builds the fetcher.
func NewMeetup(timeout time.Duration) *Meetup {
	return &Meetup{
		gql:    newClient(timeout).SetBaseURL("https://www.meetup.com/gql"),
		scrape: newClient(timeout).SetBaseURL("https://www.meetup.com"),
		log:    logging.With().Str("component", "source").Str("source", meetupName).Logger(),
	}
}

// Name implements Fetcher.
func (m *Meetup) Name() string { return meetupName }

const meetupEventsQuery = `query($lat: Float!, $lon: Float!, $radius: Int!, $first: Int!) {
  rankedEvents(filter: {lat: $lat, lon: $lon, radius: $radius}, input: {first: $first}) {
    edges { node {
      id title eventUrl description dateTime
      venue { name address city state }
      feeSettings { amount }
      images { source }
    } }
  }
}`

type meetupGQLResponse struct {
	Data struct {
		RankedEvents struct {
			Edges []struct {
				Node struct {
					ID          string `json:"id"`
					Title       string `json:"title"`
					EventURL    string `json:"eventUrl"`
					Description string `json:"description"`
					DateTime    string `json:"dateTime"`
					Venue       *struct {
						Name    string `json:"name"`
						Address string `json:"address"`
						City    string `json:"city"`
						State   string `json:"state"`
					} `json:"venue"`
					FeeSettings *struct {
						Amount float64 `json:"amount"`
					} `json:"feeSettings"`
					Images []struct {
						Source string `json:"source"`
					} `json:"images"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"rankedEvents"`
	} `json:"data"`
}

// Fetch implements Fetcher.
func (m *Meetup) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	start := time.Now()

	items, err := m.fetchGraphQL(ctx, q)
	if err != nil {
		m.log.Debug().Err(err).Msg("graphql path failed, trying page scrape")
		items, err = m.fetchScrape(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	metrics.ObserveFetch(meetupName, start, len(items))
	return items, nil
}

func (m *Meetup) fetchGraphQL(ctx context.Context, q Query) ([]models.RawItem, error) {
	var out meetupGQLResponse
	resp, err := m.gql.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"query": meetupEventsQuery,
			"variables": map[string]any{
				"lat":    q.Lat,
				"lon":    q.Lng,
				"radius": max(int(q.RadiusMiles), 1),
				"first":  clampLimit(q.Limit, 20, 40),
			},
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(meetupName, "network").Inc()
		return nil, fmt.Errorf("meetup graphql: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(meetupName, "status").Inc()
		return nil, fmt.Errorf("meetup graphql status %d", resp.StatusCode())
	}

	edges := out.Data.RankedEvents.Edges
	items := make([]models.RawItem, 0, len(edges))
	for _, edge := range edges {
		n := edge.Node
		if n.Title == "" {
			continue
		}
		price := models.PriceFree
		if n.FeeSettings != nil && n.FeeSettings.Amount > 0 {
			price = models.PriceCheap
		}
		location := ""
		if n.Venue != nil {
			location = n.Venue.Name
			if n.Venue.Address != "" {
				location = n.Venue.Address
			}
			if n.Venue.City != "" && n.Venue.State != "" {
				location += ", " + n.Venue.City + ", " + n.Venue.State
			}
		}
		item := models.RawItem{
			Title:       n.Title,
			Link:        n.EventURL,
			Description: truncate(stripHTML(n.Description), 500),
			Location:    location,
			Source:      meetupName,
			ExternalID:  "meetup_" + n.ID,
			Category:    models.CategoryCommunity,
			Price:       price,
			EventDate:   n.DateTime,
		}
		if len(n.Images) > 0 {
			item.PhotoURL = n.Images[0].Source
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *Meetup) fetchScrape(ctx context.Context, q Query) ([]models.RawItem, error) {
	resp, err := m.scrape.R().
		SetContext(ctx).
		Get("/find/?" + url.Values{"location": {q.Location}, "source": {"EVENTS"}}.Encode())
	if err != nil {
		metrics.FetchErrors.WithLabelValues(meetupName, "network").Inc()
		return nil, fmt.Errorf("meetup scrape: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(meetupName, "status").Inc()
		return nil, fmt.Errorf("meetup scrape status %d", resp.StatusCode())
	}

	limit := clampLimit(q.Limit, 20, 40)
	events := parseLDEvents(extractJSONLD(string(resp.Body())))
	items := make([]models.RawItem, 0, len(events))
	for _, ev := range events {
		if ev.Name == "" {
			continue
		}
		price := models.PriceCheap
		if ldEventFree(ev.Offers) {
			price = models.PriceFree
		}
		items = append(items, models.RawItem{
			Title:       ev.Name,
			Link:        ev.URL,
			Description: truncate(ev.Description, 500),
			Location:    ldEventLocation(ev.Location),
			Source:      meetupName,
			Category:    models.CategoryCommunity,
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
