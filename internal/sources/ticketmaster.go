// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const ticketmasterName = "Ticketmaster"

// Ticketmaster fetches upcoming events from the Discovery API.
type Ticketmaster struct {
	key    string
	client *resty.Client
	log    zerolog.Logger
}

// NewTicketmaster builds the fetcher. An empty key disables it.
func NewTicketmaster(key string, timeout time.Duration) *Ticketmaster {
	return &Ticketmaster{
		key:    key,
		client: newClient(timeout).SetBaseURL("https://app.ticketmaster.com/discovery/v2"),
		log:    logging.With().Str("component", "source").Str("source", ticketmasterName).Logger(),
	}
}

// Name implements Fetcher.
func (t *Ticketmaster) Name() string { return ticketmasterName }

type ticketmasterResponse struct {
	Embedded struct {
		Events []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			URL   string `json:"url"`
			Info  string `json:"info"`
			Dates struct {
				Start struct {
					LocalDate string `json:"localDate"`
					LocalTime string `json:"localTime"`
				} `json:"start"`
			} `json:"dates"`
			Classifications []struct {
				Segment struct {
					Name string `json:"name"`
				} `json:"segment"`
			} `json:"classifications"`
			PriceRanges []struct {
				Min float64 `json:"min"`
			} `json:"priceRanges"`
			Embedded struct {
				Venues []struct {
					Name string `json:"name"`
					City struct {
						Name string `json:"name"`
					} `json:"city"`
					State struct {
						StateCode string `json:"stateCode"`
					} `json:"state"`
					Location struct {
						Latitude  string `json:"latitude"`
						Longitude string `json:"longitude"`
					} `json:"location"`
				} `json:"venues"`
			} `json:"_embedded"`
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"events"`
	} `json:"_embedded"`
}

// Fetch implements Fetcher.
func (t *Ticketmaster) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if t.key == "" {
		skipNoCredential(ticketmasterName)
		return nil, nil
	}
	start := time.Now()

	var out ticketmasterResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":        t.key,
			"latlong":       fmt.Sprintf("%f,%f", q.Lat, q.Lng),
			"radius":        strconv.Itoa(max(int(q.RadiusMiles), 1)),
			"unit":          "miles",
			"size":          strconv.Itoa(clampLimit(q.Limit, 20, 100)),
			"sort":          "date,asc",
			"startDateTime": time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		}).
		SetResult(&out).
		Get("/events.json")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(ticketmasterName, "network").Inc()
		return nil, fmt.Errorf("ticketmaster request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(ticketmasterName, "status").Inc()
		return nil, fmt.Errorf("ticketmaster status %d", resp.StatusCode())
	}

	items := make([]models.RawItem, 0, len(out.Embedded.Events))
	for _, ev := range out.Embedded.Events {
		segment := ""
		if len(ev.Classifications) > 0 {
			segment = ev.Classifications[0].Segment.Name
		}

		price := models.PriceModerate
		if len(ev.PriceRanges) > 0 && ev.PriceRanges[0].Min == 0 {
			price = models.PriceFree
		}

		item := models.RawItem{
			Title:       ev.Name,
			Link:        ev.URL,
			Description: truncate(ev.Info, 500),
			Source:      ticketmasterName,
			ExternalID:  "tm_" + ev.ID,
			Category:    CategoryForSegment(segment),
			Price:       price,
			EventDate:   ev.Dates.Start.LocalDate,
			EventTime:   ev.Dates.Start.LocalTime,
		}
		if len(ev.Images) > 0 {
			item.PhotoURL = ev.Images[0].URL
		}
		if len(ev.Embedded.Venues) > 0 {
			v := ev.Embedded.Venues[0]
			parts := []string{}
			if v.Name != "" {
				parts = append(parts, v.Name)
			}
			if v.City.Name != "" {
				city := v.City.Name
				if v.State.StateCode != "" {
					city += ", " + v.State.StateCode
				}
				parts = append(parts, city)
			}
			item.Location = strings.Join(parts, ", ")

			// Venue coordinates skip geocoding entirely when present.
			if lat, err := strconv.ParseFloat(v.Location.Latitude, 64); err == nil {
				if lng, err := strconv.ParseFloat(v.Location.Longitude, 64); err == nil {
					item.Lat, item.Lng = lat, lng
				}
			}
		}
		items = append(items, item)
	}

	metrics.ObserveFetch(ticketmasterName, start, len(items))
	return items, nil
}
