// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const tripAdvisorName = "TripAdvisor"

// TripAdvisor fetches nearby attractions from the TripAdvisor Content API.
// The free tier allows 5000 calls per month and caps the search radius at
// 50 miles.
type TripAdvisor struct {
	key    string
	client *resty.Client
	log    zerolog.Logger
}

// NewTripAdvisor builds the fetcher. An empty key disables it.
func NewTripAdvisor(key string, timeout time.Duration) *TripAdvisor {
	client := newClient(timeout).
		SetBaseURL("https://api.content.tripadvisor.com/api/v1").
		SetHeader("Accept", "application/json").
		SetHeader("Referer", "https://www.tripadvisor.com")
	return &TripAdvisor{
		key:    key,
		client: client,
		log:    logging.With().Str("component", "source").Str("source", tripAdvisorName).Logger(),
	}
}

// Name implements Fetcher.
func (t *TripAdvisor) Name() string { return tripAdvisorName }

type tripAdvisorResponse struct {
	Data []struct {
		LocationID  string `json:"location_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		// Distance is miles from the search point, as a decimal string.
		Distance   string `json:"distance"`
		AddressObj struct {
			Street1 string `json:"street1"`
			City    string `json:"city"`
			State   string `json:"state"`
		} `json:"address_obj"`
	} `json:"data"`
}

// Fetch implements Fetcher.
func (t *TripAdvisor) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if t.key == "" {
		skipNoCredential(tripAdvisorName)
		return nil, nil
	}
	start := time.Now()

	radius := int(q.RadiusMiles)
	if radius > 50 {
		radius = 50
	}

	var out tripAdvisorResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latLong":    fmt.Sprintf("%f,%f", q.Lat, q.Lng),
			"radius":     strconv.Itoa(radius),
			"radiusUnit": "mi",
			"language":   "en",
			"key":        t.key,
		}).
		SetResult(&out).
		Get("/location/nearby_search")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(tripAdvisorName, "network").Inc()
		return nil, fmt.Errorf("tripadvisor request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(tripAdvisorName, "status").Inc()
		return nil, fmt.Errorf("tripadvisor status %d", resp.StatusCode())
	}

	kidFriendly := false
	limit := clampLimit(q.Limit, 10, 25)
	items := make([]models.RawItem, 0, limit)
	for _, loc := range out.Data {
		if loc.Name == "" {
			continue
		}

		var address []string
		for _, part := range []string{loc.AddressObj.Street1, loc.AddressObj.City, loc.AddressObj.State} {
			if part != "" {
				address = append(address, part)
			}
		}

		link := ""
		if loc.LocationID != "" {
			link = "https://www.tripadvisor.com/Attraction_Review-g" + loc.LocationID
		}

		desc := loc.Description
		if desc == "" {
			desc = "TripAdvisor listing"
		}

		item := models.RawItem{
			Title:       loc.Name,
			Link:        link,
			Description: truncate(desc, 500),
			Location:    strings.Join(address, ", "),
			Source:      tripAdvisorName,
			ExternalID:  "tripadvisor_" + loc.LocationID,
			Category:    models.CategoryAttractions,
			Price:       models.PriceCheap,
			KidFriendly: &kidFriendly,
		}
		if miles, err := strconv.ParseFloat(loc.Distance, 64); err == nil {
			travel := int(math.Round(miles / 25 * 60))
			if travel < 5 {
				travel = 5
			}
			item.DistanceMiles = &miles
			item.TravelTimeMin = &travel
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}

	metrics.ObserveFetch(tripAdvisorName, start, len(items))
	return items, nil
}
