// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer/internal/geo"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const npsName = "National Park Service"

// NPS fetches national park sites from the NPS API. The API is state
// scoped, not radius scoped; parks outside the user's radius are dropped
// here using their published coordinates.
type NPS struct {
	key    string
	client *resty.Client
	log    zerolog.Logger
}

// NewNPS builds the fetcher. An empty key disables it.
func NewNPS(key string, timeout time.Duration) *NPS {
	return &NPS{
		key:    key,
		client: newClient(timeout).SetBaseURL("https://developer.nps.gov/api/v1"),
		log:    logging.With().Str("component", "source").Str("source", npsName).Logger(),
	}
}

// Name implements Fetcher.
func (n *NPS) Name() string { return npsName }

type npsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		FullName    string `json:"fullName"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Latitude    string `json:"latitude"`
		Longitude   string `json:"longitude"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
		EntranceFees []struct {
			Cost string `json:"cost"`
		} `json:"entranceFees"`
	} `json:"data"`
}

// Fetch implements Fetcher.
func (n *NPS) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if n.key == "" {
		skipNoCredential(npsName)
		return nil, nil
	}
	start := time.Now()

	params := map[string]string{
		"api_key": n.key,
		"limit":   strconv.Itoa(clampLimit(q.Limit, 25, 50)),
	}
	if state := geo.RegionHint(q.Location); state != "" {
		params["stateCode"] = state
	}

	var out npsResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get("/parks")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(npsName, "network").Inc()
		return nil, fmt.Errorf("nps request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(npsName, "status").Inc()
		return nil, fmt.Errorf("nps status %d", resp.StatusCode())
	}

	kidFriendly := true
	items := make([]models.RawItem, 0, len(out.Data))
	for _, park := range out.Data {
		lat, err1 := strconv.ParseFloat(park.Latitude, 64)
		lng, err2 := strconv.ParseFloat(park.Longitude, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if q.RadiusMiles > 0 && geo.Haversine(q.Lat, q.Lng, lat, lng) > q.RadiusMiles {
			continue
		}

		price := models.PriceFree
		for _, fee := range park.EntranceFees {
			if cost, err := strconv.ParseFloat(fee.Cost, 64); err == nil && cost > 0 {
				price = models.PriceCheap
				break
			}
		}

		item := models.RawItem{
			Title:         park.FullName,
			Link:          park.URL,
			Description:   truncate(park.Description, 500),
			Source:        npsName,
			ExternalID:    "nps_" + park.ID,
			Category:      models.CategoryNature,
			Price:         price,
			KidFriendly:   &kidFriendly,
			IndoorOutdoor: "outdoor",
			Lat:           lat,
			Lng:           lng,
		}
		if len(park.Images) > 0 {
			item.PhotoURL = park.Images[0].URL
		}
		items = append(items, item)
	}

	metrics.ObserveFetch(npsName, start, len(items))
	return items, nil
}
