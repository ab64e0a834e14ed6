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

const overpassName = "OpenStreetMap"

// Overpass fetches parks, playgrounds, museums, libraries, nature reserves,
// and viewpoints from the OSM Overpass API within a bounding box around the
// user. OSM data is free and keyless, so this fetcher is always available.
type Overpass struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewOverpass builds the fetcher against the given interpreter endpoint.
func NewOverpass(baseURL string, timeout time.Duration) *Overpass {
	return &Overpass{
		client: newClient(timeout).SetBaseURL(baseURL),
		log:    logging.With().Str("component", "source").Str("source", overpassName).Logger(),
	}
}

// Name implements Fetcher.
func (o *Overpass) Name() string { return overpassName }

type overpassResponse struct {
	Elements []struct {
		Type   string  `json:"type"`
		ID     int64   `json:"id"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Fetch implements Fetcher. The bounding box approximates the query radius
// with one degree of latitude per 69 miles.
func (o *Overpass) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	start := time.Now()

	delta := q.RadiusMiles / 69.0
	bbox := fmt.Sprintf("%f,%f,%f,%f", q.Lat-delta, q.Lng-delta, q.Lat+delta, q.Lng+delta)
	query := fmt.Sprintf(`[out:json][timeout:10];
(
  node["leisure"~"park|playground|garden|nature_reserve"](%[1]s);
  way["leisure"~"park|playground|garden|nature_reserve"](%[1]s);
  node["tourism"~"museum|gallery|viewpoint|attraction"](%[1]s);
  way["tourism"~"museum|gallery|viewpoint|attraction"](%[1]s);
  node["amenity"="library"](%[1]s);
);
out center %[2]d;`, bbox, clampLimit(q.Limit, 30, 60))

	var out overpassResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"data": query}).
		SetResult(&out).
		Post("")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(overpassName, "network").Inc()
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(overpassName, "status").Inc()
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode())
	}

	items := make([]models.RawItem, 0, len(out.Elements))
	for _, el := range out.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lng == 0 {
			continue
		}

		category := CategoryForOverpassTags(el.Tags)
		kidFriendly := category == models.CategoryParks ||
			category == models.CategoryFamily ||
			category == models.CategoryMuseums ||
			category == models.CategoryCommunity

		outdoor := "outdoor"
		if category == models.CategoryMuseums || category == models.CategoryArts ||
			category == models.CategoryCommunity {
			outdoor = "indoor"
		}

		items = append(items, models.RawItem{
			Title:         name,
			Source:        overpassName,
			ExternalID:    fmt.Sprintf("osm_%s_%d", el.Type, el.ID),
			Category:      category,
			Price:         models.PriceFree,
			KidFriendly:   &kidFriendly,
			IndoorOutdoor: outdoor,
			Lat:           lat,
			Lng:           lng,
		})
	}

	metrics.ObserveFetch(overpassName, start, len(items))
	return items, nil
}
