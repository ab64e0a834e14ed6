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

const googlePlacesName = "Google Places"

// metersPerMile converts the query radius for the Places API.
const metersPerMile = 1609.34

// GooglePlaces fetches nearby places from the Google Places Nearby Search
// API. Results carry coordinates directly, so they resolve to the exact
// tier without geocoding.
type GooglePlaces struct {
	key    string
	client *resty.Client
	log    zerolog.Logger
}

// NewGooglePlaces builds the fetcher. An empty key disables it.
func NewGooglePlaces(key string, timeout time.Duration) *GooglePlaces {
	return &GooglePlaces{
		key:    key,
		client: newClient(timeout).SetBaseURL("https://maps.googleapis.com/maps/api/place"),
		log:    logging.With().Str("component", "source").Str("source", googlePlacesName).Logger(),
	}
}

// Name implements Fetcher.
func (g *GooglePlaces) Name() string { return googlePlacesName }

type googlePlacesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Types            []string `json:"types"`
		PriceLevel       *int     `json:"price_level"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// Fetch implements Fetcher. One request is issued per selected category
// (capped at three) so distinct place types are all represented.
func (g *GooglePlaces) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if g.key == "" {
		skipNoCredential(googlePlacesName)
		return nil, nil
	}
	start := time.Now()

	types := g.placeTypes(q.Categories)
	limit := clampLimit(q.Limit, 20, 60)

	var items []models.RawItem
	for _, placeType := range types {
		batch, err := g.fetchType(ctx, q, placeType)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
		if len(items) >= limit {
			items = items[:limit]
			break
		}
	}

	metrics.ObserveFetch(googlePlacesName, start, len(items))
	return items, nil
}

func (g *GooglePlaces) placeTypes(categories []models.Category) []string {
	if len(categories) == 0 {
		return []string{"tourist_attraction"}
	}
	types := make([]string, 0, 3)
	for _, c := range categories {
		if t, ok := categoryGoogleType[c]; ok {
			types = append(types, t)
		}
		if len(types) == 3 {
			break
		}
	}
	if len(types) == 0 {
		types = append(types, "tourist_attraction")
	}
	return types
}

func (g *GooglePlaces) fetchType(ctx context.Context, q Query, placeType string) ([]models.RawItem, error) {
	var out googlePlacesResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%f,%f", q.Lat, q.Lng),
			"radius":   fmt.Sprintf("%d", int(q.RadiusMiles*metersPerMile)),
			"type":     placeType,
			"key":      g.key,
		}).
		SetResult(&out).
		Get("/nearbysearch/json")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(googlePlacesName, "network").Inc()
		return nil, fmt.Errorf("google places request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(googlePlacesName, "status").Inc()
		return nil, fmt.Errorf("google places status %d", resp.StatusCode())
	}
	if out.Status != "OK" && out.Status != "ZERO_RESULTS" {
		metrics.FetchErrors.WithLabelValues(googlePlacesName, "status").Inc()
		return nil, fmt.Errorf("google places api status %s", out.Status)
	}

	items := make([]models.RawItem, 0, len(out.Results))
	for _, p := range out.Results {
		kidFriendly := false
		outdoor := "indoor"
		for _, t := range p.Types {
			if kidFriendlyTypes[t] {
				kidFriendly = true
			}
			if outdoorTypes[t] {
				outdoor = "outdoor"
			}
		}

		price := models.PriceCheap
		if p.PriceLevel != nil {
			price = models.PriceFlagFromLevel(*p.PriceLevel)
		}

		photoURL := ""
		if len(p.Photos) > 0 {
			photoURL = fmt.Sprintf(
				"https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photo_reference=%s&key=%s",
				p.Photos[0].PhotoReference, g.key)
		}

		items = append(items, models.RawItem{
			Title:         p.Name,
			Location:      p.Vicinity,
			Source:        googlePlacesName,
			ExternalID:    p.PlaceID,
			Category:      CategoryForGoogleTypes(p.Types),
			Price:         price,
			KidFriendly:   &kidFriendly,
			Rating:        p.Rating,
			TotalRatings:  p.UserRatingsTotal,
			PhotoURL:      photoURL,
			IndoorOutdoor: outdoor,
			Lat:           p.Geometry.Location.Lat,
			Lng:           p.Geometry.Location.Lng,
		})
	}
	return items, nil
}
