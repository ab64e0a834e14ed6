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

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const yelpName = "Yelp"

// Yelp fetches businesses from the Yelp Fusion search API. Yelp returns a
// straight-line distance in meters, which is passed through as an explicit
// distance hint.
type Yelp struct {
	key    string
	client *resty.Client
	log    zerolog.Logger
}

// NewYelp builds the fetcher. An empty key disables it.
func NewYelp(key string, timeout time.Duration) *Yelp {
	return &Yelp{
		key:    key,
		client: newClient(timeout).SetBaseURL("https://api.yelp.com/v3"),
		log:    logging.With().Str("component", "source").Str("source", yelpName).Logger(),
	}
}

// Name implements Fetcher.
func (y *Yelp) Name() string { return yelpName }

type yelpSearchResponse struct {
	Businesses []struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		URL         string  `json:"url"`
		ImageURL    string  `json:"image_url"`
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"review_count"`
		Price       string  `json:"price"`
		Distance    float64 `json:"distance"` // meters
		Categories  []struct {
			Alias string `json:"alias"`
			Title string `json:"title"`
		} `json:"categories"`
		Location struct {
			DisplayAddress []string `json:"display_address"`
		} `json:"location"`
	} `json:"businesses"`
}

// Fetch implements Fetcher.
func (y *Yelp) Fetch(ctx context.Context, q Query) ([]models.RawItem, error) {
	if y.key == "" {
		skipNoCredential(yelpName)
		return nil, nil
	}
	start := time.Now()

	var out yelpSearchResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetAuthToken(y.key).
		SetQueryParams(map[string]string{
			"latitude":  strconv.FormatFloat(q.Lat, 'f', -1, 64),
			"longitude": strconv.FormatFloat(q.Lng, 'f', -1, 64),
			"radius":    strconv.Itoa(min(int(q.RadiusMiles*metersPerMile), 40000)),
			"term":      YelpTermForInterests(q.Interests),
			"limit":     strconv.Itoa(clampLimit(q.Limit, 20, 50)),
			"sort_by":   "best_match",
		}).
		SetResult(&out).
		Get("/businesses/search")
	if err != nil {
		metrics.FetchErrors.WithLabelValues(yelpName, "network").Inc()
		return nil, fmt.Errorf("yelp request: %w", err)
	}
	if !resp.IsSuccess() {
		metrics.FetchErrors.WithLabelValues(yelpName, "status").Inc()
		return nil, fmt.Errorf("yelp status %d", resp.StatusCode())
	}

	items := make([]models.RawItem, 0, len(out.Businesses))
	for _, b := range out.Businesses {
		aliases := make([]string, 0, len(b.Categories))
		for _, c := range b.Categories {
			aliases = append(aliases, c.Alias)
		}

		location := ""
		if len(b.Location.DisplayAddress) > 0 {
			location = b.Location.DisplayAddress[0]
		}

		miles := b.Distance / metersPerMile
		item := models.RawItem{
			Title:         b.Name,
			Link:          b.URL,
			Location:      location,
			Source:        yelpName,
			ExternalID:    "yelp_" + b.ID,
			Category:      CategoryForYelpAliases(aliases),
			Price:         yelpPriceFlag(b.Price),
			Rating:        b.Rating,
			TotalRatings:  b.ReviewCount,
			PhotoURL:      b.ImageURL,
			DistanceMiles: &miles,
		}
		items = append(items, item)
	}

	metrics.ObserveFetch(yelpName, start, len(items))
	return items, nil
}

// yelpPriceFlag converts Yelp's "$".."$$$$" string, defaulting to "$" when
// the business has no price tier.
func yelpPriceFlag(price string) models.PriceFlag {
	switch price {
	case "$":
		return models.PriceCheap
	case "$$":
		return models.PriceModerate
	case "$$$":
		return models.PricePricey
	case "$$$$":
		return models.PriceLuxury
	default:
		return models.PriceCheap
	}
}
