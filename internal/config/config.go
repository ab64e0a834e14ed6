// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package config defines the layered application configuration and its
// validation. Every tuning value the engine consumes (score bonuses, cache
// windows, breaker limits, timeouts) lives here rather than as literals.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Geocoder GeocoderConfig `koanf:"geocoder"`
	Sources  SourcesConfig  `koanf:"sources"`
	Cache    CacheConfig    `koanf:"cache"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Filter   FilterConfig   `koanf:"filter"`
	Ranking  RankingConfig  `koanf:"ranking"`
	API      APIConfig      `koanf:"api"`
	Crawler  CrawlerConfig  `koanf:"crawler"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production test"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig controls the zerolog facade.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig controls the BadgerDB store.
type DatabaseConfig struct {
	Path           string        `koanf:"path" validate:"required"`
	InMemory       bool          `koanf:"in_memory"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
}

// GeocoderConfig controls the Nominatim client.
type GeocoderConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	UserAgent   string        `koanf:"user_agent" validate:"required"`
	Timeout     time.Duration `koanf:"timeout"`
	RatePerSec  float64       `koanf:"rate_per_sec" validate:"gt=0"`
	NegativeTTL time.Duration `koanf:"negative_ttl"`
	// RateLimitHold is how long geocoding is suspended after an upstream
	// 429 before requests resume.
	RateLimitHold time.Duration `koanf:"rate_limit_hold"`
}

// SourcesConfig carries credentials and limits for the source fetchers.
// A fetcher whose key is empty short-circuits to an empty result with no
// network call.
type SourcesConfig struct {
	GooglePlacesKey  string `koanf:"google_places_key"`
	YelpKey          string `koanf:"yelp_key"`
	TicketmasterKey  string `koanf:"ticketmaster_key"`
	NPSKey           string `koanf:"nps_key"`
	EventbriteToken  string `koanf:"eventbrite_token"`
	TripAdvisorKey   string `koanf:"tripadvisor_key"`
	OverpassURL      string `koanf:"overpass_url"`
	OverpassEnabled  bool   `koanf:"overpass_enabled"`
	EventbriteScrape bool   `koanf:"eventbrite_scrape"`
	LumaEnabled      bool   `koanf:"luma_enabled"`
	MeetupEnabled    bool   `koanf:"meetup_enabled"`
	PatchEnabled     bool   `koanf:"patch_enabled"`
	// FeedURLs are generic RSS/Atom feeds polled by the feeds fetcher.
	FeedURLs []string `koanf:"feed_urls"`
	// FamiliesFeedURL is the kid-focused events feed with venue lines in
	// item bodies.
	FamiliesFeedURL string `koanf:"families_feed_url"`

	// FetchTimeout bounds each individual upstream request and must be
	// shorter than GlobalDeadline.
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`
	GlobalDeadline time.Duration `koanf:"global_deadline"`
	MaxWorkers     int           `koanf:"max_workers" validate:"gte=1"`
	// MaxRawItems caps how many raw items are normalized per request;
	// normalization can geocode per item, so the cap bounds request cost.
	MaxRawItems int `koanf:"max_raw_items" validate:"gte=1"`
}

// CacheConfig controls both cache tiers.
type CacheConfig struct {
	// FreshWindow is the age under which warm entries serve directly.
	FreshWindow time.Duration `koanf:"fresh_window"`
	// StaleWindow is the age under which warm entries serve while a
	// background refresh runs. Beyond it a blocking fetch is required.
	StaleWindow time.Duration `koanf:"stale_window"`
	// SecondaryTTL is the durable fallback cache's explicit expiry.
	SecondaryTTL time.Duration `koanf:"secondary_ttl"`
}

// BreakerConfig controls the per-source circuit breakers.
type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures" validate:"gte=1"`
	Window      time.Duration `koanf:"window"`
}

// FilterConfig controls dedup windows and travel geometry.
type FilterConfig struct {
	DedupWindowDays int     `koanf:"dedup_window_days" validate:"gte=1"`
	RecentWeeks     int     `koanf:"recent_weeks" validate:"gte=1"`
	AvgSpeedMPH     float64 `koanf:"avg_speed_mph" validate:"gt=0"`
	MinRadiusMiles  float64 `koanf:"min_radius_miles" validate:"gt=0"`
	RelaxFactor     float64 `koanf:"relax_factor" validate:"gte=1"`
}

// RankingConfig exposes the additive scoring weights and diversity limits.
// The defaults encode the intended relative policy; individual weights are
// product tuning values.
type RankingConfig struct {
	BaseScore             float64 `koanf:"base_score"`
	DistancePresentBonus  float64 `koanf:"distance_present_bonus"`
	DistanceAbsentPenalty float64 `koanf:"distance_absent_penalty"`
	NearBonus             float64 `koanf:"near_bonus"`      // <= 5 mi
	MidBonus              float64 `koanf:"mid_bonus"`       // <= 10 mi
	FarBonus              float64 `koanf:"far_bonus"`       // <= 20 mi
	FarPenaltyCap         float64 `koanf:"far_penalty_cap"` // beyond 20 mi
	InterestStrongBonus   float64 `koanf:"interest_strong_bonus"`
	InterestWeakBonus     float64 `koanf:"interest_weak_bonus"`
	FamilyKidBonus        float64 `koanf:"family_kid_bonus"`
	FamilyInterestBonus   float64 `koanf:"family_interest_bonus"`
	FreeBonus             float64 `koanf:"free_bonus"`
	EventDateBonus        float64 `koanf:"event_date_bonus"`
	RatingWeight          float64 `koanf:"rating_weight"`
	// MinPerSource floors the diversity cap; the effective cap is
	// max(MinPerSource, requestedCount/3).
	MinPerSource int `koanf:"min_per_source" validate:"gte=1"`
}

// APIConfig controls the HTTP surface.
type APIConfig struct {
	DefaultCount    int           `koanf:"default_count" validate:"gte=1"`
	MaxCount        int           `koanf:"max_count" validate:"gte=1"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// CrawlerConfig controls the description enrichment crawler.
type CrawlerConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
	MaxBytes int64         `koanf:"max_bytes" validate:"gte=1024"`
	MaxChars int           `koanf:"max_chars" validate:"gte=1"`
}

// Validate checks struct tags plus the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if c.Sources.FetchTimeout >= c.Sources.GlobalDeadline {
		return fmt.Errorf("sources.fetch_timeout (%s) must be shorter than sources.global_deadline (%s)",
			c.Sources.FetchTimeout, c.Sources.GlobalDeadline)
	}
	if c.Cache.FreshWindow >= c.Cache.StaleWindow {
		return fmt.Errorf("cache.fresh_window (%s) must be shorter than cache.stale_window (%s)",
			c.Cache.FreshWindow, c.Cache.StaleWindow)
	}
	if c.API.DefaultCount > c.API.MaxCount {
		return fmt.Errorf("api.default_count (%d) exceeds api.max_count (%d)",
			c.API.DefaultCount, c.API.MaxCount)
	}
	return nil
}
