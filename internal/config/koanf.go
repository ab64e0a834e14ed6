// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wayfarer/config.yaml",
	"/etc/wayfarer/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults load
// first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8787,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:           "/data/wayfarer",
			InMemory:       false,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
			SweepInterval:  15 * time.Minute,
		},
		Geocoder: GeocoderConfig{
			BaseURL:       "https://nominatim.openstreetmap.org",
			UserAgent:     "wayfarer/1.0 (https://github.com/wayfarerhq/wayfarer)",
			Timeout:       3 * time.Second,
			RatePerSec:    1, // Nominatim usage policy: max 1 req/s
			NegativeTTL:   6 * time.Hour,
			RateLimitHold: 5 * time.Minute,
		},
		Sources: SourcesConfig{
			OverpassURL:      "https://overpass-api.de/api/interpreter",
			OverpassEnabled:  true,
			EventbriteScrape: true,
			LumaEnabled:      true,
			MeetupEnabled:    true,
			PatchEnabled:     true,
			FeedURLs:         []string{},
			FamiliesFeedURL:  "",
			FetchTimeout:     5 * time.Second,
			GlobalDeadline:   8 * time.Second,
			MaxWorkers:       16,
			MaxRawItems:      60,
		},
		Cache: CacheConfig{
			FreshWindow:  5 * time.Minute,
			StaleWindow:  15 * time.Minute,
			SecondaryTTL: time.Hour,
		},
		Breaker: BreakerConfig{
			MaxFailures: 3,
			Window:      10 * time.Minute,
		},
		Filter: FilterConfig{
			DedupWindowDays: 365,
			RecentWeeks:     4,
			AvgSpeedMPH:     25,
			MinRadiusMiles:  3,
			RelaxFactor:     1.5,
		},
		Ranking: RankingConfig{
			BaseScore:             50,
			DistancePresentBonus:  30,
			DistanceAbsentPenalty: 20,
			NearBonus:             15,
			MidBonus:              10,
			FarBonus:              5,
			FarPenaltyCap:         15,
			InterestStrongBonus:   25,
			InterestWeakBonus:     15,
			FamilyKidBonus:        15,
			FamilyInterestBonus:   10,
			FreeBonus:             5,
			EventDateBonus:        5,
			RatingWeight:          5,
			MinPerSource:          4,
		},
		API: APIConfig{
			DefaultCount:    15,
			MaxCount:        30,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Crawler: CrawlerConfig{
			Enabled:  true,
			Timeout:  4 * time.Second,
			CacheTTL: 24 * time.Hour,
			MaxBytes: 512 << 10,
			MaxChars: 1000,
		},
	}
}

// Load reads configuration using koanf with layered sources:
//  1. Defaults: built-in struct values
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, honoring the
// CONFIG_PATH override, or empty string when none is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from environment variables.
var sliceConfigPaths = []string{
	"sources.feed_urls",
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are skipped so unrelated environment noise cannot
// pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Database
		"badger_path":           "database.path",
		"badger_in_memory":      "database.in_memory",
		"badger_gc_interval":    "database.gc_interval",
		"badger_sweep_interval": "database.sweep_interval",

		// Geocoder
		"geocoder_base_url":        "geocoder.base_url",
		"geocoder_user_agent":      "geocoder.user_agent",
		"geocoder_timeout":         "geocoder.timeout",
		"geocoder_rate_per_sec":    "geocoder.rate_per_sec",
		"geocoder_negative_ttl":    "geocoder.negative_ttl",
		"geocoder_rate_limit_hold": "geocoder.rate_limit_hold",

		// Source credentials and limits
		"google_places_api_key":   "sources.google_places_key",
		"yelp_api_key":            "sources.yelp_key",
		"ticketmaster_api_key":    "sources.ticketmaster_key",
		"nps_api_key":             "sources.nps_key",
		"eventbrite_token":        "sources.eventbrite_token",
		"tripadvisor_api_key":     "sources.tripadvisor_key",
		"overpass_url":            "sources.overpass_url",
		"overpass_enabled":        "sources.overpass_enabled",
		"eventbrite_scrape":       "sources.eventbrite_scrape",
		"luma_enabled":            "sources.luma_enabled",
		"meetup_enabled":          "sources.meetup_enabled",
		"patch_enabled":           "sources.patch_enabled",
		"feed_urls":               "sources.feed_urls",
		"families_feed_url":       "sources.families_feed_url",
		"sources_fetch_timeout":   "sources.fetch_timeout",
		"sources_global_deadline": "sources.global_deadline",
		"sources_max_workers":     "sources.max_workers",
		"sources_max_raw_items":   "sources.max_raw_items",

		// Cache windows
		"cache_fresh_window":  "cache.fresh_window",
		"cache_stale_window":  "cache.stale_window",
		"cache_secondary_ttl": "cache.secondary_ttl",

		// Circuit breaker
		"breaker_max_failures": "breaker.max_failures",
		"breaker_window":       "breaker.window",

		// Filters
		"dedup_window_days": "filter.dedup_window_days",
		"recent_weeks":      "filter.recent_weeks",
		"avg_speed_mph":     "filter.avg_speed_mph",
		"min_radius_miles":  "filter.min_radius_miles",
		"relax_factor":      "filter.relax_factor",

		// API
		"api_default_count":   "api.default_count",
		"api_max_count":       "api.max_count",
		"cors_origins":        "api.cors_origins",
		"rate_limit_requests": "api.rate_limit_reqs",
		"rate_limit_window":   "api.rate_limit_window",

		// Description crawler
		"crawler_enabled":   "crawler.enabled",
		"crawler_timeout":   "crawler.timeout",
		"crawler_cache_ttl": "crawler.cache_ttl",
		"crawler_max_bytes": "crawler.max_bytes",
		"crawler_max_chars": "crawler.max_chars",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
