// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package geo

import (
	"regexp"
	"strings"
)

// LocationKind classifies a raw location string. The kind drives the
// normalizer's resolution tier: addresses and venues geocode to exact,
// city-only geocodes to estimated, none skips geocoding entirely.
type LocationKind int

const (
	LocationNone LocationKind = iota
	LocationCityOnly
	LocationVenue
	LocationAddress
)

// String returns the kind's name for logs.
func (k LocationKind) String() string {
	switch k {
	case LocationCityOnly:
		return "city_only"
	case LocationVenue:
		return "venue"
	case LocationAddress:
		return "address"
	default:
		return "none"
	}
}

var (
	// streetAddressRe matches a leading street number followed by a street
	// type suffix somewhere in the string, e.g. "123 Main St".
	streetAddressRe = regexp.MustCompile(`(?i)^\d+\s+\S+.*\b(st|street|ave|avenue|blvd|boulevard|rd|road|dr|drive|way|ln|lane|ct|court|pl|place|pkwy|parkway|hwy|highway|terrace|ter|cir|circle)\.?\b`)

	// cityOnlyRe matches "City, XX" with nothing else.
	cityOnlyRe = regexp.MustCompile(`^[A-Za-z .'\-]+,\s*[A-Z]{2}\.?$`)

	// regionSuffixRe detects a trailing state/province abbreviation.
	regionSuffixRe = regexp.MustCompile(`,\s*[A-Z]{2}\b`)
)

// Classify buckets a raw location string into one of the four location
// kinds using pattern heuristics. Anything that is neither a street
// address nor a bare "City, XX" is treated as a venue name, which still
// geocodes to a usable point.
func Classify(location string) LocationKind {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return LocationNone
	}

	if streetAddressRe.MatchString(loc) {
		return LocationAddress
	}
	if cityOnlyRe.MatchString(loc) {
		return LocationCityOnly
	}
	return LocationVenue
}

// CleanLocation strips feed artifacts from a location string. Scraped
// locations often arrive as "Venue | Address | City"; the longest segment
// is the most specific one.
func CleanLocation(location string) string {
	loc := strings.TrimSpace(location)
	if !strings.Contains(loc, "|") {
		return loc
	}
	longest := ""
	for _, part := range strings.Split(loc, "|") {
		if part = strings.TrimSpace(part); len(part) > len(longest) {
			longest = part
		}
	}
	return longest
}

// AppendRegionHint appends the user's region abbreviation when the string
// lacks one, improving geocode precision for bare venue names.
func AppendRegionHint(location, hint string) string {
	if hint == "" || regionSuffixRe.MatchString(location) {
		return location
	}
	return location + ", " + hint
}

// RegionHint extracts a two-letter region abbreviation from the user's own
// address, e.g. "Oakland, CA" yields "CA". Empty when none is present.
func RegionHint(userAddress string) string {
	m := regionSuffixRe.FindString(userAddress)
	if m == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(m, ","))
}
