// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/net/html"
)

// Helpers for the scraping fetchers. Scraped markup is hostile input:
// every extraction degrades to "nothing found" rather than erroring.

// extractScripts returns the text content of every <script> element
// matching the attribute predicate.
func extractScripts(body string, match func(attrs []html.Attribute) bool) []string {
	var out []string
	z := html.NewTokenizer(strings.NewReader(body))
	inMatch := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			tok := z.Token()
			if tok.Data == "script" && match(tok.Attr) {
				inMatch = true
			}
		case html.TextToken:
			if inMatch {
				out = append(out, string(z.Text()))
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "script" {
				inMatch = false
			}
		}
	}
}

// extractJSONLD returns every JSON-LD script block in the document.
func extractJSONLD(body string) []string {
	return extractScripts(body, func(attrs []html.Attribute) bool {
		for _, a := range attrs {
			if a.Key == "type" && strings.EqualFold(a.Val, "application/ld+json") {
				return true
			}
		}
		return false
	})
}

// extractNextData returns the Next.js data payload, or empty string.
func extractNextData(body string) string {
	blocks := extractScripts(body, func(attrs []html.Attribute) bool {
		for _, a := range attrs {
			if a.Key == "id" && a.Val == "__NEXT_DATA__" {
				return true
			}
		}
		return false
	})
	if len(blocks) == 0 {
		return ""
	}
	return blocks[0]
}

// ldEvent is the subset of a schema.org Event the fetchers consume.
type ldEvent struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	StartDate   string `json:"startDate"`
	Description string `json:"description"`
	Image       any    `json:"image"`
	Location    any    `json:"location"`
	Offers      any    `json:"offers"`
}

// parseLDEvents decodes JSON-LD blocks into events, accepting a single
// object, an array, or an @graph wrapper. Malformed blocks are skipped.
func parseLDEvents(blocks []string) []ldEvent {
	var events []ldEvent
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var single ldEvent
		if err := json.Unmarshal([]byte(block), &single); err == nil && isEventType(single.Type) {
			events = append(events, single)
			continue
		}

		var list []ldEvent
		if err := json.Unmarshal([]byte(block), &list); err == nil {
			for _, ev := range list {
				if isEventType(ev.Type) {
					events = append(events, ev)
				}
			}
			continue
		}

		var graph struct {
			Graph []ldEvent `json:"@graph"`
		}
		if err := json.Unmarshal([]byte(block), &graph); err == nil {
			for _, ev := range graph.Graph {
				if isEventType(ev.Type) {
					events = append(events, ev)
				}
			}
		}
	}
	return events
}

func isEventType(t string) bool {
	return strings.Contains(strings.ToLower(t), "event")
}

// ldEventLocation flattens an event's location into a display string.
// Location may be a string, an object with name/address, or absent.
func ldEventLocation(loc any) string {
	switch v := loc.(type) {
	case string:
		return v
	case map[string]any:
		parts := []string{}
		if name, ok := v["name"].(string); ok && name != "" {
			parts = append(parts, name)
		}
		switch addr := v["address"].(type) {
		case string:
			parts = append(parts, addr)
		case map[string]any:
			if s, ok := addr["streetAddress"].(string); ok && s != "" {
				parts = append(parts, s)
			}
			locality, _ := addr["addressLocality"].(string)
			region, _ := addr["addressRegion"].(string)
			if locality != "" && region != "" {
				parts = append(parts, locality+", "+region)
			} else if locality != "" {
				parts = append(parts, locality)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// ldEventFree reports whether the event's offers mark it free.
func ldEventFree(offers any) bool {
	check := func(m map[string]any) bool {
		switch p := m["price"].(type) {
		case string:
			return p == "0" || p == "0.00" || strings.EqualFold(p, "free")
		case float64:
			return p == 0
		}
		return false
	}
	switch v := offers.(type) {
	case map[string]any:
		return check(v)
	case []any:
		for _, o := range v {
			if m, ok := o.(map[string]any); ok && check(m) {
				return true
			}
		}
	}
	return false
}

// ldEventImage extracts the first image URL.
func ldEventImage(image any) string {
	switch v := image.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// citySlug converts a location string like "San Francisco, CA" into the
// URL slug scraped discovery pages use, e.g. "san-francisco".
func citySlug(location string) string {
	city := location
	if idx := strings.Index(city, ","); idx >= 0 {
		city = city[:idx]
	}
	city = strings.ToLower(strings.TrimSpace(city))
	return strings.ReplaceAll(city, " ", "-")
}

// stripHTML removes tags from feed-supplied markup and collapses
// whitespace.
func stripHTML(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
