// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package sources

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ldEventPage = `<html><head>
<script type="application/ld+json">
[
  {"@type":"Event","name":"Night Market","url":"https://example.test/e/1",
   "startDate":"2026-09-12","offers":{"price":"0"},
   "location":{"name":"Jack London Square","address":{"addressLocality":"Oakland","addressRegion":"CA"}}},
  {"@type":"Place","name":"Not An Event"}
]
</script>
<script type="application/ld+json">not even json</script>
<script type="application/ld+json">
{"@type":"MusicEvent","name":"Pier Concert","startDate":"2026-09-20",
 "location":"Pier 39, San Francisco, CA","offers":{"price":"25.00"}}
</script>
</head><body></body></html>`

func TestParseLDEvents(t *testing.T) {
	events := parseLDEvents(extractJSONLD(ldEventPage))
	require.Len(t, events, 2)

	assert.Equal(t, "Night Market", events[0].Name)
	assert.True(t, ldEventFree(events[0].Offers))
	assert.Equal(t, "Jack London Square, Oakland, CA", ldEventLocation(events[0].Location))

	assert.Equal(t, "Pier Concert", events[1].Name)
	assert.False(t, ldEventFree(events[1].Offers))
	assert.Equal(t, "Pier 39, San Francisco, CA", ldEventLocation(events[1].Location))
}

func TestExtractNextData(t *testing.T) {
	page := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"events":[]}}</script>
</body></html>`
	assert.JSONEq(t, `{"props":{"events":[]}}`, extractNextData(page))
	assert.Empty(t, extractNextData("<html><body>nothing here</body></html>"))
}

func TestCitySlug(t *testing.T) {
	assert.Equal(t, "san-francisco", citySlug("San Francisco, CA"))
	assert.Equal(t, "oakland", citySlug("Oakland"))
	assert.Equal(t, "", citySlug(""))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Live music and food trucks",
		stripHTML("<p>Live   music</p> and <b>food trucks</b>"))
}

func TestExtractMetaDescription(t *testing.T) {
	page := `<html><head>
<meta name="description" content="plain description">
<meta property="og:description" content="the og description">
</head><body><meta name="description" content="should be ignored"></body></html>`
	assert.Equal(t, "the og description",
		extractMetaDescription(strings.NewReader(page)))

	noOG := `<html><head><meta name="description" content="only plain"></head><body></body></html>`
	assert.Equal(t, "only plain", extractMetaDescription(strings.NewReader(noOG)))
}
