// internal/adapter/gtrends/parse_test.go

package gtrends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPrefixRemovesAntiHijackGarbage(t *testing.T) {
	payload, err := stripPrefix([]byte(")]}'\n{\"widgets\":[]}"))
	require.NoError(t, err)
	assert.Equal(t, `{"widgets":[]}`, string(payload))

	payload, err = stripPrefix([]byte(")]}'[1,2]"))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(payload))
}

func TestStripPrefixRejectsNonJSONBody(t *testing.T) {
	_, err := stripPrefix([]byte("<html>rate limited</html>"))
	assert.Error(t, err)
}

func TestParseWidgetsKeepsRawRequest(t *testing.T) {
	body := []byte(`)]}'
{"widgets":[
  {"id":"TIMESERIES","token":"tok-ts","request":{"time":"2023-01-01 2024-01-01"}},
  {"id":"GEO_MAP","token":"tok-geo","request":{"resolution":"COUNTRY"}}
]}`)

	widgets, err := parseWidgets(body)
	require.NoError(t, err)
	require.Len(t, widgets, 2)

	assert.Equal(t, "TIMESERIES", widgets[0].ID)
	assert.Equal(t, "tok-ts", widgets[0].Token)
	assert.JSONEq(t, `{"time":"2023-01-01 2024-01-01"}`, string(widgets[0].Request))
}

func TestParseTimeSeriesDecodesTimeline(t *testing.T) {
	body := []byte(`)]}',
{"default":{"timelineData":[
  {"time":"1704067200","value":[42,17],"hasData":[true,true],"isPartial":false},
  {"time":"1704672000","value":[58,0],"hasData":[true,false],"isPartial":true}
]}}`)

	series, err := parseTimeSeries(body, []string{"golang", "rust"})
	require.NoError(t, err)
	require.Len(t, series.Points, 2)

	first := series.Points[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, 42.0, first.Values["golang"])
	assert.Equal(t, 17.0, first.Values["rust"])
	assert.False(t, first.IsPartial)

	second := series.Points[1]
	assert.Equal(t, 58.0, second.Values["golang"])
	assert.True(t, second.IsPartial)

	_, ok := second.Values["rust"]
	assert.False(t, ok, "value without data should be dropped")
}

func TestParseTimeSeriesWithoutHasDataKeepsValues(t *testing.T) {
	body := []byte(`)]}',
{"default":{"timelineData":[{"time":"1704067200","value":[33]}]}}`)

	series, err := parseTimeSeries(body, []string{"golang"})
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 33.0, series.Points[0].Values["golang"])
}

func TestParseTimeSeriesRejectsBadTimestamp(t *testing.T) {
	body := []byte(`)]}',
{"default":{"timelineData":[{"time":"not-a-number","value":[1]}]}}`)

	_, err := parseTimeSeries(body, []string{"golang"})
	assert.Error(t, err)
}

func TestParseRegionTablePrefersGeoName(t *testing.T) {
	body := []byte(`)]}',
{"default":{"geoMapData":[
  {"geoCode":"US-CA","geoName":"California","value":[100,40],"hasData":[true,true]},
  {"geoCode":"US-NV","geoName":"","value":[25,10],"hasData":[true,true]}
]}}`)

	table, err := parseRegionTable(body, []string{"golang", "rust"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "California", table.Rows[0].Region)
	assert.Equal(t, 100.0, table.Rows[0].Values["golang"])
	assert.Equal(t, "US-NV", table.Rows[1].Region, "geoCode stands in for a missing name")
}

func TestParseRegionTableDropsRowsWithoutData(t *testing.T) {
	body := []byte(`)]}',
{"default":{"geoMapData":[
  {"geoCode":"US-WY","geoName":"Wyoming","value":[0],"hasData":[false]},
  {"geoCode":"US-CA","geoName":"California","value":[88],"hasData":[true]}
]}}`)

	table, err := parseRegionTable(body, []string{"golang"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "California", table.Rows[0].Region)
}

func TestParseRelatedQueriesSplitsTopAndRising(t *testing.T) {
	body := []byte(`)]}',
{"default":{"rankedList":[
  {"rankedKeyword":[{"query":"golang tutorial","value":100},{"query":"golang jobs","value":64}]},
  {"rankedKeyword":[{"query":"golang generics","value":350}]}
]}}`)

	group, err := parseRelatedQueries(body)
	require.NoError(t, err)

	require.Len(t, group.Top, 2)
	assert.Equal(t, "golang tutorial", group.Top[0].Query)
	assert.Equal(t, 100, group.Top[0].Value)
	assert.Equal(t, "top", group.Top[0].Type)

	require.Len(t, group.Rising, 1)
	assert.Equal(t, "golang generics", group.Rising[0].Query)
	assert.Equal(t, "rising", group.Rising[0].Type)
}

func TestParseRelatedQueriesEmptyBodyYieldsEmptyGroups(t *testing.T) {
	body := []byte(`)]}',{"default":{"rankedList":[]}}`)

	group, err := parseRelatedQueries(body)
	require.NoError(t, err)
	assert.NotNil(t, group.Top)
	assert.NotNil(t, group.Rising)
	assert.Empty(t, group.Top)
	assert.Empty(t, group.Rising)
}

func TestParseRelatedTopicsReadsTopicMetadata(t *testing.T) {
	body := []byte(`)]}',
{"default":{"rankedList":[
  {"rankedKeyword":[{"topic":{"title":"Go","type":"Programming language"},"value":100}]},
  {"rankedKeyword":[{"topic":{"title":"Goroutine","type":"Topic"},"value":180}]}
]}}`)

	group, err := parseRelatedTopics(body)
	require.NoError(t, err)

	require.Len(t, group.Top, 1)
	assert.Equal(t, "Go", group.Top[0].Title)
	assert.Equal(t, "Programming language", group.Top[0].Type)
	assert.Equal(t, 100, group.Top[0].Value)

	require.Len(t, group.Rising, 1)
	assert.Equal(t, "Goroutine", group.Rising[0].Title)
}

func TestParseTrendingSearchesTakesMostRecentDay(t *testing.T) {
	body := []byte(`)]}',
{"default":{"trendingSearchesDays":[
  {"trendingSearches":[{"title":{"query":"solar eclipse"}},{"title":{"query":""}},{"title":{"query":"playoffs"}}]},
  {"trendingSearches":[{"title":{"query":"yesterday news"}}]}
]}}`)

	terms, err := parseTrendingSearches(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"solar eclipse", "playoffs"}, terms)
}

func TestParseTrendingSearchesEmptyDays(t *testing.T) {
	body := []byte(`)]}',{"default":{"trendingSearchesDays":[]}}`)

	terms, err := parseTrendingSearches(body)
	require.NoError(t, err)
	assert.NotNil(t, terms)
	assert.Empty(t, terms)
}

func TestParseSuggestionsSkipsEmptyTitles(t *testing.T) {
	body := []byte(`)]}',
{"default":{"topics":[
  {"title":"Coffee","type":"Drink"},
  {"title":"","type":"Unknown"},
  {"title":"Coffee shop","type":"Topic"}
]}}`)

	titles, err := parseSuggestions(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Coffee shop"}, titles)
}
