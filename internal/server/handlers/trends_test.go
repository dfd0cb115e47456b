package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwatch/internal/domain/trends"
	"trendwatch/internal/service/analysis"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeFetcher serves canned acquisition results and records how it was
// called.
type fakeFetcher struct {
	series      trends.TimeSeries
	related     map[string]trends.RelatedQueryGroup
	topics      map[string]trends.RelatedTopicGroup
	regions     trends.RegionTable
	trending    []string
	suggestions []string

	searchKeywords []string
	searchQuery    trends.Query
	relatedCalls   [][]string
	regionKeywords []string
	resolution     string
	trendingGeo    string
	suggestKeyword string
}

func (f *fakeFetcher) SearchTrends(ctx context.Context, keywords []string, q trends.Query) trends.TimeSeries {
	f.searchKeywords = keywords
	f.searchQuery = q
	return f.series
}

func (f *fakeFetcher) RelatedQueries(ctx context.Context, keywords []string, q trends.Query) map[string]trends.RelatedQueryGroup {
	f.relatedCalls = append(f.relatedCalls, keywords)
	return f.related
}

func (f *fakeFetcher) InterestByRegion(ctx context.Context, keywords []string, q trends.Query, resolution string) trends.RegionTable {
	f.regionKeywords = keywords
	f.searchQuery = q
	f.resolution = resolution
	return f.regions
}

func (f *fakeFetcher) TrendingSearches(ctx context.Context, geo string) []string {
	f.trendingGeo = geo
	return f.trending
}

func (f *fakeFetcher) RelatedTopics(ctx context.Context, keywords []string, q trends.Query) map[string]trends.RelatedTopicGroup {
	f.relatedCalls = append(f.relatedCalls, keywords)
	return f.topics
}

func (f *fakeFetcher) Suggestions(ctx context.Context, keyword string) []string {
	f.suggestKeyword = keyword
	return f.suggestions
}

// interestSeries builds a series with one point per day starting at
// 2024-01-01.
func interestSeries(keywords []string, rows ...map[string]float64) trends.TimeSeries {
	s := trends.TimeSeries{Keywords: keywords}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range rows {
		s.Points = append(s.Points, trends.TimePoint{
			Time:   base.AddDate(0, 0, i),
			Values: row,
		})
	}
	return s
}

func newTrendsFixture(fetcher *fakeFetcher) (*TrendsHandler, *fakeSnapshotSaver, *fakePublisher) {
	snapshots := &fakeSnapshotSaver{}
	publisher := &fakePublisher{}
	handler := NewTrendsHandler(fetcher, analysis.NewAnalyzer(), snapshots, publisher, "trends", testLogger())
	return handler, snapshots, publisher
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestSearchReturnsSeriesAndSummaries(t *testing.T) {
	fetcher := &fakeFetcher{series: interestSeries(
		[]string{"golang"},
		map[string]float64{"golang": 20},
		map[string]float64{"golang": 40},
		map[string]float64{"golang": 60},
	)}
	handler, snapshots, publisher := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search?keywords=golang", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Series.Points, 3)
	require.Len(t, resp.TrendsData, 1)

	summary := resp.TrendsData[0]
	assert.Equal(t, "golang", summary.Keyword)
	assert.Equal(t, 40.0, summary.MeanInterest)
	assert.Equal(t, 60, summary.PeakInterest)
	assert.Equal(t, "2024-01-03", summary.PeakDate)
	assert.Equal(t, 3, summary.DataPoints)
	assert.Equal(t, "2024-01-01 to 2024-01-03", summary.DateRange)

	assert.Equal(t, 1, snapshots.calls, "fresh statistics are snapshotted")
	require.Len(t, publisher.subjects, 1)
	assert.Equal(t, "trends.acquired", publisher.subjects[0])
}

func TestSearchAppliesDefaults(t *testing.T) {
	fetcher := &fakeFetcher{}
	handler, snapshots, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search?keywords=golang,+rust+,,", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"golang", "rust"}, fetcher.searchKeywords)
	assert.Equal(t, trends.DefaultTimeframe, fetcher.searchQuery.Timeframe)
	assert.Equal(t, "US", fetcher.searchQuery.Geo)
	assert.Equal(t, 0, fetcher.searchQuery.Category)
	assert.Equal(t, 0, snapshots.calls, "empty acquisitions are not snapshotted")
}

func TestSearchParsesCategory(t *testing.T) {
	fetcher := &fakeFetcher{}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search?keywords=golang&category=31", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 31, fetcher.searchQuery.Category)
}

func TestSearchRejectsBadCategory(t *testing.T) {
	handler, _, _ := newTrendsFixture(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search?keywords=golang&category=tech", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Invalid category", body["error"])
}

func TestSearchRequiresKeywords(t *testing.T) {
	handler, _, _ := newTrendsFixture(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Missing keywords parameter", body["error"])
}

func TestSearchRejectsUnknownTimeframe(t *testing.T) {
	handler, _, _ := newTrendsFixture(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/search?keywords=golang&timeframe=yesterday", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Invalid timeframe", body["error"])
}

func TestRelatedQueriesFlattensTopAndRising(t *testing.T) {
	group := trends.RelatedQueryGroup{}
	for i := 0; i < 12; i++ {
		group.Top = append(group.Top, trends.RelatedQuery{Query: "top", Value: 100 - i, Type: "top"})
	}
	group.Rising = []trends.RelatedQuery{
		{Query: "hot", Value: 900, Type: "rising"},
		{Query: "hotter", Value: 400, Type: "rising"},
	}
	fetcher := &fakeFetcher{related: map[string]trends.RelatedQueryGroup{"golang": group}}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/related-queries?keyword=golang", nil)
	rec := httptest.NewRecorder()
	handler.RelatedQueries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results []trends.RelatedQuery
	decodeBody(t, rec, &results)

	require.Len(t, results, 12, "ten top entries plus two rising")
	assert.Equal(t, "top", results[9].Type)
	assert.Equal(t, "rising", results[10].Type)
}

func TestRelatedQueriesUnknownKeywordYieldsEmptyArray(t *testing.T) {
	handler, _, _ := newTrendsFixture(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/related-queries?keyword=zzz", nil)
	rec := httptest.NewRecorder()
	handler.RelatedQueries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRelatedTopicsFlattensGroups(t *testing.T) {
	fetcher := &fakeFetcher{topics: map[string]trends.RelatedTopicGroup{
		"golang": {
			Top:    []trends.RelatedTopic{{Title: "Programming language", Type: "top", Value: 100}},
			Rising: []trends.RelatedTopic{{Title: "Generics", Type: "rising", Value: 250}},
		},
	}}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/related-topics?keyword=golang", nil)
	rec := httptest.NewRecorder()
	handler.RelatedTopics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results []trends.RelatedTopic
	decodeBody(t, rec, &results)
	require.Len(t, results, 2)
	assert.Equal(t, "Programming language", results[0].Title)
	assert.Equal(t, "Generics", results[1].Title)
}

func TestRegionsRanksAndTruncates(t *testing.T) {
	table := trends.RegionTable{Keywords: []string{"golang"}}
	for i := 1; i <= 25; i++ {
		table.Rows = append(table.Rows, trends.RegionRow{
			Region: "Region",
			Values: map[string]float64{"golang": float64(i) + 0.9},
		})
	}
	table.Rows[24].Region = "Winner"
	fetcher := &fakeFetcher{regions: table}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/regions?keyword=golang&resolution=city", nil)
	rec := httptest.NewRecorder()
	handler.Regions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results []RegionInterest
	decodeBody(t, rec, &results)

	require.Len(t, results, 20)
	assert.Equal(t, "Winner", results[0].Region)
	assert.Equal(t, 25, results[0].Interest, "interest values are truncated, not rounded")
	assert.Equal(t, "golang", results[0].Keyword)

	assert.Equal(t, "CITY", fetcher.resolution)
	assert.Equal(t, "", fetcher.searchQuery.Geo, "regions default to worldwide")
}

func TestRegionsSkipsRowsWithoutKeyword(t *testing.T) {
	fetcher := &fakeFetcher{regions: trends.RegionTable{
		Keywords: []string{"golang"},
		Rows: []trends.RegionRow{
			{Region: "United States", Values: map[string]float64{"golang": 80}},
			{Region: "Nowhere", Values: map[string]float64{}},
		},
	}}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/regions?keyword=golang", nil)
	rec := httptest.NewRecorder()
	handler.Regions(rec, req)

	var results []RegionInterest
	decodeBody(t, rec, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "United States", results[0].Region)
}

func TestTrendingCapsAtTwenty(t *testing.T) {
	terms := make([]string, 30)
	for i := range terms {
		terms[i] = "term"
	}
	fetcher := &fakeFetcher{trending: terms}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/trending", nil)
	rec := httptest.NewRecorder()
	handler.Trending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results []string
	decodeBody(t, rec, &results)
	assert.Len(t, results, 20)
	assert.Equal(t, "US", fetcher.trendingGeo, "geo defaults to US")
}

func TestSuggestionsRequiresKeyword(t *testing.T) {
	handler, _, _ := newTrendsFixture(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/suggestions", nil)
	rec := httptest.NewRecorder()
	handler.Suggestions(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionsReturnsProviderList(t *testing.T) {
	fetcher := &fakeFetcher{suggestions: []string{"golang", "golang tutorial"}}
	handler, _, _ := newTrendsFixture(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trends/suggestions?keyword=golang", nil)
	rec := httptest.NewRecorder()
	handler.Suggestions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var results []string
	decodeBody(t, rec, &results)
	assert.Equal(t, []string{"golang", "golang tutorial"}, results)
	assert.Equal(t, "golang", fetcher.suggestKeyword)
}
