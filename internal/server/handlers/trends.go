// internal/server/handlers/trends.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// Analyzer computes statistics over interest series
type Analyzer interface {
	Statistics(series trends.TimeSeries) map[string]trends.KeywordStats
	Compare(series trends.TimeSeries, keywords []string) trends.ComparisonReport
	Seasonal(series trends.TimeSeries, keyword string) *trends.SeasonalProfile
}

// EventPublisher publishes acquisition events
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// TrendData is the per-keyword summary returned by the search and
// comprehensive endpoints.
type TrendData struct {
	Keyword      string  `json:"keyword"`
	MeanInterest float64 `json:"mean_interest"`
	PeakInterest int     `json:"peak_interest"`
	PeakDate     string  `json:"peak_date"`
	DataPoints   int     `json:"data_points"`
	DateRange    string  `json:"date_range"`
}

// RegionInterest is one region's interest value for a keyword
type RegionInterest struct {
	Region   string `json:"region"`
	Interest int    `json:"interest"`
	Keyword  string `json:"keyword"`
}

// searchResponse pairs the acquired series with per-keyword summaries
type searchResponse struct {
	Series     trends.TimeSeries `json:"series"`
	TrendsData []TrendData       `json:"trends_data"`
}

// TrendsHandler handles acquisition-related HTTP requests
type TrendsHandler struct {
	fetcher     trends.Fetcher
	analyzer    Analyzer
	snapshots   SnapshotSaver
	eventBus    EventPublisher
	eventsTopic string
	log         *logrus.Logger
}

// NewTrendsHandler creates a new trends handler
func NewTrendsHandler(
	fetcher trends.Fetcher,
	analyzer Analyzer,
	snapshots SnapshotSaver,
	eventBus EventPublisher,
	eventsTopic string,
	log *logrus.Logger,
) *TrendsHandler {
	return &TrendsHandler{
		fetcher:     fetcher,
		analyzer:    analyzer,
		snapshots:   snapshots,
		eventBus:    eventBus,
		eventsTopic: eventsTopic,
		log:         log,
	}
}

// Search returns the interest series plus per-keyword summaries. Fresh
// statistics are snapshotted best-effort.
func (h *TrendsHandler) Search(w http.ResponseWriter, r *http.Request) {
	keywords, ok := requireKeywords(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), keywords, q)
	stats := h.analyzer.Statistics(series)

	if len(stats) > 0 {
		if err := h.snapshots.SaveSnapshots(r.Context(), q.Geo, q.Timeframe, stats); err != nil {
			h.log.Errorf("error saving keyword snapshots: %v", err)
		}

		if err := publishAcquired(h.eventBus, h.eventsTopic, keywords, q, len(series.Points)); err != nil {
			h.log.Errorf("error publishing acquisition event: %v", err)
		}
	}

	respondWithJSON(w, http.StatusOK, searchResponse{
		Series:     series,
		TrendsData: buildSummaries(stats, series, keywords),
	})
}

// RelatedQueries returns top and rising queries for one keyword
func (h *TrendsHandler) RelatedQueries(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	related := h.fetcher.RelatedQueries(r.Context(), []string{keyword}, q)

	results := []trends.RelatedQuery{}
	if group, found := related[keyword]; found {
		results = append(results, head(group.Top, 10)...)
		results = append(results, head(group.Rising, 10)...)
	}

	respondWithJSON(w, http.StatusOK, results)
}

// RelatedTopics returns top and rising topics for one keyword
func (h *TrendsHandler) RelatedTopics(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	topics := h.fetcher.RelatedTopics(r.Context(), []string{keyword}, q)

	results := []trends.RelatedTopic{}
	if group, found := topics[keyword]; found {
		results = append(results, head(group.Top, 10)...)
		results = append(results, head(group.Rising, 10)...)
	}

	respondWithJSON(w, http.StatusOK, results)
}

// Regions returns the 20 highest-interest regions for one keyword. The
// geo filter defaults to worldwide.
func (h *TrendsHandler) Regions(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, "")
	if !ok {
		return
	}

	resolution := strings.ToUpper(r.URL.Query().Get("resolution"))
	table := h.fetcher.InterestByRegion(r.Context(), []string{keyword}, q, resolution)

	respondWithJSON(w, http.StatusOK, topRegions(table, keyword, 20))
}

// Trending returns up to 20 trending searches for a geo
func (h *TrendsHandler) Trending(w http.ResponseWriter, r *http.Request) {
	geo := r.URL.Query().Get("geo")
	if geo == "" {
		geo = trends.DefaultGeo
	}

	terms := h.fetcher.TrendingSearches(r.Context(), geo)
	if len(terms) > 20 {
		terms = terms[:20]
	}

	respondWithJSON(w, http.StatusOK, terms)
}

// Suggestions returns autocomplete suggestions for a keyword
func (h *TrendsHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, h.fetcher.Suggestions(r.Context(), keyword))
}

// buildSummaries converts computed statistics into per-keyword summaries,
// in request order, skipping keywords the series has no data for.
func buildSummaries(stats map[string]trends.KeywordStats, series trends.TimeSeries, keywords []string) []TrendData {
	results := []TrendData{}
	if len(stats) == 0 {
		return results
	}

	dateRange := seriesDateRange(series)

	for _, keyword := range keywords {
		stat, found := stats[keyword]
		if !found || stat.TotalPoints == 0 {
			continue
		}

		peakDate := ""
		if stat.PeakDate != nil {
			peakDate = stat.PeakDate.Format("2006-01-02")
		}

		results = append(results, TrendData{
			Keyword:      keyword,
			MeanInterest: stat.Mean,
			PeakInterest: stat.PeakValue,
			PeakDate:     peakDate,
			DataPoints:   stat.TotalPoints,
			DateRange:    dateRange,
		})
	}

	return results
}

// topRegions ranks a region table by one keyword's value, descending,
// and keeps the first n rows.
func topRegions(table trends.RegionTable, keyword string, n int) []RegionInterest {
	results := []RegionInterest{}

	rows := make([]trends.RegionRow, len(table.Rows))
	copy(rows, table.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Values[keyword] > rows[j].Values[keyword]
	})

	for _, row := range rows {
		if len(results) == n {
			break
		}
		value, found := row.Values[keyword]
		if !found {
			continue
		}
		results = append(results, RegionInterest{
			Region:   row.Region,
			Interest: int(value),
			Keyword:  keyword,
		})
	}

	return results
}

func seriesDateRange(series trends.TimeSeries) string {
	if len(series.Points) == 0 {
		return ""
	}
	first := series.Points[0].Time
	last := series.Points[len(series.Points)-1].Time
	return first.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// requireKeywords parses a comma-separated keywords parameter
func requireKeywords(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	keywords := splitKeywords(r.URL.Query().Get("keywords"))
	if len(keywords) == 0 {
		respondWithError(w, http.StatusBadRequest, "Missing keywords parameter", nil)
		return nil, false
	}
	return keywords, true
}

// requireKeyword parses a single keyword parameter
func requireKeyword(w http.ResponseWriter, r *http.Request) (string, bool) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondWithError(w, http.StatusBadRequest, "Missing keyword parameter", nil)
		return "", false
	}
	return keyword, true
}

// parseQuery reads timeframe, geo and category, rejecting unknown
// timeframes and non-numeric categories
func parseQuery(w http.ResponseWriter, r *http.Request, defaultGeo string) (trends.Query, bool) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = trends.DefaultTimeframe
	}
	if !trends.IsValidTimeframe(timeframe) {
		respondWithError(w, http.StatusBadRequest, "Invalid timeframe", nil)
		return trends.Query{}, false
	}

	geo := r.URL.Query().Get("geo")
	if geo == "" {
		geo = defaultGeo
	}

	category := 0
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category", nil)
			return trends.Query{}, false
		}
		category = parsed
	}

	return trends.Query{Timeframe: timeframe, Geo: geo, Category: category}, true
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["detail"] = err.Error()
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
