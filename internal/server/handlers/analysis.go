// internal/server/handlers/analysis.go

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// SnapshotSaver persists per-keyword statistics snapshots
type SnapshotSaver interface {
	SaveSnapshots(ctx context.Context, geo, timeframe string, stats map[string]trends.KeywordStats) error
}

// ComparisonResult bundles everything the comprehensive endpoint
// gathers for a set of keywords.
type ComparisonResult struct {
	Keywords         []string                         `json:"keywords"`
	Timeframe        string                           `json:"timeframe"`
	Geo              string                           `json:"geo"`
	AnalysisDate     string                           `json:"analysis_date"`
	TrendsData       []TrendData                      `json:"trends_data"`
	RelatedQueries   map[string][]trends.RelatedQuery `json:"related_queries"`
	RegionalInterest []RegionInterest                 `json:"regional_interest"`
	Summary          map[string]int                   `json:"summary"`
}

type seasonalResponse struct {
	Keyword        string                  `json:"keyword"`
	SufficientData bool                    `json:"sufficient_data"`
	MinimumPoints  int                     `json:"minimum_points"`
	Profile        *trends.SeasonalProfile `json:"profile,omitempty"`
}

type acquiredEvent struct {
	Keywords    []string  `json:"keywords"`
	Geo         string    `json:"geo"`
	Timeframe   string    `json:"timeframe"`
	TotalPoints int       `json:"total_points"`
	AcquiredAt  time.Time `json:"acquired_at"`
}

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	fetcher     trends.Fetcher
	analyzer    Analyzer
	snapshots   SnapshotSaver
	eventBus    EventPublisher
	eventsTopic string
	log         *logrus.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	fetcher trends.Fetcher,
	analyzer Analyzer,
	snapshots SnapshotSaver,
	eventBus EventPublisher,
	eventsTopic string,
	log *logrus.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		fetcher:     fetcher,
		analyzer:    analyzer,
		snapshots:   snapshots,
		eventBus:    eventBus,
		eventsTopic: eventsTopic,
		log:         log,
	}
}

// Compare fetches interest for the keywords and returns the ranked
// comparison report. Fresh statistics are snapshotted best-effort.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	keywords, ok := requireKeywords(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), keywords, q)
	report := h.analyzer.Compare(series, keywords)

	if len(report.Stats) > 0 {
		if err := h.snapshots.SaveSnapshots(r.Context(), q.Geo, q.Timeframe, report.Stats); err != nil {
			h.log.Errorf("error saving keyword snapshots: %v", err)
		}

		if err := publishAcquired(h.eventBus, h.eventsTopic, keywords, q, report.TotalPoints); err != nil {
			h.log.Errorf("error publishing acquisition event: %v", err)
		}
	}

	respondWithJSON(w, http.StatusOK, report)
}

// Seasonal returns monthly and weekday interest patterns for a keyword.
// Series too short to be meaningful get an explicit marker instead of a
// profile.
func (h *AnalysisHandler) Seasonal(w http.ResponseWriter, r *http.Request) {
	keyword, ok := requireKeyword(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), []string{keyword}, q)
	profile := h.analyzer.Seasonal(series, keyword)

	respondWithJSON(w, http.StatusOK, seasonalResponse{
		Keyword:        keyword,
		SufficientData: profile != nil,
		MinimumPoints:  trends.MinSeasonalPoints,
		Profile:        profile,
	})
}

// Comprehensive gathers summaries, related queries per keyword and
// regional interest for the first keyword in one response.
func (h *AnalysisHandler) Comprehensive(w http.ResponseWriter, r *http.Request) {
	keywords, ok := requireKeywords(w, r)
	if !ok {
		return
	}

	q, ok := parseQuery(w, r, trends.DefaultGeo)
	if !ok {
		return
	}

	ctx := r.Context()

	series := h.fetcher.SearchTrends(ctx, keywords, q)
	trendsData := buildSummaries(h.analyzer.Statistics(series), series, keywords)

	relatedQueries := make(map[string][]trends.RelatedQuery, len(keywords))
	totalRelated := 0
	for _, keyword := range keywords {
		flat := []trends.RelatedQuery{}
		if group, found := h.fetcher.RelatedQueries(ctx, []string{keyword}, q)[keyword]; found {
			flat = append(flat, head(group.Top, 10)...)
			flat = append(flat, head(group.Rising, 10)...)
		}
		relatedQueries[keyword] = flat
		totalRelated += len(flat)
	}

	regionalInterest := []RegionInterest{}
	if len(keywords) > 0 {
		table := h.fetcher.InterestByRegion(ctx, keywords[:1], q, trends.ResolutionCountry)
		regionalInterest = topRegions(table, keywords[0], 20)
	}

	respondWithJSON(w, http.StatusOK, ComparisonResult{
		Keywords:         keywords,
		Timeframe:        q.Timeframe,
		Geo:              q.Geo,
		AnalysisDate:     time.Now().UTC().Format(time.RFC3339),
		TrendsData:       trendsData,
		RelatedQueries:   relatedQueries,
		RegionalInterest: regionalInterest,
		Summary: map[string]int{
			"total_keywords":        len(keywords),
			"total_trend_points":    len(trendsData),
			"total_related_queries": totalRelated,
			"total_regions":         len(regionalInterest),
		},
	})
}

// publishAcquired announces a completed acquisition on the event bus
func publishAcquired(bus EventPublisher, topic string, keywords []string, q trends.Query, totalPoints int) error {
	event := acquiredEvent{
		Keywords:    keywords,
		Geo:         q.Geo,
		Timeframe:   q.Timeframe,
		TotalPoints: totalPoints,
		AcquiredAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling acquisition event: %w", err)
	}

	return bus.Publish(fmt.Sprintf("%s.acquired", topic), data)
}
