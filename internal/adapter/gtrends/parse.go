// internal/adapter/gtrends/parse.go

package gtrends

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"trendwatch/internal/domain/trends"
)

// widget is one entry of the explore response. Request is kept raw so it
// can be echoed back to the widget-data endpoints untouched.
type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type timelinePoint struct {
	Time      string    `json:"time"`
	Value     []float64 `json:"value"`
	HasData   []bool    `json:"hasData"`
	IsPartial bool      `json:"isPartial"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []timelinePoint `json:"timelineData"`
	} `json:"default"`
}

type geoMapRow struct {
	GeoCode string    `json:"geoCode"`
	GeoName string    `json:"geoName"`
	Value   []float64 `json:"value"`
	HasData []bool    `json:"hasData"`
}

type comparedGeoResponse struct {
	Default struct {
		GeoMapData []geoMapRow `json:"geoMapData"`
	} `json:"default"`
}

type rankedEntry struct {
	Query string `json:"query"`
	Topic struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"topic"`
	Value int `json:"value"`
}

type relatedResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []rankedEntry `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []struct {
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

type autocompleteResponse struct {
	Default struct {
		Topics []struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"topics"`
	} `json:"default"`
}

// stripPrefix drops the anti-hijacking garbage the trends endpoints
// prepend to every JSON body.
func stripPrefix(body []byte) ([]byte, error) {
	idx := bytes.IndexAny(body, "{[")
	if idx < 0 {
		return nil, fmt.Errorf("response contains no json payload")
	}
	return body[idx:], nil
}

func parseWidgets(body []byte) ([]widget, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return nil, err
	}

	var resp exploreResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("error decoding explore response: %w", err)
	}

	return resp.Widgets, nil
}

func parseTimeSeries(body []byte, keywords []string) (trends.TimeSeries, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return trends.TimeSeries{}, err
	}

	var resp multilineResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return trends.TimeSeries{}, fmt.Errorf("error decoding timeline data: %w", err)
	}

	series := trends.TimeSeries{Keywords: keywords}
	for _, row := range resp.Default.TimelineData {
		secs, err := strconv.ParseInt(row.Time, 10, 64)
		if err != nil {
			return trends.TimeSeries{}, fmt.Errorf("error parsing timeline timestamp %q: %w", row.Time, err)
		}

		point := trends.TimePoint{
			Time:      time.Unix(secs, 0).UTC(),
			Values:    make(map[string]float64, len(keywords)),
			IsPartial: row.IsPartial,
		}
		for i, kw := range keywords {
			if i >= len(row.Value) {
				break
			}
			if i < len(row.HasData) && !row.HasData[i] {
				continue
			}
			point.Values[kw] = row.Value[i]
		}
		series.Points = append(series.Points, point)
	}

	return series, nil
}

func parseRegionTable(body []byte, keywords []string) (trends.RegionTable, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return trends.RegionTable{}, err
	}

	var resp comparedGeoResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return trends.RegionTable{}, fmt.Errorf("error decoding geo data: %w", err)
	}

	table := trends.RegionTable{Keywords: keywords}
	for _, row := range resp.Default.GeoMapData {
		name := row.GeoName
		if name == "" {
			name = row.GeoCode
		}

		entry := trends.RegionRow{
			Region: name,
			Values: make(map[string]float64, len(keywords)),
		}
		for i, kw := range keywords {
			if i >= len(row.Value) {
				break
			}
			if i < len(row.HasData) && !row.HasData[i] {
				continue
			}
			entry.Values[kw] = row.Value[i]
		}
		if len(entry.Values) == 0 {
			continue
		}
		table.Rows = append(table.Rows, entry)
	}

	return table, nil
}

// parseRelatedQueries reads a relatedsearches body for a query widget.
// The first ranked list holds top queries, the second rising ones.
func parseRelatedQueries(body []byte) (trends.RelatedQueryGroup, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return trends.RelatedQueryGroup{}, err
	}

	var resp relatedResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return trends.RelatedQueryGroup{}, fmt.Errorf("error decoding related queries: %w", err)
	}

	group := trends.RelatedQueryGroup{
		Top:    []trends.RelatedQuery{},
		Rising: []trends.RelatedQuery{},
	}

	lists := resp.Default.RankedList
	if len(lists) > 0 {
		for _, e := range lists[0].RankedKeyword {
			group.Top = append(group.Top, trends.RelatedQuery{Query: e.Query, Value: e.Value, Type: "top"})
		}
	}
	if len(lists) > 1 {
		for _, e := range lists[1].RankedKeyword {
			group.Rising = append(group.Rising, trends.RelatedQuery{Query: e.Query, Value: e.Value, Type: "rising"})
		}
	}

	return group, nil
}

func parseRelatedTopics(body []byte) (trends.RelatedTopicGroup, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return trends.RelatedTopicGroup{}, err
	}

	var resp relatedResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return trends.RelatedTopicGroup{}, fmt.Errorf("error decoding related topics: %w", err)
	}

	group := trends.RelatedTopicGroup{
		Top:    []trends.RelatedTopic{},
		Rising: []trends.RelatedTopic{},
	}

	lists := resp.Default.RankedList
	if len(lists) > 0 {
		for _, e := range lists[0].RankedKeyword {
			group.Top = append(group.Top, trends.RelatedTopic{Title: e.Topic.Title, Type: e.Topic.Type, Value: e.Value})
		}
	}
	if len(lists) > 1 {
		for _, e := range lists[1].RankedKeyword {
			group.Rising = append(group.Rising, trends.RelatedTopic{Title: e.Topic.Title, Type: e.Topic.Type, Value: e.Value})
		}
	}

	return group, nil
}

// parseTrendingSearches returns the query titles from the most recent
// trending day.
func parseTrendingSearches(body []byte) ([]string, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return nil, err
	}

	var resp dailyTrendsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("error decoding trending searches: %w", err)
	}

	days := resp.Default.TrendingSearchesDays
	if len(days) == 0 {
		return []string{}, nil
	}

	terms := make([]string, 0, len(days[0].TrendingSearches))
	for _, entry := range days[0].TrendingSearches {
		if entry.Title.Query == "" {
			continue
		}
		terms = append(terms, entry.Title.Query)
	}

	return terms, nil
}

func parseSuggestions(body []byte) ([]string, error) {
	payload, err := stripPrefix(body)
	if err != nil {
		return nil, err
	}

	var resp autocompleteResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("error decoding suggestions: %w", err)
	}

	titles := make([]string, 0, len(resp.Default.Topics))
	for _, topic := range resp.Default.Topics {
		if topic.Title == "" {
			continue
		}
		titles = append(titles, topic.Title)
	}

	return titles, nil
}
