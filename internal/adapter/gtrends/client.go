// internal/adapter/gtrends/client.go

package gtrends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// Endpoint paths under the trends host.
const (
	explorePath        = "/trends/api/explore"
	multilinePath      = "/trends/api/widgetdata/multiline"
	comparedGeoPath    = "/trends/api/widgetdata/comparedgeo"
	relatedSearchPath  = "/trends/api/widgetdata/relatedsearches"
	dailyTrendsPath    = "/trends/api/dailytrends"
	autocompletePath   = "/trends/api/autocomplete/"
	defaultTrendsHost  = "https://trends.google.com"
	defaultDataTimeout = 30 * time.Second
)

// Widget identifiers returned by the explore endpoint.
const (
	widgetTimeseries     = "TIMESERIES"
	widgetGeoMap         = "GEO_MAP"
	widgetRelatedQueries = "RELATED_QUERIES"
	widgetRelatedTopics  = "RELATED_TOPICS"
)

// Config holds protocol session settings.
type Config struct {
	BaseURL        string
	Language       string
	Timezone       int
	RequestTimeout time.Duration
}

// Client talks to the trends endpoints over a cookie-backed HTTP session.
// It implements trends.Provider and returns every transport, status and
// decode failure verbatim; pacing and retrying are the caller's concern.
type Client struct {
	baseURL    string
	hl         string
	tz         int
	httpClient *http.Client
	log        *logrus.Logger

	mu           sync.Mutex
	sessionReady bool
}

// NewClient creates a protocol client with its own cookie session.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTrendsHost
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultDataTimeout
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hl:      cfg.Language,
		tz:      cfg.Timezone,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Jar:     jar,
		},
		log: log,
	}
}

// InterestOverTime fetches the interest series for the keywords.
func (c *Client) InterestOverTime(ctx context.Context, keywords []string, q trends.Query) (trends.TimeSeries, error) {
	widgets, err := c.explore(ctx, keywords, q)
	if err != nil {
		return trends.TimeSeries{}, err
	}

	w, ok := pickWidget(widgets, widgetTimeseries)
	if !ok {
		return trends.TimeSeries{}, fmt.Errorf("explore response has no timeseries widget")
	}

	body, err := c.do(ctx, http.MethodGet, multilinePath, c.widgetParams(w))
	if err != nil {
		return trends.TimeSeries{}, fmt.Errorf("error fetching interest over time: %w", err)
	}

	return parseTimeSeries(body, keywords)
}

// RelatedQueries fetches top and rising related queries. The explore
// response carries one related-queries widget per keyword, so this issues
// one widget request per keyword under the caller's single pacing slot.
func (c *Client) RelatedQueries(ctx context.Context, keywords []string, q trends.Query) (map[string]trends.RelatedQueryGroup, error) {
	widgets, err := c.explore(ctx, keywords, q)
	if err != nil {
		return nil, err
	}

	queryWidgets := pickWidgets(widgets, widgetRelatedQueries)
	if len(queryWidgets) < len(keywords) {
		return nil, fmt.Errorf("explore response has %d related-queries widgets for %d keywords", len(queryWidgets), len(keywords))
	}

	result := make(map[string]trends.RelatedQueryGroup, len(keywords))
	for i, kw := range keywords {
		body, err := c.do(ctx, http.MethodGet, relatedSearchPath, c.widgetParams(queryWidgets[i]))
		if err != nil {
			return nil, fmt.Errorf("error fetching related queries for %q: %w", kw, err)
		}

		group, err := parseRelatedQueries(body)
		if err != nil {
			return nil, fmt.Errorf("error parsing related queries for %q: %w", kw, err)
		}
		result[kw] = group
	}

	return result, nil
}

// InterestByRegion fetches regional interest at the given resolution.
func (c *Client) InterestByRegion(ctx context.Context, keywords []string, q trends.Query, resolution string) (trends.RegionTable, error) {
	widgets, err := c.explore(ctx, keywords, q)
	if err != nil {
		return trends.RegionTable{}, err
	}

	w, ok := pickWidget(widgets, widgetGeoMap)
	if !ok {
		return trends.RegionTable{}, fmt.Errorf("explore response has no geo widget")
	}

	w, err = withResolution(w, resolution)
	if err != nil {
		return trends.RegionTable{}, err
	}

	body, err := c.do(ctx, http.MethodGet, comparedGeoPath, c.widgetParams(w))
	if err != nil {
		return trends.RegionTable{}, fmt.Errorf("error fetching interest by region: %w", err)
	}

	return parseRegionTable(body, keywords)
}

// TrendingNow fetches the current daily trending searches for a geo.
func (c *Client) TrendingNow(ctx context.Context, geo string) ([]string, error) {
	if geo == "" {
		geo = trends.DefaultGeo
	}

	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))
	params.Set("geo", geo)
	params.Set("ns", "15")

	body, err := c.do(ctx, http.MethodGet, dailyTrendsPath, params)
	if err != nil {
		return nil, fmt.Errorf("error fetching trending searches: %w", err)
	}

	return parseTrendingSearches(body)
}

// RelatedTopics fetches top and rising related topics per keyword.
func (c *Client) RelatedTopics(ctx context.Context, keywords []string, q trends.Query) (map[string]trends.RelatedTopicGroup, error) {
	widgets, err := c.explore(ctx, keywords, q)
	if err != nil {
		return nil, err
	}

	topicWidgets := pickWidgets(widgets, widgetRelatedTopics)
	if len(topicWidgets) < len(keywords) {
		return nil, fmt.Errorf("explore response has %d related-topics widgets for %d keywords", len(topicWidgets), len(keywords))
	}

	result := make(map[string]trends.RelatedTopicGroup, len(keywords))
	for i, kw := range keywords {
		body, err := c.do(ctx, http.MethodGet, relatedSearchPath, c.widgetParams(topicWidgets[i]))
		if err != nil {
			return nil, fmt.Errorf("error fetching related topics for %q: %w", kw, err)
		}

		group, err := parseRelatedTopics(body)
		if err != nil {
			return nil, fmt.Errorf("error parsing related topics for %q: %w", kw, err)
		}
		result[kw] = group
	}

	return result, nil
}

// Suggestions fetches autocomplete suggestions for a keyword.
func (c *Client) Suggestions(ctx context.Context, keyword string) ([]string, error) {
	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))

	body, err := c.do(ctx, http.MethodGet, autocompletePath+url.PathEscape(keyword), params)
	if err != nil {
		return nil, fmt.Errorf("error fetching suggestions: %w", err)
	}

	return parseSuggestions(body)
}

// explore requests widget tokens for the keywords. Every data endpoint
// needs a token minted here first.
func (c *Client) explore(ctx context.Context, keywords []string, q trends.Query) ([]widget, error) {
	comparison := make([]map[string]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		comparison = append(comparison, map[string]interface{}{
			"keyword": kw,
			"geo":     q.Geo,
			"time":    q.Timeframe,
		})
	}

	payload, err := json.Marshal(map[string]interface{}{
		"comparisonItem": comparison,
		"category":       q.Category,
		"property":       "",
	})
	if err != nil {
		return nil, fmt.Errorf("error building explore payload: %w", err)
	}

	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))
	params.Set("req", string(payload))

	body, err := c.do(ctx, http.MethodPost, explorePath, params)
	if err != nil {
		return nil, fmt.Errorf("error fetching explore widgets: %w", err)
	}

	return parseWidgets(body)
}

// do performs one HTTP exchange against the trends host. A 429 drops the
// session so the next attempt re-establishes cookies.
func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Accept-Language", c.hl)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.resetSession()
		}
		return nil, fmt.Errorf("trends api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return body, nil
}

// ensureSession primes the cookie jar by hitting the trends front page
// once. A failed bootstrap is retried on the next call.
func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionReady {
		return nil
	}

	geo := "US"
	if len(c.hl) >= 2 {
		geo = strings.ToUpper(c.hl[len(c.hl)-2:])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?geo="+geo, nil)
	if err != nil {
		return fmt.Errorf("error building session request: %w", err)
	}
	req.Header.Set("Accept-Language", c.hl)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error establishing trends session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trends session bootstrap returned status %d", resp.StatusCode)
	}

	c.log.Debugf("trends session established for geo %s", geo)
	c.sessionReady = true
	return nil
}

func (c *Client) resetSession() {
	c.mu.Lock()
	c.sessionReady = false
	c.mu.Unlock()
}

func (c *Client) widgetParams(w widget) url.Values {
	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)
	return params
}

// withResolution rewrites a geo widget's request payload for the wanted
// resolution before the token request is issued.
func withResolution(w widget, resolution string) (widget, error) {
	var request map[string]interface{}
	if err := json.Unmarshal(w.Request, &request); err != nil {
		return w, fmt.Errorf("error decoding geo widget request: %w", err)
	}

	request["resolution"] = resolution

	raw, err := json.Marshal(request)
	if err != nil {
		return w, fmt.Errorf("error encoding geo widget request: %w", err)
	}

	w.Request = raw
	return w, nil
}

func pickWidget(widgets []widget, id string) (widget, bool) {
	for _, w := range widgets {
		if w.ID == id {
			return w, true
		}
	}
	return widget{}, false
}

// pickWidgets returns every widget with the given id, preserving keyword
// order.
func pickWidgets(widgets []widget, id string) []widget {
	var out []widget
	for _, w := range widgets {
		if w.ID == id {
			out = append(out, w)
		}
	}
	return out
}
