// internal/service/acquisition/client.go

package acquisition

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// Config holds the acquisition client's pacing and retry settings.
type Config struct {
	RequestDelay time.Duration
	MaxRetries   int
	BaseDelay    time.Duration
}

// Client is the paced, retrying acquisition layer in front of a raw trends
// Provider. It implements trends.Fetcher: every operation paces outbound
// traffic exactly once and callers always receive data or an empty value
// of the right shape, never an error.
type Client struct {
	provider trends.Provider
	pacer    *Pacer
	retry    *Executor
	log      *logrus.Logger
}

// NewClient creates an acquisition client around a provider.
func NewClient(provider trends.Provider, cfg Config, log *logrus.Logger) *Client {
	return &Client{
		provider: provider,
		pacer:    NewPacer(cfg.RequestDelay, log),
		retry:    NewExecutor(cfg.MaxRetries, cfg.BaseDelay, log),
		log:      log,
	}
}

// SearchTrends acquires interest-over-time for the keywords. An empty
// keyword list yields an empty series without touching the network.
func (c *Client) SearchTrends(ctx context.Context, keywords []string, q trends.Query) trends.TimeSeries {
	if len(keywords) == 0 {
		return trends.TimeSeries{}
	}

	c.pacer.Wait(ctx)
	c.log.Infof("fetching interest over time for %v (timeframe=%q geo=%q)", keywords, q.Timeframe, q.Geo)

	return Do(ctx, c.retry, Operation[trends.TimeSeries]{
		Name: "interest over time",
		Kind: KindSeries,
		Fetch: func(ctx context.Context) (trends.TimeSeries, error) {
			return c.provider.InterestOverTime(ctx, keywords, q)
		},
		IsEmpty: trends.TimeSeries.IsEmpty,
		Empty:   func() trends.TimeSeries { return trends.TimeSeries{} },
	})
}

// RelatedQueries acquires top and rising related queries per keyword.
func (c *Client) RelatedQueries(ctx context.Context, keywords []string, q trends.Query) map[string]trends.RelatedQueryGroup {
	if len(keywords) == 0 {
		return map[string]trends.RelatedQueryGroup{}
	}

	c.pacer.Wait(ctx)
	c.log.Infof("fetching related queries for %v (timeframe=%q geo=%q)", keywords, q.Timeframe, q.Geo)

	return Do(ctx, c.retry, Operation[map[string]trends.RelatedQueryGroup]{
		Name: "related queries",
		Kind: KindMapping,
		Fetch: func(ctx context.Context) (map[string]trends.RelatedQueryGroup, error) {
			return c.provider.RelatedQueries(ctx, keywords, q)
		},
		IsEmpty: func(m map[string]trends.RelatedQueryGroup) bool { return len(m) == 0 },
		Empty:   func() map[string]trends.RelatedQueryGroup { return map[string]trends.RelatedQueryGroup{} },
	})
}

// InterestByRegion acquires regional interest at the given resolution. The
// result is table-shaped, so exhaustion degrades to an empty table.
func (c *Client) InterestByRegion(ctx context.Context, keywords []string, q trends.Query, resolution string) trends.RegionTable {
	if len(keywords) == 0 {
		return trends.RegionTable{}
	}
	if resolution == "" {
		resolution = trends.DefaultResolution
	}

	c.pacer.Wait(ctx)
	c.log.Infof("fetching interest by region for %v (resolution=%s geo=%q)", keywords, resolution, q.Geo)

	return Do(ctx, c.retry, Operation[trends.RegionTable]{
		Name: "interest by region",
		Kind: KindSeries,
		Fetch: func(ctx context.Context) (trends.RegionTable, error) {
			return c.provider.InterestByRegion(ctx, keywords, q, resolution)
		},
		IsEmpty: trends.RegionTable.IsEmpty,
		Empty:   func() trends.RegionTable { return trends.RegionTable{} },
	})
}

// TrendingSearches acquires the current trending searches for a geo. The
// call is paced but deliberately not retried: trending data is volatile
// and a failed fetch degrades to an empty list.
func (c *Client) TrendingSearches(ctx context.Context, geo string) []string {
	c.pacer.Wait(ctx)
	c.log.Infof("fetching trending searches for geo %q", geo)

	terms, err := c.provider.TrendingNow(ctx, geo)
	if err != nil {
		c.log.Warnf("trending searches unavailable for geo %q: %v", geo, err)
		return []string{}
	}
	if terms == nil {
		terms = []string{}
	}
	return terms
}

// RelatedTopics acquires top and rising related topics per keyword. Like
// trending, it is paced but not retried.
func (c *Client) RelatedTopics(ctx context.Context, keywords []string, q trends.Query) map[string]trends.RelatedTopicGroup {
	if len(keywords) == 0 {
		return map[string]trends.RelatedTopicGroup{}
	}

	c.pacer.Wait(ctx)
	c.log.Infof("fetching related topics for %v (timeframe=%q geo=%q)", keywords, q.Timeframe, q.Geo)

	topics, err := c.provider.RelatedTopics(ctx, keywords, q)
	if err != nil {
		c.log.Warnf("related topics unavailable for %v: %v", keywords, err)
		return map[string]trends.RelatedTopicGroup{}
	}
	if topics == nil {
		topics = map[string]trends.RelatedTopicGroup{}
	}
	return topics
}

// Suggestions acquires autocomplete suggestions for a keyword. Paced, not
// retried.
func (c *Client) Suggestions(ctx context.Context, keyword string) []string {
	if keyword == "" {
		return []string{}
	}

	c.pacer.Wait(ctx)
	c.log.Infof("fetching suggestions for %q", keyword)

	suggestions, err := c.provider.Suggestions(ctx, keyword)
	if err != nil {
		c.log.Warnf("suggestions unavailable for %q: %v", keyword, err)
		return []string{}
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions
}
