// internal/domain/trends/fetcher.go

package trends

import (
	"context"
)

// Query carries the shared parameters of an acquisition request. An empty
// Geo means worldwide; Category 0 means all categories.
type Query struct {
	Timeframe string
	Geo       string
	Category  int
}

// Geographic resolutions for interest-by-region requests.
const (
	ResolutionCountry = "COUNTRY"
	ResolutionRegion  = "REGION"
	ResolutionCity    = "CITY"
	ResolutionDMA     = "DMA"
)

// Provider is the raw protocol collaborator. Implementations talk to the
// trends endpoints directly and return transport and decode errors
// verbatim; pacing, retries and failure absorption all happen above this
// interface.
type Provider interface {
	// InterestOverTime fetches the interest series for up to five keywords.
	InterestOverTime(ctx context.Context, keywords []string, q Query) (TimeSeries, error)

	// RelatedQueries fetches top and rising related queries per keyword.
	RelatedQueries(ctx context.Context, keywords []string, q Query) (map[string]RelatedQueryGroup, error)

	// InterestByRegion fetches regional interest at the given resolution.
	InterestByRegion(ctx context.Context, keywords []string, q Query, resolution string) (RegionTable, error)

	// TrendingNow fetches the current trending searches for a geo.
	TrendingNow(ctx context.Context, geo string) ([]string, error)

	// RelatedTopics fetches top and rising related topics per keyword.
	RelatedTopics(ctx context.Context, keywords []string, q Query) (map[string]RelatedTopicGroup, error)

	// Suggestions fetches autocomplete suggestions for a single keyword.
	Suggestions(ctx context.Context, keyword string) ([]string, error)
}

// Fetcher is the consumer-facing acquisition interface. Every method paces
// outbound traffic and absorbs transport failures: callers always receive
// either real data or an empty value of the right shape, never an error.
// Blocking is bounded only by the caller's context.
type Fetcher interface {
	SearchTrends(ctx context.Context, keywords []string, q Query) TimeSeries
	RelatedQueries(ctx context.Context, keywords []string, q Query) map[string]RelatedQueryGroup
	InterestByRegion(ctx context.Context, keywords []string, q Query, resolution string) RegionTable
	TrendingSearches(ctx context.Context, geo string) []string
	RelatedTopics(ctx context.Context, keywords []string, q Query) map[string]RelatedTopicGroup
	Suggestions(ctx context.Context, keyword string) []string
}
