package trends

import (
	"time"
)

// TimePoint is one sampled interest observation for a set of keywords.
// A keyword absent from Values has no data at this timestamp.
type TimePoint struct {
	Time      time.Time          `json:"date"`
	Values    map[string]float64 `json:"values"`
	IsPartial bool               `json:"is_partial"`
}

// TimeSeries holds interest-over-time data. Points are ordered by strictly
// increasing timestamp and column keys correspond 1:1 with the requested
// keywords. A series is built fresh per acquisition and never mutated after
// it is returned.
type TimeSeries struct {
	Keywords []string    `json:"keywords"`
	Points   []TimePoint `json:"points"`
}

// IsEmpty reports whether the series carries no data points.
func (s TimeSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Column extracts the non-missing values for one keyword in point order,
// along with the timestamps they were observed at.
func (s TimeSeries) Column(keyword string) ([]float64, []time.Time) {
	values := make([]float64, 0, len(s.Points))
	times := make([]time.Time, 0, len(s.Points))

	for _, p := range s.Points {
		v, ok := p.Values[keyword]
		if !ok {
			continue
		}
		values = append(values, v)
		times = append(times, p.Time)
	}

	return values, times
}

// RegionRow holds per-keyword interest for a single region.
type RegionRow struct {
	Region string             `json:"region"`
	Values map[string]float64 `json:"values"`
}

// RegionTable holds interest-by-region data for a set of keywords.
type RegionTable struct {
	Keywords []string    `json:"keywords"`
	Rows     []RegionRow `json:"rows"`
}

// IsEmpty reports whether the table carries no rows.
func (t RegionTable) IsEmpty() bool {
	return len(t.Rows) == 0
}

// RelatedQuery is a single related search query with its relative value.
// Type is "top" or "rising".
type RelatedQuery struct {
	Query string `json:"query"`
	Value int    `json:"value"`
	Type  string `json:"type"`
}

// RelatedQueryGroup splits one keyword's related queries into top and
// rising lists.
type RelatedQueryGroup struct {
	Top    []RelatedQuery `json:"top"`
	Rising []RelatedQuery `json:"rising"`
}

// RelatedTopic is a single related topic with its relative value.
type RelatedTopic struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// RelatedTopicGroup splits one keyword's related topics into top and
// rising lists.
type RelatedTopicGroup struct {
	Top    []RelatedTopic `json:"top"`
	Rising []RelatedTopic `json:"rising"`
}

// Direction classifies the overall movement of an interest series.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// KeywordStats holds descriptive statistics for one keyword's series.
// Mean, median, standard deviation and volatility are rounded to two
// decimals; min, max and peak are whole interest values.
type KeywordStats struct {
	Mean        float64    `json:"mean"`
	Median      float64    `json:"median"`
	StdDev      float64    `json:"std_dev"`
	Min         int        `json:"min"`
	Max         int        `json:"max"`
	PeakValue   int        `json:"peak_value"`
	PeakDate    *time.Time `json:"peak_date,omitempty"`
	TotalPoints int        `json:"total_points"`
	Trend       Direction  `json:"trend_direction"`
	Volatility  float64    `json:"volatility"`
}

// RankEntry pairs a keyword with the metric value it was ranked by.
type RankEntry struct {
	Keyword string  `json:"keyword"`
	Value   float64 `json:"value"`
}

// Rankings orders keywords by each comparison metric, highest first. Ties
// keep the keywords' input order.
type Rankings struct {
	ByAverageInterest []RankEntry `json:"by_average_interest"`
	ByPeakInterest    []RankEntry `json:"by_peak_interest"`
	ByVolatility      []RankEntry `json:"by_volatility"`
}

// ComparisonReport is the structured result of comparing several keywords
// over the same acquisition window.
type ComparisonReport struct {
	Keywords    []string                `json:"keywords"`
	ComparedAt  time.Time               `json:"compared_at"`
	TotalPoints int                     `json:"total_points"`
	DateRange   string                  `json:"date_range"`
	Stats       map[string]KeywordStats `json:"keyword_stats"`
	Rankings    Rankings                `json:"rankings"`
}

// IsEmpty reports whether the report carries no per-keyword statistics.
func (r ComparisonReport) IsEmpty() bool {
	return len(r.Stats) == 0
}

// MinSeasonalPoints is the fewest non-missing observations a keyword needs
// before seasonal aggregation is meaningful.
const MinSeasonalPoints = 30

// SeasonalProfile describes recurring monthly and weekly interest patterns
// for one keyword. WeekdayMeans uses Monday=0 through Sunday=6 and is only
// populated when the series spans more than a week of observations.
type SeasonalProfile struct {
	Keyword      string                 `json:"keyword"`
	MonthlyMeans map[time.Month]float64 `json:"monthly_means"`
	WeekdayMeans map[int]float64        `json:"weekday_means,omitempty"`
	PeakMonths   []time.Month           `json:"peak_months"`
	LowMonths    []time.Month           `json:"low_months"`
}

// KeywordSnapshot is a persisted capture of one keyword's statistics.
type KeywordSnapshot struct {
	ID         string       `json:"id"`
	Keyword    string       `json:"keyword"`
	Geo        string       `json:"geo"`
	Timeframe  string       `json:"timeframe"`
	Stats      KeywordStats `json:"stats"`
	CapturedAt time.Time    `json:"captured_at"`
}

// TrendingCapture is a persisted snapshot of the trending-search list for
// one geo.
type TrendingCapture struct {
	Geo        string    `json:"geo"`
	Terms      []string  `json:"terms"`
	CapturedAt time.Time `json:"captured_at"`
}
