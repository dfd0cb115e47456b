package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwatch/internal/domain/trends"
)

// dailySeries builds a single-keyword series with one point per day
// starting at start.
func dailySeries(keyword string, start time.Time, values ...float64) trends.TimeSeries {
	s := trends.TimeSeries{Keywords: []string{keyword}}
	for i, v := range values {
		s.Points = append(s.Points, trends.TimePoint{
			Time:   start.AddDate(0, 0, i),
			Values: map[string]float64{keyword: v},
		})
	}
	return s
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSeasonalRequiresThirtyPoints(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAnalyzer()

	assert.Nil(t, a.Seasonal(dailySeries("k", start, repeat(50, 29)...), "k"))
	assert.NotNil(t, a.Seasonal(dailySeries("k", start, repeat(50, 30)...), "k"))
}

func TestSeasonalAbsentKeywordYieldsNil(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries("k", start, repeat(50, 40)...)

	assert.Nil(t, NewAnalyzer().Seasonal(series, "ghost"))
}

func TestSeasonalMonthlyMeans(t *testing.T) {
	// 31 January days at 80, then 29 February days at 20.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	values := append(repeat(80, 31), repeat(20, 29)...)
	series := dailySeries("k", start, values...)

	profile := NewAnalyzer().Seasonal(series, "k")

	require.NotNil(t, profile)
	assert.Equal(t, "k", profile.Keyword)
	require.Len(t, profile.MonthlyMeans, 2)
	assert.Equal(t, 80.0, profile.MonthlyMeans[time.January])
	assert.Equal(t, 20.0, profile.MonthlyMeans[time.February])

	assert.Equal(t, []time.Month{time.January, time.February}, profile.PeakMonths)
	assert.Equal(t, []time.Month{time.February, time.January}, profile.LowMonths)
}

func TestSeasonalPeakTiesBreakOnMonthNumber(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Four months of identical values: Jan..Apr.
	series := dailySeries("k", start, repeat(42, 121)...)

	profile := NewAnalyzer().Seasonal(series, "k")

	require.NotNil(t, profile)
	assert.Equal(t, []time.Month{time.January, time.February, time.March}, profile.PeakMonths)
	assert.Equal(t, []time.Month{time.January, time.February, time.March}, profile.LowMonths)
}

func TestSeasonalWeekdayMeansUseMondayIndexing(t *testing.T) {
	// 2024-01-01 is a Monday; 35 days cover each weekday five times.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 35)
	for i := range values {
		if i%7 == 0 {
			values[i] = 70 // every Monday
		} else {
			values[i] = 14
		}
	}
	series := dailySeries("k", start, values...)

	profile := NewAnalyzer().Seasonal(series, "k")

	require.NotNil(t, profile)
	require.Len(t, profile.WeekdayMeans, 7)
	assert.Equal(t, 70.0, profile.WeekdayMeans[0], "Monday is index 0")
	assert.Equal(t, 14.0, profile.WeekdayMeans[6], "Sunday is index 6")
}

func TestSeasonalSkipsMissingObservations(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries("k", start, repeat(60, 31)...)

	// A second keyword appears in the column list but has no data.
	series.Keywords = append(series.Keywords, "sparse")

	profile := NewAnalyzer().Seasonal(series, "k")
	require.NotNil(t, profile)
	assert.Equal(t, 60.0, profile.MonthlyMeans[time.January])

	assert.Nil(t, NewAnalyzer().Seasonal(series, "sparse"))
}
