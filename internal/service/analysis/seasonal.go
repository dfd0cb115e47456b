// internal/service/analysis/seasonal.go

package analysis

import (
	"sort"
	"time"

	"trendwatch/internal/domain/trends"
)

// Seasonal aggregates one keyword's observations into monthly and weekly
// patterns. It returns nil when the keyword is absent from the series or
// has fewer than trends.MinSeasonalPoints observations; a partial profile
// is never produced.
func (a *Analyzer) Seasonal(series trends.TimeSeries, keyword string) *trends.SeasonalProfile {
	values, times := series.Column(keyword)
	if len(values) < trends.MinSeasonalPoints {
		return nil
	}

	monthly := groupMeans(values, times, func(t time.Time) int { return int(t.Month()) })

	profile := &trends.SeasonalProfile{
		Keyword:      keyword,
		MonthlyMeans: make(map[time.Month]float64, len(monthly)),
		PeakMonths:   rankMonths(monthly, 3, true),
		LowMonths:    rankMonths(monthly, 3, false),
	}
	for m, avg := range monthly {
		profile.MonthlyMeans[time.Month(m)] = avg
	}

	// Weekday breakdown only means something past a week of samples.
	if len(values) > 7 {
		profile.WeekdayMeans = groupMeans(values, times, mondayIndexed)
	}

	return profile
}

// mondayIndexed maps Go's Sunday-based weekday to Monday=0 .. Sunday=6.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func groupMeans(values []float64, times []time.Time, key func(time.Time) int) map[int]float64 {
	sums := map[int]float64{}
	counts := map[int]int{}
	for i, v := range values {
		k := key(times[i])
		sums[k] += v
		counts[k]++
	}

	means := make(map[int]float64, len(sums))
	for k, sum := range sums {
		means[k] = round2(sum / float64(counts[k]))
	}
	return means
}

// rankMonths returns up to n months ordered by mean, breaking value ties on
// the smaller month number.
func rankMonths(monthly map[int]float64, n int, largest bool) []time.Month {
	months := make([]int, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}

	sort.Slice(months, func(i, j int) bool {
		a, b := monthly[months[i]], monthly[months[j]]
		if a == b {
			return months[i] < months[j]
		}
		if largest {
			return a > b
		}
		return a < b
	})

	if len(months) > n {
		months = months[:n]
	}

	out := make([]time.Month, len(months))
	for i, m := range months {
		out[i] = time.Month(m)
	}
	return out
}
