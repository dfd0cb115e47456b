// internal/service/analysis/comparison.go

package analysis

import (
	"sort"
	"time"

	"trendwatch/internal/domain/trends"
)

// Compare builds a comparison report for the requested keywords over one
// acquisition window. An empty series or keyword list produces a zero
// report; keywords absent from the series are left out of the statistics
// and rankings.
func (a *Analyzer) Compare(series trends.TimeSeries, keywords []string) trends.ComparisonReport {
	if series.IsEmpty() || len(keywords) == 0 {
		return trends.ComparisonReport{}
	}

	all := a.Statistics(series)

	report := trends.ComparisonReport{
		Keywords:    keywords,
		ComparedAt:  time.Now().UTC(),
		TotalPoints: len(series.Points),
		DateRange:   dateRange(series),
		Stats:       make(map[string]trends.KeywordStats, len(keywords)),
	}

	ordered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if s, ok := all[kw]; ok {
			report.Stats[kw] = s
			ordered = append(ordered, kw)
		}
	}

	report.Rankings = trends.Rankings{
		ByAverageInterest: rank(ordered, report.Stats, func(s trends.KeywordStats) float64 { return s.Mean }),
		ByPeakInterest:    rank(ordered, report.Stats, func(s trends.KeywordStats) float64 { return float64(s.PeakValue) }),
		ByVolatility:      rank(ordered, report.Stats, func(s trends.KeywordStats) float64 { return s.Volatility }),
	}

	return report
}

// rank orders keywords by a metric, highest first. The sort is stable so
// tied keywords keep their input order.
func rank(keywords []string, stats map[string]trends.KeywordStats, metric func(trends.KeywordStats) float64) []trends.RankEntry {
	entries := make([]trends.RankEntry, 0, len(keywords))
	for _, kw := range keywords {
		entries = append(entries, trends.RankEntry{Keyword: kw, Value: metric(stats[kw])})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	return entries
}

func dateRange(series trends.TimeSeries) string {
	first := series.Points[0].Time
	last := series.Points[len(series.Points)-1].Time
	return first.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}
