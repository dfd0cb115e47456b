// internal/service/analysis/statistics.go

package analysis

import (
	"math"
	"sort"
	"time"

	"trendwatch/internal/domain/trends"
)

// Analyzer derives statistics, comparisons and seasonal profiles from
// acquired interest series. Methods are pure: they never fail, hold no
// state and never mutate their inputs.
type Analyzer struct{}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Statistics computes descriptive statistics for every keyword column in
// the series. Missing observations are dropped per keyword; a keyword with
// no observations gets a zeroed record with a stable direction and no peak
// date.
func (a *Analyzer) Statistics(series trends.TimeSeries) map[string]trends.KeywordStats {
	stats := make(map[string]trends.KeywordStats, len(series.Keywords))
	for _, keyword := range series.Keywords {
		values, times := series.Column(keyword)
		stats[keyword] = keywordStats(values, times)
	}
	return stats
}

func keywordStats(values []float64, times []time.Time) trends.KeywordStats {
	if len(values) == 0 {
		return trends.KeywordStats{Trend: trends.DirectionStable}
	}

	m := mean(values)
	std := sampleStdDev(values, m)

	// Peaks report the first occurrence of the maximum.
	peakIdx := 0
	lo, hi := values[0], values[0]
	for i, v := range values {
		if v > values[peakIdx] {
			peakIdx = i
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	peakDate := times[peakIdx]

	volatility := 0.0
	if m > 0 {
		volatility = std / m * 100
	}

	return trends.KeywordStats{
		Mean:        round2(m),
		Median:      round2(median(values)),
		StdDev:      round2(std),
		Min:         int(lo),
		Max:         int(hi),
		PeakValue:   int(values[peakIdx]),
		PeakDate:    &peakDate,
		TotalPoints: len(values),
		Trend:       direction(values),
		Volatility:  round2(volatility),
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 variant, 0 when fewer than two observations.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// direction fits a least-squares line over the observation index and
// classifies the slope. Thresholds of ±0.5 interest points per step filter
// noise on the 0-100 scale.
func direction(values []float64) trends.Direction {
	if len(values) < 2 {
		return trends.DirectionStable
	}

	n := float64(len(values))
	xMean := (n - 1) / 2
	yMean := mean(values)

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}

	slope := num / den
	switch {
	case slope > 0.5:
		return trends.DirectionIncreasing
	case slope < -0.5:
		return trends.DirectionDecreasing
	default:
		return trends.DirectionStable
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
