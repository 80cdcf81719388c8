package analytics

import (
	"math"
	"time"

	"github.com/hostwatch/hostwatch/internal/store"
	"github.com/hostwatch/hostwatch/pkg/models"
)

const stableBandPercent = 5.0

// Analyzer computes trends and capacity forecasts over the sample store.
type Analyzer struct {
	store *store.TimeSeriesStore
}

func NewAnalyzer(ts *store.TimeSeriesStore) *Analyzer {
	return &Analyzer{store: ts}
}

// Trends analyzes every tracked metric over the given window. Metrics with
// fewer than two samples are skipped.
func (a *Analyzer) Trends(window time.Duration, now time.Time) []models.TrendAnalysis {
	metrics := a.store.Metrics()
	out := make([]models.TrendAnalysis, 0, len(metrics))
	for _, metric := range metrics {
		if t, ok := a.Trend(metric, window, now); ok {
			out = append(out, t)
		}
	}
	return out
}

// Trend analyzes a single metric over the given window.
func (a *Analyzer) Trend(metric string, window time.Duration, now time.Time) (models.TrendAnalysis, bool) {
	values := a.store.Values(metric, now.Add(-window), now)
	if len(values) < 2 {
		return models.TrendAnalysis{}, false
	}

	avg := mean(values)
	min, max := bounds(values)

	direction, change := classify(values)

	return models.TrendAnalysis{
		MetricName:         metric,
		Direction:          direction,
		ChangePercent:      change,
		Average:            avg,
		Min:                min,
		Max:                max,
		StdDev:             stdDev(values, avg),
		PredictionNextHour: predictNext(values, avg),
	}, true
}

// classify splits the window in half and compares the half averages. A
// change under 5 percent counts as stable.
func classify(values []float64) (models.Trend, float64) {
	half := len(values) / 2
	firstAvg := mean(values[:half])
	secondAvg := mean(values[half:])

	if firstAvg == 0 {
		return models.TrendStable, 0
	}
	change := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case math.Abs(change) < stableBandPercent:
		return models.TrendStable, change
	case change > 0:
		return models.TrendRising, change
	default:
		return models.TrendFalling, change
	}
}

// predictNext extrapolates one step ahead with a least-squares fit over the
// last five samples.
func predictNext(values []float64, fallback float64) float64 {
	if len(values) < 3 {
		return fallback
	}
	recent := values
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	n := float64(len(recent))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range recent {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return fallback
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return slope*n + intercept
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func bounds(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
