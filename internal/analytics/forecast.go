package analytics

import (
	"time"

	"github.com/hostwatch/hostwatch/pkg/models"
)

const capacityCeiling = 95.0

// Forecast projects a usage metric forward from its recent daily change
// rate. It returns false when fewer than seven samples exist in the 30-day
// window.
func (a *Analyzer) Forecast(metric string, now time.Time) (models.CapacityForecast, bool) {
	values := a.store.Values(metric, now.Add(-30*24*time.Hour), now)
	if len(values) < 7 {
		return models.CapacityForecast{}, false
	}

	current := values[len(values)-1]
	rate := dailyChangeRate(values)

	forecast := models.CapacityForecast{
		MetricName:       metric,
		CurrentUsage:     current,
		PredictedUsage7d: current + rate*7,
		Confidence:       confidenceFor(len(values)),
	}
	forecast.PredictedUsage30d = current + rate*30
	forecast.RecommendedAction = recommendAction(forecast.PredictedUsage7d, forecast.PredictedUsage30d)

	if rate > 0 {
		days := (capacityCeiling - current) / rate
		if days > 0 && days < 365 {
			when := now.Add(time.Duration(days * 24 * float64(time.Hour)))
			forecast.ExhaustionDate = &when
		}
	}
	return forecast, true
}

// dailyChangeRate compares the average of a day-long slice from a week ago
// against the most recent day and spreads the difference over seven days.
// Shorter histories fall back to the oldest available day.
func dailyChangeRate(values []float64) float64 {
	var weekAgo []float64
	if len(values) >= 168 {
		weekAgo = values[len(values)-168 : len(values)-144]
	} else if len(values) >= 24 {
		weekAgo = values[:24]
	} else {
		weekAgo = values
	}

	recent := values
	if len(recent) > 24 {
		recent = recent[len(recent)-24:]
	}
	return (mean(recent) - mean(weekAgo)) / 7
}

func recommendAction(predicted7d, predicted30d float64) string {
	switch {
	case predicted30d > 90:
		return "urgent: scale up or optimize immediately"
	case predicted30d > 80:
		return "warning: plan capacity expansion"
	case predicted7d > 85:
		return "attention: watch the usage trend"
	default:
		return "normal: keep monitoring"
	}
}

// confidenceFor grows with data volume, saturating at 0.95 once a month of
// hourly samples is available.
func confidenceFor(sampleCount int) float64 {
	c := float64(sampleCount) / (24 * 30)
	if c > 0.95 {
		c = 0.95
	}
	return c
}
