package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/analytics"
	"github.com/hostwatch/hostwatch/internal/store"
	"github.com/hostwatch/hostwatch/pkg/models"
)

func seedHourly(s *store.TimeSeriesStore, metric string, values []float64, end time.Time) {
	for i, v := range values {
		s.Append(models.MetricSample{
			MetricName: metric,
			Value:      v,
			Timestamp:  end.Add(-time.Duration(len(values)-i) * time.Hour),
		})
	}
}

func TestAnalyzer_TrendRising(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	values := make([]float64, 24)
	for i := range values {
		values[i] = 40 + float64(i)*2
	}
	seedHourly(s, "cpu_percent", values, now)

	a := analytics.NewAnalyzer(s)
	trend, ok := a.Trend("cpu_percent", 24*time.Hour, now)
	require.True(t, ok)

	assert.Equal(t, models.TrendRising, trend.Direction)
	assert.Greater(t, trend.ChangePercent, 5.0)
	assert.Equal(t, 40.0, trend.Min)
	assert.Equal(t, 86.0, trend.Max)
	// A linear rise of 2 per hour predicts roughly two above the last value
	assert.InDelta(t, 88.0, trend.PredictionNextHour, 0.5)
}

func TestAnalyzer_TrendFalling(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	values := make([]float64, 24)
	for i := range values {
		values[i] = 90 - float64(i)*2
	}
	seedHourly(s, "memory_percent", values, now)

	a := analytics.NewAnalyzer(s)
	trend, ok := a.Trend("memory_percent", 24*time.Hour, now)
	require.True(t, ok)
	assert.Equal(t, models.TrendFalling, trend.Direction)
	assert.Less(t, trend.ChangePercent, -5.0)
}

func TestAnalyzer_TrendStableWithinBand(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	values := make([]float64, 24)
	for i := range values {
		values[i] = 50
		if i%2 == 0 {
			values[i] = 51
		}
	}
	seedHourly(s, "disk_percent", values, now)

	a := analytics.NewAnalyzer(s)
	trend, ok := a.Trend("disk_percent", 24*time.Hour, now)
	require.True(t, ok)
	assert.Equal(t, models.TrendStable, trend.Direction)
}

func TestAnalyzer_TrendNeedsTwoSamples(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	s.Append(models.MetricSample{MetricName: "cpu_percent", Value: 50, Timestamp: now})

	a := analytics.NewAnalyzer(s)
	_, ok := a.Trend("cpu_percent", 24*time.Hour, now)
	assert.False(t, ok)
}

func TestAnalyzer_TrendsCoverAllMetrics(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	seedHourly(s, "cpu_percent", []float64{50, 51, 52, 53}, now)
	seedHourly(s, "memory_percent", []float64{60, 61, 62, 63}, now)

	a := analytics.NewAnalyzer(s)
	trends := a.Trends(24*time.Hour, now)
	require.Len(t, trends, 2)
}

func TestAnalyzer_ForecastGrowingUsage(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})

	// 168 hourly samples climbing steadily from 50
	values := make([]float64, 168)
	for i := range values {
		values[i] = 50 + float64(i)*0.1
	}
	seedHourly(s, "disk_percent", values, now)

	a := analytics.NewAnalyzer(s)
	forecast, ok := a.Forecast("disk_percent", now)
	require.True(t, ok)

	assert.InDelta(t, 66.7, forecast.CurrentUsage, 0.001)
	assert.Greater(t, forecast.PredictedUsage7d, forecast.CurrentUsage)
	assert.Greater(t, forecast.PredictedUsage30d, forecast.PredictedUsage7d)
	require.NotNil(t, forecast.ExhaustionDate)
	assert.True(t, forecast.ExhaustionDate.After(now))
	assert.NotEmpty(t, forecast.RecommendedAction)
	assert.Greater(t, forecast.Confidence, 0.0)
	assert.LessOrEqual(t, forecast.Confidence, 0.95)
}

func TestAnalyzer_ForecastFlatUsageHasNoExhaustion(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	values := make([]float64, 48)
	for i := range values {
		values[i] = 40
	}
	seedHourly(s, "disk_percent", values, now)

	a := analytics.NewAnalyzer(s)
	forecast, ok := a.Forecast("disk_percent", now)
	require.True(t, ok)
	assert.Nil(t, forecast.ExhaustionDate)
	assert.Equal(t, 40.0, forecast.PredictedUsage30d)
}

func TestAnalyzer_ForecastNeedsSevenSamples(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	s := store.New(store.Config{})
	seedHourly(s, "disk_percent", []float64{40, 41, 42}, now)

	a := analytics.NewAnalyzer(s)
	_, ok := a.Forecast("disk_percent", now)
	assert.False(t, ok)
}
