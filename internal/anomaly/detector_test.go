package anomaly_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/anomaly"
	"github.com/hostwatch/hostwatch/internal/baseline"
	"github.com/hostwatch/hostwatch/internal/store"
	"github.com/hostwatch/hostwatch/pkg/models"
)

func estimatorWithBaseline(t *testing.T, metric string, mean, stdDev float64) *baseline.Estimator {
	t.Helper()
	e := baseline.New(baseline.Config{}, store.New(store.Config{}))
	e.Restore(models.Baseline{
		MetricName:     metric,
		Mean:           mean,
		StdDev:         stdDev,
		UpperThreshold: mean + 2*stdDev,
		LowerThreshold: mean - 2*stdDev,
		SampleCount:    48,
	})
	return e
}

func TestDetector_NoBaselineNoAnomaly(t *testing.T) {
	e := baseline.New(baseline.Config{}, store.New(store.Config{}))
	d := anomaly.New(anomaly.Config{}, e)

	_, flagged := d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 99, Timestamp: time.Now()})
	assert.False(t, flagged)
	assert.Zero(t, d.Count())
}

func TestDetector_InBandNotFlagged(t *testing.T) {
	e := estimatorWithBaseline(t, "cpu_percent", 50, 5)
	d := anomaly.New(anomaly.Config{}, e)

	_, flagged := d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 58, Timestamp: time.Now()})
	assert.False(t, flagged)
}

func TestDetector_OutOfBandFlagged(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := estimatorWithBaseline(t, "cpu_percent", 50, 5)
	d := anomaly.New(anomaly.Config{}, e)

	rec, flagged := d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 65, Timestamp: now})
	require.True(t, flagged)
	assert.Equal(t, "cpu_percent", rec.MetricName)
	assert.Equal(t, 65.0, rec.ActualValue)
	assert.Equal(t, 50.0, rec.ExpectedValue)
	assert.Equal(t, now, rec.Timestamp)
	assert.NotEmpty(t, rec.Description)
}

func TestDetector_SeverityFromUnclampedRatio(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		severity models.AnomalySeverity
	}{
		{"just outside band", 61, models.AnomalySeverityMedium},
		{"between 2 and 3 sigma", 63, models.AnomalySeverityMedium},
		{"beyond 3 sigma", 70, models.AnomalySeverityHigh},
		{"far beyond", 100, models.AnomalySeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := estimatorWithBaseline(t, "cpu_percent", 50, 5)
			d := anomaly.New(anomaly.Config{}, e)

			rec, flagged := d.Check(models.MetricSample{MetricName: "cpu_percent", Value: tt.value, Timestamp: time.Now()})
			require.True(t, flagged)
			assert.Equal(t, tt.severity, rec.Severity)
		})
	}
}

func TestDetector_ScoreClampedToOne(t *testing.T) {
	e := estimatorWithBaseline(t, "cpu_percent", 50, 5)
	d := anomaly.New(anomaly.Config{}, e)

	rec, flagged := d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 100, Timestamp: time.Now()})
	require.True(t, flagged)
	assert.Equal(t, 1.0, rec.AnomalyScore)
}

func TestDetector_ZeroStdDevDoesNotDivideByZero(t *testing.T) {
	e := estimatorWithBaseline(t, "disk_percent", 40, 0)
	d := anomaly.New(anomaly.Config{}, e)

	rec, flagged := d.Check(models.MetricSample{MetricName: "disk_percent", Value: 41, Timestamp: time.Now()})
	require.True(t, flagged)
	assert.Equal(t, 1.0, rec.AnomalyScore)
	assert.Equal(t, models.AnomalySeverityHigh, rec.Severity)
}

func TestDetector_RecentAndRetention(t *testing.T) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	e := estimatorWithBaseline(t, "cpu_percent", 50, 5)
	d := anomaly.New(anomaly.Config{Retention: 7 * 24 * time.Hour}, e)

	old := now.Add(-8 * 24 * time.Hour)
	d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 90, Timestamp: old})
	d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 90, Timestamp: now.Add(-time.Hour)})
	d.Check(models.MetricSample{MetricName: "cpu_percent", Value: 90, Timestamp: now})

	// The record eight days back is pruned once newer records arrive
	assert.Equal(t, 2, d.Count())

	recent := d.Recent(now.Add(-30 * time.Minute))
	require.Len(t, recent, 1)
	assert.Equal(t, now, recent[0].Timestamp)
}
