package anomaly

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/baseline"
	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

const varianceFloor = 1e-6

// Config controls anomaly record retention.
type Config struct {
	Retention time.Duration
}

// Detector flags samples that fall outside their metric's baseline band
// and keeps a bounded history of the resulting records.
type Detector struct {
	config    Config
	estimator *baseline.Estimator

	mu      sync.RWMutex
	records []models.AnomalyRecord
}

func New(cfg Config, est *baseline.Estimator) *Detector {
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	return &Detector{
		config:    cfg,
		estimator: est,
	}
}

// Check scores a sample against its baseline. It returns the anomaly record
// and true when the value falls outside the baseline band. Metrics without a
// baseline are never anomalous.
func (d *Detector) Check(sample models.MetricSample) (models.AnomalyRecord, bool) {
	b, ok := d.estimator.Baseline(sample.MetricName)
	if !ok {
		return models.AnomalyRecord{}, false
	}
	if b.Contains(sample.Value) {
		return models.AnomalyRecord{}, false
	}

	ratio := deviationRatio(sample.Value, b.Mean, b.StdDev)
	score := ratio
	if score > 1 {
		score = 1
	}

	record := models.AnomalyRecord{
		Timestamp:     sample.Timestamp,
		MetricName:    sample.MetricName,
		ActualValue:   sample.Value,
		ExpectedValue: b.Mean,
		AnomalyScore:  score,
		Severity:      severityFor(ratio),
		Description: fmt.Sprintf("%s deviated from baseline: actual %.2f, expected %.2f",
			sample.MetricName, sample.Value, b.Mean),
	}

	d.mu.Lock()
	d.records = append(d.records, record)
	d.pruneLocked(sample.Timestamp.Add(-d.config.Retention))
	d.mu.Unlock()

	logger.WithMetric(sample.MetricName).Debugf("anomaly detected: score=%.2f severity=%s", score, record.Severity)
	return record, true
}

// Recent returns records at or after since, oldest first.
func (d *Detector) Recent(since time.Time) []models.AnomalyRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := sort.Search(len(d.records), func(i int) bool {
		return !d.records[i].Timestamp.Before(since)
	})
	out := make([]models.AnomalyRecord, len(d.records)-idx)
	copy(out, d.records[idx:])
	return out
}

// Count returns the number of retained anomaly records.
func (d *Detector) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

func (d *Detector) pruneLocked(olderThan time.Time) {
	idx := sort.Search(len(d.records), func(i int) bool {
		return !d.records[i].Timestamp.Before(olderThan)
	})
	if idx > 0 {
		d.records = append([]models.AnomalyRecord(nil), d.records[idx:]...)
	}
}

func deviationRatio(value, mean, stdDev float64) float64 {
	diff := value - mean
	if diff < 0 {
		diff = -diff
	}
	return diff / (stdDev + varianceFloor)
}

func severityFor(ratio float64) models.AnomalySeverity {
	switch {
	case ratio > 3:
		return models.AnomalySeverityHigh
	case ratio > 2:
		return models.AnomalySeverityMedium
	default:
		return models.AnomalySeverityLow
	}
}
