package baseline

import (
	"math"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/store"
	"github.com/hostwatch/hostwatch/pkg/models"
)

type Config struct {
	Window          time.Duration
	RefreshInterval time.Duration
	MinSamples      int
}

// Estimator maintains one rolling baseline per tracked metric, computed
// from the trailing window of stored samples.
type Estimator struct {
	config    Config
	store     *store.TimeSeriesStore
	mu        sync.RWMutex
	baselines map[string]*models.Baseline
}

func New(cfg Config, ts *store.TimeSeriesStore) *Estimator {
	if cfg.Window == 0 {
		cfg.Window = 7 * 24 * time.Hour
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 24 * time.Hour
	}
	if cfg.MinSamples == 0 {
		cfg.MinSamples = 24
	}

	return &Estimator{
		config:    cfg,
		store:     ts,
		baselines: make(map[string]*models.Baseline),
	}
}

// ShouldRefresh reports whether any tracked metric needs a recompute. The
// check is cheap and runs once per collection cycle.
func (e *Estimator) ShouldRefresh(metrics []string, now time.Time) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.baselines) == 0 {
		return true
	}

	for _, metric := range metrics {
		b, ok := e.baselines[metric]
		if !ok {
			return true
		}
		if now.Sub(b.LastUpdated) >= e.config.RefreshInterval {
			return true
		}
	}
	return false
}

// Refresh recomputes baselines for the given metrics from the trailing
// window. Metrics with fewer than MinSamples samples are skipped and keep
// their stale baseline. Each recomputed baseline replaces the previous one
// wholesale.
func (e *Estimator) Refresh(metrics []string, now time.Time) []models.Baseline {
	updated := make([]models.Baseline, 0, len(metrics))

	for _, metric := range metrics {
		values := e.store.Values(metric, now.Add(-e.config.Window), now)
		if len(values) < e.config.MinSamples {
			logger.WithMetric(metric).Debugf(
				"Skipping baseline recompute: %d samples, need %d",
				len(values), e.config.MinSamples,
			)
			continue
		}

		mean := meanOf(values)
		stddev := stdDevOf(values, mean)

		b := &models.Baseline{
			MetricName:     metric,
			Mean:           mean,
			StdDev:         stddev,
			UpperThreshold: mean + 2*stddev,
			LowerThreshold: math.Max(0, mean-2*stddev),
			SampleCount:    len(values),
			LastUpdated:    now,
		}

		e.mu.Lock()
		e.baselines[metric] = b
		e.mu.Unlock()

		updated = append(updated, *b)
		logger.WithMetric(metric).Infof(
			"Baseline updated: mean=%.2f stddev=%.2f samples=%d",
			mean, stddev, len(values),
		)
	}

	return updated
}

// Baseline returns a copy of the current baseline for a metric.
func (e *Estimator) Baseline(metric string) (models.Baseline, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.baselines[metric]
	if !ok {
		return models.Baseline{}, false
	}
	return *b, true
}

// Baselines returns a copy of all current baselines keyed by metric name.
func (e *Estimator) Baselines() map[string]models.Baseline {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make(map[string]models.Baseline, len(e.baselines))
	for metric, b := range e.baselines {
		result[metric] = *b
	}
	return result
}

// Restore installs a previously persisted baseline.
func (e *Estimator) Restore(b models.Baseline) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baselines[b.MetricName] = &b
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// stdDevOf is the sample standard deviation; zero for a single value.
func stdDevOf(values []float64, mean float64) float64 {
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
