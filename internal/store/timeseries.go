package store

import (
	"sort"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

const (
	defaultRetention  = 30 * 24 * time.Hour
	defaultPruneEvery = 100
)

// TimeSeriesStore keeps a bounded, append-only history of metric samples.
// Samples arrive in timestamp order per metric and are never reordered or
// edited once appended. Reads are safe to run concurrently with appends.
type TimeSeriesStore struct {
	mu         sync.RWMutex
	series     map[string][]models.MetricSample
	retention  time.Duration
	pruneEvery int
	appends    int
}

type Config struct {
	Retention  time.Duration
	PruneEvery int
}

func New(cfg Config) *TimeSeriesStore {
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.PruneEvery <= 0 {
		cfg.PruneEvery = defaultPruneEvery
	}

	return &TimeSeriesStore{
		series:     make(map[string][]models.MetricSample),
		retention:  cfg.Retention,
		pruneEvery: cfg.PruneEvery,
	}
}

// Append stores a sample. Retention is enforced by pruning once every
// pruneEvery appends so the amortized cost stays O(1).
func (s *TimeSeriesStore) Append(sample models.MetricSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[sample.MetricName] = append(s.series[sample.MetricName], sample)
	s.appends++

	if s.appends%s.pruneEvery == 0 {
		s.pruneLocked(sample.Timestamp.Add(-s.retention))
	}
}

// Query returns samples for one metric within [since, until], in insertion
// order. The result is a copy; the store is never mutated by reads.
func (s *TimeSeriesStore) Query(metric string, since, until time.Time) []models.MetricSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := s.series[metric]
	result := make([]models.MetricSample, 0)
	for _, sample := range samples {
		if sample.Timestamp.Before(since) || sample.Timestamp.After(until) {
			continue
		}
		result = append(result, sample)
	}
	return result
}

// Values returns just the scalar values for one metric within [since, until].
func (s *TimeSeriesStore) Values(metric string, since, until time.Time) []float64 {
	samples := s.Query(metric, since, until)
	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}
	return values
}

// Latest returns the most recent sample for a metric.
func (s *TimeSeriesStore) Latest(metric string) (models.MetricSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := s.series[metric]
	if len(samples) == 0 {
		return models.MetricSample{}, false
	}
	return samples[len(samples)-1], true
}

// Metrics lists the tracked metric names, sorted.
func (s *TimeSeriesStore) Metrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of retained samples for a metric.
func (s *TimeSeriesStore) Count(metric string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[metric])
}

// Prune removes samples older than the cutoff and returns how many were
// dropped.
func (s *TimeSeriesStore) Prune(olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(olderThan)
}

func (s *TimeSeriesStore) pruneLocked(olderThan time.Time) int {
	removed := 0
	for metric, samples := range s.series {
		// Samples are time ordered, find the first one to keep
		idx := sort.Search(len(samples), func(i int) bool {
			return !samples[i].Timestamp.Before(olderThan)
		})
		if idx > 0 {
			kept := make([]models.MetricSample, len(samples)-idx)
			copy(kept, samples[idx:])
			s.series[metric] = kept
			removed += idx
		}
	}

	if removed > 0 {
		logger.Debugf("Pruned %d expired samples", removed)
	}
	return removed
}
