package models

import "time"

// Well-known metric names produced by the sampler.
const (
	MetricCPUPercent    = "cpu_percent"
	MetricMemoryPercent = "memory_percent"
	MetricDiskPercent   = "disk_percent"
	MetricLoadAvg1Min   = "load_avg_1min"
	MetricLoadAvg5Min   = "load_avg_5min"
	MetricLoadAvg15Min  = "load_avg_15min"
)

// MetricSample is a single scalar reading for one metric.
// Samples are immutable once stored.
type MetricSample struct {
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// SampleBatch is one collection tick worth of readings, keyed by metric name.
type SampleBatch struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Samples expands the batch into individual MetricSample records.
func (b *SampleBatch) Samples() []MetricSample {
	samples := make([]MetricSample, 0, len(b.Values))
	for name, value := range b.Values {
		samples = append(samples, MetricSample{
			MetricName: name,
			Value:      value,
			Timestamp:  b.Timestamp,
		})
	}
	return samples
}
