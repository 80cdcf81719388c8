package models

import "time"

// Baseline is the rolling statistical profile of one metric. A baseline is
// replaced wholesale on each recompute, never partially mutated.
type Baseline struct {
	MetricName     string    `json:"metric_name"`
	Mean           float64   `json:"mean"`
	StdDev         float64   `json:"std_dev"`
	UpperThreshold float64   `json:"upper_threshold"`
	LowerThreshold float64   `json:"lower_threshold"`
	SampleCount    int       `json:"sample_count"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Contains reports whether a value falls inside the baseline band.
func (b *Baseline) Contains(value float64) bool {
	return value >= b.LowerThreshold && value <= b.UpperThreshold
}

// Age returns how long ago the baseline was recomputed.
func (b *Baseline) Age(now time.Time) time.Duration {
	return now.Sub(b.LastUpdated)
}
