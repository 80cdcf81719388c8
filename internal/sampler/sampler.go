// Package sampler produces host metric samples for the engine.
package sampler

import (
	"context"
	"errors"
)

var (
	ErrSampleFailed    = errors.New("metric sampling failed")
	ErrTimeout         = errors.New("sampling timeout")
	ErrInvalidResponse = errors.New("invalid response from metric source")
)

// Sampler fetches one batch of host metrics keyed by metric name.
type Sampler interface {
	Sample(ctx context.Context) (map[string]float64, error)

	// HealthCheck verifies the sampler can reach its data source.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the sampler.
	Close() error
}
