package sampler

import (
	"context"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/resilience"
)

// ResilientSampler wraps another sampler with retries and a circuit
// breaker, so a flapping metric source degrades to skipped cycles instead
// of hammering a dead endpoint.
type ResilientSampler struct {
	sampler       Sampler
	breaker       *resilience.CircuitBreaker
	retryAttempts int
	retryDelay    time.Duration
}

type ResilientConfig struct {
	Sampler       Sampler
	MaxFailures   int
	ResetTimeout  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewResilient(cfg ResilientConfig) *ResilientSampler {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &ResilientSampler{
		sampler: cfg.Sampler,
		breaker: resilience.NewCircuitBreaker(resilience.Config{
			Name:         "sampler",
			MaxFailures:  cfg.MaxFailures,
			ResetTimeout: cfg.ResetTimeout,
		}),
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

func (s *ResilientSampler) Sample(ctx context.Context) (map[string]float64, error) {
	var values map[string]float64
	var lastErr error

	err := s.breaker.Execute(func() error {
		for attempt := 1; attempt <= s.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			values, err = s.sampler.Sample(ctx)
			if err == nil {
				return nil
			}
			lastErr = err
			logger.Warnf("sampling attempt %d/%d failed: %v", attempt, s.retryAttempts, err)

			if attempt < s.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.retryDelay):
				}
			}
		}
		return lastErr
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *ResilientSampler) HealthCheck(ctx context.Context) error {
	return s.sampler.HealthCheck(ctx)
}

func (s *ResilientSampler) Close() error {
	return s.sampler.Close()
}

// BreakerState exposes the breaker for health reporting.
func (s *ResilientSampler) BreakerState() resilience.State {
	return s.breaker.State()
}
