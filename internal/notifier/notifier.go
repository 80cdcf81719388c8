// Package notifier delivers incident notifications to external channels.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/metrics"
	"github.com/hostwatch/hostwatch/internal/resilience"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, incident models.Incident) error
	Close() error
}

// Config tunes the dispatcher.
type Config struct {
	DispatchTimeout time.Duration
	MaxFailures     int
	ResetTimeout    time.Duration
}

// Dispatcher fans incidents out to registered channels. Each channel sits
// behind its own circuit breaker, so a dead webhook cannot stall or spam
// the others.
type Dispatcher struct {
	config Config

	mu       sync.RWMutex
	channels map[string]Notifier
	breakers map[string]*resilience.CircuitBreaker
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 5 * time.Second
	}
	return &Dispatcher{
		config:   cfg,
		channels: make(map[string]Notifier),
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

// Register adds a channel to the dispatcher.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.channels[n.Name()] = n
	d.breakers[n.Name()] = resilience.NewCircuitBreaker(resilience.Config{
		Name:         n.Name(),
		MaxFailures:  d.config.MaxFailures,
		ResetTimeout: d.config.ResetTimeout,
	})
}

// Dispatch delivers an incident to the named channels, or to every
// registered channel when names is empty. Each delivery gets its own
// timeout. The returned count is the number of successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, incident models.Incident, names []string) (int, error) {
	d.mu.RLock()
	targets := make(map[string]Notifier)
	if len(names) == 0 {
		for name, n := range d.channels {
			targets[name] = n
		}
	} else {
		for _, name := range names {
			if n, ok := d.channels[name]; ok {
				targets[name] = n
			} else {
				logger.WithIncident(incident.ID).Warnf("unknown notification channel: %s", name)
			}
		}
	}
	d.mu.RUnlock()

	var delivered int
	var errs []error
	for name, n := range targets {
		breaker := d.breaker(name)
		err := breaker.Execute(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, d.config.DispatchTimeout)
			defer cancel()
			return n.Send(sendCtx, incident)
		})
		if err != nil {
			logger.WithIncident(incident.ID).WithField("channel", name).
				Errorf("notification failed: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		metrics.NotificationsSent.WithLabelValues(name).Inc()
		delivered++
	}

	if len(errs) > 0 {
		return delivered, fmt.Errorf("notification errors: %v", errs)
	}
	return delivered, nil
}

// BreakerState reports a channel breaker's state for health endpoints.
func (d *Dispatcher) BreakerState(name string) (resilience.State, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.breakers[name]
	if !ok {
		return resilience.StateClosed, false
	}
	return b.State(), true
}

// Channels returns the registered channel names.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.channels))
	for name := range d.channels {
		out = append(out, name)
	}
	return out
}

// Close closes every registered channel.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for name, n := range d.channels {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	d.channels = make(map[string]Notifier)
	d.breakers = make(map[string]*resilience.CircuitBreaker)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (d *Dispatcher) breaker(name string) *resilience.CircuitBreaker {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.breakers[name]
}
