package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Sampler validation
	validSamplerTypes := map[string]bool{"simulated": true, "http": true}
	if !validSamplerTypes[c.Sampler.Type] {
		errs = append(errs, errors.New("sampler.type must be one of: simulated, http"))
	}
	if c.Sampler.Type == "http" && c.Sampler.Endpoint == "" {
		errs = append(errs, errors.New("sampler.endpoint is required for the http sampler"))
	}
	if c.Sampler.Interval <= 0 {
		errs = append(errs, errors.New("sampler.interval must be positive"))
	}
	if c.Sampler.Timeout <= 0 {
		errs = append(errs, errors.New("sampler.timeout must be positive"))
	}
	if c.Sampler.Timeout >= c.Sampler.Interval {
		errs = append(errs, errors.New("sampler.timeout must be less than sampler.interval"))
	}

	// Retention validation
	if c.Retention.SampleWindow <= 0 {
		errs = append(errs, errors.New("retention.sample_window must be positive"))
	}
	if c.Retention.AnomalyWindow <= 0 {
		errs = append(errs, errors.New("retention.anomaly_window must be positive"))
	}
	if c.Retention.PruneEvery <= 0 {
		errs = append(errs, errors.New("retention.prune_every must be positive"))
	}

	// Baseline validation
	if c.Baseline.Window <= 0 {
		errs = append(errs, errors.New("baseline.window must be positive"))
	}
	if c.Baseline.Window > c.Retention.SampleWindow {
		errs = append(errs, errors.New("baseline.window must not exceed retention.sample_window"))
	}
	if c.Baseline.RefreshInterval <= 0 {
		errs = append(errs, errors.New("baseline.refresh_interval must be positive"))
	}
	if c.Baseline.MinSamples <= 1 {
		errs = append(errs, errors.New("baseline.min_samples must be greater than 1"))
	}

	// Evaluator validation
	if c.Evaluator.Epsilon <= 0 {
		errs = append(errs, errors.New("evaluator.epsilon must be positive"))
	}

	// Notifier validation
	if c.Notifier.DispatchTimeout <= 0 {
		errs = append(errs, errors.New("notifier.dispatch_timeout must be positive"))
	}

	// Storage validation
	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data_dir is required"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}
	if c.API.JWTDuration <= 0 {
		errs = append(errs, errors.New("api.jwt_duration must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
