package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostwatch/hostwatch/api"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/notifier"
	"github.com/hostwatch/hostwatch/internal/sampler"
	"github.com/hostwatch/hostwatch/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()

	eventLogger := events.NewEventLogger(bus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	eng, err := engine.New(*cfg, dispatcher, events.NewPublisher(bus))
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	if err := eng.Load(); err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}

	smp, err := buildSampler(cfg)
	if err != nil {
		return err
	}
	defer smp.Close()

	pipeline := engine.NewPipeline(eng, smp, cfg.Sampler.Interval)
	pipeline.Start()
	defer pipeline.Stop()

	server := api.NewServer(cfg, eng, pipeline, bus)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}

	pipeline.Stop()

	if err := eng.Save(); err != nil {
		logger.Errorf("final snapshot save failed: %v", err)
	} else {
		logger.Info("snapshot saved")
	}

	logger.Info("Stopped gracefully")
	return nil
}

func buildDispatcher(cfg *config.Config) (*notifier.Dispatcher, error) {
	dispatcher := notifier.NewDispatcher(notifier.Config{
		DispatchTimeout: cfg.Notifier.DispatchTimeout,
		MaxFailures:     cfg.Notifier.CircuitBreaker.MaxFailures,
		ResetTimeout:    cfg.Notifier.CircuitBreaker.ResetTimeout,
	})

	dispatcher.Register(notifier.NewLogNotifier())

	if cfg.Notifier.DiscordWebhookURL != "" {
		discord, err := notifier.NewDiscordNotifier(notifier.DiscordConfig{
			WebhookURL: cfg.Notifier.DiscordWebhookURL,
			Username:   cfg.App.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid discord config: %w", err)
		}
		dispatcher.Register(discord)
		logger.Info("discord notifications enabled")
	}

	return dispatcher, nil
}

func buildSampler(cfg *config.Config) (sampler.Sampler, error) {
	var base sampler.Sampler

	switch cfg.Sampler.Type {
	case "simulated":
		base = sampler.NewSimulated(sampler.SimulatedConfig{
			Pattern: cfg.Sampler.Pattern,
		})
		logger.Infof("using simulated sampler with %s pattern", cfg.Sampler.Pattern)
	case "http":
		base = sampler.NewHTTP(sampler.HTTPConfig{
			Endpoint: cfg.Sampler.Endpoint,
			Timeout:  cfg.Sampler.Timeout,
		})
		logger.Infof("using http sampler against %s", cfg.Sampler.Endpoint)
	default:
		return nil, fmt.Errorf("unknown sampler type %q", cfg.Sampler.Type)
	}

	return sampler.NewResilient(sampler.ResilientConfig{
		Sampler:      base,
		MaxFailures:  cfg.Notifier.CircuitBreaker.MaxFailures,
		ResetTimeout: cfg.Notifier.CircuitBreaker.ResetTimeout,
		RetryDelay:   time.Second,
	}), nil
}
