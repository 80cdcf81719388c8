package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostwatch/hostwatch/internal/agent"
	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/sampler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9000, "agent server port")
	pattern := flag.String("pattern", "steady", "load pattern (steady, daily, random, gradual_rise, sine_wave)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting host agent simulator")

	a := agent.New(agent.Config{
		Port: *port,
		Sampler: sampler.SimulatedConfig{
			Pattern: *pattern,
		},
	})

	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down agent")
	return a.Stop()
}
