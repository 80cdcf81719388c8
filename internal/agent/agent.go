// Package agent exposes a simulated host over HTTP so hostwatch can be
// exercised without touching a real machine.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/sampler"
)

type Config struct {
	Port    int
	Sampler sampler.SimulatedConfig
}

// Agent serves metric batches from a simulated sampler and lets callers
// inject spikes and switch load patterns at runtime.
type Agent struct {
	config     Config
	sim        *sampler.SimulatedSampler
	httpServer *http.Server
}

func New(cfg Config) *Agent {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}

	return &Agent{
		config: cfg,
		sim:    sampler.NewSimulated(cfg.Sampler),
	}
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the agent's HTTP routes.
func (a *Agent) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", cors(a.healthHandler))
	mux.HandleFunc("/metrics", cors(a.metricsHandler))
	mux.HandleFunc("/spike", cors(a.spikeHandler))
	mux.HandleFunc("/pattern", cors(a.patternHandler))
	return mux
}

func (a *Agent) Start() error {
	mux := a.Handler()

	addr := fmt.Sprintf(":%d", a.config.Port)
	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("agent listening on %s", addr)

	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("agent server error: %v", err)
		}
	}()

	return nil
}

func (a *Agent) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.httpServer != nil {
		return a.httpServer.Shutdown(ctx)
	}
	return nil
}

func (a *Agent) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"pattern": a.sim.PatternName(),
	})
}

func (a *Agent) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	values, err := a.sim.Sample(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"values":    values,
	})
}

type spikeRequest struct {
	TargetCPU       float64 `json:"target_cpu"`
	DurationSeconds int     `json:"duration_seconds"`
	RampUpSeconds   int     `json:"ramp_up_seconds"`
}

func (a *Agent) spikeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req spikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TargetCPU <= 0 || req.TargetCPU > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_cpu must be in (0, 100]"})
		return
	}
	if req.DurationSeconds <= 0 {
		req.DurationSeconds = 60
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	rampUp := time.Duration(req.RampUpSeconds) * time.Second
	a.sim.TriggerSpike(req.TargetCPU, duration, rampUp)

	logger.Infof("spike triggered: cpu=%.1f duration=%s", req.TargetCPU, duration)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "spike started",
		"target_cpu": req.TargetCPU,
		"duration_s": req.DurationSeconds,
	})
}

type patternRequest struct {
	Pattern string `json:"pattern"`
}

func (a *Agent) patternHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"pattern": a.sim.PatternName()})
	case http.MethodPost:
		var req patternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		a.sim.SetPattern(req.Pattern)
		logger.Infof("load pattern set to %s", a.sim.PatternName())
		writeJSON(w, http.StatusOK, map[string]string{"pattern": a.sim.PatternName()})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}
