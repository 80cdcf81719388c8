package sampler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
)

// HTTPSampler pulls metric batches from a remote agent, typically the
// simulator service, over its JSON endpoint.
type HTTPSampler struct {
	client   *http.Client
	endpoint string
}

type HTTPConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTP(cfg HTTPConfig) *HTTPSampler {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSampler{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
	}
}

// agentResponse matches the simulator's /metrics payload.
type agentResponse struct {
	Timestamp string             `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

func (s *HTTPSampler) Sample(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/metrics", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSampleFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSampleFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrSampleFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrSampleFailed, err)
	}

	var agent agentResponse
	if err := json.Unmarshal(body, &agent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(agent.Values) == 0 {
		return nil, fmt.Errorf("%w: empty values map", ErrInvalidResponse)
	}

	logger.Debugf("sampled %d metrics from %s", len(agent.Values), s.endpoint)
	return agent.Values, nil
}

func (s *HTTPSampler) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPSampler) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
