package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_MetricsEndpoint(t *testing.T) {
	a := New(Config{})
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Timestamp string             `json:"timestamp"`
		Values    map[string]float64 `json:"values"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Timestamp)
	assert.Contains(t, body.Values, "cpu_percent")
	assert.Contains(t, body.Values, "memory_percent")
	assert.Contains(t, body.Values, "disk_percent")
	assert.Contains(t, body.Values, "load_avg_1min")
}

func TestAgent_SpikeEndpoint(t *testing.T) {
	a := New(Config{})
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/spike", "application/json",
		strings.NewReader(`{"target_cpu": 95, "duration_seconds": 30}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(server.URL+"/spike", "application/json",
		strings.NewReader(`{"target_cpu": 150}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgent_PatternEndpoint(t *testing.T) {
	a := New(Config{})
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/pattern", "application/json",
		strings.NewReader(`{"pattern": "daily"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "daily", body["pattern"])

	resp, err = http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
