package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/auth"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/internal/notifier"
	"github.com/hostwatch/hostwatch/internal/sampler"
	"github.com/hostwatch/hostwatch/pkg/config"
	"github.com/hostwatch/hostwatch/pkg/models"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Storage.DataDir = t.TempDir()
	cfg.API.JWTSecret = "test-secret"
	cfg.API.JWTDuration = time.Hour
	cfg.API.AdminUser = "admin"
	cfg.API.AdminPassword = hash
	cfg.API.DefaultLimit = 100
	cfg.API.MaxLimit = 1000

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	dispatcher := notifier.NewDispatcher(notifier.Config{})
	eng, err := engine.New(*cfg, dispatcher, events.NewPublisher(bus))
	require.NoError(t, err)

	pipeline := engine.NewPipeline(eng, sampler.NewSimulated(sampler.SimulatedConfig{}), time.Minute)

	return NewServer(cfg, eng, pipeline, bus), eng
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestServer_HealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Pipeline is not started, so readiness fails.
	w = doJSON(t, s, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "pipeline")
}

func TestServer_LoginRejectsBadCredentials(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "s3cret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/rules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/rules", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_RuleLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	token := login(t, s)

	create := map[string]interface{}{
		"name":      "High disk usage",
		"category":  "storage",
		"metric":    "disk_percent",
		"condition": ">",
		"threshold": 85,
		"level":     "warning",
		"duration":  300,
		"cool_down": 1800,
	}

	w := doJSON(t, s, http.MethodPost, "/rules", token, create)
	require.Equal(t, http.StatusCreated, w.Code)

	var rule models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	require.NotEmpty(t, rule.ID)
	assert.True(t, rule.Enabled)

	w = doJSON(t, s, http.MethodGet, "/rules/"+rule.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPut, "/rules/"+rule.ID, token, map[string]interface{}{
		"threshold": 90,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 90.0, updated.Threshold)

	w = doJSON(t, s, http.MethodPost, "/rules/"+rule.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.False(t, toggled.Enabled)

	w = doJSON(t, s, http.MethodDelete, "/rules/"+rule.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/rules/"+rule.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RuleValidation(t *testing.T) {
	s, _ := newTestServer(t)
	token := login(t, s)

	w := doJSON(t, s, http.MethodPost, "/rules", token, map[string]interface{}{
		"name":      "Bad rule",
		"category":  "performance",
		"metric":    "cpu_percent",
		"condition": "~",
		"threshold": 80,
		"level":     "warning",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_IncidentEndpoints(t *testing.T) {
	s, eng := newTestServer(t)
	token := login(t, s)

	// Fire an incident through the engine.
	_, err := eng.Rules().Create(models.AlertRule{
		Name:        "High CPU usage",
		Category:    models.CategoryPerformance,
		Metric:      models.MetricCPUPercent,
		Condition:   models.CondGreater,
		Threshold:   80,
		Level:       models.LevelCritical,
		Enabled:     true,
		AutoResolve: false,
	}, time.Now())
	require.NoError(t, err)

	eng.Ingest(context.Background(), models.SampleBatch{
		Timestamp: time.Now(),
		Values:    map[string]float64{models.MetricCPUPercent: 95},
	})

	w := doJSON(t, s, http.MethodGet, "/incidents", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Incidents []models.Incident `json:"incidents"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Count)
	incidentID := listResp.Incidents[0].ID

	w = doJSON(t, s, http.MethodPost, "/incidents/"+incidentID+"/acknowledge", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acked models.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acked))
	assert.Equal(t, models.IncidentAcknowledged, acked.Status)
	assert.Equal(t, "admin", acked.AcknowledgedBy)

	w = doJSON(t, s, http.MethodPost, "/incidents/"+incidentID+"/resolve", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/incidents/summary", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/incidents/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AnalyticsEndpoints(t *testing.T) {
	s, eng := newTestServer(t)
	token := login(t, s)

	now := time.Now()
	for i := 0; i < 10; i++ {
		eng.Ingest(context.Background(), models.SampleBatch{
			Timestamp: now.Add(time.Duration(i-10) * time.Minute),
			Values:    map[string]float64{models.MetricCPUPercent: 40 + float64(i)},
		})
	}

	w := doJSON(t, s, http.MethodGet, "/analytics/historical?metric=cpu_percent&range=24h", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cpu_percent")

	w = doJSON(t, s, http.MethodGet, "/analytics/trends", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/analytics/baselines", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/analytics/anomalies", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/analytics/historical?metric=NotAMetric", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/analytics/trends?range=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
