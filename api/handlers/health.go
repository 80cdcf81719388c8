package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PipelineStatus reports whether the sampling loop is active.
type PipelineStatus interface {
	IsRunning() bool
}

type HealthHandler struct {
	pipeline PipelineStatus
}

func NewHealthHandler(pipeline PipelineStatus) *HealthHandler {
	return &HealthHandler{pipeline: pipeline}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.pipeline != nil && h.pipeline.IsRunning() {
		checks["pipeline"] = "running"
	} else {
		checks["pipeline"] = "stopped"
		status = "unhealthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	if h.pipeline == nil || !h.pipeline.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
