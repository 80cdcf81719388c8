package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/internal/incident"
	"github.com/hostwatch/hostwatch/pkg/config"
	"github.com/hostwatch/hostwatch/pkg/models"
)

type IncidentsHandler struct {
	engine *engine.Engine
	config config.APIConfig
}

func NewIncidentsHandler(eng *engine.Engine, cfg config.APIConfig) *IncidentsHandler {
	return &IncidentsHandler{engine: eng, config: cfg}
}

func (h *IncidentsHandler) List(c *gin.Context) {
	filter := incident.ListFilter{
		Status:   models.IncidentStatus(c.Query("status")),
		Level:    models.AlertLevel(c.Query("level")),
		Category: models.AlertCategory(c.Query("category")),
		Limit:    h.parseLimit(c.Query("limit")),
	}

	if rangeStr := c.Query("range"); rangeStr != "" {
		d, err := time.ParseDuration(rangeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range, expected a duration like 24h"})
			return
		}
		filter.Since = time.Now().Add(-d)
	}

	incidents := h.engine.Incidents().List(filter)
	c.JSON(http.StatusOK, gin.H{
		"incidents": incidents,
		"count":     len(incidents),
	})
}

func (h *IncidentsHandler) Get(c *gin.Context) {
	inc, err := h.engine.Incidents().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *IncidentsHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Incidents().Summary(time.Now()))
}

type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

func (h *IncidentsHandler) Acknowledge(c *gin.Context) {
	var req AcknowledgeRequest
	// Body is optional; fall back to the authenticated user.
	_ = c.ShouldBindJSON(&req)
	if req.AcknowledgedBy == "" {
		req.AcknowledgedBy = usernameOr(c, "operator")
	}

	inc, err := h.engine.AcknowledgeIncident(c.Param("id"), req.AcknowledgedBy, time.Now())
	if err != nil {
		h.incidentError(c, err)
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, inc)
}

func (h *IncidentsHandler) Resolve(c *gin.Context) {
	inc, err := h.engine.ResolveIncident(c.Param("id"), time.Now())
	if err != nil {
		h.incidentError(c, err)
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, inc)
}

type SuppressRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required,min=1"`
}

func (h *IncidentsHandler) Suppress(c *gin.Context) {
	var req SuppressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	until := time.Now().Add(time.Duration(req.DurationMinutes) * time.Minute)
	inc, err := h.engine.SuppressIncident(c.Param("id"), until)
	if err != nil {
		h.incidentError(c, err)
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, inc)
}

func (h *IncidentsHandler) incidentError(c *gin.Context, err error) {
	if errors.Is(err, incident.ErrIncidentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *IncidentsHandler) parseLimit(s string) int {
	limit := h.config.DefaultLimit
	if s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if h.config.MaxLimit > 0 && limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}
	return limit
}

func usernameOr(c *gin.Context, fallback string) string {
	if v, exists := c.Get("username"); exists {
		if name, ok := v.(string); ok && name != "" {
			return name
		}
	}
	return fallback
}
