package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/pkg/models"
	"github.com/hostwatch/hostwatch/pkg/validation"
)

const defaultAnalyticsWindow = 24 * time.Hour

type AnalyticsHandler struct {
	engine *engine.Engine
}

func NewAnalyticsHandler(eng *engine.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: eng}
}

// Historical returns the raw samples of one metric within the window.
func (h *AnalyticsHandler) Historical(c *gin.Context) {
	metric := c.Query("metric")
	if err := validation.ValidateMetricName(metric); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, ok := parseWindow(c)
	if !ok {
		return
	}

	now := time.Now()
	samples := h.engine.Store().Query(metric, now.Add(-window), now)
	c.JSON(http.StatusOK, gin.H{
		"metric_name": metric,
		"samples":     samples,
		"count":       len(samples),
	})
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}

	trends := h.engine.Analytics().Trends(window, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"trends": trends,
		"count":  len(trends),
	})
}

func (h *AnalyticsHandler) Baselines(c *gin.Context) {
	baselines := h.engine.Baselines().Baselines()
	c.JSON(http.StatusOK, gin.H{
		"baselines": baselines,
		"count":     len(baselines),
	})
}

func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}

	anomalies := h.engine.Anomalies().Recent(time.Now().Add(-window))
	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// CapacityForecast projects usage metrics forward. Without an explicit
// metric it covers the usual capacity suspects.
func (h *AnalyticsHandler) CapacityForecast(c *gin.Context) {
	now := time.Now()

	if metric := c.Query("metric"); metric != "" {
		forecast, ok := h.engine.Analytics().Forecast(metric, now)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not enough data to forecast " + metric})
			return
		}
		c.JSON(http.StatusOK, forecast)
		return
	}

	forecasts := make([]models.CapacityForecast, 0, 3)
	for _, metric := range []string{models.MetricDiskPercent, models.MetricMemoryPercent, models.MetricCPUPercent} {
		if forecast, ok := h.engine.Analytics().Forecast(metric, now); ok {
			forecasts = append(forecasts, forecast)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"forecasts": forecasts,
		"count":     len(forecasts),
	})
}

func parseWindow(c *gin.Context) (time.Duration, bool) {
	rangeStr := c.Query("range")
	if rangeStr == "" {
		return defaultAnalyticsWindow, true
	}

	d, err := time.ParseDuration(rangeStr)
	if err != nil || d <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range, expected a duration like 24h"})
		return 0, false
	}
	return d, true
}
