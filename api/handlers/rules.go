package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostwatch/hostwatch/internal/alerting"
	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/pkg/models"
	"github.com/hostwatch/hostwatch/pkg/validation"
)

type RulesHandler struct {
	engine *engine.Engine
}

func NewRulesHandler(eng *engine.Engine) *RulesHandler {
	return &RulesHandler{engine: eng}
}

type CreateRuleRequest struct {
	Name                 string               `json:"name" binding:"required,min=1,max=100"`
	Description          string               `json:"description"`
	Category             models.AlertCategory `json:"category" binding:"required"`
	Metric               string               `json:"metric" binding:"required"`
	Condition            models.Condition     `json:"condition" binding:"required"`
	Threshold            float64              `json:"threshold"`
	Level                models.AlertLevel    `json:"level" binding:"required"`
	DurationSec          int                  `json:"duration"`
	CooldownSec          int                  `json:"cool_down"`
	AutoResolve          *bool                `json:"auto_resolve"`
	NotificationChannels []string             `json:"notification_channels"`
	Tags                 map[string]string    `json:"tags"`
}

func (h *RulesHandler) List(c *gin.Context) {
	rules := h.engine.Rules().List()
	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"count": len(rules),
	})
}

func (h *RulesHandler) Get(c *gin.Context) {
	rule, err := h.engine.Rules().Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RulesHandler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	autoResolve := true
	if req.AutoResolve != nil {
		autoResolve = *req.AutoResolve
	}

	rule := models.AlertRule{
		Name:                 validation.SanitizeString(req.Name),
		Description:          validation.SanitizeString(req.Description),
		Category:             req.Category,
		Metric:               req.Metric,
		Condition:            req.Condition,
		Threshold:            req.Threshold,
		Level:                req.Level,
		Enabled:              true,
		DurationSec:          req.DurationSec,
		CooldownSec:          req.CooldownSec,
		AutoResolve:          autoResolve,
		NotificationChannels: req.NotificationChannels,
		Tags:                 req.Tags,
	}

	created, err := h.engine.Rules().Create(rule, time.Now())
	if err != nil {
		if errors.Is(err, alerting.ErrInvalidRule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusCreated, created)
}

func (h *RulesHandler) Update(c *gin.Context) {
	var patch models.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.engine.Rules().Update(c.Param("id"), patch, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, alerting.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		case errors.Is(err, alerting.ErrInvalidRule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update rule"})
		}
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, updated)
}

func (h *RulesHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteRule(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *RulesHandler) Toggle(c *gin.Context) {
	rule, err := h.engine.Rules().Toggle(c.Param("id"), time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	h.engine.SaveAsync()
	c.JSON(http.StatusOK, rule)
}
