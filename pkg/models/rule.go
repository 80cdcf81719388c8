package models

import "time"

type AlertLevel string

const (
	LevelInfo      AlertLevel = "info"
	LevelWarning   AlertLevel = "warning"
	LevelCritical  AlertLevel = "critical"
	LevelEmergency AlertLevel = "emergency"
)

type AlertCategory string

const (
	CategorySystem      AlertCategory = "system"
	CategoryPerformance AlertCategory = "performance"
	CategorySecurity    AlertCategory = "security"
	CategoryService     AlertCategory = "service"
	CategoryNetwork     AlertCategory = "network"
	CategoryStorage     AlertCategory = "storage"
)

// Condition is the comparison operator of an alert rule.
type Condition string

const (
	CondGreater      Condition = ">"
	CondGreaterEqual Condition = ">="
	CondLess         Condition = "<"
	CondLessEqual    Condition = "<="
	CondEqual        Condition = "=="
	CondNotEqual     Condition = "!="
)

func (l AlertLevel) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelCritical, LevelEmergency:
		return true
	}
	return false
}

func (c AlertCategory) Valid() bool {
	switch c {
	case CategorySystem, CategoryPerformance, CategorySecurity, CategoryService, CategoryNetwork, CategoryStorage:
		return true
	}
	return false
}

func (c Condition) Valid() bool {
	switch c {
	case CondGreater, CondGreaterEqual, CondLess, CondLessEqual, CondEqual, CondNotEqual:
		return true
	}
	return false
}

// AlertRule defines one threshold check against a metric. Identity (ID) is
// immutable for the rule's lifetime.
type AlertRule struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	Category             AlertCategory     `json:"category"`
	Metric               string            `json:"metric"`
	Condition            Condition         `json:"condition"`
	Threshold            float64           `json:"threshold"`
	Level                AlertLevel        `json:"level"`
	Enabled              bool              `json:"enabled"`
	DurationSec          int               `json:"duration"`
	CooldownSec          int               `json:"cool_down"`
	AutoResolve          bool              `json:"auto_resolve"`
	NotificationChannels []string          `json:"notification_channels"`
	Tags                 map[string]string `json:"tags,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Duration is the time the condition must hold before the rule fires.
func (r *AlertRule) Duration() time.Duration {
	return time.Duration(r.DurationSec) * time.Second
}

// Cooldown is the minimum gap between successive notifications.
func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSec) * time.Second
}

// RulePatch is a partial rule update. Nil fields are left unchanged.
type RulePatch struct {
	Name                 *string            `json:"name,omitempty"`
	Description          *string            `json:"description,omitempty"`
	Category             *AlertCategory     `json:"category,omitempty"`
	Metric               *string            `json:"metric,omitempty"`
	Condition            *Condition         `json:"condition,omitempty"`
	Threshold            *float64           `json:"threshold,omitempty"`
	Level                *AlertLevel        `json:"level,omitempty"`
	Enabled              *bool              `json:"enabled,omitempty"`
	DurationSec          *int               `json:"duration,omitempty"`
	CooldownSec          *int               `json:"cool_down,omitempty"`
	AutoResolve          *bool              `json:"auto_resolve,omitempty"`
	NotificationChannels *[]string          `json:"notification_channels,omitempty"`
	Tags                 *map[string]string `json:"tags,omitempty"`
}
