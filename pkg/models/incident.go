package models

import "time"

type IncidentStatus string

const (
	IncidentActive       IncidentStatus = "active"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
	IncidentSuppressed   IncidentStatus = "suppressed"
)

// Incident is one lifecycle episode of a rule firing, from trigger to
// resolution, acknowledgement, or suppression.
type Incident struct {
	ID                string                 `json:"id"`
	RuleID            string                 `json:"rule_id"`
	RuleName          string                 `json:"rule_name"`
	Level             AlertLevel             `json:"level"`
	Category          AlertCategory          `json:"category"`
	Status            IncidentStatus         `json:"status"`
	Title             string                 `json:"title"`
	Message           string                 `json:"message"`
	MetricValue       float64                `json:"metric_value"`
	Threshold         float64                `json:"threshold"`
	StartedAt         time.Time              `json:"started_at"`
	ResolvedAt        *time.Time             `json:"resolved_at,omitempty"`
	AcknowledgedAt    *time.Time             `json:"acknowledged_at,omitempty"`
	AcknowledgedBy    string                 `json:"acknowledged_by,omitempty"`
	NotificationCount int                    `json:"notification_count"`
	SuppressedUntil   *time.Time             `json:"suppressed_until,omitempty"`
	Tags              map[string]string      `json:"tags,omitempty"`
	Context           map[string]interface{} `json:"context,omitempty"`
}

// SuppressedAt reports whether the incident is suppressed at the given time.
// Suppression does not self-expire; callers check this lazily.
func (i *Incident) SuppressedAt(now time.Time) bool {
	return i.Status == IncidentSuppressed &&
		i.SuppressedUntil != nil &&
		now.Before(*i.SuppressedUntil)
}

// ResolutionTime returns the time from trigger to resolution, or zero when
// the incident is still open.
func (i *Incident) ResolutionTime() time.Duration {
	if i.ResolvedAt == nil {
		return 0
	}
	return i.ResolvedAt.Sub(i.StartedAt)
}

// CategoryCount is one entry of the per-category incident breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IncidentSummary aggregates incident counts for dashboards.
type IncidentSummary struct {
	TotalAlerts          int             `json:"total_alerts"`
	ActiveAlerts         int             `json:"active_alerts"`
	CriticalAlerts       int             `json:"critical_alerts"`
	WarningAlerts        int             `json:"warning_alerts"`
	AcknowledgedAlerts   int             `json:"acknowledged_alerts"`
	ResolvedToday        int             `json:"resolved_today"`
	AvgResolutionMinutes float64         `json:"avg_resolution_time"`
	TopCategories        []CategoryCount `json:"top_categories"`
}
