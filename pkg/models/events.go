package models

import "time"

type EventType string

const (
	EventTypeSampleIngested       EventType = "sample_ingested"
	EventTypeBaselineUpdated      EventType = "baseline_updated"
	EventTypeAnomalyDetected      EventType = "anomaly_detected"
	EventTypeIncidentCreated      EventType = "incident_created"
	EventTypeIncidentResolved     EventType = "incident_resolved"
	EventTypeIncidentAcknowledged EventType = "incident_acknowledged"
	EventTypeIncidentSuppressed   EventType = "incident_suppressed"
	EventTypeNotificationFailed   EventType = "notification_failed"
	EventTypeError                EventType = "error"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal engine event. Subject is the metric or rule
// name the event concerns.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Subject   string        `json:"subject,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
}

func NewEvent(eventType EventType, subject, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Subject:   subject,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}
