package events

import (
	"github.com/hostwatch/hostwatch/pkg/models"
)

// Publisher builds and publishes the engine's domain events.
type Publisher struct {
	bus *EventBus
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) SampleIngested(batch models.SampleBatch) {
	event := models.NewEvent(models.EventTypeSampleIngested, "", "Sample batch ingested").
		WithData(batch)
	p.bus.Publish(event)
}

func (p *Publisher) BaselineUpdated(baseline models.Baseline) {
	event := models.NewEvent(models.EventTypeBaselineUpdated, baseline.MetricName, "Baseline updated").
		WithData(baseline)
	p.bus.Publish(event)
}

func (p *Publisher) AnomalyDetected(record models.AnomalyRecord) {
	event := models.NewEvent(models.EventTypeAnomalyDetected, record.MetricName, record.Description).
		WithData(record)
	if record.Severity == models.AnomalySeverityHigh {
		event.WithSeverity(models.SeverityWarning)
	}
	p.bus.Publish(event)
}

func (p *Publisher) IncidentCreated(incident models.Incident) {
	event := models.NewEvent(models.EventTypeIncidentCreated, incident.RuleName, incident.Message).
		WithData(incident)
	switch incident.Level {
	case models.LevelCritical, models.LevelEmergency:
		event.WithSeverity(models.SeverityCritical)
	case models.LevelWarning:
		event.WithSeverity(models.SeverityWarning)
	}
	p.bus.Publish(event)
}

func (p *Publisher) IncidentResolved(incident models.Incident) {
	event := models.NewEvent(models.EventTypeIncidentResolved, incident.RuleName, "Incident resolved").
		WithData(incident)
	p.bus.Publish(event)
}

func (p *Publisher) IncidentAcknowledged(incident models.Incident) {
	event := models.NewEvent(models.EventTypeIncidentAcknowledged, incident.RuleName, "Incident acknowledged").
		WithData(incident)
	p.bus.Publish(event)
}

func (p *Publisher) IncidentSuppressed(incident models.Incident) {
	event := models.NewEvent(models.EventTypeIncidentSuppressed, incident.RuleName, "Incident suppressed").
		WithData(incident)
	p.bus.Publish(event)
}

func (p *Publisher) NotificationFailed(incident models.Incident, err error) {
	event := models.NewEvent(models.EventTypeNotificationFailed, incident.RuleName, "Notification delivery failed").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"incident_id": incident.ID,
			"error":       err.Error(),
		})
	p.bus.Publish(event)
}

func (p *Publisher) EngineError(subject, message string, err error) {
	event := models.NewEvent(models.EventTypeError, subject, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{"error": err.Error()})
	p.bus.Publish(event)
}
