package websocket

import (
	"context"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// EventBridge forwards engine events to websocket clients.
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("websocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("websocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("event channel closed, stopping bridge")
				return
			}
			b.forward(event)
		}
	}
}

func (b *EventBridge) forward(event *models.Event) {
	topic, ok := topicFor(event.Type)
	if !ok {
		return
	}

	msg := &OutgoingMessage{
		Type:      topic,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}

	b.hub.Broadcast(topic, msg.JSON())
}

func topicFor(eventType models.EventType) (Topic, bool) {
	switch eventType {
	case models.EventTypeSampleIngested:
		return TopicMetrics, true
	case models.EventTypeAnomalyDetected:
		return TopicAnomaly, true
	case models.EventTypeIncidentCreated:
		return TopicIncident, true
	case models.EventTypeIncidentResolved,
		models.EventTypeIncidentAcknowledged,
		models.EventTypeIncidentSuppressed:
		return TopicIncidentUpdate, true
	case models.EventTypeBaselineUpdated:
		return TopicBaseline, true
	case models.EventTypeNotificationFailed, models.EventTypeError:
		return TopicError, true
	default:
		return "", false
	}
}
