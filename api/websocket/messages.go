package websocket

import (
	"encoding/json"
	"time"
)

// Topic groups outgoing messages so clients can subscribe selectively.
type Topic string

const (
	TopicMetrics        Topic = "metrics"
	TopicAnomaly        Topic = "anomaly"
	TopicIncident       Topic = "incident"
	TopicIncidentUpdate Topic = "incident_update"
	TopicBaseline       Topic = "baseline"
	TopicError          Topic = "error"
)

// OutgoingMessage is the wire format pushed to dashboard clients.
type OutgoingMessage struct {
	Type      Topic       `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(topic Topic, severity, message string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      topic,
		Timestamp: time.Now(),
		Severity:  severity,
		Message:   message,
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}
