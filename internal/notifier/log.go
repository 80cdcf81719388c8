package notifier

import (
	"context"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// LogNotifier writes incidents to the application log. Always registered,
// so every alert leaves a trace even without external channels.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Name() string {
	return "log"
}

func (n *LogNotifier) Send(_ context.Context, incident models.Incident) error {
	entry := logger.WithIncident(incident.ID).WithFields(map[string]interface{}{
		"rule_id":  incident.RuleID,
		"level":    incident.Level,
		"category": incident.Category,
		"value":    incident.MetricValue,
	})

	switch incident.Level {
	case models.LevelCritical, models.LevelEmergency:
		entry.Error(incident.Message)
	case models.LevelWarning:
		entry.Warn(incident.Message)
	default:
		entry.Info(incident.Message)
	}
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
