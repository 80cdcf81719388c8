package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/engine"
	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/internal/incident"
	"github.com/hostwatch/hostwatch/internal/notifier"
	"github.com/hostwatch/hostwatch/pkg/config"
	"github.com/hostwatch/hostwatch/pkg/models"
)

type captureNotifier struct {
	sent []models.Incident
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Send(_ context.Context, inc models.Incident) error {
	c.sent = append(c.sent, inc)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func newTestEngine(t *testing.T) (*engine.Engine, *captureNotifier, *events.EventBus) {
	t.Helper()

	capture := &captureNotifier{}
	dispatcher := notifier.NewDispatcher(notifier.Config{})
	dispatcher.Register(capture)

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	cfg := config.Config{}
	cfg.Storage.DataDir = t.TempDir()

	e, err := engine.New(cfg, dispatcher, events.NewPublisher(bus))
	require.NoError(t, err)
	return e, capture, bus
}

func batchAt(now time.Time, cpu float64) models.SampleBatch {
	return models.SampleBatch{
		Timestamp: now,
		Values: map[string]float64{
			models.MetricCPUPercent:    cpu,
			models.MetricMemoryPercent: 55,
		},
	}
}

func addCPURule(t *testing.T, e *engine.Engine, durationSec, cooldownSec int) models.AlertRule {
	t.Helper()
	rule, err := e.Rules().Create(models.AlertRule{
		Name:        "High CPU usage",
		Category:    models.CategoryPerformance,
		Metric:      models.MetricCPUPercent,
		Condition:   models.CondGreater,
		Threshold:   80,
		Level:       models.LevelWarning,
		Enabled:     true,
		DurationSec: durationSec,
		CooldownSec: cooldownSec,
		AutoResolve: true,
	}, time.Now())
	require.NoError(t, err)
	return rule
}

func TestEngine_IngestStoresSamples(t *testing.T) {
	e, _, _ := newTestEngine(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	e.Ingest(context.Background(), batchAt(now, 42))

	sample, ok := e.Store().Latest(models.MetricCPUPercent)
	require.True(t, ok)
	assert.Equal(t, 42.0, sample.Value)
	assert.Equal(t, now, sample.Timestamp)
}

func TestEngine_RuleFiresAndNotifies(t *testing.T) {
	e, capture, bus := newTestEngine(t)
	created := bus.Subscribe(models.EventTypeIncidentCreated)
	addCPURule(t, e, 0, 300)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))

	active := e.Incidents().Active()
	require.Len(t, active, 1)
	assert.Equal(t, models.IncidentActive, active[0].Status)
	assert.Equal(t, 93.0, active[0].MetricValue)
	assert.Equal(t, 1, active[0].NotificationCount)

	require.Len(t, capture.sent, 1)
	assert.Equal(t, active[0].ID, capture.sent[0].ID)

	select {
	case event := <-created:
		assert.Equal(t, models.EventTypeIncidentCreated, event.Type)
	case <-time.After(time.Second):
		t.Fatal("no incident_created event published")
	}
}

func TestEngine_DurationDebouncedFire(t *testing.T) {
	e, capture, _ := newTestEngine(t)
	addCPURule(t, e, 120, 300)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 90))
	e.Ingest(context.Background(), batchAt(now.Add(60*time.Second), 91))
	assert.Empty(t, e.Incidents().Active())

	e.Ingest(context.Background(), batchAt(now.Add(120*time.Second), 92))
	assert.Len(t, e.Incidents().Active(), 1)
	assert.Len(t, capture.sent, 1)
}

func TestEngine_RenotifiesAfterCooldown(t *testing.T) {
	e, capture, bus := newTestEngine(t)
	created := bus.Subscribe(models.EventTypeIncidentCreated)
	addCPURule(t, e, 0, 300)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	active := e.Incidents().Active()
	require.Len(t, active, 1)
	require.Len(t, capture.sent, 1)
	<-created

	// Inside the cooldown the breach stays silent
	e.Ingest(context.Background(), batchAt(now.Add(60*time.Second), 94))
	assert.Len(t, capture.sent, 1)

	// Past the cooldown the open incident is re-dispatched, not duplicated
	e.Ingest(context.Background(), batchAt(now.Add(310*time.Second), 95))
	require.Len(t, capture.sent, 2)
	assert.Equal(t, active[0].ID, capture.sent[1].ID)

	again := e.Incidents().Active()
	require.Len(t, again, 1)
	assert.Equal(t, active[0].ID, again[0].ID)
	assert.Equal(t, 2, again[0].NotificationCount)

	// No second incident_created event for the re-notification
	select {
	case <-created:
		t.Fatal("re-notification published a duplicate incident_created event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngine_AcknowledgedIncidentSurvivesConditionClear(t *testing.T) {
	e, _, _ := newTestEngine(t)
	addCPURule(t, e, 0, 300)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	active := e.Incidents().Active()
	require.Len(t, active, 1)

	_, err := e.AcknowledgeIncident(active[0].ID, "oncall", now.Add(time.Minute))
	require.NoError(t, err)

	// The metric recovering does not close an acknowledged incident
	e.Ingest(context.Background(), batchAt(now.Add(2*time.Minute), 40))
	open := e.Incidents().Active()
	require.Len(t, open, 1)
	assert.Equal(t, models.IncidentAcknowledged, open[0].Status)
}

func TestEngine_AutoResolveOnClear(t *testing.T) {
	e, _, bus := newTestEngine(t)
	resolved := bus.Subscribe(models.EventTypeIncidentResolved)
	addCPURule(t, e, 0, 300)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	require.Len(t, e.Incidents().Active(), 1)

	e.Ingest(context.Background(), batchAt(now.Add(time.Minute), 40))
	assert.Empty(t, e.Incidents().Active())

	select {
	case <-resolved:
	case <-time.After(time.Second):
		t.Fatal("no incident_resolved event published")
	}
}

func TestEngine_ManualResolveAllowsRefire(t *testing.T) {
	e, _, _ := newTestEngine(t)
	addCPURule(t, e, 0, 0)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	active := e.Incidents().Active()
	require.Len(t, active, 1)

	_, err := e.ResolveIncident(active[0].ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, e.Incidents().Active())

	// Condition still holds, so a fresh incident opens on the next cycle
	e.Ingest(context.Background(), batchAt(now.Add(2*time.Minute), 94))
	refired := e.Incidents().Active()
	require.Len(t, refired, 1)
	assert.NotEqual(t, active[0].ID, refired[0].ID)
}

func TestEngine_SuppressionSkipsNotification(t *testing.T) {
	e, capture, _ := newTestEngine(t)
	rule := addCPURule(t, e, 0, 0)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	active := e.Incidents().Active()
	require.Len(t, active, 1)
	require.Len(t, capture.sent, 1)

	_, err := e.SuppressIncident(active[0].ID, now.Add(time.Hour))
	require.NoError(t, err)

	// While suppressed the open incident stays and nothing new is sent
	e.Ingest(context.Background(), batchAt(now.Add(time.Minute), 95))
	assert.Len(t, capture.sent, 1)
	assert.True(t, e.Incidents().RuleSuppressed(rule.ID, now.Add(time.Minute)))
}

func TestEngine_LoadSeedsDefaults(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.Load())
	assert.Equal(t, 4, e.Rules().Count())
}

func TestEngine_SaveLoadRoundTrip(t *testing.T) {
	capture := &captureNotifier{}
	dispatcher := notifier.NewDispatcher(notifier.Config{})
	dispatcher.Register(capture)
	bus := events.NewEventBus(100)
	defer bus.Close()

	cfg := config.Config{}
	cfg.Storage.DataDir = t.TempDir()

	e, err := engine.New(cfg, dispatcher, events.NewPublisher(bus))
	require.NoError(t, err)

	rule := addCPURule(t, e, 0, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Ingest(context.Background(), batchAt(now, 93))
	require.NoError(t, e.Save())

	restored, err := engine.New(cfg, dispatcher, events.NewPublisher(bus))
	require.NoError(t, err)
	require.NoError(t, restored.Load())

	_, err = restored.Rules().Get(rule.ID)
	require.NoError(t, err)
	require.Len(t, restored.Incidents().Active(), 1)

	// The restored open incident blocks a duplicate for the same rule
	_, err = restored.Incidents().Get(restored.Incidents().Active()[0].ID)
	assert.NoError(t, err)
}

func TestEngine_DeleteRuleNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.Error(t, e.DeleteRule("missing"))
}

func TestEngine_IncidentErrorsSurface(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.ResolveIncident("missing", time.Now())
	assert.ErrorIs(t, err, incident.ErrIncidentNotFound)

	_, err = e.AcknowledgeIncident("missing", "oncall", time.Now())
	assert.ErrorIs(t, err, incident.ErrIncidentNotFound)
}
