package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeIncidentCreated)
	other := bus.Subscribe(models.EventTypeBaselineUpdated)

	bus.Publish(models.NewEvent(models.EventTypeIncidentCreated, "High CPU usage", "fired"))

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeIncidentCreated, event.Type)
	assert.Empty(t, other)
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	bus.Publish(models.NewEvent(models.EventTypeAnomalyDetected, "cpu_percent", "spike"))
	bus.Publish(models.NewEvent(models.EventTypeIncidentResolved, "High CPU usage", "cleared"))

	assert.Equal(t, models.EventTypeAnomalyDetected, receive(t, ch).Type)
	assert.Equal(t, models.EventTypeIncidentResolved, receive(t, ch).Type)
}

func TestEventBus_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	bus := events.NewEventBus(1)
	defer bus.Close()

	bus.Subscribe(models.EventTypeError)
	bus.Publish(models.NewEvent(models.EventTypeError, "", "first"))
	// Second publish must not block even though nobody drains the channel
	done := make(chan struct{})
	go func() {
		bus.Publish(models.NewEvent(models.EventTypeError, "", "second"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full channel")
	}
}

func TestEventBus_PublishAfterCloseIsNoop(t *testing.T) {
	bus := events.NewEventBus(10)
	ch := bus.SubscribeAll()
	bus.Close()

	bus.Publish(models.NewEvent(models.EventTypeError, "", "late"))

	_, open := <-ch
	assert.False(t, open)
}

func TestPublisher_IncidentSeverities(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	pub := events.NewPublisher(bus)

	ch := bus.Subscribe(models.EventTypeIncidentCreated)

	pub.IncidentCreated(models.Incident{RuleName: "High memory usage", Level: models.LevelCritical})
	event := receive(t, ch)
	assert.Equal(t, models.SeverityCritical, event.Severity)

	pub.IncidentCreated(models.Incident{RuleName: "High CPU usage", Level: models.LevelWarning})
	event = receive(t, ch)
	assert.Equal(t, models.SeverityWarning, event.Severity)

	require.NotNil(t, event.Data)
}
