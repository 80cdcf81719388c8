// Package engine wires the sampling, baseline, anomaly, and alerting
// components into one evaluation cycle.
package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/hostwatch/hostwatch/internal/alerting"
	"github.com/hostwatch/hostwatch/internal/analytics"
	"github.com/hostwatch/hostwatch/internal/anomaly"
	"github.com/hostwatch/hostwatch/internal/baseline"
	"github.com/hostwatch/hostwatch/internal/events"
	"github.com/hostwatch/hostwatch/internal/incident"
	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/metrics"
	"github.com/hostwatch/hostwatch/internal/notifier"
	"github.com/hostwatch/hostwatch/internal/storage"
	"github.com/hostwatch/hostwatch/internal/store"
	"github.com/hostwatch/hostwatch/pkg/config"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// Engine owns the core processing state. One Ingest call runs a full cycle:
// store samples, maintain baselines, flag anomalies, evaluate rules, and
// drive incident lifecycle with notifications.
type Engine struct {
	config config.Config

	store     *store.TimeSeriesStore
	estimator *baseline.Estimator
	detector  *anomaly.Detector
	rules     *alerting.RuleStore
	evaluator *alerting.Evaluator
	incidents *incident.Manager
	analyzer  *analytics.Analyzer
	snapshot  *storage.Snapshot

	dispatcher *notifier.Dispatcher
	publisher  *events.Publisher
}

func New(cfg config.Config, dispatcher *notifier.Dispatcher, publisher *events.Publisher) (*Engine, error) {
	ts := store.New(store.Config{
		Retention:  cfg.Retention.SampleWindow,
		PruneEvery: cfg.Retention.PruneEvery,
	})
	estimator := baseline.New(baseline.Config{
		Window:          cfg.Baseline.Window,
		RefreshInterval: cfg.Baseline.RefreshInterval,
		MinSamples:      cfg.Baseline.MinSamples,
	}, ts)

	snap, err := storage.NewSnapshot(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:     cfg,
		store:      ts,
		estimator:  estimator,
		detector:   anomaly.New(anomaly.Config{Retention: cfg.Retention.AnomalyWindow}, estimator),
		rules:      alerting.NewRuleStore(),
		evaluator:  alerting.NewEvaluator(alerting.Config{Epsilon: cfg.Evaluator.Epsilon}),
		incidents:  incident.NewManager(),
		analyzer:   analytics.NewAnalyzer(ts),
		snapshot:   snap,
		dispatcher: dispatcher,
		publisher:  publisher,
	}, nil
}

// Load restores rules, incidents, and baselines from the snapshot files,
// then seeds the default rule set when no rules exist.
func (e *Engine) Load() error {
	rules, err := e.snapshot.LoadRules()
	if err != nil {
		return err
	}
	if len(rules) > 0 {
		e.rules.Replace(rules)
		logger.Infof("loaded %d alert rules from snapshot", len(rules))
	}
	e.rules.SeedDefaults(runtime.NumCPU(), time.Now())

	incidents, err := e.snapshot.LoadIncidents()
	if err != nil {
		return err
	}
	if len(incidents) > 0 {
		e.incidents.Replace(incidents)
		logger.Infof("loaded %d incidents from snapshot", len(incidents))
	}

	baselines, err := e.snapshot.LoadBaselines()
	if err != nil {
		return err
	}
	for _, b := range baselines {
		e.estimator.Restore(b)
	}
	return nil
}

// Save writes the current rules, incidents, and baselines to disk.
func (e *Engine) Save() error {
	if err := e.snapshot.SaveRules(e.rules.List()); err != nil {
		return err
	}
	if err := e.snapshot.SaveIncidents(e.incidents.All()); err != nil {
		return err
	}
	return e.snapshot.SaveBaselines(e.estimator.Baselines())
}

// SaveAsync persists a snapshot in the background. In-memory state stays
// authoritative; a failed write is logged and retried on the next save.
func (e *Engine) SaveAsync() {
	go func() {
		if err := e.Save(); err != nil {
			logger.Errorf("snapshot save failed: %v", err)
		}
	}()
}

// Ingest runs one evaluation cycle over a batch of sampled values.
func (e *Engine) Ingest(ctx context.Context, batch models.SampleBatch) {
	now := batch.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	samples := batch.Samples()
	for _, sample := range samples {
		e.store.Append(sample)
		metrics.SamplesIngested.WithLabelValues(sample.MetricName).Inc()
		metrics.MetricValue.WithLabelValues(sample.MetricName).Set(sample.Value)
	}
	e.publisher.SampleIngested(batch)

	e.maintainBaselines(now)

	for _, sample := range samples {
		if record, flagged := e.detector.Check(sample); flagged {
			metrics.AnomaliesDetected.WithLabelValues(record.MetricName, string(record.Severity)).Inc()
			e.publisher.AnomalyDetected(record)
		}
	}

	e.evaluateRules(ctx, batch.Values, now)
	metrics.ActiveIncidents.Set(float64(len(e.incidents.Active())))
}

func (e *Engine) maintainBaselines(now time.Time) {
	trackedMetrics := e.store.Metrics()
	if len(trackedMetrics) == 0 {
		return
	}
	if !e.estimator.ShouldRefresh(trackedMetrics, now) {
		return
	}

	updated := e.estimator.Refresh(trackedMetrics, now)
	if len(updated) == 0 {
		return
	}
	metrics.BaselineRefreshes.Inc()
	for _, b := range updated {
		e.publisher.BaselineUpdated(b)
	}
	if err := e.snapshot.SaveBaselines(e.estimator.Baselines()); err != nil {
		logger.Errorf("baseline snapshot failed: %v", err)
	}
}

func (e *Engine) evaluateRules(ctx context.Context, values map[string]float64, now time.Time) {
	for _, rule := range e.rules.List() {
		metrics.RuleEvaluations.Inc()
		value, ok := values[rule.Metric]

		switch e.evaluator.Evaluate(rule, value, ok, now, e.incidents) {
		case alerting.ActionFire:
			inc, created := e.incidents.Create(rule, value, now)
			if created {
				metrics.IncidentsOpened.WithLabelValues(string(inc.Level)).Inc()
				e.publisher.IncidentCreated(inc)
			}
			e.notify(ctx, inc, rule.NotificationChannels)
		case alerting.ActionResolve:
			if inc, resolved := e.incidents.AutoResolve(rule.ID, now); resolved {
				metrics.IncidentsResolved.Inc()
				e.publisher.IncidentResolved(inc)
			}
		}
	}
}

func (e *Engine) notify(ctx context.Context, inc models.Incident, channels []string) {
	delivered, err := e.dispatcher.Dispatch(ctx, inc, channels)
	if delivered > 0 {
		e.incidents.IncrementNotification(inc.ID)
	}
	if err != nil {
		metrics.NotificationFailures.Inc()
		e.publisher.NotificationFailed(inc, err)
	}
}

// ResolveIncident resolves an incident by hand and clears the rule's firing
// state so a future breach opens a fresh incident.
func (e *Engine) ResolveIncident(id string, now time.Time) (models.Incident, error) {
	inc, err := e.incidents.Resolve(id, now)
	if err != nil {
		return models.Incident{}, err
	}
	e.evaluator.ClearFiring(inc.RuleID)
	metrics.IncidentsResolved.Inc()
	e.publisher.IncidentResolved(inc)
	return inc, nil
}

// AcknowledgeIncident marks an incident as acknowledged.
func (e *Engine) AcknowledgeIncident(id, by string, now time.Time) (models.Incident, error) {
	inc, err := e.incidents.Acknowledge(id, by, now)
	if err != nil {
		return models.Incident{}, err
	}
	e.publisher.IncidentAcknowledged(inc)
	return inc, nil
}

// SuppressIncident mutes an incident until the given time.
func (e *Engine) SuppressIncident(id string, until time.Time) (models.Incident, error) {
	inc, err := e.incidents.Suppress(id, until)
	if err != nil {
		return models.Incident{}, err
	}
	e.publisher.IncidentSuppressed(inc)
	return inc, nil
}

// DeleteRule removes a rule and drops its evaluator state.
func (e *Engine) DeleteRule(id string) error {
	if err := e.rules.Delete(id); err != nil {
		return err
	}
	e.evaluator.Forget(id)
	return nil
}

func (e *Engine) Store() *store.TimeSeriesStore { return e.store }
func (e *Engine) Baselines() *baseline.Estimator { return e.estimator }
func (e *Engine) Anomalies() *anomaly.Detector { return e.detector }
func (e *Engine) Rules() *alerting.RuleStore { return e.rules }
func (e *Engine) Incidents() *incident.Manager { return e.incidents }
func (e *Engine) Analytics() *analytics.Analyzer { return e.analyzer }
