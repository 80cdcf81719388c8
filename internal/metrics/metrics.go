// Package metrics exposes Prometheus metrics for the alerting engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hostwatch"

// Sampling pipeline metrics
var (
	SamplesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sampler",
			Name:      "samples_ingested_total",
			Help:      "Total number of metric samples ingested",
		},
		[]string{"metric"},
	)

	SampleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sampler",
			Name:      "errors_total",
			Help:      "Total number of failed sampling cycles",
		},
	)

	MetricValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sampler",
			Name:      "metric_value",
			Help:      "Latest observed value per tracked metric",
		},
		[]string{"metric"},
	)
)

// Alerting metrics
var (
	RuleEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "rule_evaluations_total",
			Help:      "Total number of rule evaluations",
		},
	)

	IncidentsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "incidents_opened_total",
			Help:      "Total number of incidents opened, by level",
		},
		[]string{"level"},
	)

	IncidentsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "incidents_resolved_total",
			Help:      "Total number of incidents resolved",
		},
	)

	ActiveIncidents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "active_incidents",
			Help:      "Number of currently open incidents",
		},
	)
)

// Anomaly detection metrics
var (
	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "detected_total",
			Help:      "Total number of anomalies detected, by metric and severity",
		},
		[]string{"metric", "severity"},
	)

	BaselineRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "baseline_refreshes_total",
			Help:      "Total number of baseline recomputations",
		},
	)
)

// Notification metrics
var (
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "sent_total",
			Help:      "Total number of notifications delivered, by channel",
		},
		[]string{"channel"},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "failures_total",
			Help:      "Total number of failed notification dispatches",
		},
	)
)
