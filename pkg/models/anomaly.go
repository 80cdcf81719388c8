package models

import "time"

type AnomalySeverity string

const (
	AnomalySeverityLow    AnomalySeverity = "low"
	AnomalySeverityMedium AnomalySeverity = "medium"
	AnomalySeverityHigh   AnomalySeverity = "high"
)

// AnomalyRecord describes a sample that fell outside its metric's baseline
// band. Anomaly records are advisory only; they do not open incidents.
type AnomalyRecord struct {
	Timestamp     time.Time       `json:"timestamp"`
	MetricName    string          `json:"metric_name"`
	ActualValue   float64         `json:"actual_value"`
	ExpectedValue float64         `json:"expected_value"`
	AnomalyScore  float64         `json:"anomaly_score"`
	Severity      AnomalySeverity `json:"severity"`
	Description   string          `json:"description"`
}
