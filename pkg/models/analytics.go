package models

import "time"

type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// TrendAnalysis summarizes the recent behavior of one metric.
type TrendAnalysis struct {
	MetricName         string  `json:"metric_name"`
	Direction          Trend   `json:"trend_direction"`
	ChangePercent      float64 `json:"trend_percentage"`
	Average            float64 `json:"average_value"`
	Min                float64 `json:"min_value"`
	Max                float64 `json:"max_value"`
	StdDev             float64 `json:"standard_deviation"`
	PredictionNextHour float64 `json:"prediction_next_hour"`
}

// CapacityForecast projects a usage metric forward assuming the current
// daily change rate persists.
type CapacityForecast struct {
	MetricName         string     `json:"metric_name"`
	CurrentUsage       float64    `json:"current_usage"`
	PredictedUsage7d   float64    `json:"predicted_usage_7d"`
	PredictedUsage30d  float64    `json:"predicted_usage_30d"`
	ExhaustionDate     *time.Time `json:"capacity_exhaustion_date,omitempty"`
	RecommendedAction  string     `json:"recommended_action"`
	Confidence         float64    `json:"confidence"`
}
