package domain

import "time"

const (
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// RiskPrediction is one scoring run's persisted output. Append-only: every
// run inserts a new row so the prediction history stays auditable.
type RiskPrediction struct {
	ID             string    `db:"id"`
	RegionID       int64     `db:"region_id"`
	Disease        string    `db:"disease"`
	PredictionDate time.Time `db:"prediction_date"`
	WeeksAhead     int       `db:"weeks_ahead"`
	RiskScore      float64   `db:"risk_score"`
	RiskLevel      string    `db:"risk_level"`
	TopFactors     []string  `db:"top_factors"`
	CreatedAt      time.Time `db:"created_at"`
}

// ModelMetrics are the validation scores of the final walk-forward fold.
type ModelMetrics struct {
	AUC       float64 `json:"auc"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// PredictionResult is what the risk model returns to callers.
type PredictionResult struct {
	RiskScore  float64      `json:"risk_score"`
	RiskLevel  string       `json:"risk_level"`
	TopFactors []string     `json:"top_factors"`
	Metrics    ModelMetrics `json:"metrics"`
}
