package domain

import "time"

const (
	AlertLevelHigh         = "High"
	AlertLevelEarlyWarning = "EarlyWarning"
)

// Alert is one triggered rule evaluation. Append-only.
type Alert struct {
	ID        string    `db:"id"`
	RegionID  int64     `db:"region_id"`
	Disease   string    `db:"disease"`
	WeekStart time.Time `db:"week_start"`
	Level     string    `db:"level"`
	Message   string    `db:"message"`
	RiskScore float64   `db:"risk_score"`
	CreatedAt time.Time `db:"created_at"`
}
