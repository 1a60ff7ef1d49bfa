package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/phip-project/phip/internal/pkg/constants"
)

const (
	tableRegions          = "regions"
	tableFacilities       = "facilities"
	tableFacilityUsers    = "facility_users"
	tableDailyReports     = "daily_reports"
	tableEnvMetrics       = "env_metrics"
	tableDiseaseHistory   = "disease_history"
	tableWeeklyAggregates = "weekly_aggregates"
	tableRiskPredictions  = "risk_predictions"
	tableAlerts           = "alerts"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder returns a squirrel statement builder with Postgres placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
