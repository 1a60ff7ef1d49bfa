package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var aggregateColumns = []string{
	"id", "region_id", "week_start",
	"total_fever_cases", "total_diarrhea_cases", "total_respiratory_cases",
	"total_admissions", "avg_bed_occupancy", "low_stock_reports",
	"created_at", "updated_at",
}

// UpsertWeeklyAggregate writes the rollup as a single conditional upsert, so
// concurrent recomputations of the same (region, week) cannot interleave into
// a torn row.
func (s *store) UpsertWeeklyAggregate(ctx context.Context, agg *domain.WeeklyAggregate) error {
	query := builder().Insert(tableWeeklyAggregates).
		Columns(
			"id", "region_id", "week_start",
			"total_fever_cases", "total_diarrhea_cases", "total_respiratory_cases",
			"total_admissions", "avg_bed_occupancy", "low_stock_reports",
		).
		Values(
			agg.ID, agg.RegionID, agg.WeekStart,
			agg.TotalFeverCases, agg.TotalDiarrheaCases, agg.TotalRespiratoryCases,
			agg.TotalAdmissions, agg.AvgBedOccupancy, agg.LowStockReports,
		).
		Suffix(`on conflict (region_id, week_start) do update set
	total_fever_cases = excluded.total_fever_cases,
	total_diarrhea_cases = excluded.total_diarrhea_cases,
	total_respiratory_cases = excluded.total_respiratory_cases,
	total_admissions = excluded.total_admissions,
	avg_bed_occupancy = excluded.avg_bed_occupancy,
	low_stock_reports = excluded.low_stock_reports,
	updated_at = now()`)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) ListWeeklyAggregates(ctx context.Context, w SeriesWindow) ([]*domain.WeeklyAggregate, error) {
	query := w.apply(builder().Select(aggregateColumns...).From(tableWeeklyAggregates)).
		OrderBy("region_id, week_start")

	selected, err := xpgx.Selectx[domain.WeeklyAggregate](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) LatestWeeklyAggregates(ctx context.Context, regionID int64, limit int) ([]*domain.WeeklyAggregate, error) {
	query := builder().Select(aggregateColumns...).
		From(tableWeeklyAggregates).
		Where(sq.Eq{"region_id": regionID}).
		OrderBy("week_start desc").
		Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.WeeklyAggregate](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
