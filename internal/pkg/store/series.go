package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var (
	envColumns     = []string{"id", "region_id", "week_start", "rainfall_mm", "temperature_c", "humidity_pct", "flood_risk"}
	historyColumns = []string{"id", "region_id", "week_start", "cholera_cases", "malaria_cases", "lassa_cases", "meningitis_cases"}
)

func (w SeriesWindow) apply(query sq.SelectBuilder) sq.SelectBuilder {
	if w.RegionID != nil {
		query = query.Where(sq.Eq{"region_id": *w.RegionID})
	}
	if w.From != nil {
		query = query.Where(sq.GtOrEq{"week_start": *w.From})
	}
	if w.To != nil {
		query = query.Where(sq.LtOrEq{"week_start": *w.To})
	}
	return query
}

// UpsertEnvMetric inserts or updates one (region, week) row. Null incoming
// fields keep whatever the row already holds.
func (s *store) UpsertEnvMetric(ctx context.Context, m *domain.EnvMetric) error {
	query := builder().Insert(tableEnvMetrics).
		Columns("region_id", "week_start", "rainfall_mm", "temperature_c", "humidity_pct", "flood_risk").
		Values(m.RegionID, m.WeekStart, m.RainfallMM, m.TemperatureC, m.HumidityPct, m.FloodRisk).
		Suffix(`on conflict (region_id, week_start) do update set
	rainfall_mm = coalesce(excluded.rainfall_mm, env_metrics.rainfall_mm),
	temperature_c = coalesce(excluded.temperature_c, env_metrics.temperature_c),
	humidity_pct = coalesce(excluded.humidity_pct, env_metrics.humidity_pct),
	flood_risk = coalesce(excluded.flood_risk, env_metrics.flood_risk)`)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) ListEnvMetrics(ctx context.Context, w SeriesWindow) ([]*domain.EnvMetric, error) {
	query := w.apply(builder().Select(envColumns...).From(tableEnvMetrics)).
		OrderBy("region_id, week_start")

	selected, err := xpgx.Selectx[domain.EnvMetric](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) LatestEnvMetrics(ctx context.Context, regionID int64, limit int) ([]*domain.EnvMetric, error) {
	query := builder().Select(envColumns...).
		From(tableEnvMetrics).
		Where(sq.Eq{"region_id": regionID}).
		OrderBy("week_start desc").
		Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.EnvMetric](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) UpsertDiseaseHistory(ctx context.Context, h *domain.DiseaseHistory) error {
	query := builder().Insert(tableDiseaseHistory).
		Columns("region_id", "week_start", "cholera_cases", "malaria_cases", "lassa_cases", "meningitis_cases").
		Values(h.RegionID, h.WeekStart, h.CholeraCases, h.MalariaCases, h.LassaCases, h.MeningitisCases).
		Suffix(`on conflict (region_id, week_start) do update set
	cholera_cases = coalesce(excluded.cholera_cases, disease_history.cholera_cases),
	malaria_cases = coalesce(excluded.malaria_cases, disease_history.malaria_cases),
	lassa_cases = coalesce(excluded.lassa_cases, disease_history.lassa_cases),
	meningitis_cases = coalesce(excluded.meningitis_cases, disease_history.meningitis_cases)`)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) ListDiseaseHistory(ctx context.Context, w SeriesWindow) ([]*domain.DiseaseHistory, error) {
	query := w.apply(builder().Select(historyColumns...).From(tableDiseaseHistory)).
		OrderBy("region_id, week_start")

	selected, err := xpgx.Selectx[domain.DiseaseHistory](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

// LatestHistoryWeek returns the most recent observed case-history week for
// the region, or ErrDBNotFound when the region has no history at all.
func (s *store) LatestHistoryWeek(ctx context.Context, regionID int64) (*time.Time, error) {
	query := builder().Select("week_start").
		From(tableDiseaseHistory).
		Where(sq.Eq{"region_id": regionID}).
		OrderBy("week_start desc").
		Limit(1)

	rows, err := s.pool.Queryx(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, constants.ErrDBNotFound
	}

	var week time.Time
	if err := rows.Scan(&week); err != nil {
		return nil, wrapErr(err)
	}

	return &week, nil
}
