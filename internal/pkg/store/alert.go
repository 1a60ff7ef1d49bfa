package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var alertColumns = []string{
	"id", "region_id", "disease", "week_start", "level", "message", "risk_score", "created_at",
}

func (s *store) InsertAlert(ctx context.Context, a *domain.Alert) error {
	query := builder().Insert(tableAlerts).
		Columns("id", "region_id", "disease", "week_start", "level", "message", "risk_score").
		Values(a.ID, a.RegionID, a.Disease, a.WeekStart, a.Level, a.Message, a.RiskScore)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) ListAlerts(ctx context.Context, f AlertFilter) ([]*domain.Alert, error) {
	query := builder().Select(alertColumns...).
		From(tableAlerts).
		OrderBy("created_at desc")

	if f.RegionID != nil {
		query = query.Where(sq.Eq{"region_id": *f.RegionID})
	}
	if f.Disease != nil {
		query = query.Where(sq.Eq{"disease": *f.Disease})
	}
	if f.Limit > 0 {
		query = query.Limit(uint64(f.Limit))
	}

	selected, err := xpgx.Selectx[domain.Alert](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
