package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var regionColumns = []string{"id", "state", "district", "latitude", "longitude", "created_at", "updated_at"}

func (s *store) UpsertRegion(ctx context.Context, state, district string, lat, lon *float64) (*domain.Region, error) {
	query := builder().Insert(tableRegions).
		Columns("state", "district", "latitude", "longitude").
		Values(state, district, lat, lon).
		Suffix(`on conflict (state, district) do update set
	latitude = coalesce(regions.latitude, excluded.latitude),
	longitude = coalesce(regions.longitude, excluded.longitude),
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetRegion(ctx, state, district)
}

func (s *store) GetRegion(ctx context.Context, state, district string) (*domain.Region, error) {
	query := builder().Select(regionColumns...).
		From(tableRegions).
		Where(sq.Eq{"state": state, "district": district})

	selected, err := xpgx.Getx[domain.Region](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) GetRegionByID(ctx context.Context, id int64) (*domain.Region, error) {
	query := builder().Select(regionColumns...).
		From(tableRegions).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Getx[domain.Region](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListRegions(ctx context.Context) ([]*domain.Region, error) {
	query := builder().Select(regionColumns...).
		From(tableRegions).
		OrderBy("state, district")

	selected, err := xpgx.Selectx[domain.Region](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
