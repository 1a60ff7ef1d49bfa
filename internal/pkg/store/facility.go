package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var (
	facilityColumns     = []string{"id", "region_id", "name", "type", "latitude", "longitude", "created_at"}
	facilityUserColumns = []string{"id", "facility_id", "username", "password_hash", "role", "created_at"}
)

func (s *store) InsertFacility(ctx context.Context, facility *domain.Facility) error {
	query := builder().Insert(tableFacilities).
		Columns("id", "region_id", "name", "type", "latitude", "longitude").
		Values(facility.ID, facility.RegionID, facility.Name, facility.Type, facility.Latitude, facility.Longitude)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) GetFacilityByID(ctx context.Context, id string) (*domain.Facility, error) {
	query := builder().Select(facilityColumns...).
		From(tableFacilities).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Getx[domain.Facility](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) InsertFacilityUser(ctx context.Context, user *domain.FacilityUser) error {
	query := builder().Insert(tableFacilityUsers).
		Columns("id", "facility_id", "username", "password_hash", "role").
		Values(user.ID, user.FacilityID, user.Username, user.PasswordHash, user.Role)

	_, err := s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) GetFacilityUserByUsername(ctx context.Context, username string) (*domain.FacilityUser, error) {
	query := builder().Select(facilityUserColumns...).
		From(tableFacilityUsers).
		Where(sq.Eq{"username": username})

	selected, err := xpgx.Getx[domain.FacilityUser](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
