package store

import (
	"context"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// SeriesWindow narrows a time-series listing to one region and/or a closed
// week interval. Nil fields mean "no filter".
type SeriesWindow struct {
	RegionID *int64
	From     *time.Time
	To       *time.Time
}

type AlertFilter struct {
	RegionID *int64
	Disease  *string
	Limit    int
}

type Store interface {
	// regions
	UpsertRegion(ctx context.Context, state, district string, lat, lon *float64) (*domain.Region, error)
	GetRegion(ctx context.Context, state, district string) (*domain.Region, error)
	GetRegionByID(ctx context.Context, id int64) (*domain.Region, error)
	ListRegions(ctx context.Context) ([]*domain.Region, error)

	// facilities
	InsertFacility(ctx context.Context, facility *domain.Facility) error
	GetFacilityByID(ctx context.Context, id string) (*domain.Facility, error)
	InsertFacilityUser(ctx context.Context, user *domain.FacilityUser) error
	GetFacilityUserByUsername(ctx context.Context, username string) (*domain.FacilityUser, error)

	// daily reports
	UpsertDailyReport(ctx context.Context, report *domain.DailyReport) (*domain.DailyReport, error)
	ListRegionReports(ctx context.Context, regionID int64, from, to time.Time) ([]*domain.DailyReport, error)
	GetFacilityReport(ctx context.Context, facilityID string, date time.Time) (*domain.DailyReport, error)

	// time series
	UpsertEnvMetric(ctx context.Context, m *domain.EnvMetric) error
	ListEnvMetrics(ctx context.Context, w SeriesWindow) ([]*domain.EnvMetric, error)
	LatestEnvMetrics(ctx context.Context, regionID int64, limit int) ([]*domain.EnvMetric, error)
	UpsertDiseaseHistory(ctx context.Context, h *domain.DiseaseHistory) error
	ListDiseaseHistory(ctx context.Context, w SeriesWindow) ([]*domain.DiseaseHistory, error)
	LatestHistoryWeek(ctx context.Context, regionID int64) (*time.Time, error)

	// weekly aggregates
	UpsertWeeklyAggregate(ctx context.Context, agg *domain.WeeklyAggregate) error
	ListWeeklyAggregates(ctx context.Context, w SeriesWindow) ([]*domain.WeeklyAggregate, error)
	LatestWeeklyAggregates(ctx context.Context, regionID int64, limit int) ([]*domain.WeeklyAggregate, error)

	// predictions
	InsertPrediction(ctx context.Context, p *domain.RiskPrediction) error
	LatestPredictions(ctx context.Context, regionID int64, disease string, limit int) ([]*domain.RiskPrediction, error)
	ListLatestPredictionsByRegion(ctx context.Context, disease string) (map[int64]*domain.RiskPrediction, error)

	// alerts
	InsertAlert(ctx context.Context, a *domain.Alert) error
	ListAlerts(ctx context.Context, f AlertFilter) ([]*domain.Alert, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
