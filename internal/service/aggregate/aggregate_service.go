package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/pkg/store"
	"github.com/shopspring/decimal"
)

type Service struct {
	store store.Store
}

func NewAggregateService(store store.Store) *Service {
	return &Service{store: store}
}

// WeekStart returns the Sunday that starts the week containing d. A date
// that already falls on Sunday is its own week start.
func WeekStart(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// Rollup recomputes the weekly aggregate for the region and the week
// containing date. It reads every daily report in that week and upserts one
// row, so rerunning it with unchanged reports always produces the same row.
// No reports for the week means no row is written at all.
func (s *Service) Rollup(ctx context.Context, state, district string, date time.Time) error {
	region, err := s.store.GetRegion(ctx, state, district)
	if err != nil {
		return fmt.Errorf("store.GetRegion: %w", err)
	}

	weekStart := WeekStart(date)
	weekEnd := weekStart.AddDate(0, 0, 6)

	reports, err := s.store.ListRegionReports(ctx, region.ID, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("store.ListRegionReports: %w", err)
	}
	if len(reports) == 0 {
		logger.Debugf(ctx, "no reports for %s/%s week %s, skipping rollup", state, district, weekStart.Format("2006-01-02"))
		return nil
	}

	agg := &domain.WeeklyAggregate{
		ID:        uuid.NewString(),
		RegionID:  region.ID,
		WeekStart: weekStart,
	}

	occupancySum := decimal.Decimal{}
	occupancyCount := 0
	for _, r := range reports {
		agg.TotalFeverCases += r.FeverCases
		agg.TotalDiarrheaCases += r.DiarrheaCases
		agg.TotalRespiratoryCases += r.RespiratoryCases
		agg.TotalAdmissions += r.HospitalAdmissions

		if r.BedOccupancyRate != nil {
			occupancySum = occupancySum.Add(decimal.NewFromFloat(*r.BedOccupancyRate))
			occupancyCount++
		}
		if r.ORSStockLevel != domain.StockNormal || r.AntibioticsStockLevel != domain.StockNormal {
			agg.LowStockReports++
		}
	}
	if occupancyCount > 0 {
		agg.AvgBedOccupancy = occupancySum.
			Div(decimal.NewFromInt(int64(occupancyCount))).
			Round(4).
			InexactFloat64()
	}

	if err := s.store.UpsertWeeklyAggregate(ctx, agg); err != nil {
		return fmt.Errorf("store.UpsertWeeklyAggregate: %w", err)
	}

	return nil
}
