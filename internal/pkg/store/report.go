package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var reportColumns = []string{
	"id", "facility_id", "report_date",
	"fever_cases", "diarrhea_cases", "vomiting_cases", "respiratory_cases",
	"hospital_admissions", "severe_dehydration_cases", "unexplained_deaths",
	"bed_occupancy_rate", "ors_stock_level", "antibiotics_stock_level",
	"notes", "created_at",
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, prefix+"."+c)
	}
	return out
}

func (s *store) UpsertDailyReport(ctx context.Context, report *domain.DailyReport) (*domain.DailyReport, error) {
	query := builder().Insert(tableDailyReports).
		Columns(
			"id", "facility_id", "report_date",
			"fever_cases", "diarrhea_cases", "vomiting_cases", "respiratory_cases",
			"hospital_admissions", "severe_dehydration_cases", "unexplained_deaths",
			"bed_occupancy_rate", "ors_stock_level", "antibiotics_stock_level", "notes",
		).
		Values(
			report.ID, report.FacilityID, report.ReportDate,
			report.FeverCases, report.DiarrheaCases, report.VomitingCases, report.RespiratoryCases,
			report.HospitalAdmissions, report.SevereDehydrationCases, report.UnexplainedDeaths,
			report.BedOccupancyRate, report.ORSStockLevel, report.AntibioticsStockLevel, report.Notes,
		).
		Suffix(`on conflict (facility_id, report_date) do update set
	fever_cases = excluded.fever_cases,
	diarrhea_cases = excluded.diarrhea_cases,
	vomiting_cases = excluded.vomiting_cases,
	respiratory_cases = excluded.respiratory_cases,
	hospital_admissions = excluded.hospital_admissions,
	severe_dehydration_cases = excluded.severe_dehydration_cases,
	unexplained_deaths = excluded.unexplained_deaths,
	bed_occupancy_rate = excluded.bed_occupancy_rate,
	ors_stock_level = excluded.ors_stock_level,
	antibiotics_stock_level = excluded.antibiotics_stock_level,
	notes = excluded.notes`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return nil, wrapErr(err)
	}

	return s.GetFacilityReport(ctx, report.FacilityID, report.ReportDate)
}

func (s *store) GetFacilityReport(ctx context.Context, facilityID string, date time.Time) (*domain.DailyReport, error) {
	query := builder().Select(reportColumns...).
		From(tableDailyReports).
		Where(sq.Eq{"facility_id": facilityID, "report_date": date})

	selected, err := xpgx.Getx[domain.DailyReport](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

// ListRegionReports returns every daily report submitted by the region's
// facilities within [from, to] inclusive.
func (s *store) ListRegionReports(ctx context.Context, regionID int64, from, to time.Time) ([]*domain.DailyReport, error) {
	query := builder().Select(prefixed("r", reportColumns)...).
		From(tableDailyReports + " r").
		Join(tableFacilities + " f on f.id = r.facility_id").
		Where(sq.Eq{"f.region_id": regionID}).
		Where(sq.GtOrEq{"r.report_date": from}).
		Where(sq.LtOrEq{"r.report_date": to}).
		OrderBy("r.report_date, r.facility_id")

	selected, err := xpgx.Selectx[domain.DailyReport](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}
