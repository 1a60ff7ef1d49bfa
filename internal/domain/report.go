package domain

import "time"

const (
	StockNormal = "Normal"
	StockLow    = "Low"
	StockOut    = "Out"
)

// DailyReport is one facility's submission for one calendar day. It is the
// sole input to the weekly rollup; (facility, report_date) is unique and a
// resubmission replaces the previous counts.
type DailyReport struct {
	ID                     string    `db:"id"`
	FacilityID             string    `db:"facility_id"`
	ReportDate             time.Time `db:"report_date"`
	FeverCases             int       `db:"fever_cases"`
	DiarrheaCases          int       `db:"diarrhea_cases"`
	VomitingCases          int       `db:"vomiting_cases"`
	RespiratoryCases       int       `db:"respiratory_cases"`
	HospitalAdmissions     int       `db:"hospital_admissions"`
	SevereDehydrationCases int       `db:"severe_dehydration_cases"`
	UnexplainedDeaths      int       `db:"unexplained_deaths"`
	BedOccupancyRate       *float64  `db:"bed_occupancy_rate"`
	ORSStockLevel          string    `db:"ors_stock_level"`
	AntibioticsStockLevel  string    `db:"antibiotics_stock_level"`
	Notes                  *string   `db:"notes"`
	CreatedAt              time.Time `db:"created_at"`
}

// WeeklyAggregate is the regional weekly rollup of daily reports. It is
// written only by the aggregation service and recomputed idempotently.
type WeeklyAggregate struct {
	ID                    string    `db:"id"`
	RegionID              int64     `db:"region_id"`
	WeekStart             time.Time `db:"week_start"`
	TotalFeverCases       int       `db:"total_fever_cases"`
	TotalDiarrheaCases    int       `db:"total_diarrhea_cases"`
	TotalRespiratoryCases int       `db:"total_respiratory_cases"`
	TotalAdmissions       int       `db:"total_admissions"`
	AvgBedOccupancy       float64   `db:"avg_bed_occupancy"`
	LowStockReports       int       `db:"low_stock_reports"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}
