package domain

import "time"

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type RegisterFacilityRequest struct {
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=PHC Hospital Clinic"`
	State     string   `json:"state" validate:"required"`
	District  string   `json:"district" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Username  string   `json:"username" validate:"required,min=3"`
	Password  string   `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string    `json:"token"`
	Facility *Facility `json:"facility"`
}

type SubmitReportRequest struct {
	ReportDate             time.Time `json:"report_date" validate:"required"`
	FeverCases             int       `json:"fever_cases" validate:"min=0"`
	DiarrheaCases          int       `json:"diarrhea_cases" validate:"min=0"`
	VomitingCases          int       `json:"vomiting_cases" validate:"min=0"`
	RespiratoryCases       int       `json:"respiratory_cases" validate:"min=0"`
	HospitalAdmissions     int       `json:"hospital_admissions" validate:"min=0"`
	SevereDehydrationCases int       `json:"severe_dehydration_cases" validate:"min=0"`
	UnexplainedDeaths      int       `json:"unexplained_deaths" validate:"min=0"`
	BedOccupancyRate       *float64  `json:"bed_occupancy_rate"`
	ORSStockLevel          string    `json:"ors_stock_level" validate:"omitempty,oneof=Normal Low Out"`
	AntibioticsStockLevel  string    `json:"antibiotics_stock_level" validate:"omitempty,oneof=Normal Low Out"`
	Notes                  *string   `json:"notes"`
}

// ScoringDiagnostic reports the outcome of the best-effort scoring phase
// that follows a successful report write. A failure here never fails the
// submission itself.
type ScoringDiagnostic struct {
	Disease string `json:"disease"`
	Status  string `json:"status"` // scored | skipped | failed
	Error   string `json:"error,omitempty"`
}

type SubmitReportResponse struct {
	Report  *DailyReport        `json:"report"`
	Scoring []ScoringDiagnostic `json:"scoring,omitempty"`
}

type EnvMetricRequest struct {
	State        string    `json:"state" validate:"required"`
	District     string    `json:"district" validate:"required"`
	WeekStart    time.Time `json:"week_start" validate:"required"`
	RainfallMM   *float64  `json:"rainfall_mm"`
	TemperatureC *float64  `json:"temperature_c"`
	HumidityPct  *float64  `json:"humidity_pct"`
	FloodRisk    *float64  `json:"flood_risk"`
}

type DiseaseHistoryRequest struct {
	State           string    `json:"state" validate:"required"`
	District        string    `json:"district" validate:"required"`
	WeekStart       time.Time `json:"week_start" validate:"required"`
	CholeraCases    *int      `json:"cholera_cases"`
	MalariaCases    *int      `json:"malaria_cases"`
	LassaCases      *int      `json:"lassa_cases"`
	MeningitisCases *int      `json:"meningitis_cases"`
}

type SMSReportRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text" validate:"required"`
}

type BackfillBulletinRequest struct {
	URL       string    `json:"url"`
	WeekStart time.Time `json:"week_start" validate:"required"`
}

type PredictionResponse struct {
	State          string       `json:"state"`
	District       string       `json:"district"`
	Disease        string       `json:"disease"`
	PredictionDate time.Time    `json:"prediction_date"`
	WeeksAhead     int          `json:"weeks_ahead"`
	RiskScore      float64      `json:"risk_score"`
	RiskLevel      string       `json:"risk_level"`
	TopFactors     []string     `json:"top_factors"`
	Metrics        ModelMetrics `json:"metrics"`
}

type HeatmapItem struct {
	State     string   `json:"state"`
	District  string   `json:"district"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RiskScore float64  `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
	Disease   string   `json:"disease"`
}

type HeatmapResponse struct {
	Items []HeatmapItem `json:"items"`
}

type ComparisonStats struct {
	MyFever              int     `json:"my_fever"`
	RegionAvgFever       float64 `json:"region_avg_fever"`
	MyRespiratory        int     `json:"my_respiratory"`
	RegionAvgRespiratory float64 `json:"region_avg_respiratory"`
	MyDiarrhea           int     `json:"my_diarrhea"`
	RegionAvgDiarrhea    float64 `json:"region_avg_diarrhea"`
	MyVomiting           int     `json:"my_vomiting"`
	RegionAvgVomiting    float64 `json:"region_avg_vomiting"`
}

type FeedbackResponse struct {
	RiskLevel      string          `json:"risk_level"`
	RiskTrend      string          `json:"risk_trend"`
	WarningMessage string          `json:"warning_message"`
	Comparison     ComparisonStats `json:"comparison"`
}
