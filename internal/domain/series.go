package domain

import "time"

// Tracked diseases. Each gets its own model artifact and its own
// `<disease>_cases` column in disease_history.
var Diseases = []string{"cholera", "malaria", "lassa", "meningitis"}

// EnvMetric is one week of environmental readings for a region. Fields are
// nullable: an ingestion batch may carry only a subset, and an upsert must
// not blank out values it does not mention.
type EnvMetric struct {
	ID           int64     `db:"id"`
	RegionID     int64     `db:"region_id"`
	WeekStart    time.Time `db:"week_start"`
	RainfallMM   *float64  `db:"rainfall_mm"`
	TemperatureC *float64  `db:"temperature_c"`
	HumidityPct  *float64  `db:"humidity_pct"`
	FloodRisk    *float64  `db:"flood_risk"`
}

// DiseaseHistory is the confirmed weekly case counts per region, the ground
// truth behind lag features and the outbreak label.
type DiseaseHistory struct {
	ID              int64     `db:"id"`
	RegionID        int64     `db:"region_id"`
	WeekStart       time.Time `db:"week_start"`
	CholeraCases    *int      `db:"cholera_cases"`
	MalariaCases    *int      `db:"malaria_cases"`
	LassaCases      *int      `db:"lassa_cases"`
	MeningitisCases *int      `db:"meningitis_cases"`
}

// Cases returns the count for the named disease, nil-coalesced to 0.
func (h *DiseaseHistory) Cases(disease string) float64 {
	var v *int
	switch disease {
	case "cholera":
		v = h.CholeraCases
	case "malaria":
		v = h.MalariaCases
	case "lassa":
		v = h.LassaCases
	case "meningitis":
		v = h.MeningitisCases
	}
	if v == nil {
		return 0
	}
	return float64(*v)
}
