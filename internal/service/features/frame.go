package features

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/phip-project/phip/internal/pkg/store"
)

// baseColumns is the fixed set of joined source columns, in schema order.
var baseColumns = []string{
	"rainfall_mm", "temperature_c", "humidity_pct", "flood_risk",
	"fever_reports", "cough_reports", "diarrhea_reports", "vomiting_reports",
	"admissions", "bed_occupancy",
	"cholera_cases", "malaria_cases", "lassa_cases", "meningitis_cases",
}

func lagColumns(disease string) []string {
	return []string{disease + "_cases", "rainfall_mm", "fever_reports", "admissions"}
}

type frameRow struct {
	week   time.Time
	values map[string]float64
	// observed marks columns a source actually reported this week, as
	// opposed to values carried forward by fill.
	observed map[string]bool
}

// frame is one region's chronologically sorted weekly series.
type frame struct {
	regionID int64
	rows     []*frameRow
}

// collect outer-joins the three persisted series on (region, week). A week
// appears if any source has a row for it. Null source fields stay
// unobserved; fill resolves them afterwards, which keeps the missing-data
// policy in exactly one place.
func (s *Service) collect(ctx context.Context, w store.SeriesWindow) ([]*frame, error) {
	env, err := s.store.ListEnvMetrics(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("store.ListEnvMetrics: %w", err)
	}
	history, err := s.store.ListDiseaseHistory(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("store.ListDiseaseHistory: %w", err)
	}
	aggs, err := s.store.ListWeeklyAggregates(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("store.ListWeeklyAggregates: %w", err)
	}

	byRegion := map[int64]map[time.Time]*frameRow{}
	row := func(regionID int64, week time.Time) *frameRow {
		weeks, ok := byRegion[regionID]
		if !ok {
			weeks = map[time.Time]*frameRow{}
			byRegion[regionID] = weeks
		}
		r, ok := weeks[week]
		if !ok {
			r = &frameRow{week: week, values: map[string]float64{}, observed: map[string]bool{}}
			weeks[week] = r
		}
		return r
	}
	put := func(r *frameRow, col string, v *float64) {
		if v == nil {
			return
		}
		r.values[col] = *v
		r.observed[col] = true
	}
	putInt := func(r *frameRow, col string, v *int) {
		if v == nil {
			return
		}
		f := float64(*v)
		put(r, col, &f)
	}

	for _, e := range env {
		r := row(e.RegionID, e.WeekStart)
		put(r, "rainfall_mm", e.RainfallMM)
		put(r, "temperature_c", e.TemperatureC)
		put(r, "humidity_pct", e.HumidityPct)
		put(r, "flood_risk", e.FloodRisk)
	}
	for _, h := range history {
		r := row(h.RegionID, h.WeekStart)
		putInt(r, "cholera_cases", h.CholeraCases)
		putInt(r, "malaria_cases", h.MalariaCases)
		putInt(r, "lassa_cases", h.LassaCases)
		putInt(r, "meningitis_cases", h.MeningitisCases)
	}
	for _, a := range aggs {
		r := row(a.RegionID, a.WeekStart)
		fever := float64(a.TotalFeverCases)
		cough := float64(a.TotalRespiratoryCases)
		diarrhea := float64(a.TotalDiarrheaCases)
		vomiting := 0.0
		admissions := float64(a.TotalAdmissions)
		occupancy := a.AvgBedOccupancy
		put(r, "fever_reports", &fever)
		put(r, "cough_reports", &cough)
		put(r, "diarrhea_reports", &diarrhea)
		put(r, "vomiting_reports", &vomiting)
		put(r, "admissions", &admissions)
		put(r, "bed_occupancy", &occupancy)
	}

	regionIDs := make([]int64, 0, len(byRegion))
	for id := range byRegion {
		regionIDs = append(regionIDs, id)
	}
	sort.Slice(regionIDs, func(i, j int) bool { return regionIDs[i] < regionIDs[j] })

	frames := make([]*frame, 0, len(regionIDs))
	for _, id := range regionIDs {
		weeks := byRegion[id]
		f := &frame{regionID: id, rows: make([]*frameRow, 0, len(weeks))}
		for _, r := range weeks {
			f.rows = append(f.rows, r)
		}
		sort.Slice(f.rows, func(i, j int) bool { return f.rows[i].week.Before(f.rows[j].week) })
		frames = append(frames, f)
	}

	return frames, nil
}

// fill forward-fills every base column down the region's sorted series and
// zero-fills whatever has no prior observation. Values never cross regions.
func (f *frame) fill() {
	for _, col := range baseColumns {
		last := 0.0
		seen := false
		for _, r := range f.rows {
			if r.observed[col] {
				last = r.values[col]
				seen = true
				continue
			}
			if seen {
				r.values[col] = last
			} else {
				r.values[col] = 0
			}
		}
	}
}

// derive adds the calendar, lag, rolling and growth features for the target
// disease. Rows must already be filled and sorted; derived values for rows
// too early in the series stay 0.
func (f *frame) derive(disease string) {
	caseCol := disease + "_cases"

	for _, r := range f.rows {
		_, week := r.week.ISOWeek()
		month := int(r.week.Month())
		r.values["week_of_year"] = float64(week)
		r.values["month"] = float64(month)
		if month >= 4 && month <= 10 {
			r.values["is_rainy_season"] = 1
		} else {
			r.values["is_rainy_season"] = 0
		}
	}

	for _, col := range lagColumns(disease) {
		for lag := 1; lag <= 3; lag++ {
			name := fmt.Sprintf("%s_lag%d", col, lag)
			for i, r := range f.rows {
				if i-lag >= 0 {
					r.values[name] = f.rows[i-lag].values[col]
				} else {
					r.values[name] = 0
				}
			}
		}
	}

	// 4-week trailing mean over the window ending the week before the
	// current row; the current value never contributes.
	rollingName := caseCol + "_rolling_4w"
	for i, r := range f.rows {
		if i < 4 {
			r.values[rollingName] = 0
			continue
		}
		sum := 0.0
		for j := i - 4; j < i; j++ {
			sum += f.rows[j].values[caseCol]
		}
		r.values[rollingName] = sum / 4
	}

	f.growth(caseCol, caseCol+"_growth")
	f.growth("fever_reports", "fever_growth")
}

// growth writes week-over-week percentage change of col into name; division
// by zero and the first row normalize to 0.
func (f *frame) growth(col, name string) {
	for i, r := range f.rows {
		if i == 0 {
			r.values[name] = 0
			continue
		}
		prev := f.rows[i-1].values[col]
		if prev == 0 {
			r.values[name] = 0
			continue
		}
		r.values[name] = (r.values[col] - prev) / prev
	}
}

// labels computes the outbreak flag per row: case count above a trailing
// rolling-quantile threshold (floored at CaseFloor). A window with fewer
// than MinPoints observations leaves the threshold undefined and the row
// not an outbreak.
func (s *Service) labels(f *frame, disease string) []float64 {
	caseCol := disease + "_cases"
	out := make([]float64, len(f.rows))

	for i, r := range f.rows {
		lo := i - s.label.WindowWeeks + 1
		if lo < 0 {
			lo = 0
		}
		window := make([]float64, 0, i-lo+1)
		for j := lo; j <= i; j++ {
			window = append(window, f.rows[j].values[caseCol])
		}
		if len(window) < s.label.MinPoints {
			continue
		}

		threshold := quantile(window, s.label.Quantile)
		if threshold < s.label.CaseFloor {
			threshold = s.label.CaseFloor
		}
		if r.values[caseCol] > threshold {
			out[i] = 1
		}
	}

	return out
}

// quantile computes the q-th quantile with linear interpolation between
// order statistics.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
