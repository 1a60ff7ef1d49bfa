// Package storetest provides an in-memory Store used by service tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store"
)

type Fake struct {
	mu sync.Mutex

	nextRegionID int64
	nextSeriesID int64

	Regions       []*domain.Region
	Facilities    []*domain.Facility
	Users         []*domain.FacilityUser
	Reports       []*domain.DailyReport
	EnvMetrics    []*domain.EnvMetric
	History       []*domain.DiseaseHistory
	Aggregates    []*domain.WeeklyAggregate
	Predictions   []*domain.RiskPrediction
	Alerts        []*domain.Alert
	AggregateUpserts int
}

var _ store.Store = (*Fake)(nil)

func New() *Fake {
	return &Fake{nextRegionID: 1, nextSeriesID: 1}
}

func (f *Fake) UpsertRegion(_ context.Context, state, district string, lat, lon *float64) (*domain.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.Regions {
		if r.State == state && r.District == district {
			if r.Latitude == nil {
				r.Latitude = lat
			}
			if r.Longitude == nil {
				r.Longitude = lon
			}
			return r, nil
		}
	}

	r := &domain.Region{
		ID:        f.nextRegionID,
		State:     state,
		District:  district,
		Latitude:  lat,
		Longitude: lon,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.nextRegionID++
	f.Regions = append(f.Regions, r)
	return r, nil
}

func (f *Fake) GetRegion(_ context.Context, state, district string) (*domain.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.Regions {
		if r.State == state && r.District == district {
			return r, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *Fake) GetRegionByID(_ context.Context, id int64) (*domain.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.Regions {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *Fake) ListRegions(_ context.Context) ([]*domain.Region, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Region(nil), f.Regions...), nil
}

func (f *Fake) InsertFacility(_ context.Context, facility *domain.Facility) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Facilities = append(f.Facilities, facility)
	return nil
}

func (f *Fake) GetFacilityByID(_ context.Context, id string) (*domain.Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, fac := range f.Facilities {
		if fac.ID == id {
			return fac, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *Fake) InsertFacilityUser(_ context.Context, user *domain.FacilityUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Users = append(f.Users, user)
	return nil
}

func (f *Fake) GetFacilityUserByUsername(_ context.Context, username string) (*domain.FacilityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *Fake) UpsertDailyReport(_ context.Context, report *domain.DailyReport) (*domain.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, r := range f.Reports {
		if r.FacilityID == report.FacilityID && r.ReportDate.Equal(report.ReportDate) {
			report.ID = r.ID
			f.Reports[i] = report
			return report, nil
		}
	}
	f.Reports = append(f.Reports, report)
	return report, nil
}

func (f *Fake) GetFacilityReport(_ context.Context, facilityID string, date time.Time) (*domain.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.Reports {
		if r.FacilityID == facilityID && r.ReportDate.Equal(date) {
			return r, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *Fake) ListRegionReports(_ context.Context, regionID int64, from, to time.Time) ([]*domain.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byFacility := make(map[string]int64, len(f.Facilities))
	for _, fac := range f.Facilities {
		byFacility[fac.ID] = fac.RegionID
	}

	var out []*domain.DailyReport
	for _, r := range f.Reports {
		if byFacility[r.FacilityID] != regionID {
			continue
		}
		if r.ReportDate.Before(from) || r.ReportDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *Fake) UpsertEnvMetric(_ context.Context, m *domain.EnvMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.EnvMetrics {
		if e.RegionID == m.RegionID && e.WeekStart.Equal(m.WeekStart) {
			if m.RainfallMM != nil {
				e.RainfallMM = m.RainfallMM
			}
			if m.TemperatureC != nil {
				e.TemperatureC = m.TemperatureC
			}
			if m.HumidityPct != nil {
				e.HumidityPct = m.HumidityPct
			}
			if m.FloodRisk != nil {
				e.FloodRisk = m.FloodRisk
			}
			return nil
		}
	}

	m.ID = f.nextSeriesID
	f.nextSeriesID++
	f.EnvMetrics = append(f.EnvMetrics, m)
	return nil
}

func inWindow(week time.Time, w store.SeriesWindow) bool {
	if w.From != nil && week.Before(*w.From) {
		return false
	}
	if w.To != nil && week.After(*w.To) {
		return false
	}
	return true
}

func (f *Fake) ListEnvMetrics(_ context.Context, w store.SeriesWindow) ([]*domain.EnvMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.EnvMetric
	for _, e := range f.EnvMetrics {
		if w.RegionID != nil && e.RegionID != *w.RegionID {
			continue
		}
		if !inWindow(e.WeekStart, w) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionID != out[j].RegionID {
			return out[i].RegionID < out[j].RegionID
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out, nil
}

func (f *Fake) LatestEnvMetrics(_ context.Context, regionID int64, limit int) ([]*domain.EnvMetric, error) {
	all, _ := f.ListEnvMetrics(context.Background(), store.SeriesWindow{RegionID: &regionID})
	sort.Slice(all, func(i, j int) bool { return all[i].WeekStart.After(all[j].WeekStart) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *Fake) UpsertDiseaseHistory(_ context.Context, h *domain.DiseaseHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range f.History {
		if d.RegionID == h.RegionID && d.WeekStart.Equal(h.WeekStart) {
			if h.CholeraCases != nil {
				d.CholeraCases = h.CholeraCases
			}
			if h.MalariaCases != nil {
				d.MalariaCases = h.MalariaCases
			}
			if h.LassaCases != nil {
				d.LassaCases = h.LassaCases
			}
			if h.MeningitisCases != nil {
				d.MeningitisCases = h.MeningitisCases
			}
			return nil
		}
	}

	h.ID = f.nextSeriesID
	f.nextSeriesID++
	f.History = append(f.History, h)
	return nil
}

func (f *Fake) ListDiseaseHistory(_ context.Context, w store.SeriesWindow) ([]*domain.DiseaseHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.DiseaseHistory
	for _, d := range f.History {
		if w.RegionID != nil && d.RegionID != *w.RegionID {
			continue
		}
		if !inWindow(d.WeekStart, w) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionID != out[j].RegionID {
			return out[i].RegionID < out[j].RegionID
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out, nil
}

func (f *Fake) LatestHistoryWeek(_ context.Context, regionID int64) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *time.Time
	for _, d := range f.History {
		if d.RegionID != regionID {
			continue
		}
		w := d.WeekStart
		if latest == nil || w.After(*latest) {
			latest = &w
		}
	}
	if latest == nil {
		return nil, constants.ErrDBNotFound
	}
	return latest, nil
}

func (f *Fake) UpsertWeeklyAggregate(_ context.Context, agg *domain.WeeklyAggregate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AggregateUpserts++
	for i, a := range f.Aggregates {
		if a.RegionID == agg.RegionID && a.WeekStart.Equal(agg.WeekStart) {
			agg.ID = a.ID
			agg.CreatedAt = a.CreatedAt
			f.Aggregates[i] = agg
			return nil
		}
	}
	f.Aggregates = append(f.Aggregates, agg)
	return nil
}

func (f *Fake) ListWeeklyAggregates(_ context.Context, w store.SeriesWindow) ([]*domain.WeeklyAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.WeeklyAggregate
	for _, a := range f.Aggregates {
		if w.RegionID != nil && a.RegionID != *w.RegionID {
			continue
		}
		if !inWindow(a.WeekStart, w) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionID != out[j].RegionID {
			return out[i].RegionID < out[j].RegionID
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out, nil
}

func (f *Fake) LatestWeeklyAggregates(_ context.Context, regionID int64, limit int) ([]*domain.WeeklyAggregate, error) {
	all, _ := f.ListWeeklyAggregates(context.Background(), store.SeriesWindow{RegionID: &regionID})
	sort.Slice(all, func(i, j int) bool { return all[i].WeekStart.After(all[j].WeekStart) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *Fake) InsertPrediction(_ context.Context, p *domain.RiskPrediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Predictions = append(f.Predictions, p)
	return nil
}

func (f *Fake) LatestPredictions(_ context.Context, regionID int64, disease string, limit int) ([]*domain.RiskPrediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.RiskPrediction
	for _, p := range f.Predictions {
		if p.RegionID == regionID && p.Disease == disease {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictionDate.After(out[j].PredictionDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) ListLatestPredictionsByRegion(_ context.Context, disease string) (map[int64]*domain.RiskPrediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	latest := make(map[int64]*domain.RiskPrediction)
	for _, p := range f.Predictions {
		if p.Disease != disease {
			continue
		}
		cur, ok := latest[p.RegionID]
		if !ok || p.PredictionDate.After(cur.PredictionDate) {
			latest[p.RegionID] = p
		}
	}
	return latest, nil
}

func (f *Fake) InsertAlert(_ context.Context, a *domain.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Alerts = append(f.Alerts, a)
	return nil
}

func (f *Fake) ListAlerts(_ context.Context, filter store.AlertFilter) ([]*domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Alert
	for _, a := range f.Alerts {
		if filter.RegionID != nil && a.RegionID != *filter.RegionID {
			continue
		}
		if filter.Disease != nil && a.Disease != *filter.Disease {
			continue
		}
		out = append(out, a)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
