// Package features turns the raw per-region time series into model inputs:
// a labeled training table across all regions, or a single scoring vector
// for one region as of a given week.
package features

import (
	"context"
	"fmt"
	"time"

	"github.com/phip-project/phip/internal/pkg/store"
)

// LabelParams control the rolling-quantile outbreak label. The defaults are
// the empirically chosen values the pipeline shipped with; they are plumbed
// through config rather than hard-coded.
type LabelParams struct {
	WindowWeeks  int
	Quantile     float64
	MinPoints    int
	CaseFloor    float64
	HorizonWeeks int
}

func DefaultLabelParams() LabelParams {
	return LabelParams{
		WindowWeeks:  26,
		Quantile:     0.75,
		MinPoints:    5,
		CaseFloor:    5,
		HorizonWeeks: 2,
	}
}

// scoringWindowWeeks is the trailing window used when building a single
// scoring vector: the as-of week plus the five before it.
const scoringWindowWeeks = 6

type Service struct {
	store store.Store
	label LabelParams
}

func NewFeaturesService(store store.Store, label LabelParams) *Service {
	return &Service{store: store, label: label}
}

type Row struct {
	RegionID int64
	Week     time.Time
	Values   map[string]float64
	Label    float64
}

// Table is the full historical feature/label table for one target disease.
// Schema is the ordered list of feature names shared by every row; it is the
// schema the risk model freezes at training time.
type Table struct {
	Schema []string
	Rows   []Row
}

// Schema returns the ordered feature names derived for a target disease.
// Identifiers, the rolling threshold, the raw outbreak flag and the label
// are never part of it.
func Schema(disease string) []string {
	out := append([]string{}, baseColumns...)
	out = append(out, "week_of_year", "month", "is_rainy_season")
	for _, col := range lagColumns(disease) {
		for lag := 1; lag <= 3; lag++ {
			out = append(out, fmt.Sprintf("%s_lag%d", col, lag))
		}
	}
	out = append(out,
		disease+"_cases_rolling_4w",
		disease+"_cases_growth",
		"fever_growth",
	)
	return out
}

// BuildTrainingTable joins the environmental, case-history and weekly
// aggregate series for every region, derives features, and attaches the
// outbreak label shifted HorizonWeeks ahead. Rows whose shifted label falls
// past the end of a region's series are dropped. An empty table (no data at
// all) is returned as Rows == nil, not as an error.
func (s *Service) BuildTrainingTable(ctx context.Context, disease string) (*Table, error) {
	frames, err := s.collect(ctx, store.SeriesWindow{})
	if err != nil {
		return nil, err
	}

	table := &Table{Schema: Schema(disease)}
	for _, frame := range frames {
		frame.fill()
		frame.derive(disease)

		labels := s.labels(frame, disease)
		horizon := s.label.HorizonWeeks
		for i := range frame.rows {
			if i+horizon >= len(frame.rows) {
				break // label undefined past the series end
			}
			table.Rows = append(table.Rows, Row{
				RegionID: frame.regionID,
				Week:     frame.rows[i].week,
				Values:   frame.rows[i].values,
				Label:    labels[i+horizon],
			})
		}
	}

	return table, nil
}

// BuildVector produces the latest feature mapping for one region over a
// trailing six-week window ending at asOf. A region with no observed weeks
// yields an empty (nil) map; the caller falls back to a zero-risk result.
func (s *Service) BuildVector(ctx context.Context, regionID int64, asOf time.Time, disease string) (map[string]float64, error) {
	from := asOf.AddDate(0, 0, -7*(scoringWindowWeeks-1))
	frames, err := s.collect(ctx, store.SeriesWindow{RegionID: &regionID, From: &from, To: &asOf})
	if err != nil {
		return nil, err
	}

	for _, frame := range frames {
		if frame.regionID != regionID || len(frame.rows) == 0 {
			continue
		}
		frame.fill()
		frame.derive(disease)
		return frame.rows[len(frame.rows)-1].values, nil
	}

	return nil, nil
}
