package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store"
)

// Service handles external data ingestion: per-request upserts of
// environmental and case-history series, and bulk backfill from the weekly
// environmental bulletin.
type Service struct {
	store store.Store
}

func NewIngestService(store store.Store) *Service {
	return &Service{store: store}
}

// UpsertEnvironment stores one (region, week) of environmental readings.
// The region must already exist; absent numeric fields leave existing
// values untouched.
func (s *Service) UpsertEnvironment(ctx context.Context, req *domain.EnvMetricRequest) error {
	region, err := s.store.GetRegion(ctx, req.State, req.District)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return constants.ErrRegionNotFound
		}
		return fmt.Errorf("store.GetRegion: %w", err)
	}

	metric := &domain.EnvMetric{
		RegionID:     region.ID,
		WeekStart:    req.WeekStart,
		RainfallMM:   req.RainfallMM,
		TemperatureC: req.TemperatureC,
		HumidityPct:  req.HumidityPct,
		FloodRisk:    req.FloodRisk,
	}
	if err := s.store.UpsertEnvMetric(ctx, metric); err != nil {
		return fmt.Errorf("store.UpsertEnvMetric: %w", err)
	}

	return nil
}

func (s *Service) UpsertDiseaseHistory(ctx context.Context, req *domain.DiseaseHistoryRequest) error {
	region, err := s.store.GetRegion(ctx, req.State, req.District)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return constants.ErrRegionNotFound
		}
		return fmt.Errorf("store.GetRegion: %w", err)
	}

	history := &domain.DiseaseHistory{
		RegionID:        region.ID,
		WeekStart:       req.WeekStart,
		CholeraCases:    req.CholeraCases,
		MalariaCases:    req.MalariaCases,
		LassaCases:      req.LassaCases,
		MeningitisCases: req.MeningitisCases,
	}
	if err := s.store.UpsertDiseaseHistory(ctx, history); err != nil {
		return fmt.Errorf("store.UpsertDiseaseHistory: %w", err)
	}

	return nil
}
