package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/pkg/metrics"
	"github.com/phip-project/phip/internal/pkg/store"
	"github.com/phip-project/phip/internal/service/aggregate"
	"github.com/phip-project/phip/internal/service/alerts"
	"github.com/phip-project/phip/internal/service/features"
	"github.com/phip-project/phip/internal/service/risk"
)

type Service struct {
	store    store.Store
	features *features.Service
	registry *risk.Registry
	alerts   *alerts.Service
	horizon  int
}

func NewPredictService(
	st store.Store,
	featureSvc *features.Service,
	registry *risk.Registry,
	alertSvc *alerts.Service,
	horizonWeeks int,
) *Service {
	return &Service{
		store:    st,
		features: featureSvc,
		registry: registry,
		alerts:   alertSvc,
		horizon:  horizonWeeks,
	}
}

// Predict resolves the region, scores it for the disease, appends a
// prediction record and runs the alert rules.
func (s *Service) Predict(ctx context.Context, state, district, disease string) (*domain.PredictionResponse, error) {
	region, err := s.store.GetRegion(ctx, state, district)
	if err != nil {
		if errors.Is(err, constants.ErrDBNotFound) {
			return nil, constants.ErrRegionNotFound
		}
		return nil, fmt.Errorf("store.GetRegion: %w", err)
	}

	result, baseWeek, err := s.Score(ctx, region, disease)
	if err != nil {
		return nil, err
	}

	pred := &domain.RiskPrediction{
		ID:             uuid.NewString(),
		RegionID:       region.ID,
		Disease:        disease,
		PredictionDate: baseWeek,
		WeeksAhead:     s.horizon,
		RiskScore:      result.RiskScore,
		RiskLevel:      result.RiskLevel,
		TopFactors:     result.TopFactors,
	}
	if err := s.store.InsertPrediction(ctx, pred); err != nil {
		return nil, fmt.Errorf("store.InsertPrediction: %w", err)
	}
	metrics.PredictionsServed.WithLabelValues(disease).Inc()

	if _, err := s.alerts.Evaluate(ctx, region.ID, disease, baseWeek, result.RiskScore); err != nil {
		// the prediction is already persisted; a failed rule evaluation
		// must not undo that
		logger.Errorf(ctx, "alerts.Evaluate, region-%d disease-%s: %s", region.ID, disease, err.Error())
	}

	return &domain.PredictionResponse{
		State:          region.State,
		District:       region.District,
		Disease:        disease,
		PredictionDate: baseWeek,
		WeeksAhead:     s.horizon,
		RiskScore:      result.RiskScore,
		RiskLevel:      result.RiskLevel,
		TopFactors:     result.TopFactors,
		Metrics:        result.Metrics,
	}, nil
}

// Score builds the region's scoring vector as of its latest observed
// case-history week (or the current week when it has none) and runs the
// model. A region with no feature history at all gets the zero-risk
// fallback rather than a model call.
func (s *Service) Score(ctx context.Context, region *domain.Region, disease string) (*domain.PredictionResult, time.Time, error) {
	model, err := s.registry.Get(ctx, disease)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("registry.Get: %w", err)
	}

	baseWeek := aggregate.WeekStart(time.Now().UTC())
	if latest, err := s.store.LatestHistoryWeek(ctx, region.ID); err == nil {
		baseWeek = *latest
	}

	vector, err := s.features.BuildVector(ctx, region.ID, baseWeek, disease)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("features.BuildVector: %w", err)
	}
	if len(vector) == 0 {
		return &domain.PredictionResult{
			RiskScore:  0.0,
			RiskLevel:  model.RiskLevel(0.0),
			TopFactors: []string{"No historical data for region"},
			Metrics:    model.Metrics(),
		}, baseWeek, nil
	}

	return model.Predict(vector), baseWeek, nil
}

// Retrain rebuilds every tracked disease's model from current data.
func (s *Service) Retrain(ctx context.Context) error {
	for _, disease := range domain.Diseases {
		if _, err := s.registry.Retrain(ctx, disease); err != nil {
			return fmt.Errorf("retrain %s: %w", disease, err)
		}
	}
	return nil
}

// Heatmap returns the newest persisted prediction per region, scoring
// regions without one on the fly. On-the-fly failures skip the region
// instead of failing the whole map.
func (s *Service) Heatmap(ctx context.Context, disease string) (*domain.HeatmapResponse, error) {
	latest, err := s.store.ListLatestPredictionsByRegion(ctx, disease)
	if err != nil {
		return nil, fmt.Errorf("store.ListLatestPredictionsByRegion: %w", err)
	}

	regions, err := s.store.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListRegions: %w", err)
	}

	resp := &domain.HeatmapResponse{Items: make([]domain.HeatmapItem, 0, len(regions))}
	for _, region := range regions {
		item := domain.HeatmapItem{
			State:     region.State,
			District:  region.District,
			Latitude:  region.Latitude,
			Longitude: region.Longitude,
			Disease:   disease,
		}

		if pred, ok := latest[region.ID]; ok {
			item.RiskScore = pred.RiskScore
			item.RiskLevel = pred.RiskLevel
		} else {
			result, _, err := s.Score(ctx, region, disease)
			if err != nil {
				logger.Warnf(ctx, "heatmap scoring failed for region %d: %s", region.ID, err.Error())
				continue
			}
			item.RiskScore = result.RiskScore
			item.RiskLevel = result.RiskLevel
		}

		resp.Items = append(resp.Items, item)
	}

	return resp, nil
}
