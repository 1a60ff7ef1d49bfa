package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/metrics"
	"github.com/phip-project/phip/internal/pkg/store"
)

// Config holds the empirically chosen rule constants; they ship as defaults
// but stay tunable through configuration.
type Config struct {
	HighRiskThreshold  float64
	RainfallSpikeRatio float64
	FeverSpikeRatio    float64
}

func DefaultConfig() Config {
	return Config{
		HighRiskThreshold:  0.7,
		RainfallSpikeRatio: 1.3,
		FeverSpikeRatio:    1.5,
	}
}

type Service struct {
	store store.Store
	cfg   Config
}

func NewAlertsService(store store.Store, cfg Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Evaluate runs the alert rules for one scoring result and writes at most
// one alert. First match wins: the high-risk rule short-circuits so the
// early-warning heuristic can never double-alert on top of it. No rule
// firing is the normal outcome and returns (nil, nil).
func (s *Service) Evaluate(ctx context.Context, regionID int64, disease string, week time.Time, riskScore float64) (*domain.Alert, error) {
	if riskScore > s.cfg.HighRiskThreshold {
		return s.raise(ctx, &domain.Alert{
			RegionID:  regionID,
			Disease:   disease,
			WeekStart: week,
			Level:     domain.AlertLevelHigh,
			Message:   fmt.Sprintf("High %s outbreak risk in next weeks", disease),
			RiskScore: riskScore,
		})
	}

	envs, err := s.store.LatestEnvMetrics(ctx, regionID, 2)
	if err != nil {
		return nil, fmt.Errorf("store.LatestEnvMetrics: %w", err)
	}
	aggs, err := s.store.LatestWeeklyAggregates(ctx, regionID, 2)
	if err != nil {
		return nil, fmt.Errorf("store.LatestWeeklyAggregates: %w", err)
	}
	if len(envs) != 2 || len(aggs) != 2 {
		return nil, nil // not enough history for the trend heuristic
	}

	rainfallSpike := rainfall(envs[0]) > rainfall(envs[1])*s.cfg.RainfallSpikeRatio
	feverSpike := float64(aggs[0].TotalFeverCases) > float64(aggs[1].TotalFeverCases)*s.cfg.FeverSpikeRatio
	if rainfallSpike && feverSpike {
		return s.raise(ctx, &domain.Alert{
			RegionID:  regionID,
			Disease:   disease,
			WeekStart: week,
			Level:     domain.AlertLevelEarlyWarning,
			Message:   "Early warning: fever increase and rainfall spike detected",
			RiskScore: riskScore,
		})
	}

	return nil, nil
}

func (s *Service) raise(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	alert.ID = uuid.NewString()
	if err := s.store.InsertAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("store.InsertAlert: %w", err)
	}

	metrics.AlertsRaised.WithLabelValues(alert.Level).Inc()
	return alert, nil
}

func rainfall(m *domain.EnvMetric) float64 {
	if m.RainfallMM == nil {
		return 0
	}
	return *m.RainfallMM
}

func (s *Service) List(ctx context.Context, f store.AlertFilter) ([]*domain.Alert, error) {
	return s.store.ListAlerts(ctx, f)
}
