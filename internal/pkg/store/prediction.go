package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
)

var predictionColumns = []string{
	"id", "region_id", "disease", "prediction_date", "weeks_ahead",
	"risk_score", "risk_level", "top_factors", "created_at",
}

// InsertPrediction appends a scoring run. There is deliberately no update
// path: prediction history is an audit trail.
func (s *store) InsertPrediction(ctx context.Context, p *domain.RiskPrediction) error {
	factors, err := sonic.Marshal(p.TopFactors)
	if err != nil {
		return fmt.Errorf("marshal top factors: %w", err)
	}

	query := builder().Insert(tableRiskPredictions).
		Columns("id", "region_id", "disease", "prediction_date", "weeks_ahead", "risk_score", "risk_level", "top_factors").
		Values(p.ID, p.RegionID, p.Disease, p.PredictionDate, p.WeeksAhead, p.RiskScore, p.RiskLevel, factors)

	_, err = s.pool.Execx(ctx, query)
	return wrapErr(err)
}

func (s *store) LatestPredictions(ctx context.Context, regionID int64, disease string, limit int) ([]*domain.RiskPrediction, error) {
	query := builder().Select(predictionColumns...).
		From(tableRiskPredictions).
		Where(sq.Eq{"region_id": regionID, "disease": disease}).
		OrderBy("prediction_date desc, created_at desc").
		Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.RiskPrediction](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

// ListLatestPredictionsByRegion returns the newest prediction per region for
// one disease, for the heatmap.
func (s *store) ListLatestPredictionsByRegion(ctx context.Context, disease string) (map[int64]*domain.RiskPrediction, error) {
	query := builder().Select(prefixed("p", predictionColumns)...).
		From(tableRiskPredictions + " p").
		Where(sq.Eq{"p.disease": disease}).
		OrderBy("p.prediction_date desc, p.created_at desc")

	selected, err := xpgx.Selectx[domain.RiskPrediction](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	latest := make(map[int64]*domain.RiskPrediction, len(selected))
	for _, p := range selected {
		if _, ok := latest[p.RegionID]; !ok {
			latest[p.RegionID] = p
		}
	}

	return latest, nil
}
