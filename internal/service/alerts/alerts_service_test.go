package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/storetest"
	"github.com/stretchr/testify/require"
)

func week(n int) time.Time {
	return time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n)
}

func fptr(v float64) *float64 { return &v }

// seedTrend stores two weeks of rainfall and fever totals, newest last.
func seedTrend(t *testing.T, fake *storetest.Fake, regionID int64, rainfall [2]float64, fever [2]int) {
	t.Helper()
	for i := 0; i < 2; i++ {
		require.NoError(t, fake.UpsertEnvMetric(context.Background(), &domain.EnvMetric{
			RegionID:   regionID,
			WeekStart:  week(i),
			RainfallMM: fptr(rainfall[i]),
		}))
		require.NoError(t, fake.UpsertWeeklyAggregate(context.Background(), &domain.WeeklyAggregate{
			ID:              "agg-" + week(i).Format("2006-01-02"),
			RegionID:        regionID,
			WeekStart:       week(i),
			TotalFeverCases: fever[i],
		}))
	}
}

func TestEvaluateHighRiskShortCircuits(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	// trend data that would also fire the early warning; the high-risk
	// rule must win and only one alert may exist
	seedTrend(t, fake, 1, [2]float64{50, 70}, [2]int{10, 16})

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.85)
	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Equal(t, domain.AlertLevelHigh, alert.Level)
	require.Equal(t, 0.85, alert.RiskScore)
	require.Contains(t, alert.Message, "cholera")
	require.Len(t, fake.Alerts, 1)
}

func TestEvaluateScoreAtThresholdDoesNotFireHigh(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.7)
	require.NoError(t, err)
	require.Nil(t, alert)
	require.Empty(t, fake.Alerts)
}

func TestEvaluateEarlyWarning(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	// rainfall +40% and fever +60%: both spikes clear their ratios
	seedTrend(t, fake, 1, [2]float64{50, 70}, [2]int{10, 16})

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.2)
	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Equal(t, domain.AlertLevelEarlyWarning, alert.Level)
	require.Equal(t, 0.2, alert.RiskScore)
}

func TestEvaluateNeedsBothSpikes(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	// rainfall +40% but fever only +20%: no alert
	seedTrend(t, fake, 1, [2]float64{50, 70}, [2]int{10, 12})

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.2)
	require.NoError(t, err)
	require.Nil(t, alert)
	require.Empty(t, fake.Alerts)
}

func TestEvaluateNotEnoughHistory(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	// a single week of data cannot express a trend
	seedTrend(t, fake, 1, [2]float64{0, 100}, [2]int{0, 50})
	fake.EnvMetrics = fake.EnvMetrics[1:]
	fake.Aggregates = fake.Aggregates[1:]

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.2)
	require.NoError(t, err)
	require.Nil(t, alert)
}

func TestEvaluateMissingRainfallCountsAsZero(t *testing.T) {
	fake := storetest.New()
	svc := NewAlertsService(fake, DefaultConfig())

	for i := 0; i < 2; i++ {
		require.NoError(t, fake.UpsertEnvMetric(context.Background(), &domain.EnvMetric{
			RegionID:  1,
			WeekStart: week(i),
		}))
		require.NoError(t, fake.UpsertWeeklyAggregate(context.Background(), &domain.WeeklyAggregate{
			ID:       "agg", RegionID: 1, WeekStart: week(i),
			TotalFeverCases: 10 * (i + 1),
		}))
	}

	// 0 > 0*1.3 is false, so the rainfall leg cannot fire
	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.2)
	require.NoError(t, err)
	require.Nil(t, alert)
}

func TestConfigurableRatios(t *testing.T) {
	fake := storetest.New()
	cfg := DefaultConfig()
	cfg.RainfallSpikeRatio = 1.1
	cfg.FeverSpikeRatio = 1.1
	svc := NewAlertsService(fake, cfg)

	seedTrend(t, fake, 1, [2]float64{50, 60}, [2]int{10, 12})

	alert, err := svc.Evaluate(context.Background(), 1, "cholera", week(1), 0.2)
	require.NoError(t, err)
	require.NotNil(t, alert)
	require.Equal(t, domain.AlertLevelEarlyWarning, alert.Level)
}
