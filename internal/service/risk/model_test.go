package risk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/storetest"
	"github.com/phip-project/phip/internal/service/features"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.ModelDir = t.TempDir()
	return cfg
}

func TestRiskLevelBoundaries(t *testing.T) {
	m := NewModel("cholera", nil, testConfig(t))

	cases := []struct {
		score float64
		want  string
	}{
		{0.71, domain.RiskLevelHigh},
		{0.7, domain.RiskLevelMedium}, // the high boundary itself is Medium
		{0.5, domain.RiskLevelMedium},
		{0.3, domain.RiskLevelMedium},
		{0.29, domain.RiskLevelLow},
		{0.0, domain.RiskLevelLow},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, m.RiskLevel(tc.score), "score %v", tc.score)
	}
}

func TestPredictUntrainedFallback(t *testing.T) {
	m := NewModel("cholera", nil, testConfig(t))

	result := m.Predict(map[string]float64{"rainfall_mm": 100})
	require.Equal(t, 0.0, result.RiskScore)
	require.Equal(t, domain.RiskLevelLow, result.RiskLevel)
	require.Equal(t, []string{"Model not trained"}, result.TopFactors)
}

func TestTrainNoDataKeepsModelUntrained(t *testing.T) {
	fake := storetest.New()
	params := features.DefaultLabelParams()
	featureSvc := features.NewFeaturesService(fake, params)

	m := NewModel("cholera", featureSvc, testConfig(t))
	require.NoError(t, m.Train(context.Background()))
	require.False(t, m.Trained())
}

func TestTrainSingleClassKeepsModelUntrained(t *testing.T) {
	fake := storetest.New()
	params := features.DefaultLabelParams()
	params.MinPoints = 1
	featureSvc := features.NewFeaturesService(fake, params)

	region, err := fake.UpsertRegion(context.Background(), "Borno", "Bama", nil, nil)
	require.NoError(t, err)
	seedHistory(t, fake, region.ID, []int{1, 1, 1, 1, 1, 1, 1, 1})

	m := NewModel("cholera", featureSvc, testConfig(t))
	require.NoError(t, m.Train(context.Background()))
	require.False(t, m.Trained())
}

func seedHistory(t *testing.T, fake *storetest.Fake, regionID int64, cases []int) {
	t.Helper()
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, c := range cases {
		count := c
		require.NoError(t, fake.UpsertDiseaseHistory(context.Background(), &domain.DiseaseHistory{
			RegionID:     regionID,
			WeekStart:    start.AddDate(0, 0, 7*i),
			CholeraCases: &count,
		}))
	}
}

func spikySeries(n int) []int {
	out := make([]int, n)
	for i := range out {
		if i%4 == 3 {
			out[i] = 30
		} else {
			out[i] = 1
		}
	}
	return out
}

func TestTrainPersistAndLoad(t *testing.T) {
	fake := storetest.New()
	params := features.DefaultLabelParams()
	params.MinPoints = 1
	featureSvc := features.NewFeaturesService(fake, params)

	region, err := fake.UpsertRegion(context.Background(), "Borno", "Bama", nil, nil)
	require.NoError(t, err)
	seedHistory(t, fake, region.ID, spikySeries(30))

	cfg := testConfig(t)
	m := NewModel("cholera", featureSvc, cfg)
	require.NoError(t, m.Train(context.Background()))
	require.True(t, m.Trained())

	_, err = os.Stat(filepath.Join(cfg.ModelDir, "cholera_model.json"))
	require.NoError(t, err)

	input := map[string]float64{"cholera_cases": 30, "cholera_cases_lag1": 1}
	want := m.Predict(input)
	require.NotEmpty(t, want.TopFactors)

	restored := NewModel("cholera", featureSvc, cfg)
	require.NoError(t, restored.Load())
	require.True(t, restored.Trained())
	require.Equal(t, m.Metrics(), restored.Metrics())

	got := restored.Predict(input)
	require.InDelta(t, want.RiskScore, got.RiskScore, 1e-12)
	require.Equal(t, want.RiskLevel, got.RiskLevel)
	require.Equal(t, want.TopFactors, got.TopFactors)
}

func TestLoadMissingArtifact(t *testing.T) {
	m := NewModel("cholera", nil, testConfig(t))
	require.NoError(t, m.Load())
	require.False(t, m.Trained())
}

func TestTopFactorsLimitedAndReadable(t *testing.T) {
	m := &Model{
		disease: "cholera",
		cfg:     DefaultConfig(),
		trained: true,
		schema:  []string{"rainfall_mm", "fever_reports", "cholera_cases_lag1", "month", "flood_risk"},
		clf: &Classifier{
			Weights: []float64{4, 3, 2, 1, 0},
			Means:   []float64{0, 0, 0, 0, 0},
			Stds:    []float64{1, 1, 1, 1, 1},
		},
	}

	factors := m.topFactors(map[string]float64{
		"rainfall_mm":        120.5,
		"fever_reports":      40,
		"cholera_cases_lag1": 3,
	})

	require.Equal(t, []string{
		"Rainfall Mm (120.5)",
		"Fever Reports (40.0)",
		"Cholera Cases Lag1 (3.0)",
	}, factors)
}

func TestAlignRowDefaultsMissingToZero(t *testing.T) {
	row := alignRow(map[string]float64{"a": 1, "c": 3}, []string{"a", "b", "c"})
	require.Equal(t, []float64{1, 0, 3}, row)
}

func TestReadable(t *testing.T) {
	require.Equal(t, "Cholera Cases Rolling 4w", readable("cholera_cases_rolling_4w"))
	require.Equal(t, "Is Rainy Season", readable("is_rainy_season"))
}
