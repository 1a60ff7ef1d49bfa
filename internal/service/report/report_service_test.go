package report

import (
	"context"
	"testing"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/store/storetest"
	"github.com/phip-project/phip/internal/service/aggregate"
	"github.com/phip-project/phip/internal/service/alerts"
	"github.com/phip-project/phip/internal/service/features"
	"github.com/phip-project/phip/internal/service/predict"
	"github.com/phip-project/phip/internal/service/risk"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, fake *storetest.Fake) *Service {
	t.Helper()

	featureSvc := features.NewFeaturesService(fake, features.DefaultLabelParams())
	riskCfg := risk.DefaultConfig()
	riskCfg.ModelDir = t.TempDir()
	registry := risk.NewRegistry(featureSvc, riskCfg)
	alertSvc := alerts.NewAlertsService(fake, alerts.DefaultConfig())
	predictSvc := predict.NewPredictService(fake, featureSvc, registry, alertSvc, 2)
	aggregateSvc := aggregate.NewAggregateService(fake)

	return NewReportService(fake, aggregateSvc, predictSvc)
}

func seedFacility(t *testing.T, fake *storetest.Fake) *domain.Facility {
	t.Helper()

	region, err := fake.UpsertRegion(context.Background(), "Borno", "Maiduguri", nil, nil)
	require.NoError(t, err)

	facility := &domain.Facility{
		ID:       "fac-1",
		RegionID: region.ID,
		Name:     "Central PHC",
		Type:     domain.FacilityTypePHC,
	}
	require.NoError(t, fake.InsertFacility(context.Background(), facility))
	return facility
}

func TestSubmitPersistsAndScores(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)
	seedFacility(t, fake)

	resp, err := svc.Submit(context.Background(), "fac-1", "web", &domain.SubmitReportRequest{
		ReportDate:    time.Date(2026, 2, 9, 14, 30, 0, 0, time.UTC),
		FeverCases:    12,
		DiarrheaCases: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Report)

	// the report date is truncated to the calendar day
	require.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), resp.Report.ReportDate)
	require.Equal(t, domain.StockNormal, resp.Report.ORSStockLevel)
	require.Len(t, fake.Reports, 1)

	// the rollup ran for the containing week
	require.Len(t, fake.Aggregates, 1)
	require.Equal(t, 12, fake.Aggregates[0].TotalFeverCases)

	// one diagnostic per tracked disease, all scored via the untrained
	// fallback, and each scoring run persisted a prediction
	require.Len(t, resp.Scoring, len(domain.Diseases))
	for _, diag := range resp.Scoring {
		require.Equal(t, "scored", diag.Status)
		require.Empty(t, diag.Error)
	}
	require.Len(t, fake.Predictions, len(domain.Diseases))
}

func TestSubmitUnknownFacility(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)

	_, err := svc.Submit(context.Background(), "missing", "web", &domain.SubmitReportRequest{
		ReportDate: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	require.Empty(t, fake.Reports)
}

func TestSubmitSameDayReplaces(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)
	seedFacility(t, fake)

	date := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.Submit(context.Background(), "fac-1", "web", &domain.SubmitReportRequest{
		ReportDate: date, FeverCases: 5,
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "fac-1", "web", &domain.SubmitReportRequest{
		ReportDate: date, FeverCases: 9,
	})
	require.NoError(t, err)

	require.Len(t, fake.Reports, 1)
	require.Equal(t, 9, fake.Reports[0].FeverCases)
	require.Equal(t, 9, fake.Aggregates[0].TotalFeverCases)
}

func TestSubmitSMSResolvesUser(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)
	seedFacility(t, fake)
	require.NoError(t, fake.InsertFacilityUser(context.Background(), &domain.FacilityUser{
		ID: "u1", FacilityID: "fac-1", Username: "PHC123",
	}))

	resp, err := svc.SubmitSMS(context.Background(), "PHC123#2026-02-09#F23#D10")
	require.NoError(t, err)
	require.Equal(t, "fac-1", resp.Report.FacilityID)
	require.Equal(t, 23, resp.Report.FeverCases)
}

func TestSubmitSMSUnknownUser(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)

	_, err := svc.SubmitSMS(context.Background(), "ghost#2026-02-09#F1")
	require.Error(t, err)
}

func TestFeedbackTrendAndComparison(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)
	facility := seedFacility(t, fake)
	require.NoError(t, fake.InsertFacility(context.Background(), &domain.Facility{
		ID: "fac-2", RegionID: facility.RegionID, Name: "Other PHC", Type: domain.FacilityTypePHC,
	}))

	now := time.Now().UTC()
	require.NoError(t, fake.InsertPrediction(context.Background(), &domain.RiskPrediction{
		ID: "p-old", RegionID: facility.RegionID, Disease: "cholera",
		PredictionDate: now.AddDate(0, 0, -7), RiskScore: 0.2, RiskLevel: domain.RiskLevelLow,
	}))
	require.NoError(t, fake.InsertPrediction(context.Background(), &domain.RiskPrediction{
		ID: "p-new", RegionID: facility.RegionID, Disease: "cholera",
		PredictionDate: now, RiskScore: 0.5, RiskLevel: domain.RiskLevelMedium,
	}))

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, r := range []*domain.DailyReport{
		{ID: "mine", FacilityID: "fac-1", ReportDate: today, FeverCases: 10, DiarrheaCases: 2},
		{ID: "theirs", FacilityID: "fac-2", ReportDate: today, FeverCases: 4, DiarrheaCases: 6},
	} {
		_, err := fake.UpsertDailyReport(context.Background(), r)
		require.NoError(t, err)
	}

	resp, err := svc.Feedback(context.Background(), "fac-1")
	require.NoError(t, err)

	require.Equal(t, domain.RiskLevelMedium, resp.RiskLevel)
	require.Equal(t, "Rising", resp.RiskTrend)
	require.Contains(t, resp.WarningMessage, "rising")

	require.Equal(t, 10, resp.Comparison.MyFever)
	require.InDelta(t, 7.0, resp.Comparison.RegionAvgFever, 1e-9)
	require.InDelta(t, 4.0, resp.Comparison.RegionAvgDiarrhea, 1e-9)
}

func TestFeedbackNoPredictions(t *testing.T) {
	fake := storetest.New()
	svc := newTestService(t, fake)
	seedFacility(t, fake)

	resp, err := svc.Feedback(context.Background(), "fac-1")
	require.NoError(t, err)
	require.Equal(t, "Unknown", resp.RiskLevel)
	require.Equal(t, "Stable", resp.RiskTrend)
	require.Equal(t, "No specific warnings.", resp.WarningMessage)
}
