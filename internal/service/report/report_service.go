package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/pkg/metrics"
	"github.com/phip-project/phip/internal/pkg/store"
	"github.com/phip-project/phip/internal/service/aggregate"
	"github.com/phip-project/phip/internal/service/predict"
)

type Service struct {
	store      store.Store
	aggregates *aggregate.Service
	predict    *predict.Service
}

func NewReportService(st store.Store, aggregateSvc *aggregate.Service, predictSvc *predict.Service) *Service {
	return &Service{store: st, aggregates: aggregateSvc, predict: predictSvc}
}

// Submit is a two-phase operation. Phase 1 persists the daily report and
// must succeed or the whole call fails. Phase 2 (weekly rollup, scoring and
// alert evaluation) is best-effort: every failure is captured as a
// diagnostic on the response, and none of them can undo the raw write.
func (s *Service) Submit(ctx context.Context, facilityID, channel string, req *domain.SubmitReportRequest) (*domain.SubmitReportResponse, error) {
	facility, err := s.store.GetFacilityByID(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("store.GetFacilityByID: %w", err)
	}
	region, err := s.store.GetRegionByID(ctx, facility.RegionID)
	if err != nil {
		return nil, fmt.Errorf("store.GetRegionByID: %w", err)
	}

	report := &domain.DailyReport{
		ID:                     uuid.NewString(),
		FacilityID:             facility.ID,
		ReportDate:             day(req.ReportDate),
		FeverCases:             req.FeverCases,
		DiarrheaCases:          req.DiarrheaCases,
		VomitingCases:          req.VomitingCases,
		RespiratoryCases:       req.RespiratoryCases,
		HospitalAdmissions:     req.HospitalAdmissions,
		SevereDehydrationCases: req.SevereDehydrationCases,
		UnexplainedDeaths:      req.UnexplainedDeaths,
		BedOccupancyRate:       req.BedOccupancyRate,
		ORSStockLevel:          stockOrNormal(req.ORSStockLevel),
		AntibioticsStockLevel:  stockOrNormal(req.AntibioticsStockLevel),
		Notes:                  req.Notes,
	}

	saved, err := s.store.UpsertDailyReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("store.UpsertDailyReport: %w", err)
	}
	metrics.ReportsSubmitted.WithLabelValues(channel).Inc()

	resp := &domain.SubmitReportResponse{Report: saved}

	if err := s.aggregates.Rollup(ctx, region.State, region.District, report.ReportDate); err != nil {
		logger.Errorf(ctx, "rollup after submit, region-%d: %s", region.ID, err.Error())
		resp.Scoring = append(resp.Scoring, domain.ScoringDiagnostic{
			Disease: "-",
			Status:  "failed",
			Error:   fmt.Sprintf("aggregation: %s", err.Error()),
		})
		return resp, nil
	}

	for _, disease := range domain.Diseases {
		resp.Scoring = append(resp.Scoring, s.scoreSafely(ctx, region, disease))
	}

	return resp, nil
}

// scoreSafely isolates one disease's scoring run: panics and errors become
// a structured diagnostic instead of failing the submission.
func (s *Service) scoreSafely(ctx context.Context, region *domain.Region, disease string) (diag domain.ScoringDiagnostic) {
	diag = domain.ScoringDiagnostic{Disease: disease, Status: "scored"}

	defer func() {
		if r := recover(); r != nil {
			metrics.ScoringFailures.Inc()
			logger.Errorf(ctx, "scoring panic, disease-%s: %v", disease, r)
			diag.Status = "failed"
			diag.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if _, err := s.predict.Predict(ctx, region.State, region.District, disease); err != nil {
		metrics.ScoringFailures.Inc()
		logger.Errorf(ctx, "scoring after submit, disease-%s: %s", disease, err.Error())
		diag.Status = "failed"
		diag.Error = err.Error()
	}
	return diag
}

func stockOrNormal(level string) string {
	if level == "" {
		return domain.StockNormal
	}
	return level
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Feedback summarizes the facility's regional risk standing: the latest
// prediction level, its trend against the previous one, and a same-day
// comparison of the facility's counts to the regional averages.
func (s *Service) Feedback(ctx context.Context, facilityID string) (*domain.FeedbackResponse, error) {
	facility, err := s.store.GetFacilityByID(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("store.GetFacilityByID: %w", err)
	}

	resp := &domain.FeedbackResponse{RiskLevel: "Unknown", RiskTrend: "Stable"}

	preds, err := s.store.LatestPredictions(ctx, facility.RegionID, "cholera", 2)
	if err != nil {
		return nil, fmt.Errorf("store.LatestPredictions: %w", err)
	}
	if len(preds) > 0 {
		resp.RiskLevel = preds[0].RiskLevel
	}
	if len(preds) == 2 {
		switch {
		case preds[0].RiskScore > preds[1].RiskScore+0.1:
			resp.RiskTrend = "Rising"
		case preds[0].RiskScore < preds[1].RiskScore-0.1:
			resp.RiskTrend = "Falling"
		}
	}

	resp.WarningMessage = "No specific warnings."
	if resp.RiskLevel == domain.RiskLevelHigh {
		resp.WarningMessage = "High risk of outbreak detected. Ensure ORS and antibiotics stock is sufficient."
	} else if resp.RiskLevel == domain.RiskLevelMedium && resp.RiskTrend == "Rising" {
		resp.WarningMessage = "Risk is rising. Monitor fever and diarrhea cases closely."
	}

	today := day(time.Now().UTC())
	if mine, err := s.store.GetFacilityReport(ctx, facility.ID, today); err == nil {
		resp.Comparison.MyFever = mine.FeverCases
		resp.Comparison.MyRespiratory = mine.RespiratoryCases
		resp.Comparison.MyDiarrhea = mine.DiarrheaCases
		resp.Comparison.MyVomiting = mine.VomitingCases
	}

	regional, err := s.store.ListRegionReports(ctx, facility.RegionID, today, today)
	if err != nil {
		return nil, fmt.Errorf("store.ListRegionReports: %w", err)
	}
	if n := len(regional); n > 0 {
		var fever, respiratory, diarrhea, vomiting int
		for _, r := range regional {
			fever += r.FeverCases
			respiratory += r.RespiratoryCases
			diarrhea += r.DiarrheaCases
			vomiting += r.VomitingCases
		}
		resp.Comparison.RegionAvgFever = float64(fever) / float64(n)
		resp.Comparison.RegionAvgRespiratory = float64(respiratory) / float64(n)
		resp.Comparison.RegionAvgDiarrhea = float64(diarrhea) / float64(n)
		resp.Comparison.RegionAvgVomiting = float64(vomiting) / float64(n)
	}

	return resp, nil
}
