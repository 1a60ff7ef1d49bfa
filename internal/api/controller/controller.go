package controller

import (
	"github.com/phip-project/phip/internal/service/alerts"
	"github.com/phip-project/phip/internal/service/auth"
	"github.com/phip-project/phip/internal/service/ingest"
	"github.com/phip-project/phip/internal/service/predict"
	"github.com/phip-project/phip/internal/service/report"
)

type Controller struct {
	authService    *auth.Service
	reportService  *report.Service
	ingestService  *ingest.Service
	predictService *predict.Service
	alertsService  *alerts.Service
}

func NewController(
	authService *auth.Service,
	reportService *report.Service,
	ingestService *ingest.Service,
	predictService *predict.Service,
	alertsService *alerts.Service,
) *Controller {
	return &Controller{
		authService:    authService,
		reportService:  reportService,
		ingestService:  ingestService,
		predictService: predictService,
		alertsService:  alertsService,
	}
}
