package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/phip-project/phip/internal/api/controller"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/service/alerts"
	"github.com/phip-project/phip/internal/service/auth"
	"github.com/phip-project/phip/internal/service/ingest"
	"github.com/phip-project/phip/internal/service/predict"
	"github.com/phip-project/phip/internal/service/report"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

type Services struct {
	Auth    *auth.Service
	Report  *report.Service
	Ingest  *ingest.Service
	Predict *predict.Service
	Alerts  *alerts.Service
}

type APIService struct {
	router   *echo.Echo
	services Services
}

func (svc *APIService) Serve(addr string) {
	logger.Fatal(context.Background(), svc.router.Start(addr))
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(services Services) (*APIService, error) {
	svc := &APIService{router: echo.New(), services: services}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.OFF)
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.Recover())
	svc.router.HTTPErrorHandler = httpErrorHandler

	origins := viper.GetStringSlice(constants.ViperCORSOrigins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(
		services.Auth,
		services.Report,
		services.Ingest,
		services.Predict,
		services.Alerts,
	)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", cntrl.Register)
	authGroup.POST("/login", cntrl.Login)

	reports := api.Group("/reports", svc.AuthMiddleware)
	reports.POST("", cntrl.SubmitReport)
	reports.GET("/feedback", cntrl.GetFeedback)

	sms := api.Group("/sms")
	sms.POST("/report", cntrl.SubmitSMSReport)

	data := api.Group("/data")
	data.POST("/environment", cntrl.UpsertEnvironment)
	data.POST("/disease-history", cntrl.UpsertDiseaseHistory)
	data.POST("/bulletin/backfill", cntrl.BackfillBulletin)

	predictions := api.Group("/predictions")
	predictions.GET("/heatmap", cntrl.GetHeatmap)
	predictions.POST("/retrain", cntrl.Retrain)
	predictions.GET("/:state/:district", cntrl.GetPrediction)

	alertsGroup := api.Group("/alerts")
	alertsGroup.GET("", cntrl.ListAlerts)

	return svc, nil
}
