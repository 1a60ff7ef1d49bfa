package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/phip-project/phip/internal/api"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/pkg/store"
	"github.com/phip-project/phip/internal/pkg/store/xpgx"
	"github.com/phip-project/phip/internal/service/aggregate"
	"github.com/phip-project/phip/internal/service/alerts"
	"github.com/phip-project/phip/internal/service/auth"
	"github.com/phip-project/phip/internal/service/features"
	"github.com/phip-project/phip/internal/service/ingest"
	"github.com/phip-project/phip/internal/service/predict"
	"github.com/phip-project/phip/internal/service/report"
	"github.com/phip-project/phip/internal/service/risk"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(*debug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := loadConfig(*configPath); err != nil {
		logger.Fatal(ctx, err)
	}

	pool, err := xpgx.Connect(ctx, viper.GetString(constants.ViperDatabaseDSN))
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer pool.Close()

	st := store.NewStore(pool)

	featureSvc := features.NewFeaturesService(st, labelParams())
	registry := risk.NewRegistry(featureSvc, riskConfig())
	alertSvc := alerts.NewAlertsService(st, alertsConfig())
	predictSvc := predict.NewPredictService(st, featureSvc, registry, alertSvc, labelParams().HorizonWeeks)
	aggregateSvc := aggregate.NewAggregateService(st)
	reportSvc := report.NewReportService(st, aggregateSvc, predictSvc)
	ingestSvc := ingest.NewIngestService(st)
	authSvc := auth.NewAuthService(st)

	apiSvc, err := api.NewAPIService(api.Services{
		Auth:    authSvc,
		Report:  reportSvc,
		Ingest:  ingestSvc,
		Predict: predictSvc,
		Alerts:  alertSvc,
	})
	if err != nil {
		logger.Fatal(ctx, err)
	}

	if viper.GetBool(constants.ViperCronEnabled) {
		scheduler, err := startCron(ctx, predictSvc, ingestSvc)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		defer scheduler.Stop()
	}

	go apiSvc.Serve(viper.GetString(constants.ViperListenAddr))
	logger.Infof(ctx, "listening on %s", viper.GetString(constants.ViperListenAddr))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSvc.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
	}
}

func loadConfig(path string) error {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	viper.SetDefault(constants.ViperListenAddr, ":8080")
	viper.SetDefault(constants.ViperModelDir, "saved_models")
	viper.SetDefault(constants.ViperHighRisk, 0.7)
	viper.SetDefault(constants.ViperMediumRisk, 0.3)
	viper.SetDefault(constants.ViperLabelWindow, 26)
	viper.SetDefault(constants.ViperLabelQuantile, 0.75)
	viper.SetDefault(constants.ViperLabelMinFloor, 5)
	viper.SetDefault(constants.ViperLabelMinPoints, 5)
	viper.SetDefault(constants.ViperRainfallSpike, 1.3)
	viper.SetDefault(constants.ViperFeverSpike, 1.5)

	return viper.ReadInConfig()
}

func labelParams() features.LabelParams {
	params := features.DefaultLabelParams()
	params.WindowWeeks = viper.GetInt(constants.ViperLabelWindow)
	params.Quantile = viper.GetFloat64(constants.ViperLabelQuantile)
	params.CaseFloor = viper.GetFloat64(constants.ViperLabelMinFloor)
	params.MinPoints = viper.GetInt(constants.ViperLabelMinPoints)
	return params
}

func riskConfig() risk.Config {
	cfg := risk.DefaultConfig()
	cfg.ModelDir = viper.GetString(constants.ViperModelDir)
	cfg.HighThreshold = viper.GetFloat64(constants.ViperHighRisk)
	cfg.MediumThreshold = viper.GetFloat64(constants.ViperMediumRisk)
	return cfg
}

func alertsConfig() alerts.Config {
	cfg := alerts.DefaultConfig()
	cfg.HighRiskThreshold = viper.GetFloat64(constants.ViperHighRisk)
	cfg.RainfallSpikeRatio = viper.GetFloat64(constants.ViperRainfallSpike)
	cfg.FeverSpikeRatio = viper.GetFloat64(constants.ViperFeverSpike)
	return cfg
}

func startCron(ctx context.Context, predictSvc *predict.Service, ingestSvc *ingest.Service) (*cron.Cron, error) {
	scheduler := cron.New()

	if spec := viper.GetString(constants.ViperRetrainSpec); spec != "" {
		_, err := scheduler.AddFunc(spec, func() {
			if err := predictSvc.Retrain(ctx); err != nil {
				logger.Errorf(ctx, "scheduled retrain: %s", err.Error())
			}
		})
		if err != nil {
			return nil, err
		}
	}

	if spec := viper.GetString(constants.ViperBulletinSpec); spec != "" {
		url := viper.GetString(constants.ViperBulletinURL)
		_, err := scheduler.AddFunc(spec, func() {
			week := aggregate.WeekStart(time.Now().UTC())
			if _, err := ingestSvc.BackfillBulletin(ctx, url, week); err != nil {
				logger.Errorf(ctx, "scheduled bulletin backfill: %s", err.Error())
			}
		})
		if err != nil {
			return nil, err
		}
	}

	scheduler.Start()
	return scheduler, nil
}
