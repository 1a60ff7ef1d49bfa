package constants

// viper keys
const (
	ViperListenAddr  = "server.listen_addr"
	ViperCORSOrigins = "server.cors_origins"
	ViperDatabaseDSN = "database.dsn"
	ViperSecretKey   = "auth.secret"

	ViperModelDir       = "risk.model_dir"
	ViperHighRisk       = "risk.high_threshold"
	ViperMediumRisk     = "risk.medium_threshold"
	ViperLabelWindow    = "risk.label.window_weeks"
	ViperLabelQuantile  = "risk.label.quantile"
	ViperLabelMinFloor  = "risk.label.case_floor"
	ViperLabelMinPoints = "risk.label.min_points"

	ViperRainfallSpike = "alerts.rainfall_spike_ratio"
	ViperFeverSpike    = "alerts.fever_spike_ratio"

	ViperCronEnabled  = "cron.enabled"
	ViperRetrainSpec  = "cron.retrain"
	ViperBulletinSpec = "cron.bulletin"
	ViperBulletinURL  = "ingest.bulletin_url"
)

// echo context keys
const (
	CtxKeyFacilityID = "facility_id"
	CtxKeyUserID     = "user_id"
)
