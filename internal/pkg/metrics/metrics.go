package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phip",
		Name:      "reports_submitted_total",
		Help:      "Daily facility reports accepted, by intake channel.",
	}, []string{"channel"})

	PredictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phip",
		Name:      "predictions_served_total",
		Help:      "Risk predictions scored and persisted, by disease.",
	}, []string{"disease"})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phip",
		Name:      "alerts_raised_total",
		Help:      "Alerts written by the rule engine, by level.",
	}, []string{"level"})

	TrainingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phip",
		Name:      "model_training_seconds",
		Help:      "Wall time of a full per-disease training run.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"disease"})

	ScoringFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phip",
		Name:      "scoring_failures_total",
		Help:      "Best-effort scoring runs that failed after a raw write succeeded.",
	})
)
