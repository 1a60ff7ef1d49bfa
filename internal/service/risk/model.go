package risk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/phip-project/phip/internal/pkg/metrics"
	"github.com/phip-project/phip/internal/service/features"
)

// Config carries the tunable scoring constants. High/Medium are shared by
// model output discretization and the untrained fallback, so both agree
// exactly on boundary values.
type Config struct {
	ModelDir        string
	HighThreshold   float64
	MediumThreshold float64
	Folds           int
}

func DefaultConfig() Config {
	return Config{
		ModelDir:        "saved_models",
		HighThreshold:   0.7,
		MediumThreshold: 0.3,
		Folds:           3,
	}
}

// Model is one disease's trained risk classifier. Lifecycle: a fresh Model
// is untrained; Train or Load moves it to trained; there is no way back
// short of constructing a new instance. Predict never mutates state after
// training, so concurrent scoring is safe.
type Model struct {
	disease  string
	cfg      Config
	features *features.Service

	trained bool
	schema  []string
	clf     *Classifier
	metrics domain.ModelMetrics
}

func NewModel(disease string, featureSvc *features.Service, cfg Config) *Model {
	return &Model{disease: disease, cfg: cfg, features: featureSvc}
}

func (m *Model) Disease() string {
	return m.disease
}

func (m *Model) Trained() bool {
	return m.trained
}

func (m *Model) Metrics() domain.ModelMetrics {
	return m.metrics
}

type artifact struct {
	Disease    string              `json:"disease"`
	Schema     []string            `json:"feature_names"`
	Classifier *Classifier         `json:"classifier"`
	Metrics    domain.ModelMetrics `json:"metrics"`
	TrainedAt  time.Time           `json:"trained_at"`
}

func (m *Model) artifactPath() string {
	return filepath.Join(m.cfg.ModelDir, m.disease+"_model.json")
}

// Train builds the historical table, runs walk-forward validation, refits on
// the full table and persists the artifact. Missing data or a single-class
// label are recoverable: the model logs, keeps its previous state and
// returns nil.
func (m *Model) Train(ctx context.Context) error {
	started := time.Now()

	table, err := m.features.BuildTrainingTable(ctx, m.disease)
	if err != nil {
		return fmt.Errorf("features.BuildTrainingTable: %w", err)
	}
	if len(table.Rows) == 0 {
		logger.Warnf(ctx, "no data to train %s model", m.disease)
		return nil
	}

	X := make([][]float64, len(table.Rows))
	y := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		X[i] = alignRow(row.Values, table.Schema)
		y[i] = row.Label
	}

	classes := map[float64]bool{}
	for _, label := range y {
		classes[label] = true
	}
	if len(classes) < 2 {
		logger.Warnf(ctx, "not enough label classes to train %s model", m.disease)
		return nil
	}

	var folds domain.ModelMetrics
	clf := &Classifier{}
	for _, sp := range walkForwardSplits(len(X), m.cfg.Folds) {
		clf = &Classifier{}
		clf.Fit(X[:sp.trainEnd], y[:sp.trainEnd])

		scores := make([]float64, sp.testEnd-sp.trainEnd)
		for i := sp.trainEnd; i < sp.testEnd; i++ {
			scores[i-sp.trainEnd] = clf.Prob(X[i])
		}
		precision, recall, f1 := foldMetrics(y[sp.trainEnd:sp.testEnd], scores)
		folds = domain.ModelMetrics{
			AUC:       auc(y[sp.trainEnd:sp.testEnd], scores),
			Precision: precision,
			Recall:    recall,
			F1:        f1,
		}
	}

	clf = &Classifier{}
	clf.Fit(X, y)

	m.schema = table.Schema
	m.clf = clf
	m.metrics = folds
	m.trained = true

	if err := m.persist(); err != nil {
		return err
	}

	metrics.TrainingDuration.WithLabelValues(m.disease).Observe(time.Since(started).Seconds())
	logger.Infof(ctx, "trained %s model on %d rows, final fold auc=%.3f f1=%.3f",
		m.disease, len(X), folds.AUC, folds.F1)
	return nil
}

func (m *Model) persist() error {
	if err := os.MkdirAll(m.cfg.ModelDir, 0o755); err != nil {
		return fmt.Errorf("mkdir model dir: %w", err)
	}

	blob, err := sonic.Marshal(artifact{
		Disease:    m.disease,
		Schema:     m.schema,
		Classifier: m.clf,
		Metrics:    m.metrics,
		TrainedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	if err := os.WriteFile(m.artifactPath(), blob, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Load restores a previously persisted artifact for this disease. A missing
// artifact leaves the model untrained and is not an error.
func (m *Model) Load() error {
	blob, err := os.ReadFile(m.artifactPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read artifact: %w", err)
	}

	var a artifact
	if err := sonic.Unmarshal(blob, &a); err != nil {
		return fmt.Errorf("unmarshal artifact: %w", err)
	}

	m.schema = a.Schema
	m.clf = a.Classifier
	m.metrics = a.Metrics
	m.trained = true
	return nil
}

// RiskLevel discretizes a probability: strictly above the high threshold is
// High, at or above the medium threshold is Medium, else Low. Both boundary
// values map to Medium.
func (m *Model) RiskLevel(score float64) string {
	switch {
	case score > m.cfg.HighThreshold:
		return domain.RiskLevelHigh
	case score >= m.cfg.MediumThreshold:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}

// Predict scores one feature mapping. An untrained model first tries to
// load its artifact; if still untrained it returns the defined fallback
// result rather than an error.
func (m *Model) Predict(input map[string]float64) *domain.PredictionResult {
	if !m.trained {
		_ = m.Load()
	}
	if !m.trained {
		return &domain.PredictionResult{
			RiskScore:  0.0,
			RiskLevel:  domain.RiskLevelLow,
			TopFactors: []string{"Model not trained"},
		}
	}

	score := m.clf.Prob(alignRow(input, m.schema))

	return &domain.PredictionResult{
		RiskScore:  score,
		RiskLevel:  m.RiskLevel(score),
		TopFactors: m.topFactors(input),
		Metrics:    m.metrics,
	}
}

const importanceFloor = 0.01

// topFactors picks the up-to-3 highest-importance schema features above the
// floor and renders each with its value for this prediction.
func (m *Model) topFactors(input map[string]float64) []string {
	importances := m.clf.Importances()

	idx := make([]int, len(importances))
	for i := range idx {
		idx[i] = i
	}
	// stable order for equal importances keeps output deterministic
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && importances[idx[j]] > importances[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}

	out := make([]string, 0, 3)
	for _, i := range idx {
		if len(out) == 3 {
			break
		}
		if importances[i] <= importanceFloor {
			break
		}
		name := m.schema[i]
		out = append(out, fmt.Sprintf("%s (%.1f)", readable(name), input[name]))
	}
	return out
}

func readable(feature string) string {
	words := strings.Split(feature, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// alignRow projects a feature mapping onto the fixed schema; features the
// input does not carry default to 0.
func alignRow(values map[string]float64, schema []string) []float64 {
	out := make([]float64, len(schema))
	for i, name := range schema {
		out[i] = values[name]
	}
	return out
}
