// Package assessment turns questionnaire answers into a risk result.
package assessment

import (
	"go.uber.org/zap"

	"github.com/Skufu/pcos-risk/internal/config"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/model"
	"github.com/Skufu/pcos-risk/internal/scoring"
)

// Engine completes and scores assessments. It is immutable once built
// and may be shared across goroutines.
type Engine struct {
	completer *features.Completer
	scorer    *scoring.Scorer
	logger    *zap.Logger
}

// Load reads the defaults table, the classifier and its feature order.
func Load(art config.Artifacts, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults, err := features.LoadDefaults(art.DefaultsPath)
	if err != nil {
		return nil, err
	}
	clf, err := model.Load(art.ModelPath)
	if err != nil {
		return nil, err
	}
	schema, err := model.LoadSchema(art.SchemaPath)
	if err != nil {
		return nil, err
	}
	scorer, err := scoring.NewScorer(clf, schema)
	if err != nil {
		return nil, err
	}

	if missing, extra := schema.Diff(features.Names()); len(missing) > 0 || len(extra) > 0 {
		logger.Warn("feature order differs from questionnaire record",
			zap.Strings("missing", missing),
			zap.Strings("extra", extra))
	}

	logger.Info("assessment engine loaded",
		zap.String("model", art.ModelPath),
		zap.String("schema", art.SchemaPath),
		zap.Int("features", len(schema)))

	return New(features.NewCompleter(defaults), scorer, logger), nil
}

func New(completer *features.Completer, scorer *scoring.Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{completer: completer, scorer: scorer, logger: logger}
}

// Assess completes in, validates the record and scores it.
func (e *Engine) Assess(in features.PartialInput) (scoring.Result, error) {
	rec, err := e.completer.Complete(in)
	if err != nil {
		return scoring.Result{}, err
	}
	if err := rec.Validate(); err != nil {
		return scoring.Result{}, err
	}

	if ce := e.logger.Check(zap.DebugLevel, "record completed"); ce != nil {
		ce.Write(
			zap.Float64("bmi", rec[features.BMI]),
			zap.Float64("hip", rec[features.Hip]),
			zap.Float64("waist", rec[features.Waist]),
			zap.Float64("cycleRI", rec[features.CycleRI]))
	}

	res, err := e.scorer.Score(rec)
	if err != nil {
		return scoring.Result{}, err
	}

	e.logger.Debug("assessment scored",
		zap.Int("score", res.Score),
		zap.Float64("probability", res.Probability),
		zap.String("riskLevel", string(res.RiskLevel)),
		zap.Int("prediction", res.Prediction))
	return res, nil
}
