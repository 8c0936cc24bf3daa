package scoring

import (
	"fmt"
	"math"

	"github.com/Skufu/pcos-risk/internal/apperr"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/model"
)

// Result is the outcome of one assessment.
type Result struct {
	Success     bool      `json:"success"`
	Score       int       `json:"score"`
	Probability float64   `json:"probability"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Prediction  int       `json:"prediction"`
}

// Scorer runs a completed record through the classifier. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	clf    model.Classifier
	schema model.Schema
}

// NewScorer pairs a classifier with the column order it was trained on.
func NewScorer(clf model.Classifier, schema model.Schema) (*Scorer, error) {
	if clf == nil {
		return nil, apperr.Errorf(apperr.KindArtifactLoad, "classifier is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, apperr.New(apperr.KindArtifactLoad, "feature order", err)
	}
	if n := clf.NumFeatures(); n != len(schema) {
		return nil, apperr.Errorf(apperr.KindArtifactLoad, "classifier expects %d features, feature order lists %d", n, len(schema))
	}
	return &Scorer{clf: clf, schema: schema}, nil
}

// Schema returns the column order used by Vector.
func (s *Scorer) Schema() model.Schema {
	return s.schema
}

// Vector lays out rec in schema order. Columns the record lacks are 0.
func (s *Scorer) Vector(rec features.Record) []float64 {
	row := make([]float64, len(s.schema))
	for j, name := range s.schema {
		row[j] = rec[name]
	}
	return row
}

// Score classifies rec and buckets the class-1 probability.
func (s *Scorer) Score(rec features.Record) (Result, error) {
	X := [][]float64{s.Vector(rec)}
	fillNonFinite(X)

	labels, err := s.clf.Predict(X)
	if err != nil {
		return Result{}, inferenceErr(err)
	}
	proba, err := s.clf.PredictProba(X)
	if err != nil {
		return Result{}, inferenceErr(err)
	}
	if len(labels) != 1 || len(proba) != 1 || len(proba[0]) == 0 {
		return Result{}, apperr.Errorf(apperr.KindInference, "classifier returned %d labels and %d probability rows for one row", len(labels), len(proba))
	}

	p := proba[0][0]
	if len(proba[0]) > 1 {
		p = proba[0][1]
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, apperr.Errorf(apperr.KindInference, "probability %v outside [0,1]", p)
	}

	score := ScoreOf(p)
	return Result{
		Success:     true,
		Score:       score,
		Probability: roundProbability(p),
		RiskLevel:   Level(score),
		Prediction:  labels[0],
	}, nil
}

func inferenceErr(err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return fmt.Errorf("Prediction error: %w", err)
	}
	return apperr.New(apperr.KindInference, "Prediction error", err)
}
