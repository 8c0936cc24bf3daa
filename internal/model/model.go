package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// Classifier is a trained binary classifier.
type Classifier interface {
	// Predict returns the hard class label for each row.
	Predict(X [][]float64) ([]int, error)
	// PredictProba returns per-class probabilities for each row, in class label order.
	PredictProba(X [][]float64) ([][]float64, error)
	// NumFeatures is the row width the classifier was trained on.
	NumFeatures() int
}

// Artifact kinds understood by Load.
const (
	KindGradientBoosting = "gradient_boosting"
	KindLogistic         = "logistic"
)

// Artifact is the JSON envelope exported by the training pipeline.
type Artifact struct {
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Classes     []int  `json:"classes"`
	NFeatures   int    `json:"nFeatures"`

	// gradient_boosting
	Init         float64 `json:"init,omitempty"`
	LearningRate float64 `json:"learningRate,omitempty"`
	Trees        []Tree  `json:"trees,omitempty"`

	// logistic
	Weights []float64 `json:"weights,omitempty"`
	Bias    float64   `json:"bias,omitempty"`
}

// Load reads a classifier artifact from path.
func Load(path string) (Classifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Errorf(apperr.KindArtifactNotFound, "Model file not found at %s", path)
		}
		return nil, apperr.New(apperr.KindArtifactLoad, "Error loading model", err)
	}
	clf, err := Decode(b)
	if err != nil {
		return nil, apperr.New(apperr.KindArtifactLoad, "Error loading model", err)
	}
	return clf, nil
}

// Decode parses and validates an artifact.
func Decode(b []byte) (Classifier, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return a.Build()
}

// Build validates the artifact and returns its classifier.
func (a Artifact) Build() (Classifier, error) {
	if len(a.Classes) < 1 || len(a.Classes) > 2 {
		return nil, fmt.Errorf("binary classifier needs 1 or 2 classes, got %d", len(a.Classes))
	}
	if len(a.Classes) == 2 && a.Classes[0] == a.Classes[1] {
		return nil, fmt.Errorf("duplicate class label %d", a.Classes[0])
	}
	if a.NFeatures <= 0 {
		return nil, fmt.Errorf("nFeatures must be positive, got %d", a.NFeatures)
	}

	switch a.Kind {
	case KindGradientBoosting:
		m, err := newGradientBoosting(a)
		if err != nil {
			return nil, err
		}
		return m, nil
	case KindLogistic:
		m, err := newLogistic(a)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", a.Kind)
	}
}

// binary holds the parts shared by every kind: the class labels, row
// validation and the decision-to-probability mapping.
type binary struct {
	classes   []int
	nFeatures int
	decision  func(row []float64) float64
}

func (m *binary) NumFeatures() int {
	return m.nFeatures
}

func (m *binary) checkRows(X [][]float64) error {
	for i, row := range X {
		if len(row) != m.nFeatures {
			return apperr.Errorf(apperr.KindInference, "row %d has %d features, classifier expects %d", i, len(row), m.nFeatures)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return apperr.Errorf(apperr.KindInference, "Input contains NaN, infinity or a value too large (row %d, column %d)", i, j)
			}
		}
	}
	return nil
}

func (m *binary) PredictProba(X [][]float64) ([][]float64, error) {
	if err := m.checkRows(X); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(m.classes) == 1 {
			out[i] = []float64{1}
			continue
		}
		p := Sigmoid(m.decision(row))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Predict picks classes[1] when the decision value is positive. It does not
// go through PredictProba.
func (m *binary) Predict(X [][]float64) ([]int, error) {
	if err := m.checkRows(X); err != nil {
		return nil, err
	}
	out := make([]int, len(X))
	for i, row := range X {
		if len(m.classes) == 1 {
			out[i] = m.classes[0]
			continue
		}
		if m.decision(row) > 0 {
			out[i] = m.classes[1]
		} else {
			out[i] = m.classes[0]
		}
	}
	return out, nil
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }
