package model

import "fmt"

// Logistic is a binary logistic regression: raw(x) = Bias + W·x.
type Logistic struct {
	binary
	w []float64
	b float64
}

func newLogistic(a Artifact) (*Logistic, error) {
	if len(a.Weights) != a.NFeatures {
		return nil, fmt.Errorf("logistic: %d weights for %d features", len(a.Weights), a.NFeatures)
	}
	m := &Logistic{w: a.Weights, b: a.Bias}
	m.binary = binary{classes: a.Classes, nFeatures: a.NFeatures, decision: m.Decision}
	return m, nil
}

func (m *Logistic) Decision(row []float64) float64 {
	sum := m.b
	for j, v := range row {
		sum += m.w[j] * v
	}
	return sum
}
