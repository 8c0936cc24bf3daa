package model

import (
	"errors"
	"fmt"
)

// Node is one entry of a flattened regression tree. Internal nodes send
// x[Feature] <= Threshold to Left, everything else to Right.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// Tree is a regression tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range [0,%d)", i, n.Feature, nFeatures)
		}
		// children always follow their parent, which rules out cycles
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d out of range (%d,%d)", i, child, i, len(t.Nodes))
			}
		}
	}
	return nil
}

func (t Tree) eval(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// GradientBoosting is a binary log-loss ensemble of regression trees:
// raw(x) = Init + LearningRate * sum(tree(x)).
type GradientBoosting struct {
	binary
	init         float64
	learningRate float64
	trees        []Tree
}

func newGradientBoosting(a Artifact) (*GradientBoosting, error) {
	if a.LearningRate <= 0 {
		return nil, fmt.Errorf("learningRate must be positive, got %v", a.LearningRate)
	}
	for i, t := range a.Trees {
		if err := t.validate(a.NFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	m := &GradientBoosting{
		init:         a.Init,
		learningRate: a.LearningRate,
		trees:        a.Trees,
	}
	m.binary = binary{classes: a.Classes, nFeatures: a.NFeatures, decision: m.Decision}
	return m, nil
}

// Decision returns the raw log-odds score for a row of the right width.
func (m *GradientBoosting) Decision(row []float64) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.eval(row)
	}
	return m.init + m.learningRate*sum
}
