// Package model loads the pretrained gradient-boosted churn classifier and
// produces per-row probabilities and additive feature contributions.
package model

import (
	"fmt"
	"math"

	"github.com/smallbiznis/churnscope/internal/frame"
)

// Node is one split or leaf in a regression tree. Feature is -1 on leaves.
// Cover carries the training-time row weight through the node and drives the
// expected-value decomposition used for contributions.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Missing   int     `json:"missing"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
}

func (n Node) leaf() bool { return n.Feature < 0 }

type Tree struct {
	Nodes []Node `json:"nodes"`

	// expected[i] is the cover-weighted mean leaf value of the subtree at
	// node i, filled in at load time.
	expected []float64
}

// Ensemble is the full boosted forest. Margin-space output is
// BaseScore + sum of leaf values; probability applies the logistic link.
type Ensemble struct {
	Version   string  `json:"version"`
	BaseScore float64 `json:"base_score"`
	Trees     []Tree  `json:"trees"`

	numFeatures int
}

func (e *Ensemble) init(numFeatures int) error {
	e.numFeatures = numFeatures
	for ti := range e.Trees {
		t := &e.Trees[ti]
		if len(t.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d has no nodes", ErrBadArtifact, ti)
		}
		t.expected = make([]float64, len(t.Nodes))
		if err := t.fillExpected(0, numFeatures); err != nil {
			return fmt.Errorf("%w: tree %d: %v", ErrBadArtifact, ti, err)
		}
	}
	return nil
}

func (t *Tree) fillExpected(i, numFeatures int) error {
	if i < 0 || i >= len(t.Nodes) {
		return fmt.Errorf("node index %d out of range", i)
	}
	n := t.Nodes[i]
	if n.leaf() {
		t.expected[i] = n.Value
		return nil
	}
	if n.Feature >= numFeatures {
		return fmt.Errorf("node %d splits on feature %d, model has %d columns", i, n.Feature, numFeatures)
	}
	if err := t.fillExpected(n.Left, numFeatures); err != nil {
		return err
	}
	if err := t.fillExpected(n.Right, numFeatures); err != nil {
		return err
	}
	lc, rc := t.Nodes[n.Left].Cover, t.Nodes[n.Right].Cover
	if lc+rc > 0 {
		t.expected[i] = (lc*t.expected[n.Left] + rc*t.expected[n.Right]) / (lc + rc)
	} else {
		t.expected[i] = (t.expected[n.Left] + t.expected[n.Right]) / 2
	}
	return nil
}

func (t *Tree) step(i int, row []float64) int {
	n := t.Nodes[i]
	x := row[n.Feature]
	if math.IsNaN(x) {
		if n.Missing >= 0 {
			return n.Missing
		}
		return n.Left
	}
	if x < n.Threshold {
		return n.Left
	}
	return n.Right
}

func (t *Tree) leafValue(row []float64) float64 {
	i := 0
	for !t.Nodes[i].leaf() {
		i = t.step(i, row)
	}
	return t.Nodes[i].Value
}

// margin returns the raw (pre-link) model output for one aligned row.
func (e *Ensemble) margin(row []float64) float64 {
	out := e.BaseScore
	for ti := range e.Trees {
		out += e.Trees[ti].leafValue(row)
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Predict returns the positive-class probability for every row of an aligned
// matrix.
func (e *Ensemble) Predict(m *frame.Matrix) ([]float64, error) {
	if len(m.Cols) != e.numFeatures {
		return nil, fmt.Errorf("%w: matrix has %d columns, model expects %d",
			ErrScoring, len(m.Cols), e.numFeatures)
	}
	probs := make([]float64, m.NumRows())
	for i, row := range m.Data {
		probs[i] = sigmoid(e.margin(row))
	}
	return probs, nil
}

// Contributions decomposes each row's margin into one additive term per
// feature plus a trailing bias term: walking every tree root-to-leaf, each
// split moves the expected value and the delta is charged to the split
// feature. The terms sum exactly to the margin.
func (e *Ensemble) Contributions(m *frame.Matrix) ([][]float64, error) {
	if len(m.Cols) != e.numFeatures {
		return nil, fmt.Errorf("%w: matrix has %d columns, model expects %d",
			ErrScoring, len(m.Cols), e.numFeatures)
	}

	bias := e.BaseScore
	for ti := range e.Trees {
		bias += e.Trees[ti].expected[0]
	}

	out := make([][]float64, m.NumRows())
	for ri, row := range m.Data {
		contrib := make([]float64, e.numFeatures+1)
		contrib[e.numFeatures] = bias
		for ti := range e.Trees {
			t := &e.Trees[ti]
			i := 0
			for !t.Nodes[i].leaf() {
				next := t.step(i, row)
				contrib[t.Nodes[i].Feature] += t.expected[next] - t.expected[i]
				i = next
			}
		}
		out[ri] = contrib
	}
	return out, nil
}
