package model

import (
	"math"
	"testing"

	"github.com/smallbiznis/churnscope/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnsemble is one split tree plus one stump over two features.
//
// Tree 0: feature 0 < 5 goes left (leaf -1, cover 30), else right (leaf 2,
// cover 10). Missing routes left. Root expectation: (30*-1 + 10*2)/40 = -0.25.
// Tree 1: constant leaf 0.5.
func testEnsemble(t *testing.T) *Ensemble {
	t.Helper()
	ens := &Ensemble{
		Version:   "test",
		BaseScore: 0.1,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 5, Left: 1, Right: 2, Missing: 1, Cover: 40},
				{Feature: -1, Value: -1, Cover: 30},
				{Feature: -1, Value: 2, Cover: 10},
			}},
			{Nodes: []Node{
				{Feature: -1, Value: 0.5, Cover: 40},
			}},
		},
	}
	require.NoError(t, ens.init(2))
	return ens
}

func matrix(rows ...[]float64) *frame.Matrix {
	m := frame.NewMatrix([]string{"Orders_CY", "Spend_CY"}, len(rows))
	copy(m.Data, rows)
	return m
}

func sigmoidOf(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestPredict(t *testing.T) {
	ens := testEnsemble(t)

	probs, err := ens.Predict(matrix(
		[]float64{3, 0},  // left leaf: margin 0.1 - 1 + 0.5 = -0.4
		[]float64{7, 0},  // right leaf: margin 0.1 + 2 + 0.5 = 2.6
		[]float64{5, 0},  // threshold is exclusive on the left: goes right
	))
	require.NoError(t, err)
	require.Len(t, probs, 3)

	assert.InDelta(t, sigmoidOf(-0.4), probs[0], 1e-12)
	assert.InDelta(t, sigmoidOf(2.6), probs[1], 1e-12)
	assert.InDelta(t, sigmoidOf(2.6), probs[2], 1e-12)
}

func TestPredictMissingRoutesToMissingBranch(t *testing.T) {
	ens := testEnsemble(t)

	probs, err := ens.Predict(matrix([]float64{math.NaN(), 0}))
	require.NoError(t, err)
	assert.InDelta(t, sigmoidOf(-0.4), probs[0], 1e-12)
}

func TestPredictColumnCountMismatch(t *testing.T) {
	ens := testEnsemble(t)

	m := frame.NewMatrix([]string{"Orders_CY"}, 1)
	_, err := ens.Predict(m)
	assert.ErrorIs(t, err, ErrScoring)
}

func TestContributionsSumToMargin(t *testing.T) {
	ens := testEnsemble(t)
	m := matrix(
		[]float64{3, 0},
		[]float64{7, 0},
		[]float64{math.NaN(), 0},
	)

	contribs, err := ens.Contributions(m)
	require.NoError(t, err)
	require.Len(t, contribs, 3)

	margins := []float64{-0.4, 2.6, -0.4}
	for i, contrib := range contribs {
		require.Len(t, contrib, 3) // two features plus bias
		sum := 0.0
		for _, c := range contrib {
			sum += c
		}
		assert.InDelta(t, margins[i], sum, 1e-12, "row %d", i)
	}

	// bias = base score + root expectations = 0.1 - 0.25 + 0.5
	assert.InDelta(t, 0.35, contribs[0][2], 1e-12)

	// row 1 went right, so feature 0 is charged 2 - (-0.25)
	assert.InDelta(t, 2.25, contribs[1][0], 1e-12)
	assert.Zero(t, contribs[1][1]) // feature 1 never split on
}

func TestInitRejectsOutOfRangeFeature(t *testing.T) {
	ens := &Ensemble{Trees: []Tree{
		{Nodes: []Node{
			{Feature: 9, Threshold: 1, Left: 1, Right: 2, Cover: 2},
			{Feature: -1, Value: 0, Cover: 1},
			{Feature: -1, Value: 1, Cover: 1},
		}},
	}}
	err := ens.init(2)
	assert.ErrorIs(t, err, ErrBadArtifact)
}

func TestInitRejectsEmptyTree(t *testing.T) {
	ens := &Ensemble{Trees: []Tree{{}}}
	err := ens.init(2)
	assert.ErrorIs(t, err, ErrBadArtifact)
}
