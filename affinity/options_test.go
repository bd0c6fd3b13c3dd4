package affinity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/affine/affinity"
	"github.com/katalvlaran/affine/pairwise"
)

// TestDefaultOptions pins the documented defaults.
func TestDefaultOptions(t *testing.T) {
	opts := affinity.DefaultOptions()

	assert.Equal(t, pairwise.Euclidean, opts.Metric)
	assert.Equal(t, pairwise.BackendDense, opts.Backend)
	assert.Equal(t, affinity.DefaultTol, opts.Tol)
	assert.Equal(t, affinity.DefaultMaxIter, opts.MaxIter)
	assert.Equal(t, affinity.DefaultLearnRate, opts.LearnRate)
	assert.Equal(t, affinity.Adam, opts.Optimizer)
	assert.True(t, opts.EpsSquare)
	assert.False(t, opts.Verbose)
	assert.Nil(t, opts.Logger)
}

// TestEnumStrings covers the Stringer implementations used in diagnostics.
func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "row", affinity.AxisRow.String())
	assert.Equal(t, "col", affinity.AxisCol.String())
	assert.Equal(t, "both", affinity.AxisBoth.String())
	assert.Equal(t, "unknown", affinity.Axis(9).String())

	assert.Equal(t, "adam", affinity.Adam.String())
	assert.Equal(t, "lbfgs", affinity.LBFGS.String())
	assert.Equal(t, "unknown", affinity.Optimizer(9).String())

	assert.Equal(t, "euclidean", pairwise.Euclidean.String())
	assert.Equal(t, "manhattan", pairwise.Manhattan.String())
	assert.Equal(t, "negative_dot", pairwise.NegativeDot.String())
	assert.Equal(t, "dense", pairwise.BackendDense.String())
	assert.Equal(t, "lazy", pairwise.BackendLazy.String())
}
