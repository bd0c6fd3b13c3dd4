package affinity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/affine/affinity"
	"github.com/katalvlaran/affine/pairwise"
)

// TestNewDoublyStochastic_Validation covers the temperature guard.
func TestNewDoublyStochastic_Validation(t *testing.T) {
	for _, eps := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := affinity.NewDoublyStochastic(eps, affinity.DefaultOptions())
		assert.ErrorIs(t, err, affinity.ErrBadTemperature, "eps %g must be rejected", eps)
	}
}

// TestDoublyStochastic_Projection is the core contract: the result is
// symmetric, strictly positive, and both marginals are uniform.
func TestDoublyStochastic_Projection(t *testing.T) {
	X := twoMoons(300, 21)

	opts := affinity.DefaultOptions()
	opts.Tol = 1e-7
	ds, err := affinity.NewDoublyStochastic(1.0, opts)
	require.NoError(t, err)

	P, err := ds.FitTransform(X)
	require.NoError(t, err)

	diag := ds.Diagnostics()
	assert.True(t, diag.Converged, "sinkhorn must converge on benign data")
	assert.LessOrEqual(t, diag.MaxMarginGap, opts.Tol)
	// Every sweep counts, including the one that observes convergence.
	assert.GreaterOrEqual(t, diag.Iterations, 1, "a converged fit ran at least one sweep")
	assert.LessOrEqual(t, diag.Iterations, opts.MaxIter)

	assert.NoError(t, pairwise.CheckSymmetric(P, 1e-12), "single-potential projection is symmetric")
	assert.NoError(t, pairwise.CheckRowSums(P, 1, 1e-6))
	assert.NoError(t, pairwise.CheckColSums(P, 1, 1e-6))
	assert.NoError(t, pairwise.CheckNonnegative(P))
}

// TestDoublyStochastic_LogAgreesWithLinear verifies the two renderings and
// the mass-1 property of log rows.
func TestDoublyStochastic_LogAgreesWithLinear(t *testing.T) {
	ds, err := affinity.NewDoublyStochastic(0.5, affinity.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, ds.Fit(twoMoons(100, 22)))

	P, err := ds.Transform()
	require.NoError(t, err)
	logP, err := ds.TransformLog()
	require.NoError(t, err)
	assert.NoError(t, pairwise.CheckRowLogSums(logP, 0, 1e-5))

	var pRow, lRow []float64
	for i := 0; i < P.N(); i++ {
		pRow, err = P.Row(i, pRow)
		require.NoError(t, err)
		lRow, err = logP.Row(i, lRow)
		require.NoError(t, err)
		for j := range pRow {
			assert.InDelta(t, pRow[j], math.Exp(lRow[j]), 1e-12, "entry (%d,%d)", i, j)
		}
	}
}

// TestDoublyStochastic_BackendsAgree verifies the dense/lazy contract after
// a full Sinkhorn solve.
func TestDoublyStochastic_BackendsAgree(t *testing.T) {
	X := twoMoons(150, 23)

	dense := affinity.DefaultOptions()
	lazy := affinity.DefaultOptions()
	lazy.Backend = pairwise.BackendLazy

	dd, err := affinity.NewDoublyStochastic(1.0, dense)
	require.NoError(t, err)
	dl, err := affinity.NewDoublyStochastic(1.0, lazy)
	require.NoError(t, err)

	Pd, err := dd.FitTransform(X)
	require.NoError(t, err)
	Pl, err := dl.FitTransform(X)
	require.NoError(t, err)

	assert.NoError(t, pairwise.CheckSameTopK(Pd, Pl, 10, 1e-6))
}

// TestDoublyStochastic_TighterTemperatureSharpens verifies a qualitative
// property: lowering the temperature concentrates mass on near neighbors.
func TestDoublyStochastic_TighterTemperatureSharpens(t *testing.T) {
	X := twoMoons(80, 24)

	hot, err := affinity.NewDoublyStochastic(5.0, affinity.DefaultOptions())
	require.NoError(t, err)
	cold, err := affinity.NewDoublyStochastic(0.1, affinity.DefaultOptions())
	require.NoError(t, err)

	Ph, err := hot.FitTransform(X)
	require.NoError(t, err)
	Pc, err := cold.FitTransform(X)
	require.NoError(t, err)

	// Entropy of row 0 must drop as the temperature does.
	rh, err := Ph.Row(0, nil)
	require.NoError(t, err)
	rc, err := Pc.Row(0, nil)
	require.NoError(t, err)
	assert.Less(t, pairwise.Entropy(rc), pairwise.Entropy(rh),
		"cold rows must be sharper than hot rows")
}

// TestDoublyStochastic_NotFitted verifies the lifecycle guards.
func TestDoublyStochastic_NotFitted(t *testing.T) {
	ds, err := affinity.NewDoublyStochastic(1.0, affinity.DefaultOptions())
	require.NoError(t, err)

	_, err = ds.Transform()
	assert.ErrorIs(t, err, affinity.ErrNotFitted)
	_, err = ds.Potentials()
	assert.ErrorIs(t, err, affinity.ErrNotFitted)
}
