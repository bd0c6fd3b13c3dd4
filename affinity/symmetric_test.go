package affinity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/affine/affinity"
	"github.com/katalvlaran/affine/pairwise"
)

// TestL2SymEntropic_Properties verifies exact symmetry, nonnegativity and
// mass preservation of the averaged symmetrization.
func TestL2SymEntropic_Properties(t *testing.T) {
	X := twoMoons(150, 11)

	l, err := affinity.NewL2SymEntropic(15, affinity.DefaultOptions())
	require.NoError(t, err)
	P, err := l.FitTransform(X)
	require.NoError(t, err)

	assert.True(t, l.Diagnostics().Converged, "underlying calibration must converge")
	assert.NoError(t, pairwise.CheckSymmetric(P, 1e-15), "averaging must be exactly symmetric")
	assert.NoError(t, pairwise.CheckNonnegative(P))
	// Row masses of the base matrix are 1, so averaging keeps the grand sum.
	assert.NoError(t, pairwise.CheckTotalSum(P, 150, 1e-6))

	for i := 0; i < P.N(); i++ {
		v, err := P.At(i, i)
		require.NoError(t, err)
		assert.Zero(t, v, "self-affinity must be excluded")
	}
}

// TestL2SymEntropic_LogAgreesWithLinear verifies the two renderings agree.
func TestL2SymEntropic_LogAgreesWithLinear(t *testing.T) {
	l, err := affinity.NewL2SymEntropic(10, affinity.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, l.Fit(twoMoons(80, 12)))

	P, err := l.Transform()
	require.NoError(t, err)
	logP, err := l.TransformLog()
	require.NoError(t, err)

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

// symTestOptions returns the solver settings shared by the SymEntropic
// tests: the contract tolerance 1e-3 with a generous iteration budget.
func symTestOptions(opt affinity.Optimizer) affinity.Options {
	opts := affinity.DefaultOptions()
	opts.Optimizer = opt
	opts.Tol = 1e-3
	opts.MaxIter = 2000

	return opts
}

// assertSymEntropicContract checks the defining properties of the solution:
// exact symmetry, unit row masses and row entropies at the target, all
// within the solver tolerance.
func assertSymEntropicContract(t *testing.T, s *affinity.SymEntropic, perplexity float64) {
	t.Helper()
	diag := s.Diagnostics()
	assert.LessOrEqual(t, diag.MaxMarginGap, 5e-3, "row masses near 1")
	assert.LessOrEqual(t, diag.MaxEntropyGap, 5e-3, "row entropies near the target")

	P, err := s.Transform()
	require.NoError(t, err)
	logP, err := s.TransformLog()
	require.NoError(t, err)

	assert.NoError(t, pairwise.CheckSymmetric(P, 1e-12), "dual closed form is symmetric")
	assert.NoError(t, pairwise.CheckNonnegative(P))
	assert.NoError(t, pairwise.CheckRowSums(P, 1, 1e-2))
	assert.NoError(t, pairwise.CheckRowEntropyLog(logP, math.Log(perplexity)+1, 1e-2))

	eps, mu, err := s.Duals()
	require.NoError(t, err)
	require.Len(t, mu, len(eps))
	for i, v := range eps {
		assert.GreaterOrEqual(t, v, 0.0, "dual temperature %d", i)
	}
}

// TestSymEntropic_Adam solves the symmetric problem with the first-order
// ascent at the shipped step size and checks the full contract. The default
// LearnRate must land both gaps under Tol within the budget; an oversized
// step makes the ascent oscillate without ever converging.
func TestSymEntropic_Adam(t *testing.T) {
	const perplexity = 12.0
	s, err := affinity.NewSymEntropic(perplexity, symTestOptions(affinity.Adam))
	require.NoError(t, err)

	require.NoError(t, s.Fit(twoMoons(120, 13)))
	diag := s.Diagnostics()
	assert.True(t, diag.Converged, "default step size must converge within the budget")
	assert.Less(t, diag.Iterations, 2000, "convergence, not iteration exhaustion")
	assertSymEntropicContract(t, s, perplexity)
}

// TestSymEntropic_LBFGS solves the same problem with the quasi-Newton path.
func TestSymEntropic_LBFGS(t *testing.T) {
	const perplexity = 12.0
	s, err := affinity.NewSymEntropic(perplexity, symTestOptions(affinity.LBFGS))
	require.NoError(t, err)

	require.NoError(t, s.Fit(twoMoons(120, 13)))
	assertSymEntropicContract(t, s, perplexity)
}

// TestSymEntropic_OptimizersAgree verifies both paths land on the same
// matrix: the dual problem is strictly concave in its relevant region.
func TestSymEntropic_OptimizersAgree(t *testing.T) {
	X := twoMoons(100, 14)

	sa, err := affinity.NewSymEntropic(10, symTestOptions(affinity.Adam))
	require.NoError(t, err)
	sl, err := affinity.NewSymEntropic(10, symTestOptions(affinity.LBFGS))
	require.NoError(t, err)

	Pa, err := sa.FitTransform(X)
	require.NoError(t, err)
	Pl, err := sl.FitTransform(X)
	require.NoError(t, err)

	assert.NoError(t, pairwise.CheckSameTopK(Pa, Pl, 5, 5e-2))
}

// TestSymEntropic_Validation covers the extra constructor guards.
func TestSymEntropic_Validation(t *testing.T) {
	opts := affinity.DefaultOptions()
	opts.Optimizer = affinity.Optimizer(42)
	_, err := affinity.NewSymEntropic(10, opts)
	assert.ErrorIs(t, err, affinity.ErrUnknownOptimizer)

	opts = affinity.DefaultOptions()
	opts.LearnRate = 0
	_, err = affinity.NewSymEntropic(10, opts)
	assert.ErrorIs(t, err, affinity.ErrBadLearnRate)

	_, err = affinity.NewSymEntropic(1, affinity.DefaultOptions())
	assert.ErrorIs(t, err, affinity.ErrBadPerplexity)
}

// TestSymEntropic_NotFitted verifies the lifecycle guards.
func TestSymEntropic_NotFitted(t *testing.T) {
	s, err := affinity.NewSymEntropic(10, affinity.DefaultOptions())
	require.NoError(t, err)

	_, err = s.Transform()
	assert.ErrorIs(t, err, affinity.ErrNotFitted)
	_, _, err = s.Duals()
	assert.ErrorIs(t, err, affinity.ErrNotFitted)
}
