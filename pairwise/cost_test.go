// SPDX-License-Identifier: MIT
package pairwise_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/affine/pairwise"
)

// threePoints is the hand-checked fixture used across the cost tests:
// a=(0,0), b=(3,4), c=(1,1).
func threePoints() *mat.Dense {
	return mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		1, 1,
	})
}

// TestNewCost_NilInput verifies that a nil data matrix errors ErrNilInput.
func TestNewCost_NilInput(t *testing.T) {
	_, err := pairwise.NewCost(nil, pairwise.Euclidean, pairwise.BackendDense)
	assert.ErrorIs(t, err, pairwise.ErrNilInput, "nil X must error ErrNilInput")
}

// TestNewCost_BadShape verifies the n ≥ 2 rows requirement.
func TestNewCost_BadShape(t *testing.T) {
	X := mat.NewDense(1, 3, []float64{1, 2, 3})

	_, err := pairwise.NewCost(X, pairwise.Euclidean, pairwise.BackendDense)
	assert.ErrorIs(t, err, pairwise.ErrBadShape, "single-point X must error ErrBadShape")
}

// TestNewCost_NonFinite verifies that NaN and Inf entries are rejected.
func TestNewCost_NonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		X := mat.NewDense(2, 2, []float64{0, 0, 1, bad})

		_, err := pairwise.NewCost(X, pairwise.Euclidean, pairwise.BackendDense)
		assert.ErrorIs(t, err, pairwise.ErrNonFinite, "non-finite entry must error ErrNonFinite")
	}
}

// TestNewCost_UnknownEnums verifies the enum guards.
func TestNewCost_UnknownEnums(t *testing.T) {
	X := threePoints()

	_, err := pairwise.NewCost(X, pairwise.Metric(99), pairwise.BackendDense)
	assert.ErrorIs(t, err, pairwise.ErrUnknownMetric, "metric 99 must error ErrUnknownMetric")

	_, err = pairwise.NewCost(X, pairwise.Euclidean, pairwise.Backend(99))
	assert.ErrorIs(t, err, pairwise.ErrUnknownBackend, "backend 99 must error ErrUnknownBackend")
}

// TestNewCost_EuclideanValues checks hand-computed SQUARED distances.
func TestNewCost_EuclideanValues(t *testing.T) {
	C, err := pairwise.NewCost(threePoints(), pairwise.Euclidean, pairwise.BackendDense)
	require.NoError(t, err)

	want := [][]float64{
		{0, 25, 2},
		{25, 0, 13},
		{2, 13, 0},
	}
	assertEntries(t, C, want)
}

// TestNewCost_ManhattanValues checks hand-computed L1 distances.
func TestNewCost_ManhattanValues(t *testing.T) {
	C, err := pairwise.NewCost(threePoints(), pairwise.Manhattan, pairwise.BackendDense)
	require.NoError(t, err)

	want := [][]float64{
		{0, 7, 2},
		{7, 0, 5},
		{2, 5, 0},
	}
	assertEntries(t, C, want)
}

// TestGram_Values checks the negated inner products, diagonal included.
func TestGram_Values(t *testing.T) {
	C, err := pairwise.Gram(threePoints(), pairwise.BackendDense)
	require.NoError(t, err)

	want := [][]float64{
		{0, 0, 0},
		{0, -25, -7},
		{0, -7, -2},
	}
	assertEntries(t, C, want)
}

// TestNewCost_EuclideanExactOnIntegers verifies the squared distance is
// summed from squared differences, not recovered from a square root: on
// integer coordinates the result must be exact, bit for bit.
func TestNewCost_EuclideanExactOnIntegers(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})
	C, err := pairwise.NewCost(X, pairwise.Euclidean, pairwise.BackendDense)
	require.NoError(t, err)

	v, err := C.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v, "a sqrt round-trip would yield 2.0000000000000004")
}

// TestNewCost_BackendsAgree verifies that dense and lazy representations
// yield identical entries on the same input.
func TestNewCost_BackendsAgree(t *testing.T) {
	for _, metric := range []pairwise.Metric{pairwise.Euclidean, pairwise.Manhattan, pairwise.NegativeDot} {
		dense, err := pairwise.NewCost(threePoints(), metric, pairwise.BackendDense)
		require.NoError(t, err)
		lazy, err := pairwise.NewCost(threePoints(), metric, pairwise.BackendLazy)
		require.NoError(t, err)

		assert.NoError(t, pairwise.CheckSameTopK(dense, lazy, dense.N(), 1e-12),
			"metric %v: backends must agree entrywise", metric)
	}
}

// TestNewCost_CopiesInput verifies that mutating X after construction does
// not change the lazy cost matrix.
func TestNewCost_CopiesInput(t *testing.T) {
	X := threePoints()
	C, err := pairwise.NewCost(X, pairwise.Euclidean, pairwise.BackendLazy)
	require.NoError(t, err)

	before, err := C.At(0, 1)
	require.NoError(t, err)
	X.Set(1, 0, 100)
	after, err := C.At(0, 1)
	require.NoError(t, err)

	assert.Equal(t, before, after, "cost must be computed from a private copy of X")
}

// TestNewCost_DistanceProperties verifies symmetry, nonnegativity and the
// zero diagonal of distance costs.
func TestNewCost_DistanceProperties(t *testing.T) {
	C, err := pairwise.NewCost(threePoints(), pairwise.Euclidean, pairwise.BackendDense)
	require.NoError(t, err)

	assert.NoError(t, pairwise.CheckSymmetric(C, 0), "distance cost must be symmetric")
	assert.NoError(t, pairwise.CheckNonnegative(C), "distance cost must be nonnegative")
	for i := 0; i < C.N(); i++ {
		v, err := C.At(i, i)
		require.NoError(t, err)
		assert.Zero(t, v, "distance cost diagonal must be zero")
	}
}

// assertEntries compares every matrix entry against a reference grid.
func assertEntries(t *testing.T, m pairwise.Matrix, want [][]float64) {
	t.Helper()
	require.Equal(t, len(want), m.N(), "matrix order")
	for i := range want {
		for j := range want[i] {
			v, err := m.At(i, j)
			require.NoError(t, err)
			assert.InDelta(t, want[i][j], v, 1e-12, "entry (%d,%d)", i, j)
		}
	}
}
