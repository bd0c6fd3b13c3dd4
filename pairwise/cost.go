// SPDX-License-Identifier: MIT
// Package pairwise: ground-cost construction and input validation.
//
// NewCost is the single entry point turning a data matrix X into a pairwise
// cost matrix in the requested representation. Validation is staged
// (metric/backend → shape → finiteness) and returns sentinel errors only;
// the builders themselves cannot fail afterwards.
package pairwise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewCost validates X and builds the pairwise cost matrix C[i,j] =
// metric(x_i, x_j) in the requested backend.
//
// Contracts:
//   - X non-nil, n ≥ 2 rows, d ≥ 1 columns, all entries finite.
//   - Distance metrics yield a symmetric, nonnegative C with zero diagonal;
//     NegativeDot yields a symmetric C with diagonal −‖x_i‖².
//   - X is copied: later mutation of X does not affect the result.
//
// Errors: ErrUnknownMetric, ErrUnknownBackend, ErrNilInput, ErrBadShape,
// ErrNonFinite.
//
// Complexity: dense O(n²·d) time / O(n²) memory; lazy O(n·d) time / memory.
func NewCost(X mat.Matrix, metric Metric, backend Backend) (Matrix, error) {
	// Stage 1: enum sanity.
	if metric != Euclidean && metric != Manhattan && metric != NegativeDot {
		return nil, fmt.Errorf("NewCost: metric %d: %w", metric, ErrUnknownMetric)
	}
	if backend != BackendDense && backend != BackendLazy {
		return nil, fmt.Errorf("NewCost: backend %d: %w", backend, ErrUnknownBackend)
	}

	// Stage 2: data validation + private flat copy.
	x, n, d, err := copyData(X)
	if err != nil {
		return nil, err
	}

	// Stage 3: representation dispatch.
	lz := &Lazy{n: n, d: d, x: x, metric: metric}
	if backend == BackendLazy {
		return lz, nil
	}

	return materializeCost(lz)
}

// Gram builds the scalar-product ground cost C[i,j] = −⟨x_i, x_j⟩.
// Convenience wrapper used by the scalar-product affinity.
func Gram(X mat.Matrix, backend Backend) (Matrix, error) {
	return NewCost(X, NegativeDot, backend)
}

// copyData validates X and returns a private row-major copy plus dims.
//
// Checks, in order: non-nil, n ≥ 2 and d ≥ 1, every entry finite. Complex
// input is unrepresentable here by construction (float64 end to end), so the
// finiteness scan is the whole defensive re-validation of the ingestion
// contract.
func copyData(X mat.Matrix) ([]float64, int, int, error) {
	if X == nil {
		return nil, 0, 0, fmt.Errorf("copyData: %w", ErrNilInput)
	}
	n, d := X.Dims()
	if n < 2 || d < 1 {
		return nil, 0, 0, fmt.Errorf("copyData: %dx%d: %w", n, d, ErrBadShape)
	}

	x := make([]float64, n*d)
	var v float64
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			v = X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, 0, 0, fmt.Errorf("copyData: X(%d,%d): %w", i, j, ErrNonFinite)
			}
			x[i*d+j] = v
		}
	}

	return x, n, d, nil
}

// materializeCost fills a Dense from a Lazy cost, exploiting symmetry:
// only the upper triangle is computed, then mirrored.
func materializeCost(lz *Lazy) (*Dense, error) {
	out, err := NewDense(lz.n)
	if err != nil {
		return nil, err
	}

	var v float64
	for i := 0; i < lz.n; i++ {
		xi := lz.point(i)
		for j := i; j < lz.n; j++ {
			v = pointCost(xi, lz.point(j), lz.metric)
			out.data[i*lz.n+j] = v
			out.data[j*lz.n+i] = v
		}
	}

	return out, nil
}

// pointCost computes the ground cost between two feature vectors.
// The metric is assumed validated upstream.
//
//   - Euclidean: ‖a−b‖² (squared — the package-wide convention). Summed
//     directly from squared differences: squaring floats.Distance would
//     round-trip through a sqrt and lose exactness on integer inputs.
//   - Manhattan: Σ|a_k − b_k|.
//   - NegativeDot: −⟨a, b⟩.
func pointCost(a, b []float64, metric Metric) float64 {
	switch metric {
	case Euclidean:
		var s float64
		for k, av := range a {
			d := av - b[k]
			s += d * d
		}
		return s
	case Manhattan:
		return floats.Distance(a, b, 1)
	default: // NegativeDot
		return -floats.Dot(a, b)
	}
}
