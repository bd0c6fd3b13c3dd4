// SPDX-License-Identifier: MIT
// Package pairwise: shared types and the sentinel error set.
//
// This file defines ONLY the capability interface, the metric/backend enums
// and package-level sentinel errors. All functions in this package MUST
// return these sentinels (possibly wrapped with fmt.Errorf("tag: %w", ...))
// and tests MUST check them via errors.Is. Panics are reserved for
// programmer errors in private helpers.
package pairwise

import "errors"

// Metric selects the ground-cost function between two points.
//
//   - Euclidean   — SQUARED Euclidean distance ‖a−b‖² (package convention).
//   - Manhattan   — L1 distance Σ|a_k − b_k|.
//   - NegativeDot — −⟨a, b⟩; the ground cost behind the scalar-product
//     affinity. Unlike the distance metrics it is sign-indefinite and has a
//     non-zero diagonal.
type Metric int

const (
	// Euclidean is squared Euclidean distance (see package doc convention).
	Euclidean Metric = iota

	// Manhattan is the L1 distance.
	Manhattan

	// NegativeDot is the negated inner product −⟨a, b⟩.
	NegativeDot
)

// String implements fmt.Stringer for diagnostics.
func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Manhattan:
		return "manhattan"
	case NegativeDot:
		return "negative_dot"
	default:
		return "unknown"
	}
}

// Backend selects the execution representation of a pairwise matrix.
//
//   - BackendDense — materialize the full n×n matrix once; O(n²) memory.
//   - BackendLazy  — keep only X and recompute rows on demand; O(n) memory.
//
// Both backends satisfy Matrix and must agree within floating tolerance;
// that equivalence is a first-class contract verified by the validators.
type Backend int

const (
	// BackendDense stores all n² entries in a row-major buffer.
	BackendDense Backend = iota

	// BackendLazy recomputes cost rows from the data matrix on demand.
	BackendLazy
)

// String implements fmt.Stringer for diagnostics.
func (b Backend) String() string {
	switch b {
	case BackendDense:
		return "dense"
	case BackendLazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// Matrix is the read-only capability surface shared by both backends.
//
// It models a square n×n pairwise matrix. Row is the workhorse: algorithms
// stream one row at a time so the lazy backend never materializes n×n.
// At is a convenience for spot reads; on lazy representations it may cost
// O(n) or O(d) — hot loops must use Row.
//
// Implementations: Dense (materialized), Lazy (ground cost from X),
// Map (deferred per-row transform of another Matrix).
type Matrix interface {
	// N returns the matrix order n.
	N() int

	// At returns the entry at (i, j), or ErrOutOfRange.
	At(i, j int) (float64, error)

	// Row writes row i into dst (reused when cap(dst) ≥ n, reallocated
	// otherwise) and returns the resulting slice of length n.
	// Returns ErrOutOfRange when i is outside [0, n).
	Row(i int, dst []float64) ([]float64, error)
}

// Sentinel errors. Messages are prefixed "pairwise: ..." for grep-ability.
var (
	// ErrNilInput indicates a nil data matrix, base matrix or callback.
	ErrNilInput = errors.New("pairwise: nil input")

	// ErrBadShape indicates a malformed data matrix (fewer than 2 rows or
	// fewer than 1 column) or a non-positive requested order.
	ErrBadShape = errors.New("pairwise: invalid shape")

	// ErrNonFinite indicates a NaN or ±Inf entry where finite values are
	// required (defensive re-validation of the ingestion contract).
	ErrNonFinite = errors.New("pairwise: non-finite value encountered")

	// ErrUnknownMetric indicates an unrecognized Metric value.
	ErrUnknownMetric = errors.New("pairwise: unknown metric")

	// ErrUnknownBackend indicates an unrecognized Backend value.
	ErrUnknownBackend = errors.New("pairwise: unknown backend")

	// ErrOutOfRange indicates a row or column index outside [0, n).
	ErrOutOfRange = errors.New("pairwise: index out of range")

	// ErrDimensionMismatch indicates incompatible orders between operands.
	ErrDimensionMismatch = errors.New("pairwise: dimension mismatch")
)

// Validator sentinels: returned by the Check* property validators.
var (
	// ErrAsymmetry signals a symmetry violation beyond the tolerance.
	ErrAsymmetry = errors.New("pairwise: matrix is not symmetric within tol")

	// ErrNegativeEntry signals a negative entry where nonnegativity is required.
	ErrNegativeEntry = errors.New("pairwise: negative entry")

	// ErrMarginalMismatch signals a row/column/total sum away from its target.
	ErrMarginalMismatch = errors.New("pairwise: marginal sum mismatch")

	// ErrEntropyMismatch signals a row entropy away from its target.
	ErrEntropyMismatch = errors.New("pairwise: row entropy mismatch")

	// ErrTopKMismatch signals cross-backend disagreement on top-K entries.
	ErrTopKMismatch = errors.New("pairwise: top-k entries disagree")
)
