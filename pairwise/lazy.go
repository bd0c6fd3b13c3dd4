// SPDX-License-Identifier: MIT
// Package pairwise: Lazy — the symbolic backend — and Map, the deferred
// per-row transform used to represent affinity outputs without
// materialization.
//
// Lazy keeps a private copy of the data matrix X and recomputes any cost row
// on demand: O(n·d) time per row, O(n) working memory overall. Map wraps any
// Matrix with an in-place row transform (a closure over calibrated duals),
// so a calibrated affinity stays as cheap to hold as its cost matrix.
package pairwise

import "fmt"

// Lazy is a pairwise ground-cost matrix computed on demand from X.
// It never allocates n² storage.
type Lazy struct {
	n, d   int       // points and features
	x      []float64 // private row-major copy of X, length n*d
	metric Metric
}

var _ Matrix = (*Lazy)(nil)

// N returns the matrix order (the number of points).
func (l *Lazy) N() int { return l.n }

// point returns the feature slice of point i (aliases internal storage).
func (l *Lazy) point(i int) []float64 {
	return l.x[i*l.d : (i+1)*l.d]
}

// At computes the single entry cost(x_i, x_j).
// Complexity: O(d).
func (l *Lazy) At(i, j int) (float64, error) {
	if i < 0 || i >= l.n || j < 0 || j >= l.n {
		return 0, fmt.Errorf("Lazy.At(%d,%d): %w", i, j, ErrOutOfRange)
	}

	return pointCost(l.point(i), l.point(j), l.metric), nil
}

// Row computes cost row i into dst.
// Complexity: O(n·d) time, O(n) memory.
func (l *Lazy) Row(i int, dst []float64) ([]float64, error) {
	if i < 0 || i >= l.n {
		return nil, fmt.Errorf("Lazy.Row(%d): %w", i, ErrOutOfRange)
	}
	dst = growTo(dst, l.n)

	xi := l.point(i)
	for j := 0; j < l.n; j++ {
		dst[j] = pointCost(xi, l.point(j), l.metric)
	}

	return dst, nil
}

// RowFunc transforms a streamed base row in place. i is the row index; row
// has length n and already holds the base entries when the func is invoked.
type RowFunc func(i int, row []float64)

// Map is a deferred per-row transform of a base Matrix. It is the lazy
// representation of affinity outputs: the base is a ground-cost matrix and
// the transform closes over calibrated duals (temperatures, potentials,
// normalizers).
//
// Map adds O(1) state; Row costs one base Row plus the transform. At
// materializes a full row to honor transforms that need the whole row
// (row-wise softmax), so spot reads are O(n) — stream rows in hot paths.
type Map struct {
	base  Matrix
	apply RowFunc
	n     int
}

var _ Matrix = (*Map)(nil)

// NewMap wraps base with an in-place row transform.
// Returns ErrNilInput when base or apply is nil.
func NewMap(base Matrix, apply RowFunc) (*Map, error) {
	if base == nil || apply == nil {
		return nil, fmt.Errorf("NewMap: %w", ErrNilInput)
	}

	return &Map{base: base, apply: apply, n: base.N()}, nil
}

// N returns the matrix order.
func (m *Map) N() int { return m.n }

// At returns entry (i, j) by materializing row i first.
// Complexity: O(n) plus one base row.
func (m *Map) At(i, j int) (float64, error) {
	if j < 0 || j >= m.n {
		return 0, fmt.Errorf("Map.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	row, err := m.Row(i, nil)
	if err != nil {
		return 0, err
	}

	return row[j], nil
}

// Row streams base row i and applies the transform in place.
func (m *Map) Row(i int, dst []float64) ([]float64, error) {
	row, err := m.base.Row(i, dst)
	if err != nil {
		return nil, err
	}
	m.apply(i, row)

	return row, nil
}
