// SPDX-License-Identifier: MIT
// Package pairwise: Dense — the materialized backend.
//
// Dense is a square, row-major float64 matrix with guarded accessors.
// The flat buffer (offset = i*n + j) keeps row streaming cache-friendly;
// public At/Set/Row return errors instead of panicking.
package pairwise

import "fmt"

// denseErrorf wraps a sentinel with Dense method context and coordinates.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a square row-major matrix of float64 values.
type Dense struct {
	n    int       // matrix order
	data []float64 // flat backing storage, length == n*n
}

// Compile-time interface conformance.
var _ Matrix = (*Dense)(nil)

// NewDense creates an n×n Dense matrix initialized to zeros.
// Returns ErrBadShape when n ≤ 0.
// Complexity: O(n²) time and memory.
func NewDense(n int) (*Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("NewDense(%d): %w", n, ErrBadShape)
	}

	return &Dense{n: n, data: make([]float64, n*n)}, nil
}

// N returns the matrix order.
func (d *Dense) N() int { return d.n }

// indexOf computes the flat index for (i, j) or reports ErrOutOfRange.
func (d *Dense) indexOf(method string, i, j int) (int, error) {
	if i < 0 || i >= d.n || j < 0 || j >= d.n {
		return 0, denseErrorf(method, i, j, ErrOutOfRange)
	}

	return i*d.n + j, nil
}

// At returns the entry at (i, j).
// Complexity: O(1).
func (d *Dense) At(i, j int) (float64, error) {
	idx, err := d.indexOf("At", i, j)
	if err != nil {
		return 0, err
	}

	return d.data[idx], nil
}

// Set assigns v at (i, j).
// Complexity: O(1).
func (d *Dense) Set(i, j int, v float64) error {
	idx, err := d.indexOf("Set", i, j)
	if err != nil {
		return err
	}
	d.data[idx] = v

	return nil
}

// Row copies row i into dst and returns the resulting slice of length n.
// dst is reused when it has sufficient capacity.
// Complexity: O(n).
func (d *Dense) Row(i int, dst []float64) ([]float64, error) {
	if i < 0 || i >= d.n {
		return nil, denseErrorf("Row", i, 0, ErrOutOfRange)
	}
	dst = growTo(dst, d.n)
	copy(dst, d.data[i*d.n:(i+1)*d.n])

	return dst, nil
}

// SetRow copies src (length n) into row i.
// Complexity: O(n).
func (d *Dense) SetRow(i int, src []float64) error {
	if i < 0 || i >= d.n {
		return denseErrorf("SetRow", i, 0, ErrOutOfRange)
	}
	if len(src) != d.n {
		return denseErrorf("SetRow", i, len(src), ErrDimensionMismatch)
	}
	copy(d.data[i*d.n:(i+1)*d.n], src)

	return nil
}

// Clone returns a deep copy of the matrix.
// Complexity: O(n²).
func (d *Dense) Clone() *Dense {
	buf := make([]float64, len(d.data))
	copy(buf, d.data)

	return &Dense{n: d.n, data: buf}
}

// Materialize copies any Matrix into a Dense, one streamed row at a time.
// The source is unchanged; for a *Dense input this is a deep copy.
// Complexity: O(n²) time and memory.
func Materialize(m Matrix) (*Dense, error) {
	if m == nil {
		return nil, fmt.Errorf("Materialize: %w", ErrNilInput)
	}
	if d, ok := m.(*Dense); ok {
		return d.Clone(), nil
	}

	n := m.N()
	out, err := NewDense(n)
	if err != nil {
		return nil, err
	}
	var row []float64
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return nil, err
		}
		copy(out.data[i*n:(i+1)*n], row)
	}

	return out, nil
}

// growTo returns a slice of length n backed by dst when possible.
func growTo(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}

	return dst[:n]
}
