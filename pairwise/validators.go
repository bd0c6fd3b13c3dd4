// SPDX-License-Identifier: MIT
// Package pairwise: exported property validators — the verification layer of
// the affinity engine.
//
// Purpose:
//   - Provide a single, canonical source of truth for the structural checks
//     every affinity variant promises: shape, nonnegativity, symmetry,
//     marginal sums, row entropy, and dense/lazy top-K agreement.
//   - Return tagged sentinel errors so call sites (and tests) match with
//     errors.Is.
//
// Determinism & memory:
//   - All checks are pure and deterministic.
//   - Every validator streams rows in O(n) working memory except
//     CheckSymmetric, which materializes the operand once (full symmetry has
//     no row-local formulation).
//
// Tolerances are absolute unless stated otherwise and assumed nonnegative.
package pairwise

import (
	"fmt"
	"math"
	"sort"
)

// validatorErrorf wraps a sentinel with the validator tag and context.
func validatorErrorf(tag string, err error, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", tag, fmt.Sprintf(format, args...), err)
}

// CheckSquare verifies m is non-nil and of order n.
// Errors: ErrNilInput, ErrDimensionMismatch.
// Complexity: O(1).
func CheckSquare(m Matrix, n int) error {
	if m == nil {
		return validatorErrorf("CheckSquare", ErrNilInput, "nil matrix")
	}
	if m.N() != n {
		return validatorErrorf("CheckSquare", ErrDimensionMismatch, "order %d, want %d", m.N(), n)
	}

	return nil
}

// CheckNonnegative verifies every entry is ≥ 0.
// Errors: ErrNegativeEntry at the first offending coordinate.
// Complexity: O(n²) time, O(n) memory.
func CheckNonnegative(m Matrix) error {
	n := m.N()
	var (
		row []float64
		err error
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		for j, v := range row {
			if v < 0 {
				return validatorErrorf("CheckNonnegative", ErrNegativeEntry, "(%d,%d)=%g", i, j, v)
			}
		}
	}

	return nil
}

// CheckSymmetric verifies |m[i,j] − m[j,i]| ≤ tol on the upper triangle.
// Materializes m once. Errors: ErrAsymmetry.
// Complexity: O(n²) time and memory.
func CheckSymmetric(m Matrix, tol float64) error {
	d, err := Materialize(m)
	if err != nil {
		return err
	}
	n := d.n
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if diff := math.Abs(d.data[i*n+j] - d.data[j*n+i]); diff > tol {
				return validatorErrorf("CheckSymmetric", ErrAsymmetry, "(%d,%d) differs by %g", i, j, diff)
			}
		}
	}

	return nil
}

// CheckRowSums verifies every row sums to want within tol.
// Errors: ErrMarginalMismatch at the first offending row.
// Complexity: O(n²) time, O(n) memory.
func CheckRowSums(m Matrix, want, tol float64) error {
	n := m.N()
	var (
		row []float64
		err error
		s   float64
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		s = 0
		for _, v := range row {
			s += v
		}
		if math.Abs(s-want) > tol {
			return validatorErrorf("CheckRowSums", ErrMarginalMismatch, "row %d sums to %g, want %g", i, s, want)
		}
	}

	return nil
}

// CheckColSums verifies every column sums to want within tol.
// Column sums are accumulated across one streaming pass over the rows.
// Errors: ErrMarginalMismatch. Complexity: O(n²) time, O(n) memory.
func CheckColSums(m Matrix, want, tol float64) error {
	n := m.N()
	sums := make([]float64, n)
	var (
		row []float64
		err error
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		for j, v := range row {
			sums[j] += v
		}
	}
	for j, s := range sums {
		if math.Abs(s-want) > tol {
			return validatorErrorf("CheckColSums", ErrMarginalMismatch, "col %d sums to %g, want %g", j, s, want)
		}
	}

	return nil
}

// CheckTotalSum verifies the grand sum equals want within tol.
// Errors: ErrMarginalMismatch. Complexity: O(n²) time, O(n) memory.
func CheckTotalSum(m Matrix, want, tol float64) error {
	n := m.N()
	var (
		row   []float64
		err   error
		total float64
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		for _, v := range row {
			total += v
		}
	}
	if math.Abs(total-want) > tol {
		return validatorErrorf("CheckTotalSum", ErrMarginalMismatch, "total %g, want %g", total, want)
	}

	return nil
}

// CheckRowLogSums verifies, for a log-space matrix, that every row's
// log Σ exp equals want within tol (want = 0 means row mass 1).
// Errors: ErrMarginalMismatch. Complexity: O(n²) time, O(n) memory.
func CheckRowLogSums(m Matrix, want, tol float64) error {
	n := m.N()
	var (
		row []float64
		err error
		lse float64
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		lse = LogSumExp(row)
		if math.Abs(lse-want) > tol {
			return validatorErrorf("CheckRowLogSums", ErrMarginalMismatch, "row %d log-sum %g, want %g", i, lse, want)
		}
	}

	return nil
}

// CheckRowEntropyLog verifies, for a log-space matrix, that the generalized
// entropy of every row equals target within tol.
// Errors: ErrEntropyMismatch. Complexity: O(n²) time, O(n) memory.
func CheckRowEntropyLog(m Matrix, target, tol float64) error {
	n := m.N()
	var (
		row []float64
		err error
		h   float64
	)
	for i := 0; i < n; i++ {
		if row, err = m.Row(i, row); err != nil {
			return err
		}
		h = EntropyLog(row)
		if math.Abs(h-target) > tol {
			return validatorErrorf("CheckRowEntropyLog", ErrEntropyMismatch, "row %d entropy %g, want %g", i, h, target)
		}
	}

	return nil
}

// CheckSameTopK verifies that, per row, the k largest entries of a and b
// agree within a mixed tolerance |va − vb| ≤ tol·max(1, |va|). This is the
// dense/lazy equivalence contract: symbolic reductions may reorder
// floating-point summation, so only the dominant entries are compared.
//
// Errors: ErrDimensionMismatch (orders differ or k outside [1, n]),
// ErrTopKMismatch. Complexity: O(n² log n) time, O(n) memory.
func CheckSameTopK(a, b Matrix, k int, tol float64) error {
	if a == nil || b == nil {
		return validatorErrorf("CheckSameTopK", ErrNilInput, "nil operand")
	}
	n := a.N()
	if b.N() != n {
		return validatorErrorf("CheckSameTopK", ErrDimensionMismatch, "orders %d vs %d", n, b.N())
	}
	if k < 1 || k > n {
		return validatorErrorf("CheckSameTopK", ErrDimensionMismatch, "k=%d outside [1,%d]", k, n)
	}

	var (
		ra, rb []float64
		sa     = make([]float64, n)
		sb     = make([]float64, n)
		err    error
	)
	for i := 0; i < n; i++ {
		if ra, err = a.Row(i, ra); err != nil {
			return err
		}
		if rb, err = b.Row(i, rb); err != nil {
			return err
		}
		copy(sa, ra)
		copy(sb, rb)
		sort.Sort(sort.Reverse(sort.Float64Slice(sa)))
		sort.Sort(sort.Reverse(sort.Float64Slice(sb)))
		for j := 0; j < k; j++ {
			if diff := math.Abs(sa[j] - sb[j]); diff > tol*math.Max(1, math.Abs(sa[j])) {
				return validatorErrorf("CheckSameTopK", ErrTopKMismatch, "row %d rank %d: %g vs %g", i, j, sa[j], sb[j])
			}
		}
	}

	return nil
}
