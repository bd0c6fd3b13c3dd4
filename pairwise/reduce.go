// SPDX-License-Identifier: MIT
// Package pairwise: log-domain row reductions shared by the calibration
// solvers and the validators.
//
// Entropy here is the generalized entropy H(p) = −Σ_j p_j (log p_j − 1).
// For a normalized row this equals Shannon entropy + 1, so the perplexity
// target is exactly log(perplexity) + 1. The generalized form stays
// well-defined on the unnormalized rows that appear mid-optimization in the
// symmetric entropic solver.
//
// All reductions are max-subtracted via gonum's floats.LogSumExp — scaled
// costs are never exponentiated raw. This is a hard invariant of the engine,
// not a performance nicety.
package pairwise

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EntropyLog returns the generalized entropy of a log-space row:
// −Σ_j exp(l_j)·(l_j − 1). Entries of −Inf contribute zero (lim p→0 of
// p·log p). Complexity: O(n).
func EntropyLog(logRow []float64) float64 {
	var h float64
	for _, l := range logRow {
		if math.IsInf(l, -1) {
			continue
		}
		h -= math.Exp(l) * (l - 1)
	}

	return h
}

// Entropy returns the generalized entropy of a linear-space row:
// −Σ_j p_j·(log p_j − 1), with zero entries contributing zero.
// Complexity: O(n).
func Entropy(row []float64) float64 {
	var h float64
	for _, p := range row {
		if p <= 0 {
			continue
		}
		h -= p * (math.Log(p) - 1)
	}

	return h
}

// LogSumExp is the stabilized log Σ exp over a row.
// Thin alias over gonum so every call site in the engine shares one
// implementation. Complexity: O(n).
func LogSumExp(row []float64) float64 {
	return floats.LogSumExp(row)
}
