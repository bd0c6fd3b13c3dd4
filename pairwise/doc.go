// SPDX-License-Identifier: MIT
// Package pairwise builds pairwise ground-cost matrices between the rows of
// a data matrix and defines the two execution backends every affinity
// algorithm runs on.
//
// 🚀 What is pairwise?
//
//	For n points in d dimensions, pairwise produces the n×n cost matrix
//	C[i,j] = cost(x_i, x_j) in one of two functionally interchangeable
//	representations:
//	  • Dense — fully materialized, row-major, O(n²) memory
//	  • Lazy  — recomputes any row from X on demand, O(n) working memory
//
// ✨ Key features:
//   - Matrix: a read-only, square, row-streaming capability interface.
//     Algorithms written against it run unchanged on either backend.
//   - Metrics: Euclidean (squared — see convention below), Manhattan, and
//     NegativeDot (the ground cost of the scalar-product affinity).
//   - Map: a deferred per-row transform over any Matrix, used to represent
//     affinity outputs lazily (closures over calibrated duals).
//   - Validators: exported property checks (shape, nonnegativity, symmetry,
//     marginals, entropy, cross-backend top-K agreement) returning sentinel
//     errors — the verification contract shared by all affinity variants.
//
// ⚠️ Convention (applied uniformly, documented once):
//
//	Euclidean means SQUARED Euclidean distance, ‖x_i − x_j‖². Every consumer
//	of a Euclidean cost — kernel transforms, entropic calibration and its
//	bisection bounds, Sinkhorn — relies on this single convention.
//
// Input contract: X is a gonum mat.Matrix with n ≥ 2 rows and d ≥ 1 columns,
// all entries finite. Complex input is unrepresentable by construction
// (float64 end to end); non-finite entries are rejected defensively with
// ErrNonFinite.
//
// Performance:
//
//   - Dense build: O(n²·d) time, O(n²) memory (symmetry exploited).
//   - Lazy Row:    O(n·d) time per row, O(n) memory total.
//
// See example_test.go for usage and the affinity package for consumers.
package pairwise
