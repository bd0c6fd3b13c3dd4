// Package affinity turns pairwise ground costs into calibrated,
// probability-like affinity matrices — the statistical backbone of
// SNE/t-SNE-style neighbor embeddings.
//
// 🚀 What is affinity?
//
//	Each variant follows the same two-phase lifecycle:
//	  Fit(X)        — validate X, build the ground cost, calibrate duals
//	  Transform()   — render P (or log P via TransformLog) from that state
//	  FitTransform  — both in one call
//
// Variants:
//   - Gibbs          — P ∝ exp(−C), normalized along a chosen axis
//   - Student        — P ∝ (1 + C)⁻¹, normalized along a chosen axis
//   - ScalarProduct  — P = X·Xᵗ (unnormalized, sign-indefinite)
//   - Entropic       — per-row temperatures ε_i found by bisection so every
//     row's generalized entropy hits log(perplexity) + 1
//   - L2SymEntropic  — the plain symmetrization (Pe + Peᵗ)/2
//   - SymEntropic    — entropy constraints AND exact symmetry, solved by
//     dual ascent (Adam or gonum's L-BFGS) on per-row duals (ε_i, μ_i)
//   - DoublyStochastic — symmetric log-domain Sinkhorn at fixed temperature
//
// ✨ Key guarantees:
//   - Backend-agnostic: every solver streams rows through pairwise.Matrix,
//     so dense and lazy execution share one code path and agree within
//     floating tolerance (verified by the pairwise validators).
//   - Log-domain numerics: softmax, entropy and partition functions go
//     through stabilized log-sum-exp; scaled costs are never exponentiated
//     raw.
//   - Error taxonomy: invalid input and infeasible entropy brackets are
//     errors (ErrBracketFailed is distinguishable); running out of
//     iterations is NOT — the approximate result is returned and
//     Diagnostics() reports Converged=false.
//
// ⚙️ Usage:
//
//	opts := affinity.DefaultOptions()
//	opts.Metric = pairwise.Euclidean // squared Euclidean, see pairwise doc
//	ea, err := affinity.NewEntropic(30, opts)
//	if err != nil { ... }
//	logP, err := ea.FitTransformLog(X) // X is a gonum mat.Matrix
//	diag := ea.Diagnostics()
//
// Verbose mode logs per-iteration diagnostics (iteration, max entropy gap,
// max marginal gap) through zap; non-convergence warns instead of failing.
//
// See example_test.go for runnable examples and DESIGN.md for the numerical
// conventions and bracket derivations.
package affinity
