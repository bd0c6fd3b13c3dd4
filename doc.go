// Package affine computes affinity matrices — the similarity weightings
// between data points that power neighbor-embedding methods such as SNE,
// t-SNE and their entropic/optimal-transport relatives.
//
// 🚀 What is affine?
//
//	Given an n×d data matrix X, affine turns pairwise ground costs into a
//	calibrated, probability-like n×n matrix P:
//		• Kernel transforms: Gibbs (Gaussian) and Student-t, with row /
//		  column / global normalization
//		• Entropic affinities: per-row temperatures calibrated by bisection
//		  so every row hits a target perplexity
//		• Symmetric entropic affinities: entropy constraints + exact
//		  symmetry, solved by dual ascent (Adam or L-BFGS)
//		• Doubly stochastic affinities: symmetric log-domain Sinkhorn
//		  iterations at a fixed temperature
//
// ✨ Why choose affine?
//
//   - Two interchangeable backends — a dense in-memory matrix and a lazy,
//     row-streaming one that never materializes n×n — behind one interface
//   - Log-domain numerics everywhere: stabilized log-sum-exp, no raw
//     exponentiation of scaled costs
//   - Strict sentinel errors for invalid input, explicit diagnostics (never
//     a crash) for non-convergence
//   - Built on gonum for the vector/matrix plumbing
//
// Everything is organized under two subpackages:
//
//	pairwise/ — ground-cost construction, the dense/lazy Matrix backends,
//	            and exported property validators (symmetry, marginals,
//	            entropy, cross-backend top-K agreement)
//	affinity/ — the affinity variants: Gibbs, Student, ScalarProduct,
//	            Entropic, L2SymEntropic, SymEntropic, DoublyStochastic
//
// Quick sketch:
//
//	X ──▶ pairwise.NewCost ──▶ C ──▶ affinity.NewEntropic(30, opts) ──▶ P
//
// Dive into DESIGN.md for the numerical conventions (squared Euclidean
// costs, generalized entropy, bisection brackets) and each solver's contract.
//
//	go get github.com/katalvlaran/affine
package affine
