// Package affinity: validation utilities shared by the variant constructors.
//
// Design principles (matching the sentinel-error discipline of the rest of
// the module):
//  1. Constructors validate Options combinations up front; Fit validates
//     whatever depends on the data (perplexity < n−1).
//  2. Deterministic, side-effect-free checks; only sentinel errors from
//     types.go, no panics on user input.
package affinity

import (
	"math"

	"github.com/katalvlaran/affine/pairwise"
)

// validateOptions checks the option fields every variant consumes.
// needIter additionally enforces the iterative-solver fields (Tol, MaxIter).
//
// Complexity: O(1).
func validateOptions(o Options, needIter bool) error {
	// Calibrated variants run on distance costs only.
	if o.Metric != pairwise.Euclidean && o.Metric != pairwise.Manhattan {
		return ErrBadMetric
	}
	if o.Backend != pairwise.BackendDense && o.Backend != pairwise.BackendLazy {
		return pairwise.ErrUnknownBackend
	}
	if !needIter {
		return nil
	}
	if !(o.Tol > 0) || math.IsInf(o.Tol, 0) {
		return ErrBadTol
	}
	if o.MaxIter <= 0 {
		return ErrBadMaxIter
	}

	return nil
}

// validateAxis checks a kernel normalization axis.
func validateAxis(a Axis) error {
	if a != AxisRow && a != AxisCol && a != AxisBoth {
		return ErrUnknownAxis
	}

	return nil
}

// validateOptimizer checks the dual-ascent fields of SymEntropic.
func validateOptimizer(o Options) error {
	if o.Optimizer != Adam && o.Optimizer != LBFGS {
		return ErrUnknownOptimizer
	}
	if !(o.LearnRate > 0) || math.IsInf(o.LearnRate, 0) {
		return ErrBadLearnRate
	}

	return nil
}

// validatePerplexity checks the constructor-time constraint (perplexity > 1,
// finite). The data-dependent upper bound is enforced by perplexityFitsN.
func validatePerplexity(perplexity float64) error {
	if !(perplexity > 1) || math.IsInf(perplexity, 0) || math.IsNaN(perplexity) {
		return ErrBadPerplexity
	}

	return nil
}

// perplexityFitsN checks the data-dependent bound perplexity < n−1 at fit
// time. The diagonal is excluded, so a row distribution has n−1 atoms and
// entropy log(n−1) is its unreachable supremum: any target at or beyond it
// has no finite-temperature root.
func perplexityFitsN(perplexity float64, n int) error {
	if perplexity >= float64(n-1) {
		return ErrBadPerplexity
	}

	return nil
}
