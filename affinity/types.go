// Package affinity: shared types and the sentinel error set.
package affinity

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/affine/pairwise"
)

// Axis selects the normalization axis of a kernel transform.
//
//   - AxisRow  — every row of P sums to 1.
//   - AxisCol  — every column of P sums to 1.
//   - AxisBoth — the grand sum of P equals 1.
type Axis int

const (
	// AxisRow normalizes each row to unit mass.
	AxisRow Axis = iota

	// AxisCol normalizes each column to unit mass.
	AxisCol

	// AxisBoth normalizes the whole matrix to unit mass.
	AxisBoth
)

// String implements fmt.Stringer for diagnostics.
func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "row"
	case AxisCol:
		return "col"
	case AxisBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Optimizer selects the dual-ascent backend of the symmetric entropic
// solver. Both optimize the same objective; the choice affects convergence
// speed, not the solution's invariants.
type Optimizer int

const (
	// Adam is a first-order adaptive (momentum + per-coordinate learning
	// rate) ascent on the dual variables.
	Adam Optimizer = iota

	// LBFGS is a quasi-Newton line-search method (gonum/optimize).
	LBFGS
)

// String implements fmt.Stringer for diagnostics.
func (o Optimizer) String() string {
	switch o {
	case Adam:
		return "adam"
	case LBFGS:
		return "lbfgs"
	default:
		return "unknown"
	}
}

// Affinity is the operation surface every variant exposes.
//
// Fit computes and owns the derived state (ground cost, calibrated duals);
// the Transform methods are stateless given that state. Refitting recomputes
// everything — there is no hidden caching across inputs.
type Affinity interface {
	// Fit validates X, builds the ground cost and calibrates the variant.
	Fit(X mat.Matrix) error

	// FitTransform fits X and returns the linear-space affinity matrix.
	FitTransform(X mat.Matrix) (pairwise.Matrix, error)
}

// Diagnostics reports the outcome of an iterative calibration. Exceeding
// MaxIter is recoverable by design: the approximate result is returned and
// Converged is false — callers decide whether to retry with a relaxed
// tolerance.
type Diagnostics struct {
	// Converged is true when the stopping criterion was met before MaxIter.
	Converged bool

	// Iterations is the number of iterations actually performed.
	Iterations int

	// MaxEntropyGap is the largest |row entropy − target| at termination
	// (entropy-calibrated variants only).
	MaxEntropyGap float64

	// MaxMarginGap is the largest |row mass − 1| at termination
	// (symmetric entropic and doubly stochastic variants).
	MaxMarginGap float64

	// UnconvergedRows counts rows whose bisection did not reach Tol
	// (entropic calibration only).
	UnconvergedRows int
}

// Sentinel errors. Messages are prefixed "affinity: ..." for grep-ability;
// match with errors.Is.
var (
	// ErrNotFitted is returned by Transform before a successful Fit.
	ErrNotFitted = errors.New("affinity: transform called before fit")

	// ErrBadPerplexity indicates a perplexity outside (1, n−1). The upper
	// limit is the entropy supremum of a diagonal-excluded row distribution.
	ErrBadPerplexity = errors.New("affinity: perplexity must satisfy 1 < perplexity < n-1")

	// ErrBadTemperature indicates a non-positive or non-finite eps.
	ErrBadTemperature = errors.New("affinity: eps must be positive and finite")

	// ErrBadTol indicates a non-positive or non-finite tolerance.
	ErrBadTol = errors.New("affinity: tol must be positive and finite")

	// ErrBadMaxIter indicates a non-positive iteration budget.
	ErrBadMaxIter = errors.New("affinity: max_iter must be positive")

	// ErrBadLearnRate indicates a non-positive or non-finite learning rate.
	ErrBadLearnRate = errors.New("affinity: learning rate must be positive and finite")

	// ErrBadMetric indicates a metric not supported by the variant
	// (calibrated variants accept Euclidean and Manhattan only).
	ErrBadMetric = errors.New("affinity: metric not supported by this variant")

	// ErrUnknownAxis indicates an unrecognized Axis value.
	ErrUnknownAxis = errors.New("affinity: unknown normalization axis")

	// ErrUnknownOptimizer indicates an unrecognized Optimizer value.
	ErrUnknownOptimizer = errors.New("affinity: unknown optimizer")

	// ErrBracketFailed indicates that a row's entropy bracket cannot contain
	// the calibration root — typically duplicate or degenerate points. The
	// result would be meaningless, so this is fatal (unlike plain
	// non-convergence, which is reported through Diagnostics).
	ErrBracketFailed = errors.New("affinity: entropy bracket does not contain the root (duplicate or degenerate rows)")
)
