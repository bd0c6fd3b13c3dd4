// Package affinity: configuration shared by all variants.
//
// Options is a plain struct resolved against DefaultOptions(); constructors
// validate the fields they actually consume (see validate.go), so a field
// irrelevant to a variant can stay at its zero value without effect.
package affinity

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/affine/pairwise"
)

// Documented defaults — single source of truth for DefaultOptions.
const (
	// DefaultTol is the convergence tolerance of iterative calibrations.
	DefaultTol = 1e-5

	// DefaultMaxIter bounds every iterative calibration loop.
	DefaultMaxIter = 1000

	// DefaultLearnRate is the Adam step size of the symmetric entropic
	// dual ascent. Adam's moment-normalized steps are close to LearnRate in
	// magnitude, and the ρ = √ε coordinates sit well below 1 on calibrated
	// problems, so a unit step overshoots past any basin; 0.1 converges on
	// the reference scenarios with room to spare.
	DefaultLearnRate = 0.1
)

// Options configures an affinity variant.
//
// Fields and their consumers:
//   - Metric    — ground-cost metric: Euclidean (squared) or Manhattan.
//     All variants except ScalarProduct, whose cost is fixed to
//     NegativeDot.
//   - Backend   — dense or lazy execution (pairwise.Backend). All variants.
//   - Tol       — convergence tolerance. Entropic (entropy gap),
//     SymEntropic (max entropy gap), DoublyStochastic (marginal gap).
//   - MaxIter   — iteration budget of the same three variants. Exceeding it
//     is reported through Diagnostics, never raised.
//   - LearnRate — Adam step size (SymEntropic with Optimizer=Adam).
//   - Optimizer — Adam or LBFGS (SymEntropic).
//   - EpsSquare — reparametrize ε = ρ² so dual temperatures stay positive
//     without clamping (SymEntropic).
//   - Verbose   — per-iteration diagnostics through Logger; non-convergence
//     is warned.
//   - Logger    — zap logger; nil means: a development logger when Verbose,
//     a nop logger otherwise.
type Options struct {
	Metric    pairwise.Metric
	Backend   pairwise.Backend
	Tol       float64
	MaxIter   int
	LearnRate float64
	Optimizer Optimizer
	EpsSquare bool
	Verbose   bool
	Logger    *zap.Logger
}

// DefaultOptions returns the documented defaults: squared-Euclidean metric,
// dense backend, Tol 1e-5, MaxIter 1000, Adam with LearnRate 0.1 and the
// ε = ρ² reparametrization, quiet logging.
func DefaultOptions() Options {
	return Options{
		Metric:    pairwise.Euclidean,
		Backend:   pairwise.BackendDense,
		Tol:       DefaultTol,
		MaxIter:   DefaultMaxIter,
		LearnRate: DefaultLearnRate,
		Optimizer: Adam,
		EpsSquare: true,
		Verbose:   false,
		Logger:    nil,
	}
}

// logger resolves the effective zap logger: an explicit Logger wins; Verbose
// without one installs a development logger; otherwise logging is a no-op.
func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if o.Verbose {
		return zap.Must(zap.NewDevelopment())
	}

	return zap.NewNop()
}
