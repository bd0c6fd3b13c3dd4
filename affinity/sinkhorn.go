// Package affinity: DoublyStochastic — symmetric log-domain Sinkhorn.
//
// At a fixed temperature ε the Gibbs kernel exp(−C/ε) is projected onto the
// set of symmetric matrices with unit row (and, by symmetry, column) sums:
//
//	log P_ij = (f_i + f_j − C_ij) / ε,
//
// where the single potential vector f is iterated with the averaged update
// f_i ← ½ (f_i − ε·LSE_j((f_j − C_ij)/ε)). The cost is symmetric, so one
// potential serves both sides and every iterate stays symmetric. All
// arithmetic is in the log domain; the kernel is never exponentiated raw.
package affinity

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/affine/pairwise"
)

// DoublyStochastic is the fixed-temperature Sinkhorn affinity. At
// convergence P is symmetric with every row and column summing to 1.
type DoublyStochastic struct {
	eps  float64
	opts Options

	cost pairwise.Matrix
	n    int
	f    []float64 // Sinkhorn potential, one per row
	diag Diagnostics
}

var _ Affinity = (*DoublyStochastic)(nil)

// NewDoublyStochastic returns a Sinkhorn affinity at temperature eps.
// Errors: ErrBadTemperature, ErrBadMetric, ErrBadTol, ErrBadMaxIter,
// pairwise.ErrUnknownBackend.
func NewDoublyStochastic(eps float64, opts Options) (*DoublyStochastic, error) {
	if !(eps > 0) || math.IsInf(eps, 0) {
		return nil, ErrBadTemperature
	}
	if err := validateOptions(opts, true); err != nil {
		return nil, err
	}

	return &DoublyStochastic{eps: eps, opts: opts}, nil
}

// sinkhornSweep computes, for the current potential f, the largest row-mass
// residual max_i |Σ_j P_ij − 1| and fills next with the averaged update.
// One streamed pass over the cost: O(n²) dense, O(n²·d) lazy.
func sinkhornSweep(cost pairwise.Matrix, eps float64, f, next, row, logits []float64) (gap float64, err error) {
	n := cost.N()
	for i := 0; i < n; i++ {
		if row, err = cost.Row(i, row); err != nil {
			return 0, err
		}
		for j, c := range row {
			logits[j] = (f[j] - c) / eps
		}
		lse := pairwise.LogSumExp(logits)

		if g := math.Abs(math.Exp(f[i]/eps+lse) - 1); g > gap {
			gap = g
		}
		next[i] = (f[i] - eps*lse) / 2
	}

	return gap, nil
}

// Fit builds the ground cost and iterates the potential until the marginal
// residual drops below Tol. Exhausting MaxIter is reported through
// Diagnostics, never raised.
func (d *DoublyStochastic) Fit(X mat.Matrix) error {
	cost, err := pairwise.NewCost(X, d.opts.Metric, d.opts.Backend)
	if err != nil {
		return err
	}
	log := d.opts.logger()

	n := cost.N()
	f := make([]float64, n)
	next := make([]float64, n)
	row := make([]float64, n)
	logits := make([]float64, n)

	var diag Diagnostics
	var gap float64
	for it := 0; it < d.opts.MaxIter; it++ {
		if gap, err = sinkhornSweep(cost, d.eps, f, next, row, logits); err != nil {
			return err
		}
		diag.Iterations = it + 1
		if gap <= d.opts.Tol {
			diag.Converged = true
			break
		}
		f, next = next, f

		log.Debug("sinkhorn sweep",
			zap.Int("iteration", it),
			zap.Float64("max_margin_gap", gap))
	}
	if !diag.Converged {
		// The last sweep updated f; measure the residual actually returned.
		if gap, err = sinkhornSweep(cost, d.eps, f, next, row, logits); err != nil {
			return err
		}
		log.Warn("sinkhorn hit max_iter",
			zap.Int("max_iter", d.opts.MaxIter),
			zap.Float64("max_margin_gap", gap))
	}
	diag.MaxMarginGap = gap

	d.cost, d.n = cost, n
	d.f, d.diag = f, diag

	return nil
}

// Transform renders P in linear space.
func (d *DoublyStochastic) Transform() (pairwise.Matrix, error) {
	if d.cost == nil {
		return nil, ErrNotFitted
	}
	f, eps := d.f, d.eps

	return render(d.cost, d.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = math.Exp((f[i] + f[j] - c) / eps)
		}
	})
}

// TransformLog renders log P.
func (d *DoublyStochastic) TransformLog() (pairwise.Matrix, error) {
	if d.cost == nil {
		return nil, ErrNotFitted
	}
	f, eps := d.f, d.eps

	return render(d.cost, d.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = (f[i] + f[j] - c) / eps
		}
	})
}

// FitTransform fits X and renders the linear-space matrix.
func (d *DoublyStochastic) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := d.Fit(X); err != nil {
		return nil, err
	}

	return d.Transform()
}

// FitTransformLog fits X and renders the log-space matrix.
func (d *DoublyStochastic) FitTransformLog(X mat.Matrix) (pairwise.Matrix, error) {
	if err := d.Fit(X); err != nil {
		return nil, err
	}

	return d.TransformLog()
}

// Potentials returns a copy of the converged Sinkhorn potential vector.
func (d *DoublyStochastic) Potentials() ([]float64, error) {
	if d.f == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(d.f))
	copy(out, d.f)

	return out, nil
}

// Diagnostics reports the outcome of the last Fit.
func (d *DoublyStochastic) Diagnostics() Diagnostics { return d.diag }
