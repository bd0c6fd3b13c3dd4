// Package affinity: Entropic — perplexity-calibrated affinities.
//
// For every row i a temperature ε_i is found by bisection so that the
// row-stochastic softmax P_i = softmax(−C_i/ε_i) (diagonal excluded) has
// generalized entropy log(perplexity) + 1, i.e. Shannon entropy
// log(perplexity). Entropy is strictly increasing in ε on non-degenerate
// rows, so bisection on a valid bracket always converges linearly.
//
// The initial bracket is derived per row from the extreme off-diagonal
// costs; a failed bracket (after bounded expansion) means the row is
// degenerate — duplicate points — and calibration is refused with
// ErrBracketFailed rather than returning a meaningless matrix.
package affinity

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/affine/pairwise"
)

// bracketGrowLimit bounds the defensive expansion of a row's entropy
// bracket before calibration gives up with ErrBracketFailed.
const bracketGrowLimit = 64

// Entropic is the perplexity-calibrated affinity. Rows sum to 1, the
// diagonal is zero, and every row's Shannon entropy equals log(perplexity).
// The matrix is generally NOT symmetric; see L2SymEntropic and SymEntropic
// for the symmetrized variants.
type Entropic struct {
	perplexity float64
	opts       Options

	cost pairwise.Matrix
	n    int
	eps  []float64 // calibrated per-row temperatures
	logZ []float64 // per-row log partition at eps
	diag Diagnostics
}

var _ Affinity = (*Entropic)(nil)

// NewEntropic returns an entropic affinity targeting the given perplexity.
// Errors: ErrBadPerplexity, ErrBadMetric, ErrBadTol, ErrBadMaxIter,
// pairwise.ErrUnknownBackend.
func NewEntropic(perplexity float64, opts Options) (*Entropic, error) {
	if err := validatePerplexity(perplexity); err != nil {
		return nil, err
	}
	if err := validateOptions(opts, true); err != nil {
		return nil, err
	}

	return &Entropic{perplexity: perplexity, opts: opts}, nil
}

// Fit builds the ground cost and bisects every row temperature.
// Running out of iterations on some rows is reported through Diagnostics;
// a row whose entropy bracket cannot contain the target is fatal
// (ErrBracketFailed).
func (e *Entropic) Fit(X mat.Matrix) error {
	cost, err := pairwise.NewCost(X, e.opts.Metric, e.opts.Backend)
	if err != nil {
		return err
	}
	if err = perplexityFitsN(e.perplexity, cost.N()); err != nil {
		return err
	}

	eps, logZ, diag, err := calibrateEntropic(cost, e.perplexity, e.opts)
	if err != nil {
		return err
	}

	e.cost, e.n = cost, cost.N()
	e.eps, e.logZ, e.diag = eps, logZ, diag

	return nil
}

// Transform renders P in linear space: P_ij = exp(−C_ij/ε_i − logZ_i) off
// the diagonal, P_ii = 0.
func (e *Entropic) Transform() (pairwise.Matrix, error) {
	if e.cost == nil {
		return nil, ErrNotFitted
	}
	eps, logZ := e.eps, e.logZ

	return render(e.cost, e.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = math.Exp(-c/eps[i] - logZ[i])
		}
		row[i] = 0
	})
}

// TransformLog renders log P; diagonal entries are −Inf.
func (e *Entropic) TransformLog() (pairwise.Matrix, error) {
	if e.cost == nil {
		return nil, ErrNotFitted
	}
	eps, logZ := e.eps, e.logZ

	return render(e.cost, e.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = -c/eps[i] - logZ[i]
		}
		row[i] = math.Inf(-1)
	})
}

// FitTransform fits X and renders the linear-space matrix.
func (e *Entropic) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}

	return e.Transform()
}

// FitTransformLog fits X and renders the log-space matrix.
func (e *Entropic) FitTransformLog(X mat.Matrix) (pairwise.Matrix, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}

	return e.TransformLog()
}

// Epsilons returns a copy of the calibrated per-row temperatures.
func (e *Entropic) Epsilons() ([]float64, error) {
	if e.eps == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(e.eps))
	copy(out, e.eps)

	return out, nil
}

// Diagnostics reports the outcome of the last Fit.
func (e *Entropic) Diagnostics() Diagnostics { return e.diag }

// EntropicBounds derives, for every row of the cost matrix C, a temperature
// interval [lo_i, hi_i] guaranteed to bracket the perplexity calibration
// root on non-degenerate rows. The bounds follow from the extreme
// off-diagonal costs of the row: a small enough temperature concentrates
// the softmax below the target entropy, a large enough one spreads it above.
//
// The upper bound rests on the softmax spread inequality over the n−1
// off-diagonal entries, H ≥ log(n−1) − cmax/ε; at ε = 2·cmax/log((n−1)/K)
// this exceeds log K strictly for every perplexity K in the validated range
// (1, n−1), the whole feasible domain: a row distribution over n−1 atoms
// cannot reach entropy log(n−1) at any finite temperature.
//
// Returns ErrBracketFailed when a row has a non-positive nearest-neighbor
// cost (duplicate points), where no temperature can push the entropy below
// the target. Complexity: O(n²) dense, O(n²·d) lazy.
func EntropicBounds(C pairwise.Matrix, perplexity float64) (lo, hi []float64, err error) {
	if C == nil {
		return nil, nil, fmt.Errorf("EntropicBounds: %w", pairwise.ErrNilInput)
	}
	if err = validatePerplexity(perplexity); err != nil {
		return nil, nil, err
	}
	n := C.N()
	if err = perplexityFitsN(perplexity, n); err != nil {
		return nil, nil, err
	}

	logK := math.Log(perplexity)
	// Denominators are positive: 1 < perplexity < n−1.
	loDen := math.Max(math.Log(2*float64(n-1)/logK), 1)
	hiDen := math.Log(float64(n-1) / perplexity)

	lo = make([]float64, n)
	hi = make([]float64, n)
	var row []float64
	for i := 0; i < n; i++ {
		if row, err = C.Row(i, row); err != nil {
			return nil, nil, err
		}
		cmin, cmax := math.Inf(1), math.Inf(-1)
		for j, c := range row {
			if j == i {
				continue
			}
			if c < cmin {
				cmin = c
			}
			if c > cmax {
				cmax = c
			}
		}
		if !(cmin > 0) {
			return nil, nil, fmt.Errorf("EntropicBounds: row %d has nearest-neighbor cost %g: %w", i, cmin, ErrBracketFailed)
		}
		lo[i] = 0.45 * cmin / loDen
		hi[i] = 2 * cmax / hiDen
	}

	return lo, hi, nil
}

// rowEntropyAt fills logits with the diagonal-excluded log-softmax of
// −costs/eps and returns the row's generalized entropy with the log
// partition value. costs and logits have length n; entry i is ignored.
func rowEntropyAt(costs, logits []float64, i int, eps float64) (h, logZ float64) {
	for j, c := range costs {
		logits[j] = -c / eps
	}
	logits[i] = math.Inf(-1)
	logZ = pairwise.LogSumExp(logits)
	for j := range logits {
		logits[j] -= logZ
	}

	return pairwise.EntropyLog(logits), logZ
}

// calibrateEntropic bisects a per-row temperature so every row's
// generalized entropy equals log(perplexity) + 1. It is shared by Entropic
// and by the symmetric solver's initialization.
//
// Per-row non-convergence within MaxIter is tolerated and counted; a
// bracket that cannot contain the root is fatal.
func calibrateEntropic(cost pairwise.Matrix, perplexity float64, opts Options) (eps, logZ []float64, diag Diagnostics, err error) {
	log := opts.logger()
	n := cost.N()
	target := math.Log(perplexity) + 1

	var lo, hi []float64
	if lo, hi, err = EntropicBounds(cost, perplexity); err != nil {
		return nil, nil, diag, err
	}

	eps = make([]float64, n)
	logZ = make([]float64, n)
	var (
		row    []float64
		logits = make([]float64, n)
	)
	for i := 0; i < n; i++ {
		if row, err = cost.Row(i, row); err != nil {
			return nil, nil, diag, err
		}

		// Defensive expansion. The derived bounds bracket the root on
		// non-degenerate rows; floating slack can still require a step or two.
		a, b := lo[i], hi[i]
		ha, _ := rowEntropyAt(row, logits, i, a)
		for grow := 0; ha > target; grow++ {
			if grow == bracketGrowLimit {
				return nil, nil, diag, fmt.Errorf("row %d: lower bound %g: %w", i, a, ErrBracketFailed)
			}
			a /= 2
			ha, _ = rowEntropyAt(row, logits, i, a)
		}
		hb, _ := rowEntropyAt(row, logits, i, b)
		for grow := 0; hb < target; grow++ {
			if grow == bracketGrowLimit {
				return nil, nil, diag, fmt.Errorf("row %d: upper bound %g: %w", i, b, ErrBracketFailed)
			}
			b *= 2
			hb, _ = rowEntropyAt(row, logits, i, b)
		}

		var (
			mid, h, z float64
			it        int
			done      bool
		)
		for it = 0; it < opts.MaxIter; it++ {
			mid = (a + b) / 2
			h, z = rowEntropyAt(row, logits, i, mid)
			if math.Abs(h-target) <= opts.Tol {
				done = true
				break
			}
			if h < target {
				a = mid
			} else {
				b = mid
			}
		}
		eps[i], logZ[i] = mid, z

		gap := math.Abs(h - target)
		if gap > diag.MaxEntropyGap {
			diag.MaxEntropyGap = gap
		}
		if it > diag.Iterations {
			diag.Iterations = it
		}
		if !done {
			diag.UnconvergedRows++
			log.Debug("entropic row bisection hit max_iter",
				zap.Int("row", i), zap.Float64("entropy_gap", gap))
		}
	}

	diag.Converged = diag.UnconvergedRows == 0
	if !diag.Converged {
		log.Warn("entropic calibration incomplete",
			zap.Int("unconverged_rows", diag.UnconvergedRows),
			zap.Float64("max_entropy_gap", diag.MaxEntropyGap),
			zap.Int("max_iter", opts.MaxIter))
	} else {
		log.Info("entropic calibration converged",
			zap.Int("rows", n),
			zap.Int("max_row_iterations", diag.Iterations),
			zap.Float64("max_entropy_gap", diag.MaxEntropyGap))
	}

	return eps, logZ, diag, nil
}
