// Package affinity: the two symmetrized entropic variants.
//
// L2SymEntropic is the cheap fix: average the calibrated matrix with its
// transpose. Symmetry is exact, the entropy constraints are only
// approximately preserved.
//
// SymEntropic solves the constrained problem directly: minimize ⟨P, C⟩ over
// symmetric P with unit row sums and per-row generalized entropy at least
// log(perplexity) + 1. By strong duality the optimum has the closed form
//
//	log P_ij = (μ_i + μ_j − 2·C_ij) / (ε_i + ε_j),   i ≠ j,
//
// and the concave dual over (ε, μ) is ascended with Adam or with gonum's
// L-BFGS. Both constraints hold exactly at the optimum; short of it the
// residual gaps are reported through Diagnostics.
package affinity

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/affine/pairwise"
)

// Adam moment decay rates and the denominator guard, standard values.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamGuard = 1e-8
)

// denomGuard keeps the dual closed form finite if a temperature pair ever
// collapses to zero mid-ascent.
const denomGuard = 1e-30

// logAddExp returns log(exp(a) + exp(b)) without overflow.
func logAddExp(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(a, -1) {
		return a
	}

	return a + math.Log1p(math.Exp(b-a))
}

// ln2 rendered once; used by the L2 symmetrization in log space.
var ln2 = math.Log(2)

// L2SymEntropic is the averaged symmetrization (Pe + Peᵗ)/2 of the entropic
// affinity. Exactly symmetric with grand sum n; rows no longer sum to 1
// exactly and row entropies drift from the target — SymEntropic restores
// both at the price of a dual solve.
type L2SymEntropic struct {
	perplexity float64
	opts       Options

	cost pairwise.Matrix
	n    int
	eps  []float64
	logZ []float64
	diag Diagnostics
}

var _ Affinity = (*L2SymEntropic)(nil)

// NewL2SymEntropic returns an averaged-symmetrization entropic affinity.
// Errors: ErrBadPerplexity, ErrBadMetric, ErrBadTol, ErrBadMaxIter,
// pairwise.ErrUnknownBackend.
func NewL2SymEntropic(perplexity float64, opts Options) (*L2SymEntropic, error) {
	if err := validatePerplexity(perplexity); err != nil {
		return nil, err
	}
	if err := validateOptions(opts, true); err != nil {
		return nil, err
	}

	return &L2SymEntropic{perplexity: perplexity, opts: opts}, nil
}

// Fit runs the per-row entropic calibration; symmetrization happens at
// render time from the calibrated temperatures alone.
func (l *L2SymEntropic) Fit(X mat.Matrix) error {
	cost, err := pairwise.NewCost(X, l.opts.Metric, l.opts.Backend)
	if err != nil {
		return err
	}
	if err = perplexityFitsN(l.perplexity, cost.N()); err != nil {
		return err
	}

	eps, logZ, diag, err := calibrateEntropic(cost, l.perplexity, l.opts)
	if err != nil {
		return err
	}

	l.cost, l.n = cost, cost.N()
	l.eps, l.logZ, l.diag = eps, logZ, diag

	return nil
}

// Transform renders ½(Pe + Peᵗ) in linear space. The ground cost is
// symmetric, so entry (i, j) needs only the two row calibrations.
func (l *L2SymEntropic) Transform() (pairwise.Matrix, error) {
	if l.cost == nil {
		return nil, ErrNotFitted
	}
	eps, logZ := l.eps, l.logZ

	return render(l.cost, l.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = (math.Exp(-c/eps[i]-logZ[i]) + math.Exp(-c/eps[j]-logZ[j])) / 2
		}
		row[i] = 0
	})
}

// TransformLog renders log ½(Pe + Peᵗ); diagonal entries are −Inf.
func (l *L2SymEntropic) TransformLog() (pairwise.Matrix, error) {
	if l.cost == nil {
		return nil, ErrNotFitted
	}
	eps, logZ := l.eps, l.logZ

	return render(l.cost, l.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = logAddExp(-c/eps[i]-logZ[i], -c/eps[j]-logZ[j]) - ln2
		}
		row[i] = math.Inf(-1)
	})
}

// FitTransform fits X and renders the linear-space matrix.
func (l *L2SymEntropic) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := l.Fit(X); err != nil {
		return nil, err
	}

	return l.Transform()
}

// FitTransformLog fits X and renders the log-space matrix.
func (l *L2SymEntropic) FitTransformLog(X mat.Matrix) (pairwise.Matrix, error) {
	if err := l.Fit(X); err != nil {
		return nil, err
	}

	return l.TransformLog()
}

// Diagnostics reports the underlying entropic calibration outcome.
func (l *L2SymEntropic) Diagnostics() Diagnostics { return l.diag }

// SymEntropic is the exactly-symmetric entropy-constrained affinity.
// At convergence every row sums to 1 AND has Shannon entropy
// log(perplexity), with P = Pᵗ by construction.
type SymEntropic struct {
	perplexity float64
	opts       Options

	cost pairwise.Matrix
	n    int
	eps  []float64 // dual temperatures, one per row
	mu   []float64 // dual potentials, one per row
	diag Diagnostics
}

var _ Affinity = (*SymEntropic)(nil)

// NewSymEntropic returns a symmetric entropic affinity.
// Errors: ErrBadPerplexity, ErrBadMetric, ErrBadTol, ErrBadMaxIter,
// ErrUnknownOptimizer, ErrBadLearnRate, pairwise.ErrUnknownBackend.
func NewSymEntropic(perplexity float64, opts Options) (*SymEntropic, error) {
	if err := validatePerplexity(perplexity); err != nil {
		return nil, err
	}
	if err := validateOptions(opts, true); err != nil {
		return nil, err
	}
	if err := validateOptimizer(opts); err != nil {
		return nil, err
	}

	return &SymEntropic{perplexity: perplexity, opts: opts}, nil
}

// symProblem evaluates the dual objective and its ascent gradients. Buffers
// are reused across iterations; evaluation streams the cost one row at a
// time, so the lazy backend never materializes n² state.
type symProblem struct {
	cost   pairwise.Matrix
	n      int
	target float64 // log(perplexity) + 1

	row    []float64
	logits []float64

	// Filled by evaluate.
	gradEps []float64 // ∂g/∂ε_i = target − H̃_i
	gradMu  []float64 // ∂g/∂μ_i = 1 − S_i
	dual    float64
	entGap  float64 // max_i |H̃_i − target|
	margGap float64 // max_i |S_i − 1|
}

func newSymProblem(cost pairwise.Matrix, target float64) *symProblem {
	n := cost.N()

	return &symProblem{
		cost:    cost,
		n:       n,
		target:  target,
		logits:  make([]float64, n),
		gradEps: make([]float64, n),
		gradMu:  make([]float64, n),
	}
}

// evaluate computes, at the current duals, the transport cost ⟨P, C⟩, the
// per-row entropy and mass residuals, and the dual value
// g = ⟨P, C⟩ + Σ ε_i(target − H̃_i) + Σ μ_i(1 − S_i).
// Complexity: O(n²) dense, O(n²·d) lazy.
func (p *symProblem) evaluate(eps, mu []float64) error {
	var transport float64
	p.entGap, p.margGap = 0, 0

	var err error
	for i := 0; i < p.n; i++ {
		if p.row, err = p.cost.Row(i, p.row); err != nil {
			return err
		}
		for j, c := range p.row {
			p.logits[j] = (mu[i] + mu[j] - 2*c) / math.Max(eps[i]+eps[j], denomGuard)
		}
		p.logits[i] = math.Inf(-1)

		mass := math.Exp(pairwise.LogSumExp(p.logits))
		entropy := pairwise.EntropyLog(p.logits)
		for j, c := range p.row {
			if j == i {
				continue
			}
			transport += math.Exp(p.logits[j]) * c
		}

		p.gradEps[i] = p.target - entropy
		p.gradMu[i] = 1 - mass
		if gap := math.Abs(entropy - p.target); gap > p.entGap {
			p.entGap = gap
		}
		if gap := math.Abs(mass - 1); gap > p.margGap {
			p.margGap = gap
		}
	}

	p.dual = transport
	for i := 0; i < p.n; i++ {
		p.dual += eps[i]*p.gradEps[i] + mu[i]*p.gradMu[i]
	}

	return nil
}

// Fit calibrates the dual variables. The per-row entropic solution warm
// starts ε; μ starts at zero. Running out of iterations is reported through
// Diagnostics, never raised.
func (s *SymEntropic) Fit(X mat.Matrix) error {
	cost, err := pairwise.NewCost(X, s.opts.Metric, s.opts.Backend)
	if err != nil {
		return err
	}
	if err = perplexityFitsN(s.perplexity, cost.N()); err != nil {
		return err
	}

	eps0, _, _, err := calibrateEntropic(cost, s.perplexity, s.opts)
	if err != nil {
		return err
	}

	n := cost.N()
	prob := newSymProblem(cost, math.Log(s.perplexity)+1)
	mu := make([]float64, n)

	var (
		eps  []float64
		diag Diagnostics
	)
	switch s.opts.Optimizer {
	case LBFGS:
		eps, mu, diag, err = ascendLBFGS(prob, eps0, mu, s.opts)
	default:
		eps, mu, diag, err = ascendAdam(prob, eps0, mu, s.opts)
	}
	if err != nil {
		return err
	}

	s.cost, s.n = cost, n
	s.eps, s.mu, s.diag = eps, mu, diag

	return nil
}

// ascendAdam runs first-order dual ascent with Adam moment estimates. Under
// EpsSquare the temperature is parametrized ε = ρ² and the chain rule
// supplies the factor 2ρ; otherwise ε is updated directly and floored at
// zero after each step.
func ascendAdam(prob *symProblem, eps0, mu0 []float64, opts Options) (eps, mu []float64, diag Diagnostics, err error) {
	log := opts.logger()
	n := prob.n

	// theta holds ρ (or ε) in [0, n) and μ in [n, 2n).
	theta := make([]float64, 2*n)
	for i, e := range eps0 {
		if opts.EpsSquare {
			theta[i] = math.Sqrt(e)
		} else {
			theta[i] = e
		}
	}
	copy(theta[n:], mu0)

	eps = make([]float64, n)
	grad := make([]float64, 2*n)
	m := make([]float64, 2*n)
	v := make([]float64, 2*n)

	unpack := func() {
		for i := 0; i < n; i++ {
			if opts.EpsSquare {
				eps[i] = theta[i] * theta[i]
			} else {
				eps[i] = theta[i]
			}
		}
	}

	var it int
	for it = 0; it < opts.MaxIter; it++ {
		unpack()
		if err = prob.evaluate(eps, theta[n:]); err != nil {
			return nil, nil, diag, err
		}
		if prob.entGap <= opts.Tol && prob.margGap <= opts.Tol {
			diag.Converged = true
			break
		}

		for i := 0; i < n; i++ {
			if opts.EpsSquare {
				grad[i] = 2 * theta[i] * prob.gradEps[i]
			} else {
				grad[i] = prob.gradEps[i]
			}
			grad[n+i] = prob.gradMu[i]
		}

		// Adam, ascending.
		t := float64(it + 1)
		for k := range theta {
			m[k] = adamBeta1*m[k] + (1-adamBeta1)*grad[k]
			v[k] = adamBeta2*v[k] + (1-adamBeta2)*grad[k]*grad[k]
			mHat := m[k] / (1 - math.Pow(adamBeta1, t))
			vHat := v[k] / (1 - math.Pow(adamBeta2, t))
			theta[k] += opts.LearnRate * mHat / (math.Sqrt(vHat) + adamGuard)
		}
		if !opts.EpsSquare {
			for i := 0; i < n; i++ {
				if theta[i] < 0 {
					theta[i] = 0
				}
			}
		}

		log.Debug("symmetric entropic ascent",
			zap.Int("iteration", it),
			zap.Float64("dual", prob.dual),
			zap.Float64("max_entropy_gap", prob.entGap),
			zap.Float64("max_margin_gap", prob.margGap))
	}

	// Residuals at the returned point, whichever way the loop ended.
	unpack()
	if err = prob.evaluate(eps, theta[n:]); err != nil {
		return nil, nil, diag, err
	}
	diag.Iterations = it
	diag.MaxEntropyGap = prob.entGap
	diag.MaxMarginGap = prob.margGap
	if !diag.Converged {
		log.Warn("symmetric entropic ascent hit max_iter",
			zap.Int("max_iter", opts.MaxIter),
			zap.Float64("max_entropy_gap", diag.MaxEntropyGap),
			zap.Float64("max_margin_gap", diag.MaxMarginGap))
	}

	mu = make([]float64, n)
	copy(mu, theta[n:])

	return eps, mu, diag, nil
}

// ascendLBFGS minimizes the negated dual with gonum's L-BFGS. The
// temperature is always parametrized ε = ρ² here so the line search can
// roam freely without sign constraints.
func ascendLBFGS(prob *symProblem, eps0, mu0 []float64, opts Options) (eps, mu []float64, diag Diagnostics, err error) {
	log := opts.logger()
	n := prob.n

	x0 := make([]float64, 2*n)
	for i, e := range eps0 {
		x0[i] = math.Sqrt(e)
	}
	copy(x0[n:], mu0)

	eps = make([]float64, n)
	var evalErr error
	evalAt := func(x []float64) {
		for i := 0; i < n; i++ {
			eps[i] = x[i] * x[i]
		}
		if err := prob.evaluate(eps, x[n:]); err != nil && evalErr == nil {
			evalErr = err
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evalAt(x)

			return -prob.dual
		},
		Grad: func(grad, x []float64) {
			evalAt(x)
			for i := 0; i < n; i++ {
				grad[i] = -2 * x[i] * prob.gradEps[i]
				grad[n+i] = -prob.gradMu[i]
			}
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIter,
		GradientThreshold: opts.Tol,
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if evalErr != nil {
		return nil, nil, diag, evalErr
	}
	if err != nil && result == nil {
		return nil, nil, diag, err
	}

	// Honest residuals at the solution, independent of the stopping status.
	evalAt(result.X)
	if evalErr != nil {
		return nil, nil, diag, evalErr
	}
	diag.Converged = result.Status == optimize.GradientThreshold ||
		(prob.entGap <= opts.Tol && prob.margGap <= opts.Tol)
	diag.Iterations = result.Stats.MajorIterations
	diag.MaxEntropyGap = prob.entGap
	diag.MaxMarginGap = prob.margGap
	if !diag.Converged {
		log.Warn("symmetric entropic L-BFGS stopped early",
			zap.Stringer("status", result.Status),
			zap.Int("iterations", diag.Iterations),
			zap.Float64("max_entropy_gap", diag.MaxEntropyGap),
			zap.Float64("max_margin_gap", diag.MaxMarginGap))
	}

	mu = make([]float64, n)
	copy(mu, result.X[n:])

	return eps, mu, diag, nil
}

// Transform renders P in linear space from the dual closed form.
func (s *SymEntropic) Transform() (pairwise.Matrix, error) {
	if s.cost == nil {
		return nil, ErrNotFitted
	}
	eps, mu := s.eps, s.mu

	return render(s.cost, s.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = math.Exp((mu[i] + mu[j] - 2*c) / math.Max(eps[i]+eps[j], denomGuard))
		}
		row[i] = 0
	})
}

// TransformLog renders log P; diagonal entries are −Inf.
func (s *SymEntropic) TransformLog() (pairwise.Matrix, error) {
	if s.cost == nil {
		return nil, ErrNotFitted
	}
	eps, mu := s.eps, s.mu

	return render(s.cost, s.opts.Backend, func(i int, row []float64) {
		for j, c := range row {
			row[j] = (mu[i] + mu[j] - 2*c) / math.Max(eps[i]+eps[j], denomGuard)
		}
		row[i] = math.Inf(-1)
	})
}

// FitTransform fits X and renders the linear-space matrix.
func (s *SymEntropic) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}

	return s.Transform()
}

// FitTransformLog fits X and renders the log-space matrix.
func (s *SymEntropic) FitTransformLog(X mat.Matrix) (pairwise.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}

	return s.TransformLog()
}

// Duals returns copies of the calibrated dual variables (ε, μ).
func (s *SymEntropic) Duals() (eps, mu []float64, err error) {
	if s.eps == nil {
		return nil, nil, ErrNotFitted
	}
	eps = make([]float64, len(s.eps))
	mu = make([]float64, len(s.mu))
	copy(eps, s.eps)
	copy(mu, s.mu)

	return eps, mu, nil
}

// Diagnostics reports the outcome of the last Fit.
func (s *SymEntropic) Diagnostics() Diagnostics { return s.diag }
