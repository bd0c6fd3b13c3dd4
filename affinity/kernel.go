// Package affinity: fixed kernel transforms — Gibbs, Student, ScalarProduct.
//
// A kernel transform is a pure function of the ground cost: apply an
// elementwise nonlinearity, then normalize along the configured axis. There
// is no calibration state beyond the marginal sums, so Fit is cheap and
// Transform never fails numerically.
//
// Normalization marginals are accumulated in one streaming pass, O(n)
// memory. The ground cost is symmetric, hence so is the kernel matrix, and
// its column sums coincide with its row sums — one vector serves both axes.
package affinity

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/affine/pairwise"
)

// render applies a per-row transform to the cost matrix in the requested
// backend: a deferred Map for lazy execution, a materialized Dense
// otherwise. This is the single rendering path of every variant.
func render(cost pairwise.Matrix, backend pairwise.Backend, apply pairwise.RowFunc) (pairwise.Matrix, error) {
	mp, err := pairwise.NewMap(cost, apply)
	if err != nil {
		return nil, err
	}
	if backend == pairwise.BackendLazy {
		return mp, nil
	}

	return pairwise.Materialize(mp)
}

// kernelAffinity carries the state shared by Gibbs and Student: the kernel
// pair (linear and log forms), the normalization axis, and the marginals
// computed at fit time.
type kernelAffinity struct {
	axis Axis
	opts Options

	kern    func(c float64) float64 // elementwise kernel, linear space
	logKern func(c float64) float64 // elementwise kernel, log space

	cost    pairwise.Matrix
	n       int
	rowSums []float64 // kernel row marginals; equal to column marginals by symmetry
	total   float64
}

// Fit builds the ground cost and accumulates the kernel marginals.
func (k *kernelAffinity) Fit(X mat.Matrix) error {
	cost, err := pairwise.NewCost(X, k.opts.Metric, k.opts.Backend)
	if err != nil {
		return err
	}

	n := cost.N()
	sums := make([]float64, n)
	var (
		row   []float64
		s     float64
		total float64
	)
	for i := 0; i < n; i++ {
		if row, err = cost.Row(i, row); err != nil {
			return err
		}
		s = 0
		for _, c := range row {
			s += k.kern(c)
		}
		sums[i] = s
		total += s
	}

	k.cost, k.n, k.rowSums, k.total = cost, n, sums, total

	return nil
}

// Transform renders the normalized kernel matrix in linear space.
func (k *kernelAffinity) Transform() (pairwise.Matrix, error) {
	if k.cost == nil {
		return nil, ErrNotFitted
	}

	// Copy calibration state into the closure: the rendered matrix must not
	// observe a later Fit.
	var (
		axis  = k.axis
		kern  = k.kern
		sums  = k.rowSums
		total = k.total
	)

	return render(k.cost, k.opts.Backend, func(i int, row []float64) {
		switch axis {
		case AxisRow:
			for j, c := range row {
				row[j] = kern(c) / sums[i]
			}
		case AxisCol:
			for j, c := range row {
				row[j] = kern(c) / sums[j]
			}
		default: // AxisBoth
			for j, c := range row {
				row[j] = kern(c) / total
			}
		}
	})
}

// TransformLog renders the normalized kernel matrix in log space, avoiding
// underflow when entries are extremely small.
func (k *kernelAffinity) TransformLog() (pairwise.Matrix, error) {
	if k.cost == nil {
		return nil, ErrNotFitted
	}

	var (
		axis     = k.axis
		logKern  = k.logKern
		sums     = k.rowSums
		logTotal = math.Log(k.total)
	)

	return render(k.cost, k.opts.Backend, func(i int, row []float64) {
		switch axis {
		case AxisRow:
			logSum := math.Log(sums[i])
			for j, c := range row {
				row[j] = logKern(c) - logSum
			}
		case AxisCol:
			for j, c := range row {
				row[j] = logKern(c) - math.Log(sums[j])
			}
		default: // AxisBoth
			for j, c := range row {
				row[j] = logKern(c) - logTotal
			}
		}
	})
}

// FitTransform fits X and renders the linear-space matrix.
func (k *kernelAffinity) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := k.Fit(X); err != nil {
		return nil, err
	}

	return k.Transform()
}

// FitTransformLog fits X and renders the log-space matrix.
func (k *kernelAffinity) FitTransformLog(X mat.Matrix) (pairwise.Matrix, error) {
	if err := k.Fit(X); err != nil {
		return nil, err
	}

	return k.TransformLog()
}

// Gibbs is the Gaussian kernel affinity P ∝ exp(−C), normalized along the
// configured axis. Entries are strictly positive.
type Gibbs struct{ kernelAffinity }

var _ Affinity = (*Gibbs)(nil)

// NewGibbs returns a Gibbs kernel transform normalizing along axis.
// Errors: ErrUnknownAxis, ErrBadMetric, pairwise.ErrUnknownBackend.
func NewGibbs(axis Axis, opts Options) (*Gibbs, error) {
	if err := validateAxis(axis); err != nil {
		return nil, err
	}
	if err := validateOptions(opts, false); err != nil {
		return nil, err
	}

	return &Gibbs{kernelAffinity{
		axis:    axis,
		opts:    opts,
		kern:    func(c float64) float64 { return math.Exp(-c) },
		logKern: func(c float64) float64 { return -c },
	}}, nil
}

// Student is the Student-t kernel affinity P ∝ (1 + C)⁻¹, normalized along
// the configured axis. Heavier tails than Gibbs; entries strictly positive.
type Student struct{ kernelAffinity }

var _ Affinity = (*Student)(nil)

// NewStudent returns a Student-t kernel transform normalizing along axis.
// Errors: ErrUnknownAxis, ErrBadMetric, pairwise.ErrUnknownBackend.
func NewStudent(axis Axis, opts Options) (*Student, error) {
	if err := validateAxis(axis); err != nil {
		return nil, err
	}
	if err := validateOptions(opts, false); err != nil {
		return nil, err
	}

	return &Student{kernelAffinity{
		axis:    axis,
		opts:    opts,
		kern:    func(c float64) float64 { return 1 / (1 + c) },
		logKern: func(c float64) float64 { return -math.Log1p(c) },
	}}, nil
}

// ScalarProduct is the unnormalized inner-product affinity P = X·Xᵗ.
// It is symmetric by construction and, unlike the kernel transforms,
// sign-indefinite — there is no log-space rendering. Options.Metric is
// ignored: the ground cost is fixed to pairwise.NegativeDot.
type ScalarProduct struct {
	opts Options
	cost pairwise.Matrix
	n    int
}

var _ Affinity = (*ScalarProduct)(nil)

// NewScalarProduct returns a scalar-product affinity.
// Errors: pairwise.ErrUnknownBackend.
func NewScalarProduct(opts Options) (*ScalarProduct, error) {
	if opts.Backend != pairwise.BackendDense && opts.Backend != pairwise.BackendLazy {
		return nil, pairwise.ErrUnknownBackend
	}

	return &ScalarProduct{opts: opts}, nil
}

// Fit builds the Gram ground cost C = −X·Xᵗ.
func (s *ScalarProduct) Fit(X mat.Matrix) error {
	cost, err := pairwise.Gram(X, s.opts.Backend)
	if err != nil {
		return err
	}
	s.cost, s.n = cost, cost.N()

	return nil
}

// Transform renders P = −C = X·Xᵗ.
func (s *ScalarProduct) Transform() (pairwise.Matrix, error) {
	if s.cost == nil {
		return nil, ErrNotFitted
	}

	return render(s.cost, s.opts.Backend, func(_ int, row []float64) {
		for j, c := range row {
			row[j] = -c
		}
	})
}

// FitTransform fits X and renders the Gram matrix.
func (s *ScalarProduct) FitTransform(X mat.Matrix) (pairwise.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}

	return s.Transform()
}
