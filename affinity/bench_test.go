package affinity_test

import (
	"testing"

	"github.com/katalvlaran/affine/affinity"
	"github.com/katalvlaran/affine/pairwise"
)

// benchmarkFitTransform runs one full Fit+Transform per iteration, with the
// dataset generated outside the timer.
func benchmarkFitTransform(b *testing.B, n int, build func() (affinity.Affinity, error)) {
	X := twoMoons(n, 42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, err := build()
		if err != nil {
			b.Fatalf("constructor failed: %v", err)
		}
		if _, err := a.FitTransform(X); err != nil {
			b.Fatalf("fit-transform failed: %v", err)
		}
	}
}

// BenchmarkGibbs_Dense measures the kernel transform on the materialized
// backend, n=300.
func BenchmarkGibbs_Dense(b *testing.B) {
	benchmarkFitTransform(b, 300, func() (affinity.Affinity, error) {
		return affinity.NewGibbs(affinity.AxisRow, affinity.DefaultOptions())
	})
}

// BenchmarkGibbs_Lazy measures the same transform without n² storage.
func BenchmarkGibbs_Lazy(b *testing.B) {
	opts := affinity.DefaultOptions()
	opts.Backend = pairwise.BackendLazy
	benchmarkFitTransform(b, 300, func() (affinity.Affinity, error) {
		return affinity.NewGibbs(affinity.AxisRow, opts)
	})
}

// BenchmarkEntropic_Fit measures the full per-row bisection, n=300.
func BenchmarkEntropic_Fit(b *testing.B) {
	benchmarkFitTransform(b, 300, func() (affinity.Affinity, error) {
		return affinity.NewEntropic(30, affinity.DefaultOptions())
	})
}

// BenchmarkDoublyStochastic_Fit measures the Sinkhorn projection, n=300.
func BenchmarkDoublyStochastic_Fit(b *testing.B) {
	benchmarkFitTransform(b, 300, func() (affinity.Affinity, error) {
		return affinity.NewDoublyStochastic(1.0, affinity.DefaultOptions())
	})
}

// BenchmarkSymEntropic_Adam measures the dual ascent on a smaller problem;
// each iteration is a full O(n²) sweep.
func BenchmarkSymEntropic_Adam(b *testing.B) {
	opts := affinity.DefaultOptions()
	opts.Tol = 1e-3
	opts.MaxIter = 2000
	benchmarkFitTransform(b, 100, func() (affinity.Affinity, error) {
		return affinity.NewSymEntropic(10, opts)
	})
}
