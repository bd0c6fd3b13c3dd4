package affinity_test

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// twoMoons generates the classic interleaved half-circles dataset: n points
// in 2D with mild Gaussian noise, deterministic for a given seed. Points are
// pairwise distinct with probability 1, which the calibrated variants
// require.
func twoMoons(n int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)

	half := n / 2
	for i := 0; i < n; i++ {
		var x, y float64
		if i < half {
			t := math.Pi * float64(i) / float64(half-1)
			x, y = math.Cos(t), math.Sin(t)
		} else {
			t := math.Pi * float64(i-half) / float64(n-half-1)
			x, y = 1-math.Cos(t), 0.5-math.Sin(t)
		}
		X.Set(i, 0, x+0.05*rng.NormFloat64())
		X.Set(i, 1, y+0.05*rng.NormFloat64())
	}

	return X
}
