// Package vectormath provides the distance functions shared by vector
// backends.
package vectormath

import (
	"fmt"
	"math"
)

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectormath: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Zero returns a zero vector of length dim.
func Zero(dim int) []float64 {
	if dim <= 0 {
		return nil
	}
	return make([]float64, dim)
}
