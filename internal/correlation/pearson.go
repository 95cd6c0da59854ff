package correlation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinObservations is the smallest number of paired values a coefficient is computed from
const MinObservations = 3

// Pearson returns the product-moment correlation of x and y. ok is false when there are
// fewer than MinObservations pairs or either side has zero variance. Slices of different
// length are a caller bug and panic.
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("correlation: pearson called with %d and %d values", len(x), len(y)))
	}
	if len(x) < MinObservations {
		return 0, false
	}

	// a constant side can leave a rounding residue in the denominator instead of zero
	if floats.Min(x) == floats.Max(x) || floats.Min(y) == floats.Max(y) {
		return 0, false
	}

	n := float64(len(x))
	sumX := floats.Sum(x)
	sumY := floats.Sum(y)
	sumXY := floats.Dot(x, y)
	sumXX := floats.Dot(x, x)
	sumYY := floats.Dot(y, y)

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if den == 0 || math.IsNaN(den) {
		return 0, false
	}

	r = num / den
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}
