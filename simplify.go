package stitchbuilder

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simplify reduces points with the Douglas-Peucker algorithm so that no
// dropped point is farther than epsilon from the line through the kept
// points enclosing it. Endpoints are always kept and the result is stable
// under repeated simplification with the same epsilon.
func Simplify(points []Point, epsilon float64) []Point {
	if len(points) < 3 || epsilon <= 0 {
		return slices.Clone(points)
	}
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	simplifySpan(points, 0, len(points)-1, epsilon, keep)

	out := make([]Point, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func simplifySpan(points []Point, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}
	a, b := points[first].vec(), points[last].vec()
	maxD, idx := -1.0, -1
	for i := first + 1; i < last; i++ {
		d := perpendicularDistance(points[i].vec(), a, b)
		if d > maxD {
			maxD = d
			idx = i
		}
	}
	if maxD <= epsilon {
		return
	}
	keep[idx] = true
	simplifySpan(points, first, idx, epsilon, keep)
	simplifySpan(points, idx, last, epsilon, keep)
}

// perpendicularDistance is the distance from p to the line through a and b,
// or to a itself when a and b coincide.
func perpendicularDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	n := r2.Norm(ab)
	if n == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	return math.Abs(r2.Cross(ab, r2.Sub(p, a))) / n
}
