package stitchbuilder

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// OrderPoints orders points greedily: starting from the first point it
// repeatedly moves to the closest unvisited one. Ties go to the earlier
// input point.
func OrderPoints(points []Point) []Point {
	if len(points) < 2 {
		return slices.Clone(points)
	}
	visited := make([]bool, len(points))
	out := make([]Point, 0, len(points))
	cur := 0
	visited[cur] = true
	out = append(out, points[cur])
	for len(out) < len(points) {
		best := -1
		bestD := math.MaxFloat64
		for i, p := range points {
			if visited[i] {
				continue
			}
			if d := points[cur].Dist(p); d < bestD {
				bestD = d
				best = i
			}
		}
		visited[best] = true
		cur = best
		out = append(out, points[cur])
	}
	return out
}

// OrderSubPaths keeps the first sub-path in place and orders the rest
// greedily by the closest endpoint.
func OrderSubPaths(paths []SubPath) []SubPath {
	if len(paths) == 0 {
		return nil
	}
	return append([]SubPath{paths[0]}, OrderSubPathsFrom(exitPoint(paths[0]), paths[1:])...)
}

// OrderSubPathsFrom orders paths greedily starting at from. An open
// sub-path is reversed when its last point is strictly closer than its
// first. Closed sub-paths are always entered at their first point.
func OrderSubPathsFrom(from Point, paths []SubPath) []SubPath {
	visited := make([]bool, len(paths))
	out := make([]SubPath, 0, len(paths))
	cur := from
	for len(out) < len(paths) {
		best, rev := -1, false
		bestD := math.MaxFloat64
		for i, sp := range paths {
			if visited[i] {
				continue
			}
			if d := cur.Dist(sp.First()); d < bestD {
				best, bestD, rev = i, d, false
			}
			if sp.Closed {
				continue
			}
			if d := cur.Dist(sp.Last()); d < bestD {
				best, bestD, rev = i, d, true
			}
		}
		visited[best] = true
		sp := paths[best]
		if rev {
			sp = sp.Reversed()
		}
		out = append(out, sp)
		cur = exitPoint(sp)
	}
	return out
}

// exitPoint is where the needle rests after stitching sp.
func exitPoint(sp SubPath) Point {
	if sp.Closed {
		return sp.First()
	}
	return sp.Last()
}

// TravelDistance sums the pen-up distance between consecutive sub-paths.
func TravelDistance(paths []SubPath) float64 {
	if len(paths) < 2 {
		return 0
	}
	gaps := make([]float64, len(paths)-1)
	for i := 1; i < len(paths); i++ {
		gaps[i-1] = exitPoint(paths[i-1]).Dist(paths[i].First())
	}
	return floats.Sum(gaps)
}

// PointTravel sums the distance along points in order.
func PointTravel(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	steps := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		steps[i-1] = points[i-1].Dist(points[i])
	}
	return floats.Sum(steps)
}
