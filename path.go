package stitchbuilder

import (
	"fmt"
	"image"
	"math"
	"slices"
)

type PathOptions struct {
	// Spacing is the hatch row distance and stitch distance in pixels.
	Spacing int
	// Vertical hatches columns instead of rows.
	Vertical bool
	// Epsilon is the outline simplification tolerance. 0 keeps every
	// boundary pixel.
	Epsilon float64
	// AutoFillMinArea is the smallest region ModeAuto fills.
	AutoFillMinArea int
}

// GeneratePaths turns reg into sub-paths in pixel coordinates.
func GeneratePaths(reg *Region, mode Mode, opt PathOptions) ([]SubPath, error) {
	if reg == nil || reg.Area() < 2 {
		return nil, fmt.Errorf("%w: fewer than two pixels", ErrDegenerateRegion)
	}
	opt.Spacing = max(opt.Spacing, 1)
	if mode == ModeAuto {
		mode = AutoMode(reg, opt)
	}
	var paths []SubPath
	switch mode {
	case ModeOutline:
		paths = []SubPath{OutlinePath(reg, opt.Epsilon)}
	case ModeFill:
		paths = FillPaths(reg, opt.Spacing, opt.Vertical)
	case ModeDots:
		paths = DotPaths(reg, opt.Spacing)
	default:
		return nil, fmt.Errorf("%w: mode %v", ErrInvalidOptions, mode)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %v produced no paths", ErrDegenerateRegion, mode)
	}
	return paths, nil
}

// AutoMode fills regions that are large and at least two hatch rows wide in
// both directions, and outlines the rest.
func AutoMode(reg *Region, opt PathOptions) Mode {
	spacing := max(opt.Spacing, 1)
	if reg.Area() >= opt.AutoFillMinArea &&
		reg.Bounds.Dx() >= 2*spacing && reg.Bounds.Dy() >= 2*spacing {
		return ModeFill
	}
	return ModeOutline
}

// Moore neighbourhood in clockwise order starting west.
var mooreDirs = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range mooreDirs {
		if m == d {
			return i
		}
	}
	return -1
}

// mooreStep finds the next boundary pixel clockwise from c, starting after
// the backtrack direction b. It returns the new pixel and its backtrack.
func mooreStep(reg *Region, c image.Point, b int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		n := c.Add(mooreDirs[(b+i)%8])
		if reg.Contains(n.X, n.Y) {
			prev := c.Add(mooreDirs[(b+i-1)%8])
			return n, mooreIndex(prev.Sub(n)), true
		}
	}
	return c, b, false
}

// TraceBoundary follows the outer boundary of reg clockwise from its
// top-left pixel. The returned loop does not repeat its first pixel.
func TraceBoundary(reg *Region) []Point {
	s := reg.Pixels[0]
	contour := []Point{pixelPoint(s)}
	c, b := s, 0
	var second image.Point
	started := false
	for range 8*reg.Area() + 16 {
		n, nb, ok := mooreStep(reg, c, b)
		if !ok {
			break
		}
		if started && c == s && n == second {
			break
		}
		if !started {
			second = n
			started = true
		}
		c, b = n, nb
		if c != s {
			contour = append(contour, pixelPoint(c))
		}
	}
	return contour
}

// OutlinePath traces and simplifies the boundary of reg into one closed
// sub-path.
func OutlinePath(reg *Region, epsilon float64) SubPath {
	return SubPath{Points: SimplifyClosed(TraceBoundary(reg), epsilon), Closed: true}
}

// SimplifyClosed simplifies a closed loop by splitting it at the vertex
// farthest from the first one, so a loop whose ends touch does not collapse.
func SimplifyClosed(points []Point, epsilon float64) []Point {
	if len(points) < 4 || epsilon <= 0 {
		return slices.Clone(points)
	}
	far, farD := 0, -1.0
	for i, p := range points {
		if d := points[0].Dist(p); d > farD {
			far, farD = i, d
		}
	}
	head := Simplify(points[:far+1], epsilon)
	tail := Simplify(append(slices.Clone(points[far:]), points[0]), epsilon)
	return append(head, tail[1:len(tail)-1]...)
}

type run struct{ start, end int } // inclusive

// FillPaths hatches reg with rows (columns when vertical) every spacing
// pixels. Each contiguous run becomes one sub-path with a point every
// spacing pixels, and successive rows alternate direction.
func FillPaths(reg *Region, spacing int, vertical bool) []SubPath {
	spacing = max(spacing, 1)
	b := reg.Bounds
	uMin, uMax, vMin, vMax := b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
	contains := reg.Contains
	point := func(u, v int) Point { return Point{float64(u), float64(v)} }
	if vertical {
		uMin, uMax, vMin, vMax = b.Min.Y, b.Max.Y, b.Min.X, b.Max.X
		contains = func(u, v int) bool { return reg.Contains(v, u) }
		point = func(u, v int) Point { return Point{float64(v), float64(u)} }
	}

	runsAt := func(v int) []run {
		var runs []run
		inside := false
		for u := uMin; u < uMax; u++ {
			in := contains(u, v)
			switch {
			case in && !inside:
				runs = append(runs, run{start: u, end: u})
			case in:
				runs[len(runs)-1].end = u
			}
			inside = in
		}
		return runs
	}

	var paths []SubPath
	row := 0
	for v := vMin; v < vMax; v += spacing {
		sv := v
		runs := runsAt(v)
		// Thin regions may miss the sampled row; use the nearest populated
		// row in the band instead.
		for alt := v + 1; len(runs) == 0 && alt < min(v+spacing, vMax); alt++ {
			runs, sv = runsAt(alt), alt
		}
		if len(runs) == 0 {
			continue
		}
		reverse := row%2 == 1
		row++
		rowPaths := make([]SubPath, 0, len(runs))
		for _, r := range runs {
			var pts []Point
			for u := r.start; u <= r.end; u += spacing {
				pts = append(pts, point(u, sv))
			}
			if reverse {
				slices.Reverse(pts)
			}
			rowPaths = append(rowPaths, SubPath{Points: pts})
		}
		if reverse {
			slices.Reverse(rowPaths)
		}
		paths = append(paths, rowPaths...)
	}
	return paths
}

// DotPaths samples reg on a spacing grid, orders the samples by nearest
// neighbour and breaks the tour wherever two samples are not grid
// neighbours.
func DotPaths(reg *Region, spacing int) []SubPath {
	spacing = max(spacing, 1)
	b := reg.Bounds
	var samples []Point
	for y := b.Min.Y; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x += spacing {
			if reg.Contains(x, y) {
				samples = append(samples, Point{float64(x), float64(y)})
			}
		}
	}
	if len(samples) == 0 {
		samples = append(samples, pixelPoint(reg.Pixels[0]))
	}
	ordered := OrderPoints(samples)

	limit := float64(spacing)*math.Sqrt2 + 1e-9
	var paths []SubPath
	cur := SubPath{Points: []Point{ordered[0]}}
	for _, p := range ordered[1:] {
		if cur.Last().Dist(p) > limit {
			paths = append(paths, cur)
			cur = SubPath{}
		}
		cur.Points = append(cur.Points, p)
	}
	return append(paths, cur)
}

func pixelPoint(p image.Point) Point {
	return Point{float64(p.X), float64(p.Y)}
}
