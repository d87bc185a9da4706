package stitchbuilder

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackSquare is stitched when a raster yields no coordinates, so that
// consumers never receive an empty program. Units are stitch-space units.
var FallbackSquare = []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// EmitRegion is one region's ordered sub-paths, ready for emission.
type EmitRegion struct {
	Region *Region
	Mode   Mode
	Thread int
	Paths  []SubPath
}

// Emitter turns ordered sub-paths into a command stream.
type Emitter struct {
	// JumpThreshold in stitch-space units. Transitions longer than this
	// become jumps.
	JumpThreshold float64
	// Scale converts pixel coordinates to stitch-space units.
	Scale float64
	// MaxStitchLength splits longer stitches. 0 disables splitting.
	MaxStitchLength float64
	// TrimBeforeJump cuts the thread before every jump but the first.
	TrimBeforeJump bool
}

func (e Emitter) scaled(p Point) Point {
	s := e.Scale
	if s <= 0 {
		s = 1
	}
	return Point{p.X * s, p.Y * s}
}

// stitchTo appends stitches from the current position to p, splitting the
// move when it is longer than MaxStitchLength.
func (e Emitter) stitchTo(cmds []Command, from, p Point) []Command {
	if e.MaxStitchLength > 0 {
		if d := from.Dist(p); d > e.MaxStitchLength {
			n := int(math.Ceil(d / e.MaxStitchLength))
			for i := 1; i < n; i++ {
				t := float64(i) / float64(n)
				cmds = append(cmds, Command{
					Kind: Stitch,
					X:    from.X + (p.X-from.X)*t,
					Y:    from.Y + (p.Y-from.Y)*t,
				})
			}
		}
	}
	return append(cmds, Command{Kind: Stitch, X: p.X, Y: p.Y})
}

// Emit walks the regions in order. A colour change precedes the first region
// and every region whose thread differs from the previous one. The first
// point overall and every transition longer than JumpThreshold is reached
// with a jump; shorter transitions are stitched. The program always ends
// with a single End.
func (e Emitter) Emit(regions []EmitRegion, threads []Thread) *Pattern {
	var cmds []Command
	var last Point
	touched := false
	prevThread := -1
	for _, er := range regions {
		if len(er.Paths) == 0 {
			continue
		}
		if prevThread < 0 || er.Thread != prevThread {
			cmds = append(cmds, Command{Kind: ColorChange, Thread: er.Thread})
			prevThread = er.Thread
		}
		for _, sp := range er.Paths {
			if len(sp.Points) == 0 {
				continue
			}
			first := e.scaled(sp.First())
			if !touched || last.Dist(first) > e.JumpThreshold {
				if touched && e.TrimBeforeJump {
					cmds = append(cmds, Command{Kind: Trim})
				}
				cmds = append(cmds, Command{Kind: Jump, X: first.X, Y: first.Y})
			} else {
				cmds = e.stitchTo(cmds, last, first)
			}
			last = first
			touched = true
			for _, p := range sp.Points[1:] {
				q := e.scaled(p)
				cmds = e.stitchTo(cmds, last, q)
				last = q
			}
			if sp.Closed && len(sp.Points) > 1 {
				cmds = e.stitchTo(cmds, last, first)
				last = first
			}
		}
	}

	if !touched {
		cmds = cmds[:0]
		for _, p := range FallbackSquare {
			cmds = append(cmds, Command{Kind: Stitch, X: p.X, Y: p.Y})
		}
		if len(threads) == 0 {
			threads = []Thread{NewThread(colorful.Color{})}
		}
	}
	cmds = append(cmds, Command{Kind: End})
	p := NewPattern(cmds, threads)
	p.NoRegions = !touched
	return p
}

// ScaleFromReference derives the pixel to stitch-space factor that makes a
// raster of rasterWidth pixels as wide as ref. It returns 1 when either
// width is unusable.
func ScaleFromReference(ref *Pattern, rasterWidth int) float64 {
	if ref == nil || rasterWidth <= 0 || ref.Bounds.Width() <= 0 {
		return 1.0
	}
	return ref.Bounds.Width() / float64(rasterWidth)
}
