package stitchbuilder

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a coordinate in pixel space before emission and in stitch-space
// units afterwards.
type Point struct {
	X, Y float64
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), q.vec()))
}

// SubPath is one continuous pen-down traversal. A closed SubPath stores only
// its distinct vertices; the last point connects back to the first.
type SubPath struct {
	Points []Point
	Closed bool
}

func (sp SubPath) First() Point { return sp.Points[0] }
func (sp SubPath) Last() Point  { return sp.Points[len(sp.Points)-1] }

// Reversed returns a copy of sp traversed in the opposite direction.
func (sp SubPath) Reversed() SubPath {
	out := SubPath{Points: make([]Point, len(sp.Points)), Closed: sp.Closed}
	for i, p := range sp.Points {
		out.Points[len(sp.Points)-1-i] = p
	}
	return out
}

type CommandKind uint8

const (
	Stitch CommandKind = iota
	Jump
	ColorChange
	Trim
	End
)

func (k CommandKind) String() string {
	switch k {
	case Stitch:
		return "stitch"
	case Jump:
		return "jump"
	case ColorChange:
		return "color_change"
	case Trim:
		return "trim"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// HasCoordinates reports whether commands of this kind move the needle.
func (k CommandKind) HasCoordinates() bool {
	return k == Stitch || k == Jump
}

// Command is one needle instruction. X and Y are only meaningful for Stitch
// and Jump; Thread is only meaningful for ColorChange.
type Command struct {
	Kind   CommandKind
	X, Y   float64
	Thread int
}

func (c Command) Point() Point { return Point{c.X, c.Y} }

// Thread is a named colour slot of a pattern.
type Thread struct {
	Color colorful.Color
	Label string
}

func NewThread(c colorful.Color) Thread {
	c = c.Clamped()
	return Thread{Color: c, Label: c.Hex()}
}

func (t Thread) RGB() (r, g, b uint8) {
	return t.Color.RGB255()
}

func (t Thread) Hex() string {
	return t.Color.Clamped().Hex()
}

// Bounds is the bounding box of a pattern's coordinate commands. The zero
// value is used when the pattern has no coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Pattern is the synthesized stitch program.
type Pattern struct {
	Commands []Command
	Threads  []Thread
	Bounds   Bounds

	// NoRegions is set when the raster held no ink and the fallback square
	// was emitted instead.
	NoRegions bool

	// Meta is free-form information carried into the JSON format.
	Meta map[string]any
}

// NewPattern builds a pattern and computes its bounds.
func NewPattern(cmds []Command, threads []Thread) *Pattern {
	p := &Pattern{Commands: cmds, Threads: threads}
	p.Bounds = ComputeBounds(cmds)
	return p
}

// ComputeBounds returns the tight bounding box of all Stitch and Jump
// coordinates, or the zero Bounds if there are none.
func ComputeBounds(cmds []Command) Bounds {
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	n := 0
	for _, c := range cmds {
		if !c.Kind.HasCoordinates() {
			continue
		}
		b.MinX = min(b.MinX, c.X)
		b.MinY = min(b.MinY, c.Y)
		b.MaxX = max(b.MaxX, c.X)
		b.MaxY = max(b.MaxY, c.Y)
		n++
	}
	if n == 0 {
		return Bounds{}
	}
	return b
}

// Coordinates returns the ordered coordinate stream of Stitch and Jump
// commands.
func (p *Pattern) Coordinates() []Point {
	out := make([]Point, 0, len(p.Commands))
	for _, c := range p.Commands {
		if c.Kind.HasCoordinates() {
			out = append(out, c.Point())
		}
	}
	return out
}

func (p *Pattern) count(kind CommandKind) int {
	n := 0
	for _, c := range p.Commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (p *Pattern) StitchCount() int  { return p.count(Stitch) }
func (p *Pattern) JumpCount() int    { return p.count(Jump) }
func (p *Pattern) ColorChanges() int { return p.count(ColorChange) }

// ThreadIndex returns the thread index the n-th colour change (counting
// from 0) selects when only the palette size is known: n mod len(Threads).
func (p *Pattern) ThreadIndex(n int) (int, bool) {
	if len(p.Threads) == 0 || n < 0 {
		return 0, false
	}
	return n % len(p.Threads), true
}

// ThreadAt returns the thread selected by the n-th colour change. Indexing
// is cyclic so a pattern decoded without its thread list still resolves.
func (p *Pattern) ThreadAt(n int) (Thread, bool) {
	i, ok := p.ThreadIndex(n)
	if !ok {
		return Thread{}, false
	}
	return p.Threads[i], true
}

// ColorSequence returns the thread of every colour change in program
// order. A change naming a valid thread index uses it; any other falls back
// to the cyclic rule of ThreadAt.
func (p *Pattern) ColorSequence() []Thread {
	var seq []Thread
	n := 0
	for _, c := range p.Commands {
		if c.Kind != ColorChange {
			continue
		}
		if c.Thread >= 0 && c.Thread < len(p.Threads) {
			seq = append(seq, p.Threads[c.Thread])
		} else if t, ok := p.ThreadAt(n); ok {
			seq = append(seq, t)
		}
		n++
	}
	return seq
}

// UseThreads attaches threads to p. Colour changes whose index does not
// name one of them are resolved cyclically by their position.
func (p *Pattern) UseThreads(threads []Thread) {
	p.Threads = threads
	n := 0
	for i, c := range p.Commands {
		if c.Kind != ColorChange {
			continue
		}
		if c.Thread < 0 || c.Thread >= len(threads) {
			if idx, ok := p.ThreadIndex(n); ok {
				p.Commands[i].Thread = idx
			}
		}
		n++
	}
}
