package stitchbuilder

import (
	"slices"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func testThreads(n int) []Thread {
	out := make([]Thread, n)
	for i := range out {
		out[i] = NewThread(colorful.Color{R: float64(i) / float64(n)})
	}
	return out
}

func TestEmitSingleRow(t *testing.T) {
	e := Emitter{JumpThreshold: 20, Scale: 1}
	p := e.Emit([]EmitRegion{{Paths: []SubPath{{Points: pts(0, 5, 2, 5, 4, 5, 6, 5, 8, 5)}}}}, testThreads(1))
	want := []Command{
		{Kind: ColorChange},
		{Kind: Jump, X: 0, Y: 5},
		{Kind: Stitch, X: 2, Y: 5},
		{Kind: Stitch, X: 4, Y: 5},
		{Kind: Stitch, X: 6, Y: 5},
		{Kind: Stitch, X: 8, Y: 5},
		{Kind: End},
	}
	if !slices.Equal(p.Commands, want) {
		t.Errorf("Emit() = %v, want %v", p.Commands, want)
	}
	if p.NoRegions {
		t.Error("NoRegions set for a non-empty pattern")
	}
	if b := (Bounds{0, 5, 8, 5}); p.Bounds != b {
		t.Errorf("Bounds = %+v, want %+v", p.Bounds, b)
	}
}

func TestEmitJumpThreshold(t *testing.T) {
	paths := []SubPath{
		{Points: pts(0, 0, 1, 0)},
		{Points: pts(3, 0, 4, 0)},
		{Points: pts(40, 0, 41, 0)},
	}
	e := Emitter{JumpThreshold: 10, Scale: 1}
	p := e.Emit([]EmitRegion{{Paths: paths}}, testThreads(1))
	want := []CommandKind{ColorChange, Jump, Stitch, Stitch, Stitch, Jump, Stitch, End}
	if got := kinds(p.Commands); !slices.Equal(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}

	e.TrimBeforeJump = true
	p = e.Emit([]EmitRegion{{Paths: paths}}, testThreads(1))
	want = []CommandKind{ColorChange, Jump, Stitch, Stitch, Stitch, Trim, Jump, Stitch, End}
	if got := kinds(p.Commands); !slices.Equal(got, want) {
		t.Errorf("kinds with trim = %v, want %v", got, want)
	}
}

func TestEmitThresholdInScaledUnits(t *testing.T) {
	paths := []SubPath{{Points: pts(0, 0)}, {Points: pts(6, 0)}}
	// 6 px at 2 units/px is 12 units, beyond the threshold of 10.
	p := Emitter{JumpThreshold: 10, Scale: 2}.Emit([]EmitRegion{{Paths: paths}}, testThreads(1))
	if got := p.JumpCount(); got != 2 {
		t.Errorf("JumpCount() = %d, want 2", got)
	}
	if last := p.Commands[len(p.Commands)-2]; last.X != 12 {
		t.Errorf("last coordinate x = %g, want 12", last.X)
	}
}

func TestEmitClosedPath(t *testing.T) {
	sq := SubPath{Points: pts(0, 0, 2, 0, 2, 2, 0, 2), Closed: true}
	p := Emitter{JumpThreshold: 10, Scale: 1}.Emit([]EmitRegion{{Paths: []SubPath{sq}}}, testThreads(1))
	coords := p.Coordinates()
	if got, want := coords[len(coords)-1], (Point{0, 0}); got != want {
		t.Errorf("closed path ends at %v, want %v", got, want)
	}
	if got := p.StitchCount(); got != 4 {
		t.Errorf("StitchCount() = %d, want 4", got)
	}
}

func TestEmitColorChanges(t *testing.T) {
	row := func(y float64) []SubPath { return []SubPath{{Points: pts(0, y, 2, y)}} }
	regions := []EmitRegion{
		{Thread: 0, Paths: row(0)},
		{Thread: 0, Paths: row(1)},
		{Thread: 1, Paths: row(2)},
	}
	p := Emitter{JumpThreshold: 10, Scale: 1}.Emit(regions, testThreads(2))
	if got := p.ColorChanges(); got != 2 {
		t.Errorf("ColorChanges() = %d, want 2", got)
	}
	var threads []int
	for _, c := range p.Commands {
		if c.Kind == ColorChange {
			threads = append(threads, c.Thread)
		}
	}
	if !slices.Equal(threads, []int{0, 1}) {
		t.Errorf("colour change threads = %v, want [0 1]", threads)
	}
}

func TestEmitSplitsLongStitches(t *testing.T) {
	e := Emitter{JumpThreshold: 100, Scale: 1, MaxStitchLength: 4}
	p := e.Emit([]EmitRegion{{Paths: []SubPath{{Points: pts(0, 0, 10, 0)}}}}, testThreads(1))
	want := pts(0, 0, 10.0/3, 0, 20.0/3, 0, 10, 0)
	got := p.Coordinates()
	if len(got) != len(want) {
		t.Fatalf("coordinates = %v, want %v", got, want)
	}
	for i := 1; i < len(got); i++ {
		if d := got[i-1].Dist(got[i]); d > 4+1e-9 {
			t.Errorf("stitch %d is %g long, want <= 4", i, d)
		}
	}
}

func TestEmitFallback(t *testing.T) {
	p := Emitter{JumpThreshold: 20, Scale: 1}.Emit(nil, nil)
	if !p.NoRegions {
		t.Error("NoRegions not set")
	}
	want := []CommandKind{Stitch, Stitch, Stitch, Stitch, End}
	if got := kinds(p.Commands); !slices.Equal(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
	if !slices.Equal(p.Coordinates(), FallbackSquare) {
		t.Errorf("coordinates = %v, want %v", p.Coordinates(), FallbackSquare)
	}
	if len(p.Threads) != 1 || p.Threads[0].Hex() != "#000000" {
		t.Errorf("Threads = %v, want one black thread", p.Threads)
	}
}

func TestScaleFromReference(t *testing.T) {
	ref := NewPattern([]Command{{Kind: Jump, X: 10, Y: 0}, {Kind: Stitch, X: 110, Y: 5}}, nil)
	if got := ScaleFromReference(ref, 50); got != 2 {
		t.Errorf("ScaleFromReference() = %g, want 2", got)
	}
	if got := ScaleFromReference(nil, 50); got != 1 {
		t.Errorf("ScaleFromReference(nil) = %g, want 1", got)
	}
}
