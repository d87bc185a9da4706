package stitchbuilder

import (
	"errors"
	"image"
	"slices"
	"testing"
)

func firstRegion(t *testing.T, r *Raster) *Region {
	t.Helper()
	regions := ExtractRegions(r, ThresholdClassifier{Threshold: 128}, 1)
	if len(regions) == 0 {
		t.Fatal("no regions extracted")
	}
	return regions[0]
}

func TestTraceBoundarySquare(t *testing.T) {
	reg := firstRegion(t, grayRaster(5, 5, rectPoints(image.Rect(1, 1, 4, 4))...))
	got := TraceBoundary(reg)
	want := pts(1, 1, 2, 1, 3, 1, 3, 2, 3, 3, 2, 3, 1, 3, 1, 2)
	if !slices.Equal(got, want) {
		t.Errorf("TraceBoundary() = %v, want %v", got, want)
	}
}

func TestTraceBoundaryLine(t *testing.T) {
	reg := firstRegion(t, grayRaster(10, 10, rectPoints(image.Rect(0, 2, 10, 3))...))
	got := TraceBoundary(reg)
	if len(got) != 18 {
		t.Fatalf("len(trace) = %d, want 18", len(got))
	}
	if got[9] != (Point{9, 2}) {
		t.Errorf("trace[9] = %v, want (9,2)", got[9])
	}
}

func TestOutlinePath(t *testing.T) {
	reg := firstRegion(t, grayRaster(5, 5, rectPoints(image.Rect(1, 1, 4, 4))...))
	sp := OutlinePath(reg, 1)
	if !sp.Closed {
		t.Error("outline must be closed")
	}
	if want := pts(1, 1, 3, 1, 3, 3, 1, 3); !slices.Equal(sp.Points, want) {
		t.Errorf("OutlinePath() = %v, want %v", sp.Points, want)
	}
	if raw := OutlinePath(reg, 0); len(raw.Points) != 8 {
		t.Errorf("unsimplified outline has %d points, want 8", len(raw.Points))
	}
}

func TestFillPathsZigzag(t *testing.T) {
	reg := firstRegion(t, grayRaster(6, 6, rectPoints(image.Rect(0, 0, 6, 6))...))
	got := FillPaths(reg, 2, false)
	want := [][]Point{
		pts(0, 0, 2, 0, 4, 0),
		pts(4, 2, 2, 2, 0, 2),
		pts(0, 4, 2, 4, 4, 4),
	}
	if len(got) != len(want) {
		t.Fatalf("len(paths) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Closed || !slices.Equal(got[i].Points, want[i]) {
			t.Errorf("paths[%d] = %v, want open %v", i, got[i].Points, want[i])
		}
	}
}

func TestFillPathsVertical(t *testing.T) {
	reg := firstRegion(t, grayRaster(6, 6, rectPoints(image.Rect(0, 0, 6, 6))...))
	got := FillPaths(reg, 2, true)
	if want := pts(0, 0, 0, 2, 0, 4); !slices.Equal(got[0].Points, want) {
		t.Errorf("paths[0] = %v, want %v", got[0].Points, want)
	}
}

func TestFillPathsBandFallback(t *testing.T) {
	reg := newRegion(0, 0, []image.Point{{0, 0}, {1, 0}, {0, 3}, {1, 3}})
	got := FillPaths(reg, 2, false)
	if len(got) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(got))
	}
	if want := pts(0, 3); !slices.Equal(got[1].Points, want) {
		t.Errorf("paths[1] = %v, want %v", got[1].Points, want)
	}
}

func TestFillPathsStayInside(t *testing.T) {
	ink := append(rectPoints(image.Rect(2, 2, 12, 5)), rectPoints(image.Rect(2, 5, 5, 14))...)
	reg := firstRegion(t, grayRaster(16, 16, ink...))
	for _, sp := range FillPaths(reg, 3, false) {
		for _, p := range sp.Points {
			if !reg.Contains(int(p.X), int(p.Y)) {
				t.Errorf("fill point %v lies outside the region", p)
			}
		}
	}
}

func TestFillPathsSingleRow(t *testing.T) {
	reg := firstRegion(t, grayRaster(10, 10, rectPoints(image.Rect(0, 5, 10, 6))...))
	got := FillPaths(reg, 2, false)
	if len(got) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(got))
	}
	if want := pts(0, 5, 2, 5, 4, 5, 6, 5, 8, 5); !slices.Equal(got[0].Points, want) {
		t.Errorf("paths[0] = %v, want %v", got[0].Points, want)
	}
}

func TestDotPathsSplitsDistantSamples(t *testing.T) {
	reg := newRegion(0, 0, []image.Point{{0, 0}, {1, 0}, {10, 0}})
	got := DotPaths(reg, 2)
	if len(got) != 2 {
		t.Fatalf("len(paths) = %d, want 2", len(got))
	}
	if !slices.Equal(got[0].Points, pts(0, 0)) || !slices.Equal(got[1].Points, pts(10, 0)) {
		t.Errorf("DotPaths() = %v", got)
	}
}

func TestDotPathsConnected(t *testing.T) {
	reg := firstRegion(t, grayRaster(8, 8, rectPoints(image.Rect(0, 0, 5, 1))...))
	got := DotPaths(reg, 2)
	if len(got) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(got))
	}
	if want := pts(0, 0, 2, 0, 4, 0); !slices.Equal(got[0].Points, want) {
		t.Errorf("DotPaths() = %v, want %v", got[0].Points, want)
	}
}

func TestAutoMode(t *testing.T) {
	opt := PathOptions{Spacing: 2, AutoFillMinArea: 16}
	block := firstRegion(t, grayRaster(6, 6, rectPoints(image.Rect(0, 0, 6, 6))...))
	if got := AutoMode(block, opt); got != ModeFill {
		t.Errorf("AutoMode(block) = %v, want fill", got)
	}
	line := firstRegion(t, grayRaster(10, 10, rectPoints(image.Rect(0, 2, 10, 3))...))
	if got := AutoMode(line, opt); got != ModeOutline {
		t.Errorf("AutoMode(line) = %v, want outline", got)
	}
}

func TestGeneratePathsDegenerate(t *testing.T) {
	reg := firstRegion(t, grayRaster(4, 4, image.Pt(1, 1)))
	for _, mode := range []Mode{ModeOutline, ModeFill, ModeDots} {
		if _, err := GeneratePaths(reg, mode, PathOptions{Spacing: 2}); !errors.Is(err, ErrDegenerateRegion) {
			t.Errorf("GeneratePaths(%v) error = %v, want ErrDegenerateRegion", mode, err)
		}
	}
}

func TestGeneratePathsModes(t *testing.T) {
	reg := firstRegion(t, grayRaster(8, 8, rectPoints(image.Rect(1, 1, 7, 7))...))
	opt := PathOptions{Spacing: 2, Epsilon: 1, AutoFillMinArea: 16}
	for _, mode := range []Mode{ModeOutline, ModeFill, ModeAuto, ModeDots} {
		paths, err := GeneratePaths(reg, mode, opt)
		if err != nil {
			t.Fatalf("GeneratePaths(%v) error = %v", mode, err)
		}
		if len(paths) == 0 {
			t.Errorf("GeneratePaths(%v) returned no paths", mode)
		}
	}
}
