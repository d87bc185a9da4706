package stitchbuilder

import (
	"image"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Classification assigns every pixel a region key, or -1 for background.
type Classification interface {
	Classify(r *Raster, x, y int) int
}

// ThresholdClassifier marks pixels darker than Threshold as ink with key 0.
type ThresholdClassifier struct {
	Threshold int
}

func (c ThresholdClassifier) Classify(r *Raster, x, y int) int {
	if int(r.Intensity(x, y)) < c.Threshold {
		return 0
	}
	return -1
}

// PaletteClassifier keys pixels by their nearest palette entry. The entry at
// Background is never ink; use -1 to treat every entry as ink.
type PaletteClassifier struct {
	Palette    []colorful.Color
	Background int
}

func (c PaletteClassifier) Classify(r *Raster, x, y int) int {
	cr, cg, cb := r.RGB(x, y)
	col := colorful.Color{R: float64(cr) / 255.0, G: float64(cg) / 255.0, B: float64(cb) / 255.0}
	idx := NearestColor(c.Palette, col)
	if idx == c.Background {
		return -1
	}
	return idx
}

// NearestColor returns the index of the palette entry closest to c in RGB,
// ties going to the lowest index. It returns -1 for an empty palette.
func NearestColor(palette []colorful.Color, c colorful.Color) int {
	best := -1
	bestD := math.MaxFloat64
	for i, p := range palette {
		d := c.DistanceRgb(p)
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// BackgroundIndex returns the palette entry nearest to bg if it lies within
// tol, else -1.
func BackgroundIndex(palette []colorful.Color, bg colorful.Color, tol float64) int {
	idx := NearestColor(palette, bg)
	if idx < 0 || palette[idx].DistanceRgb(bg) > tol {
		return -1
	}
	return idx
}

// Region is a connected set of pixels sharing one classification key.
type Region struct {
	ID  int
	Key int
	// Thread indexes the pattern's thread list.
	Thread int
	Bounds image.Rectangle
	Pixels []image.Point // scan order

	mask []bool // Bounds-local membership
}

func (reg *Region) Area() int { return len(reg.Pixels) }

func (reg *Region) Contains(x, y int) bool {
	if !image.Pt(x, y).In(reg.Bounds) {
		return false
	}
	w := reg.Bounds.Dx()
	return reg.mask[(y-reg.Bounds.Min.Y)*w+x-reg.Bounds.Min.X]
}

func newRegion(id, key int, pixels []image.Point) *Region {
	b := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels[1:] {
		b = b.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	reg := &Region{ID: id, Key: key, Bounds: b, Pixels: pixels}
	reg.mask = make([]bool, b.Dx()*b.Dy())
	for _, p := range pixels {
		reg.mask[(p.Y-b.Min.Y)*b.Dx()+p.X-b.Min.X] = true
	}
	return reg
}

var (
	dx8 = [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy8 = [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
)

// ExtractRegions labels the 8-connected components of ink pixels. Regions
// smaller than minArea are discarded; the rest are numbered in discovery
// order. An all-background raster yields no regions.
func ExtractRegions(r *Raster, c Classification, minArea int) []*Region {
	w, h := r.W, r.H
	keys := make([]int, w*h)
	for y := range h {
		for x := range w {
			keys[y*w+x] = c.Classify(r, x, y)
		}
	}

	visited := make([]bool, w*h)
	var regions []*Region
	for y := range h {
		for x := range w {
			start := y*w + x
			if visited[start] || keys[start] < 0 {
				continue
			}
			key := keys[start]
			visited[start] = true
			elems := make([]int, 1, 64)
			elems[0] = start
			for i := 0; i < len(elems); i++ {
				cur := elems[i]
				cx, cy := cur%w, cur/w
				for k := range 8 {
					nx, ny := cx+dx8[k], cy+dy8[k]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nIdx := ny*w + nx
					if !visited[nIdx] && keys[nIdx] == key {
						visited[nIdx] = true
						elems = append(elems, nIdx)
					}
				}
			}
			if len(elems) < max(minArea, 1) {
				continue
			}
			pixels := make([]image.Point, len(elems))
			for i, e := range elems {
				pixels[i] = image.Pt(e%w, e/w)
			}
			sortScanOrder(pixels)
			regions = append(regions, newRegion(len(regions), key, pixels))
		}
	}
	return regions
}

func sortScanOrder(pixels []image.Point) {
	slices.SortFunc(pixels, func(a, b image.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
}
