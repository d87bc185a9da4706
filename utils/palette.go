package utils

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/soniakeys/quant/median"
)

type PaletteMethod int

const (
	// PaletteMethodMedianCut is deterministic: the same image always yields
	// the same palette.
	PaletteMethodMedianCut PaletteMethod = iota
	PaletteMethodKMeans
	PaletteMethodDominantColor
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "median"
	}
}

func (m PaletteMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PaletteMethod) UnmarshalText(b []byte) error {
	switch string(b) {
	case "median", "":
		*m = PaletteMethodMedianCut
	case "kmeans":
		*m = PaletteMethodKMeans
	case "dominantcolor", "dominant":
		*m = PaletteMethodDominantColor
	default:
		return fmt.Errorf("unknown palette method %q", b)
	}
	return nil
}

// luminance is the relative luminance of c in linear RGB.
func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// SortPaletteByBrightness orders colors from darkest to brightest, so dark
// outline threads are stitched first.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		return cmp.Compare(luminance(a), luminance(b))
	})
}

// ExtractMedianPalette quantizes img with median cut.
func ExtractMedianPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 || img.Bounds().Empty() {
		return nil
	}
	pal := median.Quantizer(k).Quantize(make(color.Palette, 0, k), img)
	out := make([]colorful.Color, 0, len(pal))
	for _, c := range pal {
		col, ok := colorful.MakeColor(c)
		if !ok {
			continue
		}
		out = append(out, col.Clamped())
	}
	return out
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(24, k*8))
	cands := make([]ThreadCandidate, 0, len(found)+1)
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		cands = append(cands, ThreadCandidate{Color: col.Clamped(), Coverage: c.Weight})
	}
	if len(cands) == 0 {
		Logger().Warn("dominantcolor found no candidates, using a grey thread")
		cands = append(cands, ThreadCandidate{Color: colorful.Color{R: 0.5, G: 0.5, B: 0.5}, Coverage: 1})
	}
	return PickDistinctThreads(cands, k)
}

// ThreadCandidate is a colour proposed for a thread and how much of the
// image it covers.
type ThreadCandidate struct {
	Color    colorful.Color
	Coverage float64
}

// PickDistinctThreads chooses up to k candidates. The candidate with the
// largest coverage is taken first; every further pick maximises its Lab
// distance to the chosen set, damped for candidates that cover little.
func PickDistinctThreads(cands []ThreadCandidate, k int) []colorful.Color {
	k = min(k, len(cands))
	if k <= 0 {
		return nil
	}
	first, maxCov := 0, 1e-6
	for i, c := range cands {
		if c.Coverage > cands[first].Coverage {
			first = i
		}
		maxCov = max(maxCov, c.Coverage)
	}

	// gap[i] is the distance from candidate i to its nearest pick, -1 once
	// it is picked.
	gap := make([]float64, len(cands))
	for i := range gap {
		gap[i] = math.Inf(1)
	}
	picks := make([]colorful.Color, 0, k)
	for next := first; next >= 0 && len(picks) < k; {
		chosen := cands[next].Color.Clamped()
		picks = append(picks, chosen)
		gap[next] = -1
		next = -1
		best := -1.0
		for i, c := range cands {
			if gap[i] < 0 {
				continue
			}
			gap[i] = min(gap[i], c.Color.Clamped().DistanceLab(chosen))
			weight := 0.55 + 0.45*math.Sqrt(max(c.Coverage, 1e-6)/maxCov)
			if score := gap[i] * weight; score > best {
				best, next = score, i
			}
		}
	}
	return picks
}

// sampleObservations returns at most about limit opaque pixels of img on a
// regular grid, as RGB observations in [0,1].
func sampleObservations(img image.Image, limit int) clusters.Observations {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return nil
	}
	step := 1
	if n > limit {
		step = int(math.Ceil(math.Sqrt(float64(n) / float64(limit))))
	}
	obs := make(clusters.Observations, 0, min(n, limit))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			obs = append(obs, clusters.Coordinates{
				float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255,
			})
		}
	}
	return obs
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	obs := sampleObservations(img, 12000)
	if len(obs) == 0 {
		return nil
	}
	// Over-partition, then keep the most distinct clusters.
	parts, err := kmeans.New().Partition(obs, min(k*4, len(obs)))
	if err != nil {
		Logger().Warn("kmeans partition failed", "err", err)
		return nil
	}
	cands := make([]ThreadCandidate, 0, len(parts))
	for _, p := range parts {
		if len(p.Observations) == 0 || len(p.Center) < 3 {
			continue
		}
		cands = append(cands, ThreadCandidate{
			Color:    colorful.Color{R: p.Center[0], G: p.Center[1], B: p.Center[2]}.Clamped(),
			Coverage: float64(len(p.Observations)),
		})
	}
	slices.SortStableFunc(cands, func(a, b ThreadCandidate) int {
		return cmp.Compare(b.Coverage, a.Coverage)
	})
	return PickDistinctThreads(cands, k)
}

// ExtractPalette derives k thread colors from img. Empty kmeans results fall
// back to dominantcolor.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		Logger().Warn("kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	case PaletteMethodDominantColor:
		return ExtractDominantPalette(img, k)
	default:
		return ExtractMedianPalette(img, k)
	}
}
