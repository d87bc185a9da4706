package stitchbuilder

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/stitchbuilder/utils"
)

// Mode selects how a region is turned into sub-paths.
type Mode int

const (
	ModeOutline Mode = iota
	ModeFill
	// ModeAuto fills solid regions and outlines thin ones.
	ModeAuto
	// ModeDots samples the region on a grid and stitches the samples in
	// nearest-neighbour order.
	ModeDots
)

var modeNames = [...]string{"outline", "fill", "auto", "dots"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for i, name := range modeNames {
		if string(b) == name {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", b)
}

// Classifier selects how pixels are split into ink and background.
type Classifier int

const (
	// ClassifyThreshold marks pixels darker than Threshold as ink.
	ClassifyThreshold Classifier = iota
	// ClassifyPalette buckets pixels by their nearest palette colour.
	ClassifyPalette
)

func (c Classifier) String() string {
	switch c {
	case ClassifyThreshold:
		return "threshold"
	case ClassifyPalette:
		return "palette"
	default:
		return fmt.Sprintf("Classifier(%d)", int(c))
	}
}

func (c Classifier) MarshalText() ([]byte, error) {
	if c != ClassifyThreshold && c != ClassifyPalette {
		return nil, fmt.Errorf("unknown classifier %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Classifier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "threshold":
		*c = ClassifyThreshold
	case "palette":
		*c = ClassifyPalette
	default:
		return fmt.Errorf("unknown classifier %q", b)
	}
	return nil
}

type Options struct {
	// Mode is the path strategy applied to every region.
	Mode Mode `json:"mode"`
	// Classifier selects threshold (single colour) or palette (multi colour)
	// region extraction.
	Classifier Classifier `json:"classifier"`
	// Threshold in [0,255]. Pixels with lower intensity are ink.
	Threshold int `json:"threshold"`
	// AutoThreshold replaces Threshold with the raster's mean intensity.
	AutoThreshold bool `json:"auto_threshold"`
	// PaletteSize is K, the number of colours derived from the image when
	// Palette is empty. Ideal start: 3-12.
	PaletteSize int `json:"palette_size"`
	// Palette is a reference palette of hex colours. When set it replaces
	// the derived palette and PaletteSize is ignored.
	Palette []string `json:"palette,omitempty"`
	// PaletteMethod picks the palette derivation. Median cut is
	// deterministic; kmeans and dominantcolor are seeded by their libraries.
	PaletteMethod utils.PaletteMethod `json:"palette_method"`
	// Background is the fabric colour. The palette entry nearest to it is
	// dropped when within BackgroundTolerance (RGB distance, 0-1.73).
	Background          string  `json:"background"`
	BackgroundTolerance float64 `json:"background_tolerance"`
	// ThreadColor is the single thread used in threshold mode.
	ThreadColor string `json:"thread_color"`
	// FillSpacing is the hatch row distance and the distance between
	// stitches on a row, in pixels.
	FillSpacing int `json:"fill_spacing"`
	// Vertical hatches columns instead of rows.
	Vertical bool `json:"vertical"`
	// SimplifyEpsilon is the outline simplification tolerance in pixels.
	// 0 disables simplification.
	SimplifyEpsilon float64 `json:"simplify_epsilon"`
	// JumpThreshold in stitch-space units. Longer transitions become jumps.
	// Ideal start: 15-20.
	JumpThreshold float64 `json:"jump_threshold"`
	// ScaleMMPerPx converts pixels to stitch-space units at emission time.
	ScaleMMPerPx float64 `json:"scale_mm_per_px"`
	// ReferenceWidthMM, when > 0, overrides ScaleMMPerPx with
	// ReferenceWidthMM / raster width.
	ReferenceWidthMM float64 `json:"reference_width_mm"`
	// MaxStitchLength splits longer stitches, in stitch-space units.
	// 0 disables splitting.
	MaxStitchLength float64 `json:"max_stitch_length"`
	// TrimBeforeJump emits a Trim before every jump except the first.
	TrimBeforeJump bool `json:"trim_before_jump"`
	// MinRegionArea drops speckle regions with fewer pixels.
	// Too high => thin details vanish.
	MinRegionArea int `json:"min_region_area"`
	// AutoFillMinArea is the smallest region ModeAuto fills.
	AutoFillMinArea int `json:"auto_fill_min_area"`
	// Workers bounds per-region path generation. 0 uses GOMAXPROCS.
	Workers int `json:"workers"`
}

func DefaultOptions() Options {
	return Options{
		Mode:                ModeFill,
		Classifier:          ClassifyThreshold,
		Threshold:           128,
		PaletteSize:         6,
		PaletteMethod:       utils.PaletteMethodMedianCut,
		Background:          "#ffffff",
		BackgroundTolerance: 0.25,
		ThreadColor:         "#000000",
		FillSpacing:         4,
		SimplifyEpsilon:     1.0,
		JumpThreshold:       20,
		ScaleMMPerPx:        1.0,
		MinRegionArea:       1,
		AutoFillMinArea:     64,
	}
}

// OptionsFromSize returns defaults tuned to the raster size: larger images
// get wider hatch spacing and a larger speckle filter.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	longest := max(size.X, size.Y)
	if longest > 300 {
		opt.FillSpacing = max(4, longest/75)
	}
	opt.MinRegionArea = max(1, min(300, size.X*size.Y/10000))
	opt.AutoFillMinArea = 4 * opt.FillSpacing * opt.FillSpacing
	return opt
}

// LoadOptions decodes JSON over DefaultOptions and validates the result.
func LoadOptions(r io.Reader) (Options, error) {
	opt := DefaultOptions()
	if err := json.NewDecoder(r).Decode(&opt); err != nil {
		return opt, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return opt, opt.Validate()
}

func (o Options) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidOptions}, args...)...)
	}
	if o.Mode < ModeOutline || o.Mode > ModeDots {
		return invalid("mode %d", int(o.Mode))
	}
	if o.Classifier != ClassifyThreshold && o.Classifier != ClassifyPalette {
		return invalid("classifier %d", int(o.Classifier))
	}
	if o.Threshold < 0 || o.Threshold > 255 {
		return invalid("threshold %d not in [0,255]", o.Threshold)
	}
	if o.Classifier == ClassifyPalette && len(o.Palette) == 0 {
		if o.PaletteSize < 1 || o.PaletteSize > 64 {
			return invalid("palette size %d not in [1,64]", o.PaletteSize)
		}
	}
	for _, hex := range o.Palette {
		if _, err := colorful.Hex(hex); err != nil {
			return invalid("palette colour %q", hex)
		}
	}
	if _, err := colorful.Hex(o.Background); err != nil {
		return invalid("background %q", o.Background)
	}
	if _, err := colorful.Hex(o.ThreadColor); err != nil {
		return invalid("thread colour %q", o.ThreadColor)
	}
	switch {
	case o.FillSpacing < 1:
		return invalid("fill spacing %d", o.FillSpacing)
	case !nonNegative(o.SimplifyEpsilon):
		return invalid("simplify epsilon %g", o.SimplifyEpsilon)
	case !nonNegative(o.JumpThreshold):
		return invalid("jump threshold %g", o.JumpThreshold)
	case !nonNegative(o.ScaleMMPerPx) || o.ScaleMMPerPx == 0:
		return invalid("scale %g", o.ScaleMMPerPx)
	case !nonNegative(o.ReferenceWidthMM):
		return invalid("reference width %g", o.ReferenceWidthMM)
	case !nonNegative(o.MaxStitchLength):
		return invalid("max stitch length %g", o.MaxStitchLength)
	case !nonNegative(o.BackgroundTolerance):
		return invalid("background tolerance %g", o.BackgroundTolerance)
	case o.MinRegionArea < 0:
		return invalid("min region area %d", o.MinRegionArea)
	case o.AutoFillMinArea < 0:
		return invalid("auto fill area %d", o.AutoFillMinArea)
	case o.Workers < 0:
		return invalid("workers %d", o.Workers)
	}
	return nil
}

// nonNegative reports whether v is finite and >= 0. NaN fails.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// scale returns the pixel to stitch-space factor for a raster of width w.
func (o Options) scale(w int) float64 {
	if o.ReferenceWidthMM > 0 && w > 0 {
		return o.ReferenceWidthMM / float64(w)
	}
	return o.ScaleMMPerPx
}

func hexColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
