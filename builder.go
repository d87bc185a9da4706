package stitchbuilder

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/stitchbuilder/utils"
)

// StitchBuilder holds the state of one synthesis run. A builder is used
// once; every field is populated by Build.
type StitchBuilder struct {
	Raster  *Raster
	Options Options

	Threshold int
	Palette   []colorful.Color
	Threads   []Thread
	Regions   []*Region
	Paths     []EmitRegion
	Pattern   *Pattern

	// Log is the human-readable journal of this run.
	Log []string

	classifier Classification
	threadOf   map[int]int // region key -> thread index
	journal    *journal
}

func NewStitchBuilder(r *Raster, opt Options) *StitchBuilder {
	return &StitchBuilder{Raster: r, Options: opt}
}

// Synthesize converts r into a stitch pattern.
func Synthesize(r *Raster, opt Options) (*Pattern, error) {
	sb := NewStitchBuilder(r, opt)
	if err := sb.Build(); err != nil {
		return nil, err
	}
	return sb.Pattern, nil
}

// Build validates the inputs and runs the pipeline. Only invalid options or
// an invalid raster fail the build; regions that cannot be stitched are
// skipped and an inkless raster produces the fallback pattern.
func (sb *StitchBuilder) Build() error {
	if err := sb.Options.Validate(); err != nil {
		return err
	}
	if err := sb.Raster.Validate(); err != nil {
		return err
	}
	sb.journal = &journal{}
	defer func() { sb.Log = sb.journal.entries }()

	sb.journal.step("raster %dx%d, %d channel(s)", sb.Raster.W, sb.Raster.H, sb.Raster.Channels)
	sb.resolveThreads()
	sb.extractRegions()
	sb.generatePaths()
	sb.orderPaths()
	sb.emit()
	return nil
}

// ============ CLASSIFICATION ============

func (sb *StitchBuilder) resolveThreads() {
	opt := sb.Options
	sb.threadOf = map[int]int{}
	if opt.Classifier == ClassifyThreshold {
		sb.Threshold = opt.Threshold
		if opt.AutoThreshold {
			sb.Threshold = int(math.Round(sb.Raster.MeanIntensity()))
		}
		sb.classifier = ThresholdClassifier{Threshold: sb.Threshold}
		sb.Threads = []Thread{NewThread(hexColor(opt.ThreadColor))}
		sb.threadOf[0] = 0
		sb.journal.step("threshold classification at %d", sb.Threshold)
		return
	}

	if len(opt.Palette) > 0 {
		for _, hex := range opt.Palette {
			sb.Palette = append(sb.Palette, hexColor(hex))
		}
		sb.journal.step("using reference palette of %d colours", len(sb.Palette))
	} else {
		sb.Palette = utils.ExtractPalette(sb.Raster.Image(), opt.PaletteSize, opt.PaletteMethod)
		utils.SortPaletteByBrightness(sb.Palette)
		sb.journal.step("derived %d colour palette (%v)", len(sb.Palette), opt.PaletteMethod)
	}
	bg := BackgroundIndex(sb.Palette, hexColor(opt.Background), opt.BackgroundTolerance)
	for i, c := range sb.Palette {
		if i == bg {
			continue
		}
		sb.threadOf[i] = len(sb.Threads)
		sb.Threads = append(sb.Threads, NewThread(c))
	}
	if bg >= 0 {
		sb.journal.step("palette entry %d (%s) is background", bg, sb.Palette[bg].Hex())
	}
	sb.classifier = PaletteClassifier{Palette: sb.Palette, Background: bg}
}

// ============ REGIONS ============

func (sb *StitchBuilder) extractRegions() {
	if len(sb.Threads) == 0 {
		sb.journal.warn("no threads available, nothing to stitch")
		return
	}
	regions := ExtractRegions(sb.Raster, sb.classifier, sb.Options.MinRegionArea)
	for _, reg := range regions {
		reg.Thread = sb.threadOf[reg.Key]
	}
	// Group equal threads so they share one colour change.
	slices.SortStableFunc(regions, func(a, b *Region) int {
		if a.Thread != b.Thread {
			return a.Thread - b.Thread
		}
		return a.ID - b.ID
	})
	sb.Regions = regions
	if len(regions) == 0 {
		sb.journal.warn("no ink regions found")
		return
	}
	sb.journal.step("extracted %d region(s)", len(regions))
}

// ============ PATHS ============

func (sb *StitchBuilder) pathOptions() PathOptions {
	return PathOptions{
		Spacing:         sb.Options.FillSpacing,
		Vertical:        sb.Options.Vertical,
		Epsilon:         sb.Options.SimplifyEpsilon,
		AutoFillMinArea: sb.Options.AutoFillMinArea,
	}
}

func (sb *StitchBuilder) generatePaths() {
	popt := sb.pathOptions()
	results := make([]EmitRegion, len(sb.Regions))
	errs := make([]error, len(sb.Regions))

	workers := sb.Options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, reg := range sb.Regions {
		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()
			mode := sb.Options.Mode
			if mode == ModeAuto {
				mode = AutoMode(reg, popt)
			}
			paths, err := GeneratePaths(reg, mode, popt)
			results[i] = EmitRegion{Region: reg, Mode: mode, Thread: reg.Thread, Paths: paths}
			errs[i] = err
		})
	}
	wg.Wait()

	sb.Paths = sb.Paths[:0]
	skipped := 0
	for i, res := range results {
		if errs[i] != nil {
			level := slog.LevelDebug
			if !errors.Is(errs[i], ErrDegenerateRegion) {
				level = slog.LevelWarn
			}
			Logger().Log(context.Background(), level, "skipping region",
				"region", res.Region.ID, "area", res.Region.Area(), "err", errs[i])
			skipped++
			continue
		}
		sb.Paths = append(sb.Paths, res)
	}
	if skipped > 0 {
		sb.journal.warn("skipped %d region(s) that could not be stitched", skipped)
	}
	sb.journal.step("generated paths for %d region(s)", len(sb.Paths))
}

// orderPaths orders each region's sub-paths, carrying the needle position
// from one region into the next.
func (sb *StitchBuilder) orderPaths() {
	var cursor Point
	for i := range sb.Paths {
		er := &sb.Paths[i]
		before := TravelDistance(er.Paths)
		if i == 0 {
			er.Paths = OrderSubPaths(er.Paths)
		} else {
			er.Paths = OrderSubPathsFrom(cursor, er.Paths)
		}
		cursor = exitPoint(er.Paths[len(er.Paths)-1])
		Logger().Debug("ordered region",
			"region", er.Region.ID, "mode", er.Mode.String(), "paths", len(er.Paths),
			"travel_before", before, "travel_after", TravelDistance(er.Paths))
	}
}

// ============ EMISSION ============

func (sb *StitchBuilder) emit() {
	scale := sb.Options.scale(sb.Raster.W)
	e := Emitter{
		JumpThreshold:   sb.Options.JumpThreshold,
		Scale:           scale,
		MaxStitchLength: sb.Options.MaxStitchLength,
		TrimBeforeJump:  sb.Options.TrimBeforeJump,
	}
	p := e.Emit(sb.Paths, sb.Threads)
	p.Meta = map[string]any{
		"width":      sb.Raster.W,
		"height":     sb.Raster.H,
		"mode":       sb.Options.Mode.String(),
		"classifier": sb.Options.Classifier.String(),
		"regions":    len(sb.Paths),
		"scale":      scale,
		"threads":    len(p.Threads),
	}
	if p.NoRegions {
		sb.journal.warn("no stitches produced, emitted fallback square")
	}
	sb.journal.step("emitted %d stitch(es), %d jump(s), %d colour change(s)",
		p.StitchCount(), p.JumpCount(), p.ColorChanges())
	sb.Pattern = p
}
