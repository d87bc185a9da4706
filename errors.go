package stitchbuilder

import "errors"

var (
	// ErrInvalidRaster is returned for empty rasters or pixel buffers whose
	// length does not match the declared size.
	ErrInvalidRaster = errors.New("stitchbuilder: invalid raster")

	// ErrInvalidOptions is returned before any processing when an option is
	// out of range.
	ErrInvalidOptions = errors.New("stitchbuilder: invalid options")

	// ErrDegenerateRegion marks a region that cannot produce a path. The
	// builder skips such regions and continues.
	ErrDegenerateRegion = errors.New("stitchbuilder: degenerate region")
)
