package stitchbuilder

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"
)

// Raster is a decoded pixel grid. Channels is 1 for intensity rasters and
// 3 for interleaved RGB.
type Raster struct {
	W, H     int
	Channels int
	Pix      []uint8 // len = W*H*Channels
}

func NewGrayRaster(w, h int, pix []uint8) *Raster {
	return &Raster{W: w, H: h, Channels: 1, Pix: pix}
}

func NewRGBRaster(w, h int, pix []uint8) *Raster {
	return &Raster{W: w, H: h, Channels: 3, Pix: pix}
}

// RasterFromImage converts img to an RGB raster. Transparent pixels are
// composited over white so they read as background.
func RasterFromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	r := &Raster{W: w, H: h, Channels: 3, Pix: make([]uint8, w*h*3)}
	for y := range h {
		for x := range w {
			cr, cg, cb, ca := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			bg := 0xffff - ca
			off := r.offset(x, y)
			r.Pix[off] = uint8((cr + bg) >> 8)
			r.Pix[off+1] = uint8((cg + bg) >> 8)
			r.Pix[off+2] = uint8((cb + bg) >> 8)
		}
	}
	return r
}

func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidRaster)
	}
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidRaster, r.W, r.H)
	}
	if r.Channels != 1 && r.Channels != 3 {
		return fmt.Errorf("%w: %d channels", ErrInvalidRaster, r.Channels)
	}
	if want := r.W * r.H * r.Channels; len(r.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d bytes, want %d", ErrInvalidRaster, len(r.Pix), want)
	}
	return nil
}

func (r *Raster) offset(x, y int) int {
	return (y*r.W + x) * r.Channels
}

func (r *Raster) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.W && y < r.H
}

// Intensity returns the luma of the pixel at (x, y).
func (r *Raster) Intensity(x, y int) uint8 {
	off := r.offset(x, y)
	if r.Channels == 1 {
		return r.Pix[off]
	}
	cr, cg, cb := uint32(r.Pix[off]), uint32(r.Pix[off+1]), uint32(r.Pix[off+2])
	return uint8((cr*299 + cg*587 + cb*114 + 500) / 1000)
}

// RGB returns the colour at (x, y). Intensity rasters are grey.
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	off := r.offset(x, y)
	if r.Channels == 1 {
		v := r.Pix[off]
		return v, v, v
	}
	return r.Pix[off], r.Pix[off+1], r.Pix[off+2]
}

// MeanIntensity is the average luma over the whole raster.
func (r *Raster) MeanIntensity() float64 {
	vals := make([]float64, 0, r.W*r.H)
	for y := range r.H {
		for x := range r.W {
			vals = append(vals, float64(r.Intensity(x, y)))
		}
	}
	return stat.Mean(vals, nil)
}

// Image returns the raster as an image.Image so it can be handed to the
// palette extractors.
func (r *Raster) Image() image.Image {
	if r.Channels == 1 {
		return &image.Gray{Pix: r.Pix, Stride: r.W, Rect: image.Rect(0, 0, r.W, r.H)}
	}
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for i := range r.W * r.H {
		img.Pix[i*4] = r.Pix[i*3]
		img.Pix[i*4+1] = r.Pix[i*3+1]
		img.Pix[i*4+2] = r.Pix[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}
