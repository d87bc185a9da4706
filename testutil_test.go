package stitchbuilder

import "image"

// grayRaster returns a w x h white raster with the listed pixels set to 0.
func grayRaster(w, h int, ink ...image.Point) *Raster {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = 255
	}
	for _, p := range ink {
		pix[p.Y*w+p.X] = 0
	}
	return NewGrayRaster(w, h, pix)
}

// rgbRaster returns a w x h white RGB raster.
func rgbRaster(w, h int) *Raster {
	pix := make([]uint8, w*h*3)
	for i := range pix {
		pix[i] = 255
	}
	return NewRGBRaster(w, h, pix)
}

func (r *Raster) fillRect(rect image.Rectangle, cr, cg, cb uint8) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			off := r.offset(x, y)
			r.Pix[off], r.Pix[off+1], r.Pix[off+2] = cr, cg, cb
		}
	}
}

func rectPoints(rect image.Rectangle) []image.Point {
	var pts []image.Point
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}

func pts(xy ...float64) []Point {
	out := make([]Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, Point{xy[i], xy[i+1]})
	}
	return out
}

func kinds(cmds []Command) []CommandKind {
	out := make([]CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}
