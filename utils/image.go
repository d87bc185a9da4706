package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ReadImage decodes a PNG, JPEG or WEBP file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(errors.New("could not open image file"), err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Join(errors.New("could not decode image"), err)
	}
	return img, nil
}

// ResizeMax scales img down so its longest side is at most maxSide pixels.
// Smaller images are returned unchanged.
func ResizeMax(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if maxSide <= 0 || longest <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(longest)
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	Logger().Debug("resized image", "from", b.Size(), "to", dst.Bounds().Size())
	return dst
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Join(errors.New("could not create output file"), err)
	}
	defer f.Close()
	return png.Encode(f, img)
}

// PaletteImage renders the palette as a strip of square swatches.
func PaletteImage(palette []colorful.Color, tileSize int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		draw.Draw(img, tile, image.NewUniform(color.RGBA{R: r, G: g, B: b, A: 255}), image.Point{}, draw.Src)
	}
	return img, nil
}

// SavePalette writes the palette swatch strip to filename as PNG.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	img, err := PaletteImage(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
