package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the bitmap
	WrapClamp                  // Clamp to edge
)

// Bitmap is an indexed-color image used both as a texture and as a 2D
// sprite. UV (0,0) is the top-left texel.
type Bitmap struct {
	Width  int
	Height int
	Pixels []uint8 // Row-major palette indices
	WrapU  WrapMode
	WrapV  WrapMode
}

// NewBitmap creates a black bitmap with the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height),
	}
}

// LoadBitmap loads a bitmap from an image file, quantizing it to the
// RGB332 palette. Transparent pixels become AlphaKey.
func LoadBitmap(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bitmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return BitmapFromImage(img), nil
}

// BitmapFromImage quantizes an image.Image into a bitmap.
func BitmapFromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	bmp := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := range bmp.Height {
		for x := range bmp.Width {
			bmp.Pixels[y*bmp.Width+x] = Index(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return bmp
}

// NewCheckerBitmap creates a procedural checkerboard bitmap.
func NewCheckerBitmap(width, height, checkSize int, c1, c2 uint8) *Bitmap {
	bmp := NewBitmap(width, height)
	checkSize = max(checkSize, 1)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				bmp.Pixels[y*width+x] = c1
			} else {
				bmp.Pixels[y*width+x] = c2
			}
		}
	}
	return bmp
}

// SetPixel sets a texel.
func (b *Bitmap) SetPixel(x, y int, index uint8) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Pixels[y*b.Width+x] = index
}

// GetPixel returns the texel at (x, y) with bounds checking.
func (b *Bitmap) GetPixel(x, y int) uint8 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return AlphaKey
	}
	return b.Pixels[y*b.Width+x]
}

// Sample returns the nearest texel at UV coordinates (0-1 range).
func (b *Bitmap) Sample(u, v float64) uint8 {
	if b.Width == 0 || b.Height == 0 {
		return AlphaKey
	}
	u = wrapCoord(u, b.WrapU)
	v = wrapCoord(v, b.WrapV)

	x := max(0, min(int(u*float64(b.Width)), b.Width-1))
	y := max(0, min(int(v*float64(b.Height)), b.Height-1))
	return b.Pixels[y*b.Width+x]
}

// wrapCoord applies the wrap mode to a coordinate. NaN and infinities map
// to 0.
func wrapCoord(coord float64, mode WrapMode) float64 {
	if math.IsNaN(coord) || math.IsInf(coord, 0) {
		return 0
	}
	switch mode {
	case WrapClamp:
		return math.Max(0, math.Min(1, coord))
	default:
		return coord - math.Floor(coord) // fmod to [0,1)
	}
}
