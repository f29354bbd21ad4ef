// Package render implements the skyfish software renderer: an indexed-color
// framebuffer, bitmaps, a camera, the per-object transform context, the
// triangle buffer and the scanline rasterizer that flushes it.
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Framebuffer is a fixed-size 2D array of palette indices.
// For terminal output the height is 2x the terminal rows (half-blocks).
type Framebuffer struct {
	Width  int     // Width in pixels
	Height int     // Height in pixels
	Pixels []uint8 // Row-major palette indices
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height),
	}
}

// Clear fills the framebuffer with a single color index.
func (fb *Framebuffer) Clear(index uint8) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = index
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// Darken darkens every pixel by amount steps (see MaxDarkness).
func (fb *Framebuffer) Darken(amount int) {
	if amount <= 0 {
		return
	}
	for i, p := range fb.Pixels {
		fb.Pixels[i] = Darken(p, amount)
	}
}

// SetPixel sets a pixel at (x, y). Out-of-bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, index uint8) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = index
}

// GetPixel returns the index at (x, y), or black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) uint8 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return IndexBlack
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, index uint8) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, fb.Width), min(y+h, fb.Height)
	for py := y0; py < y1; py++ {
		row := fb.Pixels[py*fb.Width:]
		for px := x0; px < x1; px++ {
			row[px] = index
		}
	}
}

// DrawBitmap blits bmp with its top-left corner at (x, y), skipping
// AlphaKey texels. flip mirrors the bitmap horizontally.
func (fb *Framebuffer) DrawBitmap(bmp *Bitmap, x, y int, flip bool) {
	if bmp == nil {
		return
	}
	for by := range bmp.Height {
		py := y + by
		if py < 0 || py >= fb.Height {
			continue
		}
		for bx := range bmp.Width {
			px := x + bx
			if px < 0 || px >= fb.Width {
				continue
			}
			sx := bx
			if flip {
				sx = bmp.Width - 1 - bx
			}
			c := bmp.Pixels[by*bmp.Width+sx]
			if c == AlphaKey {
				continue
			}
			fb.Pixels[py*fb.Width+px] = c
		}
	}
}

// ToImage converts the framebuffer to an image.RGBA through the palette.
// A nil palette selects DefaultPalette.
func (fb *Framebuffer) ToImage(p *Palette) *image.RGBA {
	if p == nil {
		p = DefaultPalette
	}
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, idx := range fb.Pixels {
		c := p[idx]
		o := i * 4
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string, p *Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage(p)); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
