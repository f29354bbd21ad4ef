package render

import (
	"image/color"
	"math"
	"path/filepath"
	"testing"
)

func TestRGB332Palette(t *testing.T) {
	p := RGB332()
	tests := []struct {
		index uint8
		want  color.RGBA
	}{
		{IndexBlack, color.RGBA{0, 0, 0, 255}},
		{IndexWhite, color.RGBA{255, 255, 255, 255}},
		{IndexRed, color.RGBA{255, 0, 0, 255}},
		{IndexBlue, color.RGBA{0, 0, 255, 255}},
		{AlphaKey, color.RGBA{255, 0, 255, 255}},
	}
	for _, tc := range tests {
		if got := p.Color(tc.index); got != tc.want {
			t.Errorf("Color(%08b) = %v, want %v", tc.index, got, tc.want)
		}
	}
}

func TestIndexQuantize(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"white", color.RGBA{255, 255, 255, 255}, IndexWhite},
		{"black", color.RGBA{0, 0, 0, 255}, IndexBlack},
		{"magenta is the key", color.RGBA{255, 0, 255, 255}, AlphaKey},
		{"transparent", color.RGBA{10, 200, 30, 0}, AlphaKey},
		{"round trip", DefaultPalette.Color(IndexSky), IndexSky},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Index(tc.c); got != tc.want {
				t.Errorf("Index(%v) = %08b, want %08b", tc.c, got, tc.want)
			}
		})
	}
}

func TestDarkenClamps(t *testing.T) {
	if Darken(IndexWhite, -3) != IndexWhite {
		t.Error("negative level must not darken")
	}
	if Darken(IndexWhite, MaxDarkness+5) != IndexBlack {
		t.Error("levels past the maximum must be black")
	}
	// Darkening never brightens a channel
	for i := range 256 {
		for level := range MaxDarkness + 1 {
			d := Darken(uint8(i), level)
			if d>>5 > uint8(i)>>5 || d>>2&7 > uint8(i)>>2&7 || d&3 > uint8(i)&3 {
				t.Fatalf("Darken(%08b, %d) = %08b brightens", i, level, d)
			}
		}
	}
}

func TestFramebufferDrawBitmap(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	fb.Clear(IndexBlack)

	bmp := NewBitmap(2, 1)
	bmp.SetPixel(0, 0, IndexRed)
	bmp.SetPixel(1, 0, AlphaKey)

	fb.DrawBitmap(bmp, 0, 0, false)
	if fb.GetPixel(0, 0) != IndexRed || fb.GetPixel(1, 0) != IndexBlack {
		t.Errorf("unflipped row = %v", fb.Pixels[:4])
	}

	fb.DrawBitmap(bmp, 2, 1, true)
	if fb.GetPixel(2, 1) != IndexBlack || fb.GetPixel(3, 1) != IndexRed {
		t.Errorf("flipped row = %v", fb.Pixels[4:])
	}

	// Clipped at the edges without panicking
	fb.DrawBitmap(bmp, -1, -1, false)
	fb.DrawBitmap(bmp, 3, 1, false)
	fb.DrawBitmap(nil, 0, 0, false)
}

func TestFramebufferDrawRect(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.DrawRect(-2, 1, 4, 10, IndexGreen)

	for y := range 4 {
		for x := range 4 {
			want := IndexBlack
			if x < 2 && y >= 1 {
				want = IndexGreen
			}
			if got := fb.GetPixel(x, y); got != want {
				t.Errorf("(%d,%d) = %08b, want %08b", x, y, got, want)
			}
		}
	}
}

func TestFramebufferToImage(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.SetPixel(0, 0, IndexWhite)
	fb.SetPixel(1, 0, IndexRed)
	fb.SetPixel(5, 5, IndexRed) // ignored

	img := fb.ToImage(nil)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 1 = %v", got)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path, nil); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	bmp, err := LoadBitmap(path)
	if err != nil {
		t.Fatalf("LoadBitmap: %v", err)
	}
	if bmp.GetPixel(0, 0) != IndexWhite || bmp.GetPixel(1, 0) != IndexRed {
		t.Errorf("reloaded pixels = %v", bmp.Pixels)
	}
}

func TestBitmapSample(t *testing.T) {
	bmp := NewCheckerBitmap(4, 4, 2, IndexWhite, IndexBlack)

	tests := []struct {
		name string
		u, v float64
		want uint8
	}{
		{"top left", 0, 0, IndexWhite},
		{"top right", 0.9, 0, IndexBlack},
		{"bottom right", 0.9, 0.9, IndexWhite},
		{"wraps past one", 1.1, 0.1, IndexWhite},
		{"wraps negative", -0.1, 0.1, IndexBlack},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bmp.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v,%v) = %08b, want %08b", tc.u, tc.v, got, tc.want)
			}
		})
	}

	bmp.WrapU = WrapClamp
	if got := bmp.Sample(1.1, 0.1); got != IndexBlack {
		t.Errorf("clamped Sample = %08b, want right edge", got)
	}
	if got := NewBitmap(0, 0).Sample(0.5, 0.5); got != AlphaKey {
		t.Errorf("empty bitmap Sample = %08b, want AlphaKey", got)
	}
}

func TestBitmapSampleNonFinite(t *testing.T) {
	bmp := NewBitmap(2, 2)
	bmp.Pixels = []uint8{IndexWhite, IndexBlack, IndexBlack, IndexWhite}

	coords := []struct {
		name string
		u, v float64
	}{
		{"nan", math.NaN(), math.NaN()},
		{"inf", math.Inf(1), math.Inf(-1)},
		{"mixed", 0.75, math.NaN()},
	}
	for _, wrap := range []WrapMode{WrapRepeat, WrapClamp} {
		bmp.WrapU, bmp.WrapV = wrap, wrap
		for _, c := range coords {
			t.Run(c.name, func(t *testing.T) {
				got := bmp.Sample(c.u, c.v)
				if got != IndexWhite && got != IndexBlack {
					t.Errorf("Sample(%v, %v) = %08b, want a texel", c.u, c.v, got)
				}
			})
		}
	}
	if got := bmp.Sample(math.NaN(), math.NaN()); got != IndexWhite {
		t.Errorf("Sample(NaN, NaN) = %08b, want texel (0,0)", got)
	}
}
