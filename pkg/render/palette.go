package render

import (
	"image/color"
	"math"
)

// MaxDarkness is the number of darkening steps. Level 0 leaves a color
// untouched and level MaxDarkness maps every color to black.
const MaxDarkness = 16

// AlphaKey is the color index treated as transparent in bitmaps (magenta).
const AlphaKey uint8 = 0b111_000_11

// Common color indices.
const (
	IndexBlack uint8 = 0b000_000_00
	IndexWhite uint8 = 0b111_111_11
	IndexGray  uint8 = 0b100_100_10
	IndexRed   uint8 = 0b111_000_00
	IndexGreen uint8 = 0b000_111_00
	IndexBlue  uint8 = 0b000_000_11
	IndexSky   uint8 = 0b011_101_11
	IndexNight uint8 = 0b000_001_01
	IndexGrass uint8 = 0b001_100_00
	IndexRoad  uint8 = 0b010_010_01
)

// Palette maps 8-bit color indices to RGBA colors.
type Palette [256]color.RGBA

// DefaultPalette is the RGB332 palette every framebuffer uses unless a
// presenter supplies another one.
var DefaultPalette = RGB332()

// darkTable[level][index] is index darkened by level steps.
var darkTable = buildDarkTable()

// RGB332 builds the palette where an index holds 3 bits of red, 3 of
// green and 2 of blue.
func RGB332() *Palette {
	var p Palette
	for i := range 256 {
		r := i >> 5 & 0b111
		g := i >> 2 & 0b111
		b := i & 0b11
		p[i] = color.RGBA{
			R: uint8(r * 255 / 7),
			G: uint8(g * 255 / 7),
			B: uint8(b * 255 / 3),
			A: 255,
		}
	}
	return &p
}

// Index quantizes a color to its nearest RGB332 index. Colors with less
// than half alpha map to AlphaKey.
func Index(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	if a < 0x8000 {
		return AlphaKey
	}
	return IndexRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// IndexRGB quantizes 8-bit channels to an RGB332 index.
func IndexRGB(r, g, b uint8) uint8 {
	ri := (uint16(r)*7 + 127) / 255
	gi := (uint16(g)*7 + 127) / 255
	bi := (uint16(b)*3 + 127) / 255
	return uint8(ri<<5 | gi<<2 | bi)
}

// Color returns the RGBA color for an index.
func (p *Palette) Color(i uint8) color.RGBA {
	return p[i]
}

// Darken returns index darkened by level steps. Levels are clamped to
// [0, MaxDarkness].
func Darken(index uint8, level int) uint8 {
	if level <= 0 {
		return index
	}
	if level >= MaxDarkness {
		return IndexBlack
	}
	return darkTable[level][index]
}

func buildDarkTable() *[MaxDarkness + 1][256]uint8 {
	var t [MaxDarkness + 1][256]uint8
	for level := range MaxDarkness + 1 {
		k := 1 - float64(level)/MaxDarkness
		for i := range 256 {
			r := float64(i>>5&0b111) * k
			g := float64(i>>2&0b111) * k
			b := float64(i&0b11) * k
			t[level][i] = uint8(math.Round(r))<<5 | uint8(math.Round(g))<<2 | uint8(math.Round(b))
		}
	}
	return &t
}

// Darkness describes distance fog: geometry fades to black between Near
// and Far.
type Darkness struct {
	Enabled bool
	Near    float64
	Far     float64
}

// Level maps a camera distance to a darkening level in [0, MaxDarkness].
// Distances at or below Near give 0, at or beyond Far give MaxDarkness and
// the range between is linear.
func (d Darkness) Level(dist float64) float64 {
	if !d.Enabled || dist <= d.Near {
		return 0
	}
	if dist >= d.Far || d.Far <= d.Near {
		return MaxDarkness
	}
	return (dist - d.Near) / (d.Far - d.Near) * MaxDarkness
}
