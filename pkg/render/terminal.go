package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells through the palette and
// draws them on the screen. A nil palette selects DefaultPalette.
// The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle, p *Palette) {
	if p == nil {
		p = DefaultPalette
	}

	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: p[fb.GetPixel(col, topY)],
					Bg: p[fb.GetPixel(col, botY)],
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}
