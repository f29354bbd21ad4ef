// Package window presents the game in a desktop window through ebiten.
// Frames are rendered into the indexed framebuffer as usual and uploaded
// as one RGBA image per draw.
package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/taigrr/skyfish/internal/input"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/internal/scene"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// Options configures the window.
type Options struct {
	Title   string
	Scale   int // window pixels per framebuffer pixel
	TPS     int // updates per second
	Palette *render.Palette
	ShowFPS bool
}

type game struct {
	mgr  *scene.Manager
	r    *render.Rasterizer
	pad  *input.Pad
	opts Options
	dt   float64

	img *ebiten.Image
	pix []byte

	log *zap.Logger
}

// Run opens the window and drives mgr until the window closes or Escape
// is pressed. It blocks.
func Run(mgr *scene.Manager, r *render.Rasterizer, pad *input.Pad, opts Options) error {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.TPS < 1 {
		opts.TPS = 60
	}
	if opts.Palette == nil {
		opts.Palette = render.DefaultPalette
	}

	g := &game{
		mgr:  mgr,
		r:    r,
		pad:  pad,
		opts: opts,
		dt:   scene.FrameFactor(time.Second / time.Duration(opts.TPS)),
		log:  logger.Named("window"),
	}

	fb := r.Framebuffer()
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(fb.Width*opts.Scale, fb.Height*opts.Scale)
	ebiten.SetTPS(opts.TPS)
	g.log.Info("window opened",
		zap.Int("width", fb.Width), zap.Int("height", fb.Height),
		zap.Int("scale", opts.Scale), zap.Int("tps", opts.TPS))

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if err := g.mgr.ChangeNext(); err != nil {
			return err
		}
	}

	g.pad.Set(StickFromKeys(ebiten.IsKeyPressed))
	g.pad.Update(g.dt)

	if err := g.mgr.Update(g.dt); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.r.Framebuffer()
	if g.img == nil || len(g.pix) != fb.Width*fb.Height*4 {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Width, fb.Height)
		g.pix = make([]byte, fb.Width*fb.Height*4)
	}

	g.mgr.Draw(g.r)

	for i, idx := range fb.Pixels {
		c := g.opts.Palette[idx]
		j := i * 4
		g.pix[j+0] = c.R
		g.pix[j+1] = c.G
		g.pix[j+2] = c.B
		g.pix[j+3] = 0xFF
	}
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)

	status := g.mgr.Status()
	if g.opts.ShowFPS {
		status = fmt.Sprintf("%.0f FPS  %s", ebiten.ActualFPS(), status)
	}
	if status != "" {
		ebitenutil.DebugPrint(screen, status)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	fb := g.r.Framebuffer()
	return fb.Width, fb.Height
}

// StickFromKeys reads the arrow keys and WASD into a stick value. Opposite
// keys cancel.
func StickFromKeys(pressed func(ebiten.Key) bool) math3d.Vec2 {
	held := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if pressed(k) {
				return true
			}
		}
		return false
	}

	var v math3d.Vec2
	if held(ebiten.KeyArrowLeft, ebiten.KeyA) {
		v.X--
	}
	if held(ebiten.KeyArrowRight, ebiten.KeyD) {
		v.X++
	}
	if held(ebiten.KeyArrowUp, ebiten.KeyW) {
		v.Y--
	}
	if held(ebiten.KeyArrowDown, ebiten.KeyS) {
		v.Y++
	}
	return v
}
