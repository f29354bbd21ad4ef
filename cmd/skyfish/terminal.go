package main

import (
	"context"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/skyfish/internal/input"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/internal/scene"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// runTerminal drives the app in the terminal until Escape, ctrl+c or ctx
// is done. Each cell shows two framebuffer rows.
func runTerminal(ctx context.Context, a *app) error {
	log := logger.Named("terminal")
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	a.r.SetFramebuffer(render.NewFramebuffer(width, height*2))

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown", zap.Error(err))
		}
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Events are applied on the render goroutine
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	fps := newFPSCounter()
	target := time.Second / time.Duration(max(a.cfg.Graphics.FPSLimit, 1))
	last := time.Now()

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					a.r.SetFramebuffer(render.NewFramebuffer(width, height*2))
					log.Debug("resized", zap.Int("cols", width), zap.Int("rows", height))
				case uv.KeyPressEvent:
					switch {
					case ev.MatchString("escape", "ctrl+c"):
						return nil
					case ev.MatchString("tab"):
						if err := a.mgr.ChangeNext(); err != nil {
							return err
						}
					default:
						if dir, ok := keyDirection(ev); ok {
							a.pad.Press(dir)
						}
					}
				case uv.KeyReleaseEvent:
					if dir, ok := keyDirection(uv.KeyPressEvent(ev)); ok {
						a.pad.Release(dir)
					}
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := scene.FrameFactor(now.Sub(last))
		last = now

		if err := a.frame(dt); err != nil {
			return err
		}

		area := uv.Rect(0, 0, width, height)
		a.r.Framebuffer().Draw(term, area, nil)

		status := a.mgr.Status()
		if a.cfg.Game.ShowFPS {
			status = fmt.Sprintf("%.0f FPS  %s", fps.tick(now), status)
		}
		if status != "" {
			uv.NewStyledString(status).Draw(term, uv.Rect(0, height-1, width, 1))
		}

		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

// keyDirection maps arrow and WASD keys to a stick direction.
func keyDirection(ev uv.KeyPressEvent) (input.Direction, bool) {
	switch {
	case ev.MatchString("left", "a"):
		return input.Left, true
	case ev.MatchString("right", "d"):
		return input.Right, true
	case ev.MatchString("up", "w"):
		return input.Up, true
	case ev.MatchString("down", "s"):
		return input.Down, true
	}
	return 0, false
}

// fpsCounter averages the frame rate over one second windows.
type fpsCounter struct {
	frames int
	since  time.Time
	fps    float64
}

func newFPSCounter() *fpsCounter {
	return &fpsCounter{since: time.Now()}
}

func (c *fpsCounter) tick(now time.Time) float64 {
	c.frames++
	if elapsed := now.Sub(c.since); elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.since = now
	}
	return c.fps
}
