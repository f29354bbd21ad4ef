// skyfish - a flying fish in a fenced field, software rendered
//
// Runs in the terminal (half-block cells), in a desktop window, or headless
// writing PNG frames.
//
// Controls:
//
//	Arrows/WASD - Steer (left/right turns, up climbs, down dives)
//	Tab         - Next scene
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/skyfish/internal/assets"
	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/game"
	"github.com/taigrr/skyfish/internal/input"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/internal/scene"
	"github.com/taigrr/skyfish/internal/window"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

var (
	exportCube = flag.String("export-cube", "", "Write the unit cube as a binary .mesh file and exit")
	saveConfig = flag.Bool("save-config", false, "Write the effective config to the user config file and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "skyfish - software rendered flight\n\n")
		fmt.Fprintf(os.Stderr, "Usage: skyfish [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Arrows/WASD - Steer\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Next scene\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	config.ParseFlags()

	if *exportCube != "" {
		if err := writeCube(*exportCube); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *saveConfig {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	if err := run(cfg); err != nil {
		logger.Error("fatal", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	opts := logger.Options{Level: cfg.Logging.Level}
	if cfg.Graphics.Mode != config.ModeTerminal {
		// The terminal front end owns the screen, so it only logs to file
		opts.Console = os.Stderr
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.Info("starting", zap.String("mode", cfg.Graphics.Mode), zap.String("scene", cfg.Game.StartScene))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		return err
	}
	defer a.destroy()

	switch cfg.Graphics.Mode {
	case config.ModeWindow:
		return window.Run(a.mgr, a.r, a.pad, window.Options{
			Title:   "skyfish",
			Scale:   cfg.Graphics.WindowScale,
			TPS:     cfg.Graphics.FPSLimit,
			ShowFPS: cfg.Game.ShowFPS,
		})
	case config.ModeHeadless:
		_, err := runHeadless(ctx, a, cfg.Capture)
		return err
	default:
		return runTerminal(ctx, a)
	}
}

// app ties the scenes to one rasterizer and input pad.
type app struct {
	cfg  *config.Config
	pack *assets.Pack
	pad  *input.Pad
	mgr  *scene.Manager
	r    *render.Rasterizer
}

func newApp(cfg *config.Config, width, height int) (*app, error) {
	pack, err := assets.Open(cfg.Assets.Manifest)
	if err != nil {
		return nil, fmt.Errorf("open assets: %w", err)
	}

	a := &app{
		cfg:  cfg,
		pack: pack,
		pad:  input.NewPad(),
	}
	a.mgr = scene.NewManager(&scene.Context{
		Assets: pack,
		Input:  a.pad,
		Config: cfg,
	})
	for _, s := range []scene.Scene{game.NewStageScene(), game.NewCrateScene()} {
		if err := a.mgr.Register(s); err != nil {
			a.destroy()
			return nil, err
		}
	}
	if err := a.mgr.Change(cfg.Game.StartScene); err != nil {
		a.destroy()
		return nil, err
	}

	// Scenes install their own cameras when they draw
	a.r = render.NewRasterizer(nil, render.NewFramebuffer(width, height))
	a.r.Buffer().Limit = cfg.Render.TriangleLimit
	a.r.DisableBackfaceCulling = cfg.Render.DisableCulling
	return a, nil
}

// frame advances the active scene by dt and renders it.
func (a *app) frame(dt float64) error {
	a.pad.Update(dt)
	if err := a.mgr.Update(dt); err != nil {
		return err
	}
	a.mgr.Draw(a.r)
	return nil
}

func (a *app) destroy() {
	a.mgr.Destroy()
	a.pack.Destroy()
}

func writeCube(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := models.WriteMesh(f, models.NewCube(1)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
