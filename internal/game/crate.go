package game

import (
	"fmt"
	"math"

	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/internal/scene"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// CrateBackground is the crate demo's clear color.
const CrateBackground uint8 = 0b101_101_10

// CrateDistance is how far in front of the eye the crate spins.
const CrateDistance = 3.75

// CrateScene spins a textured cube in front of the camera and reports the
// frame rate derived from dt.
type CrateScene struct {
	cam   *render.Camera
	cube  *models.Mesh
	crate *render.Bitmap

	angle float64
	fps   int

	log *zap.Logger
}

// NewCrateScene creates the crate demo scene.
func NewCrateScene() *CrateScene {
	return &CrateScene{log: logger.Named(CrateSceneName)}
}

// Name implements scene.Scene.
func (c *CrateScene) Name() string { return CrateSceneName }

// Init implements scene.Scene.
func (c *CrateScene) Init(ctx *scene.Context) error {
	var err error
	if c.cube, err = ctx.Assets.Mesh("cube"); err != nil {
		return err
	}
	if c.crate, err = ctx.Assets.Bitmap("crate"); err != nil {
		return err
	}

	rc := config.Default().Render
	if ctx.Config != nil {
		rc = ctx.Config.Render
	}
	c.cam = NewCamera(rc)
	return nil
}

// Angle returns the current spin angle.
func (c *CrateScene) Angle() float64 { return c.angle }

// Update implements scene.Scene.
func (c *CrateScene) Update(dt float64) error {
	c.angle += 0.025 * dt
	if dt > 0 {
		c.fps = int(math.Round(60 / dt))
	}
	return nil
}

// Draw implements scene.Scene.
func (c *CrateScene) Draw(r *render.Rasterizer) {
	r.SetCamera(c.cam)
	r.ClearFrame(CrateBackground)
	r.ClearDepth()
	r.Clear()

	tr := render.NewTransform().
		ViewTranslate(0, 0, CrateDistance).
		RotateXYZ(c.angle, c.angle/2, c.angle)

	r.Bind(c.crate)
	if err := r.DrawMesh(tr, c.cube); err != nil {
		c.log.Error("draw crate", zap.Error(err))
	}
	r.Flush(c.cam, render.Darkness{})
}

// Destroy implements scene.Scene.
func (c *CrateScene) Destroy() {}

// OnSwap implements scene.Scene.
func (c *CrateScene) OnSwap() {}

// Status implements scene.StatusReporter.
func (c *CrateScene) Status() string {
	return fmt.Sprintf("FPS: %d", c.fps)
}
