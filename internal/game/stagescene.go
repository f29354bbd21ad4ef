package game

import (
	"fmt"
	"math"

	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/internal/scene"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// Scene names.
const (
	StageSceneName = "stage"
	CrateSceneName = "crate"
)

// StartPos is where the fish enters the stage: over the road, facing the
// far gate.
var StartPos = math3d.V3(5, 0, -15)

// StageScene is the flight game: the player, the stage and a chase camera.
type StageScene struct {
	ctx    *scene.Context
	cam    *render.Camera
	follow *Follow
	dark   render.Darkness

	player *Player
	stage  *Stage

	fish    *models.Mesh
	fishTex *render.Bitmap

	log *zap.Logger
}

// NewStageScene creates the stage scene. Init loads its assets.
func NewStageScene() *StageScene {
	return &StageScene{log: logger.Named(StageSceneName)}
}

// Name implements scene.Scene.
func (s *StageScene) Name() string { return StageSceneName }

// Init implements scene.Scene.
func (s *StageScene) Init(ctx *scene.Context) error {
	s.ctx = ctx
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}

	var err error
	if s.fish, err = ctx.Assets.Mesh("fish"); err != nil {
		return err
	}
	if s.fishTex, err = ctx.Assets.Bitmap("fish"); err != nil {
		return err
	}

	s.cam = NewCamera(cfg.Render)
	s.follow = NewFollow(cfg.Graphics.FPSLimit)
	s.dark = render.Darkness{
		Enabled: cfg.Render.Darkness,
		Near:    cfg.Render.DarknessNear,
		Far:     cfg.Render.DarknessFar,
	}

	return s.reset()
}

// reset rebuilds the stage and puts the player back at the start.
func (s *StageScene) reset() error {
	cfg := s.ctx.Config
	if cfg == nil {
		cfg = config.Default()
	}
	decs, err := NewDecorations(s.ctx.Assets, cfg.Game.Decorations)
	if err != nil {
		return err
	}
	if s.stage, err = NewStage(s.ctx.Assets, decs); err != nil {
		return err
	}
	s.player = NewPlayer(StartPos, s.fish, s.fishTex)
	s.follow.Reset()
	s.follow.Update(s.cam, s.player, 0)
	return nil
}

// Player returns the player.
func (s *StageScene) Player() *Player { return s.player }

// Stage returns the stage.
func (s *StageScene) Stage() *Stage { return s.stage }

// Camera returns the scene camera.
func (s *StageScene) Camera() *render.Camera { return s.cam }

// Update implements scene.Scene.
func (s *StageScene) Update(dt float64) error {
	s.player.Update(s.ctx.Input, dt)
	s.stage.Update(dt)
	if err := s.stage.Collide(s.player); err != nil {
		return fmt.Errorf("stage collision: %w", err)
	}
	s.follow.Update(s.cam, s.player, dt)

	if s.stage.WorldEnded() && s.stage.FenceHeight() <= 0 {
		s.log.Info("world ended, restarting")
		return s.reset()
	}
	return nil
}

// Draw implements scene.Scene.
func (s *StageScene) Draw(r *render.Rasterizer) {
	r.SetCamera(s.cam)
	r.ClearDepth()
	r.Clear()

	if err := s.stage.Draw(r, s.dark); err != nil {
		s.log.Error("draw stage", zap.Error(err))
	}
	if err := s.player.Draw(r); err != nil {
		s.log.Error("draw player", zap.Error(err))
	}
	r.Flush(s.cam, s.dark)

	if n := r.Buffer().Dropped(); n > 0 {
		s.log.Debug("triangles dropped", zap.Int("count", n), zap.Int("limit", r.Buffer().Limit))
	}
}

// Destroy implements scene.Scene. Meshes and bitmaps belong to the pack.
func (s *StageScene) Destroy() {
	s.stage = nil
	s.player = nil
}

// OnSwap implements scene.Scene.
func (s *StageScene) OnSwap() {
	s.follow.Reset()
}

// Status implements scene.StatusReporter.
func (s *StageScene) Status() string {
	p := s.player.Pos
	state := "flying"
	if s.stage.Apocalypse() {
		state = "apocalypse"
	}
	return fmt.Sprintf("%s  pos %.1f %.1f %.1f  heading %.0f°",
		state, p.X, p.Y, p.Z, math.Mod(s.player.Angle.Y*180/math.Pi, 360))
}

// NewCamera builds a camera from the render settings.
func NewCamera(rc config.RenderConfig) *render.Camera {
	cam := render.NewCamera()
	cam.FOV = rc.FOV * math.Pi / 180
	cam.Near = rc.Near
	cam.Far = rc.Far
	return cam
}
