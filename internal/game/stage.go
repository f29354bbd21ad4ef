package game

import (
	"errors"
	"math"

	"github.com/taigrr/skyfish/internal/assets"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// Floor layout. Tiles are laid out around the camera; the road runs along
// the tile column starting at x = 0.
const (
	FloorY    = -5.0
	TileSize  = 10.0
	TileCount = 8
)

// Fence layout: a square of Repeat panels per side, with a two-panel gate
// over the road on the front and back sides.
const (
	FenceMin    = -25.0
	FencePanel  = 5.0
	FenceRepeat = 10
	FenceHeight = 5.0
	FenceMax    = FenceMin + FencePanel*FenceRepeat
	GateStart   = 0.0
	GateEnd     = 10.0
)

// Apocalypse timing, per 60 Hz frame.
const (
	SkyDarkFrames  = 120.0
	FenceSinkRate  = 0.02
	DecorationRise = 0.1
	DecorationStep = 0.01
	DecorationCeil = 20.0
)

// Background scroll: one full turn scrolls this many pixels.
const backgroundTurn = 1024

const (
	moonX = 480
	moonY = 10
)

// Stage is the fenced field: floor, fence, scrolling background and
// decorations. Leaving through a gate starts the apocalypse: decorations
// float away, the sky goes dark and the fence sinks into the ground.
type Stage struct {
	grass, road, fence      *render.Bitmap
	forest, mountains, moon *render.Bitmap

	Decorations []*Decoration

	apocalypse   bool
	skyDarkTimer float64
	fenceHeight  float64

	log *zap.Logger
}

// NewStage loads the stage bitmaps from pack.
func NewStage(pack *assets.Pack, decorations []*Decoration) (*Stage, error) {
	s := &Stage{
		Decorations: decorations,
		fenceHeight: FenceHeight,
		log:         logger.Named("stage"),
	}

	var errs []error
	load := func(dst **render.Bitmap, name string) {
		bmp, err := pack.Bitmap(name)
		errs = append(errs, err)
		*dst = bmp
	}
	load(&s.grass, "grass")
	load(&s.road, "road")
	load(&s.fence, "fence")
	load(&s.forest, "forest")
	load(&s.mountains, "mountains")
	load(&s.moon, "moon")
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// End starts the apocalypse.
func (s *Stage) End() {
	if !s.apocalypse {
		s.apocalypse = true
		s.log.Info("apocalypse started", zap.Int("decorations", len(s.Decorations)))
	}
}

// Apocalypse reports whether the apocalypse has begun.
func (s *Stage) Apocalypse() bool { return s.apocalypse }

// WorldEnded reports whether the apocalypse has carried every decoration
// away.
func (s *Stage) WorldEnded() bool {
	return s.apocalypse && len(s.Decorations) == 0
}

// FenceHeight returns the current fence height.
func (s *Stage) FenceHeight() float64 { return s.fenceHeight }

// SkyDarkness returns the sky darkening timer in frames.
func (s *Stage) SkyDarkness() float64 { return s.skyDarkTimer }

// Update advances the apocalypse sequence. It does nothing before End.
func (s *Stage) Update(dt float64) {
	if !s.apocalypse {
		return
	}

	if len(s.Decorations) == 0 {
		if s.skyDarkTimer < SkyDarkFrames {
			s.skyDarkTimer += dt
		} else if s.fenceHeight > 0 {
			s.fenceHeight -= FenceSinkRate * dt
		}
		return
	}

	gone := 0
	for i, d := range s.Decorations {
		d.Pos.Y += (DecorationRise + DecorationStep*float64(i)) * dt
		if d.Pos.Y > DecorationCeil {
			gone++
		}
	}
	if gone == len(s.Decorations) {
		s.Decorations = nil
		s.log.Info("decorations gone")
	}
}

// Collide pushes the player out of solid decorations and keeps it inside
// the fence. A player that leaves through a gate ends the stage. Nothing
// collides once the apocalypse has begun.
func (s *Stage) Collide(p *Player) error {
	if s.apocalypse {
		return nil
	}

	for _, d := range s.Decorations {
		if _, err := d.Collide(p); err != nil {
			return err
		}
	}

	if s.fenceCollision(p) {
		s.End()
	}
	return nil
}

// fenceCollision clamps the player to the fenced square and reports
// whether it has passed through a gate.
func (s *Stage) fenceCollision(p *Player) (escaped bool) {
	r := p.Radius
	pos := &p.Pos

	inGate := pos.X-r >= GateStart && pos.X+r <= GateEnd
	if inGate && (pos.Z < FenceMin || pos.Z > FenceMax) {
		return true
	}

	pos.X = min(max(pos.X, FenceMin+r), FenceMax-r)
	if !inGate {
		pos.Z = min(max(pos.Z, FenceMin+r), FenceMax-r)
	}
	return false
}

// Draw renders the background, then floor, then fence and decorations.
// The floor is flushed on its own so the buffer only ever holds one layer.
func (s *Stage) Draw(r *render.Rasterizer, dark render.Darkness) error {
	cam := r.Camera()
	s.drawBackground(r, cam)

	s.drawFloor(r, cam)
	r.Flush(cam, dark)
	r.Clear()

	s.drawFence(r, cam)
	for _, d := range s.Decorations {
		if err := d.Draw(r); err != nil {
			return err
		}
	}
	return nil
}

// drawBackground paints the sky layers, scrolled by the camera heading.
func (s *Stage) drawBackground(r *render.Rasterizer, cam *render.Camera) {
	fb := r.Framebuffer()
	fb.Clear(render.IndexNight)

	angle := math.Mod(cam.Yaw, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	posx := -int(angle / (2 * math.Pi) * backgroundTurn)

	top := fb.Height/3 - 40
	for i := range 3 {
		fb.DrawBitmap(s.mountains, posx+i*s.mountains.Width, top, false)
	}

	y := fb.Height/3 + int(cam.Position.Y*3)
	for i := range 6 {
		fb.DrawBitmap(s.forest, posx+i*s.forest.Width, y, false)
	}

	if posx > -backgroundTurn/2 {
		fb.DrawBitmap(s.moon, moonX+posx, moonY, false)
	}

	if s.skyDarkTimer > 0 {
		if s.skyDarkTimer < SkyDarkFrames {
			fb.Darken(int(math.Floor(s.skyDarkTimer / SkyDarkFrames * render.MaxDarkness)))
		} else {
			fb.Clear(render.IndexBlack)
		}
	}
}

// drawFloor lays TileCount+1 tiles square around the camera, subdivided
// more finely near the middle.
func (s *Stage) drawFloor(r *render.Rasterizer, cam *render.Camera) {
	cx := int(math.Floor(cam.Position.X / TileSize))
	cz := int(math.Floor(cam.Position.Z / TileSize))
	sx, sz := cx-TileCount/2, cz-TileCount/2
	ex, ez := sx+TileCount, sz+TileCount

	tr := r.Object()
	for dz := sz; dz <= ez; dz++ {
		for dx := sx; dx <= ex; dx++ {
			if dx == 0 {
				r.Bind(s.road)
			} else {
				r.Bind(s.grass)
			}

			sub := 1
			if abs(dx-cx) <= 2 && abs(dz-cz) <= 2 {
				sub = 2
			}
			if abs(dx-cx) <= 1 && abs(dz-cz) <= 1 {
				sub = 4
			}
			floorTile(r, tr, float64(dx)*TileSize, float64(dz)*TileSize, TileSize, sub)
		}
	}
}

func floorTile(r *render.Rasterizer, tr *render.Transform, x, z, size float64, sub int) {
	step := size / float64(sub)
	uvStep := 1 / float64(sub)
	up := math3d.V3(0, 1, 0)

	for iz := range sub {
		for ix := range sub {
			x0, z0 := x+step*float64(ix), z+step*float64(iz)
			u, v := uvStep*float64(ix), uvStep*float64(iz)

			r.DrawTriangle3D(tr,
				math3d.V3(x0, FloorY, z0), math3d.V3(x0+step, FloorY, z0), math3d.V3(x0+step, FloorY, z0+step),
				math3d.V2(u, v), math3d.V2(u+uvStep, v), math3d.V2(u+uvStep, v+uvStep),
				up)
			r.DrawTriangle3D(tr,
				math3d.V3(x0+step, FloorY, z0+step), math3d.V3(x0, FloorY, z0+step), math3d.V3(x0, FloorY, z0),
				math3d.V2(u+uvStep, v+uvStep), math3d.V2(u, v+uvStep), math3d.V2(u, v),
				up)
		}
	}
}

// drawFence draws the four fence sides facing inward, leaving the gate
// panels open.
func (s *Stage) drawFence(r *render.Rasterizer, cam *render.Camera) {
	h := s.fenceHeight
	if h <= 0 {
		return
	}

	r.Bind(s.fence)
	tr := r.Object()
	for i := range FenceRepeat {
		a := FenceMin + float64(i)*FencePanel

		if i != 5 && i != 6 {
			fencePanel(r, tr, cam, math3d.V3(a, FloorY, FenceMin), math3d.V3(1, 0, 0), h, math3d.V3(0, 0, 1))
			fencePanel(r, tr, cam, math3d.V3(a, FloorY, FenceMax), math3d.V3(1, 0, 0), h, math3d.V3(0, 0, -1))
		}
		fencePanel(r, tr, cam, math3d.V3(FenceMin, FloorY, a), math3d.V3(0, 0, 1), h, math3d.V3(1, 0, 0))
		fencePanel(r, tr, cam, math3d.V3(FenceMax, FloorY, a), math3d.V3(0, 0, 1), h, math3d.V3(-1, 0, 0))
	}
}

// fencePanel draws one panel of width FencePanel from origin along dir,
// subdivided by its distance from the camera's virtual position. The
// texture's top row stays at the top of the panel.
func fencePanel(r *render.Rasterizer, tr *render.Transform, cam *render.Camera, origin, dir math3d.Vec3, h float64, n math3d.Vec3) {
	mid := origin.Add(dir.Scale(FencePanel / 2))
	dist := math.Hypot(cam.VPos.X-mid.X, cam.VPos.Z-mid.Z)

	sub := 1
	if dist < 4*FencePanel {
		sub = 2
	}
	if dist < 2*FencePanel {
		sub = 4
	}

	stepW := FencePanel / float64(sub)
	stepH := h / float64(sub)
	uvStep := 1 / float64(sub)

	for ix := range sub {
		for iy := range sub {
			p0 := origin.Add(dir.Scale(stepW * float64(ix))).Add(math3d.V3(0, stepH*float64(iy), 0))
			p1 := p0.Add(dir.Scale(stepW))
			p2 := p1.Add(math3d.V3(0, stepH, 0))
			p3 := p0.Add(math3d.V3(0, stepH, 0))

			u := uvStep * float64(ix)
			vBottom := 1 - uvStep*float64(iy)
			vTop := vBottom - uvStep

			r.DrawTriangle3D(tr, p0, p1, p2,
				math3d.V2(u, vBottom), math3d.V2(u+uvStep, vBottom), math3d.V2(u+uvStep, vTop), n)
			r.DrawTriangle3D(tr, p2, p3, p0,
				math3d.V2(u+uvStep, vTop), math3d.V2(u, vTop), math3d.V2(u, vBottom), n)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
