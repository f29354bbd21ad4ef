package game

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/render"
)

// Follow is a chase camera that trails the player on critically damped
// springs.
type Follow struct {
	Distance float64 // behind the player
	Height   float64 // above the player
	Pitch    float64 // base look-down angle
	MinY     float64 // lowest eye height

	spring    harmonica.Spring
	pos, vel  math3d.Vec3
	yaw, yawV float64
	snapped   bool
}

// NewFollow creates a chase camera whose springs step at fps.
func NewFollow(fps int) *Follow {
	return &Follow{
		Distance: 4,
		Height:   1.5,
		Pitch:    0.25,
		MinY:     FloorY + 0.5,
		// Frequency 6, damping 1: critically damped, no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Reset makes the next Update jump straight to its target.
func (f *Follow) Reset() {
	f.snapped = false
}

func (f *Follow) target(p *Player) math3d.Vec3 {
	eye := p.Pos.Sub(p.Heading().Scale(f.Distance)).Add(math3d.V3(0, f.Height, 0))
	eye.Y = max(eye.Y, f.MinY)
	return eye
}

// Update moves the camera toward its place behind p by dt frames and aims
// it along the player's heading. The virtual position is the player
// itself, so level of detail follows the fish rather than the eye.
func (f *Follow) Update(cam *render.Camera, p *Player, dt float64) {
	goal := f.target(p)

	if !f.snapped {
		f.pos, f.vel = goal, math3d.Zero3()
		f.yaw, f.yawV = p.Angle.Y, 0
		f.snapped = true
	} else {
		for range max(1, int(math.Round(dt))) {
			f.pos.X, f.vel.X = f.spring.Update(f.pos.X, f.vel.X, goal.X)
			f.pos.Y, f.vel.Y = f.spring.Update(f.pos.Y, f.vel.Y, goal.Y)
			f.pos.Z, f.vel.Z = f.spring.Update(f.pos.Z, f.vel.Z, goal.Z)
			f.yaw, f.yawV = f.spring.Update(f.yaw, f.yawV, p.Angle.Y)
		}
	}

	cam.Position = f.pos
	cam.VPos = p.Pos
	cam.SetRotation(f.Pitch+p.Angle.X*0.25, f.yaw, 0)
}
