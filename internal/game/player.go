// Package game implements the skyfish scenes: the fenced stage the fish
// flies around and the spinning crate demo.
package game

import (
	"math"

	"github.com/taigrr/skyfish/internal/input"
	"github.com/taigrr/skyfish/pkg/collision"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
)

// Player tuning, per 60 Hz frame.
const (
	PlayerRadius = 0.5
	MaxSpeed     = 0.1
	MaxTurnRate  = 0.025 // yaw
	MaxTiltRate  = 0.05  // pitch and bank
	Acceleration = 0.01
	AngularAccel = 0.05
	MaxTilt      = math.Pi / 4
)

// Vertical flight limits.
const (
	UpperLimit = 9.0
	LowerLimit = -4.0
)

const (
	stickDeadZone = 0.1
	settledAngle  = 0.001
)

// Player is the fish. Speeds approach their targets linearly and never
// overshoot. Angle.X is pitch (positive noses down), Angle.Y heading and
// Angle.Z bank.
type Player struct {
	collision.Body

	Speed    math3d.Vec3
	Target   math3d.Vec3
	MaxSpeed math3d.Vec3
	Acc      math3d.Vec3

	Angle       math3d.Vec3
	AngleSpeed  math3d.Vec3
	AngleTarget math3d.Vec3
	AngleMax    math3d.Vec3
	AngleAcc    math3d.Vec3

	mesh *models.Mesh
	tex  *render.Bitmap
}

// NewPlayer creates a player at rest at pos, heading +Z.
func NewPlayer(pos math3d.Vec3, mesh *models.Mesh, tex *render.Bitmap) *Player {
	return &Player{
		Body:     collision.Body{Pos: pos, Radius: PlayerRadius},
		MaxSpeed: math3d.V3(MaxSpeed, MaxSpeed, MaxSpeed),
		Acc:      math3d.V3(Acceleration, Acceleration, Acceleration),
		AngleMax: math3d.V3(MaxTiltRate, MaxTurnRate, MaxTiltRate),
		AngleAcc: math3d.V3(AngularAccel, AngularAccel, AngularAccel),
		mesh:     mesh,
		tex:      tex,
	}
}

// Heading returns the unit direction of travel in the XZ plane.
func (p *Player) Heading() math3d.Vec3 {
	return math3d.V3(math.Sin(p.Angle.Y), 0, math.Cos(p.Angle.Y))
}

// Update reads the stick and advances the player by dt frames.
func (p *Player) Update(stick input.Stick, dt float64) {
	var s math3d.Vec2
	if stick != nil {
		s = stick.Stick()
	}
	p.control(s)
	p.limit()
	p.move(dt)
	p.rotate(dt)
}

// control sets the speed and angle targets from the stick. A released
// axis eases its tilt back to level.
func (p *Player) control(stick math3d.Vec2) {
	p.AngleTarget = math3d.Zero3()
	p.Target.Y = 0

	if math.Abs(stick.X) > stickDeadZone {
		p.AngleTarget.Y = stick.X * p.AngleMax.Y
		p.AngleTarget.Z = stick.X * p.AngleMax.Z
	} else if math.Abs(p.Angle.Z) > settledAngle {
		p.AngleTarget.Z = -2 * (p.Angle.Z / (math.Pi / 2)) * p.AngleMax.Z
	}

	// Stick down dives: nose down and sink
	if math.Abs(stick.Y) > stickDeadZone {
		p.AngleTarget.X = stick.Y * p.AngleMax.X
		p.Target.Y = -p.MaxSpeed.Y * stick.Y
	} else if math.Abs(p.Angle.X) > settledAngle {
		p.AngleTarget.X = -2 * (p.Angle.X / (math.Pi / 2)) * p.AngleMax.X
	}

	p.limitAngle()

	p.Target.X = math.Sin(p.Angle.Y) * p.MaxSpeed.X
	p.Target.Z = math.Cos(p.Angle.Y) * p.MaxSpeed.Z
}

// limitAngle keeps pitch and bank within ±MaxTilt.
func (p *Player) limitAngle() {
	if p.Angle.X > MaxTilt {
		p.Angle.X = MaxTilt
		p.AngleSpeed.X = 0
	} else if p.Angle.X < -MaxTilt {
		p.Angle.X = -MaxTilt
		p.AngleSpeed.X = 0
	}

	if p.Angle.Z > MaxTilt {
		p.Angle.Z = MaxTilt
		p.AngleSpeed.Z = 0
	} else if p.Angle.Z < -MaxTilt {
		p.Angle.Z = -MaxTilt
		p.AngleSpeed.Z = 0
	}
}

// limit keeps the player between the floor and the ceiling.
func (p *Player) limit() {
	if p.Speed.Y > 0 && p.Pos.Y > UpperLimit {
		p.Pos.Y = UpperLimit
		p.AngleTarget.X = 0
		p.Speed.Y = 0
	} else if p.Speed.Y < 0 && p.Pos.Y < LowerLimit {
		p.Pos.Y = LowerLimit
		p.AngleTarget.X = 0
		p.Speed.Y = 0
	}
}

func (p *Player) move(dt float64) {
	p.Speed.X = approach(p.Speed.X, p.Target.X, p.Acc.X, dt)
	p.Speed.Y = approach(p.Speed.Y, p.Target.Y, p.Acc.Y, dt)
	p.Speed.Z = approach(p.Speed.Z, p.Target.Z, p.Acc.Z, dt)

	p.Pos = p.Pos.Add(p.Speed.Scale(dt))
}

func (p *Player) rotate(dt float64) {
	p.AngleSpeed.X = approach(p.AngleSpeed.X, p.AngleTarget.X, p.AngleAcc.X, dt)
	p.AngleSpeed.Y = approach(p.AngleSpeed.Y, p.AngleTarget.Y, p.AngleAcc.Y, dt)
	p.AngleSpeed.Z = approach(p.AngleSpeed.Z, p.AngleTarget.Z, p.AngleAcc.Z, dt)

	p.Angle = p.Angle.Add(p.AngleSpeed.Scale(dt))
}

// approach moves v toward target by acc*dt without passing it.
func approach(v, target, acc, dt float64) float64 {
	if target > v {
		return min(v+acc*dt, target)
	}
	if target < v {
		return max(v-acc*dt, target)
	}
	return v
}

// Orientation returns the model rotation: bank, then pitch, then heading.
// A positive bank dips the right side.
func (p *Player) Orientation() math3d.Mat4 {
	return math3d.RotateY(p.Angle.Y).
		Mul(math3d.RotateX(p.Angle.X)).
		Mul(math3d.RotateZ(-p.Angle.Z))
}

// Draw submits the fish mesh.
func (p *Player) Draw(r *render.Rasterizer) error {
	rot := math3d.EulerXYZ(p.Orientation())
	tr := r.Object().
		Translate(p.Pos.X, p.Pos.Y, p.Pos.Z).
		RotateXYZ(rot.X, rot.Y, rot.Z)

	r.Bind(p.tex)
	return r.DrawMesh(tr, p.mesh)
}

// CollideMesh resolves the player against a placed mesh and reports the
// number of triangles that pushed it.
func (p *Player) CollideMesh(mesh *models.Mesh, translation, scale math3d.Vec3) (int, error) {
	return collision.ResolveMesh(&p.Body, mesh, translation, scale)
}
