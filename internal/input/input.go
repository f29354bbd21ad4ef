// Package input turns key events into the analog stick the player reads.
package input

import (
	"math"

	"github.com/taigrr/skyfish/pkg/math3d"
)

// Stick reports a direction in [-1, 1] on both axes. +X is right and +Y is
// down, as on a gamepad.
type Stick interface {
	Stick() math3d.Vec2
}

// Direction is one of the four digital directions.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// DefaultDecay is the fraction of a released axis kept per 60 Hz frame.
const DefaultDecay = 0.8

// snap is the magnitude below which a decaying axis reads as zero.
const snap = 0.05

// Pad is a Stick fed by digital key events. Terminals deliver key repeats
// but rarely key releases, so an axis that is not pressed again decays
// back to rest instead of waiting for a release.
type Pad struct {
	Decay float64

	axis math3d.Vec2
	// held since the last Update, per axis
	heldX, heldY bool
}

// NewPad creates a pad at rest.
func NewPad() *Pad {
	return &Pad{Decay: DefaultDecay}
}

// Press drives the axis of dir fully in that direction.
func (p *Pad) Press(dir Direction) {
	switch dir {
	case Left:
		p.axis.X = -1
	case Right:
		p.axis.X = 1
	case Up:
		p.axis.Y = -1
	case Down:
		p.axis.Y = 1
	}
	p.hold(dir, true)
}

func (p *Pad) hold(dir Direction, held bool) {
	if dir == Left || dir == Right {
		p.heldX = held
	} else {
		p.heldY = held
	}
}

// Release returns the axis of dir to rest immediately.
func (p *Pad) Release(dir Direction) {
	switch dir {
	case Left, Right:
		p.axis.X = 0
	case Up, Down:
		p.axis.Y = 0
	}
	p.hold(dir, false)
}

// Set replaces the axis outright, clamped to [-1, 1]. Presenters with real
// key state or a gamepad use it every frame.
func (p *Pad) Set(v math3d.Vec2) {
	p.axis = v.Clamp(-1, 1)
	p.heldX, p.heldY = true, true
}

// Update decays every axis that was not pressed or set since the last
// call by Decay per frame of length dt, where dt is 1 at 60 FPS.
func (p *Pad) Update(dt float64) {
	k := math.Pow(p.Decay, dt)
	if !p.heldX {
		p.axis.X = settle(p.axis.X * k)
	}
	if !p.heldY {
		p.axis.Y = settle(p.axis.Y * k)
	}
	p.heldX, p.heldY = false, false
}

func settle(v float64) float64 {
	if math.Abs(v) < snap {
		return 0
	}
	return v
}

// Stick returns the current axis value.
func (p *Pad) Stick() math3d.Vec2 {
	return p.axis
}
