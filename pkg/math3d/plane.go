package math3d

import "math"

// Plane represents a plane in 3D space using the equation N·X + D = 0.
// The normal is not required to be unit length.
type Plane struct {
	Normal Vec3
	D      float64
}

// PlaneFromPoint builds the plane with normal n passing through p.
func PlaneFromPoint(n, p Vec3) Plane {
	return Plane{Normal: n, D: -n.Dot(p)}
}

// Normalize rescales the plane equation so the normal has unit length.
// Degenerate planes are left untouched.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// Eval returns N·point + D. Its sign tells which side the point is on;
// it equals the signed distance only for unit normals.
func (p Plane) Eval(point Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Distance returns the unsigned distance from the point to the plane,
// |N·point + D| / |N|. ok is false when the normal has zero length.
func (p Plane) Distance(point Vec3) (dist float64, ok bool) {
	l := p.Normal.Len()
	if l == 0 {
		return 0, false
	}
	return math.Abs(p.Eval(point)) / l, true
}
