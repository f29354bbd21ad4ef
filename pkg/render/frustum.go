package render

import (
	"math"

	"github.com/taigrr/skyfish/pkg/math3d"
)

// Frustum represents the 6 planes of a view-space frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]math3d.Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewViewFrustum builds the frustum of cam for a viewport with the given
// aspect ratio (width / height), in view space: the eye sits at the origin
// looking down +Z.
func NewViewFrustum(cam *Camera, aspect float64) Frustum {
	var f Frustum

	ty := math.Tan(cam.FOV / 2)
	tx := ty * aspect

	// Side planes pass through the eye: x >= -z*tx, x <= z*tx, etc.
	f.Planes[FrustumLeft] = math3d.Plane{Normal: math3d.V3(1, 0, tx)}
	f.Planes[FrustumRight] = math3d.Plane{Normal: math3d.V3(-1, 0, tx)}
	f.Planes[FrustumBottom] = math3d.Plane{Normal: math3d.V3(0, 1, ty)}
	f.Planes[FrustumTop] = math3d.Plane{Normal: math3d.V3(0, -1, ty)}

	f.Planes[FrustumNear] = math3d.Plane{Normal: math3d.V3(0, 0, 1), D: -cam.Near}
	f.Planes[FrustumFar] = math3d.Plane{Normal: math3d.V3(0, 0, -1), D: cam.Far}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns an AABB that bounds the original AABB after transformation.
// This computes a new AABB that contains all 8 transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	transformed := m.MulVec3(corners[0])
	newMin := transformed
	newMax := transformed

	for i := 1; i < 8; i++ {
		transformed = m.MulVec3(corners[i])
		newMin = newMin.Min(transformed)
		newMax = newMax.Max(transformed)
	}

	return AABB{Min: newMin, Max: newMax}
}

// IntersectAABB tests if the AABB intersects or is inside the frustum.
// Returns true if any part of the AABB may be visible.
// Uses the "positive vertex" optimization for faster rejection.
func (f Frustum) IntersectAABB(box AABB) bool {
	for i := range f.Planes {
		plane := f.Planes[i]

		// The corner furthest along the plane normal; if it is outside,
		// the whole box is.
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)

		if plane.Eval(pVertex) < 0 {
			return false
		}
	}

	return true
}

// IntersectsSphere tests if a sphere intersects the frustum. It can report
// false positives near the frustum corners, never false negatives.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].Eval(center) < -radius {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
