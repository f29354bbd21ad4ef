package render

import (
	"math"

	"github.com/taigrr/skyfish/pkg/math3d"
)

// Camera represents a 3D camera with position and orientation.
//
// View space is left-handed: +X right, +Y up, +Z forward.
type Camera struct {
	// Position in world space (render eye)
	Position math3d.Vec3

	// VPos is the virtual position used for distance decisions such as
	// level of detail. It may trail or lead the render eye.
	VPos math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (positive looks down)
	Yaw   float64 // Rotation around Y axis
	Roll  float64 // Rotation around Z axis

	// Projection parameters
	FOV  float64 // Vertical field of view in radians
	Near float64 // Near clipping distance
	Far  float64 // Far clipping distance

	// Cached view matrix, keyed on the values it was built from
	viewMatrix math3d.Mat4
	viewKey    [6]float64
	viewValid  bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		FOV:  math.Pi / 3, // 60 degrees
		Near: 0.1,
		Far:  100,
	}
}

// SetPosition sets the camera and virtual positions.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.VPos = pos
}

// SetRotation sets the camera rotation (pitch, yaw, roll in radians).
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch = pitch
	c.Yaw = yaw
	c.Roll = roll
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	key := [6]float64{c.Position.X, c.Position.Y, c.Position.Z, c.Pitch, c.Yaw, c.Roll}
	if !c.viewValid || key != c.viewKey {
		c.computeViewMatrix()
		c.viewKey = key
		c.viewValid = true
	}
	return c.viewMatrix
}

func (c *Camera) computeViewMatrix() {
	// View = Rotation * Translation(-position)

	// Rotation matrix (inverse of camera orientation)
	rot := math3d.RotateZ(-c.Roll).Mul(
		math3d.RotateX(-c.Pitch)).Mul(
		math3d.RotateY(-c.Yaw))

	// Translation matrix (move world opposite to camera position)
	trans := math3d.Translate(c.Position.Negate())

	c.viewMatrix = rot.Mul(trans)
}

// Focal returns the projection scale for a viewport of the given height:
// a view-space point (x, y, z) lands x/z*Focal pixels right of center.
func (c *Camera) Focal(height int) float64 {
	return float64(height) / 2 / math.Tan(c.FOV/2)
}

// Project maps a view-space point to screen coordinates. ok is false for
// points at or behind the near plane.
func (c *Camera) Project(p math3d.Vec3, width, height int) (x, y float64, ok bool) {
	if p.Z <= c.Near {
		return 0, 0, false
	}
	f := c.Focal(height)
	x = float64(width)/2 + p.X/p.Z*f
	y = float64(height)/2 - p.Y/p.Z*f
	return x, y, true
}
