package render

import "github.com/taigrr/skyfish/pkg/math3d"

// Transform is the per-object transform context: a model placement plus
// the view matrix of the camera it is drawn through.
//
// The model matrix is always Translate · RotateXYZ · Scale, whatever order
// the calls were made in, so a vertex is scaled, then rotated, then
// translated. Get a fresh one per object from Rasterizer.Object.
type Transform struct {
	translation math3d.Vec3
	rotation    math3d.Vec3
	scale       math3d.Vec3
	view        math3d.Mat4

	modelView math3d.Mat4
	normalMat math3d.Mat4
	dirty     bool
}

// NewTransform returns an identity transform with an identity view.
func NewTransform() *Transform {
	return &Transform{
		scale:     math3d.One3(),
		view:      math3d.Identity(),
		modelView: math3d.Identity(),
		normalMat: math3d.Identity(),
	}
}

// Reset sets the model placement back to identity. The view is kept.
func (t *Transform) Reset() *Transform {
	t.translation = math3d.Zero3()
	t.rotation = math3d.Zero3()
	t.scale = math3d.One3()
	t.dirty = true
	return t
}

// Translate adds to the model translation.
func (t *Transform) Translate(dx, dy, dz float64) *Transform {
	t.translation = t.translation.Add(math3d.V3(dx, dy, dz))
	t.dirty = true
	return t
}

// RotateXYZ adds to the model Euler angles (radians).
func (t *Transform) RotateXYZ(rx, ry, rz float64) *Transform {
	t.rotation = t.rotation.Add(math3d.V3(rx, ry, rz))
	t.dirty = true
	return t
}

// Scale multiplies the model scale componentwise.
func (t *Transform) Scale(sx, sy, sz float64) *Transform {
	t.scale = t.scale.Mul(math3d.V3(sx, sy, sz))
	t.dirty = true
	return t
}

// SetView sets the view matrix from a camera. A nil camera resets the view.
func (t *Transform) SetView(cam *Camera) *Transform {
	if cam == nil {
		return t.ResetView()
	}
	t.view = cam.ViewMatrix()
	t.dirty = true
	return t
}

// ResetView sets the view matrix to identity, so Apply yields world space.
func (t *Transform) ResetView() *Transform {
	t.view = math3d.Identity()
	t.dirty = true
	return t
}

// ViewTranslate shifts the whole view-space result by (dx, dy, dz).
func (t *Transform) ViewTranslate(dx, dy, dz float64) *Transform {
	t.view = math3d.Translate(math3d.V3(dx, dy, dz)).Mul(t.view)
	t.dirty = true
	return t
}

// ModelMatrix returns Translate · RotateXYZ · Scale.
func (t *Transform) ModelMatrix() math3d.Mat4 {
	return math3d.Translate(t.translation).
		Mul(math3d.RotateXYZ(t.rotation)).
		Mul(math3d.Scale(t.scale))
}

// ModelView returns view · model.
func (t *Transform) ModelView() math3d.Mat4 {
	t.update()
	return t.modelView
}

// Apply maps an object-space point into view space.
func (t *Transform) Apply(p math3d.Vec3) math3d.Vec3 {
	t.update()
	return t.modelView.MulVec3(p)
}

// ApplyNormal maps an object-space normal into view space using only the
// rotations. Scale is ignored.
func (t *Transform) ApplyNormal(n math3d.Vec3) math3d.Vec3 {
	t.update()
	return t.normalMat.MulVec3Dir(n)
}

func (t *Transform) update() {
	if !t.dirty {
		return
	}
	t.modelView = t.view.Mul(t.ModelMatrix())
	t.normalMat = t.view.Mul(math3d.RotateXYZ(t.rotation))
	t.dirty = false
}
