package render

import (
	"fmt"
	"math"

	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
)

// Rasterizer owns the framebuffer, the depth buffer and the triangle
// buffer, and paints buffered triangles with a textured scanline fill.
//
// Per frame: Clear, then submit through Object/DrawMesh/DrawTriangle3D,
// then Flush.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // 1/z per pixel, 0 = empty (row-major)
	buf     *TriangleBuffer

	// FlatColor is used for triangles submitted without a bound texture.
	FlatColor uint8

	CullingStats           CullingStats // Mesh-level frustum culling, reset with Clear
	LastFlush              FlushStats   // Result of the most recent Flush
	DisableBackfaceCulling bool         // If true, render both sides of triangles
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not submitted)
	MeshesDrawn  int // Meshes that passed culling
}

// FlushStats reports what a Flush did with the buffered triangles.
type FlushStats struct {
	Submitted int // Triangles in the buffer
	Culled    int // Back-facing triangles
	Clipped   int // Rejected by the near or far plane
	Drawn     int // Triangles scan-converted
}

// NewRasterizer creates a new rasterizer with an unbounded triangle buffer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:    camera,
		fb:        fb,
		buf:       NewTriangleBuffer(0),
		FlatColor: IndexWhite,
	}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// SetFramebuffer swaps the render target and resizes the depth buffer.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// Framebuffer returns the render target.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Camera returns the camera used for new transforms.
func (r *Rasterizer) Camera() *Camera { return r.camera }

// SetCamera replaces the camera used by Object, frustum tests and Flush
// calls without an explicit camera.
func (r *Rasterizer) SetCamera(cam *Camera) { r.camera = cam }

// Buffer returns the triangle buffer.
func (r *Rasterizer) Buffer() *TriangleBuffer { return r.buf }

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = 0
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ClearFrame fills the whole frame with one color index.
func (r *Rasterizer) ClearFrame(index uint8) {
	if r.fb != nil {
		r.fb.Clear(index)
	}
}

// DarkenFrame darkens every pixel already in the frame by amount steps.
func (r *Rasterizer) DarkenFrame(amount int) {
	if r.fb != nil {
		r.fb.Darken(amount)
	}
}

// Clear empties the triangle buffer and resets per-frame culling stats.
func (r *Rasterizer) Clear() {
	r.buf.Clear()
	r.CullingStats = CullingStats{}
}

// Bind sets the texture for subsequently submitted triangles.
func (r *Rasterizer) Bind(tex *Bitmap) {
	r.buf.Bind(tex)
}

// Object returns a fresh identity transform viewed through the camera.
func (r *Rasterizer) Object() *Transform {
	return NewTransform().SetView(r.camera)
}

// Frustum returns the camera's view-space frustum for this framebuffer.
func (r *Rasterizer) Frustum() Frustum {
	aspect := 1.0
	if r.Height() > 0 {
		aspect = float64(r.Width()) / float64(r.Height())
	}
	return NewViewFrustum(r.camera, aspect)
}

// IsVisible tests if a view-space AABB is visible in the frustum. The
// box's bounding sphere is tried first as a quick reject.
func (r *Rasterizer) IsVisible(viewBounds AABB) bool {
	if r.camera == nil {
		return true
	}
	f := r.Frustum()
	if !f.IntersectsSphere(viewBounds.Center(), viewBounds.Size().Len()/2) {
		return false
	}
	return f.IntersectAABB(viewBounds)
}

// DrawTriangle3D transforms one object-space triangle through tr and
// submits it with the bound texture.
func (r *Rasterizer) DrawTriangle3D(tr *Transform, p0, p1, p2 math3d.Vec3, uv0, uv1, uv2 math3d.Vec2, n math3d.Vec3) {
	r.buf.Submit(tr.Apply(p0), tr.Apply(p1), tr.Apply(p2), uv0, uv1, uv2, tr.ApplyNormal(n))
}

// DrawMesh submits every triangle of mesh through tr with the bound
// texture. The mesh bounds are frustum-tested first; a culled mesh submits
// nothing. A nil mesh is a no-op.
func (r *Rasterizer) DrawMesh(tr *Transform, mesh *models.Mesh) error {
	if mesh == nil {
		return nil
	}

	r.CullingStats.MeshesTested++
	minV, maxV := mesh.Bounds()
	bounds := NewAABB(minV, maxV).Transform(tr.ModelView())
	if !r.IsVisible(bounds) {
		r.CullingStats.MeshesCulled++
		return nil
	}
	r.CullingStats.MeshesDrawn++

	for i := range mesh.TriangleCount() {
		tri, err := mesh.Triangle(i)
		if err != nil {
			return fmt.Errorf("draw mesh %q: %w", mesh.Name, err)
		}
		r.DrawTriangle3D(tr,
			tri.P[0], tri.P[1], tri.P[2],
			tri.UV[0], tri.UV[1], tri.UV[2],
			tri.Normal,
		)
	}
	return nil
}

// Flush rasterizes every buffered triangle into the framebuffer.
//
// Triangles with a non-finite vertex, a vertex at or behind cam.Near, or
// all vertices beyond cam.Far are rejected whole and counted as clipped. A triangle is back-facing when its normal points
// away from the eye, N·(eye − centroid) < 0; exactly 0 is drawn.
// Darkening uses the mean distance of the three vertices. The buffer is
// left intact; call Clear to reset it.
func (r *Rasterizer) Flush(cam *Camera, dark Darkness) FlushStats {
	if cam == nil {
		cam = r.camera
	}
	stats := FlushStats{Submitted: r.buf.Len()}
	if r.fb == nil || cam == nil {
		r.LastFlush = stats
		return stats
	}

	w, h := r.Width(), r.Height()
	for i := range r.buf.tris {
		tri := &r.buf.tris[i]

		if !tri.P[0].IsFinite() || !tri.P[1].IsFinite() || !tri.P[2].IsFinite() ||
			tri.P[0].Z <= cam.Near || tri.P[1].Z <= cam.Near || tri.P[2].Z <= cam.Near ||
			(tri.P[0].Z > cam.Far && tri.P[1].Z > cam.Far && tri.P[2].Z > cam.Far) {
			stats.Clipped++
			continue
		}

		// Eye is at the view-space origin
		centroid := math3d.Centroid(tri.P[0], tri.P[1], tri.P[2])
		if !r.DisableBackfaceCulling && tri.Normal.Dot(centroid.Negate()) < 0 {
			stats.Culled++
			continue
		}

		var sv [3]screenVertex
		for k := range 3 {
			x, y, _ := cam.Project(tri.P[k], w, h)
			sv[k] = screenVertex{
				X:    x,
				Y:    y,
				InvZ: 1 / tri.P[k].Z,
				U:    tri.UV[k].X,
				V:    tri.UV[k].Y,
			}
		}

		dist := (tri.P[0].Len() + tri.P[1].Len() + tri.P[2].Len()) / 3
		level := int(math.Round(dark.Level(dist)))

		r.fillTriangle(sv, tri.Tex, level)
		stats.Drawn++
	}

	r.LastFlush = stats
	return stats
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	InvZ float64 // 1/z for the depth test
	U, V float64 // Texture coordinates (affine)
}

func lerpVertex(a, b screenVertex, t float64) screenVertex {
	return screenVertex{
		X:    a.X + (b.X-a.X)*t,
		Y:    a.Y + (b.Y-a.Y)*t,
		InvZ: a.InvZ + (b.InvZ-a.InvZ)*t,
		U:    a.U + (b.U-a.U)*t,
		V:    a.V + (b.V-a.V)*t,
	}
}

// fillTriangle scan-converts a projected triangle. Pixel centers sit at
// +0.5; a pixel is covered when its center lies inside the span.
func (r *Rasterizer) fillTriangle(sv [3]screenVertex, tex *Bitmap, level int) {
	// Sort by Y
	if sv[1].Y < sv[0].Y {
		sv[0], sv[1] = sv[1], sv[0]
	}
	if sv[2].Y < sv[0].Y {
		sv[0], sv[2] = sv[2], sv[0]
	}
	if sv[2].Y < sv[1].Y {
		sv[1], sv[2] = sv[2], sv[1]
	}
	top, mid, bot := sv[0], sv[1], sv[2]
	if bot.Y == top.Y {
		return // Degenerate
	}

	yStart := max(0, int(math.Ceil(top.Y-0.5)))
	yEnd := min(r.Height(), int(math.Ceil(bot.Y-0.5)))

	for y := yStart; y < yEnd; y++ {
		py := float64(y) + 0.5

		long := lerpVertex(top, bot, (py-top.Y)/(bot.Y-top.Y))
		var short screenVertex
		if py < mid.Y {
			short = lerpVertex(top, mid, (py-top.Y)/(mid.Y-top.Y))
		} else {
			short = lerpVertex(mid, bot, (py-mid.Y)/(bot.Y-mid.Y))
		}

		if long.X > short.X {
			long, short = short, long
		}
		r.fillSpan(y, long, short, tex, level)
	}
}

func (r *Rasterizer) fillSpan(y int, left, right screenVertex, tex *Bitmap, level int) {
	xStart := max(0, int(math.Ceil(left.X-0.5)))
	xEnd := min(r.Width(), int(math.Ceil(right.X-0.5)))
	dx := right.X - left.X
	if xStart >= xEnd || dx <= 0 {
		return
	}

	row := y * r.fb.Width
	for x := xStart; x < xEnd; x++ {
		t := (float64(x) + 0.5 - left.X) / dx
		invZ := left.InvZ + (right.InvZ-left.InvZ)*t

		// Z-buffer test: larger 1/z is nearer
		if invZ <= r.zbuffer[row+x] {
			continue
		}

		c := r.FlatColor
		if tex != nil {
			u := left.U + (right.U-left.U)*t
			v := left.V + (right.V-left.V)*t
			c = tex.Sample(u, v)
			if c == AlphaKey {
				continue
			}
		}

		r.zbuffer[row+x] = invZ
		r.fb.Pixels[row+x] = Darken(c, level)
	}
}
