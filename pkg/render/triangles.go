package render

import "github.com/taigrr/skyfish/pkg/math3d"

// Triangle is one buffered triangle in view space. Tex is the bitmap that
// was bound when the triangle was submitted; nil draws flat.
type Triangle struct {
	P      [3]math3d.Vec3
	UV     [3]math3d.Vec2
	Normal math3d.Vec3
	Tex    *Bitmap
}

// TriangleBuffer accumulates triangles for one frame.
//
// The buffer grows as needed. When Limit is positive, submissions beyond it
// are dropped and counted in Dropped.
type TriangleBuffer struct {
	Limit int

	tris    []Triangle
	bound   *Bitmap
	dropped int
}

// NewTriangleBuffer creates a buffer with the given limit (0 = unbounded).
func NewTriangleBuffer(limit int) *TriangleBuffer {
	b := &TriangleBuffer{Limit: limit}
	if limit > 0 {
		b.tris = make([]Triangle, 0, limit)
	}
	return b
}

// Clear empties the buffer, keeping its capacity, and resets the dropped
// counter. The bound texture is renderer state and survives.
func (b *TriangleBuffer) Clear() {
	clear(b.tris)
	b.tris = b.tris[:0]
	b.dropped = 0
}

// Bind sets the texture for subsequently submitted triangles.
func (b *TriangleBuffer) Bind(tex *Bitmap) {
	b.bound = tex
}

// Bound returns the currently bound texture.
func (b *TriangleBuffer) Bound() *Bitmap {
	return b.bound
}

// Submit appends one view-space triangle tagged with the bound texture.
func (b *TriangleBuffer) Submit(p0, p1, p2 math3d.Vec3, uv0, uv1, uv2 math3d.Vec2, n math3d.Vec3) {
	if b.Limit > 0 && len(b.tris) >= b.Limit {
		b.dropped++
		return
	}
	b.tris = append(b.tris, Triangle{
		P:      [3]math3d.Vec3{p0, p1, p2},
		UV:     [3]math3d.Vec2{uv0, uv1, uv2},
		Normal: n,
		Tex:    b.bound,
	})
}

// Len returns the number of buffered triangles.
func (b *TriangleBuffer) Len() int {
	return len(b.tris)
}

// Dropped returns how many submissions were rejected since the last Clear.
func (b *TriangleBuffer) Dropped() int {
	return b.dropped
}

// Triangles returns the buffered triangles. The slice is only valid until
// the next Clear or Submit.
func (b *TriangleBuffer) Triangles() []Triangle {
	return b.tris
}
