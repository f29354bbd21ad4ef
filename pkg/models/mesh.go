// Package models provides the static mesh representation used by skyfish:
// indexed triangle lists with parallel position, UV and normal arrays.
package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/skyfish/pkg/math3d"
)

// Mesh errors.
var (
	ErrCorruptMesh   = errors.New("corrupt mesh")
	ErrTruncatedMesh = errors.New("truncated mesh data")
)

// Mesh is an immutable indexed triangle list.
//
// Indices are unified: index k names vertex k, uv k and normal k. Triangle t
// is made of Indices[3t], Indices[3t+1] and Indices[3t+2], and its flat
// normal is the normal named by its first index.
type Mesh struct {
	Name string

	Vertices []float32 // 3 per vertex
	UVs      []float32 // 2 per entry
	Normals  []float32 // 3 per entry
	Indices  []uint32

	VertexCount  uint32
	UVCount      uint32
	NormalCount  uint32
	ElementCount uint32

	// Bounding box (calculated on load)
	MinV math3d.Vec3
	MaxV math3d.Vec3
}

// TriangleData holds one triangle fetched from a mesh.
type TriangleData struct {
	P      [3]math3d.Vec3
	UV     [3]math3d.Vec2
	Normal math3d.Vec3
}

// NewMesh builds a mesh from the four arrays, validates it and computes its
// bounds. The slices are owned by the mesh afterwards.
func NewMesh(name string, vertices, uvs, normals []float32, indices []uint32) (*Mesh, error) {
	if len(vertices)%3 != 0 || len(uvs)%2 != 0 || len(normals)%3 != 0 {
		return nil, fmt.Errorf("%w: array lengths %d/%d/%d are not whole entries",
			ErrCorruptMesh, len(vertices), len(uvs), len(normals))
	}

	m := &Mesh{
		Name:         name,
		Vertices:     vertices,
		UVs:          uvs,
		Normals:      normals,
		Indices:      indices,
		VertexCount:  uint32(len(vertices) / 3),
		UVCount:      uint32(len(uvs) / 2),
		NormalCount:  uint32(len(normals) / 3),
		ElementCount: uint32(len(indices)),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.CalculateBounds()
	return m, nil
}

// Validate checks the index invariants and rejects NaN or infinite
// attribute values.
func (m *Mesh) Validate() error {
	if m == nil {
		return nil
	}
	for _, attr := range []struct {
		name string
		data []float32
	}{{"position", m.Vertices}, {"uv", m.UVs}, {"normal", m.Normals}} {
		if i := nonFinite(attr.data); i >= 0 {
			return fmt.Errorf("%w: %s component %d is %v", ErrCorruptMesh, attr.name, i, attr.data[i])
		}
	}
	if m.ElementCount%3 != 0 {
		return fmt.Errorf("%w: element count %d is not a multiple of 3", ErrCorruptMesh, m.ElementCount)
	}
	if int(m.ElementCount) != len(m.Indices) {
		return fmt.Errorf("%w: element count %d, have %d indices", ErrCorruptMesh, m.ElementCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx >= m.VertexCount {
			return fmt.Errorf("%w: index %d at %d exceeds vertex count %d", ErrCorruptMesh, idx, i, m.VertexCount)
		}
		if m.UVCount > 0 && idx >= m.UVCount {
			return fmt.Errorf("%w: index %d at %d exceeds uv count %d", ErrCorruptMesh, idx, i, m.UVCount)
		}
		if m.NormalCount > 0 && idx >= m.NormalCount {
			return fmt.Errorf("%w: index %d at %d exceeds normal count %d", ErrCorruptMesh, idx, i, m.NormalCount)
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box from the vertex
// positions. A mesh without vertices gets a zero box.
func (m *Mesh) CalculateBounds() {
	if m == nil {
		return
	}
	if m.VertexCount == 0 {
		m.MinV, m.MaxV = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.MinV = m.position(0)
	m.MaxV = m.MinV
	for i := uint32(1); i < m.VertexCount; i++ {
		p := m.position(i)
		m.MinV = m.MinV.Min(p)
		m.MaxV = m.MaxV.Max(p)
	}
}

// Destroy releases the arrays. Calling it on a nil mesh is a no-op.
func (m *Mesh) Destroy() {
	if m == nil {
		return
	}
	m.Vertices, m.UVs, m.Normals, m.Indices = nil, nil, nil, nil
	m.VertexCount, m.UVCount, m.NormalCount, m.ElementCount = 0, 0, 0, 0
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return int(m.ElementCount / 3)
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.MinV, m.MaxV
}

// Triangle returns triangle t with bounds-checked lookups. When the mesh
// has no normals the face normal is computed from the winding.
func (m *Mesh) Triangle(t int) (TriangleData, error) {
	var tri TriangleData
	if m == nil {
		return tri, fmt.Errorf("%w: nil mesh", ErrCorruptMesh)
	}
	base := t * 3
	if t < 0 || base+2 >= len(m.Indices) {
		return tri, fmt.Errorf("%w: triangle %d out of range", ErrCorruptMesh, t)
	}

	for k := range 3 {
		idx := m.Indices[base+k]
		if idx >= m.VertexCount || int(idx)*3+2 >= len(m.Vertices) {
			return tri, fmt.Errorf("%w: index %d exceeds vertex count %d", ErrCorruptMesh, idx, m.VertexCount)
		}
		tri.P[k] = m.position(idx)

		if m.UVCount > 0 {
			if idx >= m.UVCount || int(idx)*2+1 >= len(m.UVs) {
				return tri, fmt.Errorf("%w: index %d exceeds uv count %d", ErrCorruptMesh, idx, m.UVCount)
			}
			tri.UV[k] = math3d.V2(float64(m.UVs[idx*2]), float64(m.UVs[idx*2+1]))
		}
	}

	first := m.Indices[base]
	if m.NormalCount > 0 {
		if first >= m.NormalCount || int(first)*3+2 >= len(m.Normals) {
			return tri, fmt.Errorf("%w: index %d exceeds normal count %d", ErrCorruptMesh, first, m.NormalCount)
		}
		tri.Normal = math3d.V3(
			float64(m.Normals[first*3]),
			float64(m.Normals[first*3+1]),
			float64(m.Normals[first*3+2]),
		)
	} else {
		tri.Normal = tri.P[1].Sub(tri.P[0]).Cross(tri.P[2].Sub(tri.P[0])).Normalize()
	}

	return tri, nil
}

func (m *Mesh) position(i uint32) math3d.Vec3 {
	return math3d.V3(
		float64(m.Vertices[i*3]),
		float64(m.Vertices[i*3+1]),
		float64(m.Vertices[i*3+2]),
	)
}

// nonFinite returns the index of the first NaN or infinite value, or -1.
func nonFinite(data []float32) int {
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}

// smoothNormals returns per-vertex normals for a triangle list, averaged
// over the adjacent faces. Used by loaders for primitives without normals.
// Indices must be in range.
func smoothNormals(vertices []float32, indices []uint32) []float32 {
	at := func(i uint32) math3d.Vec3 {
		return math3d.V3(float64(vertices[i*3]), float64(vertices[i*3+1]), float64(vertices[i*3+2]))
	}
	acc := make([]math3d.Vec3, len(vertices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := at(a), at(b), at(c)

		// Don't normalize yet: larger faces weigh more
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}

	normals := make([]float32, 0, len(acc)*3)
	for _, n := range acc {
		n = n.Normalize()
		normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return normals
}
