package models

import "github.com/taigrr/skyfish/pkg/math3d"

// cubeFaces lists each face's outward normal and the two in-plane axes
// spanning it.
var cubeFaces = [6][3]math3d.Vec3{
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 0, Z: -1}, {X: -1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}, {X: 0, Y: 1, Z: 0}},
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}},
	{{X: 0, Y: -1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}},
}

// NewCube creates an axis-aligned cube centered on the origin with the
// given edge length. Each face has its own four vertices so the flat
// normals and UVs stay unified with the positions.
func NewCube(size float64) *Mesh {
	h := size / 2
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh{Name: "cube"}
	for f, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		for c, corner := range corners {
			p := n.Add(u.Scale(corner[0])).Add(v.Scale(corner[1])).Scale(h)
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.UVs = append(m.UVs, uvs[c][0], uvs[c][1])
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		base := uint32(f * 4)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	m.VertexCount = uint32(len(m.Vertices) / 3)
	m.UVCount = uint32(len(m.UVs) / 2)
	m.NormalCount = uint32(len(m.Normals) / 3)
	m.ElementCount = uint32(len(m.Indices))
	m.CalculateBounds()
	return m
}
