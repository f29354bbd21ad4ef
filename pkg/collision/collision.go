// Package collision resolves a spherical body against static triangle
// meshes.
//
// Every triangle is first tested by projecting the body center and the
// triangle onto the XY, XZ and YZ planes; a triangle whose projections all
// miss the center is ignored. Otherwise the body is pushed along the
// triangle normal until its distance to the triangle plane equals its
// radius.
package collision

import (
	"fmt"

	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
)

// Body is the collision volume of a moving object: a sphere.
type Body struct {
	Pos    math3d.Vec3
	Radius float64
}

// InsideTriangle reports whether (px, py) lies inside or on the edge of
// the 2D triangle (ax, ay), (bx, by), (cx, cy), whatever its winding.
func InsideTriangle(px, py, ax, ay, bx, by, cx, cy float64) bool {
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(px, py, ax, ay, bx, by float64) float64 {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}

// overlaps is the broad test: the point projects inside the triangle on at
// least one of the three axis planes.
func overlaps(p, a, b, c math3d.Vec3) bool {
	return InsideTriangle(p.X, p.Y, a.X, a.Y, b.X, b.Y, c.X, c.Y) ||
		InsideTriangle(p.X, p.Z, a.X, a.Z, b.X, b.Z, c.X, c.Z) ||
		InsideTriangle(p.Y, p.Z, a.Y, a.Z, b.Y, b.Z, c.Y, c.Z)
}

// ResolveTriangle pushes body out of the plane of triangle (a, b, c) with
// normal n. It returns true if the body moved.
//
// The push is pos -= n * (dist - radius), with dist the unsigned distance
// to the plane. This moves the body to distance radius only when it is on
// the side n points to; from the other side it is pushed further along n.
// A zero normal leaves the body alone.
func ResolveTriangle(body *Body, a, b, c, n math3d.Vec3) bool {
	if body == nil || !overlaps(body.Pos, a, b, c) {
		return false
	}

	plane := math3d.PlaneFromPoint(n, a)
	dist, ok := plane.Distance(body.Pos)
	if !ok || dist >= body.Radius {
		return false
	}

	body.Pos = body.Pos.Sub(n.Scale(dist - body.Radius))
	return true
}

// ResolveMesh resolves body against every triangle of mesh placed with the
// given translation and scale (applied componentwise, scale first). Normals
// are used as stored. It returns the number of triangles that moved the
// body.
//
// A nil body or mesh is a no-op. Out-of-range indices are reported with
// models.ErrCorruptMesh before the body is touched.
func ResolveMesh(body *Body, mesh *models.Mesh, translation, scale math3d.Vec3) (int, error) {
	if body == nil || mesh == nil {
		return 0, nil
	}
	if err := mesh.Validate(); err != nil {
		return 0, fmt.Errorf("resolve %q: %w", mesh.Name, err)
	}

	hits := 0
	for i := range mesh.TriangleCount() {
		tri, err := mesh.Triangle(i)
		if err != nil {
			return hits, fmt.Errorf("resolve %q: %w", mesh.Name, err)
		}
		a := tri.P[0].Mul(scale).Add(translation)
		b := tri.P[1].Mul(scale).Add(translation)
		c := tri.P[2].Mul(scale).Add(translation)

		if ResolveTriangle(body, a, b, c, tri.Normal) {
			hits++
		}
	}
	return hits, nil
}
