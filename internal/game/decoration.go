package game

import (
	"fmt"

	"github.com/taigrr/skyfish/internal/assets"
	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
)

// Decoration is a static model placed in the stage. The mesh is scaled
// per axis, then translated; it is never rotated, so the same placement
// serves drawing and collision.
type Decoration struct {
	Mesh  *models.Mesh
	Tex   *render.Bitmap
	Pos   math3d.Vec3
	Scale math3d.Vec3
	Solid bool
}

// NewDecorations resolves a decoration layout against the asset pack. A
// zero scale component means 1. An empty bitmap name draws untextured.
func NewDecorations(pack *assets.Pack, layout []config.DecorationConfig) ([]*Decoration, error) {
	decs := make([]*Decoration, 0, len(layout))
	for i, c := range layout {
		mesh, err := pack.Mesh(c.Mesh)
		if err != nil {
			return nil, fmt.Errorf("decoration %d: %w", i, err)
		}

		var tex *render.Bitmap
		if c.Bitmap != "" {
			if tex, err = pack.Bitmap(c.Bitmap); err != nil {
				return nil, fmt.Errorf("decoration %d: %w", i, err)
			}
		}

		scale := math3d.V3(c.Scale[0], c.Scale[1], c.Scale[2])
		for _, s := range []*float64{&scale.X, &scale.Y, &scale.Z} {
			if *s == 0 {
				*s = 1
			}
		}

		decs = append(decs, &Decoration{
			Mesh:  mesh,
			Tex:   tex,
			Pos:   math3d.V3(c.Position[0], c.Position[1], c.Position[2]),
			Scale: scale,
			Solid: c.Solid,
		})
	}
	return decs, nil
}

// Draw submits the decoration mesh.
func (d *Decoration) Draw(r *render.Rasterizer) error {
	tr := r.Object().
		Translate(d.Pos.X, d.Pos.Y, d.Pos.Z).
		Scale(d.Scale.X, d.Scale.Y, d.Scale.Z)

	r.Bind(d.Tex)
	return r.DrawMesh(tr, d.Mesh)
}

// Collide pushes the player out of a solid decoration.
func (d *Decoration) Collide(p *Player) (int, error) {
	if !d.Solid {
		return 0, nil
	}
	return p.CollideMesh(d.Mesh, d.Pos, d.Scale)
}
