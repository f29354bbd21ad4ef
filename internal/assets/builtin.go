package assets

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
)

// Sizes of the built-in background strips. The stage scrolls them by 1024
// pixels per full turn, so both widths divide 1024.
const (
	MountainsWidth = 512
	ForestWidth    = 256
)

// Builtin returns a pack of procedural assets covering every name the
// stage and crate scenes look up.
func Builtin() *Pack {
	rng := rand.New(rand.NewPCG(0x5eed, 0xf15))

	p := NewPack()
	p.AddBitmap("grass", grassBitmap(rng))
	p.AddBitmap("road", roadBitmap())
	p.AddBitmap("fence", fenceBitmap())
	p.AddBitmap("forest", forestBitmap(rng))
	p.AddBitmap("mountains", mountainsBitmap())
	p.AddBitmap("moon", moonBitmap())
	p.AddBitmap("crate", crateBitmap())
	p.AddBitmap("fish", fishBitmap())

	p.AddMesh("cube", models.NewCube(1))
	p.AddMesh("fish", fishMesh())
	return p
}

func grassBitmap(rng *rand.Rand) *render.Bitmap {
	dark := render.IndexRGB(0, 96, 0)
	light := render.IndexRGB(64, 192, 0)
	bmp := render.NewBitmap(32, 32)
	for i := range bmp.Pixels {
		switch n := rng.IntN(16); {
		case n == 0:
			bmp.Pixels[i] = light
		case n < 3:
			bmp.Pixels[i] = dark
		default:
			bmp.Pixels[i] = render.IndexGrass
		}
	}
	return bmp
}

func roadBitmap() *render.Bitmap {
	bmp := render.NewBitmap(32, 32)
	for y := range 32 {
		for x := range 32 {
			c := render.IndexRoad
			switch {
			case x < 2 || x >= 30:
				c = render.IndexGray
			case (x == 15 || x == 16) && y < 16:
				c = render.IndexWhite
			}
			bmp.SetPixel(x, y, c)
		}
	}
	return bmp
}

// fenceBitmap is a post and two rails; everything else is transparent.
func fenceBitmap() *render.Bitmap {
	wood := render.IndexRGB(160, 96, 32)
	shade := render.IndexRGB(96, 64, 0)
	bmp := render.NewBitmap(32, 32)
	for y := range 32 {
		for x := range 32 {
			c := render.AlphaKey
			switch {
			case x < 4:
				c = wood
				if x == 3 {
					c = shade
				}
			case (y >= 6 && y < 10) || (y >= 20 && y < 24):
				c = wood
				if y == 9 || y == 23 {
					c = shade
				}
			}
			bmp.SetPixel(x, y, c)
		}
	}
	return bmp
}

// forestBitmap is a strip of conifer silhouettes over a solid base.
func forestBitmap(rng *rand.Rand) *render.Bitmap {
	const h = 48
	leaf := render.IndexRGB(0, 64, 0)
	bmp := render.NewBitmap(ForestWidth, h)
	for i := range bmp.Pixels {
		bmp.Pixels[i] = render.AlphaKey
	}

	for cx := 0; cx < ForestWidth; cx += 12 {
		top := 4 + rng.IntN(20)
		for y := top; y < h; y++ {
			half := (y - top) / 2
			for x := cx - half; x <= cx+half; x++ {
				bmp.SetPixel((x+ForestWidth)%ForestWidth, y, leaf)
			}
		}
	}
	return bmp
}

// mountainsBitmap draws a periodic ridge line with snow on the peaks.
func mountainsBitmap() *render.Bitmap {
	const h = 96
	rock := render.IndexRGB(64, 64, 128)
	snow := render.IndexWhite
	bmp := render.NewBitmap(MountainsWidth, h)

	for x := range MountainsWidth {
		t := float64(x) / MountainsWidth * 2 * math.Pi
		ridge := 40 + 18*math.Sin(t*3) + 10*math.Sin(t*7+1) + 6*math.Sin(t*13+2)
		top := int(ridge)
		for y := range h {
			switch {
			case y < top:
				bmp.SetPixel(x, y, render.AlphaKey)
			case y < top+4 && top < 34:
				bmp.SetPixel(x, y, snow)
			default:
				bmp.SetPixel(x, y, rock)
			}
		}
	}
	return bmp
}

func moonBitmap() *render.Bitmap {
	const size = 24
	bright := render.IndexRGB(255, 255, 170)
	crater := render.IndexRGB(192, 192, 128)
	bmp := render.NewBitmap(size, size)
	r := float64(size)/2 - 0.5
	for y := range size {
		for x := range size {
			dx, dy := float64(x)-r, float64(y)-r
			d := math.Hypot(dx, dy)
			switch {
			case d > r:
				bmp.SetPixel(x, y, render.AlphaKey)
			case math.Hypot(dx+4, dy-3) < 3 || math.Hypot(dx-3, dy+4) < 2:
				bmp.SetPixel(x, y, crater)
			default:
				bmp.SetPixel(x, y, bright)
			}
		}
	}
	return bmp
}

func crateBitmap() *render.Bitmap {
	plank := render.IndexRGB(192, 128, 64)
	frame := render.IndexRGB(96, 64, 0)
	bmp := render.NewBitmap(32, 32)
	for y := range 32 {
		for x := range 32 {
			c := plank
			if x < 3 || x >= 29 || y < 3 || y >= 29 || x == y || x == 31-y {
				c = frame
			}
			bmp.SetPixel(x, y, c)
		}
	}
	return bmp
}

func fishBitmap() *render.Bitmap {
	scale := render.IndexRGB(255, 128, 0)
	stripe := render.IndexRGB(255, 255, 255)
	bmp := render.NewBitmap(32, 32)
	for y := range 32 {
		for x := range 32 {
			c := scale
			if (x/4)%3 == 1 {
				c = stripe
			}
			bmp.SetPixel(x, y, c)
		}
	}
	return bmp
}

// meshBuilder collects flat-shaded triangles, each with its own three
// vertices so the first index carries the face normal.
type meshBuilder struct {
	vertices, uvs, normals []float32
	indices                []uint32
}

func (b *meshBuilder) triangle(p [3]math3d.Vec3, uv [3]math3d.Vec2, n math3d.Vec3) {
	base := uint32(len(b.vertices) / 3)
	for k := range 3 {
		b.vertices = append(b.vertices, float32(p[k].X), float32(p[k].Y), float32(p[k].Z))
		b.uvs = append(b.uvs, float32(uv[k].X), float32(uv[k].Y))
		b.normals = append(b.normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	b.indices = append(b.indices, base, base+1, base+2)
}

// outward adds a triangle of a convex hull around the origin, flipping the
// winding when needed so the normal points away from the origin.
func (b *meshBuilder) outward(p [3]math3d.Vec3, uv [3]math3d.Vec2) {
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
	if n.Dot(math3d.Centroid(p[0], p[1], p[2])) < 0 {
		p[1], p[2] = p[2], p[1]
		uv[1], uv[2] = uv[2], uv[1]
		n = n.Negate()
	}
	b.triangle(p, uv, n)
}

func (b *meshBuilder) build(name string) *models.Mesh {
	m, err := models.NewMesh(name, b.vertices, b.uvs, b.normals, b.indices)
	if err != nil {
		// constant geometry
		panic(err)
	}
	return m
}

// fishMesh builds a low-poly fish facing +Z: an octahedral body and a
// two-sided tail fin.
func fishMesh() *models.Mesh {
	var b meshBuilder

	nose := math3d.V3(0, 0, 1)
	tail := math3d.V3(0, 0, -0.6)
	ring := [4]math3d.Vec3{
		math3d.V3(0.35, 0, 0),
		math3d.V3(0, 0.3, 0),
		math3d.V3(-0.35, 0, 0),
		math3d.V3(0, -0.3, 0),
	}
	for i := range ring {
		a, c := ring[i], ring[(i+1)%len(ring)]
		b.outward([3]math3d.Vec3{nose, a, c}, [3]math3d.Vec2{math3d.V2(0.5, 0), math3d.V2(0, 1), math3d.V2(1, 1)})
		b.outward([3]math3d.Vec3{tail, a, c}, [3]math3d.Vec2{math3d.V2(0.5, 1), math3d.V2(0, 0), math3d.V2(1, 0)})
	}

	finTop := math3d.V3(0, 0.35, -1)
	finBottom := math3d.V3(0, -0.35, -1)
	finUV := [3]math3d.Vec2{math3d.V2(0, 0.5), math3d.V2(1, 0), math3d.V2(1, 1)}
	b.triangle([3]math3d.Vec3{tail, finTop, finBottom}, finUV, math3d.V3(1, 0, 0))
	b.triangle([3]math3d.Vec3{tail, finBottom, finTop}, finUV, math3d.V3(-1, 0, 0))

	return b.build("fish")
}
