package render

import (
	"math"
	"testing"

	"github.com/taigrr/skyfish/pkg/math3d"
	"github.com/taigrr/skyfish/pkg/models"
)

// newTestRasterizer creates a rasterizer whose camera sits at the origin
// looking down +Z, so world space equals view space.
func newTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.Near = 0.1
	camera.Far = 100
	return NewRasterizer(camera, fb), fb
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecApprox(a, b math3d.Vec3) bool {
	const eps = 1e-9
	return approxEqual(a.X, b.X, eps) && approxEqual(a.Y, b.Y, eps) && approxEqual(a.Z, b.Z, eps)
}

// submitFacing submits a triangle at depth z covering the screen center
// with the given normal.
func submitFacing(r *Rasterizer, z float64, n math3d.Vec3) {
	r.Buffer().Submit(
		math3d.V3(-2, -2, z), math3d.V3(2, -2, z), math3d.V3(0, 2, z),
		math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0.5, 1),
		n,
	)
}

func center(fb *Framebuffer) uint8 {
	return fb.GetPixel(fb.Width/2, fb.Height/2)
}

func TestTransformComposition(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Transform)
		in    math3d.Vec3
		want  math3d.Vec3
	}{
		{"identity", func(*Transform) {}, math3d.V3(1.5, -2, 7), math3d.V3(1.5, -2, 7)},
		{"translate origin", func(tr *Transform) { tr.Translate(3, -4, 5) }, math3d.Zero3(), math3d.V3(3, -4, 5)},
		{"scale then translate", func(tr *Transform) { tr.Scale(2, 2, 2).Translate(1, 0, 0) }, math3d.V3(1, 0, 0), math3d.V3(3, 0, 0)},
		{"translate then scale", func(tr *Transform) { tr.Translate(1, 0, 0).Scale(2, 2, 2) }, math3d.V3(1, 0, 0), math3d.V3(3, 0, 0)},
		{"rotate then translate", func(tr *Transform) { tr.Translate(0, 0, 5).RotateXYZ(0, math.Pi/2, 0) }, math3d.V3(0, 0, 1), math3d.V3(1, 0, 5)},
		{"translations accumulate", func(tr *Transform) { tr.Translate(1, 0, 0).Translate(0, 2, 0) }, math3d.Zero3(), math3d.V3(1, 2, 0)},
		{"scales multiply", func(tr *Transform) { tr.Scale(2, 1, 1).Scale(3, 1, 1) }, math3d.V3(1, 1, 1), math3d.V3(6, 1, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTransform()
			tc.build(tr)
			if got := tr.Apply(tc.in); !vecApprox(got, tc.want) {
				t.Errorf("Apply(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTransformReset(t *testing.T) {
	tr := NewTransform().Translate(5, 5, 5).Scale(3, 3, 3).RotateXYZ(1, 2, 3)
	tr.Reset()
	p := math3d.V3(1, 2, 3)
	if got := tr.Apply(p); !vecApprox(got, p) {
		t.Errorf("after Reset Apply(%v) = %v", p, got)
	}
}

func TestTransformView(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, -5))

	tr := NewTransform().SetView(cam)
	if got := tr.Apply(math3d.Zero3()); !vecApprox(got, math3d.V3(0, 0, 5)) {
		t.Errorf("origin in view = %v, want (0,0,5)", got)
	}

	// Camera turned to face +X sees a point on +X straight ahead
	cam.SetPosition(math3d.Zero3())
	cam.Yaw = math.Pi / 2
	tr.SetView(cam)
	if got := tr.Apply(math3d.V3(4, 0, 0)); !vecApprox(got, math3d.V3(0, 0, 4)) {
		t.Errorf("+X point in view = %v, want (0,0,4)", got)
	}

	tr.ResetView().ViewTranslate(0, 0, 2)
	if got := tr.Apply(math3d.Zero3()); !vecApprox(got, math3d.V3(0, 0, 2)) {
		t.Errorf("ViewTranslate = %v, want (0,0,2)", got)
	}
}

func TestTransformApplyNormal(t *testing.T) {
	tr := NewTransform().Translate(10, 10, 10).Scale(5, 5, 5)
	n := math3d.V3(0, 0, 1)
	if got := tr.ApplyNormal(n); !vecApprox(got, n) {
		t.Errorf("ApplyNormal = %v, want %v", got, n)
	}

	tr.RotateXYZ(0, math.Pi/2, 0)
	if got := tr.ApplyNormal(n); !vecApprox(got, math3d.V3(1, 0, 0)) {
		t.Errorf("rotated ApplyNormal = %v, want (1,0,0)", got)
	}
}

func TestObjectIsFresh(t *testing.T) {
	r, _ := newTestRasterizer(10, 10)
	r.Object().Translate(5, 0, 0).Scale(9, 9, 9)

	if got := r.Object().Apply(math3d.V3(1, 1, 1)); !vecApprox(got, math3d.V3(1, 1, 1)) {
		t.Errorf("second Object leaked state: %v", got)
	}
}

func TestTriangleBufferLifecycle(t *testing.T) {
	r, _ := newTestRasterizer(20, 20)
	r.Clear()
	if r.Buffer().Len() != 0 {
		t.Fatalf("Len after Clear = %d", r.Buffer().Len())
	}

	for range 5 {
		submitFacing(r, 5, math3d.V3(0, 0, -1))
	}
	stats := r.Flush(r.Camera(), Darkness{})
	if stats.Submitted != 5 {
		t.Errorf("Submitted = %d, want 5", stats.Submitted)
	}
	if r.Buffer().Len() != 5 {
		t.Errorf("Flush must not clear the buffer: Len = %d", r.Buffer().Len())
	}

	r.Flush(r.Camera(), Darkness{})
	if r.LastFlush.Submitted != 5 {
		t.Errorf("second Flush Submitted = %d, want 5", r.LastFlush.Submitted)
	}

	r.Clear()
	if r.Buffer().Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", r.Buffer().Len())
	}
}

func TestBindTagsSubmission(t *testing.T) {
	a := NewCheckerBitmap(2, 2, 1, IndexRed, IndexRed)
	b := NewCheckerBitmap(2, 2, 1, IndexBlue, IndexBlue)

	buf := NewTriangleBuffer(0)
	buf.Bind(a)
	buf.Submit(math3d.Zero3(), math3d.Zero3(), math3d.Zero3(), math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{}, math3d.Zero3())
	buf.Submit(math3d.Zero3(), math3d.Zero3(), math3d.Zero3(), math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{}, math3d.Zero3())
	buf.Bind(b)
	buf.Submit(math3d.Zero3(), math3d.Zero3(), math3d.Zero3(), math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{}, math3d.Zero3())

	tris := buf.Triangles()
	if tris[0].Tex != a || tris[1].Tex != a {
		t.Error("triangles submitted before the second Bind must keep the first texture")
	}
	if tris[2].Tex != b {
		t.Error("triangle submitted after Bind(b) must use b")
	}
	if buf.Bound() != b {
		t.Error("Bound should return the last bound texture")
	}

	buf.Clear()
	if buf.Bound() != b {
		t.Error("Clear must not unbind the texture")
	}
}

func TestBindRendersFirstTexture(t *testing.T) {
	r, fb := newTestRasterizer(40, 40)
	r.ClearFrame(IndexBlack)

	r.Bind(NewCheckerBitmap(2, 2, 1, IndexRed, IndexRed))
	submitFacing(r, 5, math3d.V3(0, 0, -1))
	r.Bind(NewCheckerBitmap(2, 2, 1, IndexBlue, IndexBlue))

	r.Flush(r.Camera(), Darkness{})
	if got := center(fb); got != IndexRed {
		t.Errorf("center = %08b, want red %08b", got, IndexRed)
	}
}

func TestTriangleBufferLimit(t *testing.T) {
	buf := NewTriangleBuffer(2)
	for range 3 {
		buf.Submit(math3d.Zero3(), math3d.Zero3(), math3d.Zero3(), math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{}, math3d.Zero3())
	}
	if buf.Len() != 2 {
		t.Errorf("Len = %d, want 2", buf.Len())
	}
	if buf.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", buf.Dropped())
	}

	buf.Clear()
	if buf.Dropped() != 0 {
		t.Errorf("Dropped after Clear = %d, want 0", buf.Dropped())
	}
}

func TestBackfaceCulling(t *testing.T) {
	tests := []struct {
		name   string
		normal math3d.Vec3
		drawn  bool
	}{
		{"facing camera", math3d.V3(0, 0, -1), true},
		{"facing away", math3d.V3(0, 0, 1), false},
		{"edge on", math3d.V3(1, 0, 0), true},
		{"zero normal", math3d.Zero3(), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := newTestRasterizer(40, 40)
			r.ClearFrame(IndexBlack)
			r.ClearDepth()
			submitFacing(r, 5, tc.normal)

			stats := r.Flush(r.Camera(), Darkness{})
			if drawn := stats.Drawn == 1; drawn != tc.drawn {
				t.Errorf("Drawn = %d, Culled = %d, want drawn=%v", stats.Drawn, stats.Culled, tc.drawn)
			}
			wantPixel := IndexBlack
			if tc.drawn {
				wantPixel = r.FlatColor
			}
			if got := center(fb); got != wantPixel {
				t.Errorf("center pixel = %08b, want %08b", got, wantPixel)
			}
		})
	}
}

func TestBackfaceCullingDisabled(t *testing.T) {
	r, _ := newTestRasterizer(40, 40)
	r.DisableBackfaceCulling = true
	submitFacing(r, 5, math3d.V3(0, 0, 1))
	if stats := r.Flush(r.Camera(), Darkness{}); stats.Drawn != 1 {
		t.Errorf("Drawn = %d, want 1", stats.Drawn)
	}
}

func TestNearPlaneClip(t *testing.T) {
	r, _ := newTestRasterizer(40, 40)
	r.Buffer().Submit(
		math3d.V3(-1, -1, 0.05), math3d.V3(1, -1, 5), math3d.V3(0, 1, 5),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
		math3d.V3(0, 0, -1),
	)
	submitFacing(r, 500, math3d.V3(0, 0, -1))

	stats := r.Flush(r.Camera(), Darkness{})
	if stats.Clipped != 2 || stats.Drawn != 0 {
		t.Errorf("stats = %+v, want 2 clipped", stats)
	}
}

func TestFlushNonFinite(t *testing.T) {
	r, fb := newTestRasterizer(40, 40)
	r.ClearFrame(IndexBlack)
	r.ClearDepth()
	tex := NewBitmap(2, 2)
	tex.Pixels = []uint8{IndexWhite, IndexWhite, IndexWhite, IndexWhite}
	r.Bind(tex)

	nan := math.NaN()
	r.Buffer().Submit(
		math3d.V3(-2, -2, 5), math3d.V3(2, -2, 5), math3d.V3(0, 2, 5),
		math3d.V2(nan, nan), math3d.V2(math.Inf(1), 0), math3d.V2(0, math.Inf(-1)),
		math3d.V3(0, 0, -1),
	)
	r.Buffer().Submit(
		math3d.V3(nan, -2, 5), math3d.V3(2, -2, 5), math3d.V3(0, 2, 5),
		math3d.Vec2{}, math3d.Vec2{}, math3d.Vec2{},
		math3d.V3(0, 0, -1),
	)

	stats := r.Flush(r.Camera(), Darkness{})
	if stats.Drawn != 1 || stats.Clipped != 1 {
		t.Errorf("stats = %+v, want 1 drawn 1 clipped", stats)
	}
	if got := center(fb); got != IndexWhite {
		t.Errorf("center = %08b, want texel", got)
	}
}

func TestDarknessLevel(t *testing.T) {
	d := Darkness{Enabled: true, Near: 10, Far: 30}

	tests := []struct {
		name string
		dist float64
		want float64
	}{
		{"before near", 2, 0},
		{"at near", 10, 0},
		{"midway", 20, MaxDarkness / 2},
		{"quarter", 15, MaxDarkness / 4},
		{"at far", 30, MaxDarkness},
		{"beyond far", 100, MaxDarkness},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.Level(tc.dist); !approxEqual(got, tc.want, 1e-9) {
				t.Errorf("Level(%v) = %v, want %v", tc.dist, got, tc.want)
			}
		})
	}

	if got := (Darkness{Near: 10, Far: 30}).Level(100); got != 0 {
		t.Errorf("disabled Level = %v, want 0", got)
	}
	if got := (Darkness{Enabled: true, Near: 5, Far: 5}).Level(6); got != MaxDarkness {
		t.Errorf("collapsed range Level = %v, want max", got)
	}
}

func TestFlushDarkening(t *testing.T) {
	tests := []struct {
		name string
		dark Darkness
		want uint8
	}{
		{"disabled", Darkness{}, IndexWhite},
		{"closer than near", Darkness{Enabled: true, Near: 50, Far: 60}, IndexWhite},
		{"beyond far", Darkness{Enabled: true, Near: 1, Far: 2}, IndexBlack},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := newTestRasterizer(40, 40)
			r.ClearFrame(IndexBlue)
			submitFacing(r, 5, math3d.V3(0, 0, -1))
			r.Flush(r.Camera(), tc.dark)
			if got := center(fb); got != tc.want {
				t.Errorf("center = %08b, want %08b", got, tc.want)
			}
		})
	}
}

func TestDepthOrdering(t *testing.T) {
	for _, nearFirst := range []bool{true, false} {
		r, fb := newTestRasterizer(40, 40)
		r.ClearFrame(IndexBlack)
		red := NewCheckerBitmap(1, 1, 1, IndexRed, IndexRed)
		blue := NewCheckerBitmap(1, 1, 1, IndexBlue, IndexBlue)

		near := func() { r.Bind(red); submitFacing(r, 3, math3d.V3(0, 0, -1)) }
		far := func() { r.Bind(blue); submitFacing(r, 6, math3d.V3(0, 0, -1)) }
		if nearFirst {
			near()
			far()
		} else {
			far()
			near()
		}

		r.Flush(r.Camera(), Darkness{})
		if got := center(fb); got != IndexRed {
			t.Errorf("nearFirst=%v: center = %08b, want red", nearFirst, got)
		}
	}
}

func TestAlphaKeyTexelsSkipped(t *testing.T) {
	r, fb := newTestRasterizer(40, 40)
	r.ClearFrame(IndexGreen)
	r.Bind(NewCheckerBitmap(4, 4, 1, AlphaKey, AlphaKey))
	submitFacing(r, 5, math3d.V3(0, 0, -1))
	r.Flush(r.Camera(), Darkness{})

	if got := center(fb); got != IndexGreen {
		t.Errorf("center = %08b, want background", got)
	}
}

func TestClearAndDarkenFrame(t *testing.T) {
	r, fb := newTestRasterizer(8, 8)
	r.ClearFrame(IndexWhite)
	for i, p := range fb.Pixels {
		if p != IndexWhite {
			t.Fatalf("pixel %d = %08b after ClearFrame", i, p)
		}
	}

	r.DarkenFrame(0)
	if fb.Pixels[0] != IndexWhite {
		t.Error("DarkenFrame(0) must not change pixels")
	}

	r.DarkenFrame(MaxDarkness / 2)
	if fb.Pixels[0] != IndexGray {
		t.Errorf("half darkened white = %08b, want %08b", fb.Pixels[0], IndexGray)
	}

	r.DarkenFrame(MaxDarkness)
	for i, p := range fb.Pixels {
		if p != IndexBlack {
			t.Fatalf("pixel %d = %08b after full darken", i, p)
		}
	}
}

func TestDrawMesh(t *testing.T) {
	cube := models.NewCube(1)

	t.Run("visible cube", func(t *testing.T) {
		r, fb := newTestRasterizer(64, 64)
		r.ClearFrame(IndexBlack)
		if err := r.DrawMesh(r.Object().Translate(0, 0, 5), cube); err != nil {
			t.Fatal(err)
		}
		if r.Buffer().Len() != 12 {
			t.Fatalf("submitted %d triangles, want 12", r.Buffer().Len())
		}

		stats := r.Flush(r.Camera(), Darkness{})
		// Only the face toward the eye survives
		if stats.Drawn != 2 || stats.Culled != 10 {
			t.Errorf("stats = %+v, want 2 drawn 10 culled", stats)
		}
		// Off the quad diagonal so exactly one triangle owns the pixel
		if got := fb.GetPixel(28, 32); got != r.FlatColor {
			t.Errorf("pixel = %08b, want flat color", got)
		}
	})

	t.Run("behind camera", func(t *testing.T) {
		r, _ := newTestRasterizer(64, 64)
		if err := r.DrawMesh(r.Object().Translate(0, 0, -5), cube); err != nil {
			t.Fatal(err)
		}
		if r.Buffer().Len() != 0 {
			t.Errorf("culled mesh submitted %d triangles", r.Buffer().Len())
		}
		if r.CullingStats.MeshesCulled != 1 {
			t.Errorf("CullingStats = %+v", r.CullingStats)
		}
	})

	t.Run("nil mesh", func(t *testing.T) {
		r, _ := newTestRasterizer(64, 64)
		if err := r.DrawMesh(r.Object(), nil); err != nil {
			t.Errorf("nil mesh err = %v", err)
		}
		if r.CullingStats.MeshesTested != 0 {
			t.Error("nil mesh should not be tested")
		}
	})
}

func TestIsVisible(t *testing.T) {
	r, _ := newTestRasterizer(64, 64)
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"ahead", NewAABB(math3d.V3(-1, -1, 4), math3d.V3(1, 1, 6)), true},
		{"behind", NewAABB(math3d.V3(-1, -1, -6), math3d.V3(1, 1, -4)), false},
		{"far left", NewAABB(math3d.V3(-60, -1, 4), math3d.V3(-50, 1, 6)), false},
		{"beyond far", NewAABB(math3d.V3(-1, -1, 200), math3d.V3(1, 1, 210)), false},
		{"around eye", NewAABB(math3d.V3(-10, -10, -10), math3d.V3(10, 10, 10)), true},
		// Bounding sphere crosses the left plane but the box does not
		{"just outside left", NewAABB(math3d.V3(-3, -0.5, 4), math3d.V3(-2.5, 0.5, 4.2)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.IsVisible(tc.box); got != tc.want {
				t.Errorf("IsVisible(%v) = %v, want %v", tc.box, got, tc.want)
			}
		})
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera()
	cam.FOV = math.Pi / 2 // focal = height/2

	x, y, ok := cam.Project(math3d.V3(0, 0, 5), 100, 80)
	if !ok || x != 50 || y != 40 {
		t.Errorf("center projects to (%v,%v,%v)", x, y, ok)
	}

	x, y, ok = cam.Project(math3d.V3(1, 1, 2), 100, 80)
	if !ok || !approxEqual(x, 70, 1e-9) || !approxEqual(y, 20, 1e-9) {
		t.Errorf("(1,1,2) projects to (%v,%v), want (70,20)", x, y)
	}

	if _, _, ok := cam.Project(math3d.V3(0, 0, -1), 100, 80); ok {
		t.Error("point behind the eye must not project")
	}
}

func BenchmarkDrawMesh(b *testing.B) {
	r, _ := newTestRasterizer(200, 200)
	cube := models.NewCube(1)

	for b.Loop() {
		r.Clear()
		r.ClearDepth()
		_ = r.DrawMesh(r.Object().Translate(0, 0, 4).RotateXYZ(0.3, 0.6, 0), cube)
		r.Flush(r.Camera(), Darkness{})
	}
}
