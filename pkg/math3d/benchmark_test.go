package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkRotateXYZ(b *testing.B) {
	angles := V3(0.3, 0.7, 1.1)

	for b.Loop() {
		_ = RotateXYZ(angles)
	}
}

func BenchmarkModelMatrix(b *testing.B) {
	// Translate · Rotate · Scale, as built for every drawn object
	t := V3(1, 2, 3)
	r := V3(0.1, 0.2, 0.3)
	s := V3(2, 2, 2)

	for b.Loop() {
		_ = Translate(t).Mul(RotateXYZ(r)).Mul(Scale(s))
	}
}

func BenchmarkPlaneDistance(b *testing.B) {
	p := PlaneFromPoint(V3(0, 0, 1), V3(1, 1, 1))
	pt := V3(4, 5, 6)

	for b.Loop() {
		_, _ = p.Distance(pt)
	}
}
