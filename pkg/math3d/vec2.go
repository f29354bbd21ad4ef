package math3d

// Vec2 represents a 2D vector. It carries stick input and UV coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Clamp clamps both components to [lo, hi].
func (a Vec2) Clamp(lo, hi float64) Vec2 {
	return Vec2{clamp(a.X, lo, hi), clamp(a.Y, lo, hi)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
