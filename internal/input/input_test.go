package input

import (
	"testing"

	"github.com/taigrr/skyfish/pkg/math3d"
)

func TestPadPressAndDecay(t *testing.T) {
	p := NewPad()
	p.Press(Right)
	p.Update(1)

	if got := p.Stick(); got.X != 1 || got.Y != 0 {
		t.Fatalf("after press: %v, want (1, 0)", got)
	}

	p.Update(1)
	if got := p.Stick().X; got != DefaultDecay {
		t.Errorf("after one idle frame: %g, want %g", got, DefaultDecay)
	}

	for range 30 {
		p.Update(1)
	}
	if got := p.Stick(); got != (math3d.Vec2{}) {
		t.Errorf("axis should settle at rest, got %v", got)
	}
}

func TestPadRepeatHoldsAxis(t *testing.T) {
	p := NewPad()
	for range 10 {
		p.Press(Up)
		p.Update(1)
	}
	if got := p.Stick().Y; got != -1 {
		t.Errorf("repeated press should hold the axis, got %g", got)
	}
}

func TestPadAxesDecayIndependently(t *testing.T) {
	p := NewPad()
	p.Press(Left)
	p.Press(Down)
	p.Update(1)

	p.Press(Down)
	p.Update(1)

	got := p.Stick()
	if got.Y != 1 {
		t.Errorf("held Y axis decayed: %g", got.Y)
	}
	if got.X != -DefaultDecay {
		t.Errorf("idle X axis: %g, want %g", got.X, -DefaultDecay)
	}
}

func TestPadRelease(t *testing.T) {
	p := NewPad()
	p.Press(Left)
	p.Release(Left)
	if got := p.Stick().X; got != 0 {
		t.Errorf("release should zero the axis, got %g", got)
	}
}

func TestPadSetClamps(t *testing.T) {
	p := NewPad()
	p.Set(math3d.V2(3, -0.5))
	p.Update(1)

	if got := p.Stick(); got.X != 1 || got.Y != -0.5 {
		t.Errorf("Set: %v, want (1, -0.5)", got)
	}
}

func TestPadSatisfiesStick(t *testing.T) {
	var s Stick = NewPad()
	if s.Stick() != (math3d.Vec2{}) {
		t.Error("new pad should be at rest")
	}
}
