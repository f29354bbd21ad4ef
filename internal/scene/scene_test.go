package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/taigrr/skyfish/pkg/render"
)

type recorder struct {
	name    string
	events  *[]string
	initErr error
	updErr  error
	ctx     *Context
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Init(ctx *Context) error {
	r.ctx = ctx
	*r.events = append(*r.events, r.name+".init")
	return r.initErr
}

func (r *recorder) Update(dt float64) error {
	*r.events = append(*r.events, r.name+".update")
	return r.updErr
}

func (r *recorder) Draw(*render.Rasterizer) {
	*r.events = append(*r.events, r.name+".draw")
}

func (r *recorder) Destroy() { *r.events = append(*r.events, r.name+".destroy") }
func (r *recorder) OnSwap()  { *r.events = append(*r.events, r.name+".swap") }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestManagerLifecycle(t *testing.T) {
	var events []string
	m := NewManager(&Context{})

	a := &recorder{name: "stage", events: &events}
	b := &recorder{name: "crate", events: &events}
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(b); err != nil {
		t.Fatal(err)
	}

	// Nothing is active before the first Change
	if err := m.Update(1); err != nil {
		t.Fatal(err)
	}
	m.Draw(nil)
	if m.Current() != nil {
		t.Fatal("no scene should be active yet")
	}

	if err := m.Change("stage"); err != nil {
		t.Fatal(err)
	}
	_ = m.Update(1)
	m.Draw(nil)

	// Scenes can switch through their context
	if err := a.ctx.Change("crate"); err != nil {
		t.Fatal(err)
	}
	_ = m.Update(1)
	m.Destroy()

	want := []string{
		"stage.init", "crate.init",
		"stage.swap", "stage.update", "stage.draw",
		"crate.swap", "crate.update",
		"crate.destroy", "stage.destroy",
	}
	if !equal(events, want) {
		t.Errorf("events:\n got %v\nwant %v", events, want)
	}
}

func TestManagerErrors(t *testing.T) {
	var events []string
	m := NewManager(&Context{})

	if err := m.Change("missing"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Change: expected ErrUnknownScene, got %v", err)
	}

	if err := m.Register(&recorder{name: "a", events: &events}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&recorder{name: "a", events: &events}); !errors.Is(err, ErrDuplicateScene) {
		t.Errorf("Register: expected ErrDuplicateScene, got %v", err)
	}

	initErr := errors.New("missing bitmap")
	if err := m.Register(&recorder{name: "b", events: &events, initErr: initErr}); !errors.Is(err, initErr) {
		t.Errorf("Register: expected init error, got %v", err)
	}
	if err := m.Change("b"); !errors.Is(err, ErrUnknownScene) {
		t.Error("a scene that failed Init must not be registered")
	}

	updErr := errors.New("boom")
	if err := m.Register(&recorder{name: "c", events: &events, updErr: updErr}); err != nil {
		t.Fatal(err)
	}
	_ = m.Change("c")
	if err := m.Update(1); !errors.Is(err, updErr) {
		t.Errorf("Update: expected scene error, got %v", err)
	}
}

func TestManagerChangeNext(t *testing.T) {
	var events []string
	m := NewManager(&Context{})
	if err := m.ChangeNext(); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("empty manager: %v", err)
	}

	for _, name := range []string{"stage", "crate", "credits"} {
		if err := m.Register(&recorder{name: name, events: &events}); err != nil {
			t.Fatal(err)
		}
	}

	var seen []string
	for range 4 {
		if err := m.ChangeNext(); err != nil {
			t.Fatal(err)
		}
		_ = m.Update(1)
		seen = append(seen, m.Current().Name())
	}
	if want := []string{"stage", "crate", "credits", "stage"}; !equal(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}
}

func TestFrameFactor(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{time.Second / 60, 1},
		{time.Second / 30, 2},
		{0, 0},
		{-time.Second, 0},
		{time.Second, MaxFrameFactor},
	}
	for _, tt := range tests {
		got := FrameFactor(tt.elapsed)
		if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("FrameFactor(%v) = %g, want %g", tt.elapsed, got, tt.want)
		}
	}
}
