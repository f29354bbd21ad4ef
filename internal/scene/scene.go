// Package scene implements the scene interface and the manager that drives
// the active scene.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/taigrr/skyfish/internal/assets"
	"github.com/taigrr/skyfish/internal/config"
	"github.com/taigrr/skyfish/internal/input"
	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
)

// Scene errors.
var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrDuplicateScene = errors.New("scene already registered")
)

// Scene is one screen of the game.
type Scene interface {
	// Name identifies the scene for Change.
	Name() string

	// Init is called once, when the scene is registered.
	Init(ctx *Context) error

	// Update advances the scene by dt frames (1 at 60 FPS).
	Update(dt float64) error

	// Draw renders the scene, installing its own camera on r.
	Draw(r *render.Rasterizer)

	// Destroy releases scene resources.
	Destroy()

	// OnSwap is called each time the scene becomes active.
	OnSwap()
}

// StatusReporter is implemented by scenes with a one-line status for the
// presenter's overlay.
type StatusReporter interface {
	Status() string
}

// Context carries what scenes need from the program.
type Context struct {
	Assets *assets.Pack
	Input  input.Stick
	Config *config.Config

	// Change schedules a switch to the named scene at the next update.
	Change func(name string) error
}

// Manager owns the registered scenes and the active one.
type Manager struct {
	ctx     *Context
	scenes  map[string]Scene
	order   []string
	current Scene
	next    Scene
	log     *zap.Logger
}

// NewManager creates a manager. ctx.Change is wired to the manager.
func NewManager(ctx *Context) *Manager {
	m := &Manager{
		ctx:    ctx,
		scenes: make(map[string]Scene),
		log:    logger.Named("scene"),
	}
	ctx.Change = m.Change
	return m
}

// Register initializes s and adds it to the manager.
func (m *Manager) Register(s Scene) error {
	name := s.Name()
	if _, ok := m.scenes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateScene, name)
	}
	if err := s.Init(m.ctx); err != nil {
		return fmt.Errorf("init scene %s: %w", name, err)
	}
	m.scenes[name] = s
	m.order = append(m.order, name)
	m.log.Debug("scene registered", zap.String("name", name))
	return nil
}

// Change schedules a switch to the named scene.
func (m *Manager) Change(name string) error {
	s, ok := m.scenes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	m.next = s
	return nil
}

// ChangeNext schedules the scene registered after the active one, wrapping
// around. Before any scene is active it picks the first.
func (m *Manager) ChangeNext() error {
	if len(m.order) == 0 {
		return ErrUnknownScene
	}
	cur := m.current
	if m.next != nil {
		cur = m.next
	}
	next := m.order[0]
	for i, name := range m.order {
		if cur != nil && name == cur.Name() {
			next = m.order[(i+1)%len(m.order)]
			break
		}
	}
	return m.Change(next)
}

// Current returns the active scene, or nil before the first update.
func (m *Manager) Current() Scene {
	return m.current
}

// Update performs a pending switch and updates the active scene.
func (m *Manager) Update(dt float64) error {
	if m.next != nil {
		from := ""
		if m.current != nil {
			from = m.current.Name()
		}
		m.current, m.next = m.next, nil
		m.current.OnSwap()
		m.log.Info("scene changed", zap.String("from", from), zap.String("to", m.current.Name()))
	}

	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

// Status returns the active scene's status line, if it reports one.
func (m *Manager) Status() string {
	if s, ok := m.current.(StatusReporter); ok {
		return s.Status()
	}
	return ""
}

// Draw renders the active scene.
func (m *Manager) Draw(r *render.Rasterizer) {
	if m.current != nil {
		m.current.Draw(r)
	}
}

// Destroy destroys every scene in reverse registration order.
func (m *Manager) Destroy() {
	for i := len(m.order) - 1; i >= 0; i-- {
		m.scenes[m.order[i]].Destroy()
	}
	clear(m.scenes)
	m.order = nil
	m.current, m.next = nil, nil
}

// MaxFrameFactor caps dt so a stall does not tunnel the player through
// walls.
const MaxFrameFactor = 5.0

// FrameFactor converts a frame duration into dt: 1 at 60 FPS, capped at
// MaxFrameFactor.
func FrameFactor(elapsed time.Duration) float64 {
	dt := elapsed.Seconds() * 60
	return min(max(dt, 0), MaxFrameFactor)
}
