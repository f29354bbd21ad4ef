// Package assets resolves named bitmaps and meshes for the scenes. A pack
// is built once at startup and read-only afterwards.
package assets

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/taigrr/skyfish/internal/logger"
	"github.com/taigrr/skyfish/pkg/models"
	"github.com/taigrr/skyfish/pkg/render"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a pack has no asset of the requested name.
var ErrNotFound = errors.New("asset not found")

// Manifest lists asset files by name. Paths are relative to the manifest.
type Manifest struct {
	Bitmaps map[string]string `yaml:"bitmaps"`
	Meshes  map[string]string `yaml:"meshes"`
}

// Pack holds loaded assets by name.
type Pack struct {
	bitmaps map[string]*render.Bitmap
	meshes  map[string]*models.Mesh
}

// NewPack creates an empty pack.
func NewPack() *Pack {
	return &Pack{
		bitmaps: make(map[string]*render.Bitmap),
		meshes:  make(map[string]*models.Mesh),
	}
}

// AddBitmap registers a bitmap, replacing any previous one of that name.
func (p *Pack) AddBitmap(name string, bmp *render.Bitmap) {
	p.bitmaps[name] = bmp
}

// AddMesh registers a mesh, replacing any previous one of that name.
func (p *Pack) AddMesh(name string, mesh *models.Mesh) {
	p.meshes[name] = mesh
}

// Bitmap returns the named bitmap.
func (p *Pack) Bitmap(name string) (*render.Bitmap, error) {
	bmp, ok := p.bitmaps[name]
	if !ok {
		return nil, fmt.Errorf("bitmap %q: %w", name, ErrNotFound)
	}
	return bmp, nil
}

// Mesh returns the named mesh.
func (p *Pack) Mesh(name string) (*models.Mesh, error) {
	mesh, ok := p.meshes[name]
	if !ok {
		return nil, fmt.Errorf("mesh %q: %w", name, ErrNotFound)
	}
	return mesh, nil
}

// Merge copies every asset of other into p. Entries from other win.
func (p *Pack) Merge(other *Pack) {
	if other == nil {
		return
	}
	maps.Copy(p.bitmaps, other.bitmaps)
	maps.Copy(p.meshes, other.meshes)
}

// BitmapNames returns the bitmap names in sorted order.
func (p *Pack) BitmapNames() []string {
	return slices.Sorted(maps.Keys(p.bitmaps))
}

// MeshNames returns the mesh names in sorted order.
func (p *Pack) MeshNames() []string {
	return slices.Sorted(maps.Keys(p.meshes))
}

// Destroy releases every mesh and empties the pack.
func (p *Pack) Destroy() {
	for _, m := range p.meshes {
		m.Destroy()
	}
	clear(p.meshes)
	clear(p.bitmaps)
}

// ReadManifest parses a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// LoadManifest loads every asset a manifest lists. A glTF mesh with an
// embedded texture also registers that texture under the mesh name unless
// the manifest names a bitmap of its own for it.
func LoadManifest(path string) (*Pack, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	log := logger.Named("assets")
	pack := NewPack()

	for _, name := range slices.Sorted(maps.Keys(m.Bitmaps)) {
		file := resolve(dir, m.Bitmaps[name])
		bmp, err := render.LoadBitmap(file)
		if err != nil {
			return nil, fmt.Errorf("loading bitmap %q: %w", name, err)
		}
		pack.AddBitmap(name, bmp)
		log.Debug("bitmap loaded", zap.String("name", name), zap.Int("width", bmp.Width), zap.Int("height", bmp.Height))
	}

	for _, name := range slices.Sorted(maps.Keys(m.Meshes)) {
		file := resolve(dir, m.Meshes[name])
		mesh, tex, err := loadMesh(file)
		if err != nil {
			return nil, fmt.Errorf("loading mesh %q: %w", name, err)
		}
		mesh.Name = name
		pack.AddMesh(name, mesh)
		if _, ok := m.Bitmaps[name]; tex != nil && !ok {
			pack.AddBitmap(name, tex)
		}
		log.Debug("mesh loaded",
			zap.String("name", name),
			zap.Int("triangles", mesh.TriangleCount()),
			zap.Bool("embedded_texture", tex != nil))
	}

	return pack, nil
}

func loadMesh(path string) (*models.Mesh, *render.Bitmap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		mesh, img, err := models.LoadGLBWithTexture(path)
		if err != nil {
			return nil, nil, err
		}
		if img == nil {
			return mesh, nil, nil
		}
		return mesh, render.BitmapFromImage(img), nil
	default:
		mesh, err := models.Load(path)
		return mesh, nil, err
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Open returns the built-in pack overlaid with the manifest at path, if
// any.
func Open(manifest string) (*Pack, error) {
	pack := Builtin()
	if manifest == "" {
		return pack, nil
	}
	loaded, err := LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	pack.Merge(loaded)
	logger.Info("asset manifest loaded",
		zap.String("path", manifest),
		zap.Int("bitmaps", len(loaded.bitmaps)),
		zap.Int("meshes", len(loaded.meshes)))
	return pack, nil
}
