package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// meshHeaderSize is four little-endian uint32 counts.
const meshHeaderSize = 16

// ParseMesh parses a binary mesh from raw bytes.
//
// Layout (little-endian):
//
//	uint32 vertexCount, uvCount, normalCount, elementCount
//	float32[3*vertexCount] positions
//	float32[2*uvCount]     uvs
//	float32[3*normalCount] normals
//	uint32[elementCount]   indices
func ParseMesh(data []byte) (*Mesh, error) {
	if len(data) < meshHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need a %d byte header", ErrTruncatedMesh, len(data), meshHeaderSize)
	}

	r := bytes.NewReader(data)
	var counts [4]uint32
	if err := binary.Read(r, binary.LittleEndian, &counts); err != nil {
		return nil, fmt.Errorf("%w: reading counts", ErrTruncatedMesh)
	}
	vc, uc, nc, ec := counts[0], counts[1], counts[2], counts[3]

	// Check the size up front so bogus counts never drive an allocation
	want := uint64(meshHeaderSize) + 4*(3*uint64(vc)+2*uint64(uc)+3*uint64(nc)+uint64(ec))
	if uint64(len(data)) < want {
		return nil, fmt.Errorf("%w: counts %d/%d/%d/%d need %d bytes, have %d",
			ErrTruncatedMesh, vc, uc, nc, ec, want, len(data))
	}
	if uint64(len(data)) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptMesh, uint64(len(data))-want)
	}

	vertices := make([]float32, 3*vc)
	uvs := make([]float32, 2*uc)
	normals := make([]float32, 3*nc)
	indices := make([]uint32, ec)

	for _, section := range []struct {
		name string
		dst  any
	}{
		{"positions", vertices},
		{"uvs", uvs},
		{"normals", normals},
		{"indices", indices},
	} {
		if err := binary.Read(r, binary.LittleEndian, section.dst); err != nil {
			return nil, fmt.Errorf("%w: reading %s", ErrTruncatedMesh, section.name)
		}
	}

	m := &Mesh{
		Vertices:     vertices,
		UVs:          uvs,
		Normals:      normals,
		Indices:      indices,
		VertexCount:  vc,
		UVCount:      uc,
		NormalCount:  nc,
		ElementCount: ec,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.CalculateBounds()
	return m, nil
}

// LoadMesh parses a binary mesh file from disk.
func LoadMesh(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	m, err := ParseMesh(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	m.Name = filepath.Base(path)
	return m, nil
}

// WriteMesh encodes m in the binary mesh format.
func WriteMesh(w io.Writer, m *Mesh) error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrCorruptMesh)
	}
	counts := [4]uint32{m.VertexCount, m.UVCount, m.NormalCount, m.ElementCount}
	for _, v := range []any{counts, m.Vertices, m.UVs, m.Normals, m.Indices} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing mesh: %w", err)
		}
	}
	return nil
}

// Load loads a mesh file, choosing the decoder from the extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mesh", ".bin":
		return LoadMesh(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s (use .mesh or .glb)", ext)
	}
}
