package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/qmuntal/gltf"
)

// GLTFLoader loads GLTF/GLB files into the four-array Mesh layout.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals for primitives without a
	// NORMAL attribute.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// gltfBuilder accumulates primitives into unified arrays.
type gltfBuilder struct {
	vertices []float32
	uvs      []float32
	normals  []float32
	indices  []uint32

	smooth     bool
	hasUVs     bool
	hasNormals bool
}

// Load loads a GLTF or GLB file and returns a Mesh. All triangle primitives
// of all meshes in the document are merged.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.loadDocument(doc, filepath.Base(path))
}

// loadDocument merges the triangle primitives of an opened document.
// Malformed references fail with ErrCorruptMesh.
func (l *GLTFLoader) loadDocument(doc *gltf.Document, name string) (*Mesh, error) {
	b := gltfBuilder{smooth: l.CalculateNormals}
	for _, m := range doc.Meshes {
		if m == nil {
			continue
		}
		if err := b.processMesh(doc, m); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if !b.hasUVs {
		b.uvs = nil
	}
	if !b.hasNormals {
		b.normals = nil
	}
	return NewMesh(name, b.vertices, b.uvs, b.normals, b.indices)
}

// processMesh appends the triangle primitives of m, rebasing their indices
// past the vertices already collected.
func (b *gltfBuilder) processMesh(doc *gltf.Document, m *gltf.Mesh) error {
	for _, prim := range m.Primitives {
		if prim == nil || prim.Mode != gltf.PrimitiveTriangles {
			// Lines, points and strips are not drawn
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readFloatAccessor(doc, posIdx, gltf.AccessorVec3, 3)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		count := len(positions) / 3

		var local []uint32
		if prim.Indices != nil {
			local, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			local = local[:len(local)/3*3]
			for i, idx := range local {
				if int(idx) >= count {
					return fmt.Errorf("%w: index %d at %d exceeds %d positions", ErrCorruptMesh, idx, i, count)
				}
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < count; i += 3 {
				local = append(local, uint32(i), uint32(i+1), uint32(i+2))
			}
		}

		// Missing attributes are zero-filled so indices stay unified
		var normals []float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readFloatAccessor(doc, normIdx, gltf.AccessorVec3, 3)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
			if len(normals) != len(positions) {
				return fmt.Errorf("%w: %d normals for %d positions", ErrCorruptMesh, len(normals)/3, count)
			}
			b.hasNormals = true
		} else if b.smooth {
			normals = smoothNormals(positions, local)
			b.hasNormals = true
		} else {
			normals = make([]float32, count*3)
		}

		uvs := make([]float32, count*2)
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uv, err := readFloatAccessor(doc, uvIdx, gltf.AccessorVec2, 2)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
			if len(uv) != len(uvs) {
				return fmt.Errorf("%w: %d uvs for %d positions", ErrCorruptMesh, len(uv)/2, count)
			}
			copy(uvs, uv)
			b.hasUVs = true
		}

		base := uint32(len(b.vertices) / 3)
		b.vertices = append(b.vertices, positions...)
		b.normals = append(b.normals, normals...)
		b.uvs = append(b.uvs, uvs...)
		for _, idx := range local {
			b.indices = append(b.indices, base+idx)
		}
	}

	return nil
}

// accessorAt returns accessor idx of doc.
func accessorAt(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrCorruptMesh, idx)
	}
	return doc.Accessors[idx], nil
}

// readFloatAccessor reads a float VEC2/VEC3 accessor into a flat slice.
func readFloatAccessor(doc *gltf.Document, accessorIdx int, want gltf.AccessorType, comps int) ([]float32, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != want {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrCorruptMesh, want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	buf, stride, err := accessorBytes(doc, accessor, comps*4)
	if err != nil {
		return nil, err
	}

	result := make([]float32, accessor.Count*comps)
	for i := range accessor.Count {
		offset := i * stride
		for j := range comps {
			bits := binary.LittleEndian.Uint32(buf[offset+j*4:])
			result[i*comps+j] = math.Float32frombits(bits)
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: expected SCALAR indices, got %v", ErrCorruptMesh, accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	buf, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		switch size {
		case 1:
			result[i] = uint32(buf[offset])
		case 2:
			result[i] = uint32(binary.LittleEndian.Uint16(buf[offset:]))
		case 4:
			result[i] = binary.LittleEndian.Uint32(buf[offset:])
		}
	}
	return result, nil
}

// accessorBytes returns the bytes of accessor starting at its first
// element, together with the element stride. Every one of the accessor's
// Count elements of elemSize bytes is guaranteed to lie inside the slice.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("%w: accessor has no buffer view", ErrCorruptMesh)
	}
	view, bv, err := bufferViewBytes(doc, *accessor.BufferView)
	if err != nil {
		return nil, 0, err
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return nil, 0, fmt.Errorf("%w: stride %d below element size %d", ErrCorruptMesh, stride, elemSize)
	}

	n, off := accessor.Count, accessor.ByteOffset
	if n < 0 || off < 0 || off > len(view) {
		return nil, 0, fmt.Errorf("%w: accessor offset %d count %d in a %d byte view", ErrCorruptMesh, off, n, len(view))
	}
	if n == 0 {
		return nil, stride, nil
	}
	avail := len(view) - off
	if avail < elemSize || n-1 > (avail-elemSize)/stride {
		return nil, 0, fmt.Errorf("%w: %d elements of %d bytes overrun a %d byte view", ErrCorruptMesh, n, elemSize, len(view))
	}
	return view[off:], stride, nil
}

// bufferViewBytes resolves buffer view idx to the bytes it covers.
func bufferViewBytes(doc *gltf.Document, idx int) ([]byte, *gltf.BufferView, error) {
	if idx < 0 || idx >= len(doc.BufferViews) || doc.BufferViews[idx] == nil {
		return nil, nil, fmt.Errorf("%w: buffer view %d out of range", ErrCorruptMesh, idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
		return nil, nil, fmt.Errorf("%w: buffer view %d names missing buffer %d", ErrCorruptMesh, idx, bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset < 0 || bv.ByteLength < 0 ||
		bv.ByteOffset > len(data) || bv.ByteLength > len(data)-bv.ByteOffset {
		return nil, nil, fmt.Errorf("%w: buffer view %d spans %d+%d of a %d byte buffer",
			ErrCorruptMesh, idx, bv.ByteOffset, bv.ByteLength, len(data))
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], bv, nil
}

// LoadGLTFWithTextures loads a GLTF file and extracts its textures.
// Returns the mesh and a map of image index to encoded image data.
// External image files that cannot be read are skipped.
func LoadGLTFWithTextures(path string) (*Mesh, map[int][]byte, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().loadDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	textures, err := documentImages(doc, filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	return mesh, textures, nil
}

// documentImages collects the encoded bytes of every image in doc.
// Relative URIs resolve against dir.
func documentImages(doc *gltf.Document, dir string) (map[int][]byte, error) {
	textures := make(map[int][]byte)
	for i, img := range doc.Images {
		switch {
		case img == nil:
		case img.BufferView != nil:
			data, _, err := bufferViewBytes(doc, *img.BufferView)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i, err)
			}
			textures[i] = data
		case img.IsEmbeddedResource():
			data, err := img.MarshalData()
			if err != nil {
				return nil, fmt.Errorf("%w: image %d: %v", ErrCorruptMesh, i, err)
			}
			textures[i] = data
		case img.URI != "":
			data, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err == nil {
				textures[i] = data
			}
		}
	}
	return textures, nil
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable texture. The texture is nil if none is embedded.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, textures, err := LoadGLTFWithTextures(path)
	if err != nil {
		return nil, nil, err
	}

	for _, i := range slices.Sorted(maps.Keys(textures)) {
		data := textures[i]
		if len(data) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err == nil {
			return mesh, img, nil
		}
	}

	return mesh, nil, nil
}
