package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errUnsupportedVersion = errors.New("unsupported glTF version, want 2.x")
	errNotGLB             = errors.New("not a binary glTF container")
	errBadBufferURI       = errors.New("malformed buffer URI")
	errTruncated          = errors.New("data shorter than declared length")
)

// gltfSource is read access to a decoded glTF document and its buffers.
type gltfSource interface {
	// Document returns the decoded JSON document.
	//
	// Returns:
	//   - *gltfDocument: the document
	Document() *gltfDocument

	// ReadVec3Accessor reads a VEC3 float accessor, honoring the buffer view stride.
	//
	// Parameters:
	//   - accessor: the accessor index
	//
	// Returns:
	//   - [][3]float32: one entry per element
	//   - error: if the accessor is out of range, sparse, or not VEC3 float
	ReadVec3Accessor(accessor int) ([][3]float32, error)

	// ReadIndicesAccessor reads a scalar unsigned index accessor of any width as uint32.
	//
	// Parameters:
	//   - accessor: the accessor index
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: if the accessor is out of range, sparse, or not an unsigned scalar
	ReadIndicesAccessor(accessor int) ([]uint32, error)
}

// gltfFile is a decoded .gltf or .glb with every buffer resolved into memory.
type gltfFile struct {
	doc gltfDocument
}

var _ gltfSource = &gltfFile{}

// openGLTF reads path and decodes it, treating a .glb extension as the binary container.
// External buffers resolve relative to the file's directory.
func openGLTF(path string) (*gltfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeGLTF(data, strings.EqualFold(filepath.Ext(path), ".glb"), filepath.Dir(path))
}

// decodeGLTF decodes a glTF JSON document, or a GLB container when isGLB is set.
func decodeGLTF(data []byte, isGLB bool, baseDir string) (*gltfFile, error) {
	var bin []byte
	if isGLB {
		var err error
		if data, bin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	f := &gltfFile{}
	if err := json.Unmarshal(data, &f.doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(f.doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: got %q", errUnsupportedVersion, f.doc.Asset.Version)
	}

	for i := range f.doc.Buffers {
		b := &f.doc.Buffers[i]
		var err error
		switch {
		case b.URI == "" && i == 0 && bin != nil:
			b.Data = bin
		case b.URI == "":
			err = errors.New("buffer has no uri")
		case strings.HasPrefix(b.URI, "data:"):
			b.Data, err = decodeDataURI(b.URI)
		default:
			b.Data, err = os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(b.URI)))
		}
		if err == nil && len(b.Data) < b.ByteLength {
			err = errTruncated
		}
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
	}
	return f, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container. The BIN chunk is optional.
// Layout: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	le := binary.LittleEndian
	if len(data) < 12 || le.Uint32(data) != glbMagic {
		return nil, nil, errNotGLB
	}
	if v := le.Uint32(data[4:]); v != glbVersion {
		return nil, nil, fmt.Errorf("%w: container version %d", errUnsupportedVersion, v)
	}

	for rest := data[12:]; len(rest) > 0; {
		if len(rest) < 8 {
			return nil, nil, fmt.Errorf("chunk header: %w", errTruncated)
		}
		size, kind := int(le.Uint32(rest)), le.Uint32(rest[4:])
		if len(rest)-8 < size {
			return nil, nil, fmt.Errorf("chunk body: %w", errTruncated)
		}
		body := rest[8 : 8+size]
		switch {
		case kind == glbChunkJSON && jsonChunk == nil:
			jsonChunk = body
		case kind == glbChunkBIN && binChunk == nil:
			binChunk = body
		}
		rest = rest[8+size:]
	}
	if jsonChunk == nil {
		return nil, nil, errors.New("GLB has no JSON chunk")
	}
	return jsonChunk, binChunk, nil
}

// decodeDataURI decodes a base64 data URI. Other encodings are rejected.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errBadBufferURI
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: only base64 data URIs are supported", errBadBufferURI)
	}
	return base64.StdEncoding.DecodeString(payload)
}

func (f *gltfFile) Document() *gltfDocument {
	return &f.doc
}

// elements returns the accessor and a function yielding the bytes of element i.
func (f *gltfFile) elements(index int) (gltfAccessor, func(i int) []byte, error) {
	doc := &f.doc
	if index < 0 || index >= len(doc.Accessors) {
		return gltfAccessor{}, nil, fmt.Errorf("accessor %d does not exist", index)
	}
	acc := doc.Accessors[index]
	if acc.Sparse != nil {
		return acc, nil, fmt.Errorf("accessor %d is sparse", index)
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return acc, nil, fmt.Errorf("accessor %d has no buffer view", index)
	}
	view := doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return acc, nil, fmt.Errorf("buffer view %d points at missing buffer %d", *acc.BufferView, view.Buffer)
	}

	width := componentSize[acc.ComponentType] * componentCount[acc.Type]
	if width == 0 {
		return acc, nil, fmt.Errorf("accessor %d has unknown element type %s/%d", index, acc.Type, acc.ComponentType)
	}
	stride := width
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = *view.ByteStride
	}
	data := doc.Buffers[view.Buffer].Data
	start := view.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+width > len(data) {
		return acc, nil, fmt.Errorf("accessor %d: %w", index, errTruncated)
	}
	return acc, func(i int) []byte {
		at := start + i*stride
		return data[at : at+width]
	}, nil
}

func (f *gltfFile) ReadVec3Accessor(index int) ([][3]float32, error) {
	acc, element, err := f.elements(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorVec3 || acc.ComponentType != componentFloat {
		return nil, fmt.Errorf("accessor %d is %s/%d, not VEC3 FLOAT", index, acc.Type, acc.ComponentType)
	}
	out := make([][3]float32, acc.Count)
	for i := range out {
		e := element(i)
		for c := range out[i] {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(e[c*4:]))
		}
	}
	return out, nil
}

func (f *gltfFile) ReadIndicesAccessor(index int) ([]uint32, error) {
	acc, element, err := f.elements(index)
	if err != nil {
		return nil, err
	}
	var read func([]byte) uint32
	switch acc.ComponentType {
	case componentUnsignedByte:
		read = func(b []byte) uint32 { return uint32(b[0]) }
	case componentUnsignedShort:
		read = func(b []byte) uint32 { return uint32(binary.LittleEndian.Uint16(b)) }
	case componentUnsignedInt:
		read = binary.LittleEndian.Uint32
	}
	if acc.Type != accessorScalar || read == nil {
		return nil, fmt.Errorf("accessor %d is %s/%d, not an unsigned SCALAR index", index, acc.Type, acc.ComponentType)
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		out[i] = read(element(i))
	}
	return out, nil
}
