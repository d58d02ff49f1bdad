package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer holds three positions, three +Z normals and uint16 indices 0,1,2 (padded).
func triangleBuffer() []byte {
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	for range 3 {
		for _, v := range []float32{0, 0, 1} {
			_ = binary.Write(&buf, binary.LittleEndian, v)
		}
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

// triangleJSON returns a document with one node. uri is omitted for GLB.
func triangleJSON(uri, node, attributes, extra string) string {
	bufferURI := ""
	if uri != "" {
		bufferURI = fmt.Sprintf(`"uri": %q,`, uri)
	}
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [%s],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {%s}, "indices": 2, "material": 0 %s}]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorFactor": [0.5, 0.25, 1, 1]}}],
  "buffers": [{%s "byteLength": 80}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 36},
    {"buffer": 0, "byteOffset": 72, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ]
}`, node, attributes, extra, bufferURI)
}

func dataURI() string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func vertices(t *testing.T, data []byte) [][6]float32 {
	t.Helper()
	require.Zero(t, len(data)%24)
	out := make([][6]float32, len(data)/24)
	for i := range out {
		for c := range 6 {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*24+c*4:]))
		}
	}
	return out
}

func indices(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func TestLoadGLTFAppliesNodeTransformAndFlatNormals(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.gltf", triangleJSON(dataURI(), `{"translation": [0, 0, 5], "mesh": 0}`, `"POSITION": 0`, ""))

	l := NewLoader(WithBaseDir(dir))
	imported, err := l.Load("tri.gltf")
	require.NoError(t, err)

	m := imported.Model
	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, 3, m.IndexCount())
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, imported.BaseColor)
	assert.Equal(t, common.Bounds{Min: common.Vec3{0, 0, 5}, Max: common.Vec3{1, 1, 5}}, m.Bounds())

	for _, v := range vertices(t, m.VertexData()) {
		assert.Equal(t, float32(5), v[2])
		assert.Equal(t, [3]float32{0, 0, 1}, [3]float32{v[3], v[4], v[5]})
	}
}

func TestLoadCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.gltf", triangleJSON(dataURI(), `{"mesh": 0}`, `"POSITION": 0`, ""))

	l := NewLoader(WithBaseDir(dir))
	first, err := l.Load("tri.gltf")
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.True(t, first.Model == second.Model)

	cached, ok := l.Get("tri.gltf")
	assert.True(t, ok)
	assert.True(t, cached.Model == first.Model)

	_, ok = l.Get("other.gltf")
	assert.False(t, ok)
}

func TestLoadExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBuffer(), 0o644))
	path := writeFile(t, dir, "tri.gltf", triangleJSON("tri.bin", `{"mesh": 0}`, `"POSITION": 0, "NORMAL": 1`, ""))

	imported, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices(imported.Model.IndexData()))
}

func TestLoadReaderGLB(t *testing.T) {
	doc := []byte(triangleJSON("", `{"mesh": 0}`, `"POSITION": 0, "NORMAL": 1`, ""))
	for len(doc)%4 != 0 {
		doc = append(doc, ' ')
	}
	bin := triangleBuffer()

	le := binary.LittleEndian
	glb := le.AppendUint32(nil, glbMagic)
	glb = le.AppendUint32(glb, glbVersion)
	glb = le.AppendUint32(glb, uint32(12+8+len(doc)+8+len(bin)))
	glb = le.AppendUint32(glb, uint32(len(doc)))
	glb = le.AppendUint32(glb, glbChunkJSON)
	glb = append(glb, doc...)
	glb = le.AppendUint32(glb, uint32(len(bin)))
	glb = le.AppendUint32(glb, glbChunkBIN)
	glb = append(glb, bin...)

	l := NewLoader()
	imported, err := l.LoadReader("crate", bytes.NewReader(glb), true)
	require.NoError(t, err)
	assert.Equal(t, "crate", imported.Model.Name())
	assert.Equal(t, 3, imported.Model.IndexCount())

	_, ok := l.Get("crate")
	assert.True(t, ok)
}

func TestLoadMirroredNodeKeepsOutwardNormals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.gltf", triangleJSON(dataURI(), `{"scale": [-1, 1, 1], "mesh": 0}`, `"POSITION": 0, "NORMAL": 1`, ""))

	imported, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2, 1}, indices(imported.Model.IndexData()))
	for _, v := range vertices(t, imported.Model.VertexData()) {
		assert.InDelta(t, 1, v[5], 1e-6)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		name    string
		content string
		want    string
	}{
		"unsupported format": {"tri.obj", "", "unsupported model format"},
		"bad version":        {"old.gltf", `{"asset": {"version": "1.0"}}`, "unsupported glTF version"},
		"not json":           {"junk.gltf", "{", "failed to parse glTF JSON"},
		"lines": {"lines.gltf",
			triangleJSON(dataURI(), `{"mesh": 0}`, `"POSITION": 0`, `, "mode": 1`), "unsupported primitive mode"},
		"no position": {"nopos.gltf",
			triangleJSON(dataURI(), `{"mesh": 0}`, `"NORMAL": 1`, ""), "no POSITION"},
		"wrong accessor type": {"wrong.gltf",
			triangleJSON(dataURI(), `{"mesh": 0}`, `"POSITION": 2`, ""), "not VEC3 FLOAT"},
		"empty": {"empty.gltf", `{"asset": {"version": "2.0"}}`, "no triangles"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if tc.content != "" {
				writeFile(t, dir, tc.name, tc.content)
			}
			_, err := NewLoader().Load(path)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:application/octet-stream;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = decodeDataURI("data:text/plain,hello")
	assert.ErrorIs(t, err, errBadBufferURI)
	_, err = decodeDataURI("data:nocomma")
	assert.ErrorIs(t, err, errBadBufferURI)
}

func TestSplitGLBRejectsBadContainers(t *testing.T) {
	_, _, err := splitGLB([]byte("not a glb file"))
	assert.ErrorIs(t, err, errNotGLB)

	le := binary.LittleEndian
	header := le.AppendUint32(le.AppendUint32(nil, glbMagic), 1)
	header = le.AppendUint32(header, 12)
	_, _, err = splitGLB(header)
	assert.ErrorIs(t, err, errUnsupportedVersion)

	truncated := le.AppendUint32(le.AppendUint32(nil, glbMagic), glbVersion)
	truncated = le.AppendUint32(truncated, 40)
	truncated = le.AppendUint32(truncated, 64)
	truncated = le.AppendUint32(truncated, glbChunkJSON)
	_, _, err = splitGLB(truncated)
	assert.ErrorIs(t, err, errTruncated)
}
