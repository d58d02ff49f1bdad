package model

import (
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/bind_group_provider"
)

type model struct {
	name                  string
	vertexData, indexData []byte
	indexCount            int
	bounds                common.Bounds
	meshProvider          bind_group_provider.BindGroupProvider
}

// Model is an indexed triangle mesh in model space together with the provider that holds its
// GPU vertex and index buffers once uploaded.
type Model interface {
	// Name returns the model name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// VertexData returns the serialized vertex buffer contents.
	//
	// Returns:
	//   - []byte: GPUVertex records, 24 bytes each
	VertexData() []byte

	// IndexData returns the serialized uint32 index buffer contents.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Bounds returns the model-space bounding box.
	//
	// Returns:
	//   - common.Bounds: the bounds
	Bounds() common.Bounds

	// MeshProvider returns the provider that holds the uploaded mesh buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider
}

var _ Model = &model{}

// NewModel creates a model from vertices and indices.
//
// Parameters:
//   - name: the model name
//   - vertices: the mesh vertices
//   - indices: triangle list indices
//
// Returns:
//   - Model: the new model
func NewModel(name string, vertices []GPUVertex, indices []uint32) Model {
	m := &model{
		name:         name,
		vertexData:   MarshalVertices(vertices),
		indexData:    MarshalIndices(indices),
		indexCount:   len(indices),
		meshProvider: bind_group_provider.NewBindGroupProvider(name + " Mesh"),
	}
	if len(vertices) > 0 {
		m.bounds = common.Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
		for _, v := range vertices[1:] {
			for i := range 3 {
				m.bounds.Min[i] = min(m.bounds.Min[i], v.Position[i])
				m.bounds.Max[i] = max(m.bounds.Max[i], v.Position[i])
			}
		}
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return m.indexCount
}

func (m *model) Bounds() common.Bounds {
	return m.bounds
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}
