package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the VertexInput struct of the capture and lit shaders.
// Size: 24 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal (12 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the vertex into buf, which must hold at least 24 bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPUVertex) MarshalTo(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
}

// VertexLayout returns the vertex buffer layout matching GPUVertex.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for vertex buffer slot 0
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// MarshalVertices serializes vertices into a contiguous vertex buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the vertex buffer contents
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*24)
	for i := range vertices {
		vertices[i].MarshalTo(buf[i*24:])
	}
	return buf
}

// MarshalIndices serializes uint32 indices into a contiguous index buffer.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: the index buffer contents
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
