package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBox(t *testing.T) {
	box := NewBox()
	assert.Equal(t, 36, box.IndexCount())
	assert.Len(t, box.VertexData(), 24*24)
	assert.Len(t, box.IndexData(), 36*4)
	assert.Equal(t, common.Bounds{Min: common.Vec3{-0.5, -0.5, -0.5}, Max: common.Vec3{0.5, 0.5, 0.5}}, box.Bounds())
	assert.Equal(t, "box Mesh", box.MeshProvider().Label())
}

func TestNewPrimitive(t *testing.T) {
	plane := NewPrimitive("plane")
	require.NotNil(t, plane)
	assert.Equal(t, 6, plane.IndexCount())
	assert.Equal(t, float32(0), plane.Bounds().Size()[1])
	assert.Nil(t, NewPrimitive("teapot"))
}

func TestVertexLayoutMatchesGPUVertex(t *testing.T) {
	var v GPUVertex
	layout := VertexLayout()
	assert.Equal(t, uint64(v.Size()), layout.ArrayStride)
	assert.Len(t, layout.Attributes, 2)
}
