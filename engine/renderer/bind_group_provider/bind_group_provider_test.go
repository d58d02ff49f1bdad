package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("Object 3", WithIndexCount(36))
	assert.Equal(t, "Object 3", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestReleaseWithoutGPUResourcesIsSafe(t *testing.T) {
	p := NewBindGroupProvider("empty", WithIndexCount(6))
	p.Release()
	p.Release()
	assert.Equal(t, 0, p.IndexCount())
	assert.Nil(t, p.VertexBuffer())
}
