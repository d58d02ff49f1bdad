package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureModeString(t *testing.T) {
	assert.Equal(t, "none", CaptureModeNone.String())
	assert.Equal(t, "position", CaptureModePosition.String())
	assert.Equal(t, "normal", CaptureModeNormal.String())
	assert.Equal(t, "albedo", CaptureModeAlbedo.String())
}

func TestCaptureModeMatchesShaderValues(t *testing.T) {
	// capture.wgsl: 1 = position, 2 = normal, anything else = albedo
	assert.Equal(t, uint32(1), uint32(CaptureModePosition))
	assert.Equal(t, uint32(2), uint32(CaptureModeNormal))
}

func TestUniformSizes(t *testing.T) {
	assert.Equal(t, uint64(80), cameraUniformSize)
	assert.Equal(t, uint64(80), objectUniformSize)
	assert.Equal(t, uint64(800), lightingUniformSize)
}

func TestComputeLayoutDescriptor(t *testing.T) {
	surfel, ok := computeLayoutDescriptor(pipeline.KeySurfelSample)
	require.True(t, ok)
	require.Len(t, surfel.Entries, 5)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, surfel.Entries[0].Buffer.Type)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, uint32(i), surfel.Entries[i].Binding)
		assert.Equal(t, wgpu.TextureViewDimension2DArray, surfel.Entries[i].Texture.ViewDimension)
	}
	assert.Equal(t, uint64(512*40), surfel.Entries[4].Buffer.MinBindingSize)

	sh, ok := computeLayoutDescriptor(pipeline.KeySHProject)
	require.True(t, ok)
	require.Len(t, sh.Entries, 3)
	assert.Equal(t, uint64(27*4), sh.Entries[2].Buffer.MinBindingSize)

	_, ok = computeLayoutDescriptor("custom")
	assert.False(t, ok)
}

func TestCubeTargetReleaseIsIdempotent(t *testing.T) {
	target := &cubeTarget{label: "test", resolution: 8, format: wgpu.TextureFormatRGBA32Float}
	assert.False(t, target.Released())
	target.Release()
	target.Release()
	assert.True(t, target.Released())
	assert.Nil(t, target.ArrayView())
}

func TestGPUBufferReleaseRunsOnce(t *testing.T) {
	calls := 0
	buf := &gpuBuffer{label: "out", size: 108, onRelease: func() { calls++ }}
	buf.Release()
	buf.Release()
	assert.Equal(t, 1, calls)
	assert.Nil(t, buf.Buffer())
}
