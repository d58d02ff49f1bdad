package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturePipelines(t *testing.T) {
	pipelines := NewCapturePipelines()
	require.Len(t, pipelines, 4)

	byKey := make(map[string]Pipeline)
	for _, p := range pipelines {
		byKey[p.PipelineKey()] = p
	}

	capture := byKey[KeyCapture]
	require.NotNil(t, capture)
	assert.Equal(t, PipelineTypeRender, capture.Type())
	assert.Equal(t, "vs_main", capture.Shader(shader.ShaderTypeVertex).EntryPoint())
	assert.Equal(t, "fs_main", capture.Shader(shader.ShaderTypeFragment).EntryPoint())
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, capture.RenderState().ColorFormat)
	assert.Equal(t, wgpu.CullModeNone, capture.RenderState().CullMode)

	surfel := byKey[KeySurfelSample]
	require.NotNil(t, surfel)
	assert.Equal(t, PipelineTypeCompute, surfel.Type())
	assert.Nil(t, surfel.Shader(shader.ShaderTypeVertex))
	assert.Equal(t, [3]uint32{32, 16, 1}, surfel.Shader(shader.ShaderTypeCompute).WorkgroupSize())

	require.NotNil(t, byKey[KeyLit])
	assert.True(t, byKey[KeyLit].RenderState().Lighting)
	assert.False(t, capture.RenderState().Lighting)
	assert.NotNil(t, byKey[KeySHProject])
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("custom", PipelineTypeRender,
		WithCullMode(wgpu.CullModeBack),
		WithDepthWriteEnabled(false),
		WithColorFormat(wgpu.TextureFormatRGBA16Float),
	)
	assert.Equal(t, wgpu.CullModeBack, p.RenderState().CullMode)
	assert.False(t, p.RenderState().DepthWrite)
	assert.True(t, p.RenderState().DepthTest)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, p.RenderState().ColorFormat)
	assert.Nil(t, p.Pipeline().(*wgpu.RenderPipeline))
	p.Release()
}

func TestWithShaderUsesShaderStage(t *testing.T) {
	cs := shader.NewShaderFromAsset("k", shader.ShaderTypeCompute, shader.AssetSHProject)
	p := NewPipeline("k", PipelineTypeCompute, WithShader(cs), WithRenderState(RenderState{}))
	assert.Same(t, cs, p.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, p.Shader(shader.ShaderTypeFragment))
	assert.False(t, p.RenderState().DepthTest)
	assert.Nil(t, p.Pipeline().(*wgpu.ComputePipeline))
}
