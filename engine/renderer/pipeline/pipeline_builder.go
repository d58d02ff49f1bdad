package pipeline

import (
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithShader attaches s to the stage reported by s.ShaderType(), replacing any shader
// already set for that stage.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - PipelineBuilderOption: the option
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shaders[s.ShaderType()] = s
	}
}

// WithRenderState replaces the whole fixed-function state.
//
// Parameters:
//   - state: the state
//
// Returns:
//   - PipelineBuilderOption: the option
func WithRenderState(state RenderState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state = state
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: the option
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.CullMode = mode
	}
}

// WithDepthWriteEnabled toggles depth writes. Depth testing is unaffected.
//
// Parameters:
//   - enabled: whether fragments write depth
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthWrite = enabled
	}
}

// WithColorFormat sets the color target format.
//
// Parameters:
//   - format: the format of the target the pipeline draws into
//
// Returns:
//   - PipelineBuilderOption: the option
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.ColorFormat = format
	}
}

// WithLightingEnabled makes the pipeline bind the scene lighting uniform at group 2.
//
// Parameters:
//   - enabled: whether the pipeline shades with scene lights
//
// Returns:
//   - PipelineBuilderOption: the option
func WithLightingEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Lighting = enabled
	}
}
