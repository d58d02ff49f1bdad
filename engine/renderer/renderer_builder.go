package renderer

import (
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline registers an additional Pipeline alongside the built-in capture pipelines.
//
// Parameters:
//   - p: the Pipeline to register under its PipelineKey
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[p.PipelineKey()] = p
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful on build machines without a GPU.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShaderValidation compiles every shader with naga before handing it to the driver, so
// WGSL errors are reported with source positions instead of a driver validation failure.
//
// Parameters:
//   - validate: true to validate shaders on registration
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithShaderValidation(validate bool) RendererBuilderOption {
	return func(r *renderer) {
		r.validateShaders = validate
	}
}

// WithTargetFormat overrides the color format of cube targets. Pipelines rendering into them
// must use the same format.
//
// Parameters:
//   - format: the cube target color format
//
// Returns:
//   - RendererBuilderOption: a function that applies the format option to a renderer
func WithTargetFormat(format wgpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.targetFormat = format
	}
}
