// Package pipeline describes the render and compute pipelines the baker registers with the
// renderer. A Pipeline carries its shaders and fixed-function state; the renderer owns the
// GPU object and stores it back through SetRenderPipeline or SetComputePipeline.
package pipeline

import (
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType separates compute kernels from rasterizing pipelines.
type PipelineType int

const (
	PipelineTypeCompute PipelineType = iota
	PipelineTypeRender
)

// Keys of the pipelines created by NewCapturePipelines. Materials reference pipelines by key.
const (
	// KeyCapture writes world position, normal and albedo into the three capture cubes.
	KeyCapture = "gi_capture"
	// KeyLit is the Lambert-lit pipeline materials use outside a probe volume bake.
	KeyLit = "lit"
	// KeySurfelSample gathers surfels from the G-buffer cubes.
	KeySurfelSample = "gi_surfel_sample"
	// KeySHProject projects radiance onto nine SH coefficients per channel.
	KeySHProject = "gi_sh_project"
)

// RenderState is the fixed-function state of a render pipeline. Compute pipelines ignore it.
type RenderState struct {
	DepthTest   bool
	DepthWrite  bool
	CullMode    wgpu.CullMode
	Topology    wgpu.PrimitiveTopology
	FrontFace   wgpu.FrontFace
	WriteMask   wgpu.ColorWriteMask
	ColorFormat wgpu.TextureFormat
	// Lighting binds the scene lighting uniform at group 2.
	Lighting    bool
}

// DefaultRenderState suits cube captures: depth tested, no culling so interiors of closed
// meshes still reach the G-buffer, and a float color target so world positions are not
// quantized.
//
// Returns:
//   - RenderState: the default state
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTest:   true,
		DepthWrite:  true,
		CullMode:    wgpu.CullModeNone,
		Topology:    wgpu.PrimitiveTopologyTriangleList,
		FrontFace:   wgpu.FrontFaceCCW,
		WriteMask:   wgpu.ColorWriteMaskAll,
		ColorFormat: wgpu.TextureFormatRGBA32Float,
	}
}

// Pipeline is a render or compute pipeline description plus the GPU object created from it.
type Pipeline interface {
	// Type returns whether this is a render or a compute pipeline.
	//
	// Returns:
	//   - PipelineType: the pipeline type
	Type() PipelineType

	// PipelineKey returns the key the renderer caches this pipeline under.
	//
	// Returns:
	//   - string: the key
	PipelineKey() string

	// Shader returns the shader for a stage, or nil if the pipeline has none.
	//
	// Parameters:
	//   - stage: vertex, fragment or compute
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(stage shader.ShaderType) shader.Shader

	// RenderState returns the fixed-function state used when the render pipeline is created.
	//
	// Returns:
	//   - RenderState: the state
	RenderState() RenderState

	// Pipeline returns the created *wgpu.RenderPipeline or *wgpu.ComputePipeline, matching
	// Type. The value holds a nil pointer until the renderer registers the pipeline.
	//
	// Returns:
	//   - any: the GPU pipeline
	Pipeline() any

	// Release frees the GPU pipeline, if one was created.
	Release()

	SetRenderPipeline(p *wgpu.RenderPipeline)
	SetComputePipeline(p *wgpu.ComputePipeline)
}

type pipeline struct {
	key     string
	kind    PipelineType
	shaders map[shader.ShaderType]shader.Shader
	state   RenderState

	render  *wgpu.RenderPipeline
	compute *wgpu.ComputePipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline describes a pipeline. Nothing is allocated on the GPU until it is registered
// with a renderer.
//
// Parameters:
//   - key: the cache key
//   - kind: render or compute
//   - opts: PipelineBuilderOption values
//
// Returns:
//   - Pipeline: the description
func NewPipeline(key string, kind PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:     key,
		kind:    kind,
		shaders: map[shader.ShaderType]shader.Shader{},
		state:   DefaultRenderState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewCapturePipelines returns the four pipelines a bake needs, built from the embedded
// shader assets.
//
// Returns:
//   - []Pipeline: capture, lit, surfel sampling and SH projection
func NewCapturePipelines() []Pipeline {
	renderPair := func(key string, asset string) []PipelineBuilderOption {
		return []PipelineBuilderOption{
			WithShader(shader.NewShaderFromAsset(key+"_vs", shader.ShaderTypeVertex, asset)),
			WithShader(shader.NewShaderFromAsset(key+"_fs", shader.ShaderTypeFragment, asset)),
		}
	}
	kernel := func(key string, asset string) Pipeline {
		return NewPipeline(key, PipelineTypeCompute, WithShader(shader.NewShaderFromAsset(key, shader.ShaderTypeCompute, asset)))
	}

	return []Pipeline{
		NewPipeline(KeyCapture, PipelineTypeRender, renderPair(KeyCapture, shader.AssetCapture)...),
		NewPipeline(KeyLit, PipelineTypeRender, append(renderPair(KeyLit, shader.AssetLit), WithLightingEnabled(true))...),
		kernel(KeySurfelSample, shader.AssetSurfelSample),
		kernel(KeySHProject, shader.AssetSHProject),
	}
}

func (p *pipeline) Type() PipelineType                        { return p.kind }
func (p *pipeline) PipelineKey() string                       { return p.key }
func (p *pipeline) Shader(st shader.ShaderType) shader.Shader { return p.shaders[st] }
func (p *pipeline) RenderState() RenderState                  { return p.state }

func (p *pipeline) Pipeline() any {
	if p.kind == PipelineTypeCompute {
		return p.compute
	}
	return p.render
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline)   { p.render = rp }
func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) { p.compute = cp }

func (p *pipeline) Release() {
	if p.render != nil {
		p.render.Release()
		p.render = nil
	}
	if p.compute != nil {
		p.compute.Release()
		p.compute = nil
	}
}
