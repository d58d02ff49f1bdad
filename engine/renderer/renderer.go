package renderer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by operations on a released renderer or cube target.
var ErrReleased = errors.New("renderer: resource released")

// Mesh is the geometry a DrawItem renders. GPU buffers are created on first use and kept on
// the mesh provider.
type Mesh interface {
	MeshProvider() bind_group_provider.BindGroupProvider
	VertexData() []byte
	IndexData() []byte
	IndexCount() int
}

// DrawItem is one object drawn into every face of a cube.
type DrawItem struct {
	// PipelineKey selects the render pipeline, read at draw time.
	PipelineKey string
	// Mesh is the geometry to draw.
	Mesh Mesh
	// Object holds the per-object uniform buffer and bind group.
	Object bind_group_provider.BindGroupProvider
	// Uniform is the marshaled per-object uniform written before the draw.
	Uniform []byte
}

// CubeScene is everything RenderCube draws.
type CubeScene struct {
	Draws []DrawItem
	// Lighting is the marshaled lighting uniform. Nil leaves the previous contents in place.
	Lighting []byte
}

// ComputeBindings lists the resources bound to a kernel: the params uniform at binding 0,
// each cube target as a 2D array at bindings 1..n, and the output buffer after them.
type ComputeBindings struct {
	Uniform  []byte
	Textures []CubeTarget
	Output   GPUBuffer
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	captureMode atomic.Uint32
	liveBuffers atomic.Int64
	released    atomic.Bool

	lightingProvider bind_group_provider.BindGroupProvider

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	validateShaders      bool
	targetFormat         wgpu.TextureFormat
}

// Renderer is a headless GPU device for offline baking. It renders scenes into cube targets,
// dispatches compute kernels over them and reads results back to the host.
//
// The Renderer manages a cache of pipelines keyed by pipeline key. Materials reference pipelines
// by key, so switching a material's key switches the pipeline used on the next RenderCube.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	// When shader validation is enabled every shader is compiled with naga first.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// SetCaptureMode sets the global capture toggle read by the capture shader on the next RenderCube.
	//
	// Parameters:
	//   - mode: the capture mode, CaptureModeNone to clear it
	SetCaptureMode(mode CaptureMode)

	// CaptureMode returns the current global capture toggle.
	//
	// Returns:
	//   - CaptureMode: the active mode
	CaptureMode() CaptureMode

	// CreateCubeTarget creates a six-face render target in the renderer's target format.
	//
	// Parameters:
	//   - label: debug label
	//   - resolution: face width and height in texels
	//
	// Returns:
	//   - CubeTarget: the new target
	//   - error: an error if texture creation fails
	CreateCubeTarget(label string, resolution uint32) (CubeTarget, error)

	// RenderCube renders the scene into all six faces of target from the camera position.
	// Each face is cleared to transparent black first. Meshes and object bind groups are
	// created on first use.
	//
	// Parameters:
	//   - target: the cube target to render into
	//   - cam: the capture camera providing the position and per-face uniforms
	//   - scene: the draws and lighting
	//
	// Returns:
	//   - error: an error if a pipeline is missing or GPU submission fails
	RenderCube(target CubeTarget, cam camera.Camera, scene CubeScene) error

	// CreateStorageBuffer creates a kernel output buffer. The buffer counts towards LiveBuffers
	// until released.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes
	//
	// Returns:
	//   - GPUBuffer: the buffer
	//   - error: an error if buffer creation fails
	CreateStorageBuffer(label string, size uint64) (GPUBuffer, error)

	// DispatchCompute looks up the cached compute Pipeline by key, binds the resources and submits
	// the dispatch.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline to use
	//   - bindings: the params, input targets and output buffer
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: an error if the pipeline is not found or the dispatch could not be encoded
	DispatchCompute(pipelineKey string, bindings ComputeBindings, workGroupCount [3]uint32) error

	// ReadBuffer blocks until the buffer contents are copied to the host.
	//
	// Parameters:
	//   - buf: the buffer to read
	//
	// Returns:
	//   - []byte: exactly buf.Size() bytes
	//   - error: an error if the readback fails
	ReadBuffer(buf GPUBuffer) ([]byte, error)

	// Flush blocks until all submitted GPU work has completed.
	Flush()

	// LiveBuffers returns the number of storage buffers created and not yet released.
	//
	// Returns:
	//   - int: the live buffer count
	LiveBuffers() int

	// Release releases the cached pipelines, the lighting uniform and the GPU device.
	// Calling it more than once is a no-op.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a headless Renderer with the specified backend type and registers the
// built-in capture pipelines and kernels.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if no adapter or device is available or a built-in pipeline fails to build
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		targetFormat:  wgpu.TextureFormatRGBA32Float,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	pending := make(map[string]pipeline.Pipeline)
	for _, opt := range options {
		opt(r)
	}
	for k, p := range r.pipelineCache {
		pending[k] = p
	}
	r.pipelineCache = make(map[string]pipeline.Pipeline)

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, err
	}

	r.lightingProvider = bind_group_provider.NewBindGroupProvider("Scene Lighting")
	if err := r.backend.InitUniformBindGroup(r.lightingProvider, uniformGroupLighting); err != nil {
		r.Release()
		return nil, fmt.Errorf("failed to create lighting uniform: %w", err)
	}

	builtins := pipeline.NewCapturePipelines()
	for _, p := range pending {
		builtins = append(builtins, p)
	}
	if err := r.RegisterPipelines(builtins...); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if r.validateShaders {
			if err := validatePipeline(p); err != nil {
				return err
			}
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return fmt.Errorf("failed to register compute pipeline %q: %w", key, err)
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return fmt.Errorf("failed to register render pipeline %q: %w", key, err)
			}
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func validatePipeline(p pipeline.Pipeline) error {
	seen := make(map[string]bool)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment, shader.ShaderTypeCompute} {
		s := p.Shader(st)
		if s == nil || seen[s.Source()] {
			continue
		}
		seen[s.Source()] = true
		if err := shader.Validate(s.Source()); err != nil {
			return fmt.Errorf("shader %s failed validation: %w", s.Key(), err)
		}
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) SetCaptureMode(mode CaptureMode) {
	r.captureMode.Store(uint32(mode))
}

func (r *renderer) CaptureMode() CaptureMode {
	return CaptureMode(r.captureMode.Load())
}

func (r *renderer) CreateCubeTarget(label string, resolution uint32) (CubeTarget, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if resolution == 0 {
		return nil, fmt.Errorf("cube target %q: resolution must be positive", label)
	}
	target, err := r.backend.CreateCubeTarget(label, resolution, r.targetFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create cube target %q: %w", label, err)
	}
	common.Logger().Debug("cube target created", "label", label, "resolution", resolution)
	return target, nil
}

func (r *renderer) RenderCube(target CubeTarget, cam camera.Camera, scene CubeScene) error {
	if r.released.Load() {
		return ErrReleased
	}
	if target == nil || target.Released() {
		return fmt.Errorf("render cube: %w", ErrReleased)
	}

	mode := uint32(r.CaptureMode())
	writes := make([]bind_group_provider.BufferWrite, 0, common.CubeFaceCount+len(scene.Draws)+1)

	var faceGroups [common.CubeFaceCount]*wgpu.BindGroup
	for face := range common.CubeFaceCount {
		provider := cam.FaceProvider(common.CubeFace(face))
		if provider.BindGroup() == nil {
			if err := r.backend.InitUniformBindGroup(provider, uniformGroupCamera); err != nil {
				return fmt.Errorf("failed to init camera face %d: %w", face, err)
			}
		}
		u := cam.FaceUniform(common.CubeFace(face), mode)
		writes = append(writes, bind_group_provider.BufferWrite{Provider: provider, Binding: 0, Data: u.Marshal()})
		faceGroups[face] = provider.BindGroup()
	}

	draws := make([]resolvedDraw, 0, len(scene.Draws))
	for _, item := range scene.Draws {
		p := r.Pipeline(item.PipelineKey)
		if p == nil {
			return fmt.Errorf("render pipeline %q not found in cache", item.PipelineKey)
		}
		if p.Type() != pipeline.PipelineTypeRender {
			return fmt.Errorf("pipeline %q is not a render pipeline", item.PipelineKey)
		}
		if item.Mesh == nil || item.Mesh.IndexCount() == 0 {
			continue
		}

		mesh := item.Mesh.MeshProvider()
		if mesh.VertexBuffer() == nil {
			if err := r.backend.InitMeshBuffers(mesh, item.Mesh.VertexData(), item.Mesh.IndexData(), item.Mesh.IndexCount()); err != nil {
				return fmt.Errorf("failed to init mesh %s: %w", mesh.Label(), err)
			}
		}
		if item.Object.BindGroup() == nil {
			if err := r.backend.InitUniformBindGroup(item.Object, uniformGroupObject); err != nil {
				return fmt.Errorf("failed to init object %s: %w", item.Object.Label(), err)
			}
		}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: item.Object, Binding: 0, Data: item.Uniform})
		draws = append(draws, resolvedDraw{pipeline: p, mesh: mesh, object: item.Object})
	}

	if scene.Lighting != nil {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: r.lightingProvider, Binding: 0, Data: scene.Lighting})
	}

	r.backend.WriteBuffers(writes)
	return r.backend.EncodeCube(target, faceGroups, draws, r.lightingProvider.BindGroup())
}

func (r *renderer) CreateStorageBuffer(label string, size uint64) (GPUBuffer, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	buf, err := r.backend.CreateStorageBuffer(label, size)
	if err != nil {
		return nil, err
	}
	r.liveBuffers.Add(1)
	common.Logger().Debug("storage buffer created", "label", label, "size", size)
	return &gpuBuffer{
		label:     label,
		size:      size,
		buffer:    buf,
		onRelease: func() { r.liveBuffers.Add(-1) },
	}, nil
}

func (r *renderer) DispatchCompute(pipelineKey string, bindings ComputeBindings, workGroupCount [3]uint32) error {
	if r.released.Load() {
		return ErrReleased
	}
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("compute pipeline %q not found in cache", pipelineKey)
	}
	if p.Type() != pipeline.PipelineTypeCompute {
		return fmt.Errorf("pipeline %q is not a compute pipeline", pipelineKey)
	}
	if bindings.Output == nil || bindings.Output.Buffer() == nil {
		return fmt.Errorf("dispatch %q: output buffer: %w", pipelineKey, ErrReleased)
	}
	if len(bindings.Uniform) == 0 {
		return fmt.Errorf("dispatch %q: params are empty", pipelineKey)
	}
	for _, t := range bindings.Textures {
		if t == nil || t.Released() {
			return fmt.Errorf("dispatch %q: input target: %w", pipelineKey, ErrReleased)
		}
	}
	return r.backend.DispatchCompute(p, bindings, workGroupCount)
}

func (r *renderer) ReadBuffer(buf GPUBuffer) ([]byte, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if buf == nil || buf.Buffer() == nil {
		return nil, fmt.Errorf("read buffer: %w", ErrReleased)
	}
	return r.backend.ReadBuffer(buf.Buffer(), buf.Size())
}

func (r *renderer) Flush() {
	if r.released.Load() {
		return
	}
	r.backend.Poll()
}

func (r *renderer) LiveBuffers() int {
	return int(r.liveBuffers.Load())
}

func (r *renderer) Release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	if r.lightingProvider != nil {
		r.lightingProvider.Release()
	}
	if r.backend != nil {
		r.backend.Release()
	}
}
