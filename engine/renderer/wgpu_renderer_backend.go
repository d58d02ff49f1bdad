package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformGroup selects one of the shared bind group layouts used by the render pipelines.
type uniformGroup int

const (
	uniformGroupCamera uniformGroup = iota
	uniformGroupObject
	uniformGroupLighting
)

// resolvedDraw is a DrawItem whose pipeline has been looked up and whose GPU resources exist.
type resolvedDraw struct {
	pipeline pipeline.Pipeline
	mesh     bind_group_provider.BindGroupProvider
	object   bind_group_provider.BindGroupProvider
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter

	cameraLayout   *wgpu.BindGroupLayout
	objectLayout   *wgpu.BindGroupLayout
	lightingLayout *wgpu.BindGroupLayout
	computeLayouts map[string]*wgpu.BindGroupLayout
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter

	// RegisterRenderPipeline creates the shader modules, pipeline layout and render pipeline for p.
	// The layout is camera, object and, when RenderState().Lighting is set, lighting.
	//
	// Parameters:
	//   - p: the pipeline object containing the source code and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the shader module and compute pipeline for p. Built-in kernels
	// get an explicit layout; any other kernel uses the layout derived from its shader.
	//
	// Parameters:
	//   - p: the pipeline object containing the source code and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitMeshBuffers creates the vertex and index buffers for a mesh and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created or initialized, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitUniformBindGroup creates a uniform buffer at binding 0 and a bind group using one of
	// the shared layouts, and stores both on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to initialize
	//   - group: which shared layout the bind group is created against
	//
	// Returns:
	//   - error: an error if the buffer or bind group could not be created
	InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, group uniformGroup) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// CreateCubeTarget creates a six-layer color texture, its per-face and array views, and a depth buffer.
	//
	// Parameters:
	//   - label: debug label
	//   - resolution: face width and height in texels
	//   - format: color format of the target
	//
	// Returns:
	//   - *cubeTarget: the new target
	//   - error: an error if any texture or view could not be created
	CreateCubeTarget(label string, resolution uint32, format wgpu.TextureFormat) (*cubeTarget, error)

	// EncodeCube renders the draws into all six faces of target in one submission. Each face
	// clears to transparent black and binds its own camera bind group.
	//
	// Parameters:
	//   - target: the cube target to render into
	//   - faceGroups: camera bind group per face
	//   - draws: the resolved draws
	//   - lighting: the scene lighting bind group, set for pipelines with lighting enabled
	//
	// Returns:
	//   - error: an error if encoding or submission fails
	EncodeCube(target CubeTarget, faceGroups [common.CubeFaceCount]*wgpu.BindGroup, draws []resolvedDraw, lighting *wgpu.BindGroup) error

	// CreateStorageBuffer creates a buffer usable as a kernel output and as a copy source.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if the buffer could not be created
	CreateStorageBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// DispatchCompute uploads the kernel params, binds the inputs and output, dispatches and submits.
	//
	// Parameters:
	//   - p: the cached compute pipeline
	//   - bindings: params, input cube targets and output buffer
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: an error if any transient resource could not be created
	DispatchCompute(p pipeline.Pipeline, bindings ComputeBindings, workGroupCount [3]uint32) error

	// ReadBuffer copies a buffer into a mappable staging buffer and blocks until the bytes are on the host.
	//
	// Parameters:
	//   - buf: the buffer to read
	//   - size: number of bytes to read
	//
	// Returns:
	//   - []byte: a copy of the buffer contents
	//   - error: an error if the copy or the map failed
	ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error)

	// Poll blocks until all submitted work has completed.
	Poll()

	// Release releases the layouts, device, adapter and instance.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(forceFallbackAdapter bool) (wgpuRendererBackend, error) {
	w := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		computeLayouts: make(map[string]*wgpu.BindGroupLayout),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("failed to get GPU adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Bake Device",
	})
	if err != nil {
		a.Release()
		w.instance.Release()
		return nil, fmt.Errorf("failed to get GPU device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	layouts := []struct {
		dst  **wgpu.BindGroupLayout
		desc wgpu.BindGroupLayoutDescriptor
	}{
		{&w.cameraLayout, uniformLayoutDescriptor("Camera Layout", cameraUniformSize, renderStageVisible)},
		{&w.objectLayout, uniformLayoutDescriptor("Object Layout", objectUniformSize, renderStageVisible)},
		{&w.lightingLayout, uniformLayoutDescriptor("Lighting Layout", lightingUniformSize, wgpu.ShaderStageFragment)},
	}
	for _, l := range layouts {
		layout, layoutErr := d.CreateBindGroupLayout(&l.desc)
		if layoutErr != nil {
			w.Release()
			return nil, fmt.Errorf("failed to create %s: %w", l.desc.Label, layoutErr)
		}
		*l.dst = layout
	}

	info := a.GetInfo()
	common.Logger().Info("gpu device ready",
		"adapter", info.Name,
		"backend", info.BackendType.String(),
		"fallback", forceFallbackAdapter,
	)
	return w, nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("failed to create shader module %s: %w", vertexShader.Key(), err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("failed to create shader module %s: %w", fragmentShader.Key(), err)
	}
	defer fs.Release()

	state := p.RenderState()
	bindGroupLayouts := []*wgpu.BindGroupLayout{b.cameraLayout, b.objectLayout}
	if state.Lighting {
		bindGroupLayouts = append(bindGroupLayouts, b.lightingLayout)
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	depthCompare := wgpu.CompareFunctionLess
	if !state.DepthTest {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{model.VertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    state.ColorFormat,
					WriteMask: state.WriteMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  state.Topology,
			FrontFace: state.FrontFace,
			CullMode:  state.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: state.DepthWrite,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	common.Logger().Debug("render pipeline registered", "key", p.PipelineKey(), "lighting", state.Lighting)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeCompute) == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	computeShader := p.Shader(shader.ShaderTypeCompute)
	s, err := b.device.CreateShaderModule(computeShader.Module())
	if err != nil {
		return fmt.Errorf("failed to create shader module %s: %w", computeShader.Key(), err)
	}
	defer s.Release()

	descriptor := &wgpu.ComputePipelineDescriptor{
		Label: p.PipelineKey() + " Compute Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeShader.EntryPoint(),
		},
	}

	var explicit *wgpu.BindGroupLayout
	if desc, ok := computeLayoutDescriptor(p.PipelineKey()); ok {
		explicit, err = b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for %s: %w", p.PipelineKey(), err)
		}
		layout, layoutErr := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label:            p.PipelineKey(),
			BindGroupLayouts: []*wgpu.BindGroupLayout{explicit},
		})
		if layoutErr != nil {
			explicit.Release()
			return layoutErr
		}
		defer layout.Release()
		descriptor.Layout = layout
	}

	created, err := b.device.CreateComputePipeline(descriptor)
	if err != nil {
		if explicit != nil {
			explicit.Release()
		}
		return err
	}

	if explicit == nil {
		explicit = created.GetBindGroupLayout(0)
	}
	b.mu.Lock()
	b.computeLayouts[p.PipelineKey()] = explicit
	b.mu.Unlock()

	p.SetComputePipeline(created)
	common.Logger().Debug("compute pipeline registered", "key", p.PipelineKey(), "workgroup", computeShader.WorkgroupSize())
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, group uniformGroup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var layout *wgpu.BindGroupLayout
	var size uint64
	switch group {
	case uniformGroupCamera:
		layout, size = b.cameraLayout, cameraUniformSize
	case uniformGroupObject:
		layout, size = b.objectLayout, objectUniformSize
	case uniformGroupLighting:
		layout, size = b.lightingLayout, lightingUniformSize
	default:
		return fmt.Errorf("unknown uniform group %d", group)
	}

	buf := provider.Buffer(0)
	if buf == nil {
		var err error
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Buffer",
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(0, buf)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) CreateCubeTarget(label string, resolution uint32, format wgpu.TextureFormat) (*cubeTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	target := &cubeTarget{
		label:      label,
		resolution: resolution,
		format:     format,
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label + " Texture",
		Size: wgpu.Extent3D{
			Width:              resolution,
			Height:             resolution,
			DepthOrArrayLayers: common.CubeFaceCount,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	target.texture = tex

	for face := range common.CubeFaceCount {
		view, viewErr := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s Face %d", label, face),
			Format:          format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(face),
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if viewErr != nil {
			target.Release()
			return nil, viewErr
		}
		target.faceViews[face] = view
	}

	target.arrayView, err = tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " Array",
		Format:          format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: common.CubeFaceCount,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		target.Release()
		return nil, err
	}

	target.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label + " Depth",
		Size: wgpu.Extent3D{
			Width:              resolution,
			Height:             resolution,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		target.Release()
		return nil, err
	}
	target.depthView, err = target.depthTexture.CreateView(nil)
	if err != nil {
		target.Release()
		return nil, err
	}

	return target, nil
}

func (b *wgpuRendererBackendImpl) EncodeCube(target CubeTarget, faceGroups [common.CubeFaceCount]*wgpu.BindGroup, draws []resolvedDraw, lighting *wgpu.BindGroup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	for face := range common.CubeFaceCount {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       target.FaceView(common.CubeFace(face)),
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
				},
			},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            target.DepthView(),
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpDiscard,
				DepthClearValue: 1.0,
			},
		})

		for _, d := range draws {
			pass.SetPipeline(d.pipeline.Pipeline().(*wgpu.RenderPipeline))
			pass.SetBindGroup(0, faceGroups[face], nil)
			pass.SetBindGroup(1, d.object.BindGroup(), nil)
			if d.pipeline.RenderState().Lighting {
				pass.SetBindGroup(2, lighting, nil)
			}
			pass.SetVertexBuffer(0, d.mesh.VertexBuffer(), 0, wgpu.WholeSize)
			pass.SetIndexBuffer(d.mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(uint32(d.mesh.IndexCount()), 1, 0, 0, 0)
		}
		pass.End()
		pass.Release()
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish cube encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) CreateStorageBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer: %w", err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(p pipeline.Pipeline, bindings ComputeBindings, workGroupCount [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	layout := b.computeLayouts[p.PipelineKey()]
	if layout == nil {
		return fmt.Errorf("compute pipeline %q has no bind group layout", p.PipelineKey())
	}

	params, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    p.PipelineKey() + " Params",
		Contents: bindings.Uniform,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create params buffer: %w", err)
	}
	defer params.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(bindings.Textures)+2)
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: 0,
		Buffer:  params,
		Size:    wgpu.WholeSize,
	})
	for i, t := range bindings.Textures {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(i + 1),
			TextureView: t.ArrayView(),
		})
	}
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: uint32(len(bindings.Textures) + 1),
		Buffer:  bindings.Output.Buffer(),
		Size:    wgpu.WholeSize,
	})

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.PipelineKey() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline().(*wgpu.ComputePipeline))
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	b.queue.Submit(commands)
	commands.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "staging_read",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()
	encoder.CopyBufferToBuffer(buf, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish encoder: %w", err)
	}
	b.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("failed to map buffer: %v", status)
		} else {
			done <- nil
		}
	})
	if err != nil {
		return nil, err
	}

	b.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	result := make([]byte, len(mapped))
	copy(result, mapped)
	staging.Unmap()
	return result, nil
}

func (b *wgpuRendererBackendImpl) Poll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.device.Poll(true, nil)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, layout := range b.computeLayouts {
		layout.Release()
		delete(b.computeLayouts, key)
	}
	for _, layout := range []**wgpu.BindGroupLayout{&b.cameraLayout, &b.objectLayout, &b.lightingLayout} {
		if *layout != nil {
			(*layout).Release()
			*layout = nil
		}
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
