package renderer

import (
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/light"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Uniform sizes shared by the render pipelines.
var (
	cameraUniformSize   = uint64((&camera.GPUCameraUniform{}).Size())
	objectUniformSize   = uint64((&game_object.GPUObjectUniform{}).Size())
	lightingUniformSize = uint64((&light.GPULightingUniform{}).Size())
)

// Compute kernel buffer sizes.
const (
	surfelParamsSize   = 16
	surfelOutputSize   = 512 * 40
	shParamsSize       = 16
	shOutputSize       = 27 * 4
	renderStageVisible = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
)

func uniformLayoutDescriptor(label string, size uint64, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

// cubeArrayEntry describes a 2D-array view over the six faces of a float cube target.
// Float32 targets are not filterable, so the kernels only use textureLoad.
func cubeArrayEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
			ViewDimension: wgpu.TextureViewDimension2DArray,
			Multisampled:  false,
		},
	}
}

func storageEntry(binding uint32, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeStorage,
			MinBindingSize: size,
		},
	}
}

// computeLayoutDescriptor returns the explicit layout for the built-in kernels.
// Kernels registered under any other key fall back to the layout derived by the driver.
func computeLayoutDescriptor(key string) (wgpu.BindGroupLayoutDescriptor, bool) {
	switch key {
	case pipeline.KeySurfelSample:
		uniform := uniformLayoutDescriptor("", surfelParamsSize, wgpu.ShaderStageCompute).Entries[0]
		return wgpu.BindGroupLayoutDescriptor{
			Label: key + " Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				uniform,
				cubeArrayEntry(1),
				cubeArrayEntry(2),
				cubeArrayEntry(3),
				storageEntry(4, surfelOutputSize),
			},
		}, true
	case pipeline.KeySHProject:
		uniform := uniformLayoutDescriptor("", shParamsSize, wgpu.ShaderStageCompute).Entries[0]
		return wgpu.BindGroupLayoutDescriptor{
			Label: key + " Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				uniform,
				cubeArrayEntry(1),
				storageEntry(2, shOutputSize),
			},
		}, true
	default:
		return wgpu.BindGroupLayoutDescriptor{}, false
	}
}
