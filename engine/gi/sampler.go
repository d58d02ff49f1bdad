package gi

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
)

const (
	// SurfelThreadsX and SurfelThreadsY are the workgroup dimensions of the surfel kernel, one thread per surfel.
	SurfelThreadsX = 32
	SurfelThreadsY = 16

	surfelParamsSize = 16
)

// SeedFunc returns a fresh kernel seed in [0, 1).
type SeedFunc func() float32

// SurfelSampler draws RayNum surfels from the three G-buffer cubes on the GPU.
type SurfelSampler struct {
	device Device
	seed   SeedFunc
}

// NewSurfelSampler creates a sampler seeded from math/rand/v2 unless seed is non-nil.
//
// Parameters:
//   - device: the GPU device
//   - seed: optional seed source
//
// Returns:
//   - *SurfelSampler: the sampler
func NewSurfelSampler(device Device, seed SeedFunc) *SurfelSampler {
	if seed == nil {
		seed = rand.Float32
	}
	return &SurfelSampler{device: device, seed: seed}
}

// Sample dispatches one workgroup of SurfelThreadsX*SurfelThreadsY threads and reads the surfels back.
// The output buffer is released on every path.
//
// Parameters:
//   - targets: the position, normal and albedo cubes, in that order
//   - position: the probe position
//
// Returns:
//   - [RayNum]Surfel: the surfels in thread order
//   - error: if allocation, dispatch or readback fails
func (s *SurfelSampler) Sample(targets []renderer.CubeTarget, position common.Vec3) ([RayNum]Surfel, error) {
	var out [RayNum]Surfel
	if len(targets) != gbufferCount {
		return out, fmt.Errorf("surfel sampling needs %d cube targets, got %d", gbufferCount, len(targets))
	}

	buf, err := s.device.CreateStorageBuffer("gi_surfel_output", RayNum*SurfelStride)
	if err != nil {
		return out, fmt.Errorf("failed to allocate surfel buffer: %w", err)
	}
	defer buf.Release()

	params := make([]byte, surfelParamsSize)
	common.PutFloat32s(params, position[:]...)
	binary.LittleEndian.PutUint32(params[12:], math.Float32bits(s.seed()))

	err = s.device.DispatchCompute(pipeline.KeySurfelSample, renderer.ComputeBindings{
		Uniform:  params,
		Textures: targets,
		Output:   buf,
	}, [3]uint32{1, 1, 1})
	if err != nil {
		return out, fmt.Errorf("failed to dispatch surfel sampling: %w", err)
	}

	data, err := s.device.ReadBuffer(buf)
	if err != nil {
		return out, fmt.Errorf("failed to read surfels: %w", err)
	}
	return UnmarshalSurfels(data)
}
