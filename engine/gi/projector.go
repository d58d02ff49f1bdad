package gi

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
)

// RadianceSource selects what the projection kernel reads from a cube texel.
type RadianceSource uint32

const (
	// RadianceSourceColor projects the rgb radiance of a lit capture.
	RadianceSourceColor RadianceSource = iota
	// RadianceSourceSkyVisibility projects 1 - alpha of a G-buffer, where empty texels are open sky.
	RadianceSourceSkyVisibility
)

func (s RadianceSource) String() string {
	switch s {
	case RadianceSourceColor:
		return "color"
	case RadianceSourceSkyVisibility:
		return "sky_visibility"
	}
	return fmt.Sprintf("RadianceSource(%d)", uint32(s))
}

const shParamsSize = 16

// RadianceProjector projects a cube target onto SH9 on the GPU.
type RadianceProjector struct {
	device           Device
	seed             SeedFunc
	samplesPerThread uint32
}

// NewRadianceProjector creates a projector. Each of the kernel's 64 threads takes samplesPerThread samples.
//
// Parameters:
//   - device: the GPU device
//   - samplesPerThread: Monte Carlo samples per kernel thread, at least 1
//   - seed: optional seed source, math/rand/v2 when nil
//
// Returns:
//   - *RadianceProjector: the projector
func NewRadianceProjector(device Device, samplesPerThread uint32, seed SeedFunc) *RadianceProjector {
	if seed == nil {
		seed = rand.Float32
	}
	return &RadianceProjector{device: device, seed: seed, samplesPerThread: max(samplesPerThread, 1)}
}

// Project dispatches one workgroup of the projection kernel over target and reads back SHCount floats.
// The output buffer is released on every path.
//
// Parameters:
//   - target: the cube to project
//   - source: what to read from each texel
//
// Returns:
//   - SHCoefficients: the projected coefficients
//   - error: if allocation, dispatch or readback fails
func (p *RadianceProjector) Project(target renderer.CubeTarget, source RadianceSource) (SHCoefficients, error) {
	var sh SHCoefficients
	if target == nil {
		return sh, fmt.Errorf("sh projection needs a cube target")
	}

	buf, err := p.device.CreateStorageBuffer("gi_sh_output", SHCount*4)
	if err != nil {
		return sh, fmt.Errorf("failed to allocate sh buffer: %w", err)
	}
	defer buf.Release()

	params := make([]byte, shParamsSize)
	binary.LittleEndian.PutUint32(params[0:], math.Float32bits(p.seed()))
	binary.LittleEndian.PutUint32(params[4:], p.samplesPerThread)
	binary.LittleEndian.PutUint32(params[8:], uint32(source))

	err = p.device.DispatchCompute(pipeline.KeySHProject, renderer.ComputeBindings{
		Uniform:  params,
		Textures: []renderer.CubeTarget{target},
		Output:   buf,
	}, [3]uint32{1, 1, 1})
	if err != nil {
		return sh, fmt.Errorf("failed to dispatch sh projection: %w", err)
	}

	data, err := p.device.ReadBuffer(buf)
	if err != nil {
		return sh, fmt.Errorf("failed to read sh coefficients: %w", err)
	}
	return UnmarshalSHCoefficients(data)
}
