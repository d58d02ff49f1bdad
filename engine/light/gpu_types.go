package light

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

// MaxGPULights is the number of light slots in the lit shader's uniform array.
// Lights beyond this budget are ignored by captures.
const MaxGPULights = 16

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct in lit.wgsl.
// Size: 48 bytes (WGSL uniform aligned).
type GPULight struct {
	Position   [3]float32 // offset  0: world-space position (point) or unused (directional)
	LightType  uint32     // offset 12: 0 = directional, 1 = point
	Direction  [3]float32 // offset 16: normalized direction (directional) or unused (point)
	Intensity  float32    // offset 28: scalar multiplier
	Color      [3]float32 // offset 32: RGB color
	LightRange float32    // offset 44: attenuation cutoff distance
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least 48 bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPULight) MarshalTo(buf []byte) {
	common.PutFloat32s(buf[0:], g.Position[:]...)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	common.PutFloat32s(buf[16:], g.Direction[:]...)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	common.PutFloat32s(buf[32:], g.Color[:]...)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.LightRange))
}

// GPULightingUniform is the lit shader's LightsUniform: ambient color, light count and a fixed
// array of MaxGPULights lights.
// Size: 800 bytes (32-byte header + 16 * 48).
type GPULightingUniform struct {
	Ambient [4]float32
	Count   uint32
	_pad    [3]uint32
	Lights  [MaxGPULights]GPULight
}

// Size returns the size of the GPULightingUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (800)
func (g *GPULightingUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 800-byte buffer ready for GPU upload
func (g *GPULightingUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Ambient[:]...)
	binary.LittleEndian.PutUint32(buf[16:20], g.Count)
	for i := range g.Lights {
		g.Lights[i].MarshalTo(buf[32+i*48:])
	}
	return buf
}

// BuildLightingUniform packs the enabled lights and the ambient color into the lit shader uniform.
// Disabled lights are skipped and lights past MaxGPULights are dropped.
//
// Parameters:
//   - ambient: the ambient RGB color
//   - lights: the scene lights
//
// Returns:
//   - GPULightingUniform: the packed uniform
func BuildLightingUniform(ambient common.Vec3, lights []Light) GPULightingUniform {
	u := GPULightingUniform{
		Ambient: [4]float32{ambient[0], ambient[1], ambient[2], 1},
	}
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if u.Count == MaxGPULights {
			break
		}
		u.Lights[u.Count] = l.GPU()
		u.Count++
	}
	return u
}
