package gi

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

const (
	// RayNum is the number of surfels produced by one sample call.
	RayNum = 512

	// SurfelStride is the size in bytes of one serialized Surfel.
	SurfelStride = 40
)

// Surfel is one point sample of the scene seen from a probe.
// Validity is 1 where the ray hit geometry and 0 where it escaped to the sky.
type Surfel struct {
	Position [3]float32
	Normal   [3]float32
	Albedo   [3]float32
	Validity float32
}

// Size returns the size of the Surfel struct in bytes.
//
// Returns:
//   - int: the size in bytes
func (s *Surfel) Size() int {
	return int(unsafe.Sizeof(*s))
}

// MarshalTo writes the surfel in its 40-byte little-endian layout.
//
// Parameters:
//   - buf: destination, at least SurfelStride bytes
func (s *Surfel) MarshalTo(buf []byte) {
	common.PutFloat32s(buf[0:], s.Position[:]...)
	common.PutFloat32s(buf[12:], s.Normal[:]...)
	common.PutFloat32s(buf[24:], s.Albedo[:]...)
	common.PutFloat32s(buf[36:], s.Validity)
}

// UnmarshalSurfel reads one surfel from its 40-byte little-endian layout.
//
// Parameters:
//   - buf: source, at least SurfelStride bytes
//
// Returns:
//   - Surfel: the decoded surfel
func UnmarshalSurfel(buf []byte) Surfel {
	var s Surfel
	common.Float32s(buf[0:], s.Position[:])
	common.Float32s(buf[12:], s.Normal[:])
	common.Float32s(buf[24:], s.Albedo[:])
	s.Validity = math.Float32frombits(binary.LittleEndian.Uint32(buf[36:]))
	return s
}

// MarshalSurfels serializes surfels back to back.
//
// Parameters:
//   - surfels: the surfels to serialize
//
// Returns:
//   - []byte: len(surfels)*SurfelStride bytes
func MarshalSurfels(surfels []Surfel) []byte {
	buf := make([]byte, len(surfels)*SurfelStride)
	for i := range surfels {
		surfels[i].MarshalTo(buf[i*SurfelStride:])
	}
	return buf
}

// UnmarshalSurfels decodes exactly RayNum surfels from a sampler readback.
//
// Parameters:
//   - data: the readback bytes
//
// Returns:
//   - [RayNum]Surfel: the surfels in sampler-thread order
//   - error: if data is not exactly RayNum*SurfelStride bytes
func UnmarshalSurfels(data []byte) ([RayNum]Surfel, error) {
	var out [RayNum]Surfel
	if len(data) != RayNum*SurfelStride {
		return out, fmt.Errorf("surfel readback is %d bytes, want %d", len(data), RayNum*SurfelStride)
	}
	for i := range out {
		out[i] = UnmarshalSurfel(data[i*SurfelStride:])
	}
	return out, nil
}
