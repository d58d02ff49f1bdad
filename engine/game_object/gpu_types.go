package game_object

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

// GPUObjectUniform is bind group 1 of a draw, shared by the capture and lit shaders.
type GPUObjectUniform struct {
	Model  [16]float32 // column-major world matrix at 0
	Albedo [4]float32  // base color of the first material at 64
}

// Size is 80 bytes.
//
// Returns:
//   - int: the struct size in bytes
func (g *GPUObjectUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal lays the uniform out for upload.
//
// Returns:
//   - []byte: the 80 byte buffer
func (g *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Model[:]...)
	common.PutFloat32s(buf[64:], g.Albedo[:]...)
	return buf
}
