package camera

import (
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

// GPUCameraUniform is bind group 0 of every capture draw: one cube face's view-projection,
// the probe position and the renderer.CaptureMode the capture shader switches on. 80 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // mat4x4<f32> at 0
	CameraPosition [3]float32  // vec3<f32> at 64
	Mode           uint32      // u32 at 76, fills the vec3 tail
}

func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.ViewProj[:]...)
	common.PutFloat32s(buf[64:], g.CameraPosition[:]...)
	binary.LittleEndian.PutUint32(buf[76:], g.Mode)
	return buf
}
