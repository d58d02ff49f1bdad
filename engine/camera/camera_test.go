package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/stretchr/testify/assert"
)

func TestNewCaptureCamera(t *testing.T) {
	c := NewCaptureCamera(common.Vec3{1, 2, 3})
	assert.Equal(t, CameraTypeReflection, c.Type())
	assert.False(t, c.Enabled())
	assert.Equal(t, common.Vec3{1, 2, 3}, c.Position())
	assert.NotEqual(t, c.FaceProvider(common.CubeFacePositiveX).Label(), c.FaceProvider(common.CubeFaceNegativeX).Label())
}

func TestFaceUniformMarshal(t *testing.T) {
	c := NewCaptureCamera(common.Vec3{4, 5, 6})
	u := c.FaceUniform(common.CubeFacePositiveZ, 2)
	assert.Equal(t, 80, u.Size())

	buf := u.Marshal()
	assert.Len(t, buf, 80)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[76:]))
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))

	vp := c.FaceViewProjection(common.CubeFacePositiveZ)
	assert.Equal(t, vp[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
}

func TestFaceViewProjectionFollowsPosition(t *testing.T) {
	c := NewCamera()
	before := c.FaceViewProjection(common.CubeFacePositiveX)
	c.SetPosition(common.Vec3{10, 0, 0})
	after := c.FaceViewProjection(common.CubeFacePositiveX)
	assert.NotEqual(t, before, after)
	c.Release()
}
