package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestGPUSizes(t *testing.T) {
	var l GPULight
	var u GPULightingUniform
	assert.Equal(t, 48, l.Size())
	assert.Equal(t, 800, u.Size())
}

func TestBuildLightingUniform(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithDirection(common.Vec3{0, -2, 0}), WithIntensity(3))
	lamp := NewLight(LightTypePoint, WithPosition(common.Vec3{1, 2, 3}), WithRange(5), WithColor(common.Vec3{1, 0.5, 0}))
	off := NewLight(LightTypePoint, WithEnabled(false))

	u := BuildLightingUniform(common.Vec3{0.1, 0.2, 0.3}, []Light{sun, off, lamp})
	require.Equal(t, uint32(2), u.Count)
	assert.Equal(t, [3]float32{0, -1, 0}, u.Lights[0].Direction)
	assert.Equal(t, uint32(LightTypePoint), u.Lights[1].LightType)

	buf := u.Marshal()
	require.Len(t, buf, 800)
	assert.Equal(t, float32(0.2), readFloat(buf, 4))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[16:]))
	// second light starts at 32 + 48
	assert.Equal(t, float32(2), readFloat(buf, 80+4))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[80+12:]))
	assert.Equal(t, float32(0.5), readFloat(buf, 80+36))
	assert.Equal(t, float32(5), readFloat(buf, 80+44))
}

func TestBuildLightingUniformCapsLights(t *testing.T) {
	lights := make([]Light, MaxGPULights+4)
	for i := range lights {
		lights[i] = NewLight(LightTypePoint)
	}
	u := BuildLightingUniform(common.Vec3{}, lights)
	assert.Equal(t, uint32(MaxGPULights), u.Count)
}
