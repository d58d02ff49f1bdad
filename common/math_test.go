package common

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionToCubeTexelAxes(t *testing.T) {
	cases := []struct {
		dir  Vec3
		face CubeFace
	}{
		{Vec3{1, 0, 0}, CubeFacePositiveX},
		{Vec3{-1, 0, 0}, CubeFaceNegativeX},
		{Vec3{0, 1, 0}, CubeFacePositiveY},
		{Vec3{0, -1, 0}, CubeFaceNegativeY},
		{Vec3{0, 0, 1}, CubeFacePositiveZ},
		{Vec3{0, 0, -1}, CubeFaceNegativeZ},
	}
	for _, c := range cases {
		face, u, v := DirectionToCubeTexel(c.dir)
		assert.Equal(t, c.face, face)
		assert.InDelta(t, 0.5, u, 1e-6)
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}

// The face cameras must land a direction on the same texel the kernels read it from.
func TestCubeFaceViewProjectionMatchesTexelMapping(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	eye := Vec3{3, -2, 5}
	var vp [16]float32

	for range 500 {
		dir := Normalize(Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1})
		if Dot(dir, dir) == 0 {
			continue
		}
		face, u, v := DirectionToCubeTexel(dir)

		CubeFaceViewProjection(vp[:], eye, face, 0.1, 100)
		target := Vec3{eye[0] + dir[0]*4, eye[1] + dir[1]*4, eye[2] + dir[2]*4}
		clip := TransformPoint(vp[:], target)
		require.Greater(t, clip[3], float32(0), "point must be in front of face %d", face)

		ndcX, ndcY := clip[0]/clip[3], clip[1]/clip[3]
		assert.InDelta(t, u, (ndcX+1)*0.5, 1e-4)
		assert.InDelta(t, v, (1-ndcY)*0.5, 1e-4)

		depth := clip[2] / clip[3]
		assert.True(t, depth >= 0 && depth <= 1, "depth %f out of range", depth)
	}
}

func TestCubeFaceBasisIsOrthonormal(t *testing.T) {
	for face := CubeFace(0); face < CubeFaceCount; face++ {
		f, r, u := CubeFaceBasis(face)
		assert.InDelta(t, 0, Dot(f, r), 1e-6)
		assert.InDelta(t, 0, Dot(f, u), 1e-6)
		assert.InDelta(t, 0, Dot(r, u), 1e-6)
		assert.InDelta(t, 1, Dot(f, f), 1e-6)
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 64, Coalesce(0, 64, 128))
	assert.Equal(t, "", Coalesce("", ""))
}

func TestPutFloat32sLayout(t *testing.T) {
	buf := make([]byte, 12)
	PutFloat32s(buf, 1, -2, 0.5)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, buf[:4])

	out := make([]float32, 3)
	Float32s(buf, out)
	assert.Equal(t, []float32{1, -2, 0.5}, out)
}
