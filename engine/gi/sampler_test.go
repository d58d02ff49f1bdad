package gi_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gbuffers(t *testing.T, dev *fakeDevice) []renderer.CubeTarget {
	t.Helper()
	var out []renderer.CubeTarget
	for _, label := range []string{"position", "normal", "albedo"} {
		target, err := dev.CreateCubeTarget(label, 16)
		require.NoError(t, err)
		out = append(out, target)
	}
	return out
}

func TestSurfelSamplerReadsBackOneBatch(t *testing.T) {
	dev := &fakeDevice{}
	sampler := gi.NewSurfelSampler(dev, func() float32 { return 0.25 })

	surfels, err := sampler.Sample(gbuffers(t, dev), common.Vec3{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, surfels, gi.RayNum)
	assert.Equal(t, [3]float32{1, 2, 3}, surfels[0].Position)
	assert.Equal(t, float32(511), surfels[511].Albedo[1])

	require.Len(t, dev.dispatches, 1)
	call := dev.dispatches[0]
	assert.Equal(t, pipeline.KeySurfelSample, call.key)
	assert.Equal(t, uint64(gi.RayNum*gi.SurfelStride), call.output)
	assert.Equal(t, [3]uint32{1, 1, 1}, call.groups)
	assert.Equal(t, []string{"position", "normal", "albedo"}, call.textures)
	assert.Len(t, call.uniform, 16)
	assert.Equal(t, 512, gi.SurfelThreadsX*gi.SurfelThreadsY)

	_, _, _, liveBuffers := dev.counts()
	assert.Zero(t, liveBuffers)
}

func TestSurfelSamplerReleasesBufferOnFailure(t *testing.T) {
	dev := &fakeDevice{failDispatch: errors.New("lost")}
	sampler := gi.NewSurfelSampler(dev, nil)

	_, err := sampler.Sample(gbuffers(t, dev), common.Vec3{})
	assert.Error(t, err)
	_, _, _, liveBuffers := dev.counts()
	assert.Zero(t, liveBuffers)
}

func TestSurfelSamplerRejectsWrongTargetCount(t *testing.T) {
	dev := &fakeDevice{}
	_, err := gi.NewSurfelSampler(dev, nil).Sample(gbuffers(t, dev)[:2], common.Vec3{})
	assert.Error(t, err)
	assert.Empty(t, dev.dispatches)
}

func TestSurfelSamplerSeedVariesBetweenSamples(t *testing.T) {
	dev := &fakeDevice{}
	sampler := gi.NewSurfelSampler(dev, nil)
	targets := gbuffers(t, dev)

	a, err := sampler.Sample(targets, common.Vec3{0, 1, 0})
	require.NoError(t, err)
	b, err := sampler.Sample(targets, common.Vec3{0, 1, 0})
	require.NoError(t, err)

	seedA := binary.LittleEndian.Uint32(dev.dispatches[0].uniform[12:])
	seedB := binary.LittleEndian.Uint32(dev.dispatches[1].uniform[12:])
	assert.NotEqual(t, seedA, seedB)
	assert.NotEqual(t, a, b)
}

func TestRadianceProjectorReadsBackCoefficients(t *testing.T) {
	dev := &fakeDevice{}
	projector := gi.NewRadianceProjector(dev, 8, func() float32 { return 0.5 })
	target, err := dev.CreateCubeTarget("lit", 16)
	require.NoError(t, err)

	sh, err := projector.Project(target, gi.RadianceSourceSkyVisibility)
	require.NoError(t, err)
	assert.Len(t, sh, gi.SHCount)
	assert.Equal(t, float32(0.5), sh[0])
	assert.Equal(t, float32(26.5), sh[26])

	require.Len(t, dev.dispatches, 1)
	call := dev.dispatches[0]
	assert.Equal(t, pipeline.KeySHProject, call.key)
	assert.Equal(t, uint64(gi.SHCount*4), call.output)
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(call.uniform[4:]))
	assert.Equal(t, uint32(gi.RadianceSourceSkyVisibility), binary.LittleEndian.Uint32(call.uniform[8:]))

	_, _, _, liveBuffers := dev.counts()
	assert.Zero(t, liveBuffers)
}

func TestRadianceProjectorReleasesBufferOnFailure(t *testing.T) {
	dev := &fakeDevice{failDispatch: errors.New("lost")}
	target, err := dev.CreateCubeTarget("lit", 16)
	require.NoError(t, err)

	_, err = gi.NewRadianceProjector(dev, 1, nil).Project(target, gi.RadianceSourceColor)
	assert.Error(t, err)
	_, _, _, liveBuffers := dev.counts()
	assert.Zero(t, liveBuffers)
}

func TestSHCoefficients(t *testing.T) {
	var sh gi.SHCoefficients
	for c := range 3 {
		sh[c*gi.SHBasisCount] = float32(c+1) / 0.282095
	}
	got := sh.Evaluate(common.Vec3{0, 0, 5})
	assert.InDelta(t, 1, got[0], 1e-5)
	assert.InDelta(t, 2, got[1], 1e-5)
	assert.InDelta(t, 3, got[2], 1e-5)
	assert.InDelta(t, 2/0.282095, sh.Channel(1)[0], 1e-4)

	decoded, err := gi.UnmarshalSHCoefficients(sh.Marshal())
	require.NoError(t, err)
	assert.Equal(t, sh, decoded)

	_, err = gi.UnmarshalSHCoefficients(make([]byte, 10))
	assert.Error(t, err)
}

func TestSurfelLayout(t *testing.T) {
	var s gi.Surfel
	assert.Equal(t, gi.SurfelStride, s.Size())

	_, err := gi.UnmarshalSurfels(make([]byte, gi.SurfelStride))
	assert.Error(t, err)
}
