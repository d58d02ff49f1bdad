package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBaker fills surfels and SH from the probe position and counts calls.
type stubBaker struct {
	surfelCalls, radianceCalls int
	reports                    []float32
	failAt                     int
	cancelAfter                int
	cancel                     context.CancelFunc
}

func (s *stubBaker) SampleSurfels(pos common.Vec3) ([gi.RayNum]gi.Surfel, error) {
	s.surfelCalls++
	if s.failAt > 0 && s.surfelCalls == s.failAt {
		return [gi.RayNum]gi.Surfel{}, errors.New("device lost")
	}
	var out [gi.RayNum]gi.Surfel
	for i := range out {
		out[i] = gi.Surfel{Position: [3]float32(pos), Normal: [3]float32{0, 1, 0}, Albedo: [3]float32{0.5, 0.5, 0.5}, Validity: float32(i % 2)}
	}
	return out, nil
}

func (s *stubBaker) SampleRadiance(pos common.Vec3) (gi.SHCoefficients, error) {
	s.radianceCalls++
	var sh gi.SHCoefficients
	sh[0] = pos[0]
	sh[9] = pos[1]
	sh[18] = pos[2]
	return sh, nil
}

func (s *stubBaker) ReportProgress(_ string, progress float32) {
	s.reports = append(s.reports, progress)
	if s.cancel != nil && len(s.reports) == s.cancelAfter {
		s.cancel()
	}
}

func testVolume(opts ...VolumeBuilderOption) Volume {
	return NewVolume("main", PointLayout{{0, 1, 0}, {2, 1, 0}, {4, 1, 0}}, opts...)
}

func TestVolumeBakeFillsEveryProbe(t *testing.T) {
	v := testVolume()
	b := &stubBaker{}
	require.NoError(t, v.Bake(context.Background(), b))

	assert.True(t, v.Baked())
	assert.False(t, v.BakedAt().IsZero())
	assert.Equal(t, 3, b.surfelCalls)
	assert.Equal(t, 3, b.radianceCalls)
	assert.Equal(t, []float32{1.0 / 3, 2.0 / 3, 1}, b.reports)

	surfels := v.Surfels(1)
	require.Len(t, surfels, gi.RayNum)
	assert.Equal(t, [3]float32{2, 1, 0}, surfels[0].Position)
	sky, ok := v.SkyVisibility(2)
	require.True(t, ok)
	assert.Equal(t, float32(4), sky[0])

	assert.Nil(t, v.Surfels(3))
	_, ok = v.SkyVisibility(-1)
	assert.False(t, ok)
}

func TestVolumeBakeCancelledBetweenProbesKeepsPreviousData(t *testing.T) {
	v := testVolume()
	require.NoError(t, v.Bake(context.Background(), &stubBaker{}))
	before := v.Surfels(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := &stubBaker{cancel: cancel, cancelAfter: 1}
	err := v.Bake(ctx, b)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, b.surfelCalls)
	assert.Equal(t, before, v.Surfels(0))
}

func TestVolumeBakeErrorNamesProbe(t *testing.T) {
	v := testVolume()
	err := v.Bake(context.Background(), &stubBaker{failAt: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe 1")
	assert.False(t, v.Baked())
}

func TestVolumePersistAndReload(t *testing.T) {
	dir := t.TempDir()
	v := testVolume(WithResolution(32))
	require.NoError(t, v.Bake(context.Background(), &stubBaker{}))
	require.NoError(t, v.CreateAsset(filepath.Join(dir, "scene", "main.toml")))

	info, err := os.Stat(filepath.Join(dir, "scene", "main.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(3*(gi.RayNum*gi.SurfelStride+gi.SHCount*4)), info.Size())

	h, err := v.Asset().ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, "main", h.Name)
	assert.Equal(t, uint32(32), h.Resolution)
	assert.Equal(t, 3, h.ProbeCount)
	assert.True(t, h.Baked)
	assert.Equal(t, [3]float32{2, 1, 0}, h.Positions[1])

	reloaded := testVolume(WithAsset(NewAsset(filepath.Join(dir, "scene", "main.toml"))))
	require.NoError(t, reloaded.Reload())
	assert.True(t, reloaded.Baked())
	assert.Equal(t, v.Surfels(2), reloaded.Surfels(2))
	want, _ := v.SkyVisibility(1)
	got, _ := reloaded.SkyVisibility(1)
	assert.Equal(t, want, got)
}

func TestVolumeClearPersistsEmptyAsset(t *testing.T) {
	dir := t.TempDir()
	v := testVolume()
	require.NoError(t, v.Bake(context.Background(), &stubBaker{}))
	require.NoError(t, v.CreateAsset(filepath.Join(dir, "main.toml")))

	v.Clear()
	assert.False(t, v.Baked())
	require.NoError(t, v.Persist())

	h, payload, err := v.Asset().Read()
	require.NoError(t, err)
	assert.False(t, h.Baked)
	assert.Empty(t, payload)

	require.NoError(t, v.Bake(context.Background(), &stubBaker{}))
	require.NoError(t, v.Reload())
	assert.False(t, v.Baked())
}

func TestVolumeWithoutAsset(t *testing.T) {
	v := testVolume()
	assert.False(t, v.HasAsset())
	assert.ErrorIs(t, v.Persist(), ErrNoAsset)
	assert.ErrorIs(t, v.Reload(), ErrNoAsset)
}

func TestVolumeReloadRejectsProbeCountMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.toml")
	require.NoError(t, testVolume().CreateAsset(path))

	other := NewVolume("main", PointLayout{{0, 0, 0}}, WithAsset(NewAsset(path)))
	assert.Error(t, other.Reload())
}
