package gi_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedScene(t *testing.T) (testScene, string) {
	t.Helper()
	dir := t.TempDir()
	return newTestScene(filepath.Join(dir, "room.yaml")), filepath.Join(dir, "room")
}

func TestGenerateLightingBakesAndPersists(t *testing.T) {
	dev := &fakeDevice{}
	s, bakeDir := savedScene(t)
	o := gi.NewOrchestrator(dev, s, config.Config{})
	defer o.Close()

	require.NoError(t, o.GenerateLighting(context.Background()))
	assert.False(t, o.Baking())

	vol := s.Volume()
	assert.True(t, vol.Baked())
	require.True(t, vol.HasAsset())
	assert.Equal(t, filepath.Join(bakeDir, "main.toml"), vol.Asset().Path())
	h, _, err := vol.Asset().Read()
	require.NoError(t, err)
	assert.True(t, h.Baked)

	for _, p := range s.ReflectionProbes() {
		assert.True(t, p.Baked(), p.Name())
	}
	_, err = os.Stat(filepath.Join(bakeDir, probe.ReflectionProbesFile))
	assert.NoError(t, err)

	_, _, liveTargets, liveBuffers := dev.counts()
	assert.Zero(t, liveTargets)
	assert.Zero(t, liveBuffers)
}

func TestGenerateLightingUnsavedSceneAbortsBeforeGPUWork(t *testing.T) {
	dev := &fakeDevice{}
	s := newTestScene("")
	o := gi.NewOrchestrator(dev, s, config.Config{})
	defer o.Close()

	assert.ErrorIs(t, o.GenerateLighting(context.Background()), gi.ErrUnsavedScene)
	assert.Zero(t, dev.targets)
	assert.False(t, s.Volume().HasAsset())
	assert.False(t, o.Baking())
}

func TestStopBakingBetweenVolumeAndReflectionProbes(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := savedScene(t)
	var o gi.Orchestrator
	o = gi.NewOrchestrator(dev, s, config.Config{}, gi.WithBakeProgress(func(status string, p float32) {
		if strings.HasPrefix(status, "main:") && p == 1 {
			o.StopBaking()
		}
	}))
	defer o.Close()

	err := o.GenerateLighting(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, s.Volume().Baked())
	h, _, err := s.Volume().Asset().Read()
	require.NoError(t, err)
	assert.True(t, h.Baked)
	for _, p := range s.ReflectionProbes() {
		assert.False(t, p.Baked(), p.Name())
	}
	assert.Len(t, dev.dispatches, 4)
	assert.False(t, o.Baking())
}

func TestStopBakingWhenIdleIsNoop(t *testing.T) {
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(&fakeDevice{}, s, config.Config{})
	defer o.Close()
	o.StopBaking()
	assert.NoError(t, o.BakeAllReflectionProbes(context.Background()))
}

func TestGenerateLightingAsyncRejectsSecondBake(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}), gate: make(chan struct{})}
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(dev, s, config.Config{})
	defer o.Close()

	result := o.GenerateLightingAsync(context.Background())
	<-dev.started
	assert.True(t, o.Baking())
	assert.ErrorIs(t, o.GenerateLighting(context.Background()), gi.ErrBakeInProgress)
	assert.ErrorIs(t, <-o.GenerateLightingAsync(context.Background()), gi.ErrBakeInProgress)
	assert.ErrorIs(t, o.ClearBakedData(), gi.ErrBakeInProgress)

	o.StopBaking()
	close(dev.gate)

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("async bake did not finish")
	}
	assert.False(t, o.Baking())
	assert.False(t, s.Volume().Baked())
}

func TestGenerateLightingAsyncAfterClose(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(dev, s, config.Config{})

	require.NoError(t, <-o.GenerateLightingAsync(context.Background()))
	o.Close()
	o.Close()

	assert.ErrorIs(t, <-o.GenerateLightingAsync(context.Background()), gi.ErrClosed)
	assert.False(t, o.Baking())
	require.NoError(t, o.GenerateLighting(context.Background()))
}

func TestReflectionProbesBakeAtConfiguredResolution(t *testing.T) {
	cfg := config.Config{CubeResolution: 32}

	dev := &fakeDevice{}
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(dev, s, cfg)
	defer o.Close()
	require.NoError(t, o.GenerateLighting(context.Background()))
	require.NotEmpty(t, dev.targetSizes)
	assert.Equal(t, uint32(16), dev.targetSizes[0])
	assert.Equal(t, uint32(32), dev.targetSizes[len(dev.targetSizes)-1])
	assert.Subset(t, []uint32{16, 32}, dev.targetSizes)

	single := &fakeDevice{}
	s2, _ := savedScene(t)
	o2 := gi.NewOrchestrator(single, s2, cfg)
	defer o2.Close()
	require.NoError(t, o2.BakeAllReflectionProbes(context.Background()))
	require.NotEmpty(t, single.targetSizes)
	for _, size := range single.targetSizes {
		assert.Equal(t, uint32(32), size)
	}
}

func TestGenerateLightingRecoversPanic(t *testing.T) {
	dev := &fakeDevice{panicRender: true}
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(dev, s, config.Config{})
	defer o.Close()

	err := o.GenerateLighting(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.False(t, o.Baking())
	assert.Equal(t, "lit", s.wall.PipelineKey())
	_, _, liveTargets, _ := dev.counts()
	assert.Zero(t, liveTargets)
}

func TestBakeReflectionProbeWaitsForDelay(t *testing.T) {
	dev := &fakeDevice{}
	s, bakeDir := savedScene(t)
	cfg := config.Config{ReflectionProbeDelay: config.Duration{Duration: 20 * time.Millisecond}}
	o := gi.NewOrchestrator(dev, s, cfg)
	defer o.Close()

	start := time.Now()
	require.NoError(t, o.BakeReflectionProbe(context.Background(), s.ReflectionProbes()[0]))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.True(t, s.ReflectionProbes()[0].Baked())
	assert.False(t, s.ReflectionProbes()[1].Baked())

	loaded := probe.NewReflectionProbe("hall", s.ReflectionProbes()[0].Position())
	n, err := probe.LoadReflectionProbes(bakeDir, []gi.ReflectionProbe{loaded})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBakeAllReflectionProbesCancelledDuringDelay(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := savedScene(t)
	cfg := config.Config{ReflectionProbeDelay: config.Duration{Duration: time.Hour}}
	o := gi.NewOrchestrator(dev, s, cfg)
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, o.BakeAllReflectionProbes(ctx), context.DeadlineExceeded)
	assert.Empty(t, dev.renders)
}

func TestClearBakedData(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(dev, s, config.Config{})
	defer o.Close()
	require.NoError(t, o.GenerateLighting(context.Background()))

	require.NoError(t, o.ClearBakedData())
	assert.False(t, s.Volume().Baked())
	h, payload, err := s.Volume().Asset().Read()
	require.NoError(t, err)
	assert.False(t, h.Baked)
	assert.Empty(t, payload)
	for _, p := range s.ReflectionProbes() {
		assert.False(t, p.Baked())
	}
}

func TestOutputDirOverride(t *testing.T) {
	out := t.TempDir()
	s, _ := savedScene(t)
	o := gi.NewOrchestrator(&fakeDevice{}, s, config.Config{OutputDir: out})
	defer o.Close()

	require.NoError(t, o.GenerateLighting(context.Background()))
	assert.Equal(t, filepath.Join(out, "room", "main.toml"), s.Volume().Asset().Path())
}
