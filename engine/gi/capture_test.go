package gi_test

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureSessionLifecycle(t *testing.T) {
	dev := &fakeDevice{}
	c := gi.NewCaptureSession(dev, newTestScene(""))
	assert.Equal(t, gi.CaptureStateUninitialized, c.State())
	assert.Nil(t, c.Targets())
	require.NoError(t, c.CaptureGBuffers(camera.NewCaptureCamera(common.Vec3{}), common.Vec3{}))
	assert.Empty(t, dev.renders)

	require.NoError(t, c.Init(16))
	assert.True(t, c.Ready())
	assert.Len(t, c.Targets(), 3)
	require.NoError(t, c.CaptureGBuffers(camera.NewCaptureCamera(common.Vec3{}), common.Vec3{0, 1, 0}))
	assert.Len(t, dev.renders, 3)

	c.Dispose()
	c.Dispose()
	assert.Equal(t, gi.CaptureStateDisposed, c.State())
	require.NoError(t, c.CaptureLighting(camera.NewCaptureCamera(common.Vec3{}), common.Vec3{}))
	assert.Len(t, dev.renders, 3)
	_, _, liveTargets, _ := dev.counts()
	assert.Zero(t, liveTargets)
}

func TestCaptureSessionDisposeWaitsForCapture(t *testing.T) {
	dev := &fakeDevice{started: make(chan struct{}), gate: make(chan struct{})}
	c := gi.NewCaptureSession(dev, newTestScene(""))
	require.NoError(t, c.Init(16))

	captured := make(chan error, 1)
	go func() {
		captured <- c.CaptureGBuffers(camera.NewCaptureCamera(common.Vec3{}), common.Vec3{0, 1, 0})
	}()
	<-dev.started

	disposed := make(chan struct{})
	go func() {
		c.Dispose()
		close(disposed)
	}()

	select {
	case <-disposed:
		t.Fatal("dispose released targets during a capture")
	case <-time.After(50 * time.Millisecond):
	}

	close(dev.gate)
	require.NoError(t, <-captured)
	<-disposed

	require.Len(t, dev.renders, 3)
	for _, r := range dev.renders {
		assert.False(t, r.released, r.target)
	}
	_, _, liveTargets, _ := dev.counts()
	assert.Zero(t, liveTargets)
}
