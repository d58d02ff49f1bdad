package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewProfiler("volume")
	p.now = func() time.Time { return clock }
	p.start, p.lastTime = clock, clock

	assert.False(t, p.Tick())
	clock = clock.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
	clock = clock.Add(600 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.Equal(t, 3, p.Probes())
	assert.Equal(t, 1100*time.Millisecond, p.Elapsed())
}

func TestZeroIntervalLogsEveryTick(t *testing.T) {
	p := NewProfiler("reflections")
	p.SetInterval(0)
	assert.True(t, p.Tick())
	assert.True(t, p.Tick())
	assert.Equal(t, 2, p.Probes())
}
