package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

// Profiler tracks probe throughput and memory statistics during a bake.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	label          string
	probeCount     int
	totalProbes    int
	start          time.Time
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler for one bake.
// Update interval defaults to 1 second.
//
// Parameters:
//   - label: the bake being profiled, included in every log line
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(label string) *Profiler {
	p := &Profiler{
		label:          label,
		updateInterval: time.Second,
		now:            time.Now,
	}
	p.start = p.now()
	p.lastTime = p.start
	return p
}

// SetInterval changes how often Tick logs.
//
// Parameters:
//   - d: the interval; zero logs on every tick
func (p *Profiler) SetInterval(d time.Duration) {
	p.updateInterval = d
}

// Tick should be called once per baked probe.
// Logs throughput statistics when the update interval has elapsed: probes/s, heap usage,
// allocation rate and GC count.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.probeCount++
	p.totalProbes++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	var rate float64
	if elapsed > 0 {
		rate = float64(p.probeCount) / elapsed.Seconds()
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc only grows, so its delta is the allocation churn
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	var allocRateMB float64
	if elapsed > 0 {
		allocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()
	}

	common.Logger().Info("bake profile",
		"bake", p.label,
		"probes", p.totalProbes,
		"probes_per_sec", rate,
		"heap_mb", allocMB,
		"alloc_mb_per_sec", allocRateMB,
		"gc", p.memStats.NumGC-p.lastGCCount,
	)

	p.probeCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Probes returns the number of ticks since the profiler was created.
//
// Returns:
//   - int: the probe count
func (p *Profiler) Probes() int {
	return p.totalProbes
}

// Elapsed returns the time since the profiler was created.
//
// Returns:
//   - time.Duration: the elapsed wall time
func (p *Profiler) Elapsed() time.Duration {
	return p.now().Sub(p.start)
}
