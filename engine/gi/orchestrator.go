package gi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/profiler"
)

type orchestrator struct {
	device   Device
	scene    Scene
	cfg      config.Config
	session  BakeSession
	progress ProgressFunc
	seed     SeedFunc

	poolMu sync.Mutex
	pool   worker.DynamicWorkerPool
	closed bool
	taskID atomic.Int64
}

// Orchestrator sequences the bakes of a scene, persists their results and enforces one bake at a time.
// Every top-level call logs its elapsed wall time.
type Orchestrator interface {
	// GenerateLighting bakes the scene's probe volume, then every reflection probe.
	// An error aborts the remaining work; completed bakes are kept and persisted.
	//
	// Parameters:
	//   - ctx: cancels between probes and before each reflection probe
	//
	// Returns:
	//   - error: ErrBakeInProgress, ErrUnsavedScene, ctx.Err() on cancellation, or the first failure
	GenerateLighting(ctx context.Context) error

	// GenerateLightingAsync runs GenerateLighting on the orchestrator's worker so StopBaking can be called meanwhile.
	//
	// Parameters:
	//   - ctx: the parent context of the bake
	//
	// Returns:
	//   - <-chan error: receives the bake result once, then closes. ErrClosed after Close
	GenerateLightingAsync(ctx context.Context) <-chan error

	// BakeReflectionProbe bakes and persists one reflection probe.
	//
	// Parameters:
	//   - ctx: cancels the bake before GPU work starts
	//   - probe: the probe to bake
	//
	// Returns:
	//   - error: ErrBakeInProgress, ErrUnsavedScene, ctx.Err() on cancellation, or the failure
	BakeReflectionProbe(ctx context.Context, probe ReflectionProbe) error

	// BakeAllReflectionProbes bakes and persists every reflection probe of the scene.
	//
	// Parameters:
	//   - ctx: cancels before each probe
	//
	// Returns:
	//   - error: ErrBakeInProgress, ErrUnsavedScene, ctx.Err() on cancellation, or the first failure
	BakeAllReflectionProbes(ctx context.Context) error

	// ClearBakedData drops the baked volume and reflection data and persists the empty state where assets exist.
	//
	// Returns:
	//   - error: ErrBakeInProgress, or a persistence failure
	ClearBakedData() error

	// StopBaking requests cancellation of the active bake and returns immediately. No-op when idle.
	StopBaking()

	// Baking reports whether a bake is active.
	//
	// Returns:
	//   - bool: true while a bake runs
	Baking() bool

	// Close stops the async worker. It may be called concurrently and more than once, and
	// GenerateLightingAsync reports ErrClosed afterwards.
	Close()
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates an orchestrator for scene.
//
// Parameters:
//   - device: the GPU device
//   - scene: the scene to bake
//   - cfg: bake settings
//   - options: builder options
//
// Returns:
//   - Orchestrator: the orchestrator
func NewOrchestrator(device Device, scene Scene, cfg config.Config, options ...OrchestratorBuilderOption) Orchestrator {
	o := &orchestrator{
		device: device,
		scene:  scene,
		cfg:    cfg,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *orchestrator) GenerateLighting(ctx context.Context) error {
	bakeCtx, err := o.session.Start(ctx)
	if err != nil {
		common.Logger().Warn("generate lighting rejected", "err", err)
		return err
	}
	defer o.session.Stop()
	return o.timed("generate lighting", func() error {
		return o.generateLighting(bakeCtx)
	})
}

func (o *orchestrator) GenerateLightingAsync(ctx context.Context) <-chan error {
	result := make(chan error, 1)
	bakeCtx, err := o.session.Start(ctx)
	if err != nil {
		common.Logger().Warn("generate lighting rejected", "err", err)
		result <- err
		close(result)
		return result
	}

	err = o.submit(worker.Task{
		ID:      int(o.taskID.Add(1)),
		Payload: o.scene.Name(),
		Do: func() (any, error) {
			err := o.timed("generate lighting", func() error {
				return o.generateLighting(bakeCtx)
			})
			o.session.Stop()
			result <- err
			close(result)
			return nil, err
		},
	})
	if err != nil {
		o.session.Stop()
		result <- err
		close(result)
	}
	return result
}

func (o *orchestrator) BakeReflectionProbe(ctx context.Context, probe ReflectionProbe) error {
	bakeCtx, err := o.session.Start(ctx)
	if err != nil {
		common.Logger().Warn("reflection probe bake rejected", "probe", probe.Name(), "err", err)
		return err
	}
	defer o.session.Stop()
	return o.timed("bake reflection probe "+probe.Name(), func() error {
		return o.bakeReflectionProbes(bakeCtx, []ReflectionProbe{probe})
	})
}

func (o *orchestrator) BakeAllReflectionProbes(ctx context.Context) error {
	bakeCtx, err := o.session.Start(ctx)
	if err != nil {
		common.Logger().Warn("reflection probe bake rejected", "err", err)
		return err
	}
	defer o.session.Stop()
	return o.timed("bake reflection probes", func() error {
		return o.bakeReflectionProbes(bakeCtx, o.scene.ReflectionProbes())
	})
}

func (o *orchestrator) ClearBakedData() error {
	if _, err := o.session.Start(context.Background()); err != nil {
		common.Logger().Warn("clear baked data rejected", "err", err)
		return err
	}
	defer o.session.Stop()
	return o.timed("clear baked data", o.clearBakedData)
}

func (o *orchestrator) StopBaking() {
	if !o.session.Active() {
		return
	}
	common.Logger().Info("stopping bake")
	o.session.Cancel()
}

func (o *orchestrator) Baking() bool {
	return o.session.Active()
}

func (o *orchestrator) Close() {
	o.poolMu.Lock()
	defer o.poolMu.Unlock()
	o.closed = true
	if o.pool != nil {
		o.pool.Stop()
		o.pool = nil
	}
}

// submit hands task to the bake worker, starting the pool on first use. The lock is held
// across SubmitTask so Close cannot stop the pool in between.
func (o *orchestrator) submit(task worker.Task) error {
	o.poolMu.Lock()
	defer o.poolMu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.pool == nil {
		o.pool = worker.NewDynamicWorkerPool(1, 1, time.Minute)
	}
	o.pool.SubmitTask(task)
	return nil
}

// timed runs fn, converts a panic into an error and logs the outcome with the elapsed time.
func (o *orchestrator) timed(op string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
		elapsed := FormatElapsed(time.Since(start))
		log := common.Logger()
		switch {
		case err == nil:
			log.Info(op+" finished", "elapsed", elapsed)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Warn(op+" cancelled", "elapsed", elapsed)
		case errors.Is(err, ErrUnsavedScene):
			log.Error(op+" aborted, save the scene first", "scene", o.scene.Name())
		default:
			log.Error(op+" failed", "err", err, "elapsed", elapsed)
		}
	}()
	return fn()
}

func (o *orchestrator) generateLighting(ctx context.Context) error {
	dir, err := o.outputDir()
	if err != nil {
		return err
	}

	vol := o.scene.ProbeVolume()
	if vol != nil && !vol.HasAsset() {
		path := filepath.Join(dir, vol.Name()+".toml")
		if err := vol.CreateAsset(path); err != nil {
			return fmt.Errorf("failed to create asset for volume %s: %w", vol.Name(), err)
		}
		common.Logger().Info("created probe volume asset", "path", path)
	}

	if vol != nil {
		if err := o.bakeVolume(ctx, vol); err != nil {
			return err
		}
	}
	return o.bakeReflectionProbesIn(ctx, dir, o.scene.ReflectionProbes())
}

// bakeVolume bakes and persists vol with a baker sized to the volume's own resolution.
func (o *orchestrator) bakeVolume(ctx context.Context, vol Volume) error {
	b, err := o.newBaker(common.Coalesce(vol.Resolution(), o.cfg.CubeResolution), "volume")
	if err != nil {
		return err
	}
	defer b.Dispose()

	if err := b.BakeVolume(ctx, vol); err != nil {
		return fmt.Errorf("probe volume %s: %w", vol.Name(), err)
	}
	if err := vol.Persist(); err != nil {
		return fmt.Errorf("failed to persist probe volume %s: %w", vol.Name(), err)
	}
	return nil
}

func (o *orchestrator) bakeReflectionProbes(ctx context.Context, probes []ReflectionProbe) error {
	dir, err := o.outputDir()
	if err != nil {
		return err
	}
	return o.bakeReflectionProbesIn(ctx, dir, probes)
}

// bakeReflectionProbesIn bakes probes at the configured cube resolution whichever entry point
// started the bake, so a probe's SH does not depend on the volume's resolution.
func (o *orchestrator) bakeReflectionProbesIn(ctx context.Context, dir string, probes []ReflectionProbe) error {
	if len(probes) == 0 {
		return nil
	}
	b, err := o.newBaker(o.cfg.CubeResolution, "reflections")
	if err != nil {
		return err
	}
	defer b.Dispose()
	return o.bakeReflectionProbesWith(ctx, b, dir, probes)
}

// bakeReflectionProbesWith bakes probes in order, waiting the configured delay before each one.
// Probes baked before a failure or cancellation are still persisted.
func (o *orchestrator) bakeReflectionProbesWith(ctx context.Context, b Baker, dir string, probes []ReflectionProbe) (err error) {
	baked := 0
	defer func() {
		if baked == 0 {
			return
		}
		if perr := o.scene.PersistReflectionProbes(dir); perr != nil {
			err = errors.Join(err, fmt.Errorf("failed to persist reflection probes: %w", perr))
		}
	}()

	for _, probe := range probes {
		if err := sleepContext(ctx, o.cfg.ReflectionProbeDelay.Duration); err != nil {
			return err
		}
		if err := b.BakeReflectionProbe(ctx, probe); err != nil {
			return fmt.Errorf("reflection probe %s: %w", probe.Name(), err)
		}
		baked++
	}
	return nil
}

func (o *orchestrator) clearBakedData() error {
	var errs []error
	if vol := o.scene.ProbeVolume(); vol != nil {
		vol.Clear()
		if vol.HasAsset() {
			if err := vol.Persist(); err != nil {
				errs = append(errs, fmt.Errorf("failed to persist cleared volume %s: %w", vol.Name(), err))
			}
		}
	}

	probes := o.scene.ReflectionProbes()
	for _, p := range probes {
		p.ClearCoefficients()
	}
	if len(probes) > 0 && o.scene.Path() != "" {
		dir, err := o.outputDir()
		if err == nil {
			err = o.scene.PersistReflectionProbes(dir)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to persist cleared reflection probes: %w", err))
		}
	}
	return errors.Join(errs...)
}

// newBaker creates a baker whose progress also drives a profiler tick per report.
func (o *orchestrator) newBaker(resolution uint32, label string) (Baker, error) {
	prof := profiler.NewProfiler(label)
	progress := o.progress
	return NewBaker(o.device, o.scene,
		WithResolution(resolution),
		WithSHSamplesPerThread(o.cfg.SHSamplesPerThread),
		WithSeedFunc(o.seed),
		WithProgressFunc(func(status string, pct float32) {
			prof.Tick()
			if progress != nil {
				progress(status, pct)
			}
		}),
	)
}

// outputDir returns <root>/<scene name>, creating it if needed. root is the configured output
// directory or the directory holding the scene file.
func (o *orchestrator) outputDir() (string, error) {
	path := o.scene.Path()
	if path == "" {
		return "", ErrUnsavedScene
	}
	root, err := o.cfg.ResolveOutputDir(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, o.scene.Name())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bake directory: %w", err)
	}
	return dir, nil
}

// sleepContext waits d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
