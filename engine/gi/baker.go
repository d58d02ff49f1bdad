package gi

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
)

type baker struct {
	mu        sync.Mutex
	device    Device
	scene     Scene
	capture   *CaptureSession
	override  *MaterialOverrideScope
	sampler   *SurfelSampler
	projector *RadianceProjector
	progress  ProgressFunc
	disposed  bool

	resolution       uint32
	samplesPerThread uint32
	seed             SeedFunc
}

// Baker turns a scene into probe data. It owns one set of cube G-buffers and is not shared between bakes.
type Baker interface {
	// BakeVolume bakes every probe of plan with the scene's GI contributors switched to the capture pipeline.
	// Materials are restored and the capture camera released on every path.
	//
	// Parameters:
	//   - ctx: cancels the bake between probes
	//   - plan: the probes to bake
	//
	// Returns:
	//   - error: nil when the baker is not ready (a warning is logged), ctx.Err() on cancellation, or the first failure
	BakeVolume(ctx context.Context, plan BakePlan) error

	// BakeReflectionProbe captures the lit scene at the probe position and stores its SH in the probe.
	//
	// Parameters:
	//   - ctx: checked once before any GPU work
	//   - probe: the probe to bake
	//
	// Returns:
	//   - error: nil when the baker is not ready (a warning is logged), ctx.Err() on cancellation, or the failure
	BakeReflectionProbe(ctx context.Context, probe ReflectionProbe) error

	// SetProgressFunc installs the progress callback.
	//
	// Parameters:
	//   - fn: the callback, or nil
	SetProgressFunc(fn ProgressFunc)

	// Ready reports whether the baker will do GPU work.
	//
	// Returns:
	//   - bool: true until Dispose
	Ready() bool

	// Dispose releases the cube targets and drops the progress callback. Safe to call more than once.
	Dispose()
}

var _ Baker = &baker{}

// NewBaker creates a baker and its cube G-buffers.
//
// Parameters:
//   - device: the GPU device
//   - scene: the scene to bake
//   - options: builder options
//
// Returns:
//   - Baker: the ready baker
//   - error: if the cube targets cannot be created
func NewBaker(device Device, scene Scene, options ...BakerBuilderOption) (Baker, error) {
	b := &baker{
		device:           device,
		scene:            scene,
		override:         NewMaterialOverrideScope(),
		resolution:       config.DefaultCubeResolution,
		samplesPerThread: config.DefaultSHSamplesPerThread,
	}
	for _, opt := range options {
		opt(b)
	}

	b.capture = NewCaptureSession(device, scene)
	if err := b.capture.Init(b.resolution); err != nil {
		return nil, fmt.Errorf("failed to initialize baker: %w", err)
	}
	b.sampler = NewSurfelSampler(device, b.seed)
	b.projector = NewRadianceProjector(device, b.samplesPerThread, b.seed)
	return b, nil
}

func (b *baker) BakeVolume(ctx context.Context, plan BakePlan) error {
	if !b.Ready() {
		common.Logger().Warn("volume bake skipped", "err", ErrNotReady)
		return nil
	}

	contributors := b.scene.GIContributors()
	restore, err := b.override.Acquire(contributors, pipeline.KeyCapture)
	if err != nil {
		return err
	}
	defer restore()

	cam := camera.NewCaptureCamera(common.Vec3{})
	defer cam.Release()

	common.Logger().Info("baking probe volume", "contributors", len(contributors))
	return plan.Bake(ctx, &probeBaker{baker: b, cam: cam})
}

func (b *baker) BakeReflectionProbe(ctx context.Context, probe ReflectionProbe) error {
	if !b.Ready() {
		common.Logger().Warn("reflection probe bake skipped", "probe", probe.Name(), "err", ErrNotReady)
		return nil
	}

	cam := camera.NewCaptureCamera(probe.Position())
	defer cam.Release()

	if err := ctx.Err(); err != nil {
		return err
	}

	b.reportProgress(probe.Name(), 0)
	if err := b.capture.CaptureLighting(cam, probe.Position()); err != nil {
		return err
	}
	sh, err := b.projector.Project(b.capture.AlbedoTarget(), RadianceSourceColor)
	if err != nil {
		return err
	}
	probe.SetCoefficients(sh)
	b.reportProgress(probe.Name(), 1)
	return nil
}

func (b *baker) SetProgressFunc(fn ProgressFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = fn
}

func (b *baker) Ready() bool {
	b.mu.Lock()
	disposed := b.disposed
	b.mu.Unlock()
	return !disposed && b.capture.Ready()
}

func (b *baker) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.capture.Dispose()
	b.progress = nil
	b.disposed = true
	common.Logger().Debug("baker disposed")
}

func (b *baker) reportProgress(status string, progress float32) {
	b.mu.Lock()
	fn := b.progress
	b.mu.Unlock()
	if fn != nil {
		fn(status, progress)
	}
}

// probeBaker is the ProbeBaker handed to a BakePlan. It remembers the last capture position
// so SampleRadiance after SampleSurfels at the same position reuses the G-buffers.
type probeBaker struct {
	baker       *baker
	cam         camera.Camera
	captured    bool
	lastCapture common.Vec3
}

var _ ProbeBaker = &probeBaker{}

func (p *probeBaker) SampleSurfels(position common.Vec3) ([RayNum]Surfel, error) {
	if err := p.ensureCapture(position); err != nil {
		return [RayNum]Surfel{}, err
	}
	return p.baker.sampler.Sample(p.baker.capture.Targets(), position)
}

func (p *probeBaker) SampleRadiance(position common.Vec3) (SHCoefficients, error) {
	if err := p.ensureCapture(position); err != nil {
		return SHCoefficients{}, err
	}
	return p.baker.projector.Project(p.baker.capture.PositionTarget(), RadianceSourceSkyVisibility)
}

func (p *probeBaker) ReportProgress(status string, progress float32) {
	p.baker.reportProgress(status, progress)
}

func (p *probeBaker) ensureCapture(position common.Vec3) error {
	if !p.baker.Ready() {
		return ErrNotReady
	}
	if p.captured && p.lastCapture == position {
		return nil
	}
	if err := p.baker.capture.CaptureGBuffers(p.cam, position); err != nil {
		p.captured = false
		return err
	}
	p.captured = true
	p.lastCapture = position
	return nil
}
