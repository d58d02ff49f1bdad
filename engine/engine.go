package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/scene"
)

// Job selects what Engine.Run does.
type Job int

const (
	// JobGenerateLighting bakes the probe volume and every reflection probe.
	JobGenerateLighting Job = iota
	// JobReflectionProbes bakes every reflection probe.
	JobReflectionProbes
	// JobClear clears all baked data.
	JobClear
)

func (j Job) String() string {
	switch j {
	case JobGenerateLighting:
		return "generate lighting"
	case JobReflectionProbes:
		return "reflection probes"
	case JobClear:
		return "clear"
	}
	return fmt.Sprintf("Job(%d)", int(j))
}

// engine implements the Engine interface.
// Wires the device, the scene and the orchestrator and turns Quit into a bake cancellation.
type engine struct {
	cfg   config.Config
	scene scene.Scene

	device       gi.Device
	renderer     renderer.Renderer
	ownsRenderer bool

	orchestrator gi.Orchestrator
	progress     gi.ProgressFunc

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	releaseOnce sync.Once
}

// Engine is the main entry point for baking a scene.
// It owns the GPU device and the orchestrator and runs one job at a time.
type Engine interface {
	// Scene returns the scene being baked.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Renderer returns the headless renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer, or nil when a device was injected with WithDevice
	Renderer() renderer.Renderer

	// Orchestrator returns the bake orchestrator.
	//
	// Returns:
	//   - gi.Orchestrator: the orchestrator
	Orchestrator() gi.Orchestrator

	// BakeDir returns the directory the scene's bake results live in.
	//
	// Returns:
	//   - string: the directory
	//   - error: gi.ErrUnsavedScene if the scene has no path
	BakeDir() (string, error)

	// Run executes a job and blocks until it finishes. Quit cancels it, and once the engine
	// has quit Run returns context.Canceled without starting the job.
	//
	// Parameters:
	//   - ctx: the job context
	//   - job: the job to run
	//
	// Returns:
	//   - error: the job result
	Run(ctx context.Context, job Job) error

	// Quit requests cancellation of the running job. Safe to call multiple times and from any goroutine.
	Quit()

	// Release stops the orchestrator and releases the renderer if the engine created it.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates an engine for scene. Unless a device is injected a headless WebGPU renderer is
// created from the config. Bake results already on disk are attached to the scene.
//
// Parameters:
//   - s: the scene to bake
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: if the renderer cannot be created or existing bake data cannot be read
func NewEngine(s scene.Scene, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:         config.Default(),
		scene:       s,
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.device == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU,
			renderer.WithForceSoftwareRenderer(e.cfg.ForceFallbackAdapter),
			renderer.WithShaderValidation(e.cfg.ValidateShaders),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		e.renderer, e.device, e.ownsRenderer = r, r, true
	}

	if dir, err := e.BakeDir(); err == nil {
		if err := s.LoadBakedData(dir); err != nil {
			e.releaseRenderer()
			return nil, err
		}
	}

	var orchestratorOpts []gi.OrchestratorBuilderOption
	if e.progress != nil {
		orchestratorOpts = append(orchestratorOpts, gi.WithBakeProgress(e.progress))
	}
	e.orchestrator = gi.NewOrchestrator(e.device, s, e.cfg, orchestratorOpts...)
	return e, nil
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Orchestrator() gi.Orchestrator {
	return e.orchestrator
}

func (e *engine) BakeDir() (string, error) {
	path := e.scene.Path()
	if path == "" {
		return "", gi.ErrUnsavedScene
	}
	root, err := e.cfg.ResolveOutputDir(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	return filepath.Join(root, e.scene.Name()), nil
}

func (e *engine) Run(ctx context.Context, job Job) error {
	select {
	case <-e.quitChannel:
		return context.Canceled
	default:
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	result := e.start(ctx, job)
	quit := e.quitChannel
	for {
		select {
		case err := <-result:
			return err
		case <-quit:
			common.Logger().Info("quit requested, cancelling bake", "job", job)
			// The job may not have started its session yet, so StopBaking alone can miss it.
			cancel()
			e.orchestrator.StopBaking()
			quit = nil
		}
	}
}

// start launches job and returns the channel its result arrives on.
func (e *engine) start(ctx context.Context, job Job) <-chan error {
	if job == JobGenerateLighting {
		return e.orchestrator.GenerateLightingAsync(ctx)
	}
	result := make(chan error, 1)
	go func() {
		defer close(result)
		switch job {
		case JobReflectionProbes:
			result <- e.orchestrator.BakeAllReflectionProbes(ctx)
		case JobClear:
			result <- e.orchestrator.ClearBakedData()
		default:
			result <- errors.New("unknown job " + job.String())
		}
	}()
	return result
}

// Quit signals the running job to stop.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
	e.orchestrator.StopBaking()
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		e.orchestrator.Close()
		e.releaseRenderer()
	})
}

func (e *engine) releaseRenderer() {
	if e.ownsRenderer && e.renderer != nil {
		e.renderer.Release()
	}
}
