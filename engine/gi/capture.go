package gi

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
)

// CaptureState is the lifecycle state of a CaptureSession.
type CaptureState int

const (
	// CaptureStateUninitialized means the cube targets have not been created.
	CaptureStateUninitialized CaptureState = iota
	// CaptureStateInitialized means the cube targets exist and captures run.
	CaptureStateInitialized
	// CaptureStateDisposed means the targets were released; captures are no-ops.
	CaptureStateDisposed
)

func (s CaptureState) String() string {
	switch s {
	case CaptureStateUninitialized:
		return "uninitialized"
	case CaptureStateInitialized:
		return "initialized"
	case CaptureStateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("CaptureState(%d)", int(s))
}

// G-buffer slots, also the binding order of the surfel sampling kernel.
const (
	gbufferPosition = iota
	gbufferNormal
	gbufferAlbedo
	gbufferCount
)

var gbufferModes = [gbufferCount]renderer.CaptureMode{
	gbufferPosition: renderer.CaptureModePosition,
	gbufferNormal:   renderer.CaptureModeNormal,
	gbufferAlbedo:   renderer.CaptureModeAlbedo,
}

var gbufferLabels = [gbufferCount]string{
	gbufferPosition: "gi_position_cube",
	gbufferNormal:   "gi_normal_cube",
	gbufferAlbedo:   "gi_albedo_cube",
}

// CaptureSession owns the three cube G-buffers of one Baker and renders the scene into them.
type CaptureSession struct {
	mu      sync.Mutex
	device  Device
	scene   Scene
	state   CaptureState
	targets [gbufferCount]renderer.CubeTarget
}

// NewCaptureSession creates an uninitialized session.
//
// Parameters:
//   - device: the GPU device
//   - scene: the scene to capture
//
// Returns:
//   - *CaptureSession: the session
func NewCaptureSession(device Device, scene Scene) *CaptureSession {
	return &CaptureSession{device: device, scene: scene}
}

// Init creates the position, normal and albedo cube targets at resolution.
// On failure every target created so far is released and the session stays uninitialized.
//
// Parameters:
//   - resolution: cube face size in texels
//
// Returns:
//   - error: if the session is not uninitialized or a target cannot be created
func (c *CaptureSession) Init(resolution uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureStateUninitialized {
		return fmt.Errorf("capture session is %s", c.state)
	}

	var targets [gbufferCount]renderer.CubeTarget
	for i := range targets {
		t, err := c.device.CreateCubeTarget(gbufferLabels[i], resolution)
		if err != nil {
			for _, created := range targets[:i] {
				created.Release()
			}
			return fmt.Errorf("failed to create %s: %w", gbufferLabels[i], err)
		}
		targets[i] = t
	}
	c.targets = targets
	c.state = CaptureStateInitialized
	common.Logger().Debug("capture session initialized", "resolution", resolution)
	return nil
}

// State returns the lifecycle state.
//
// Returns:
//   - CaptureState: the state
func (c *CaptureSession) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether captures will run.
//
// Returns:
//   - bool: true when initialized and not disposed
func (c *CaptureSession) Ready() bool {
	return c.State() == CaptureStateInitialized
}

// Targets returns the position, normal and albedo targets in that order.
//
// Returns:
//   - []renderer.CubeTarget: the targets, nil unless initialized
func (c *CaptureSession) Targets() []renderer.CubeTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureStateInitialized {
		return nil
	}
	return []renderer.CubeTarget{c.targets[gbufferPosition], c.targets[gbufferNormal], c.targets[gbufferAlbedo]}
}

// PositionTarget returns the world-position G-buffer.
//
// Returns:
//   - renderer.CubeTarget: the target, nil unless initialized
func (c *CaptureSession) PositionTarget() renderer.CubeTarget {
	return c.target(gbufferPosition)
}

// AlbedoTarget returns the albedo G-buffer, which also receives lit captures.
//
// Returns:
//   - renderer.CubeTarget: the target, nil unless initialized
func (c *CaptureSession) AlbedoTarget() renderer.CubeTarget {
	return c.target(gbufferAlbedo)
}

func (c *CaptureSession) target(slot int) renderer.CubeTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureStateInitialized {
		return nil
	}
	return c.targets[slot]
}

// CaptureGBuffers renders the GI contributors into the position, normal and albedo targets from position.
// The capture-mode toggle is cleared after every pass, including failed ones.
//
// Parameters:
//   - cam: the capture camera, moved to position
//   - position: the capture position
//
// Returns:
//   - error: if a render fails; nil when the session is not ready
func (c *CaptureSession) CaptureGBuffers(cam camera.Camera, position common.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureStateInitialized {
		common.Logger().Warn("g-buffer capture skipped", "state", c.state)
		return nil
	}
	cam.SetPosition(position)
	scene := renderer.CubeScene{Draws: drawItems(c.scene.GIContributors())}
	for slot, mode := range gbufferModes {
		if err := c.renderMode(c.targets[slot], cam, scene, mode); err != nil {
			return err
		}
	}
	c.device.Flush()
	return nil
}

func (c *CaptureSession) renderMode(target renderer.CubeTarget, cam camera.Camera, scene renderer.CubeScene, mode renderer.CaptureMode) error {
	c.device.SetCaptureMode(mode)
	defer c.device.SetCaptureMode(renderer.CaptureModeNone)
	if err := c.device.RenderCube(target, cam, scene); err != nil {
		return fmt.Errorf("failed to capture %s: %w", mode, err)
	}
	return nil
}

// CaptureLighting renders the lit scene into the albedo target from position.
//
// Parameters:
//   - cam: the capture camera, moved to position
//   - position: the capture position
//
// Returns:
//   - error: if the render fails; nil when the session is not ready
func (c *CaptureSession) CaptureLighting(cam camera.Camera, position common.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureStateInitialized {
		common.Logger().Warn("lighting capture skipped", "state", c.state)
		return nil
	}
	cam.SetPosition(position)
	scene := renderer.CubeScene{
		Draws:    drawItems(c.scene.Objects()),
		Lighting: c.scene.LightingUniform(),
	}
	if err := c.device.RenderCube(c.targets[gbufferAlbedo], cam, scene); err != nil {
		return fmt.Errorf("failed to capture lighting: %w", err)
	}
	c.device.Flush()
	return nil
}

// Dispose releases the targets, waiting for a capture in progress to finish. Safe to call
// more than once.
func (c *CaptureSession) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CaptureStateDisposed {
		return
	}
	for i, t := range c.targets {
		if t != nil {
			t.Release()
			c.targets[i] = nil
		}
	}
	c.state = CaptureStateDisposed
	common.Logger().Debug("capture session disposed")
}

// drawItems turns enabled objects with a model into draws, using each object's primary material pipeline.
func drawItems(objects []game_object.GameObject) []renderer.DrawItem {
	items := make([]renderer.DrawItem, 0, len(objects))
	for _, obj := range objects {
		if !obj.Enabled() || obj.Model() == nil {
			continue
		}
		key := pipeline.KeyLit
		if mat := obj.Material(); mat != nil {
			key = mat.PipelineKey()
		}
		u := obj.Uniform()
		items = append(items, renderer.DrawItem{
			PipelineKey: key,
			Mesh:        obj.Model(),
			Object:      obj.ObjectProvider(),
			Uniform:     u.Marshal(),
		})
	}
	return items
}
