package gi

import (
	"context"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/camera"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer"
)

// ProgressFunc receives bake progress. progress is in [0, 1].
type ProgressFunc func(status string, progress float32)

// ProbeBaker is the capability a BakePlan uses to sample the scene. It is only valid for the duration of Bake.
type ProbeBaker interface {
	// SampleSurfels captures the G-buffers at a position and draws RayNum stochastic surfels from them.
	//
	// Parameters:
	//   - position: the probe position in world space
	//
	// Returns:
	//   - [RayNum]Surfel: the sampled surfels in sampler-thread order
	//   - error: if capture, dispatch or readback fails
	SampleSurfels(position common.Vec3) ([RayNum]Surfel, error)

	// SampleRadiance projects the sky visibility seen from a position onto SH.
	// The G-buffers are captured again only if the last capture was taken elsewhere.
	//
	// Parameters:
	//   - position: the probe position in world space
	//
	// Returns:
	//   - SHCoefficients: the projected sky visibility, equal in all channels
	//   - error: if capture, dispatch or readback fails
	SampleRadiance(position common.Vec3) (SHCoefficients, error)

	// ReportProgress forwards progress to the baker's progress callback, if any.
	//
	// Parameters:
	//   - status: a short human-readable status
	//   - progress: completion in [0, 1]
	ReportProgress(status string, progress float32)
}

// BakePlan is a set of probes that knows how to bake itself through a ProbeBaker.
type BakePlan interface {
	// Bake samples every probe of the plan in order, checking ctx between probes.
	// Results replace the plan's data only when every probe succeeded.
	//
	// Parameters:
	//   - ctx: cancels the bake between probes
	//   - baker: the sampling capability
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, or the first sampling error
	Bake(ctx context.Context, baker ProbeBaker) error
}

// Volume is a probe volume as seen by the orchestrator.
type Volume interface {
	BakePlan

	// Name returns the volume name, used to name its asset.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Resolution returns the cube face size used when capturing this volume.
	//
	// Returns:
	//   - uint32: the face size in texels
	Resolution() uint32

	// HasAsset reports whether the volume is backed by an on-disk asset.
	//
	// Returns:
	//   - bool: true if an asset is attached
	HasAsset() bool

	// CreateAsset attaches a new asset at path and writes it out.
	//
	// Parameters:
	//   - path: the asset header path (.toml)
	//
	// Returns:
	//   - error: if the asset cannot be written
	CreateAsset(path string) error

	// Clear drops the baked data held in memory.
	Clear()

	// Reload replaces the in-memory data with the contents of the asset.
	//
	// Returns:
	//   - error: if there is no asset or it cannot be read
	Reload() error

	// Persist writes the in-memory data to the asset.
	//
	// Returns:
	//   - error: if there is no asset or it cannot be written
	Persist() error
}

// ReflectionProbe stores the SH lighting baked at one position.
type ReflectionProbe interface {
	// Name returns the probe name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Position returns the capture position in world space.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// Coefficients returns the baked SH lighting.
	//
	// Returns:
	//   - SHCoefficients: the coefficients, zero if never baked
	Coefficients() SHCoefficients

	// Baked reports whether coefficients have been set since the last clear.
	//
	// Returns:
	//   - bool: true if baked
	Baked() bool

	SetCoefficients(sh SHCoefficients)
	ClearCoefficients()
}

// Scene is the view of a scene the bake pipeline needs.
type Scene interface {
	// Name returns the scene name, used as the bake output subdirectory.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Path returns the file the scene was loaded from or saved to.
	//
	// Returns:
	//   - string: the path, empty if the scene has never been saved
	Path() string

	// Objects returns every object in the scene.
	//
	// Returns:
	//   - []game_object.GameObject: the objects in insertion order
	Objects() []game_object.GameObject

	// GIContributors returns the enabled objects flagged to contribute GI.
	//
	// Returns:
	//   - []game_object.GameObject: the contributing objects
	GIContributors() []game_object.GameObject

	// LightingUniform returns the packed lit-pass uniform for the scene's lights and ambient color.
	//
	// Returns:
	//   - []byte: the uniform bytes
	LightingUniform() []byte

	// ProbeVolume returns the scene's probe volume.
	//
	// Returns:
	//   - Volume: the volume, or nil if the scene has none
	ProbeVolume() Volume

	// ReflectionProbes returns the scene's reflection probes.
	//
	// Returns:
	//   - []ReflectionProbe: the probes
	ReflectionProbes() []ReflectionProbe

	// PersistReflectionProbes writes the SH of every reflection probe into dir.
	//
	// Parameters:
	//   - dir: the scene's bake output directory
	//
	// Returns:
	//   - error: if the file cannot be written
	PersistReflectionProbes(dir string) error
}

// Device is the GPU surface the bake pipeline drives. renderer.Renderer implements it.
type Device interface {
	// CreateCubeTarget allocates a six-layer capture target with depth.
	//
	// Parameters:
	//   - label: debug label
	//   - resolution: face size in texels
	//
	// Returns:
	//   - renderer.CubeTarget: the target
	//   - error: if allocation fails
	CreateCubeTarget(label string, resolution uint32) (renderer.CubeTarget, error)

	// SetCaptureMode sets the global G-buffer capture toggle read by capture draws.
	//
	// Parameters:
	//   - mode: the mode, renderer.CaptureModeNone to clear it
	SetCaptureMode(mode renderer.CaptureMode)

	// RenderCube renders all six faces of target from cam, clearing to transparent black.
	//
	// Parameters:
	//   - target: the cube target
	//   - cam: the capture camera
	//   - scene: the draws and lighting
	//
	// Returns:
	//   - error: if encoding or submission fails
	RenderCube(target renderer.CubeTarget, cam camera.Camera, scene renderer.CubeScene) error

	// CreateStorageBuffer allocates a storage buffer that can be read back.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes
	//
	// Returns:
	//   - renderer.GPUBuffer: the buffer
	//   - error: if allocation fails
	CreateStorageBuffer(label string, size uint64) (renderer.GPUBuffer, error)

	// DispatchCompute runs a registered compute kernel once.
	//
	// Parameters:
	//   - pipelineKey: the kernel
	//   - bindings: params, input cubes and output buffer
	//   - workGroupCount: workgroups per dimension
	//
	// Returns:
	//   - error: if the kernel is missing or submission fails
	DispatchCompute(pipelineKey string, bindings renderer.ComputeBindings, workGroupCount [3]uint32) error

	// ReadBuffer copies a storage buffer back to the CPU, blocking until done.
	//
	// Parameters:
	//   - buf: the buffer to read
	//
	// Returns:
	//   - []byte: exactly buf.Size() bytes
	//   - error: if mapping fails
	ReadBuffer(buf renderer.GPUBuffer) ([]byte, error)

	// Flush blocks until the device is idle.
	Flush()
}

var _ Device = renderer.Renderer(nil)
