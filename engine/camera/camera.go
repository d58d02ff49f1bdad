package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

// CameraType distinguishes cameras that render to the user's view from cameras that only
// feed probe captures.
type CameraType int

const (
	// CameraTypeGame is a regular scene camera.
	CameraTypeGame CameraType = iota
	// CameraTypeReflection is an off-screen camera used to render cube captures.
	CameraTypeReflection
)

type cameraImpl struct {
	mu *sync.Mutex

	cameraType CameraType
	enabled    bool
	position   common.Vec3
	near       float32
	far        float32

	faceProviders [common.CubeFaceCount]bind_group_provider.BindGroupProvider
}

// Camera is a cube capture camera. It renders all six faces of a cube target from a single
// position with a 90 degree field of view, one uniform buffer per face.
type Camera interface {
	// Type returns the camera type.
	//
	// Returns:
	//   - CameraType: the camera type
	Type() CameraType

	// Enabled reports whether the camera takes part in regular scene rendering.
	// Capture cameras are disabled so they are only rendered explicitly.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the world-space capture position.
	//
	// Returns:
	//   - common.Vec3: the camera position
	Position() common.Vec3

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// FaceViewProjection returns the view-projection matrix used to render one cube face.
	//
	// Parameters:
	//   - face: the cube face
	//
	// Returns:
	//   - [16]float32: the column-major view-projection matrix
	FaceViewProjection(face common.CubeFace) [16]float32

	// FaceUniform builds the uniform data for one cube face.
	//
	// Parameters:
	//   - face: the cube face
	//   - mode: the capture mode written into the uniform
	//
	// Returns:
	//   - GPUCameraUniform: the uniform data ready to Marshal
	FaceUniform(face common.CubeFace, mode uint32) GPUCameraUniform

	// FaceProvider returns the bind group provider holding the uniform buffer for one face.
	//
	// Parameters:
	//   - face: the cube face
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider for that face
	FaceProvider(face common.CubeFace) bind_group_provider.BindGroupProvider

	// Release releases the GPU resources held by the face providers.
	Release()

	SetEnabled(enabled bool)
	SetPosition(position common.Vec3)
	SetNear(near float32)
	SetFar(far float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a capture camera at the origin with a 0.05 to 1000 depth range.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	id := strconv.FormatUint(cameraCount.Add(1), 10)
	c := &cameraImpl{
		mu:      &sync.Mutex{},
		enabled: true,
		near:    0.05,
		far:     1000.0,
	}
	for face := range c.faceProviders {
		c.faceProviders[face] = bind_group_provider.NewBindGroupProvider(
			"camera_" + id + "_face_" + strconv.Itoa(face),
		)
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Type() CameraType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraType
}

func (c *cameraImpl) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) FaceViewProjection(face common.CubeFace) [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var vp [16]float32
	common.CubeFaceViewProjection(vp[:], c.position, face, c.near, c.far)
	return vp
}

func (c *cameraImpl) FaceUniform(face common.CubeFace, mode uint32) GPUCameraUniform {
	vp := c.FaceViewProjection(face)
	return GPUCameraUniform{
		ViewProj:       vp,
		CameraPosition: c.Position(),
		Mode:           mode,
	}
}

func (c *cameraImpl) FaceProvider(face common.CubeFace) bind_group_provider.BindGroupProvider {
	return c.faceProviders[face]
}

func (c *cameraImpl) Release() {
	for _, p := range c.faceProviders {
		p.Release()
	}
}

func (c *cameraImpl) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func (c *cameraImpl) SetPosition(position common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}
