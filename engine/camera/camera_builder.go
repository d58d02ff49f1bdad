package camera

import "github.com/Carmen-Shannon/oxy-gi/common"

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithType sets the camera type.
//
// Parameters:
//   - t: the camera type
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera type
func WithType(t CameraType) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.cameraType = t
	}
}

// WithEnabled sets whether the camera takes part in regular scene rendering.
//
// Parameters:
//   - enabled: the enabled flag
//
// Returns:
//   - CameraBuilderOption: a function that sets the enabled flag
func WithEnabled(enabled bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.enabled = enabled
	}
}

// WithPosition sets the capture position.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(position common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// NewCaptureCamera creates the disabled reflection camera used by a bake session.
//
// Parameters:
//   - position: the initial capture position
//
// Returns:
//   - Camera: the capture camera
func NewCaptureCamera(position common.Vec3) Camera {
	return NewCamera(WithType(CameraTypeReflection), WithEnabled(false), WithPosition(position))
}
