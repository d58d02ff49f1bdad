package renderer

import (
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type cubeTarget struct {
	label      string
	resolution uint32
	format     wgpu.TextureFormat

	texture   *wgpu.Texture
	faceViews [common.CubeFaceCount]*wgpu.TextureView
	arrayView *wgpu.TextureView

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	released bool
}

// CubeTarget is a six-layer color texture rendered one face at a time and sampled by the
// compute kernels as a 2D array. Each target carries its own depth buffer.
type CubeTarget interface {
	// Label returns the debug label of the target.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Resolution returns the width and height of every face in texels.
	//
	// Returns:
	//   - uint32: the face size
	Resolution() uint32

	// Format returns the color format of the target.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color format
	Format() wgpu.TextureFormat

	// FaceView returns the render attachment view of one face.
	//
	// Parameters:
	//   - face: the cube face
	//
	// Returns:
	//   - *wgpu.TextureView: the single-layer view, nil after Release
	FaceView(face common.CubeFace) *wgpu.TextureView

	// ArrayView returns the 2D-array view over all six faces, used as a kernel input.
	//
	// Returns:
	//   - *wgpu.TextureView: the array view, nil after Release
	ArrayView() *wgpu.TextureView

	// DepthView returns the depth attachment shared by every face pass.
	//
	// Returns:
	//   - *wgpu.TextureView: the depth view, nil after Release
	DepthView() *wgpu.TextureView

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once the GPU textures are gone
	Released() bool

	// Release releases the textures and views. Calling it more than once is a no-op.
	Release()
}

var _ CubeTarget = &cubeTarget{}

func (c *cubeTarget) Label() string {
	return c.label
}

func (c *cubeTarget) Resolution() uint32 {
	return c.resolution
}

func (c *cubeTarget) Format() wgpu.TextureFormat {
	return c.format
}

func (c *cubeTarget) FaceView(face common.CubeFace) *wgpu.TextureView {
	return c.faceViews[face]
}

func (c *cubeTarget) ArrayView() *wgpu.TextureView {
	return c.arrayView
}

func (c *cubeTarget) DepthView() *wgpu.TextureView {
	return c.depthView
}

func (c *cubeTarget) Released() bool {
	return c.released
}

func (c *cubeTarget) Release() {
	if c.released {
		return
	}
	c.released = true
	for i, v := range c.faceViews {
		if v != nil {
			v.Release()
			c.faceViews[i] = nil
		}
	}
	if c.arrayView != nil {
		c.arrayView.Release()
		c.arrayView = nil
	}
	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.texture != nil {
		c.texture.Release()
		c.texture = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
	common.Logger().Debug("cube target released", "label", c.label)
}
