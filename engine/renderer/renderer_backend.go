package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the headless WebGPU backend.
	BackendTypeWGPU RendererBackendType = iota
)

// CaptureMode is the global toggle read by the capture shader to decide which
// surface attribute it writes into the cube target.
type CaptureMode uint32

const (
	// CaptureModeNone renders without a G-buffer override.
	CaptureModeNone CaptureMode = iota
	// CaptureModePosition writes world-space position with alpha 1 where geometry was hit.
	CaptureModePosition
	// CaptureModeNormal writes the world-space surface normal.
	CaptureModeNormal
	// CaptureModeAlbedo writes the material base color.
	CaptureModeAlbedo
)

// String returns the lowercase name of the capture mode.
func (m CaptureMode) String() string {
	switch m {
	case CaptureModePosition:
		return "position"
	case CaptureModeNormal:
		return "normal"
	case CaptureModeAlbedo:
		return "albedo"
	default:
		return "none"
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
