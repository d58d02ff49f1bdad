package shader

import (
	"embed"
	"fmt"
)

// Embedded asset names.
const (
	// AssetCapture renders world position, normal or albedo depending on the capture mode.
	AssetCapture = "capture.wgsl"
	// AssetLit renders Lambert-lit surfaces for reflection probe captures.
	AssetLit = "lit.wgsl"
	// AssetSurfelSample is the surfel sampling kernel.
	AssetSurfelSample = "surfel_sample.wgsl"
	// AssetSHProject is the SH projection kernel.
	AssetSHProject = "sh_project.wgsl"
)

//go:embed assets/*.wgsl
var assets embed.FS

// AssetSource returns the WGSL source of an embedded asset.
//
// Parameters:
//   - name: the asset file name
//
// Returns:
//   - string: the WGSL source
//   - error: an error if the asset does not exist
func AssetSource(name string) (string, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read shader asset %q: %w", name, err)
	}
	return string(data), nil
}

// AssetNames lists every embedded WGSL asset.
//
// Returns:
//   - []string: asset file names
func AssetNames() []string {
	return []string{AssetCapture, AssetLit, AssetSurfelSample, AssetSHProject}
}
