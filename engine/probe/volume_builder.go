package probe

// VolumeBuilderOption is a functional option for configuring a Volume.
type VolumeBuilderOption func(*volume)

// WithResolution sets the cube face size used to capture the volume's probes.
// Defaults to config.DefaultCubeResolution.
//
// Parameters:
//   - resolution: face size in texels
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithResolution(resolution uint32) VolumeBuilderOption {
	return func(v *volume) {
		if resolution > 0 {
			v.resolution = resolution
		}
	}
}

// WithAsset attaches a backing asset.
//
// Parameters:
//   - asset: the asset
//
// Returns:
//   - VolumeBuilderOption: option function to apply
func WithAsset(asset *Asset) VolumeBuilderOption {
	return func(v *volume) {
		v.asset = asset
	}
}
