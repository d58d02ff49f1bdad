package gi

// BakerBuilderOption is a functional option for configuring a Baker.
type BakerBuilderOption func(*baker)

// WithResolution sets the cube face size of the G-buffers. Defaults to config.DefaultCubeResolution.
//
// Parameters:
//   - resolution: face size in texels
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithResolution(resolution uint32) BakerBuilderOption {
	return func(b *baker) {
		if resolution > 0 {
			b.resolution = resolution
		}
	}
}

// WithSHSamplesPerThread sets the Monte Carlo samples each projection thread takes.
//
// Parameters:
//   - n: samples per thread
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithSHSamplesPerThread(n uint32) BakerBuilderOption {
	return func(b *baker) {
		if n > 0 {
			b.samplesPerThread = n
		}
	}
}

// WithProgressFunc installs the progress callback.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithProgressFunc(fn ProgressFunc) BakerBuilderOption {
	return func(b *baker) {
		b.progress = fn
	}
}

// WithSeedFunc replaces the kernel seed source.
//
// Parameters:
//   - fn: returns seeds in [0, 1)
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithSeedFunc(fn SeedFunc) BakerBuilderOption {
	return func(b *baker) {
		b.seed = fn
	}
}
