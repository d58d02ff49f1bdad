package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithBaseDir sets the directory relative model paths resolve against.
//
// Parameters:
//   - dir: the base directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithBaseDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.baseDir = dir
	}
}
