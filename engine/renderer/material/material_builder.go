package material

import "strconv"

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material name.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the RGBA base color.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithPipelineKey sets the render pipeline key used to draw this material.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
