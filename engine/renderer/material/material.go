package material

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
)

// materialCount is an atomic counter used to name materials created without WithName.
var materialCount atomic.Uint64

type material struct {
	name        string
	baseColor   [4]float32
	pipelineKey string
}

// Material describes how a surface is shaded. The pipeline key selects the shading program the
// renderer draws the surface with; it is the value swapped out while probe volumes are captured.
// Materials are shared by reference between game objects.
type Material interface {
	// Name returns the material's name.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// BaseColor returns the RGBA base color (albedo) of the material.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColor() [4]float32

	// PipelineKey returns the key of the render pipeline used to draw this material.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the key of the render pipeline used to draw this material.
	//
	// Parameters:
	//   - key: the pipeline key
	SetPipelineKey(key string)

	// SetBaseColor sets the RGBA base color.
	//
	// Parameters:
	//   - color: the base color
	SetBaseColor(color [4]float32)
}

var _ Material = &material{}

// NewMaterial creates a white material drawn with the lit pipeline, then applies the options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:   [4]float32{1, 1, 1, 1},
		pipelineKey: pipeline.KeyLit,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.name == "" {
		m.name = "Material " + itoa(materialCount.Add(1))
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBaseColor(color [4]float32) {
	m.baseColor = color
}
