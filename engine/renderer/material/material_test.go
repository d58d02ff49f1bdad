package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, pipeline.KeyLit, m.PipelineKey())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.NotEmpty(t, m.Name())
}

func TestMaterialOptions(t *testing.T) {
	m := NewMaterial(WithName("brick"), WithBaseColor([4]float32{0.6, 0.2, 0.1, 1}), WithPipelineKey("custom"))
	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, "custom", m.PipelineKey())

	m.SetPipelineKey(pipeline.KeyCapture)
	assert.Equal(t, pipeline.KeyCapture, m.PipelineKey())
}
