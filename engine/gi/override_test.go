package gi_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideRestoresSharedMaterials(t *testing.T) {
	shared := material.NewMaterial(material.WithPipelineKey(pipeline.KeyLit))
	custom := material.NewMaterial(material.WithPipelineKey("custom"))
	objects := []game_object.GameObject{
		game_object.NewGameObject(game_object.WithMaterials(shared)),
		game_object.NewGameObject(game_object.WithMaterials(shared, custom)),
		game_object.NewGameObject(),
	}

	scope := gi.NewMaterialOverrideScope()
	restore, err := scope.Acquire(objects, pipeline.KeyCapture)
	require.NoError(t, err)
	assert.True(t, scope.Active())
	assert.Equal(t, pipeline.KeyCapture, shared.PipelineKey())
	assert.Equal(t, pipeline.KeyCapture, custom.PipelineKey())

	// recording again while applied must not capture the override as the original
	scope.Record(objects)

	restore()
	assert.False(t, scope.Active())
	assert.Equal(t, pipeline.KeyLit, shared.PipelineKey())
	assert.Equal(t, "custom", custom.PipelineKey())
}

func TestOverrideSecondApplyFails(t *testing.T) {
	mat := material.NewMaterial(material.WithPipelineKey(pipeline.KeyLit))
	objects := []game_object.GameObject{game_object.NewGameObject(game_object.WithMaterials(mat))}

	scope := gi.NewMaterialOverrideScope()
	scope.Record(objects)
	require.NoError(t, scope.Apply(pipeline.KeyCapture))
	assert.ErrorIs(t, scope.Apply("other"), gi.ErrOverrideActive)
	_, err := scope.Acquire(objects, "other")
	assert.ErrorIs(t, err, gi.ErrOverrideActive)
	assert.Equal(t, pipeline.KeyCapture, mat.PipelineKey())

	scope.Restore()
	assert.Equal(t, pipeline.KeyLit, mat.PipelineKey())

	// the scope is reusable after Restore
	restore, err := scope.Acquire(objects, "other")
	require.NoError(t, err)
	assert.Equal(t, "other", mat.PipelineKey())
	restore()
	assert.Equal(t, pipeline.KeyLit, mat.PipelineKey())
}

func TestRestoreWithoutApplyIsHarmless(t *testing.T) {
	scope := gi.NewMaterialOverrideScope()
	scope.Restore()
	assert.False(t, scope.Active())
}
