package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()
	assert.True(t, obj.Enabled())
	assert.False(t, obj.ContributesGI())
	assert.Equal(t, common.Vec3{1, 1, 1}, obj.Scale())
	assert.Nil(t, obj.Material())
	assert.NotZero(t, obj.ID())
}

func TestUniformUsesTransformAndPrimaryMaterial(t *testing.T) {
	red := material.NewMaterial(material.WithBaseColor([4]float32{1, 0, 0, 1}))
	blue := material.NewMaterial(material.WithBaseColor([4]float32{0, 0, 1, 1}))
	obj := NewGameObject(
		WithName("crate"),
		WithModel(model.NewBox()),
		WithMaterials(red, blue),
		WithContributesGI(true),
		WithTransform(common.Vec3{1, 2, 3}, common.Vec3{}, common.Vec3{2, 2, 2}),
	)

	u := obj.Uniform()
	assert.Equal(t, [4]float32{1, 0, 0, 1}, u.Albedo)
	assert.Equal(t, float32(2), u.Model[0])
	assert.Equal(t, float32(3), u.Model[14])
	assert.Len(t, u.Marshal(), 80)
	assert.Equal(t, "crate Object", obj.ObjectProvider().Label())
}
