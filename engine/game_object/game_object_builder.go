package game_object

import (
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
)

// GameObjectBuilderOption is a functional option applied to a game object during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the object ID instead of the next counter value.
//
// Parameters:
//   - id: the object ID
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.id = id
	}
}

// WithName sets the object name.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the name
func WithName(name string) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.name = name
	}
}

// WithModel sets the object's mesh.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.mdl = m
	}
}

// WithMaterials sets the object's materials, primary first.
//
// Parameters:
//   - materials: the materials
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the materials
func WithMaterials(materials ...material.Material) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.materials = materials
	}
}

// WithContributesGI marks the object as static geometry included in GI bakes.
//
// Parameters:
//   - contributes: true to include the object in bakes
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the flag
func WithContributesGI(contributes bool) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.contributesGI = contributes
	}
}

// WithEnabled sets whether the object is rendered.
//
// Parameters:
//   - enabled: the enabled flag
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the flag
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.enabled.Store(enabled)
	}
}

// WithTransform sets position, Euler rotation (radians) and scale.
//
// Parameters:
//   - position: world-space position
//   - rotation: Euler rotation in radians
//   - scale: per-axis scale
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the transform
func WithTransform(position, rotation, scale common.Vec3) GameObjectBuilderOption {
	return func(o *gameObject) {
		o.position = position
		o.rotation = rotation
		o.scale = scale
	}
}
