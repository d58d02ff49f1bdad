package game_object

import (
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
)

// objectCount is an atomic counter used to assign IDs to game objects created without WithID.
var objectCount atomic.Uint64

type gameObject struct {
	id            uint64
	name          string
	enabled       atomic.Bool
	contributesGI bool
	mdl           model.Model
	materials     []material.Material

	position common.Vec3
	rotation common.Vec3
	scale    common.Vec3

	objectProvider bind_group_provider.BindGroupProvider
}

// GameObject is a placed mesh in a scene. It owns its transform and references its model and
// materials; materials may be shared with other game objects.
type GameObject interface {
	// ID returns the object's unique ID.
	//
	// Returns:
	//   - uint64: the ID
	ID() uint64

	// Name returns the object's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled reports whether the object is rendered.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// ContributesGI reports whether the object is static geometry that takes part in
	// global illumination bakes.
	//
	// Returns:
	//   - bool: true if the object contributes to GI
	ContributesGI() bool

	// Model returns the object's mesh.
	//
	// Returns:
	//   - model.Model: the model, or nil
	Model() model.Model

	// Materials returns every material referenced by the object, primary first.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// Material returns the primary material used to draw the mesh.
	//
	// Returns:
	//   - material.Material: the primary material, or nil if the object has none
	Material() material.Material

	// Position returns the world-space position.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - common.Vec3: the rotation
	Rotation() common.Vec3

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - common.Vec3: the scale
	Scale() common.Vec3

	// ModelMatrix builds the column-major model matrix from the transform.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// Uniform builds the per-object uniform from the transform and primary material.
	//
	// Returns:
	//   - GPUObjectUniform: the uniform data ready to Marshal
	Uniform() GPUObjectUniform

	// ObjectProvider returns the provider holding the per-object uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	ObjectProvider() bind_group_provider.BindGroupProvider

	SetEnabled(enabled bool)
	SetContributesGI(contributes bool)
	SetModel(m model.Model)
	SetMaterials(materials ...material.Material)
	SetPosition(position common.Vec3)
	SetRotation(rotation common.Vec3)
	SetScale(scale common.Vec3)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled game object with unit scale, then applies the options.
//
// Parameters:
//   - options: variadic list of GameObjectBuilderOption functions
//
// Returns:
//   - GameObject: the new game object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:    objectCount.Add(1),
		scale: common.Vec3{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.name == "" {
		obj.name = "Object " + strconv.FormatUint(obj.id, 10)
	}
	obj.objectProvider = bind_group_provider.NewBindGroupProvider(obj.name + " Object")
	return obj
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) Name() string {
	return o.name
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) ContributesGI() bool {
	return o.contributesGI
}

func (o *gameObject) Model() model.Model {
	return o.mdl
}

func (o *gameObject) Materials() []material.Material {
	return o.materials
}

func (o *gameObject) Material() material.Material {
	if len(o.materials) == 0 {
		return nil
	}
	return o.materials[0]
}

func (o *gameObject) Position() common.Vec3 {
	return o.position
}

func (o *gameObject) Rotation() common.Vec3 {
	return o.rotation
}

func (o *gameObject) Scale() common.Vec3 {
	return o.scale
}

func (o *gameObject) ModelMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:], o.position, o.rotation, o.scale)
	return m
}

func (o *gameObject) Uniform() GPUObjectUniform {
	u := GPUObjectUniform{
		Model:  o.ModelMatrix(),
		Albedo: [4]float32{1, 1, 1, 1},
	}
	if mat := o.Material(); mat != nil {
		u.Albedo = mat.BaseColor()
	}
	return u
}

func (o *gameObject) ObjectProvider() bind_group_provider.BindGroupProvider {
	return o.objectProvider
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) SetContributesGI(contributes bool) {
	o.contributesGI = contributes
}

func (o *gameObject) SetModel(m model.Model) {
	o.mdl = m
}

func (o *gameObject) SetMaterials(materials ...material.Material) {
	o.materials = materials
}

func (o *gameObject) SetPosition(position common.Vec3) {
	o.position = position
}

func (o *gameObject) SetRotation(rotation common.Vec3) {
	o.rotation = rotation
}

func (o *gameObject) SetScale(scale common.Vec3) {
	o.scale = scale
}
