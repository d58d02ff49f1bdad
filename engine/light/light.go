package light

import "github.com/Carmen-Shannon/oxy-gi/common"

// LightType identifies how a light emits.
type LightType int

const (
	// LightTypeDirectional is an infinitely distant light shining along Direction.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in all directions from Position with a linear falloff to Range.
	LightTypePoint
)

type lightImpl struct {
	lightType  LightType
	position   common.Vec3
	direction  common.Vec3
	color      common.Vec3
	intensity  float32
	lightRange float32
	enabled    bool
}

// Light defines a scene light evaluated by the lit capture pass.
type Light interface {
	// Type returns the light type.
	//
	// Returns:
	//   - LightType: directional or point
	Type() LightType

	// Position returns the world-space position (point lights).
	//
	// Returns:
	//   - common.Vec3: the light position
	Position() common.Vec3

	// Direction returns the normalized direction the light travels (directional lights).
	//
	// Returns:
	//   - common.Vec3: the light direction
	Direction() common.Vec3

	// Color returns the RGB color.
	//
	// Returns:
	//   - common.Vec3: the light color
	Color() common.Vec3

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Range returns the distance at which point light attenuation reaches zero.
	//
	// Returns:
	//   - float32: the range
	Range() float32

	// Enabled reports whether the light contributes to captures.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// GPU returns the GPU-aligned representation of this light.
	//
	// Returns:
	//   - GPULight: the light ready to be marshaled
	GPU() GPULight

	SetPosition(position common.Vec3)
	SetDirection(direction common.Vec3)
	SetColor(color common.Vec3)
	SetIntensity(intensity float32)
	SetRange(lightRange float32)
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white light of the given type pointing straight down, then applies the options.
//
// Parameters:
//   - lightType: the light type
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  common.Vec3{0, -1, 0},
		color:      common.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() common.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() common.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() common.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) GPU() GPULight {
	return GPULight{
		Position:   l.position,
		LightType:  uint32(l.lightType),
		Direction:  l.direction,
		Intensity:  l.intensity,
		Color:      l.color,
		LightRange: l.lightRange,
	}
}

func (l *lightImpl) SetPosition(position common.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction common.Vec3) {
	l.direction = common.Normalize(direction)
}

func (l *lightImpl) SetColor(color common.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
