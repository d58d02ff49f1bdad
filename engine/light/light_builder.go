package light

import "github.com/Carmen-Shannon/oxy-gi/common"

// LightBuilderOption is a functional option applied to a light during construction via NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the light position.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - LightBuilderOption: a function that sets the position
func WithPosition(position common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithDirection sets the light direction. The direction is normalized.
//
// Parameters:
//   - direction: the direction the light travels
//
// Returns:
//   - LightBuilderOption: a function that sets the direction
func WithDirection(direction common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = common.Normalize(direction)
	}
}

// WithColor sets the light color.
//
// Parameters:
//   - color: RGB color
//
// Returns:
//   - LightBuilderOption: a function that sets the color
func WithColor(color common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithIntensity sets the light intensity.
//
// Parameters:
//   - intensity: scalar multiplier
//
// Returns:
//   - LightBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange sets the point light range.
//
// Parameters:
//   - lightRange: attenuation cutoff distance
//
// Returns:
//   - LightBuilderOption: a function that sets the range
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithEnabled sets whether the light contributes to captures.
//
// Parameters:
//   - enabled: the enabled flag
//
// Returns:
//   - LightBuilderOption: a function that sets the enabled flag
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
