package scene

import (
	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/light"
	"github.com/Carmen-Shannon/oxy-gi/engine/probe"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithPath sets the file the scene is saved to.
//
// Parameters:
//   - path: the scene file path
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPath(path string) SceneBuilderOption {
	return func(s *scene) {
		s.path = path
	}
}

// WithObjects adds initial objects to the scene.
// Objects whose ID is already taken are skipped.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if _, err := s.add(obj); err != nil {
				common.Logger().Warn("object skipped", "object", obj.Name(), "err", err)
			}
		}
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithAmbientColor sets the ambient light color. Defaults to a dim grey.
//
// Parameters:
//   - color: the RGB color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientColor(color common.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = color
	}
}

// WithProbeVolume sets the scene's probe volume.
//
// Parameters:
//   - v: the volume
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProbeVolume(v probe.Volume) SceneBuilderOption {
	return func(s *scene) {
		s.volume = v
	}
}

// WithReflectionProbes adds reflection probes. Probes whose name is already used are skipped.
//
// Parameters:
//   - probes: the probes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithReflectionProbes(probes ...gi.ReflectionProbe) SceneBuilderOption {
	return func(s *scene) {
		seen := make(map[string]bool, len(s.reflectionProbes))
		for _, p := range s.reflectionProbes {
			seen[p.Name()] = true
		}
		for _, p := range probes {
			if seen[p.Name()] {
				common.Logger().Warn("reflection probe skipped", "probe", p.Name(), "reason", "duplicate name")
				continue
			}
			seen[p.Name()] = true
			s.reflectionProbes = append(s.reflectionProbes, p)
		}
	}
}
