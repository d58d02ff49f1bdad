package scene

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/Carmen-Shannon/oxy-gi/engine/light"
	"github.com/Carmen-Shannon/oxy-gi/engine/probe"
)

// Scene holds the objects, lights and probes of one bakeable level.
// Thread-safe for concurrent access.
type Scene interface {
	gi.Scene

	// SetName sets the scene's identifier.
	SetName(name string)

	// SetPath records where the scene is saved. An empty path marks the scene unsaved.
	SetPath(path string)

	// Count returns the number of objects in the scene.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Add adds an object to the scene. Adding the same object twice is a no-op.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	//   - error: if another object already uses the ID
	Add(obj game_object.GameObject) (uint64, error)

	// Get looks up an object by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	Get(id uint64) game_object.GameObject

	// Remove removes an object by ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Clear removes every object.
	Clear()

	// AddLight adds a light.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// RemoveLight removes a light. Unknown lights are ignored.
	//
	// Parameters:
	//   - l: the light
	RemoveLight(l light.Light)

	// Lights returns a copy of the scene's lights.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// AmbientColor returns the ambient light color.
	//
	// Returns:
	//   - common.Vec3: the RGB color
	AmbientColor() common.Vec3

	// SetAmbientColor sets the ambient light color.
	//
	// Parameters:
	//   - color: the RGB color
	SetAmbientColor(color common.Vec3)

	// Volume returns the probe volume with its probe-specific accessors.
	//
	// Returns:
	//   - probe.Volume: the volume, or nil
	Volume() probe.Volume

	// SetProbeVolume replaces the scene's probe volume.
	//
	// Parameters:
	//   - v: the volume, or nil to remove it
	SetProbeVolume(v probe.Volume)

	// AddReflectionProbe adds a reflection probe.
	//
	// Parameters:
	//   - p: the probe
	//
	// Returns:
	//   - error: if a probe with the same name exists
	AddReflectionProbe(p gi.ReflectionProbe) error

	// LoadBakedData attaches existing bake results found under dir: the volume asset and the reflection probe SH.
	//
	// Parameters:
	//   - dir: the scene's bake directory
	//
	// Returns:
	//   - error: if a file exists but cannot be read
	LoadBakedData(dir string) error
}

type scene struct {
	mu               sync.RWMutex
	name             string
	path             string
	registry         map[uint64]game_object.GameObject
	order            []uint64
	lights           []light.Light
	ambient          common.Vec3
	volume           probe.Volume
	reflectionProbes []gi.ReflectionProbe
}

var _ Scene = &scene{}

// NewScene creates an empty, unsaved scene.
//
// Parameters:
//   - name: the scene name
//   - options: builder options
//
// Returns:
//   - Scene: the scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:     name,
		registry: make(map[uint64]game_object.GameObject),
		ambient:  common.Vec3{0.1, 0.1, 0.1},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *scene) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

func (s *scene) add(obj game_object.GameObject) (uint64, error) {
	id := obj.ID()
	if existing, ok := s.registry[id]; ok && existing != obj {
		return 0, fmt.Errorf("object id %d already used by %q", id, existing.Name())
	}
	if _, ok := s.registry[id]; !ok {
		s.order = append(s.order, id)
	}
	s.registry[id] = obj
	return id, nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry[id]; !ok {
		return
	}
	delete(s.registry, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.registry)
	s.order = nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) GIContributors() []game_object.GameObject {
	var out []game_object.GameObject
	for _, obj := range s.Objects() {
		if obj.Enabled() && obj.ContributesGI() {
			out = append(out, obj)
		}
	}
	return out
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) AmbientColor() common.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *scene) SetAmbientColor(color common.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = color
}

func (s *scene) LightingUniform() []byte {
	u := light.BuildLightingUniform(s.AmbientColor(), s.Lights())
	return u.Marshal()
}

func (s *scene) ProbeVolume() gi.Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.volume == nil {
		return nil
	}
	return s.volume
}

func (s *scene) Volume() probe.Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

func (s *scene) SetProbeVolume(v probe.Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *scene) ReflectionProbes() []gi.ReflectionProbe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gi.ReflectionProbe, len(s.reflectionProbes))
	copy(out, s.reflectionProbes)
	return out
}

func (s *scene) AddReflectionProbe(p gi.ReflectionProbe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reflectionProbes {
		if existing.Name() == p.Name() {
			return fmt.Errorf("reflection probe %q already exists", p.Name())
		}
	}
	s.reflectionProbes = append(s.reflectionProbes, p)
	return nil
}

func (s *scene) PersistReflectionProbes(dir string) error {
	return probe.SaveReflectionProbes(dir, s.ReflectionProbes())
}

func (s *scene) LoadBakedData(dir string) error {
	if v := s.Volume(); v != nil {
		asset := v.Asset()
		if asset == nil {
			asset = probe.NewAsset(volumeAssetPath(dir, v.Name()))
		}
		if asset.Exists() {
			v.AttachAsset(asset)
			if err := v.Reload(); err != nil {
				return fmt.Errorf("failed to load probe volume %s: %w", v.Name(), err)
			}
			common.Logger().Info("loaded baked probe volume", "volume", v.Name(), "baked", v.Baked())
		}
	}
	n, err := probe.LoadReflectionProbes(dir, s.ReflectionProbes())
	if err != nil {
		return err
	}
	if n > 0 {
		common.Logger().Info("loaded baked reflection probes", "probes", n)
	}
	return nil
}

func volumeAssetPath(dir, volumeName string) string {
	return filepath.Join(dir, volumeName+".toml")
}
