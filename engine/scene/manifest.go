package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/light"
	"github.com/Carmen-Shannon/oxy-gi/engine/loader"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
	"github.com/Carmen-Shannon/oxy-gi/engine/probe"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/pipeline"
	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML description of a scene.
type Manifest struct {
	Name             string                    `yaml:"name"`
	Ambient          *[3]float32               `yaml:"ambient"`
	Objects          []ObjectManifest          `yaml:"objects"`
	Lights           []LightManifest           `yaml:"lights"`
	ProbeVolume      *VolumeManifest           `yaml:"probe_volume"`
	ReflectionProbes []ReflectionProbeManifest `yaml:"reflection_probes"`

	// baseDir is the manifest's directory. Model paths resolve against it.
	baseDir string
}

// ObjectManifest describes one object. Exactly one of Mesh and Model is set. Rotation is in degrees.
type ObjectManifest struct {
	Name         string      `yaml:"name"`
	Mesh         MeshKind    `yaml:"mesh"`
	Model        string      `yaml:"model"`
	Position     [3]float32  `yaml:"position"`
	Rotation     [3]float32  `yaml:"rotation"`
	Scale        *[3]float32 `yaml:"scale"`
	Color        *[4]float32 `yaml:"color"`
	ContributeGI bool        `yaml:"contribute_gi"`
	Disabled     bool        `yaml:"disabled"`
}

// LightManifest describes one light. Zero intensity and range take the light defaults.
type LightManifest struct {
	Type      LightKind   `yaml:"type"`
	Position  [3]float32  `yaml:"position"`
	Direction *[3]float32 `yaml:"direction"`
	Color     *[3]float32 `yaml:"color"`
	Intensity float32     `yaml:"intensity"`
	Range     float32     `yaml:"range"`
}

// VolumeManifest describes the probe volume. Points, when given, replace the grid.
type VolumeManifest struct {
	Name       string       `yaml:"name"`
	Min        [3]float32   `yaml:"min"`
	Max        [3]float32   `yaml:"max"`
	Spacing    float32      `yaml:"spacing"`
	Points     [][3]float32 `yaml:"points"`
	Resolution uint32       `yaml:"resolution"`
}

// ReflectionProbeManifest describes one reflection probe.
type ReflectionProbeManifest struct {
	Name     string     `yaml:"name"`
	Position [3]float32 `yaml:"position"`
}

// MeshKind names a built-in mesh.
type MeshKind string

const (
	MeshBox   MeshKind = "box"
	MeshPlane MeshKind = "plane"
)

func (m *MeshKind) UnmarshalYAML(node *yaml.Node) error {
	switch kind := MeshKind(strings.ToLower(node.Value)); kind {
	case MeshBox, MeshPlane:
		*m = kind
		return nil
	}
	return fmt.Errorf("line %d: unknown mesh %q", node.Line, node.Value)
}

// LightKind names a light type.
type LightKind string

const (
	LightDirectional LightKind = "directional"
	LightPoint       LightKind = "point"
)

func (l *LightKind) UnmarshalYAML(node *yaml.Node) error {
	switch kind := LightKind(strings.ToLower(node.Value)); kind {
	case LightDirectional, LightPoint:
		*l = kind
		return nil
	}
	return fmt.Errorf("line %d: unknown light type %q", node.Line, node.Value)
}

// ParseManifest decodes a YAML manifest, rejecting unknown fields.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Manifest: the manifest
//   - error: if the document is malformed
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("failed to parse scene manifest: %w", err)
	}
	return m, nil
}

// LoadManifest reads a manifest file and builds the scene it describes. The scene's path is the
// manifest path and its name defaults to the file name without extension.
//
// Parameters:
//   - path: the manifest file
//
// Returns:
//   - Scene: the scene
//   - error: if the file cannot be read or describes an invalid scene
func LoadManifest(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	m.baseDir = filepath.Dir(path)
	s, err := m.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.SetPath(path)
	return s, nil
}

// Build creates an unsaved scene from the manifest.
//
// Returns:
//   - Scene: the scene
//   - error: if an entry is invalid
func (m Manifest) Build() (Scene, error) {
	if m.Name == "" {
		return nil, errors.New("scene manifest has no name")
	}
	s := NewScene(m.Name)
	if m.Ambient != nil {
		s.SetAmbientColor(common.Vec3(*m.Ambient))
	}

	models := loader.NewLoader(loader.WithBaseDir(m.baseDir))
	for i, om := range m.Objects {
		obj, err := om.build(i, models)
		if err != nil {
			return nil, err
		}
		if _, err := s.Add(obj); err != nil {
			return nil, err
		}
	}

	for i, lm := range m.Lights {
		if lm.Type == "" {
			return nil, fmt.Errorf("light %d has no type", i)
		}
		s.AddLight(lm.build())
	}

	if vm := m.ProbeVolume; vm != nil {
		v, err := vm.build()
		if err != nil {
			return nil, err
		}
		s.SetProbeVolume(v)
	}

	for i, rm := range m.ReflectionProbes {
		if rm.Name == "" {
			return nil, fmt.Errorf("reflection probe %d has no name", i)
		}
		if err := s.AddReflectionProbe(probe.NewReflectionProbe(rm.Name, common.Vec3(rm.Position))); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (om ObjectManifest) build(index int, models loader.Loader) (game_object.GameObject, error) {
	var (
		mdl   model.Model
		color = [4]float32{1, 1, 1, 1}
		kind  = string(om.Mesh)
	)
	switch {
	case om.Mesh != "" && om.Model != "":
		return nil, fmt.Errorf("object %d (%s) sets both mesh and model", index, om.Name)
	case om.Mesh != "":
		mdl = model.NewPrimitive(string(om.Mesh))
	case om.Model != "":
		imported, err := models.Load(om.Model)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", index, om.Name, err)
		}
		mdl, color, kind = imported.Model, imported.BaseColor, imported.Model.Name()
	default:
		return nil, fmt.Errorf("object %d (%s) has no mesh", index, om.Name)
	}

	if om.Color != nil {
		color = *om.Color
	}
	name := om.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", kind, index)
	}
	mat := material.NewMaterial(
		material.WithName(name),
		material.WithBaseColor(color),
		material.WithPipelineKey(pipeline.KeyLit),
	)

	scale := common.Vec3{1, 1, 1}
	if om.Scale != nil {
		scale = common.Vec3(*om.Scale)
	}
	var rot common.Vec3
	for i := range 3 {
		rot[i] = om.Rotation[i] * math32.Pi / 180
	}

	return game_object.NewGameObject(
		game_object.WithName(name),
		game_object.WithModel(mdl),
		game_object.WithMaterials(mat),
		game_object.WithTransform(common.Vec3(om.Position), rot, scale),
		game_object.WithContributesGI(om.ContributeGI),
		game_object.WithEnabled(!om.Disabled),
	), nil
}

func (lm LightManifest) build() light.Light {
	lightType := light.LightTypeDirectional
	if lm.Type == LightPoint {
		lightType = light.LightTypePoint
	}
	opts := []light.LightBuilderOption{light.WithPosition(common.Vec3(lm.Position))}
	if lm.Direction != nil {
		opts = append(opts, light.WithDirection(common.Normalize(common.Vec3(*lm.Direction))))
	}
	if lm.Color != nil {
		opts = append(opts, light.WithColor(common.Vec3(*lm.Color)))
	}
	if lm.Intensity > 0 {
		opts = append(opts, light.WithIntensity(lm.Intensity))
	}
	if lm.Range > 0 {
		opts = append(opts, light.WithRange(lm.Range))
	}
	return light.NewLight(lightType, opts...)
}

func (vm VolumeManifest) build() (probe.Volume, error) {
	name := common.Coalesce(vm.Name, "probe_volume")
	var layout probe.Layout
	if len(vm.Points) > 0 {
		points := make(probe.PointLayout, len(vm.Points))
		for i, p := range vm.Points {
			points[i] = common.Vec3(p)
		}
		layout = points
	} else {
		bounds := common.Bounds{Min: common.Vec3(vm.Min), Max: common.Vec3(vm.Max)}
		for i := range 3 {
			if bounds.Max[i] < bounds.Min[i] {
				return nil, fmt.Errorf("probe volume %s: max is below min on axis %d", name, i)
			}
		}
		if vm.Spacing < 0 {
			return nil, fmt.Errorf("probe volume %s: negative spacing", name)
		}
		layout = probe.GridLayout{Bounds: bounds, Spacing: vm.Spacing}
	}
	return probe.NewVolume(name, layout, probe.WithResolution(vm.Resolution)), nil
}
