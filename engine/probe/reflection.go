package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/pelletier/go-toml/v2"
)

// ReflectionProbesFile is the file, inside a scene's bake directory, holding reflection probe SH.
const ReflectionProbesFile = "reflection_probes.toml"

type reflectionProbe struct {
	mu           sync.RWMutex
	name         string
	position     common.Vec3
	coefficients gi.SHCoefficients
	baked        bool
}

var _ gi.ReflectionProbe = &reflectionProbe{}

// NewReflectionProbe creates an unbaked reflection probe.
//
// Parameters:
//   - name: the probe name, unique within a scene
//   - position: the capture position
//
// Returns:
//   - gi.ReflectionProbe: the probe
func NewReflectionProbe(name string, position common.Vec3) gi.ReflectionProbe {
	return &reflectionProbe{name: name, position: position}
}

func (r *reflectionProbe) Name() string {
	return r.name
}

func (r *reflectionProbe) Position() common.Vec3 {
	return r.position
}

func (r *reflectionProbe) Coefficients() gi.SHCoefficients {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coefficients
}

func (r *reflectionProbe) Baked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baked
}

func (r *reflectionProbe) SetCoefficients(sh gi.SHCoefficients) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coefficients = sh
	r.baked = true
}

func (r *reflectionProbe) ClearCoefficients() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coefficients = gi.SHCoefficients{}
	r.baked = false
}

type reflectionRecord struct {
	Name         string     `toml:"name"`
	Position     [3]float32 `toml:"position"`
	Baked        bool       `toml:"baked"`
	Coefficients []float32  `toml:"coefficients"`
}

type reflectionFile struct {
	Probes []reflectionRecord `toml:"probe"`
}

// SaveReflectionProbes writes the SH of probes to dir/ReflectionProbesFile.
//
// Parameters:
//   - dir: the scene's bake directory
//   - probes: the probes to save
//
// Returns:
//   - error: if the file cannot be written
func SaveReflectionProbes(dir string, probes []gi.ReflectionProbe) error {
	file := reflectionFile{Probes: make([]reflectionRecord, 0, len(probes))}
	for _, p := range probes {
		sh := p.Coefficients()
		file.Probes = append(file.Probes, reflectionRecord{
			Name:         p.Name(),
			Position:     [3]float32(p.Position()),
			Baked:        p.Baked(),
			Coefficients: sh[:],
		})
	}
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode reflection probes: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bake directory: %w", err)
	}
	path := filepath.Join(dir, ReflectionProbesFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write reflection probes: %w", err)
	}
	common.Logger().Debug("reflection probes written", "path", path, "probes", len(probes))
	return nil
}

// LoadReflectionProbes reads dir/ReflectionProbesFile into the probes with matching names.
// Saved probes that no longer exist are ignored. A missing file is not an error.
//
// Parameters:
//   - dir: the scene's bake directory
//   - probes: the probes to fill
//
// Returns:
//   - int: the number of probes that received baked data
//   - error: if the file exists but cannot be read or is malformed
func LoadReflectionProbes(dir string, probes []gi.ReflectionProbe) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReflectionProbesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read reflection probes: %w", err)
	}
	var file reflectionFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse reflection probes: %w", err)
	}

	byName := make(map[string]gi.ReflectionProbe, len(probes))
	for _, p := range probes {
		byName[p.Name()] = p
	}
	loaded := 0
	for _, rec := range file.Probes {
		p, ok := byName[rec.Name]
		if !ok || !rec.Baked {
			continue
		}
		if len(rec.Coefficients) != gi.SHCount {
			return loaded, fmt.Errorf("reflection probe %s has %d coefficients, want %d", rec.Name, len(rec.Coefficients), gi.SHCount)
		}
		var sh gi.SHCoefficients
		copy(sh[:], rec.Coefficients)
		p.SetCoefficients(sh)
		loaded++
	}
	return loaded, nil
}
