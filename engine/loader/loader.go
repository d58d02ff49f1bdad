// Package loader imports static glTF 2.0 geometry for scene objects.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
)

// ImportedModel is a loaded model and the base color of its first material.
type ImportedModel struct {
	Model     model.Model
	BaseColor [4]float32
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      sync.RWMutex
	baseDir string
	cache   map[string]ImportedModel
}

// Loader loads glTF and GLB files into static models and caches them by path, so scene objects
// that share a file share one model.
type Loader interface {
	// Load imports a .gltf or .glb file. Relative paths resolve against the loader's base
	// directory. A cached model is returned when the file was loaded before.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - ImportedModel: the model and its base color
	//   - error: error if the extension is unsupported or the file cannot be parsed
	Load(path string) (ImportedModel, error)

	// LoadReader imports a model from r and caches it under name.
	//
	// Parameters:
	//   - name: the model name and cache key
	//   - r: the reader providing the data
	//   - isGLB: true for GLB data, false for glTF JSON
	//
	// Returns:
	//   - ImportedModel: the model and its base color
	//   - error: error if parsing fails
	LoadReader(name string, r io.Reader, isGLB bool) (ImportedModel, error)

	// Get returns a cached model.
	//
	// Parameters:
	//   - path: the path or name the model was loaded under
	//
	// Returns:
	//   - ImportedModel: the model
	//   - bool: false if nothing is cached under path
	Get(path string) (ImportedModel, bool)
}

var _ Loader = &loader{}

// NewLoader creates a Loader.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{cache: make(map[string]ImportedModel)}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(l.baseDir, path)
}

func (l *loader) Load(path string) (ImportedModel, error) {
	full := l.resolve(path)
	if m, ok := l.Get(full); ok {
		return m, nil
	}

	switch strings.ToLower(filepath.Ext(full)) {
	case ".gltf", ".glb":
	default:
		return ImportedModel{}, fmt.Errorf("unsupported model format %q", filepath.Ext(full))
	}

	parser, err := openGLTF(full)
	if err != nil {
		return ImportedModel{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(full), filepath.Ext(full))
	return l.extract(full, name, parser)
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (ImportedModel, error) {
	if m, ok := l.Get(name); ok {
		return m, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportedModel{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	parser, err := decodeGLTF(data, isGLB, l.baseDir)
	if err != nil {
		return ImportedModel{}, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return l.extract(name, name, parser)
}

func (l *loader) extract(key, name string, parser gltfSource) (ImportedModel, error) {
	mesh, err := newGLTFMeshExtractor(parser).ExtractStatic()
	if err != nil {
		return ImportedModel{}, fmt.Errorf("failed to load %s: %w", name, err)
	}
	imported := ImportedModel{
		Model:     model.NewModel(name, mesh.vertices, mesh.indices),
		BaseColor: mesh.baseColor,
	}
	common.Logger().Debug("loaded model", "model", name, "vertices", len(mesh.vertices), "indices", len(mesh.indices))

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.cache[key]; ok {
		return existing, nil
	}
	l.cache[key] = imported
	return imported, nil
}

func (l *loader) Get(path string) (ImportedModel, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.cache[path]; ok {
		return m, true
	}
	m, ok := l.cache[l.resolve(path)]
	return m, ok
}
