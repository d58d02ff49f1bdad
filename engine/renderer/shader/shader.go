package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType is the pipeline stage a shader is compiled for.
type ShaderType int

const (
	ShaderTypeCompute ShaderType = iota
	ShaderTypeVertex
	ShaderTypeFragment
)

type shader struct {
	key           string
	source        string
	shaderType    ShaderType
	workGroupSize [3]uint32
	entryPoint    string
	module        *wgpu.ShaderModuleDescriptor
}

// Shader is one stage of a WGSL module, with the entry point and workgroup size already
// read from the source.
type Shader interface {
	// Key returns the name the shader was created with. It labels the GPU shader module.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Source returns the WGSL text.
	//
	// Returns:
	//   - string: the source
	Source() string

	// EntryPoint returns the function carrying this stage's attribute, e.g. "cs_main".
	//
	// Returns:
	//   - string: the entry point
	EntryPoint() string

	// WorkgroupSize returns the @workgroup_size of a compute shader. Render stages report
	// zeros; a kernel without the attribute reports {1, 1, 1}.
	//
	// Returns:
	//   - [3]uint32: x, y and z
	WorkgroupSize() [3]uint32

	// Module returns the descriptor the renderer passes to CreateShaderModule.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the WGSL module descriptor
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage.
	//
	// Returns:
	//   - ShaderType: vertex, fragment or compute
	ShaderType() ShaderType
}

var _ Shader = &shader{}

// NewShader creates a new Shader from WGSL source. The entry point for the given stage
// and, for compute shaders, the workgroup size are parsed from the source.
// Panics if the source is empty or has no entry point for the requested stage.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the type of shader (vertex, fragment or compute)
//   - source: the WGSL source code
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
func NewShader(key string, shaderType ShaderType, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source", key))
	}
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}
	s.parseSource()
	return s
}

// NewShaderFromAsset creates a new Shader from one of the embedded WGSL assets.
// Panics if the asset does not exist.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the type of shader (vertex, fragment or compute)
//   - name: the asset file name, e.g. "capture.wgsl"
//
// Returns:
//   - Shader: a new Shader instance
func NewShaderFromAsset(key string, shaderType ShaderType, name string) Shader {
	source, err := AssetSource(name)
	if err != nil {
		panic(fmt.Sprintf("shader: %s: %v", key, err))
	}
	return NewShader(key, shaderType, source)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

// parseSource builds the shader module descriptor, parses the entry point name and,
// for compute shaders, the workgroup size.
func (s *shader) parseSource() {
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		panic(fmt.Sprintf("shader: %s has no entry point for stage %d", s.key, s.shaderType))
	}
	if s.shaderType == ShaderTypeCompute {
		s.workGroupSize = parseWorkgroupSize(s.source)
	}
}
