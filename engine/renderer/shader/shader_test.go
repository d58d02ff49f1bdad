package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryPoints(t *testing.T) {
	capture := NewShaderFromAsset("capture_vs", ShaderTypeVertex, AssetCapture)
	assert.Equal(t, "vs_main", capture.EntryPoint())
	assert.Equal(t, [3]uint32{0, 0, 0}, capture.WorkgroupSize())

	fragment := NewShaderFromAsset("capture_fs", ShaderTypeFragment, AssetCapture)
	assert.Equal(t, "fs_main", fragment.EntryPoint())
	assert.Equal(t, "capture_fs", fragment.Module().Label)
}

func TestKernelWorkgroupSizes(t *testing.T) {
	surfel := NewShaderFromAsset("surfel", ShaderTypeCompute, AssetSurfelSample)
	assert.Equal(t, "cs_main", surfel.EntryPoint())
	assert.Equal(t, [3]uint32{32, 16, 1}, surfel.WorkgroupSize())

	project := NewShaderFromAsset("sh", ShaderTypeCompute, AssetSHProject)
	assert.Equal(t, [3]uint32{64, 1, 1}, project.WorkgroupSize())
}

func TestEntryPointIgnoresComments(t *testing.T) {
	src := "// @compute fn fake() {}\n/* @compute fn other() {} */\n@compute @workgroup_size(8, 4)\nfn real_main() {}\n"
	assert.Equal(t, "real_main", parseEntryPoint(src, ShaderTypeCompute))
	assert.Equal(t, [3]uint32{8, 4, 1}, parseWorkgroupSize(src))
}

func TestNewShaderPanics(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", ShaderTypeCompute, "") })
	assert.Panics(t, func() { NewShader("novs", ShaderTypeVertex, "@compute @workgroup_size(1) fn main() {}") })
	assert.Panics(t, func() { NewShaderFromAsset("missing", ShaderTypeCompute, "missing.wgsl") })
}

func TestValidateMinimalShader(t *testing.T) {
	src := `
@group(0) @binding(0) var<storage, read_write> values: array<f32, 4>;

@compute @workgroup_size(4)
fn main(@builtin(local_invocation_index) i: u32) {
    values[i] = f32(i) * 2.0;
}
`
	require.NoError(t, Validate(src))
	assert.Error(t, Validate("fn broken( {"))
}

// naga does not implement every WGSL feature yet; mirror the skip rules used for
// other shaders compiled with it.
func TestValidateAssets(t *testing.T) {
	for _, name := range AssetNames() {
		t.Run(name, func(t *testing.T) {
			src, err := AssetSource(name)
			require.NoError(t, err)
			if err := Validate(src); err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") || strings.Contains(msg, "lowering error") {
					t.Skipf("naga limitation: %v", err)
				}
				t.Fatalf("shader %s failed to compile: %v", name, err)
			}
		})
	}
}
