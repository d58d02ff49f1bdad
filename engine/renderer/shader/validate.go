package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles WGSL source with naga to catch syntax and type errors before the
// source reaches the GPU driver.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - error: the compiler error, or nil if the source compiled
func Validate(source string) error {
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirv) == 0 {
		return fmt.Errorf("failed to compile shader: empty SPIR-V output")
	}
	return nil
}
