package gi

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gi/common"
)

const (
	// SHBasisCount is the number of order-2 SH basis functions per channel.
	SHBasisCount = 9

	// SHCount is the number of floats in SHCoefficients.
	SHCount = SHBasisCount * 3
)

// SHCoefficients holds 9 SH coefficients for each of the R, G and B channels, channel-major: [c*9+k].
type SHCoefficients [SHCount]float32

// Channel returns the 9 coefficients of one color channel.
//
// Parameters:
//   - c: 0 for red, 1 for green, 2 for blue
//
// Returns:
//   - [SHBasisCount]float32: the channel coefficients
func (sh *SHCoefficients) Channel(c int) [SHBasisCount]float32 {
	var out [SHBasisCount]float32
	copy(out[:], sh[c*SHBasisCount:(c+1)*SHBasisCount])
	return out
}

// Evaluate reconstructs the projected signal in a direction.
//
// Parameters:
//   - dir: the direction to evaluate, normalized internally
//
// Returns:
//   - common.Vec3: the RGB value
func (sh *SHCoefficients) Evaluate(dir common.Vec3) common.Vec3 {
	basis := SHBasis(common.Normalize(dir))
	var out common.Vec3
	for c := range 3 {
		for k := range SHBasisCount {
			out[c] += sh[c*SHBasisCount+k] * basis[k]
		}
	}
	return out
}

// Marshal serializes the coefficients as 27 little-endian float32 values.
//
// Returns:
//   - []byte: SHCount*4 bytes
func (sh *SHCoefficients) Marshal() []byte {
	buf := make([]byte, SHCount*4)
	common.PutFloat32s(buf, sh[:]...)
	return buf
}

// UnmarshalSHCoefficients decodes exactly SHCount little-endian float32 values.
//
// Parameters:
//   - data: the source bytes
//
// Returns:
//   - SHCoefficients: the coefficients
//   - error: if data is not exactly SHCount*4 bytes
func UnmarshalSHCoefficients(data []byte) (SHCoefficients, error) {
	var sh SHCoefficients
	if len(data) != SHCount*4 {
		return sh, fmt.Errorf("sh readback is %d bytes, want %d", len(data), SHCount*4)
	}
	common.Float32s(data, sh[:])
	return sh, nil
}

// SHBasis evaluates the 9 real SH basis functions for a unit direction, in the order used by the projection kernel.
//
// Parameters:
//   - d: a unit direction
//
// Returns:
//   - [SHBasisCount]float32: the basis values
func SHBasis(d common.Vec3) [SHBasisCount]float32 {
	x, y, z := d[0], d[1], d[2]
	return [SHBasisCount]float32{
		0.282095,
		0.488603 * y,
		0.488603 * z,
		0.488603 * x,
		1.092548 * x * y,
		1.092548 * y * z,
		0.315392 * (3*z*z - 1),
		1.092548 * x * z,
		0.546274 * (x*x - y*y),
	}
}
