package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first value that is not the zero value of T, or the zero value when
// every value is zero.
//
// Parameters:
//   - values: the candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutFloat32s writes values into buf as consecutive little-endian float32s, the layout WGSL
// uses for f32 and vecN<f32> fields.
//
// Parameters:
//   - buf: destination, at least 4*len(values) bytes
//   - values: the floats to write
func PutFloat32s(buf []byte, values ...float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// Float32s reads len(dst) consecutive little-endian float32s from buf into dst.
//
// Parameters:
//   - buf: source, at least 4*len(dst) bytes
//   - dst: the floats to fill
func Float32s(buf []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
}
