// package common contains common types that are used throughout the baker. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"golang.org/x/image/math/f32"
)

// Vec3 is a 3-component float32 vector used for positions, directions and colors.
type Vec3 = f32.Vec3

// Bounds is an axis-aligned box in world space.
type Bounds struct {
	// Min is the corner with the smallest coordinates.
	Min Vec3
	// Max is the corner with the largest coordinates.
	Max Vec3
}

// Size returns the extent of the bounds along each axis.
//
// Returns:
//   - Vec3: Max - Min per axis
func (b Bounds) Size() Vec3 {
	return Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Contains reports whether p lies inside the bounds, inclusive.
//
// Parameters:
//   - p: the point to test
//
// Returns:
//   - bool: true if p is inside
func (b Bounds) Contains(p Vec3) bool {
	for i := range 3 {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
