package common

import (
	"github.com/chewxy/math32"
)

// CubeFace identifies one of the six faces of a cube texture, in WebGPU layer order.
type CubeFace int

const (
	// CubeFacePositiveX is array layer 0.
	CubeFacePositiveX CubeFace = iota
	// CubeFaceNegativeX is array layer 1.
	CubeFaceNegativeX
	// CubeFacePositiveY is array layer 2.
	CubeFacePositiveY
	// CubeFaceNegativeY is array layer 3.
	CubeFaceNegativeY
	// CubeFacePositiveZ is array layer 4.
	CubeFacePositiveZ
	// CubeFaceNegativeZ is array layer 5.
	CubeFaceNegativeZ
)

// CubeFaceCount is the number of faces (array layers) in a cube texture.
const CubeFaceCount = 6

// cubeFaceBasis holds the forward, right and up axes used to render each cube face.
// The axes match the direction-to-texel mapping in DirectionToCubeTexel and in the
// sampling kernels, where texel v grows downward (WebGPU texture origin is top-left).
var cubeFaceBasis = [CubeFaceCount][3]Vec3{
	CubeFacePositiveX: {{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	CubeFaceNegativeX: {{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	CubeFacePositiveY: {{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	CubeFaceNegativeY: {{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	CubeFacePositiveZ: {{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	CubeFaceNegativeZ: {{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// CubeFaceBasis returns the forward, right and up axes used when rendering the given face.
//
// Parameters:
//   - face: the cube face
//
// Returns:
//   - forward, right, up: unit axes in world space
func CubeFaceBasis(face CubeFace) (forward, right, up Vec3) {
	b := cubeFaceBasis[face]
	return b[0], b[1], b[2]
}

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective creates a perspective projection matrix compatible with WebGPU clip space [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// CubeFaceView builds the view matrix for rendering one cube face from eye.
// The camera looks down the face's forward axis with the face's right and up axes
// mapped to +X and +Y in view space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: the capture position in world space
//   - face: the cube face being rendered
func CubeFaceView(out []float32, eye Vec3, face CubeFace) {
	f, r, u := CubeFaceBasis(face)
	// rows: right, up, -forward
	out[0], out[4], out[8], out[12] = r[0], r[1], r[2], -Dot(r, eye)
	out[1], out[5], out[9], out[13] = u[0], u[1], u[2], -Dot(u, eye)
	out[2], out[6], out[10], out[14] = -f[0], -f[1], -f[2], Dot(f, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// CubeFaceViewProjection combines CubeFaceView with a 90 degree, square perspective projection.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: the capture position in world space
//   - face: the cube face being rendered
//   - near: near clipping plane distance
//   - far: far clipping plane distance
func CubeFaceViewProjection(out []float32, eye Vec3, face CubeFace, near, far float32) {
	var view, proj [16]float32
	CubeFaceView(view[:], eye, face)
	Perspective(proj[:], math32.Pi/2, 1, near, far)
	Mul4(out, proj[:], view[:])
}

// DirectionToCubeTexel maps a world-space direction to a cube face and normalized texel
// coordinates in [0, 1], with v growing downward. It mirrors cube_texel in the WGSL kernels.
//
// Parameters:
//   - dir: the direction to map (need not be normalized, must be non-zero)
//
// Returns:
//   - CubeFace: the face the direction hits
//   - float32: the u coordinate in [0, 1]
//   - float32: the v coordinate in [0, 1]
func DirectionToCubeTexel(dir Vec3) (CubeFace, float32, float32) {
	ax, ay, az := math32.Abs(dir[0]), math32.Abs(dir[1]), math32.Abs(dir[2])

	var face CubeFace
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir[0] >= 0 {
			face, sc, tc = CubeFacePositiveX, -dir[2], -dir[1]
		} else {
			face, sc, tc = CubeFaceNegativeX, dir[2], -dir[1]
		}
	case ay >= az:
		ma = ay
		if dir[1] >= 0 {
			face, sc, tc = CubeFacePositiveY, dir[0], dir[2]
		} else {
			face, sc, tc = CubeFaceNegativeY, dir[0], -dir[2]
		}
	default:
		ma = az
		if dir[2] >= 0 {
			face, sc, tc = CubeFacePositiveZ, dir[0], -dir[1]
		} else {
			face, sc, tc = CubeFaceNegativeZ, -dir[0], -dir[1]
		}
	}
	return face, (sc/ma + 1) * 0.5, (tc/ma + 1) * 0.5
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
func BuildModelMatrix(out []float32, pos, rot, scale Vec3) {
	cx, sx := math32.Cos(rot[0]), math32.Sin(rot[0])
	cy, sy := math32.Cos(rot[1]), math32.Sin(rot[1])
	cz, sz := math32.Cos(rot[2]), math32.Sin(rot[2])

	out[0] = (cy*cz + sy*sx*sz) * scale[0]
	out[1] = (cx * sz) * scale[0]
	out[2] = (-sy*cz + cy*sx*sz) * scale[0]
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scale[1]
	out[5] = (cx * cz) * scale[1]
	out[6] = (sy*sz + cy*sx*cz) * scale[1]
	out[7] = 0

	out[8] = (sy * cx) * scale[2]
	out[9] = (-sx) * scale[2]
	out[10] = (cy * cx) * scale[2]
	out[11] = 0

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
}

// TransformPoint multiplies a column-major 4x4 matrix with the point (p, 1).
//
// Parameters:
//   - m: the matrix (16 elements)
//   - p: the point
//
// Returns:
//   - [4]float32: the homogeneous result
func TransformPoint(m []float32, p Vec3) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*p[0] + m[4+row]*p[1] + m[8+row]*p[2] + m[12+row]
	}
	return out
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Normalize returns v scaled to unit length, or v unchanged if it has zero length.
func Normalize(v Vec3) Vec3 {
	l := math32.Sqrt(Dot(v, v))
	if l == 0 {
		return v
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}
}
