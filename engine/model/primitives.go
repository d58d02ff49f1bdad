package model

// NewBox creates a unit cube centered on the origin with outward normals, 24 vertices and 36 indices.
//
// Returns:
//   - Model: the box model
func NewBox() Model {
	type face struct {
		normal, right, up [3]float32
	}
	faces := []face{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for i := range 3 {
				p[i] = 0.5 * (f.normal[i] + c[0]*f.right[i] + c[1]*f.up[i])
			}
			vertices = append(vertices, GPUVertex{Position: p, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel("box", vertices, indices)
}

// NewPlane creates a unit square in the XZ plane facing +Y.
//
// Returns:
//   - Model: the plane model
func NewPlane() Model {
	n := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-0.5, 0, 0.5}, Normal: n},
		{Position: [3]float32{0.5, 0, 0.5}, Normal: n},
		{Position: [3]float32{0.5, 0, -0.5}, Normal: n},
		{Position: [3]float32{-0.5, 0, -0.5}, Normal: n},
	}
	return NewModel("plane", vertices, []uint32{0, 1, 2, 0, 2, 3})
}

// NewPrimitive returns a procedural model by name.
//
// Parameters:
//   - name: "box" or "plane"
//
// Returns:
//   - Model: the model, or nil if the name is unknown
func NewPrimitive(name string) Model {
	switch name {
	case "box", "cube":
		return NewBox()
	case "plane":
		return NewPlane()
	default:
		return nil
	}
}
