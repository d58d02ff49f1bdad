package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/model"
)

// staticMesh is every triangle of a document flattened into model space.
type staticMesh struct {
	vertices  []model.GPUVertex
	indices   []uint32
	baseColor [4]float32
}

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfSource
	mesh   staticMesh
}

// gltfMeshExtractor converts a parsed document into a single static mesh.
type gltfMeshExtractor interface {
	// ExtractStatic walks the default scene, applies each node's world transform to the meshes it
	// references and concatenates every triangle primitive. Primitives without normals get flat
	// face normals.
	//
	// Returns:
	//   - staticMesh: the flattened mesh
	//   - error: error if the document has no triangles or a primitive cannot be read
	ExtractStatic() (staticMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfSource) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractStatic() (staticMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return staticMesh{}, errors.New("no document loaded")
	}
	e.mesh = staticMesh{baseColor: [4]float32{1, 1, 1, 1}}

	var identity [16]float32
	common.Identity(identity[:])

	if len(doc.Nodes) == 0 {
		for i := range doc.Meshes {
			if err := e.extractMesh(i, identity); err != nil {
				return staticMesh{}, err
			}
		}
	} else {
		visited := make(map[int]bool, len(doc.Nodes))
		for _, root := range rootNodes(doc) {
			if err := e.visitNode(root, identity, visited); err != nil {
				return staticMesh{}, err
			}
		}
	}

	if len(e.mesh.indices) == 0 {
		return staticMesh{}, errors.New("document contains no triangles")
	}
	return e.mesh, nil
}

// rootNodes returns the default scene's roots, or every parentless node when there is no scene.
func rootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func (e *gltfMeshExtractorImpl) visitNode(index int, parent [16]float32, visited map[int]bool) error {
	doc := e.parser.Document()
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if visited[index] {
		return fmt.Errorf("node %d is referenced twice", index)
	}
	visited[index] = true

	node := &doc.Nodes[index]
	local := nodeMatrix(node)
	var world [16]float32
	common.Mul4(world[:], parent[:], local[:])

	if node.Mesh != nil {
		if err := e.extractMesh(*node.Mesh, world); err != nil {
			return fmt.Errorf("node %d (%s): %w", index, node.Name, err)
		}
	}
	for _, child := range node.Children {
		if err := e.visitNode(child, world, visited); err != nil {
			return err
		}
	}
	return nil
}

// nodeMatrix returns the node's local transform as a column-major matrix.
func nodeMatrix(n *gltfNode) [16]float32 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := [3]float32{}
	if n.Translation != nil {
		t = *n.Translation
	}
	q := [4]float32{0, 0, 0, 1}
	if n.Rotation != nil {
		q = *n.Rotation
	}
	s := [3]float32{1, 1, 1}
	if n.Scale != nil {
		s = *n.Scale
	}
	x, y, z, w := q[0], q[1], q[2], q[3]

	var m [16]float32
	m[0] = (1 - 2*(y*y+z*z)) * s[0]
	m[1] = 2 * (x*y + z*w) * s[0]
	m[2] = 2 * (x*z - y*w) * s[0]
	m[4] = 2 * (x*y - z*w) * s[1]
	m[5] = (1 - 2*(x*x+z*z)) * s[1]
	m[6] = 2 * (y*z + x*w) * s[1]
	m[8] = 2 * (x*z + y*w) * s[2]
	m[9] = 2 * (y*z - x*w) * s[2]
	m[10] = (1 - 2*(x*x+y*y)) * s[2]
	m[12], m[13], m[14] = t[0], t[1], t[2]
	m[15] = 1
	return m
}

func (e *gltfMeshExtractorImpl) extractMesh(meshIndex int, world [16]float32) error {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	mesh := &doc.Meshes[meshIndex]
	for i := range mesh.Primitives {
		if err := e.extractPrimitive(&mesh.Primitives[i], world); err != nil {
			return fmt.Errorf("mesh %d (%s) primitive %d: %w", meshIndex, mesh.Name, i, err)
		}
	}
	return nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, world [16]float32) error {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.New("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return fmt.Errorf("failed to read positions: %w", err)
	}

	var normals [][3]float32
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = e.parser.ReadVec3Accessor(normalAccessor); err != nil {
			return fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals) != len(positions) {
			return fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = e.parser.ReadIndicesAccessor(*prim.Indices); err != nil {
			return fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
	}

	if len(e.mesh.indices) == 0 && prim.Material != nil {
		e.mesh.baseColor = e.materialColor(*prim.Material)
	}

	mirrored := determinant3(world) < 0
	if normals == nil {
		e.appendFlat(positions, indices, world, mirrored)
		return nil
	}

	base := uint32(len(e.mesh.vertices))
	for i, p := range positions {
		e.mesh.vertices = append(e.mesh.vertices, model.GPUVertex{
			Position: transformPosition(world, p),
			Normal:   transformNormal(world, normals[i], mirrored),
		})
	}
	for t := 0; t < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if mirrored {
			b, c = c, b
		}
		e.mesh.indices = append(e.mesh.indices, base+a, base+b, base+c)
	}
	return nil
}

// appendFlat emits three vertices per triangle sharing the triangle's face normal.
func (e *gltfMeshExtractorImpl) appendFlat(positions [][3]float32, indices []uint32, world [16]float32, mirrored bool) {
	for t := 0; t < len(indices); t += 3 {
		var tri [3][3]float32
		for k := range 3 {
			tri[k] = transformPosition(world, positions[indices[t+k]])
		}
		if mirrored {
			tri[1], tri[2] = tri[2], tri[1]
		}
		n := faceNormal(tri)
		base := uint32(len(e.mesh.vertices))
		for k := range 3 {
			e.mesh.vertices = append(e.mesh.vertices, model.GPUVertex{Position: tri[k], Normal: n})
		}
		e.mesh.indices = append(e.mesh.indices, base, base+1, base+2)
	}
}

func (e *gltfMeshExtractorImpl) materialColor(index int) [4]float32 {
	doc := e.parser.Document()
	if index < 0 || index >= len(doc.Materials) {
		return e.mesh.baseColor
	}
	pbr := doc.Materials[index].PbrMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return e.mesh.baseColor
	}
	return *pbr.BaseColorFactor
}

func transformPosition(m [16]float32, p [3]float32) [3]float32 {
	h := common.TransformPoint(m[:], common.Vec3(p))
	return [3]float32{h[0], h[1], h[2]}
}

// transformNormal applies the cofactor of the upper 3x3, which is the inverse transpose up to scale.
func transformNormal(m [16]float32, n [3]float32, mirrored bool) [3]float32 {
	c0 := common.Vec3{m[0], m[1], m[2]}
	c1 := common.Vec3{m[4], m[5], m[6]}
	c2 := common.Vec3{m[8], m[9], m[10]}
	a, b, c := cross(c1, c2), cross(c2, c0), cross(c0, c1)
	out := common.Vec3{
		n[0]*a[0] + n[1]*b[0] + n[2]*c[0],
		n[0]*a[1] + n[1]*b[1] + n[2]*c[1],
		n[0]*a[2] + n[1]*b[2] + n[2]*c[2],
	}
	if mirrored {
		out = common.Vec3{-out[0], -out[1], -out[2]}
	}
	return [3]float32(common.Normalize(out))
}

func faceNormal(tri [3][3]float32) [3]float32 {
	u := common.Vec3{tri[1][0] - tri[0][0], tri[1][1] - tri[0][1], tri[1][2] - tri[0][2]}
	v := common.Vec3{tri[2][0] - tri[0][0], tri[2][1] - tri[0][1], tri[2][2] - tri[0][2]}
	return [3]float32(common.Normalize(cross(u, v)))
}

func cross(a, b common.Vec3) common.Vec3 {
	return common.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func determinant3(m [16]float32) float32 {
	c0 := common.Vec3{m[0], m[1], m[2]}
	c1 := common.Vec3{m[4], m[5], m[6]}
	c2 := common.Vec3{m[8], m[9], m[10]}
	return common.Dot(c0, cross(c1, c2))
}
