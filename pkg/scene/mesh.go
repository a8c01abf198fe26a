package scene

import (
	"image"
	"math"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Mesh is the renderable payload of a node: vertices, triangle faces,
// materials, and cached bounds. Vertex positions are in the owning node's
// local space; the renderer applies the node's world matrix.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Axis-aligned bounds in local space (calculated on load).
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// BoundingSphere is used by the renderer's culling step, which
	// dereferences it unconditionally. It may be nil or malformed after
	// an asynchronous load; the render loop repairs it each frame.
	BoundingSphere *Sphere
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material represents a PBR material.
type Material struct {
	Name       string
	BaseColor  [4]float64  // RGBA in 0-1 range
	Metallic   float64     // 0 = dielectric, 1 = metal
	Roughness  float64     // 0 = smooth, 1 = rough
	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// Sphere is a bounding sphere in the mesh's local space.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// IsValid reports whether the sphere is structurally usable by the culling
// step: finite center and a finite, non-negative radius.
func (s *Sphere) IsValid() bool {
	return s != nil && s.Center.IsFinite() && math3d.Finite(s.Radius) && s.Radius >= 0
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}
	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// CalculateBoundingSphere derives the bounding sphere from the current
// bounds. Idempotent; safe to call every frame.
func (m *Mesh) CalculateBoundingSphere() {
	box := math3d.NewAABB(m.BoundsMin, m.BoundsMax)
	m.BoundingSphere = &Sphere{
		Center: box.Center(),
		Radius: box.HalfSize().Len(),
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals computes face normals and assigns them to vertices
// (flat shading).
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // area-weighted, normalize later
		m.Vertices[f.V[0]].Normal = m.Vertices[f.V[0]].Normal.Add(normal)
		m.Vertices[f.V[1]].Normal = m.Vertices[f.V[1]].Normal.Add(normal)
		m.Vertices[f.V[2]].Normal = m.Vertices[f.V[2]].Normal.Add(normal)
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// GetVertex returns the position, normal, and UV for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetMaterial returns the material at index i, or nil for -1/out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// UnitCube returns a unit cube mesh centered at the origin. Used by tests
// and the viewer's placeholder scene.
func UnitCube() *Mesh {
	m := NewMesh("cube")
	h := 0.5
	corners := []math3d.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h},
		{X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h},
		{X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	for _, c := range corners {
		m.Vertices = append(m.Vertices, MeshVertex{Position: c})
	}
	quads := [][4]int{
		{0, 1, 2, 3}, {5, 4, 7, 6}, {4, 0, 3, 7},
		{1, 5, 6, 2}, {3, 2, 6, 7}, {4, 5, 1, 0},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			Face{V: [3]int{q[0], q[1], q[2]}, Material: -1},
			Face{V: [3]int{q[0], q[2], q[3]}, Material: -1},
		)
	}
	m.CalculateSmoothNormals()
	m.CalculateBounds()
	m.CalculateBoundingSphere()
	return m
}

// MaxScale returns the largest axis scale factor encoded in a world matrix,
// used to scale bounding sphere radii conservatively.
func MaxScale(world math3d.Mat4) float64 {
	sx := math3d.V3(world[0], world[1], world[2]).Len()
	sy := math3d.V3(world[4], world[5], world[6]).Len()
	sz := math3d.V3(world[8], world[9], world[10]).Len()
	return math.Max(sx, math.Max(sy, sz))
}
