// Package render draws scene graphs into a software framebuffer and
// presents them as half-block cells on a terminal surface.
package render

import (
	"math"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/scene"
)

// DrawMode selects how mesh nodes are shaded.
type DrawMode int

const (
	ModeShaded DrawMode = iota
	ModeWireframe
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Vertex color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// FrameStats tracks per-frame culling and draw counts.
type FrameStats struct {
	NodesTested int
	NodesCulled int
	NodesDrawn  int
	Triangles   int
}

// Rasterizer renders scene graphs with a software z-buffer.
type Rasterizer struct {
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (1D array, row-major)

	Mode  DrawMode
	Stats FrameStats

	// DisableBackfaceCulling renders both sides of triangles.
	DisableBackfaceCulling bool

	// Per-frame state, set by Render.
	viewProj math3d.Mat4
	frustum  Frustum

	textures map[*scene.Material]*Texture
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		fb:       fb,
		textures: make(map[*scene.Material]*Texture),
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// SetFramebuffer swaps the target framebuffer (on terminal resize).
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Copy-doubling for faster clearing.
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Render draws every visible mesh node under root with cam. It returns a
// *TransformFault when it encounters non-finite camera or world-matrix
// data instead of rasterizing garbage; the render loop owns the
// revalidate-and-retry policy.
func (r *Rasterizer) Render(root *scene.Node, cam *camera.Camera) error {
	if cam == nil || !cam.IsFinite() {
		return &TransformFault{Detail: "camera pose not finite"}
	}
	vp := cam.ViewProjectionMatrix()
	if !vp.IsFinite() {
		return &TransformFault{Detail: "view-projection matrix not finite"}
	}

	r.viewProj = vp
	r.frustum = ExtractFrustum(vp)
	r.ClearDepth()
	r.Stats = FrameStats{}

	if root == nil {
		return nil
	}
	light := sceneLightDir(root)

	var fault error
	root.Walk(func(n *scene.Node) bool {
		if fault != nil {
			return false
		}
		if !n.Visible {
			return false
		}
		if n.Mesh == nil {
			return true
		}
		if !n.World.IsFinite() {
			fault = &TransformFault{Node: n.Name, Detail: "world matrix not finite"}
			return false
		}
		if r.cullNode(n) {
			return true
		}
		r.Stats.NodesDrawn++
		if r.Mode == ModeWireframe {
			r.drawNodeWireframe(n, ColorWhite)
		} else {
			r.drawNodeShaded(n, light)
		}
		return true
	})
	return fault
}

// cullNode tests the node's mesh against the frustum, sphere first (cheap)
// then the transformed box. Counts into Stats.
func (r *Rasterizer) cullNode(n *scene.Node) bool {
	r.Stats.NodesTested++
	mesh := n.Mesh

	if s := mesh.BoundingSphere; s.IsValid() {
		center := n.World.MulVec3(s.Center)
		radius := s.Radius * scene.MaxScale(n.World)
		if !r.frustum.IntersectsSphere(center, radius) {
			r.Stats.NodesCulled++
			return true
		}
	}

	box := math3d.NewAABB(mesh.BoundsMin, mesh.BoundsMax).Transform(n.World)
	if !r.frustum.IntersectAABB(box) {
		r.Stats.NodesCulled++
		return true
	}
	return false
}

// sceneLightDir returns the direction toward the first light node in the
// graph, or a default key light when the scene carries none.
func sceneLightDir(root *scene.Node) math3d.Vec3 {
	dir := math3d.V3(0.5, 1, 0.8).Normalize()
	root.Walk(func(n *scene.Node) bool {
		if n.Light == nil {
			return true
		}
		if p := n.World.Translation(); p.Len() > 0 && p.IsFinite() {
			dir = p.Normalize()
		}
		return false
	})
	return dir
}

// drawNodeShaded draws a mesh node with per-vertex lighting, textured
// where the face's material carries a base map.
func (r *Rasterizer) drawNodeShaded(n *scene.Node, lightDir math3d.Vec3) {
	mesh := n.Mesh
	world := n.World
	normalMat := n.NormalMatrix()

	for i := range mesh.Faces {
		face := &mesh.Faces[i]

		var tri Triangle
		degenerate := false
		for j := range 3 {
			pos, normal, uv := mesh.GetVertex(face.V[j])
			wp := world.MulVec3(pos)
			if !wp.IsFinite() {
				degenerate = true
				break
			}
			tri.V[j] = Vertex{
				Position: wp,
				Normal:   normalMat.MulVec3(normal).Normalize(),
				UV:       uv,
			}
		}
		if degenerate {
			continue
		}

		mat := mesh.GetMaterial(face.Material)
		base := materialColor(mat)
		tex := r.materialTexture(mat)

		if tex != nil {
			for j := range 3 {
				tri.V[j].Color = ColorWhite
			}
			r.DrawTriangleTextured(tri, tex, lightDir)
		} else {
			// Gouraud: light at each vertex, interpolate the lit colors.
			for j := range 3 {
				intensity := 0.3 + 0.7*math.Max(0, tri.V[j].Normal.Dot(lightDir))
				tri.V[j].Color = MultiplyColor(base, intensity)
			}
			r.DrawTriangle(tri)
		}
		r.Stats.Triangles++
	}
}

// drawNodeWireframe draws the mesh's triangle edges.
func (r *Rasterizer) drawNodeWireframe(n *scene.Node, color Color) {
	mesh := n.Mesh
	world := n.World

	for i := range mesh.Faces {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := world.MulVec3(p0)
		v1 := world.MulVec3(p1)
		v2 := world.MulVec3(p2)

		r.drawLine3D(v0, v1, color)
		r.drawLine3D(v1, v2, color)
		r.drawLine3D(v2, v0, color)
		r.Stats.Triangles++
	}
}

// materialColor converts a PBR base color to an 8-bit framebuffer color.
func materialColor(mat *scene.Material) Color {
	if mat == nil {
		return ColorGray
	}
	return RGBA(
		uint8(clamp01(mat.BaseColor[0])*255),
		uint8(clamp01(mat.BaseColor[1])*255),
		uint8(clamp01(mat.BaseColor[2])*255),
		uint8(clamp01(mat.BaseColor[3])*255),
	)
}

// materialTexture returns the decoded texture for a material, caching the
// conversion from the loader's image.Image.
func (r *Rasterizer) materialTexture(mat *scene.Material) *Texture {
	if mat == nil || !mat.HasTexture || mat.BaseMap == nil {
		return nil
	}
	if tex, ok := r.textures[mat]; ok {
		return tex
	}
	tex := TextureFromImage(mat.BaseMap)
	tex.FilterMode = FilterBilinear
	r.textures[mat] = tex
	return tex
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y   float64 // Screen coordinates
	Z      float64 // Depth (for Z-buffer)
	W      float64 // W coordinate (for perspective-correct interpolation)
	Color  Color
	Normal math3d.Vec3
	UV     math3d.Vec2
}

// projectTriangle transforms a triangle to screen space. Returns ok=false
// when the triangle is entirely behind the camera or back-facing.
func (r *Rasterizer) projectTriangle(tri Triangle) (sv [3]screenVertex, ok bool) {
	allBehind := true

	for i := range 3 {
		clipPos := r.viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))

		if clipPos.W > 0 {
			allBehind = false
		}

		if clipPos.W != 0 {
			sv[i].X = clipPos.X / clipPos.W
			sv[i].Y = clipPos.Y / clipPos.W
			sv[i].Z = clipPos.Z / clipPos.W
		}
		sv[i].W = clipPos.W

		// NDC to screen coordinates, Y flipped.
		sv[i].X = (sv[i].X + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - sv[i].Y) * 0.5 * float64(r.Height())

		sv[i].Color = tri.V[i].Color
		sv[i].Normal = tri.V[i].Normal
		sv[i].UV = tri.V[i].UV
	}

	if allBehind {
		return sv, false
	}

	// Backface culling using screen-space winding.
	if !r.DisableBackfaceCulling {
		edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
		edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
		if edge1.X*edge2.Y-edge1.Y*edge2.X < 0 {
			return sv, false
		}
	}

	return sv, true
}

// screenBounds returns the clamped pixel bounding box of a projected
// triangle.
func (r *Rasterizer) screenBounds(sv [3]screenVertex) (minX, maxX, minY, maxY int) {
	minX = int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX = int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY = int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY = int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	return
}

// DrawTriangle rasterizes a triangle, interpolating its vertex colors.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	sv, ok := r.projectTriangle(tri)
	if !ok {
		return
	}

	minX, maxX, minY, maxY := r.screenBounds(sv)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			color := interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc)

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, color)
		}
	}
}

// DrawTriangleFlat draws a triangle in a single color.
func (r *Rasterizer) DrawTriangleFlat(v0, v1, v2 math3d.Vec3, color Color) {
	r.DrawTriangle(Triangle{
		V: [3]Vertex{
			{Position: v0, Color: color},
			{Position: v1, Color: color},
			{Position: v2, Color: color},
		},
	})
}

// DrawTriangleTextured rasterizes a textured triangle with
// perspective-correct UV interpolation and per-vertex lighting.
func (r *Rasterizer) DrawTriangleTextured(tri Triangle, tex *Texture, lightDir math3d.Vec3) {
	sv, ok := r.projectTriangle(tri)
	if !ok {
		return
	}

	normLight := lightDir.Normalize()
	var vertexIntensity [3]float64
	for i := range 3 {
		intensity := math.Max(0, tri.V[i].Normal.Dot(normLight))
		vertexIntensity[i] = 0.3 + 0.7*intensity // Ambient + diffuse
	}

	minX, maxX, minY, maxY := r.screenBounds(sv)

	// Perspective-correct interpolation factors (1/w per vertex).
	var invW [3]float64
	for i := range 3 {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			// Interpolate UV/W and 1/W, then divide for correct UVs.
			w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
			oneOverW := w0 + w1 + w2
			if oneOverW == 0 {
				continue
			}

			u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
			v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
			intensity := (w0*vertexIntensity[0] + w1*vertexIntensity[1] + w2*vertexIntensity[2]) / oneOverW

			litColor := MultiplyColor(tex.Sample(u, v), intensity)

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, litColor)
		}
	}
}

// drawLine3D draws a 3D line projected to the screen.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	clipA := r.viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := r.viewProj.MulVec4(math3d.V4FromV3(b, 1))

	// Skip if both behind camera.
	if clipA.W <= 0 && clipB.W <= 0 {
		return
	}

	if clipA.W > 0 {
		clipA.X /= clipA.W
		clipA.Y /= clipA.W
	}
	if clipB.W > 0 {
		clipB.X /= clipB.W
		clipB.Y /= clipB.W
	}

	x0 := int((clipA.X + 1) * 0.5 * float64(r.Width()))
	y0 := int((1 - clipA.Y) * 0.5 * float64(r.Height()))
	x1 := int((clipB.X + 1) * 0.5 * float64(r.Width()))
	y1 := int((1 - clipB.Y) * 0.5 * float64(r.Height()))

	r.fb.DrawLine(x0, y0, x1, y1, color)
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
