// Package models loads glTF and GLB documents into scene graphs.
package models

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/qmuntal/gltf"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/scene"
)

// Loader reads glTF/GLB documents and builds scene.Node hierarchies.
type Loader struct {
	// CalculateNormals generates normals for primitives that ship
	// without them.
	CalculateNormals bool
	// SmoothNormals averages generated normals across shared vertices
	// instead of flat per-face shading.
	SmoothNormals bool

	log *log.Logger
}

// NewLoader creates a loader with default options. A nil logger discards
// output.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		CalculateNormals: true,
		SmoothNormals:    true,
		log:              logger,
	}
}

// Load reads the glTF or GLB file at path and returns the root of the
// loaded hierarchy. The document's node tree is preserved: each document
// node becomes a scene node carrying its own transform, with meshes
// attached as payloads. Loading checks ctx between meshes so a large
// document can be abandoned mid-parse.
func Load(ctx context.Context, path string) (*scene.Node, error) {
	return NewLoader(nil).Load(ctx, path)
}

// Load implements the package-level Load with the loader's options.
func (l *Loader) Load(ctx context.Context, path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.build(ctx, doc, filepath.Dir(path), filepath.Base(path))
}

// build assembles the scene graph from a parsed document. dir resolves
// relative texture URIs; name becomes the root node's name.
func (l *Loader) build(ctx context.Context, doc *gltf.Document, dir, name string) (*scene.Node, error) {
	materials := l.buildMaterials(doc, dir)

	b := &docBuilder{
		loader:    l,
		doc:       doc,
		materials: materials,
		meshes:    make(map[int]*scene.Mesh),
		visited:   make(map[int]bool),
	}

	root := scene.NewNode(name)

	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = *doc.Scene
		}
		for _, ni := range doc.Scenes[sceneIdx].Nodes {
			child, err := b.node(ctx, ni)
			if err != nil {
				return nil, err
			}
			if child != nil {
				root.AddChild(child)
			}
		}
		return root, nil
	}

	// Documents without a scene: expose every mesh under the root.
	for i := range doc.Meshes {
		mesh, err := b.mesh(ctx, i)
		if err != nil {
			return nil, err
		}
		n := scene.NewNode(doc.Meshes[i].Name)
		n.Mesh = mesh
		root.AddChild(n)
	}
	return root, nil
}

// docBuilder carries per-document state through the node walk. Meshes are
// cached so document nodes sharing a mesh share the payload.
type docBuilder struct {
	loader    *Loader
	doc       *gltf.Document
	materials []scene.Material
	meshes    map[int]*scene.Mesh
	visited   map[int]bool
}

var identityMatrix = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (b *docBuilder) node(ctx context.Context, idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	// A malformed document can reference a node from two parents or form
	// a cycle; each document node maps to at most one scene node.
	if b.visited[idx] {
		b.loader.log.Warn("node referenced more than once, skipping", "node", idx)
		return nil, nil
	}
	b.visited[idx] = true

	gn := b.doc.Nodes[idx]
	n := scene.NewNode(gn.Name)
	applyTransform(n, gn)

	if gn.Mesh != nil {
		mesh, err := b.mesh(ctx, *gn.Mesh)
		if err != nil {
			return nil, err
		}
		n.Mesh = mesh
	}

	for _, ci := range gn.Children {
		child, err := b.node(ctx, ci)
		if err != nil {
			return nil, err
		}
		if child != nil {
			n.AddChild(child)
		}
	}
	return n, nil
}

// applyTransform copies the document node's transform onto n. A baked
// matrix is kept as-is and marked immutable; TRS nodes decompose into the
// node's position/rotation/scale so the validator can recompose them.
func applyTransform(n *scene.Node, gn *gltf.Node) {
	if gn.Matrix != ([16]float64{}) && gn.Matrix != identityMatrix {
		n.Local = math3d.Mat4(gn.Matrix)
		n.AutoUpdate = false
		n.Immutable = true
		return
	}

	rot := gn.Rotation
	if rot == ([4]float64{}) {
		rot = [4]float64{0, 0, 0, 1}
	}
	scl := gn.Scale
	if scl == ([3]float64{}) {
		scl = [3]float64{1, 1, 1}
	}

	n.Position = math3d.V3(gn.Translation[0], gn.Translation[1], gn.Translation[2])
	n.Rotation = math3d.Quat{X: rot[0], Y: rot[1], Z: rot[2], W: rot[3]}.Euler()
	n.Scale = math3d.V3(scl[0], scl[1], scl[2])
}

// mesh builds (or returns the cached) scene mesh for document mesh idx.
// Primitives merge into one mesh; each face keeps its material index.
func (b *docBuilder) mesh(ctx context.Context, idx int) (*scene.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m, ok := b.meshes[idx]; ok {
		return m, nil
	}
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	gm := b.doc.Meshes[idx]

	mesh := scene.NewMesh(gm.Name)
	mesh.Materials = b.materials

	for _, prim := range gm.Primitives {
		if err := b.primitive(mesh, prim); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
		}
	}

	if b.loader.CalculateNormals && !hasNormals(mesh) {
		if b.loader.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	mesh.CalculateBounds()
	mesh.CalculateBoundingSphere()

	b.meshes[idx] = mesh
	return mesh, nil
}

func (b *docBuilder) primitive(mesh *scene.Mesh, prim *gltf.Primitive) error {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		// Lines and points are not renderable geometry here.
		return nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := b.readVec3(posIdx)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = b.readVec3(ni); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs []math3d.Vec2
	if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = b.readVec2(ti); err != nil {
			return fmt.Errorf("read uvs: %w", err)
		}
	}

	base := len(mesh.Vertices)
	for i := range positions {
		v := scene.MeshVertex{Position: positions[i]}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// glTF UVs have V=0 at the top; flip for a bottom-left origin.
			v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	material := -1
	if prim.Material != nil {
		material = *prim.Material
	}

	// glTF front faces wind counter-clockwise; the rasterizer's Y-flip
	// makes clockwise the front side, so the winding reverses here.
	if prim.Indices != nil {
		indices, err := b.readIndices(*prim.Indices)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, scene.Face{
				V:        [3]int{base + indices[i], base + indices[i+2], base + indices[i+1]},
				Material: material,
			})
		}
		return nil
	}
	for i := 0; i+2 < len(positions); i += 3 {
		mesh.Faces = append(mesh.Faces, scene.Face{
			V:        [3]int{base + i, base + i + 2, base + i + 1},
			Material: material,
		})
	}
	return nil
}

func hasNormals(m *scene.Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// buildMaterials converts the document's materials, decoding base color
// textures. Decode failures degrade to untextured materials with a warning
// rather than failing the load.
func (l *Loader) buildMaterials(doc *gltf.Document, dir string) []scene.Material {
	out := make([]scene.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := scene.Material{
			Name:      gm.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Roughness: 1,
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				if img := l.decodeTexture(doc, dir, pbr.BaseColorTexture.Index); img != nil {
					m.BaseMap = img
					m.HasTexture = true
				}
			}
		}
		out[i] = m
	}
	return out
}

// decodeTexture resolves texture idx to a decoded image, from either an
// embedded buffer view or an external file next to the document.
func (l *Loader) decodeTexture(doc *gltf.Document, dir string, idx int) image.Image {
	if idx < 0 || idx >= len(doc.Textures) {
		return nil
	}
	tex := doc.Textures[idx]
	if tex.Source == nil || *tex.Source >= len(doc.Images) {
		return nil
	}
	gi := doc.Images[*tex.Source]

	var data []byte
	switch {
	case gi.BufferView != nil:
		bv := doc.BufferViews[*gi.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case gi.URI != "":
		raw, err := os.ReadFile(filepath.Join(dir, gi.URI))
		if err != nil {
			l.log.Warn("texture file unreadable", "uri", gi.URI, "err", err)
			return nil
		}
		data = raw
	default:
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		l.log.Warn("texture decode failed", "image", gi.Name, "err", err)
		return nil
	}
	return img
}

// readVec3 decodes a VEC3 float accessor.
func (b *docBuilder) readVec3(accessorIdx int) ([]math3d.Vec3, error) {
	acc := b.doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", acc.Type)
	}
	raw, stride, err := b.accessorBytes(acc, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, acc.Count)
	for i := range acc.Count {
		off := i * stride
		out[i] = math3d.V3(
			float64(readFloat32(raw[off:])),
			float64(readFloat32(raw[off+4:])),
			float64(readFloat32(raw[off+8:])),
		)
	}
	return out, nil
}

// readVec2 decodes a VEC2 float accessor.
func (b *docBuilder) readVec2(accessorIdx int) ([]math3d.Vec2, error) {
	acc := b.doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", acc.Type)
	}
	raw, stride, err := b.accessorBytes(acc, 8)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, acc.Count)
	for i := range acc.Count {
		off := i * stride
		out[i] = math3d.V2(
			float64(readFloat32(raw[off:])),
			float64(readFloat32(raw[off+4:])),
		)
	}
	return out, nil
}

// readIndices decodes a scalar index accessor of any component width.
func (b *docBuilder) readIndices(accessorIdx int) ([]int, error) {
	acc := b.doc.Accessors[accessorIdx]
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", acc.Type)
	}

	var width int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", acc.ComponentType)
	}

	raw, stride, err := b.accessorBytes(acc, width)
	if err != nil {
		return nil, err
	}
	out := make([]int, acc.Count)
	for i := range acc.Count {
		off := i * stride
		switch width {
		case 1:
			out[i] = int(raw[off])
		case 2:
			out[i] = int(uint16(raw[off]) | uint16(raw[off+1])<<8)
		case 4:
			out[i] = int(uint32(raw[off]) | uint32(raw[off+1])<<8 |
				uint32(raw[off+2])<<16 | uint32(raw[off+3])<<24)
		}
	}
	return out, nil
}

// accessorBytes resolves an accessor to its backing byte slice and
// effective stride. elemSize is the tightly packed element size, used when
// the buffer view declares no stride.
func (b *docBuilder) accessorBytes(acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := b.doc.BufferViews[*acc.BufferView]
	buf := b.doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acc.ByteOffset
	need := start + elemSize
	if acc.Count > 0 {
		need = start + (acc.Count-1)*stride + elemSize
	}
	if need > len(buf.Data) {
		return nil, 0, fmt.Errorf("accessor overruns buffer: need %d bytes, have %d", need, len(buf.Data))
	}
	return buf.Data[start:], stride, nil
}

func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
