package models

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

func idx(i int) *int { return &i }

func ptrFloat(f float64) *float64 { return &f }

func floatBytes(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func u16Bytes(vals ...uint16) []byte {
	b := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

// triangleDoc builds a single-triangle document: positions (0,0,0),
// (1,0,0), (0,1,0) indexed 0,1,2, one node in one scene.
func triangleDoc() *gltf.Document {
	data := append(floatBytes(
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	), u16Bytes(0, 1, 2)...)

	return &gltf.Document{
		Scene:  idx(0),
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Nodes:  []*gltf.Node{{Name: "tri", Mesh: idx(0)}},
		Meshes: []*gltf.Mesh{{
			Name: "tri-mesh",
			Primitives: []*gltf.Primitive{{
				Mode:       gltf.PrimitiveTriangles,
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    idx(1),
			}},
		}},
		Accessors: []*gltf.Accessor{
			{BufferView: idx(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: idx(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
	}
}

func TestLoaderDefaults(t *testing.T) {
	l := NewLoader(nil)
	if !l.CalculateNormals || !l.SmoothNormals {
		t.Error("normal generation should default on")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), "/nonexistent/path.glb"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestBuildTriangle(t *testing.T) {
	root, err := NewLoader(nil).build(context.Background(), triangleDoc(), ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if root.Name != "tri.glb" {
		t.Errorf("root name = %q", root.Name)
	}
	children := root.Children()
	if len(children) != 1 {
		t.Fatalf("got %d children, want 1", len(children))
	}
	n := children[0]
	if n.Name != "tri" {
		t.Errorf("node name = %q", n.Name)
	}
	if n.Mesh == nil {
		t.Fatal("node has no mesh")
	}

	mesh := n.Mesh
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices / %d faces, want 3 / 1", mesh.VertexCount(), mesh.TriangleCount())
	}

	// Winding reversed from the document's counter-clockwise order.
	if got := mesh.Faces[0].V; got != [3]int{0, 2, 1} {
		t.Errorf("face indices = %v, want [0 2 1]", got)
	}

	// Normals generated since the document carries none.
	for i, v := range mesh.Vertices {
		if math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Errorf("vertex %d normal length = %v, want 1", i, v.Normal.Len())
		}
	}

	if mesh.BoundsMin != math3d.Zero3() || mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}
	if !mesh.BoundingSphere.IsValid() {
		t.Error("bounding sphere not computed")
	}
}

func TestBuildKeepsDocumentNormals(t *testing.T) {
	doc := triangleDoc()
	normals := floatBytes(
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	)
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView: idx(2), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3,
	})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer: 1, ByteLength: len(normals),
	})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: len(normals), Data: normals})
	doc.Meshes[0].Primitives[0].Attributes[gltf.NORMAL] = 2

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mesh := root.Children()[0].Mesh
	for i, v := range mesh.Vertices {
		if v.Normal != math3d.V3(0, 0, 1) {
			t.Errorf("vertex %d normal = %v, want (0,0,1)", i, v.Normal)
		}
	}
}

func TestBuildNodeTransform(t *testing.T) {
	angle := math.Pi / 3
	doc := triangleDoc()
	doc.Nodes[0].Translation = [3]float64{1, 2, 3}
	doc.Nodes[0].Rotation = [4]float64{math.Sin(angle / 2), 0, 0, math.Cos(angle / 2)}
	doc.Nodes[0].Scale = [3]float64{2, 2, 2}

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	n := root.Children()[0]

	if n.Immutable || !n.AutoUpdate {
		t.Error("TRS node should stay auto-updating and mutable")
	}
	if n.Position != math3d.V3(1, 2, 3) {
		t.Errorf("position = %v", n.Position)
	}
	if math.Abs(n.Rotation.X-angle) > 1e-9 || math.Abs(n.Rotation.Y) > 1e-9 || math.Abs(n.Rotation.Z) > 1e-9 {
		t.Errorf("rotation = %v, want (%v, 0, 0)", n.Rotation, angle)
	}
	if n.Scale != math3d.V3(2, 2, 2) {
		t.Errorf("scale = %v", n.Scale)
	}
}

func TestBuildBakedMatrixIsImmutable(t *testing.T) {
	doc := triangleDoc()
	doc.Nodes[0].Matrix = [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		2, 0, 0, 1,
	}

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	n := root.Children()[0]

	if !n.Immutable || n.AutoUpdate {
		t.Error("baked matrix node should be immutable with auto-update off")
	}
	if got := n.Local.Translation(); got != math3d.V3(2, 0, 0) {
		t.Errorf("baked translation = %v, want (2,0,0)", got)
	}
}

func TestBuildSharedMeshPayload(t *testing.T) {
	doc := triangleDoc()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "tri2", Mesh: idx(0)})
	doc.Scenes[0].Nodes = []int{0, 1}

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	children := root.Children()
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	if children[0].Mesh != children[1].Mesh {
		t.Error("nodes sharing a document mesh should share the payload")
	}
}

func TestBuildMaterials(t *testing.T) {
	doc := triangleDoc()
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
			MetallicFactor:  ptrFloat(0.5),
			RoughnessFactor: ptrFloat(0.25),
		},
	}}
	doc.Meshes[0].Primitives[0].Material = idx(0)

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mesh := root.Children()[0].Mesh

	if got := mesh.Faces[0].Material; got != 0 {
		t.Fatalf("face material = %d, want 0", got)
	}
	mat := mesh.GetMaterial(0)
	if mat == nil {
		t.Fatal("material missing")
	}
	if mat.Name != "red" || mat.BaseColor != [4]float64{1, 0, 0, 1} {
		t.Errorf("material = %+v", mat)
	}
	if mat.Metallic != 0.5 || mat.Roughness != 0.25 {
		t.Errorf("metallic/roughness = %v/%v", mat.Metallic, mat.Roughness)
	}
}

func TestBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).build(ctx, triangleDoc(), ".", "tri.glb")
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildDuplicateNodeReference(t *testing.T) {
	doc := triangleDoc()
	// Node 0 listed twice in the scene; the second reference is dropped.
	doc.Scenes[0].Nodes = []int{0, 0}

	root, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(root.Children()); got != 1 {
		t.Errorf("got %d children, want 1", got)
	}
}

func TestBuildAccessorOverrun(t *testing.T) {
	doc := triangleDoc()
	doc.Accessors[0].Count = 100 // claims more vertices than the buffer holds

	if _, err := NewLoader(nil).build(context.Background(), doc, ".", "tri.glb"); err == nil {
		t.Error("expected overrun error")
	}
}
