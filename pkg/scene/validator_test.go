package scene

import (
	"math"
	"testing"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

const eps = 1e-9

func matsNearlyEqual(a, b math3d.Mat4) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// buildGraph returns root -> mid -> leaf with distinct transforms.
func buildGraph() (root, mid, leaf *Node) {
	root = NewNode("root")
	mid = NewNode("mid")
	leaf = NewNode("leaf")

	mid.Position = math3d.V3(1, 2, 3)
	mid.Rotation = math3d.V3(0, math.Pi/4, 0)
	leaf.Position = math3d.V3(-5, 0, 1)
	leaf.Scale = math3d.V3(2, 2, 2)

	root.AddChild(mid)
	mid.AddChild(leaf)
	return root, mid, leaf
}

func TestWorldEqualsParentWorldTimesLocal(t *testing.T) {
	root, _, _ := buildGraph()
	v := NewValidator()
	v.Refresh(root)

	root.Walk(func(n *Node) bool {
		want := n.Local
		if n.Parent() != nil {
			want = n.Parent().World.Mul(n.Local)
		}
		if !matsNearlyEqual(n.World, want) {
			t.Errorf("node %q: world != parent.world * local", n.Name)
		}
		return true
	})
}

func TestValidateRepairsCorruptMatrices(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name    string
		corrupt func(*Node)
	}{
		{"nan local", func(n *Node) { n.Local[5] = nan }},
		{"inf world", func(n *Node) { n.World[0] = math.Inf(1) }},
		{"nan position", func(n *Node) { n.Position.X = nan }},
		{"nan scale", func(n *Node) { n.Scale = math3d.V3(nan, nan, nan) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root, mid, leaf := buildGraph()
			v := NewValidator()
			v.Refresh(root)

			tc.corrupt(mid)
			v.Refresh(root)

			for _, n := range []*Node{root, mid, leaf} {
				if !n.Local.IsFinite() || !n.World.IsFinite() {
					t.Fatalf("node %q still corrupt after validate", n.Name)
				}
			}
		})
	}
}

func TestValidateBranchRepairsAncestorsFirst(t *testing.T) {
	root, mid, leaf := buildGraph()
	v := NewValidator()
	v.Refresh(root)

	// Corrupt an ancestor, then validate starting from the leaf.
	root.World[3] = math.NaN()
	v.ValidateBranch(leaf)

	if !root.World.IsFinite() {
		t.Error("ancestor world not repaired by ValidateBranch on leaf")
	}
	if !mid.World.IsFinite() || !leaf.World.IsFinite() {
		t.Error("branch not repaired")
	}
}

func TestValidateIdempotent(t *testing.T) {
	root, mid, leaf := buildGraph()
	v := NewValidator()
	v.Refresh(root)

	before := map[*Node]math3d.Mat4{
		root: root.World, mid: mid.World, leaf: leaf.World,
	}

	// A second full pass over a valid graph must not mutate anything.
	v.Refresh(root)

	for n, w := range before {
		if n.World != w {
			t.Errorf("node %q world mutated by second validate", n.Name)
		}
	}
}

func TestWalkToleratesSharedBones(t *testing.T) {
	root := NewNode("root")
	armature := NewNode("armature")
	bone := NewNode("bone")
	armature.AddChild(bone)
	root.AddChild(armature)

	// Two meshes share the same bone.
	meshA := NewNode("meshA")
	meshB := NewNode("meshB")
	meshA.Bones = []*Node{bone}
	meshB.Bones = []*Node{bone}
	root.AddChild(meshA)
	root.AddChild(meshB)

	visits := 0
	root.Walk(func(n *Node) bool {
		if n == bone {
			visits++
		}
		return true
	})
	if visits != 1 {
		t.Errorf("shared bone visited %d times, want 1", visits)
	}
}

func TestWalkTerminatesOnCycle(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	a.AddChild(b)
	// Forge a cycle through the shared-bone references.
	b.Bones = []*Node{a}

	count := 0
	a.Walk(func(n *Node) bool {
		count++
		return true
	})
	if count != 2 {
		t.Errorf("cyclic graph visited %d nodes, want 2", count)
	}

	// Validation must also terminate.
	NewValidator().Refresh(a)
}

func TestValidatorRepairsShadowCamera(t *testing.T) {
	root := NewNode("root")
	light := NewDirectionalLight("sun", math3d.V3(0.5, 1, 0.3), 1)
	root.AddChild(light)

	light.ShadowCamera.World[10] = math.NaN()
	NewValidator().Refresh(root)

	if !light.ShadowCamera.World.IsFinite() {
		t.Error("shadow camera world not repaired")
	}
}

func TestUpdateWorldSkipsCleanSubtrees(t *testing.T) {
	root, mid, _ := buildGraph()
	v := NewValidator()
	v.Refresh(root)

	// Nothing changed: worlds are stable.
	midWorld := mid.World
	v.UpdateLocal(root)
	v.UpdateWorld(root, false)
	if mid.World != midWorld {
		t.Error("clean subtree recomputed to different world")
	}

	// Moving the root must reach the leaf without force.
	root.Position = math3d.V3(10, 0, 0)
	v.UpdateLocal(root)
	v.UpdateWorld(root, false)
	if math.Abs(mid.World.Translation().X-11) > eps {
		t.Errorf("child world did not follow parent move: %v", mid.World.Translation())
	}
}

func TestWorldBoundsUnitCube(t *testing.T) {
	root := NewNode("root")
	child := NewNode("cube")
	child.Mesh = UnitCube()
	child.Position = math3d.V3(0, 3, 0)
	root.AddChild(child)

	NewValidator().Refresh(root)

	b := root.WorldBounds()
	if b.IsEmpty() {
		t.Fatal("bounds empty for cube scene")
	}
	if math.Abs(b.Center().Y-3) > eps {
		t.Errorf("bounds center Y = %v, want 3", b.Center().Y)
	}
	if math.Abs(b.MaxDimension()-1) > eps {
		t.Errorf("max dimension = %v, want 1", b.MaxDimension())
	}
}

func TestWorldBoundsEmptyGraph(t *testing.T) {
	root := NewNode("root")
	root.AddChild(NewNode("empty"))
	NewValidator().Refresh(root)

	if !root.WorldBounds().IsEmpty() {
		t.Error("graph without geometry should report empty bounds")
	}
}
