// Package scene provides the mutable 3D scene graph: transform nodes with
// local/world matrices, mesh and light payloads, and the matrix integrity
// validator that keeps the graph consistent while models stream in.
package scene

import (
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// DefaultMaxDepth bounds graph traversals so a corrupted parent/child wiring
// can never hang the render loop.
const DefaultMaxDepth = 5000

// Node is a transform node in the scene graph. World transforms always
// satisfy world = parent.world * local once the validator has run.
//
// Children are owned by the node; the parent pointer is a back-reference
// only. Bones are shared references into another subtree (skinned meshes
// reuse skeleton nodes), and ShadowCamera is an owned sub-node that lives
// outside the Children list, mirroring how light shadow cameras hang off
// their light rather than the visible hierarchy.
type Node struct {
	Name string

	// Decomposed local transform. Local is recomposed from these by
	// Validator.UpdateLocal unless AutoUpdate is false.
	Position math3d.Vec3
	Rotation math3d.Vec3 // Euler XYZ, radians
	Scale    math3d.Vec3

	Local math3d.Mat4
	World math3d.Mat4

	// AutoUpdate controls whether UpdateLocal recomposes Local from
	// Position/Rotation/Scale. Loaders clear it for baked matrices.
	AutoUpdate bool

	// Immutable marks a baked local transform that must not be
	// repositioned directly. The comparison positioner wraps such nodes
	// in a pivot instead of assigning Position.
	Immutable bool

	Visible bool

	Mesh  *Mesh
	Light *Light

	// Bones are shared, non-owning references (skeleton nodes reachable
	// from several meshes). Traversals must tolerate revisiting them.
	Bones []*Node

	// ShadowCamera is an owned sub-node used by shadow-casting lights.
	ShadowCamera *Node

	parent     *Node
	children   []*Node
	worldDirty bool
}

// NewNode creates a node with identity transforms.
func NewNode(name string) *Node {
	return &Node{
		Name:       name,
		Scale:      math3d.V3(1, 1, 1),
		Local:      math3d.Identity(),
		World:      math3d.Identity(),
		AutoUpdate: true,
		Visible:    true,
		worldDirty: true,
	}
}

// Parent returns the owning parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the owned child list. Callers must not mutate it.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild appends child to n, detaching it from any previous parent.
// Adding nil or self is a no-op.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	child.worldDirty = true
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n. Unknown children are ignored.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			child.worldDirty = true
			return
		}
	}
}

// Root climbs to the top of the hierarchy. Climbing is depth-bounded so a
// cyclic parent chain terminates instead of spinning.
func (n *Node) Root() *Node {
	cur := n
	for range DefaultMaxDepth {
		if cur.parent == nil {
			return cur
		}
		cur = cur.parent
	}
	return cur
}

// Walk visits n and everything reachable from it: children, shared bones,
// and shadow cameras. The graph may contain shared subtrees, so visits are
// deduplicated by node identity and recursion is depth-bounded. fn returning
// false prunes the subtree below the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	visited := make(map[*Node]struct{})
	walk(n, fn, visited, DefaultMaxDepth)
}

func walk(n *Node, fn func(*Node) bool, visited map[*Node]struct{}, depth int) {
	if n == nil || depth <= 0 {
		return
	}
	if _, ok := visited[n]; ok {
		return
	}
	visited[n] = struct{}{}

	if !fn(n) {
		return
	}
	for _, c := range n.children {
		walk(c, fn, visited, depth-1)
	}
	for _, b := range n.Bones {
		walk(b, fn, visited, depth-1)
	}
	if n.ShadowCamera != nil {
		walk(n.ShadowCamera, fn, visited, depth-1)
	}
}

// WorldBounds returns the union of all mesh bounding boxes under n,
// transformed into world space. Run the validator first so world matrices
// are current. Returns an empty box for a graph without geometry.
func (n *Node) WorldBounds() math3d.AABB {
	bounds := math3d.EmptyAABB()
	n.Walk(func(node *Node) bool {
		if !node.Visible {
			return false
		}
		if node.Mesh != nil && node.Mesh.VertexCount() > 0 {
			local := math3d.NewAABB(node.Mesh.BoundsMin, node.Mesh.BoundsMax)
			bounds = bounds.Union(local.Transform(node.World))
		}
		return true
	})
	return bounds
}

// LocalBounds returns the union of mesh bounding boxes under n in n's own
// coordinate frame (ignoring n's world placement but honoring transforms of
// descendants relative to n).
func (n *Node) LocalBounds() math3d.AABB {
	inv := n.World.Inverse()
	bounds := math3d.EmptyAABB()
	n.Walk(func(node *Node) bool {
		if !node.Visible {
			return false
		}
		if node.Mesh != nil && node.Mesh.VertexCount() > 0 {
			local := math3d.NewAABB(node.Mesh.BoundsMin, node.Mesh.BoundsMax)
			rel := inv.Mul(node.World)
			bounds = bounds.Union(local.Transform(rel))
		}
		return true
	})
	return bounds
}

// NormalMatrix derives the 3x3 normal matrix from the node's world
// transform.
func (n *Node) NormalMatrix() math3d.Mat3 {
	return math3d.NormalMatrix(n.World)
}
