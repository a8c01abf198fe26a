package scene

import (
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Validator guarantees that every node reachable from a given root exposes
// structurally valid local and world matrices before any consumer reads
// them. Models stream in asynchronously and may leave partially initialized
// nodes in the graph between frames, so validation is an every-frame,
// idempotent repair pass rather than a one-time construction step.
//
// Validation never fails: anomalies are silently repaired, and nodes are
// simply skipped when nil.
type Validator struct {
	// MaxDepth bounds recursion through the graph. Defaults to
	// DefaultMaxDepth when zero.
	MaxDepth int
}

// NewValidator creates a validator with the default recursion bound.
func NewValidator() *Validator {
	return &Validator{MaxDepth: DefaultMaxDepth}
}

func (v *Validator) maxDepth() int {
	if v.MaxDepth > 0 {
		return v.MaxDepth
	}
	return DefaultMaxDepth
}

// ValidateBranch repairs n, its ancestors, and everything reachable from n
// (children, shared bones, shadow cameras). Ancestors are repaired
// root-first because a child's world matrix multiplies its parent's; a
// corrupt parent would poison every repaired descendant.
func (v *Validator) ValidateBranch(n *Node) {
	if n == nil {
		return
	}

	// Climb to the root, bounded in case the parent chain is cyclic.
	var ancestry []*Node
	cur := n
	for range v.maxDepth() {
		if cur == nil {
			break
		}
		ancestry = append(ancestry, cur)
		cur = cur.parent
	}
	// Repair root-first.
	for i := len(ancestry) - 1; i >= 0; i-- {
		repairNode(ancestry[i])
	}

	visited := make(map[*Node]struct{})
	v.validateRecursive(n, visited, v.maxDepth())
}

func (v *Validator) validateRecursive(n *Node, visited map[*Node]struct{}, depth int) {
	if n == nil || depth <= 0 {
		return
	}
	if _, ok := visited[n]; ok {
		return
	}
	visited[n] = struct{}{}

	repairNode(n)

	for _, c := range n.children {
		v.validateRecursive(c, visited, depth-1)
	}
	for _, b := range n.Bones {
		v.validateRecursive(b, visited, depth-1)
	}
	if n.ShadowCamera != nil {
		v.validateRecursive(n.ShadowCamera, visited, depth-1)
	}
}

// repairNode resets any structurally corrupt transform state to a usable
// default. Idempotent: a valid node is left untouched.
func repairNode(n *Node) {
	if !n.Position.IsFinite() {
		n.Position = math3d.Zero3()
		n.worldDirty = true
	}
	if !n.Rotation.IsFinite() {
		n.Rotation = math3d.Zero3()
		n.worldDirty = true
	}
	if !n.Scale.IsFinite() {
		n.Scale = math3d.V3(1, 1, 1)
		n.worldDirty = true
	}
	if !n.Local.IsFinite() {
		n.Local = math3d.Identity()
		n.worldDirty = true
	}
	if !n.World.IsFinite() {
		n.World = math3d.Identity()
		n.worldDirty = true
	}
}

// UpdateLocal recomputes every reachable node's local matrix from its
// position/rotation/scale, top-down. Nodes with AutoUpdate disabled keep
// their baked local matrix. Run ValidateBranch first: composition assumes
// finite inputs.
func (v *Validator) UpdateLocal(root *Node) {
	if root == nil {
		return
	}
	visited := make(map[*Node]struct{})
	v.updateLocalRecursive(root, visited, v.maxDepth())
}

func (v *Validator) updateLocalRecursive(n *Node, visited map[*Node]struct{}, depth int) {
	if n == nil || depth <= 0 {
		return
	}
	if _, ok := visited[n]; ok {
		return
	}
	visited[n] = struct{}{}

	if n.AutoUpdate {
		local := math3d.TRS(n.Position, n.Rotation, n.Scale)
		if local != n.Local {
			n.Local = local
			n.worldDirty = true
		}
	}

	for _, c := range n.children {
		v.updateLocalRecursive(c, visited, depth-1)
	}
	for _, b := range n.Bones {
		v.updateLocalRecursive(b, visited, depth-1)
	}
	if n.ShadowCamera != nil {
		v.updateLocalRecursive(n.ShadowCamera, visited, depth-1)
	}
}

// UpdateWorld recomputes every reachable node's world matrix as
// parent-world * local, top-down. Unchanged subtrees are skipped unless
// force is set; once a node recomputes, the whole subtree below it does
// too.
func (v *Validator) UpdateWorld(root *Node, force bool) {
	if root == nil {
		return
	}
	visited := make(map[*Node]struct{})
	v.updateWorldRecursive(root, visited, v.maxDepth(), force)
}

func (v *Validator) updateWorldRecursive(n *Node, visited map[*Node]struct{}, depth int, force bool) {
	if n == nil || depth <= 0 {
		return
	}
	if _, ok := visited[n]; ok {
		return
	}
	visited[n] = struct{}{}

	if force || n.worldDirty {
		if n.parent == nil {
			n.World = n.Local
		} else {
			n.World = n.parent.World.Mul(n.Local)
		}
		n.worldDirty = false
		force = true // descendants inherit the recompute
	}

	for _, c := range n.children {
		v.updateWorldRecursive(c, visited, depth-1, force)
	}
	for _, b := range n.Bones {
		v.updateWorldRecursive(b, visited, depth-1, force)
	}
	if n.ShadowCamera != nil {
		v.updateWorldRecursive(n.ShadowCamera, visited, depth-1, force)
	}
}

// Refresh is the full per-frame pipeline: validate, then recompose locals,
// then propagate worlds. The order matters; both update passes assume the
// graph has already been repaired.
func (v *Validator) Refresh(root *Node) {
	v.ValidateBranch(root)
	v.UpdateLocal(root)
	v.UpdateWorld(root, false)
}
