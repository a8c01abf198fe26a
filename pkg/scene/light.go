package scene

import "github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"

// Light is a light-source payload. Shadow-casting lights own a shadow
// camera sub-node (Node.ShadowCamera) that the validator repairs along with
// the rest of the graph.
type Light struct {
	Color      [3]float64
	Intensity  float64
	CastShadow bool
}

// NewDirectionalLight creates a light node aimed along dir with an owned
// shadow camera sub-node.
func NewDirectionalLight(name string, dir math3d.Vec3, intensity float64) *Node {
	n := NewNode(name)
	n.Light = &Light{
		Color:      [3]float64{1, 1, 1},
		Intensity:  intensity,
		CastShadow: true,
	}
	n.Position = dir.Normalize().Scale(10)
	n.ShadowCamera = NewNode(name + "-shadow")
	return n
}
