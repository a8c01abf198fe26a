// Package compare arranges two models side by side for visual comparison
// and frames the camera on the pair.
package compare

import (
	"errors"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/scene"
)

// separationFactor scales the center-to-center gap relative to the
// larger model's largest dimension.
const separationFactor = 1.5

// slot is one side of the arrangement. positioned is the node whose
// Position the layout sets: the model root itself, or a pivot wrapper
// when the model carries an immutable baked transform.
type slot struct {
	positioned *scene.Node
	model      *scene.Node
}

func (s slot) wrapped() bool {
	return s.positioned != s.model
}

// setPosition moves the slot's geometry to target in parent space. For a
// wrapped model the baked local offset is subtracted, so the geometry
// lands where the target asks without mutating the baked matrix.
func (s slot) setPosition(target math3d.Vec3) {
	if s.wrapped() {
		s.positioned.Position = target.Sub(s.model.Local.Translation())
		return
	}
	s.positioned.Position = target
}

// position returns the effective arranged position (inverse of
// setPosition).
func (s slot) position() math3d.Vec3 {
	if s.wrapped() {
		return s.positioned.Position.Add(s.model.Local.Translation())
	}
	return s.positioned.Position
}

// Pair tracks a side-by-side arrangement of two models.
type Pair struct {
	a, b   slot
	parent *scene.Node
}

// NodeA returns the positioned node for the first model.
func (p *Pair) NodeA() *scene.Node { return p.a.positioned }

// NodeB returns the positioned node for the second model.
func (p *Pair) NodeB() *scene.Node { return p.b.positioned }

// Positioner lays out model pairs and delegates framing to the rig.
type Positioner struct {
	rig       *camera.Rig
	validator *scene.Validator
	tolerance float64
	log       *log.Logger
}

// NewPositioner creates a positioner framing through rig. A nil logger
// discards output.
func NewPositioner(rig *camera.Rig, centerTolerance float64, logger *log.Logger) *Positioner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Positioner{
		rig:       rig,
		validator: scene.NewValidator(),
		tolerance: centerTolerance,
		log:       logger,
	}
}

// Arrange places two models side by side under parent: positions reset,
// separation derived from the larger model's size, bottoms grounded at y=0,
// the pair recentered on the origin when it drifts past the tolerance,
// and the camera fitted to both. Models with baked immutable transforms
// are wrapped in a pivot node so the arrangement never mutates them.
func (p *Positioner) Arrange(parent, modelA, modelB *scene.Node) (*Pair, error) {
	if parent == nil || modelA == nil || modelB == nil {
		return nil, errors.New("compare: nil node")
	}

	pair := &Pair{
		a:      mount(parent, modelA),
		b:      mount(parent, modelB),
		parent: parent,
	}

	// Both at the origin first so the bounds reflect geometry only.
	pair.a.setPosition(math3d.Zero3())
	pair.b.setPosition(math3d.Zero3())
	p.validator.Refresh(parent)

	boundsA := pair.a.positioned.WorldBounds()
	boundsB := pair.b.positioned.WorldBounds()
	if boundsA.IsEmpty() || boundsB.IsEmpty() {
		p.log.Warn("empty model bounds, skipping arrangement",
			"a", boundsA.IsEmpty(), "b", boundsB.IsEmpty())
		return pair, nil
	}

	larger := math.Max(boundsA.Size().MaxComponent(), boundsB.Size().MaxComponent())
	separation := separationFactor * larger

	// Side by side on X, bottoms on the ground plane.
	pair.a.setPosition(math3d.V3(-separation/2, -boundsA.Min.Y, 0))
	pair.b.setPosition(math3d.V3(separation/2, -boundsB.Min.Y, 0))
	p.validator.Refresh(parent)

	boundsA = pair.a.positioned.WorldBounds()
	boundsB = pair.b.positioned.WorldBounds()

	// Each position includes the model's own offset from its origin, so
	// the pair can land off-center; pull it back over the origin.
	center := boundsA.Union(boundsB).Center()
	if math.Hypot(center.X, center.Z) > p.tolerance {
		shift := math3d.V3(-center.X, 0, -center.Z)
		pair.a.setPosition(pair.a.position().Add(shift))
		pair.b.setPosition(pair.b.position().Add(shift))
		p.validator.Refresh(parent)
		boundsA = pair.a.positioned.WorldBounds()
		boundsB = pair.b.positioned.WorldBounds()
	}

	if err := p.rig.FitBothToView(boundsA, boundsB); err != nil {
		return nil, err
	}
	p.log.Debug("pair arranged", "separation", separation)
	return pair, nil
}

// Clear removes the pair from the graph, unwrapping any pivot nodes so
// the models come back in their original state.
func (p *Positioner) Clear(pair *Pair) {
	if pair == nil {
		return
	}
	unmount(pair.parent, pair.a)
	unmount(pair.parent, pair.b)
}

// mount attaches the model under parent, wrapping immutable models in a
// pivot node the layout can position freely.
func mount(parent, model *scene.Node) slot {
	if !model.Immutable {
		parent.AddChild(model)
		return slot{positioned: model, model: model}
	}
	pivot := scene.NewNode(model.Name + "-pivot")
	pivot.AddChild(model)
	parent.AddChild(pivot)
	return slot{positioned: pivot, model: model}
}

func unmount(parent *scene.Node, s slot) {
	if s.positioned == nil {
		return
	}
	if s.wrapped() {
		s.positioned.RemoveChild(s.model)
	}
	if parent != nil {
		parent.RemoveChild(s.positioned)
	}
}
