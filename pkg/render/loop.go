package render

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/scene"
)

// Renderer is the drawing backend the loop retries against. The
// rasterizer implements it; tests substitute failing stubs.
type Renderer interface {
	Render(root *scene.Node, cam *camera.Camera) error
}

// Loop runs the per-frame pipeline: repair bounding spheres, validate the
// camera, validate and refresh the scene transforms, advance the active
// control, then draw. A transform fault during drawing triggers one
// revalidate-and-retry; a second fault drops the frame and the next frame
// starts clean.
type Loop struct {
	rig       *camera.Rig
	validator *scene.Validator
	renderer  Renderer
	log       *log.Logger

	// Frames counts completed frames, DroppedFrames the ones abandoned
	// after a failed retry.
	Frames        uint64
	DroppedFrames uint64

	disposed bool
}

// NewLoop wires the pipeline. A nil logger discards output.
func NewLoop(rig *camera.Rig, renderer Renderer, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loop{
		rig:       rig,
		validator: scene.NewValidator(),
		renderer:  renderer,
		log:       logger,
	}
}

// RenderFrame runs one frame over the scene rooted at root. dt is the
// wall-clock time since the previous frame. Errors other than transform
// faults pass through to the caller; faults are absorbed by the
// retry-or-drop policy.
func (l *Loop) RenderFrame(root *scene.Node, dt time.Duration) error {
	if l.disposed {
		return errors.New("render loop disposed")
	}

	repairBoundingSpheres(root)
	l.rig.ValidateCamera()
	if root != nil {
		l.validator.Refresh(root)
	}
	l.rig.Advance(dt)

	err := l.renderer.Render(root, l.rig.Active())
	var fault *TransformFault
	if errors.As(err, &fault) {
		l.log.Warn("transform fault, revalidating and retrying frame",
			"node", fault.Node, "detail", fault.Detail)
		l.rig.ValidateCamera()
		if root != nil {
			l.validator.ValidateBranch(root)
			l.validator.UpdateLocal(root)
			l.validator.UpdateWorld(root, true)
		}

		err = l.renderer.Render(root, l.rig.Active())
		if errors.As(err, &fault) {
			// Drop the frame; no state survives into the next one.
			l.DroppedFrames++
			l.log.Warn("transform fault persisted, dropping frame",
				"node", fault.Node, "detail", fault.Detail,
				"dropped", l.DroppedFrames)
			return nil
		}
	}
	if err != nil {
		return err
	}

	l.Frames++
	return nil
}

// Dispose stops the loop permanently.
func (l *Loop) Dispose() {
	l.disposed = true
}

// repairBoundingSpheres walks the graph and rebuilds any missing or
// malformed mesh bounding sphere before the culling step dereferences it.
func repairBoundingSpheres(root *scene.Node) {
	if root == nil {
		return
	}
	root.Walk(func(n *scene.Node) bool {
		if n.Mesh != nil && !n.Mesh.BoundingSphere.IsValid() {
			n.Mesh.CalculateBounds()
			n.Mesh.CalculateBoundingSphere()
		}
		return true
	})
}
