package camera

import (
	"github.com/charmbracelet/log"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/orbit"
)

// OrbitAdapter wraps the orbit controller and keeps its enable flags in
// step with the auto-rotate driver: while auto-rotate runs, rotate and pan
// are disabled but zoom stays live. It also guards against the orbit
// target drifting away from origin through accumulated float error during
// long sessions.
type OrbitAdapter struct {
	ctrl       *orbit.Controller
	driftLimit float64
	autoRotate bool
	log        *log.Logger
}

// NewOrbitAdapter wraps ctrl. A nil logger discards output.
func NewOrbitAdapter(ctrl *orbit.Controller, driftLimit float64, logger *log.Logger) *OrbitAdapter {
	if logger == nil {
		logger = discardLogger()
	}
	return &OrbitAdapter{
		ctrl:       ctrl,
		driftLimit: driftLimit,
		log:        logger,
	}
}

// Controller exposes the wrapped controller for direct configuration.
func (a *OrbitAdapter) Controller() *orbit.Controller {
	return a.ctrl
}

// SetAutoRotate switches the capability flags for auto-rotate mode.
func (a *OrbitAdapter) SetAutoRotate(on bool) {
	a.autoRotate = on
	a.ctrl.EnableRotate = !on
	a.ctrl.EnablePan = !on
	a.ctrl.EnableZoom = true
}

// AutoRotate reports whether auto-rotate coordination is active.
func (a *OrbitAdapter) AutoRotate() bool {
	return a.autoRotate
}

// HandleDrag forwards a pointer drag to the controller.
func (a *OrbitAdapter) HandleDrag(dx, dy float64) {
	a.ctrl.HandleDrag(dx, dy)
}

// HandlePan forwards a pan gesture to the controller.
func (a *OrbitAdapter) HandlePan(dx, dy float64) {
	a.ctrl.HandlePan(dx, dy)
}

// HandleWheel forwards a zoom step to the controller.
func (a *OrbitAdapter) HandleWheel(steps float64) {
	a.ctrl.HandleWheel(steps)
}

// Update advances the controller and writes the result to cam. Outside
// auto-rotate mode a drifted target is forcibly reset to origin and the
// camera reoriented.
func (a *OrbitAdapter) Update(cam *Camera, dt float64) {
	if !a.autoRotate && a.ctrl.Target.Len() > a.driftLimit {
		a.log.Warn("orbit target drifted, resetting to origin",
			"distance", a.ctrl.Target.Len())
		a.ctrl.SetTarget(math3d.Zero3())
		a.ctrl.SetEye(cam.Position)
	}

	eye := a.ctrl.Update(dt)
	cam.SetPosition(eye)
	cam.LookAt(a.ctrl.Target)
}
