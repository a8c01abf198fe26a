package camera

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/orbit"
)

// ErrNotInitialized is returned by rig operations invoked before Init.
var ErrNotInitialized = errors.New("camera rig not initialized")

// ControlMode selects which control scheme owns the camera each frame.
type ControlMode int

const (
	// ModeOrbit routes input through the damped orbit controller.
	ModeOrbit ControlMode = iota
	// ModeManual routes input through the direct spherical control.
	ModeManual
	// ModeAnimating means a view transition owns the camera; input other
	// than a cancelling gesture is ignored until it settles.
	ModeAnimating
)

func (m ControlMode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeAnimating:
		return "animating"
	default:
		return "orbit"
	}
}

// NamedView is an axis-aligned preset viewpoint.
type NamedView int

const (
	ViewFront NamedView = iota
	ViewBack
	ViewLeft
	ViewRight
	ViewTop
	ViewBottom
)

func (v NamedView) String() string {
	switch v {
	case ViewBack:
		return "back"
	case ViewLeft:
		return "left"
	case ViewRight:
		return "right"
	case ViewTop:
		return "top"
	case ViewBottom:
		return "bottom"
	default:
		return "front"
	}
}

// direction returns the unit vector from the target toward the eye for
// the preset.
func (v NamedView) direction() math3d.Vec3 {
	switch v {
	case ViewBack:
		return math3d.V3(0, 0, -1)
	case ViewLeft:
		return math3d.V3(-1, 0, 0)
	case ViewRight:
		return math3d.V3(1, 0, 0)
	case ViewTop:
		return math3d.V3(0, 1, 0)
	case ViewBottom:
		return math3d.V3(0, -1, 0)
	default:
		return math3d.V3(0, 0, 1)
	}
}

// Rig owns the paired perspective/orthographic cameras and every control
// scheme that can move them. All camera mutation during a session goes
// through the rig so the controls never fall out of sync with the camera
// they drive.
type Rig struct {
	cfg Config

	persp *Camera
	ortho *Camera
	proj  Projection

	adapter    *OrbitAdapter
	manual     *SphericalManualControl
	autoRotate *AutoRotateDriver

	mode     ControlMode
	prevMode ControlMode
	anim     *Animation

	// baseline is the pose recorded by the last fit, restored by Reset.
	baselinePersp Pose
	baselineOrtho Pose

	initialized bool
	log         *log.Logger
}

// NewRig creates an uninitialized rig. A nil logger discards output.
func NewRig(cfg Config, logger *log.Logger) *Rig {
	if logger == nil {
		logger = discardLogger()
	}
	return &Rig{cfg: cfg, log: logger}
}

// Init builds both cameras and the control stack for the given viewport
// aspect ratio. It must run before any other rig operation.
func (r *Rig) Init(aspect float64) {
	r.persp = NewPerspective(r.cfg.FOV, aspect)
	r.ortho = NewOrthographic(r.cfg.FrustumSize, aspect)
	r.ortho.FOV = r.cfg.FOV
	r.proj = Perspective

	ctrl := orbit.New(r.persp.Position, math3d.Zero3())
	ctrl.DampingFactor = r.cfg.Damping
	ctrl.MinDistance = r.cfg.MinDistance
	ctrl.MaxDistance = r.cfg.MaxDistance
	r.adapter = NewOrbitAdapter(ctrl, r.cfg.TargetDriftLimit, r.log)

	r.manual = NewSphericalManualControl(r.cfg)
	r.autoRotate = NewAutoRotateDriver(r.cfg, r.manual, r.adapter)

	r.baselinePersp = r.persp.CurrentPose()
	r.baselineOrtho = r.ortho.CurrentPose()
	r.mode = ModeOrbit
	r.initialized = true
}

// Initialized reports whether Init has run.
func (r *Rig) Initialized() bool {
	return r.initialized
}

// Active returns the camera for the current projection.
func (r *Rig) Active() *Camera {
	if r.proj == Orthographic {
		return r.ortho
	}
	return r.persp
}

// Projection returns the active projection mode.
func (r *Rig) Projection() Projection {
	return r.proj
}

// Mode returns the active control mode.
func (r *Rig) Mode() ControlMode {
	return r.mode
}

// SetMode switches between orbit and manual control. Switching cancels a
// running animation.
func (r *Rig) SetMode(m ControlMode) {
	if !r.initialized || m == ModeAnimating {
		return
	}
	r.anim = nil
	r.mode = m
	r.syncControls()
}

// Distance returns the active camera's eye-to-target distance.
func (r *Rig) Distance() float64 {
	if !r.initialized {
		return 0
	}
	return r.Active().Distance()
}

// Center returns the point the active camera orbits around.
func (r *Rig) Center() math3d.Vec3 {
	if !r.initialized {
		return math3d.Zero3()
	}
	return r.Active().Target
}

// AutoRotateDriver exposes the auto-rotate driver for toggling and speed
// changes.
func (r *Rig) AutoRotateDriver() *AutoRotateDriver {
	return r.autoRotate
}

// SetAutoRotate toggles continuous rotation on the active camera.
func (r *Rig) SetAutoRotate(on bool) {
	if !r.initialized {
		return
	}
	r.anim = nil
	if r.mode == ModeAnimating {
		r.mode = r.prevMode
	}
	r.autoRotate.SetActive(r.Active(), on)
}

// FitToObject frames the bounds in both cameras, records the result as
// the reset baseline, and resynchronizes every control scheme. A non-nil
// center overrides the bounds' own center as the orbit pivot. Empty
// bounds are logged and ignored.
func (r *Rig) FitToObject(bounds math3d.AABB, center *math3d.Vec3) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if bounds.IsEmpty() {
		r.log.Warn("fit requested on empty bounds, keeping current view")
		return nil
	}

	pivot := bounds.Center()
	if center != nil {
		pivot = *center
	}
	maxDim := bounds.MaxDimension()
	if maxDim <= 0 {
		maxDim = 1
	}

	perspDist := maxDim / math.Sin(r.cfg.FOV/2) * r.cfg.PerspectiveFitMargin
	orthoDist := maxDim * r.cfg.OrthoFitFactor

	r.placeCamera(r.persp, pivot, perspDist)
	r.placeCamera(r.ortho, pivot, orthoDist)
	r.ortho.SetZoom(r.cfg.FrustumSize / maxDim)

	r.recordBaseline()
	r.syncControls()
	r.log.Debug("fit to object",
		"maxDim", maxDim, "perspDist", perspDist, "orthoDist", orthoDist)
	return nil
}

// FitBothToView frames two models shown side by side. The distance is
// derived from the union bounds with the pair margin applied twice, and
// never drops below the configured floor.
func (r *Rig) FitBothToView(a, b math3d.AABB) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	union := a.Union(b)
	if union.IsEmpty() {
		r.log.Warn("pair fit requested on empty bounds, keeping current view")
		return nil
	}

	pivot := union.Center()
	maxDim := union.MaxDimension()
	if maxDim <= 0 {
		maxDim = 1
	}

	dist := maxDim * r.cfg.PairFitMargin * r.cfg.PairFitMargin
	if dist < r.cfg.MinPairDistance {
		dist = r.cfg.MinPairDistance
	}

	r.placeCamera(r.persp, pivot, dist)
	r.placeCamera(r.ortho, pivot, dist)
	r.ortho.SetZoom(r.cfg.FrustumSize / maxDim)

	r.recordBaseline()
	r.syncControls()
	return nil
}

// placeCamera moves cam to dist from pivot along the elevated fit
// viewpoint and rescales the clip planes around the new distance.
func (r *Rig) placeCamera(cam *Camera, pivot math3d.Vec3, dist float64) {
	dir := math3d.V3(0.75, 0.75, 0.75).Normalize()
	cam.SetPosition(pivot.Add(dir.Scale(dist)))
	cam.LookAt(pivot)
	cam.SetClipPlanes(dist/100, dist*100)
}

// ToggleProjection switches the active projection, carrying the pose
// across so the framing appears unchanged. Switching to orthographic
// derives the zoom that reproduces the perspective framing at the current
// distance; switching back resets the perspective zoom to 1.
func (r *Rig) ToggleProjection() error {
	if !r.initialized {
		return ErrNotInitialized
	}

	if r.proj == Perspective {
		pose := r.persp.CurrentPose()
		dist := r.persp.Distance()
		zoom := 1.0
		if dist > 0 {
			zoom = r.cfg.FrustumSize / (2 * math.Tan(r.cfg.FOV/2) * dist)
		}
		pose.Zoom = zoom
		r.ortho.ApplyPose(pose)
		r.ortho.SetClipPlanes(r.persp.Near, r.persp.Far)
		r.proj = Orthographic
	} else {
		pose := r.ortho.CurrentPose()
		pose.Zoom = 1
		r.persp.ApplyPose(pose)
		r.persp.SetClipPlanes(r.ortho.Near, r.ortho.Far)
		r.proj = Perspective
	}

	r.syncControls()
	r.log.Debug("projection toggled", "projection", r.proj)
	return nil
}

// SnapToView instantly moves the active camera to a preset viewpoint,
// keeping the current pivot and distance.
func (r *Rig) SnapToView(v NamedView) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	cam := r.Active()
	pos, target := r.presetPose(cam, v)
	cam.SetPosition(pos)
	cam.LookAt(target)
	r.syncControls()
	return nil
}

// AnimateToView starts a spring transition of the active camera to a
// preset viewpoint. The rig stays in animating mode until the spring
// settles or the animation is cancelled by user input.
func (r *Rig) AnimateToView(v NamedView) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	cam := r.Active()
	pos, target := r.presetPose(cam, v)
	r.anim = newAnimation(cam.CurrentPose(), pos, target)
	if r.mode != ModeAnimating {
		r.prevMode = r.mode
	}
	r.mode = ModeAnimating
	return nil
}

// presetPose computes the eye and target for a named view at the camera's
// current pivot and distance.
func (r *Rig) presetPose(cam *Camera, v NamedView) (pos, target math3d.Vec3) {
	target = cam.Target
	dist := cam.Distance()
	if dist <= 0 || !math3d.Finite(dist) {
		dist = 10
	}
	return target.Add(v.direction().Scale(dist)), target
}

// Reset restores the pose recorded by the last fit on both cameras, stops
// auto-rotate and any running animation, and resynchronizes the controls.
func (r *Rig) Reset() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	r.anim = nil
	if r.mode == ModeAnimating {
		r.mode = r.prevMode
	}
	r.autoRotate.SetActive(r.Active(), false)

	r.persp.ApplyPose(r.baselinePersp)
	r.ortho.ApplyPose(r.baselineOrtho)
	r.syncControls()
	return nil
}

// Resize updates both cameras for a new viewport size.
func (r *Rig) Resize(width, height int) {
	if !r.initialized || width <= 0 || height <= 0 {
		return
	}
	aspect := float64(width) / float64(height)
	r.persp.SetAspect(aspect)
	r.ortho.SetAspect(aspect)
}

// HandleDrag routes a rotate drag to the active control scheme. A drag
// cancels a running animation.
func (r *Rig) HandleDrag(dx, dy float64) {
	if !r.initialized {
		return
	}
	r.cancelAnimation()
	if r.mode == ModeManual {
		r.manual.RotateByDelta(r.Active(), dx, dy)
		return
	}
	r.adapter.HandleDrag(dx, dy)
}

// HandlePan routes a pan gesture to the orbit controller.
func (r *Rig) HandlePan(dx, dy float64) {
	if !r.initialized {
		return
	}
	r.cancelAnimation()
	r.adapter.HandlePan(dx, dy)
}

// HandleWheel routes a zoom step to the active control scheme. Zoom stays
// live during auto-rotate.
func (r *Rig) HandleWheel(steps float64) {
	if !r.initialized {
		return
	}
	r.cancelAnimation()
	if r.mode == ModeManual {
		r.manual.ZoomBy(r.Active(), steps)
		return
	}
	r.adapter.HandleWheel(steps)
}

// SetDragging marks a pointer drag in progress so auto-rotate pauses.
func (r *Rig) SetDragging(dragging bool) {
	if !r.initialized {
		return
	}
	r.autoRotate.SetDragging(dragging)
}

// Advance runs one frame of the active control scheme: the animation if
// one is playing, otherwise auto-rotate plus the mode's controller.
func (r *Rig) Advance(dt time.Duration) {
	if !r.initialized {
		return
	}
	cam := r.Active()
	secs := dt.Seconds()

	if r.mode == ModeAnimating {
		if r.anim == nil || r.anim.Step(cam, dt) {
			r.anim = nil
			r.mode = r.prevMode
			r.syncControls()
		}
		return
	}

	if r.autoRotate.Active() {
		// Zoom stays live while auto-rotating: step the controller so a
		// pending wheel zoom lands in its distance (rotate and pan are
		// flag-disabled), then let the driver adopt it. The controller
		// tracks the auto-rotated eye instead of steering the camera.
		r.adapter.Controller().Update(secs)
		r.autoRotate.Update(cam, secs)
		r.adapter.Controller().SetEye(cam.Position)
		return
	}

	if r.mode == ModeOrbit {
		r.adapter.Update(cam, secs)
	}
}

// ValidateCamera checks the active camera for non-finite state before the
// frame uses it, restoring the reset baseline on corruption. Reports
// whether a repair happened.
func (r *Rig) ValidateCamera() bool {
	if !r.initialized {
		return false
	}
	cam := r.Active()
	if cam.IsFinite() {
		return false
	}
	r.log.Warn("camera state corrupt, restoring baseline",
		"projection", r.proj)
	if r.proj == Orthographic {
		cam.ApplyPose(r.baselineOrtho)
	} else {
		cam.ApplyPose(r.baselinePersp)
	}
	if !cam.IsFinite() {
		cam.ApplyPose(Pose{Position: math3d.V3(0, 0, 10), Zoom: 1})
	}
	r.syncControls()
	return true
}

func (r *Rig) cancelAnimation() {
	if r.mode != ModeAnimating {
		return
	}
	r.anim = nil
	r.mode = r.prevMode
	r.syncControls()
}

func (r *Rig) recordBaseline() {
	r.baselinePersp = r.persp.CurrentPose()
	r.baselineOrtho = r.ortho.CurrentPose()
}

// syncControls re-derives every control scheme's internal state from the
// active camera, so external repositioning never leaves a stale pivot.
func (r *Rig) syncControls() {
	cam := r.Active()
	r.adapter.Controller().SetTarget(cam.Target)
	r.adapter.Controller().SetEye(cam.Position)
	r.manual.SetCenter(cam.Target)
	r.manual.SyncFromCamera(cam)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
