// Package orbit implements an orbit-style camera controller: the eye
// revolves around a target point on a spherical track, with damped
// rotate/pan/zoom driven by pointer deltas. The package is self-contained
// and knows nothing about the viewer's camera rig; callers read the
// resulting eye position and target each frame.
package orbit

import (
	"math"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Polar angles are kept just inside ±π/2 to avoid gimbal flip at the poles.
const polarLimit = math.Pi/2 - 0.01

// Controller revolves an eye point around Target.
type Controller struct {
	Target math3d.Vec3

	// Per-capability enable flags.
	EnableRotate bool
	EnablePan    bool
	EnableZoom   bool

	// DampingFactor is the per-second decay applied to rotational
	// velocity; 1 stops instantly, values near 0 coast for a long time.
	DampingFactor float64

	RotateSpeed float64
	PanSpeed    float64
	ZoomSpeed   float64

	MinDistance float64
	MaxDistance float64

	sph math3d.Spherical

	// Pending velocities, consumed (and damped) by Update.
	azimuthVel float64
	polarVel   float64
	panDelta   math3d.Vec3
	zoomScale  float64
}

// New creates a controller observing target from eye.
func New(eye, target math3d.Vec3) *Controller {
	c := &Controller{
		Target:        target,
		EnableRotate:  true,
		EnablePan:     true,
		EnableZoom:    true,
		DampingFactor: 0.9,
		RotateSpeed:   1,
		PanSpeed:      1,
		ZoomSpeed:     1,
		MinDistance:   0.01,
		MaxDistance:   10000,
		zoomScale:     1,
	}
	c.SetEye(eye)
	return c
}

// SetEye re-derives the spherical track from an externally positioned eye.
func (c *Controller) SetEye(eye math3d.Vec3) {
	c.sph = math3d.SphericalFromVec3(eye.Sub(c.Target))
	if c.sph.Radius == 0 {
		c.sph.Radius = c.MinDistance
	}
}

// SetTarget moves the pivot, preserving the current spherical offset.
func (c *Controller) SetTarget(target math3d.Vec3) {
	c.Target = target
}

// Distance returns the current eye-to-target distance.
func (c *Controller) Distance() float64 {
	return c.sph.Radius
}

// SetDistance clamps and applies an externally chosen distance.
func (c *Controller) SetDistance(d float64) {
	c.sph.Radius = clamp(d, c.MinDistance, c.MaxDistance)
}

// Eye returns the current eye position.
func (c *Controller) Eye() math3d.Vec3 {
	return c.Target.Add(c.sph.Vec3())
}

// HandleDrag accumulates a rotation from a pointer drag, in screen pixels.
func (c *Controller) HandleDrag(dx, dy float64) {
	if !c.EnableRotate {
		return
	}
	const perPixel = 0.005
	c.azimuthVel -= dx * perPixel * c.RotateSpeed
	c.polarVel += dy * perPixel * c.RotateSpeed
}

// HandlePan accumulates a target translation in the camera plane.
func (c *Controller) HandlePan(dx, dy float64) {
	if !c.EnablePan {
		return
	}
	// Pan in the plane perpendicular to the view direction.
	offset := c.sph.Vec3()
	forward := offset.Negate().Normalize()
	right := forward.Cross(math3d.Up()).Normalize()
	up := right.Cross(forward)

	scale := c.sph.Radius * 0.001 * c.PanSpeed
	c.panDelta = c.panDelta.Add(right.Scale(-dx * scale)).Add(up.Scale(dy * scale))
}

// HandleWheel accumulates a zoom step; positive steps zoom out.
func (c *Controller) HandleWheel(steps float64) {
	if !c.EnableZoom {
		return
	}
	c.zoomScale *= math.Pow(1.1, steps*c.ZoomSpeed)
}

// Update applies pending velocities with damping and returns the new eye
// position. dt is in seconds.
func (c *Controller) Update(dt float64) math3d.Vec3 {
	c.sph.Azimuth += c.azimuthVel
	c.sph.Polar = clamp(c.sph.Polar+c.polarVel, -polarLimit, polarLimit)
	c.sph.Radius = clamp(c.sph.Radius*c.zoomScale, c.MinDistance, c.MaxDistance)
	c.Target = c.Target.Add(c.panDelta)

	// Exponential decay toward rest; frame-rate independent.
	decay := math.Pow(1-c.DampingFactor, dt)
	c.azimuthVel *= decay
	c.polarVel *= decay
	if math.Abs(c.azimuthVel) < 1e-6 {
		c.azimuthVel = 0
	}
	if math.Abs(c.polarVel) < 1e-6 {
		c.polarVel = 0
	}
	c.panDelta = math3d.Zero3()
	c.zoomScale = 1

	return c.Eye()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
