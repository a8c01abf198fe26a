package camera

import (
	"math"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Polar angles stop just short of the poles so the look-at basis never
// degenerates mid-drag. Mirrors the clamp in the dependency-free orbit
// package; keep the two values in step.
const polarLimit = math.Pi/2 - 0.01

// syncEpsilon is how far the tracked spherical position may disagree with
// the camera's actual position before the control re-derives its angles.
const syncEpsilon = 1e-6

// SphericalManualControl positions the camera on a sphere around a pivot
// center, driven directly by pointer deltas. It is independent of the
// orbit controller and keeps itself resynchronized with the real camera
// position, so external repositioning (fit, preset views, animations)
// never leaves it silently stale.
type SphericalManualControl struct {
	rx     float64 // polar angle, clamped
	ry     float64 // azimuth, unbounded
	d      float64 // distance, clamped to [minD, maxD]
	center math3d.Vec3

	minD, maxD float64
	k          float64 // radians per pointer pixel
}

// NewSphericalManualControl creates a control with the rig's clamp limits.
func NewSphericalManualControl(cfg Config) *SphericalManualControl {
	return &SphericalManualControl{
		d:    10,
		minD: cfg.MinDistance,
		maxD: cfg.MaxDistance,
		k:    cfg.DragSensitivity,
	}
}

// Distance returns the tracked camera distance from the pivot.
func (s *SphericalManualControl) Distance() float64 {
	return s.d
}

// Center returns the pivot point.
func (s *SphericalManualControl) Center() math3d.Vec3 {
	return s.center
}

// SetCenter moves the pivot without moving the camera angles.
func (s *SphericalManualControl) SetCenter(c math3d.Vec3) {
	s.center = c
}

// Azimuth returns the tracked azimuth angle.
func (s *SphericalManualControl) Azimuth() float64 {
	return s.ry
}

// SetAzimuth sets the azimuth directly (used by the auto-rotate driver).
func (s *SphericalManualControl) SetAzimuth(ry float64) {
	s.ry = ry
}

// SyncFromCamera re-derives the tracked angles and distance from the
// camera's actual offset to the pivot.
func (s *SphericalManualControl) SyncFromCamera(cam *Camera) {
	sph := math3d.SphericalFromVec3(cam.Position.Sub(s.center))
	if sph.Radius == 0 {
		return
	}
	s.rx = clampf(sph.Polar, -polarLimit, polarLimit)
	s.ry = sph.Azimuth
	s.d = clampf(sph.Radius, s.minD, s.maxD)
}

// position computes the cartesian camera position from the tracked state:
//
//	x = c.x + sin(ry)·cos(rx)·d
//	y = c.y + sin(rx)·d
//	z = c.z + cos(ry)·cos(rx)·d
func (s *SphericalManualControl) position() math3d.Vec3 {
	sph := math3d.Spherical{Radius: s.d, Polar: s.rx, Azimuth: s.ry}
	return s.center.Add(sph.Vec3())
}

// Apply writes the tracked position to the camera and aims it at the
// pivot.
func (s *SphericalManualControl) Apply(cam *Camera) {
	cam.SetPosition(s.position())
	cam.LookAt(s.center)
}

// RotateByDelta applies a pointer drag. If the camera was repositioned
// externally since the last call, the tracked angles are first re-derived
// from the camera's true offset, preventing a jump back to stale state.
func (s *SphericalManualControl) RotateByDelta(cam *Camera, dx, dy float64) {
	if s.position().Distance(cam.Position) > syncEpsilon {
		s.SyncFromCamera(cam)
	}
	s.ry -= dx * s.k
	s.rx = clampf(s.rx+dy*s.k, -polarLimit, polarLimit)
	s.Apply(cam)
}

// ZoomBy scales the tracked distance; positive steps zoom out. The result
// is clamped to the configured range.
func (s *SphericalManualControl) ZoomBy(cam *Camera, steps float64) {
	if s.position().Distance(cam.Position) > syncEpsilon {
		s.SyncFromCamera(cam)
	}
	s.d = clampf(s.d*math.Pow(1.1, steps), s.minD, s.maxD)
	s.Apply(cam)
}

// SetDistance clamps and applies an externally chosen distance (used when
// reconciling with the orbit controller's zoom).
func (s *SphericalManualControl) SetDistance(d float64) {
	s.d = clampf(d, s.minD, s.maxD)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
