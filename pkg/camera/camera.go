// Package camera owns the viewer's camera rig: dual perspective and
// orthographic representations, fit-to-object framing, orbit and manual
// spherical controls, auto-rotate, and animated view transitions.
package camera

import (
	"math"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Projection selects which camera representation is active.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Pose is a camera position/target pair with the orthographic zoom, used
// for reset baselines and animation endpoints.
type Pose struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Zoom     float64
}

// Camera holds one projection's worth of state. The rig keeps a
// perspective and an orthographic Camera alive simultaneously so toggling
// projections is instantaneous.
type Camera struct {
	Projection Projection

	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	// Perspective parameters.
	FOV    float64 // vertical field of view, radians
	Aspect float64 // width / height
	Near   float64
	Far    float64

	// Orthographic parameters. FrustumSize is the vertical extent of the
	// view volume at Zoom 1; the left/right/top/bottom bounds derive from
	// it (see OrthoBounds). Zoom stays 1 on a perspective camera.
	FrustumSize float64
	Zoom        float64

	// Cached matrices (computed on demand).
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
}

// NewPerspective creates a perspective camera.
func NewPerspective(fov, aspect float64) *Camera {
	return &Camera{
		Projection: Perspective,
		Position:   math3d.V3(0, 0, 10),
		Up:         math3d.Up(),
		FOV:        fov,
		Aspect:     aspect,
		Near:       0.1,
		Far:        1000,
		Zoom:       1,
		viewDirty:  true,
		projDirty:  true,
	}
}

// NewOrthographic creates an orthographic camera with the given vertical
// frustum size.
func NewOrthographic(frustumSize, aspect float64) *Camera {
	c := NewPerspective(math.Pi/4, aspect)
	c.Projection = Orthographic
	c.FrustumSize = frustumSize
	return c
}

// SetPosition moves the camera eye.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// LookAt aims the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetAspect sets the width/height ratio.
func (c *Camera) SetAspect(aspect float64) {
	c.Aspect = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// SetZoom sets the orthographic zoom factor.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = zoom
	c.projDirty = true
}

// Distance returns the eye-to-target distance.
func (c *Camera) Distance() float64 {
	return c.Position.Distance(c.Target)
}

// OrthoBounds returns the orthographic view bounds (left, right, top,
// bottom) derived from FrustumSize, Aspect and Zoom.
func (c *Camera) OrthoBounds() (left, right, top, bottom float64) {
	halfH := c.FrustumSize / 2 / c.Zoom
	halfW := halfH * c.Aspect
	return -halfW, halfW, halfH, -halfH
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, c.upFor())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// upFor picks an up vector that is not parallel to the view direction, so
// straight-down (TOP) and straight-up (BOTTOM) views keep a valid basis.
func (c *Camera) upFor() math3d.Vec3 {
	forward := c.Target.Sub(c.Position).Normalize()
	up := c.Up
	if up.Len() == 0 {
		up = math3d.Up()
	}
	if math.Abs(forward.Dot(up)) > 0.9999 {
		up = math3d.V3(0, 0, 1)
	}
	return up
}

// ProjectionMatrix returns the projection matrix for the active mode.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		if c.Projection == Orthographic {
			left, right, top, bottom := c.OrthoBounds()
			c.projMatrix = math3d.Orthographic(left, right, bottom, top, c.Near, c.Far)
		} else {
			c.projMatrix = math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
		}
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewDirty || c.projDirty {
		view := c.ViewMatrix()
		proj := c.ProjectionMatrix()
		c.viewProjMatrix = proj.Mul(view)
	}
	return c.viewProjMatrix
}

// IsFinite reports whether the camera pose is structurally valid.
func (c *Camera) IsFinite() bool {
	return c.Position.IsFinite() && c.Target.IsFinite() &&
		math3d.Finite(c.Zoom) && math3d.Finite(c.Near) && math3d.Finite(c.Far)
}

// ApplyPose sets position, target and zoom in one step.
func (c *Camera) ApplyPose(p Pose) {
	c.SetPosition(p.Position)
	c.LookAt(p.Target)
	if p.Zoom > 0 {
		c.SetZoom(p.Zoom)
	}
}

// CurrentPose captures the camera pose.
func (c *Camera) CurrentPose() Pose {
	return Pose{Position: c.Position, Target: c.Target, Zoom: c.Zoom}
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z
	return x, y, depth, true
}
