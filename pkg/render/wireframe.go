package render

import (
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

// Overlay draws debug line geometry (axes, ground grid, bounds) on top of
// the rasterized frame.
type Overlay struct {
	cam *camera.Camera
	fb  *Framebuffer
}

// NewOverlay creates an overlay drawing with cam into fb.
func NewOverlay(cam *camera.Camera, fb *Framebuffer) *Overlay {
	return &Overlay{cam: cam, fb: fb}
}

// SetCamera swaps the camera (after a projection toggle).
func (o *Overlay) SetCamera(cam *camera.Camera) {
	o.cam = cam
}

// SetFramebuffer swaps the target framebuffer (after a terminal resize).
func (o *Overlay) SetFramebuffer(fb *Framebuffer) {
	o.fb = fb
}

// DrawLine3D draws a line in 3D space.
func (o *Overlay) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	x1, y1, _, vis1 := o.cam.WorldToScreen(p1, o.fb.Width, o.fb.Height)
	x2, y2, _, vis2 := o.cam.WorldToScreen(p2, o.fb.Width, o.fb.Height)

	// Only draw when at least one endpoint projects on screen.
	if !vis1 && !vis2 {
		return
	}

	o.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
}

// DrawBounds draws the 12 edges of an axis-aligned box.
func (o *Overlay) DrawBounds(box math3d.AABB, color Color) {
	if box.IsEmpty() {
		return
	}
	v := [8]math3d.Vec3{
		{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Max.Z},
	}

	edges := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // back face
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // front face
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connecting edges
	}

	for _, e := range edges {
		o.DrawLine3D(v[e[0]], v[e[1]], color)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (o *Overlay) DrawAxes(length float64) {
	origin := math3d.Zero3()
	o.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	o.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	o.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (o *Overlay) DrawGrid(size, step float64, color Color) {
	half := size / 2
	for x := -half; x <= half; x += step {
		o.DrawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), color)
	}
	for z := -half; z <= half; z += step {
		o.DrawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), color)
	}
}

// DrawPoint draws a point as a small cross.
func (o *Overlay) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	half := size / 2
	o.DrawLine3D(math3d.V3(pos.X-half, pos.Y, pos.Z), math3d.V3(pos.X+half, pos.Y, pos.Z), color)
	o.DrawLine3D(math3d.V3(pos.X, pos.Y-half, pos.Z), math3d.V3(pos.X, pos.Y+half, pos.Z), color)
	o.DrawLine3D(math3d.V3(pos.X, pos.Y, pos.Z-half), math3d.V3(pos.X, pos.Y, pos.Z+half), color)
}
