package render

import (
	"math"
	"testing"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	length := plane.Normal.Len()
	if math.Abs(length-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", length)
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 {
		t.Errorf("normal.Y = %v, want 0.6", plane.Normal.Y)
	}
	if math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal.Z = %v, want 0.8", plane.Normal.Z)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

// lookDownZFrustum builds a frustum for a camera at (0,0,10) looking at
// the origin with a 60 degree FOV.
func lookDownZFrustum() Frustum {
	view := math3d.LookAt(math3d.V3(0, 0, 10), math3d.Zero3(), math3d.Up())
	proj := math3d.Perspective(math.Pi/3, 1.0, 0.1, 100)
	return ExtractFrustum(proj.Mul(view))
}

func TestFrustumContainsPoint(t *testing.T) {
	f := lookDownZFrustum()

	tests := []struct {
		name   string
		point  math3d.Vec3
		inside bool
	}{
		{"origin (look target)", math3d.Zero3(), true},
		{"slightly toward camera", math3d.V3(0, 0, 5), true},
		{"behind camera", math3d.V3(0, 0, 20), false},
		{"beyond far plane", math3d.V3(0, 0, -100), false},
		{"far left", math3d.V3(-100, 0, 0), false},
		{"far up", math3d.V3(0, 100, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.inside {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.inside)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	f := lookDownZFrustum()

	tests := []struct {
		name    string
		box     math3d.AABB
		visible bool
	}{
		{
			"box at origin",
			math3d.NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)),
			true,
		},
		{
			"box behind camera",
			math3d.NewAABB(math3d.V3(-1, -1, 20), math3d.V3(1, 1, 22)),
			false,
		},
		{
			"box far left",
			math3d.NewAABB(math3d.V3(-200, -1, -1), math3d.V3(-100, 1, 1)),
			false,
		},
		{
			"huge box spanning frustum",
			math3d.NewAABB(math3d.V3(-1000, -1000, -1000), math3d.V3(1000, 1000, 1000)),
			true,
		},
		{
			"box straddling left plane",
			math3d.NewAABB(math3d.V3(-10, -1, -1), math3d.V3(0, 1, 1)),
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.visible {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.visible)
			}
		})
	}
}

func TestFrustumContainsAABB(t *testing.T) {
	f := lookDownZFrustum()

	small := math3d.NewAABB(math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, 0.5, 0.5))
	if !f.ContainsAABB(small) {
		t.Error("small box at the look target should be fully contained")
	}

	straddling := math3d.NewAABB(math3d.V3(-100, -1, -1), math3d.V3(1, 1, 1))
	if f.ContainsAABB(straddling) {
		t.Error("box extending past the left plane should not be fully contained")
	}
	if !f.IntersectAABB(straddling) {
		t.Error("straddling box should still intersect")
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := lookDownZFrustum()

	tests := []struct {
		name    string
		center  math3d.Vec3
		radius  float64
		visible bool
	}{
		{"sphere at origin", math3d.Zero3(), 1, true},
		{"sphere behind camera", math3d.V3(0, 0, 30), 1, false},
		{"big sphere reaching in from the side", math3d.V3(-20, 0, 0), 25, true},
		{"small sphere far left", math3d.V3(-100, 0, 0), 1, false},
		{"zero radius at target", math3d.Zero3(), 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tc.center, tc.radius); got != tc.visible {
				t.Errorf("IntersectsSphere(%v, %v) = %v, want %v", tc.center, tc.radius, got, tc.visible)
			}
		})
	}
}

func TestFrustumFromOrthographic(t *testing.T) {
	view := math3d.LookAt(math3d.V3(0, 0, 10), math3d.Zero3(), math3d.Up())
	proj := math3d.Orthographic(-5, 5, -5, 5, 0.1, 100)
	f := ExtractFrustum(proj.Mul(view))

	if !f.ContainsPoint(math3d.Zero3()) {
		t.Error("ortho frustum should contain the look target")
	}
	if f.ContainsPoint(math3d.V3(8, 0, 0)) {
		t.Error("point outside the ortho bounds should be rejected")
	}
	if !f.IntersectAABB(math3d.NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))) {
		t.Error("box at target should intersect the ortho frustum")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := lookDownZFrustum()
	box := math3d.NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	for b.Loop() {
		f.IntersectAABB(box)
	}
}

func BenchmarkFrustumIntersectsSphere(b *testing.B) {
	f := lookDownZFrustum()

	for b.Loop() {
		f.IntersectsSphere(math3d.Zero3(), 1)
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	view := math3d.LookAt(math3d.V3(0, 0, 10), math3d.Zero3(), math3d.Up())
	proj := math3d.Perspective(math.Pi/3, 1.0, 0.1, 100)
	vp := proj.Mul(view)

	for b.Loop() {
		ExtractFrustum(vp)
	}
}
