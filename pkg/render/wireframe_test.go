package render

import (
	"math"
	"testing"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/camera"
	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

func testOverlay(width, height int) (*Overlay, *Framebuffer) {
	cam := camera.NewPerspective(math.Pi/3, float64(width)/float64(height))
	cam.SetPosition(math3d.V3(0, 2, 5))
	cam.LookAt(math3d.Zero3())

	fb := NewFramebuffer(width, height)
	return NewOverlay(cam, fb), fb
}

func countColoredPixels(fb *Framebuffer, c Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == c {
			n++
		}
	}
	return n
}

func TestOverlayDrawLine3D(t *testing.T) {
	o, fb := testOverlay(64, 64)

	o.DrawLine3D(math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0), ColorWhite)
	if countColoredPixels(fb, ColorWhite) == 0 {
		t.Fatal("expected line pixels in framebuffer")
	}
}

func TestOverlayDrawLine3DBehindCamera(t *testing.T) {
	o, fb := testOverlay(64, 64)

	// Both endpoints behind the camera should draw nothing.
	o.DrawLine3D(math3d.V3(-1, 0, 20), math3d.V3(1, 0, 20), ColorWhite)
	if n := countColoredPixels(fb, ColorWhite); n != 0 {
		t.Fatalf("expected no pixels for off-screen line, got %d", n)
	}
}

func TestOverlayDrawBounds(t *testing.T) {
	o, fb := testOverlay(64, 64)

	box := math3d.NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	o.DrawBounds(box, ColorYellow)
	if countColoredPixels(fb, ColorYellow) == 0 {
		t.Fatal("expected bounding box edges in framebuffer")
	}
}

func TestOverlayDrawBoundsEmpty(t *testing.T) {
	o, fb := testOverlay(64, 64)

	o.DrawBounds(math3d.EmptyAABB(), ColorYellow)
	if n := countColoredPixels(fb, ColorYellow); n != 0 {
		t.Fatalf("expected no pixels for empty bounds, got %d", n)
	}
}

func TestOverlayDrawAxes(t *testing.T) {
	o, fb := testOverlay(64, 64)

	o.DrawAxes(2)
	if countColoredPixels(fb, ColorRed) == 0 {
		t.Error("expected X axis pixels")
	}
	if countColoredPixels(fb, ColorGreen) == 0 {
		t.Error("expected Y axis pixels")
	}
}

func TestOverlayDrawGrid(t *testing.T) {
	o, fb := testOverlay(64, 64)

	o.DrawGrid(10, 1, ColorGray)
	if countColoredPixels(fb, ColorGray) == 0 {
		t.Fatal("expected grid pixels in framebuffer")
	}
}
