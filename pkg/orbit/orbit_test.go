package orbit

import (
	"math"
	"testing"

	"github.com/maz1987in/3Dviewer-Nextcloud-sub004/pkg/math3d"
)

func TestDistancePreservedByDrag(t *testing.T) {
	c := New(math3d.V3(0, 0, 10), math3d.Zero3())

	c.HandleDrag(40, -25)
	eye := c.Update(1.0 / 60)

	if d := eye.Distance(c.Target); math.Abs(d-10) > 1e-9 {
		t.Errorf("distance after drag = %v, want 10", d)
	}
}

func TestEnableFlagsGateInput(t *testing.T) {
	c := New(math3d.V3(0, 0, 10), math3d.Zero3())
	c.EnableRotate = false
	c.EnablePan = false

	before := c.Eye()
	c.HandleDrag(100, 100)
	c.HandlePan(100, 100)
	after := c.Update(1.0 / 60)

	if before.Distance(after) > 1e-9 {
		t.Errorf("disabled controls moved the eye: %v -> %v", before, after)
	}
}

func TestZoomStaysEnabledAndClamped(t *testing.T) {
	c := New(math3d.V3(0, 0, 10), math3d.Zero3())
	c.EnableRotate = false
	c.MinDistance = 2
	c.MaxDistance = 20

	for range 100 {
		c.HandleWheel(-1)
		c.Update(1.0 / 60)
	}
	if d := c.Distance(); math.Abs(d-2) > 1e-9 {
		t.Errorf("zoom-in clamped to %v, want MinDistance 2", d)
	}

	for range 200 {
		c.HandleWheel(1)
		c.Update(1.0 / 60)
	}
	if d := c.Distance(); math.Abs(d-20) > 1e-9 {
		t.Errorf("zoom-out clamped to %v, want MaxDistance 20", d)
	}
}

func TestPolarClampAvoidsFlip(t *testing.T) {
	c := New(math3d.V3(0, 0, 10), math3d.Zero3())
	c.DampingFactor = 1 // no coasting

	for range 1000 {
		c.HandleDrag(0, 500)
		c.Update(1.0 / 60)
	}

	eye := c.Eye()
	// The eye must stay strictly below the pole.
	if eye.Y >= c.Distance() {
		t.Errorf("eye reached the pole: %v", eye)
	}
}

func TestDampingDecaysVelocity(t *testing.T) {
	c := New(math3d.V3(0, 0, 10), math3d.Zero3())
	c.DampingFactor = 0.99

	c.HandleDrag(100, 0)
	first := c.Update(1.0 / 60)
	var prev math3d.Vec3 = first

	moved := 0.0
	for range 600 {
		next := c.Update(1.0 / 60)
		moved = next.Distance(prev)
		prev = next
	}
	if moved > 1e-6 {
		t.Errorf("velocity did not decay to rest; last step moved %v", moved)
	}
}
