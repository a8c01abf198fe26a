package camera

import "math"

// AutoRotateDriver increments the camera azimuth every frame while active
// and no drag is in progress. It drives the manual spherical state and
// reconciles its distance with the orbit controller, so a concurrent user
// zoom is adopted instead of fought.
type AutoRotateDriver struct {
	// Speed multiplies the base rotation rate.
	Speed float64

	baseRate float64
	active   bool
	dragging bool

	manual *SphericalManualControl
	orbit  *OrbitAdapter
}

// NewAutoRotateDriver couples the driver to the manual spherical state and
// the orbit adapter it coordinates with.
func NewAutoRotateDriver(cfg Config, manual *SphericalManualControl, orbit *OrbitAdapter) *AutoRotateDriver {
	return &AutoRotateDriver{
		Speed:    cfg.AutoRotateSpeed,
		baseRate: cfg.AutoRotateBaseRate,
		manual:   manual,
		orbit:    orbit,
	}
}

// SetActive turns the driver on or off and synchronizes the orbit
// adapter's capability flags.
func (d *AutoRotateDriver) SetActive(cam *Camera, on bool) {
	d.active = on
	if d.orbit != nil {
		d.orbit.SetAutoRotate(on)
	}
	if on {
		// Start from where the camera actually is.
		d.manual.SyncFromCamera(cam)
	}
}

// Active reports whether auto-rotate is on.
func (d *AutoRotateDriver) Active() bool {
	return d.active
}

// SetDragging suspends rotation while a pointer drag is in progress.
func (d *AutoRotateDriver) SetDragging(dragging bool) {
	d.dragging = dragging
}

// Update advances the azimuth by Speed * baseRate * dt and recomputes the
// camera position via the spherical formula. dt is in seconds.
func (d *AutoRotateDriver) Update(cam *Camera, dt float64) {
	if !d.active || d.dragging {
		return
	}

	// Adopt the orbit controller's distance if the user zoomed while
	// auto-rotating.
	if d.orbit != nil {
		if od := d.orbit.Controller().Distance(); math.Abs(od-d.manual.Distance()) > 1e-6 {
			d.manual.SetDistance(od)
		}
	}

	d.manual.SetAzimuth(d.manual.Azimuth() + d.Speed*d.baseRate*dt)
	d.manual.Apply(cam)
}
