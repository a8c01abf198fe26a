package math3d

import "math"

// Spherical is a (radius, polar, azimuth) parametrization of a point around
// an origin. Polar is the elevation from the XZ plane in radians (positive
// up), azimuth the rotation around the Y axis. With both angles zero the
// point lies on +Z at distance Radius.
type Spherical struct {
	Radius  float64
	Polar   float64
	Azimuth float64
}

// SphericalFromVec3 derives spherical coordinates from an offset vector.
// A zero offset yields all-zero coordinates.
func SphericalFromVec3(offset Vec3) Spherical {
	r := offset.Len()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		Radius:  r,
		Polar:   math.Asin(clamp(offset.Y/r, -1, 1)),
		Azimuth: math.Atan2(offset.X, offset.Z),
	}
}

// Vec3 converts back to a cartesian offset:
//
//	x = sin(azimuth)·cos(polar)·r
//	y = sin(polar)·r
//	z = cos(azimuth)·cos(polar)·r
func (s Spherical) Vec3() Vec3 {
	cosPolar := math.Cos(s.Polar)
	return Vec3{
		X: math.Sin(s.Azimuth) * cosPolar * s.Radius,
		Y: math.Sin(s.Polar) * s.Radius,
		Z: math.Cos(s.Azimuth) * cosPolar * s.Radius,
	}
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
