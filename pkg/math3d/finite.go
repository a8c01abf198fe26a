package math3d

import "math"

// Finite reports whether f is neither NaN nor an infinity.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsFinite reports whether every component of the vector is finite.
func (a Vec3) IsFinite() bool {
	return Finite(a.X) && Finite(a.Y) && Finite(a.Z)
}

// IsFinite reports whether every element of the matrix is finite.
func (m Mat4) IsFinite() bool {
	for _, e := range m {
		if !Finite(e) {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element of the matrix is finite.
func (m Mat3) IsFinite() bool {
	for _, e := range m {
		if !Finite(e) {
			return false
		}
	}
	return true
}
