package math3d

import "math"

// Quat is a rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Normalize returns the unit quaternion. Returns identity for a zero input.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Mat4 converts the quaternion to a rotation matrix.
func (q Quat) Mat4() Mat4 {
	q = q.Normalize()
	x, y, z, w := q.X, q.Y, q.Z, q.W

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Euler extracts XYZ Euler angles (radians) from the quaternion, such that
// RotateX(rx)·RotateY(ry)·RotateZ(rz) reproduces the rotation.
func (q Quat) Euler() Vec3 {
	return EulerFromMat4(q.Mat4())
}

// EulerFromMat4 extracts XYZ Euler angles from the rotation part of m,
// assuming orthonormal basis vectors (no scale).
func EulerFromMat4(m Mat4) Vec3 {
	// m13 = sin(ry); column-major index 8.
	ry := math.Asin(clamp(m[8], -1, 1))

	var rx, rz float64
	if math.Abs(m[8]) < 0.9999999 {
		rx = math.Atan2(-m[9], m[10])
		rz = math.Atan2(-m[4], m[0])
	} else {
		// Gimbal case: ry is ±π/2, rx and rz are coupled.
		rx = math.Atan2(m[6], m[5])
		rz = 0
	}
	return Vec3{rx, ry, rz}
}
