package math3d

import (
	"math"
	"testing"
)

func BenchmarkTRS(b *testing.B) {
	pos := V3(1, 2, 3)
	rot := V3(0.1, 0.5, 0.2)
	scale := V3(2, 2, 2)

	for b.Loop() {
		_ = TRS(pos, rot, scale)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	parent := TRS(V3(1, 2, 3), V3(0, 0.5, 0), V3(1, 1, 1))
	local := RotateY(0.5)

	for b.Loop() {
		_ = parent.Mul(local)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	world := TRS(V3(1, 2, 3), V3(0, 0.5, 0), V3(2, 2, 2))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = world.MulVec3(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	world := TRS(V3(1, 2, 3), V3(0, 0.5, 0), V3(2, 2, 2))

	for b.Loop() {
		_ = world.Inverse()
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	world := TRS(V3(1, 2, 3), V3(0.1, 0.5, 0.2), V3(2, 3, 1))

	for b.Loop() {
		_ = NormalMatrix(world)
	}
}

func BenchmarkAABBTransform(b *testing.B) {
	box := NewAABB(V3(-1, -1, -1), V3(1, 1, 1))
	world := TRS(V3(1, 2, 3), V3(0, math.Pi/4, 0), V3(2, 2, 2))

	for b.Loop() {
		_ = box.Transform(world)
	}
}

func BenchmarkAABBUnion(b *testing.B) {
	a := NewAABB(V3(-2, 0, -1), V3(-1, 1, 1))
	c := NewAABB(V3(1, 0, -1), V3(2, 1, 1))

	for b.Loop() {
		_ = a.Union(c)
	}
}

func BenchmarkSphericalRoundTrip(b *testing.B) {
	offset := V3(3, 4, 5)

	for b.Loop() {
		_ = SphericalFromVec3(offset).Vec3()
	}
}

func BenchmarkQuatEuler(b *testing.B) {
	q := Quat{X: 0.18, Y: 0.54, Z: 0.27, W: 0.77}.Normalize()

	for b.Loop() {
		_ = q.Euler()
	}
}

func BenchmarkViewProjection(b *testing.B) {
	// View-projection rebuild, as the rasterizer does once per frame.
	view := LookAt(V3(3, 3, 3), Zero3(), Up())
	proj := Perspective(math.Pi/3, 1.777, 0.1, 100)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}

func BenchmarkMat4IsFinite(b *testing.B) {
	world := TRS(V3(1, 2, 3), V3(0.1, 0.5, 0.2), V3(2, 3, 1))

	for b.Loop() {
		_ = world.IsFinite()
	}
}
