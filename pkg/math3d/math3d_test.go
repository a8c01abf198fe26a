package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return a.Distance(b) <= tol
}

func TestSphericalRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		offset Vec3
	}{
		{"on +Z", V3(0, 0, 5)},
		{"on +X", V3(3, 0, 0)},
		{"above", V3(0, 2, 0)},
		{"diagonal", V3(1, 2, 3)},
		{"negative quadrant", V3(-4, -1, -2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SphericalFromVec3(tt.offset)
			got := s.Vec3()
			if !vecNear(got, tt.offset, eps) {
				t.Errorf("round trip = %v, want %v", got, tt.offset)
			}
			if math.Abs(s.Radius-tt.offset.Len()) > eps {
				t.Errorf("radius = %v, want %v", s.Radius, tt.offset.Len())
			}
		})
	}
}

func TestSphericalZeroOffset(t *testing.T) {
	s := SphericalFromVec3(Zero3())
	if s != (Spherical{}) {
		t.Errorf("zero offset = %+v, want zero coordinates", s)
	}
}

func TestSphericalAngles(t *testing.T) {
	// +Z at distance 10 is the angular origin.
	s := SphericalFromVec3(V3(0, 0, 10))
	if math.Abs(s.Polar) > eps || math.Abs(s.Azimuth) > eps {
		t.Errorf("polar/azimuth = %v/%v, want 0/0", s.Polar, s.Azimuth)
	}

	// Straight up: polar +pi/2.
	s = SphericalFromVec3(V3(0, 7, 0))
	if math.Abs(s.Polar-math.Pi/2) > eps {
		t.Errorf("polar = %v, want pi/2", s.Polar)
	}

	// +X: azimuth +pi/2.
	s = SphericalFromVec3(V3(4, 0, 0))
	if math.Abs(s.Azimuth-math.Pi/2) > eps {
		t.Errorf("azimuth = %v, want pi/2", s.Azimuth)
	}
}

func TestTRSComposition(t *testing.T) {
	pos := V3(1, 2, 3)
	rot := V3(0.1, 0.5, 0.2)
	scale := V3(2, 3, 1)

	want := Translate(pos).
		Mul(RotateX(rot.X)).
		Mul(RotateY(rot.Y)).
		Mul(RotateZ(rot.Z)).
		Mul(Scale(scale))
	got := TRS(pos, rot, scale)
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("TRS[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// Identity fields compose to identity.
	id := TRS(Zero3(), Zero3(), V3(1, 1, 1))
	if id != Identity() {
		t.Errorf("identity TRS = %v", id)
	}
}

func TestQuatEulerMatchesMatrix(t *testing.T) {
	tests := []struct {
		name string
		axis Vec3
		ang  float64
	}{
		{"about X", V3(1, 0, 0), 0.7},
		{"about Y", V3(0, 1, 0), -1.2},
		{"about Z", V3(0, 0, 1), 2.5},
		{"skew axis", V3(1, 1, 0).Normalize(), 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			half := tt.ang / 2
			q := Quat{
				X: tt.axis.X * math.Sin(half),
				Y: tt.axis.Y * math.Sin(half),
				Z: tt.axis.Z * math.Sin(half),
				W: math.Cos(half),
			}
			e := q.Euler()

			recomposed := RotateX(e.X).Mul(RotateY(e.Y)).Mul(RotateZ(e.Z))
			want := Rotate(tt.axis, tt.ang)

			probe := V3(1, 2, 3)
			if got := recomposed.MulVec3(probe); !vecNear(got, want.MulVec3(probe), 1e-6) {
				t.Errorf("euler recompose rotates %v to %v, want %v",
					probe, got, want.MulVec3(probe))
			}
		})
	}
}

func TestQuatNormalizeZero(t *testing.T) {
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quat normalized = %+v, want identity", got)
	}
}

func TestAABBUnion(t *testing.T) {
	a := NewAABB(V3(-1, -1, -1), V3(1, 1, 1))
	b := NewAABB(V3(2, 0, 0), V3(3, 1, 1))

	u := a.Union(b)
	if u.Min != V3(-1, -1, -1) || u.Max != V3(3, 1, 1) {
		t.Errorf("union = %v..%v", u.Min, u.Max)
	}

	if got := a.Union(EmptyAABB()); got.Min != a.Min || got.Max != a.Max {
		t.Errorf("union with empty = %v..%v, want unchanged", got.Min, got.Max)
	}
	if !EmptyAABB().Union(EmptyAABB()).IsEmpty() {
		t.Error("union of empties should stay empty")
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(V3(-1, -1, -1), V3(1, 1, 1))

	moved := box.Transform(Translate(V3(5, 0, 0)))
	if moved.Min != V3(4, -1, -1) || moved.Max != V3(6, 1, 1) {
		t.Errorf("translated = %v..%v", moved.Min, moved.Max)
	}

	// A 45 degree rotation grows the box to sqrt(2) on the rotated axes.
	rotated := box.Transform(RotateY(math.Pi / 4))
	want := math.Sqrt2
	if math.Abs(rotated.Max.X-want) > 1e-9 || math.Abs(rotated.Max.Z-want) > 1e-9 {
		t.Errorf("rotated max = %v, want (%v, 1, %v)", rotated.Max, want, want)
	}
}

func TestAABBMaxDimension(t *testing.T) {
	box := NewAABB(V3(0, 0, 0), V3(1, 4, 2))
	if got := box.MaxDimension(); got != 4 {
		t.Errorf("max dimension = %v, want 4", got)
	}
}

func TestFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if V3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf vector reported finite")
	}

	m := Identity()
	if !m.IsFinite() {
		t.Error("identity reported non-finite")
	}
	m[5] = math.NaN()
	if m.IsFinite() {
		t.Error("NaN matrix reported finite")
	}
}

func TestNormalMatrixUndoesScale(t *testing.T) {
	world := Scale(V3(2, 2, 2)).Mul(RotateY(0.5))
	nm := NormalMatrix(world)

	n := V3(0, 0, 1)
	got := nm.MulVec3(n).Normalize()
	want := RotateY(0.5).MulVec3Dir(n).Normalize()
	if !vecNear(got, want, 1e-9) {
		t.Errorf("normal = %v, want %v", got, want)
	}
}
