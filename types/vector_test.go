package types

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	v1 := XYZ(1, 2, 3)
	v2 := XYZ(4, -5, 6)

	if exp, got := XYZ(5, -3, 9), v1.Add(v2); got != exp {
		t.Fatalf("expected sum %v; got %v", exp, got)
	}
	if exp, got := XYZ(-3, 7, -3), v1.Sub(v2); got != exp {
		t.Fatalf("expected difference %v; got %v", exp, got)
	}
	if exp, got := XYZ(2, 4, 6), v1.Mul(2); got != exp {
		t.Fatalf("expected scaled vector %v; got %v", exp, got)
	}
	if exp, got := XYZ(4, -10, 18), v1.MulVec(v2); got != exp {
		t.Fatalf("expected component product %v; got %v", exp, got)
	}
	if exp, got := XYZ(-1, -2, -3), v1.Neg(); got != exp {
		t.Fatalf("expected negated vector %v; got %v", exp, got)
	}
	if exp, got := float32(12), v1.Dot(v2); got != exp {
		t.Fatalf("expected dot product %f; got %f", exp, got)
	}
}

func TestVec3Cross(t *testing.T) {
	got := XYZ(1, 0, 0).Cross(XYZ(0, 1, 0))
	if exp := XYZ(0, 0, 1); got != exp {
		t.Fatalf("expected cross product %v; got %v", exp, got)
	}

	// Cross product of parallel vectors is the zero vector
	got = XYZ(2, 2, 2).Cross(XYZ(1, 1, 1))
	if exp := XYZ(0, 0, 0); got != exp {
		t.Fatalf("expected cross product %v; got %v", exp, got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := XYZ(0, 3, 4).Normalize()
	if exp, got := float32(1.0), v.Len(); absDiff(exp, got) > 1e-6 {
		t.Fatalf("expected unit length; got %f", got)
	}
	if exp := XYZ(0, 0.6, 0.8); absDiff(v[1], exp[1]) > 1e-6 || absDiff(v[2], exp[2]) > 1e-6 {
		t.Fatalf("expected normalized vector %v; got %v", exp, v)
	}

	// Degenerate input maps to the zero vector instead of Inf/NaN
	if got := XYZ(0, 0, 0).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected zero vector; got %v", got)
	}
}

func TestVec3LenSq(t *testing.T) {
	if exp, got := float32(14), XYZ(1, 2, 3).LenSq(); got != exp {
		t.Fatalf("expected squared length %f; got %f", exp, got)
	}
}

func TestVec3Lerp(t *testing.T) {
	v1 := XYZ(0, 0, 0)
	v2 := XYZ(2, 4, 6)

	if exp, got := v1, v1.Lerp(v2, 0); got != exp {
		t.Fatalf("expected lerp at t=0 to be %v; got %v", exp, got)
	}
	if exp, got := v2, v1.Lerp(v2, 1); got != exp {
		t.Fatalf("expected lerp at t=1 to be %v; got %v", exp, got)
	}
	if exp, got := XYZ(1, 2, 3), v1.Lerp(v2, 0.5); got != exp {
		t.Fatalf("expected lerp at t=0.5 to be %v; got %v", exp, got)
	}
}

func TestVec3MinMax(t *testing.T) {
	v1 := XYZ(1, 5, -3)
	v2 := XYZ(2, -5, -1)

	if exp, got := XYZ(1, -5, -3), MinVec3(v1, v2); got != exp {
		t.Fatalf("expected component min %v; got %v", exp, got)
	}
	if exp, got := XYZ(2, 5, -1), MaxVec3(v1, v2); got != exp {
		t.Fatalf("expected component max %v; got %v", exp, got)
	}
	if exp, got := float32(5), v1.MaxComponent(); got != exp {
		t.Fatalf("expected max component %f; got %f", exp, got)
	}
}

func TestVec3NearZero(t *testing.T) {
	if !XYZ(0, 1e-9, -1e-9).NearZero() {
		t.Fatal("expected vector to be near zero")
	}
	if XYZ(0, 1e-3, 0).NearZero() {
		t.Fatal("expected vector not to be near zero")
	}
}

func TestVec3IsNaN(t *testing.T) {
	nan := float32(math.NaN())
	if !XYZ(0, nan, 0).IsNaN() {
		t.Fatal("expected NaN component to be detected")
	}
	if XYZ(0, 1, 2).IsNaN() {
		t.Fatal("expected vector without NaN components")
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
