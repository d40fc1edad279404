package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestNormalizeUnitLength(t *testing.T) {
	tests := []Vec3{
		V3(1, 0, 0),
		V3(3, 4, 0),
		V3(-2, 7, 1.5),
		V3(1e-6, 2e-6, -3e-6),
		V3(1e6, -1e6, 1e6),
	}

	for _, v := range tests {
		n := v.Normalize()
		if math.Abs(n.Len()-1) > eps {
			t.Errorf("Normalize(%v) has length %v, want 1", v, n.Len())
		}
		if n.Dot(v) <= 0 {
			t.Errorf("Normalize(%v) = %v points away from input", v, n)
		}
	}
}

func TestNormalizeZero(t *testing.T) {
	if n := Zero3().Normalize(); n != Zero3() {
		t.Errorf("Normalize(0) = %v, want zero vector", n)
	}
}

func TestCrossOrthogonal(t *testing.T) {
	pairs := [][2]Vec3{
		{V3(1, 0, 0), V3(0, 1, 0)},
		{V3(1, 2, 3), V3(4, 5, 6)},
		{V3(-3, 0.5, 2), V3(7, -1, 0.25)},
	}

	for _, p := range pairs {
		c := p[0].Cross(p[1])
		if d := c.Dot(p[0]); math.Abs(d) > eps {
			t.Errorf("cross(%v, %v)·a = %v, want 0", p[0], p[1], d)
		}
		if d := c.Dot(p[1]); math.Abs(d) > eps {
			t.Errorf("cross(%v, %v)·b = %v, want 0", p[0], p[1], d)
		}
	}

	if c := V3(1, 0, 0).Cross(V3(0, 1, 0)); c != V3(0, 0, 1) {
		t.Errorf("x × y = %v, want z", c)
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	if got := a.Add(b); got != V3(5, 7, 9) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != V3(3, 3, 3) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Mul(b); got != V3(4, 10, 18) {
		t.Errorf("Mul = %v", got)
	}
	if got := a.Scale(2); got != V3(2, 4, 6) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v", got)
	}
	if got := Sum(a, b, a); got != V3(6, 9, 12) {
		t.Errorf("Sum = %v", got)
	}
	if got := a.Lerp(b, 0.5); got != V3(2.5, 3.5, 4.5) {
		t.Errorf("Lerp = %v", got)
	}
}

func TestVec2(t *testing.T) {
	a := V2(3, 4)
	if a.Len() != 5 {
		t.Errorf("Len = %v, want 5", a.Len())
	}
	if n := a.Normalize(); math.Abs(n.Len()-1) > eps {
		t.Errorf("Normalize length = %v", n.Len())
	}
	if got := a.Lerp(V2(5, 8), 0.5); got != V2(4, 6) {
		t.Errorf("Lerp = %v", got)
	}
}
