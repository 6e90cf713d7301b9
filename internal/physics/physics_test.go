package physics

import (
	"math"
	"testing"
)

func TestNormalizeAngleRange(t *testing.T) {
	inputs := []float64{0, math.Pi, -math.Pi, 3 * math.Pi, -3 * math.Pi, 7.5, -7.5, 100, -1000.25, 1e4}
	for _, in := range inputs {
		got := NormalizeAngle(in)
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v, outside (-π, π]", in, got)
		}
		if d := math.Mod(math.Abs(got-in), TwoPi); d > 1e-6 && TwoPi-d > 1e-6 {
			t.Errorf("NormalizeAngle(%v) = %v, not equivalent mod 2π", in, got)
		}
	}
}

func TestNormalizeAngleBoundary(t *testing.T) {
	if got := NormalizeAngle(-math.Pi); got != math.Pi {
		t.Errorf("NormalizeAngle(-π) = %v, want π", got)
	}
	if got := NormalizeAngle(math.Pi); got != math.Pi {
		t.Errorf("NormalizeAngle(π) = %v, want π", got)
	}
}

func TestNormalizeAngleNonFinite(t *testing.T) {
	for _, in := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := NormalizeAngle(in); got != 0 {
			t.Errorf("NormalizeAngle(%v) = %v, want 0", in, got)
		}
	}
}

func TestAngularDistanceWraps(t *testing.T) {
	got := AngularDistance(math.Pi-0.1, -math.Pi+0.1)
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("AngularDistance across the seam = %v, want 0.2", got)
	}
}

func TestOrbitPosition(t *testing.T) {
	x, y := OrbitPosition(180, 240, math.Pi/2, 80)
	if math.Abs(x-180) > 1e-9 || math.Abs(y-320) > 1e-9 {
		t.Errorf("OrbitPosition = (%v, %v), want (180, 320)", x, y)
	}
}

func TestDistanceAndCircle(t *testing.T) {
	if d := DistanceSquared(0, 0, 3, 4); d != 25 {
		t.Errorf("DistanceSquared = %v, want 25", d)
	}
	if !PointInCircle(2, 0, 0, 0, 2) {
		t.Error("point on the rim should be inside")
	}
	if !PointInCircle(1, 1, 0, 0, 2) {
		t.Error("point should be inside circle")
	}
	if PointInCircle(3, 3, 0, 0, 2) {
		t.Error("point should be outside circle")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 2) != 0 || Clamp(3, 0, 2) != 2 || Clamp(1, 0, 2) != 1 {
		t.Error("Clamp returned wrong value")
	}
	if Clamp(math.NaN(), 0, 2) != 0 {
		t.Error("Clamp(NaN) should return lo")
	}
}
