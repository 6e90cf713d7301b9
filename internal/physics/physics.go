// Package physics provides angle, orbit and distance utilities for the
// circular play field.
package physics

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// NormalizeAngle maps any angle into (-π, π] by repeated ±2π adjustment.
// Non-finite input yields 0 so a bad value can never poison later collision checks.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	// Large magnitudes are folded first so the loops below stay short.
	if a > 4*math.Pi || a < -4*math.Pi {
		a = math.Mod(a, TwoPi)
	}
	for a > math.Pi {
		a -= TwoPi
	}
	for a <= -math.Pi {
		a += TwoPi
	}
	return a
}

// AngularDistance returns the absolute shortest angle between a and b.
func AngularDistance(a, b float64) float64 {
	return math.Abs(NormalizeAngle(a - b))
}

// OrbitPosition resolves an angle on a circle of the given radius around (cx, cy).
func OrbitPosition(cx, cy, angle, radius float64) (x, y float64) {
	return cx + math.Cos(angle)*radius, cy + math.Sin(angle)*radius
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
