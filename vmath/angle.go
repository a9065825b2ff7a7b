package vmath

import "math"

const TwoPi = 2 * math.Pi

// WrapAngle normalizes angle into (-π, π]
func WrapAngle(a float64) float64 {
	if a > -math.Pi && a <= math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, TwoPi)
	if a <= 0 {
		a += TwoPi
	}
	return a - math.Pi
}

// AngleDiff returns the shortest signed rotation from a to b, in (-π, π]
func AngleDiff(a, b float64) float64 {
	return WrapAngle(b - a)
}

// Bearing returns the angle of the vector from -> to
// Zero when points coincide
func Bearing(from, to Vec2) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
