package orb

import "math"

// Damp moves x toward target with exponential smoothing independent of frame
// rate. lambda is the rate per second.
func Damp(x, target, lambda, dt float64) float64 {
	if dt <= 0 || math.IsNaN(dt) {
		return x
	}
	t := 1 - math.Exp(-lambda*dt)
	return x + (target-x)*t
}

// Vec2 is a 2D offset in world units.
type Vec2 struct {
	X, Y float64
}

// DampVec2 damps each component independently.
func DampVec2(v, target Vec2, lambda, dt float64) Vec2 {
	return Vec2{
		X: Damp(v.X, target.X, lambda, dt),
		Y: Damp(v.Y, target.Y, lambda, dt),
	}
}
