package render

import "math"

type vec3 struct {
	X, Y, Z float64
}

func (a vec3) add(b vec3) vec3            { return vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a vec3) sub(b vec3) vec3            { return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a vec3) scale(s float64) vec3       { return vec3{a.X * s, a.Y * s, a.Z * s} }
func (a vec3) mul(b vec3) vec3            { return vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a vec3) dot(b vec3) float64         { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a vec3) length() float64            { return math.Sqrt(a.dot(a)) }
func (a vec3) mix(b vec3, t float64) vec3 { return a.add(b.sub(a).scale(t)) }

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a vec3) normalize() vec3 {
	l := a.length()
	if l == 0 {
		return vec3{}
	}
	return a.scale(1 / l)
}

// rotateY turns a around the vertical axis by angle radians.
func (a vec3) rotateY(angle float64) vec3 {
	s, c := math.Sincos(angle)
	return vec3{a.X*c + a.Z*s, a.Y, -a.X*s + a.Z*c}
}

func reflect(i, n vec3) vec3 {
	return i.sub(n.scale(2 * n.dot(i)))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mixf(a, b, t float64) float64 { return a + (b-a)*t }
