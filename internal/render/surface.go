package render

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/olivier-w/vorb/internal/orb"
)

const (
	coreRadius  = 1.0
	shellRadius = 1.08
	// fixed-point refinements of the displaced intersection
	surfaceIterations = 5
)

var (
	baseBlue      = rgbVec(0x0b, 0x6e, 0xea)
	highlightBlue = rgbVec(0x7a, 0xcb, 0xff)
	coreGlowBlue  = rgbVec(0x1a, 0x8c, 0xff)
	specularTint  = vec3{0.08, 0.11, 0.2}
	specularLight = vec3{0, 1, 0.5} // camera space
)

func rgbVec(r, g, b uint8) vec3 {
	return vec3{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// surface is a sphere pushed along its normal by layered noise, a radial
// wave, bass and tilt. The core and the shell differ in radius and colours.
type surface struct {
	radius    float64
	base      vec3
	highlight vec3
	noise     opensimplex.Noise
}

type surfaceHit struct {
	t      float64 // distance along the ray
	point  vec3
	normal vec3 // undisplaced sphere normal, world space
	flow   float64
}

// displacement returns the animated part of the offset (flow) and the full
// offset along the normal for object-space unit normal n.
func (s surface) displacement(n vec3, u orb.SurfaceUniforms) (flow, total float64) {
	time := u.Time * 0.4
	coarse := s.noise.Eval3(n.X*1.2+time, n.Y*1.2+time, n.Z*1.2+time) * 0.12
	fine := s.noise.Eval3(n.X*6+time*1.8, n.Y*6+time*1.8, n.Z*6+time*1.8) * 0.025
	radial := math.Hypot(n.X*s.radius, n.Y*s.radius)
	wave := math.Sin(radial*6-time*3+u.SpectrumTilt*2) * 0.05
	flow = coarse + fine + wave
	return flow, flow + u.BassAmplitude*0.45 + u.SpectrumTilt*0.12
}

func (s surface) maxRadius(u orb.SurfaceUniforms) float64 {
	return s.radius + 0.12 + 0.025 + 0.05 + math.Abs(u.BassAmplitude)*0.45 + math.Abs(u.SpectrumTilt)*0.12
}

// intersect finds where the ray from o along unit d meets the displaced
// surface. rotation is the scene's accumulated turn around Y.
func (s surface) intersect(o, d vec3, rotation float64, u orb.SurfaceUniforms) (surfaceHit, bool) {
	if _, ok := raySphere(o, d, s.maxRadius(u)); !ok {
		return surfaceHit{}, false
	}

	r := s.radius + u.BassAmplitude*0.45 + u.SpectrumTilt*0.12
	var hit surfaceHit
	for range surfaceIterations {
		t, ok := raySphere(o, d, r)
		if !ok {
			return surfaceHit{}, false
		}
		p := o.add(d.scale(t))
		n := p.normalize()
		flow, total := s.displacement(n.rotateY(-rotation), u)
		hit = surfaceHit{t: t, point: p, normal: n, flow: flow}
		r = s.radius + total
	}
	return hit, true
}

// raySphere returns the nearest non-negative hit with a sphere at the origin.
func raySphere(o, d vec3, r float64) (float64, bool) {
	b := o.dot(d)
	c := o.dot(o) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// shadeCore is the opaque core: fresnel toward the glow colour, a small
// specular, a fade away from the view centre, and an amplitude glow.
func (s surface) shadeCore(h surfaceHit, cam camera, u orb.SurfaceUniforms) vec3 {
	viewDir := cam.pos.sub(h.point).normalize()
	fresnel := math.Pow(clamp01(1-h.normal.dot(viewDir)), 2.4)
	light := cam.toWorld(specularLight).normalize()
	specular := math.Pow(math.Max(reflect(viewDir.scale(-1), h.normal).dot(light), 0), 32)
	rippleTint := clamp01(h.flow*4 + 0.5)
	vp := cam.view(h.point)
	depthFade := math.Pow(1-clamp01(math.Hypot(vp.X, vp.Y)/2.6), 1.4)
	glow := mixf(0.5, 1.1, u.Amplitude)

	c := s.base.mix(s.highlight, fresnel+rippleTint*0.35)
	c = c.add(specularTint.scale(specular))
	return c.scale((depthFade + fresnel*1.35) * glow)
}

// shadeShell is the additive contribution of the translucent shell.
func (s surface) shadeShell(h surfaceHit, cam camera, u orb.SurfaceUniforms) vec3 {
	viewDir := cam.pos.sub(h.point).normalize()
	fresnel := math.Pow(clamp01(1-h.normal.dot(viewDir)), 3)
	rim := mixf(0.4, 1, fresnel)
	rippleEdge := clamp01(h.flow*4 + 0.5)
	opacity := clamp01(mixf(0.15, 0.38, u.Amplitude+fresnel*0.5+rippleEdge*0.15))
	c := s.base.mix(s.highlight, rim+rippleEdge*0.2)
	return c.scale((rim + u.Amplitude) * opacity)
}
