package render

import (
	"math"
	"math/rand/v2"

	"github.com/olivier-w/vorb/internal/orb"
)

const (
	particleInner = 1.35
	particleSpan  = 0.25
	// particles smaller than a pixel still leave a faint dot
	minParticleCoverage = 0.3
)

// scatterParticles places n points uniformly over directions at radii
// 1.35..1.6. The same seed always gives the same field.
func scatterParticles(n int, seed uint64) []vec3 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]vec3, n)
	for i := range out {
		z := rng.Float64()*2 - 1
		theta := rng.Float64() * 2 * math.Pi
		rxy := math.Sqrt(1 - z*z)
		dir := vec3{rxy * math.Cos(theta), rxy * math.Sin(theta), z}
		out[i] = dir.scale(particleInner + rng.Float64()*particleSpan)
	}
	return out
}

// drawParticles splats each particle additively, hidden behind the core.
// depth holds the core distance per pixel (+Inf where the core is missed).
func drawParticles(fb *frameBuffer, depth []float64, cam camera, points []vec3, rotation float64, p orb.RenderParameters) {
	tint := vec3{p.ParticleColor.R, p.ParticleColor.G, p.ParticleColor.B}
	opacity := clamp01(p.ParticleOpacity)
	// point size attenuation: size * (height / 2) / depth
	scale := cam.height / 2

	for _, obj := range points {
		world := obj.rotateY(rotation)
		sx, sy, z, ok := cam.project(world)
		if !ok {
			continue
		}
		x, y := int(math.Floor(sx)), int(math.Floor(sy))
		if x < 0 || y < 0 || x >= fb.w || y >= fb.h {
			continue
		}
		if world.sub(cam.pos).length() > depth[y*fb.w+x] {
			continue
		}

		size := p.ParticleSize * scale / z
		if size <= 1 {
			coverage := math.Max(size*size, minParticleCoverage)
			fb.add(x, y, tint.scale(opacity*coverage))
			continue
		}
		half := size / 2
		r := int(math.Ceil(half))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if float64(dx*dx+dy*dy) > half*half {
					continue
				}
				fb.add(x+dx, y+dy, tint.scale(opacity))
			}
		}
	}
}
