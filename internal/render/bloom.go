package render

import (
	approx "github.com/cwbudde/algo-approx"
)

const (
	bloomThreshold = 0.75
	bloomRadius    = 0.6
	// smoothstep width above the threshold
	bloomKnee = 0.01
)

// bloom adds a blurred copy of the pixels brighter than the threshold,
// scaled by strength. scratch buffers are reused between frames.
type bloom struct {
	bright, tmp frameBuffer
	kernel      []float64
	sigma       float64
}

// weights builds a normalised gaussian kernel for sigma in pixels.
func (b *bloom) weights(sigma float64) []float64 {
	if sigma == b.sigma && b.kernel != nil {
		return b.kernel
	}
	r := int(sigma*3 + 0.5)
	if r < 1 {
		r = 1
	}
	k := make([]float64, 2*r+1)
	var sum float64
	inv := float32(-1 / (2 * sigma * sigma))
	for i := -r; i <= r; i++ {
		w := float64(approx.FastExp(float32(i*i) * inv))
		k[i+r] = w
		sum += w
	}
	for i := range k {
		k[i] /= sum
	}
	b.kernel, b.sigma = k, sigma
	return k
}

func (b *bloom) apply(fb *frameBuffer, strength float64) {
	if strength <= 0 || fb.w == 0 || fb.h == 0 {
		return
	}
	b.bright.resize(fb.w, fb.h)
	b.tmp.resize(fb.w, fb.h)

	lit := false
	for i, c := range fb.pix {
		lum := 0.299*c.X + 0.587*c.Y + 0.114*c.Z
		a := smoothstep(bloomThreshold, bloomThreshold+bloomKnee, lum)
		b.bright.pix[i] = c.scale(a)
		if a > 0 {
			lit = true
		}
	}
	if !lit {
		return
	}

	// radius is relative to the frame; keep the glow proportional to height
	k := b.weights(1 + bloomRadius*float64(fb.h)/24)
	r := len(k) / 2

	for y := range fb.h {
		for x := range fb.w {
			var sum vec3
			for i, w := range k {
				sx := min(max(x+i-r, 0), fb.w-1)
				sum = sum.add(b.bright.at(sx, y).scale(w))
			}
			b.tmp.set(x, y, sum)
		}
	}
	for y := range fb.h {
		for x := range fb.w {
			var sum vec3
			for i, w := range k {
				sy := min(max(y+i-r, 0), fb.h-1)
				sum = sum.add(b.tmp.at(x, sy).scale(w))
			}
			fb.add(x, y, sum.scale(strength))
		}
	}
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}
