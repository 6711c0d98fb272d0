package render

import "math"

type rgb8 struct {
	R, G, B uint8
}

// frameBuffer holds linear colour per pixel. Values above 1 are kept until
// the final conversion so bloom can pick them up.
type frameBuffer struct {
	w, h int
	pix  []vec3
}

func newFrameBuffer(w, h int) *frameBuffer {
	fb := &frameBuffer{}
	fb.resize(w, h)
	return fb
}

func (fb *frameBuffer) resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	fb.w, fb.h = w, h
	if cap(fb.pix) < w*h {
		fb.pix = make([]vec3, w*h)
	}
	fb.pix = fb.pix[:w*h]
}

func (fb *frameBuffer) fill(c vec3) {
	for i := range fb.pix {
		fb.pix[i] = c
	}
}

func (fb *frameBuffer) at(x, y int) vec3 {
	return fb.pix[y*fb.w+x]
}

func (fb *frameBuffer) set(x, y int, c vec3) {
	fb.pix[y*fb.w+x] = c
}

func (fb *frameBuffer) add(x, y int, c vec3) {
	if x < 0 || y < 0 || x >= fb.w || y >= fb.h {
		return
	}
	i := y*fb.w + x
	fb.pix[i] = fb.pix[i].add(c)
}

// downsample box-filters fb into dst, which must be fb scaled down by factor.
func (fb *frameBuffer) downsample(dst *frameBuffer, factor int) {
	if factor <= 1 {
		dst.resize(fb.w, fb.h)
		copy(dst.pix, fb.pix)
		return
	}
	dst.resize(fb.w/factor, fb.h/factor)
	inv := 1 / float64(factor*factor)
	for y := range dst.h {
		for x := range dst.w {
			var sum vec3
			for sy := range factor {
				for sx := range factor {
					sum = sum.add(fb.at(x*factor+sx, y*factor+sy))
				}
			}
			dst.set(x, y, sum.scale(inv))
		}
	}
}

func toRGB8(c vec3) rgb8 {
	return rgb8{
		R: uint8(math.Round(clamp01(c.X) * 255)),
		G: uint8(math.Round(clamp01(c.Y) * 255)),
		B: uint8(math.Round(clamp01(c.Z) * 255)),
	}
}
