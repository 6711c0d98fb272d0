package render

import (
	"math"

	"github.com/olivier-w/vorb/internal/orb"
)

const (
	cameraDistance = 4.0
	fieldOfView    = 45.0 // degrees, vertical
	nearPlane      = 0.1
)

// camera looks at the origin from (offset.X, offset.Y, 4).
type camera struct {
	pos             vec3
	fwd, right, up  vec3
	tanHalf, aspect float64
	width, height   float64
}

func newCamera(offset orb.Vec2, width, height int) camera {
	pos := vec3{offset.X, offset.Y, cameraDistance}
	fwd := pos.scale(-1).normalize()
	right := fwd.cross(vec3{0, 1, 0}).normalize()
	up := right.cross(fwd)
	aspect := 1.0
	if height > 0 {
		// half-block pixels are roughly square
		aspect = float64(width) / float64(height)
	}
	return camera{
		pos:     pos,
		fwd:     fwd,
		right:   right,
		up:      up,
		tanHalf: math.Tan(fieldOfView * math.Pi / 360),
		aspect:  aspect,
		width:   float64(width),
		height:  float64(height),
	}
}

// ray returns the unit direction through the centre of pixel (x, y).
func (c camera) ray(x, y int) vec3 {
	nx := (2*(float64(x)+0.5)/c.width - 1) * c.tanHalf * c.aspect
	ny := (1 - 2*(float64(y)+0.5)/c.height) * c.tanHalf
	return c.fwd.add(c.right.scale(nx)).add(c.up.scale(ny)).normalize()
}

// project maps a world point to pixel coordinates and its view depth.
func (c camera) project(p vec3) (sx, sy, depth float64, ok bool) {
	v := p.sub(c.pos)
	depth = v.dot(c.fwd)
	if depth <= nearPlane {
		return 0, 0, 0, false
	}
	x := v.dot(c.right) / (depth * c.tanHalf * c.aspect)
	y := v.dot(c.up) / (depth * c.tanHalf)
	sx = (x + 1) / 2 * c.width
	sy = (1 - y) / 2 * c.height
	return sx, sy, depth, true
}

// view returns p in camera space: x right, y up, z toward the viewer.
func (c camera) view(p vec3) vec3 {
	v := p.sub(c.pos)
	return vec3{v.dot(c.right), v.dot(c.up), -v.dot(c.fwd)}
}

// toWorld converts a camera-space direction to world space.
func (c camera) toWorld(v vec3) vec3 {
	return c.right.scale(v.X).add(c.up.scale(v.Y)).add(c.fwd.scale(-v.Z))
}
