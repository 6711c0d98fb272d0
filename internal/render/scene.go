package render

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/olivier-w/vorb/internal/orb"
)

// maxPixelRatio caps supersampling the way a browser caps devicePixelRatio.
const maxPixelRatio = 2

// Options configures a Scene.
type Options struct {
	Background string // hex colour
	Particles  int
	Seed       int64
	PixelRatio float64
	ColorMode  ColorMode
}

// DefaultOptions returns a dark background, 420 particles and no supersampling.
func DefaultOptions() Options {
	return Options{
		Background: "#070b14",
		Particles:  420,
		Seed:       1,
		PixelRatio: 1,
		ColorMode:  ColorAuto,
	}
}

// Scene renders the orb into terminal cells: a displaced opaque core, an
// additive shell, a rotating particle field and a bloom pass.
type Scene struct {
	mu sync.Mutex

	bg        vec3
	mode      ColorMode
	ratio     int
	core      surface
	shell     surface
	particles []vec3

	cols, rows int
	hi, lo     *frameBuffer
	depth      []float64
	glow       bloom
	sb         strings.Builder

	rotation float64
	view     string
	frames   uint64
	disposed bool
}

// NewScene validates opts and builds a scene with no size yet.
func NewScene(opts Options) (*Scene, error) {
	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("background colour %q: %w", opts.Background, err)
	}
	if opts.Particles < 0 {
		return nil, fmt.Errorf("particle count must be >= 0, got %d", opts.Particles)
	}
	if math.IsNaN(opts.PixelRatio) || opts.PixelRatio < 1 {
		opts.PixelRatio = 1
	}
	ratio := int(math.Round(math.Min(opts.PixelRatio, maxPixelRatio)))

	noise := opensimplex.New(opts.Seed)
	return &Scene{
		bg:        vec3{bg.R, bg.G, bg.B},
		mode:      resolveColorMode(opts.ColorMode),
		ratio:     ratio,
		core:      surface{radius: coreRadius, base: baseBlue, highlight: coreGlowBlue, noise: noise},
		shell:     surface{radius: shellRadius, base: baseBlue, highlight: highlightBlue, noise: noise},
		particles: scatterParticles(opts.Particles, uint64(opts.Seed)),
		hi:        newFrameBuffer(0, 0),
		lo:        newFrameBuffer(0, 0),
	}, nil
}

// SetSize sets the drawing area in terminal cells.
func (s *Scene) SetSize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || cols <= 0 || rows <= 0 {
		return
	}
	s.cols, s.rows = cols, rows
	s.hi.resize(cols*s.ratio, rows*2*s.ratio)
	if cap(s.depth) < len(s.hi.pix) {
		s.depth = make([]float64, len(s.hi.pix))
	}
	s.depth = s.depth[:len(s.hi.pix)]
}

// Apply draws one frame.
func (s *Scene) Apply(p orb.RenderParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.rotation = math.Mod(s.rotation+p.RotationDelta, 2*math.Pi)
	if s.cols == 0 || s.rows == 0 {
		return
	}

	s.draw(p)
	s.lo.resize(s.cols, s.rows*2)
	s.hi.downsample(s.lo, s.ratio)
	s.glow.apply(s.lo, p.BloomStrength)
	encode(&s.sb, s.lo, s.mode)
	s.view = s.sb.String()
	s.frames++
}

func (s *Scene) draw(p orb.RenderParameters) {
	fb := s.hi
	fb.fill(s.bg)
	for i := range s.depth {
		s.depth[i] = math.Inf(1)
	}

	cam := newCamera(p.Camera, fb.w, fb.h)
	for y := range fb.h {
		for x := range fb.w {
			d := cam.ray(x, y)
			i := y*fb.w + x

			coreHit, hitCore := s.core.intersect(cam.pos, d, s.rotation, p.Core)
			if hitCore {
				fb.pix[i] = s.core.shadeCore(coreHit, cam, p.Core)
				s.depth[i] = coreHit.t
			}
			shellHit, hitShell := s.shell.intersect(cam.pos, d, s.rotation, p.Shell)
			if hitShell && shellHit.t < s.depth[i] {
				fb.pix[i] = fb.pix[i].add(s.shell.shadeShell(shellHit, cam, p.Shell))
			}
		}
	}

	drawParticles(fb, s.depth, cam, s.particles, s.rotation, p)
}

// View returns the last rendered frame.
func (s *Scene) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Size returns the drawing area in cells.
func (s *Scene) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// Rotation is the accumulated turn of the scene around its vertical axis.
func (s *Scene) Rotation() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation
}

// Frames counts rendered frames.
func (s *Scene) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Dispose drops all buffers. Later calls to Apply and SetSize do nothing.
func (s *Scene) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	s.disposed = true
	s.hi, s.lo = newFrameBuffer(0, 0), newFrameBuffer(0, 0)
	s.depth = nil
	s.particles = nil
	s.view = ""
	s.cols, s.rows = 0, 0
	return nil
}
