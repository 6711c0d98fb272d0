package orb

import (
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/vorb/internal/audio"
)

const (
	baseParticleSize    = 0.035
	baseParticleOpacity = 0.4
	maxHueShift         = 0.2 // turns
)

// ParticleBase is the untinted particle colour (#8fd7ff).
var ParticleBase = colorful.Color{R: 0x8f / 255.0, G: 0xd7 / 255.0, B: 1}

// Tuning holds the damping rates for camera and particle motion, per second.
type Tuning struct {
	CameraDamping   float64 `yaml:"camera_damping"`
	ParticleDamping float64 `yaml:"particle_damping"`
}

// DefaultTuning returns the standard damping rates.
func DefaultTuning() Tuning {
	return Tuning{CameraDamping: 3, ParticleDamping: 5}
}

// Validate requires positive finite rates.
func (t Tuning) Validate() error {
	for _, v := range []float64{t.CameraDamping, t.ParticleDamping} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.New("damping rates must be positive and finite")
		}
	}
	return nil
}

// SurfaceUniforms are the per-frame inputs of one deforming surface.
type SurfaceUniforms struct {
	Time          float64
	Amplitude     float64
	BassAmplitude float64
	SpectrumTilt  float64
}

// RenderParameters is everything the renderer needs for one frame.
type RenderParameters struct {
	State   State
	Elapsed float64
	Delta   float64

	Core  SurfaceUniforms
	Shell SurfaceUniforms

	BloomStrength float64

	// CameraTarget is where the camera drifts toward; Camera is the damped
	// offset actually used this frame.
	CameraTarget Vec2
	Camera       Vec2

	ParticleSize    float64
	ParticleOpacity float64
	ParticleColor   colorful.Color

	// RotationDelta is the particle field rotation to add this frame, radians.
	RotationDelta float64
}

// Mapper derives RenderParameters from state and features. It owns the
// smoothed camera and particle values, so one Mapper serves one orb.
type Mapper struct {
	tuning       Tuning
	camera       Vec2
	particleSize float64
}

// NewMapper returns a Mapper at rest. Invalid tuning falls back to defaults.
func NewMapper(t Tuning) *Mapper {
	if t.Validate() != nil {
		t = DefaultTuning()
	}
	return &Mapper{tuning: t, particleSize: baseParticleSize}
}

// Reset puts the camera back at the origin and the particles at base size.
func (m *Mapper) Reset() {
	m.camera = Vec2{}
	m.particleSize = baseParticleSize
}

// Map computes one frame of parameters. Features are clamped first; a negative
// or non-finite delta counts as no time passing.
func (m *Mapper) Map(s State, f audio.Features, elapsed, delta float64) RenderParameters {
	f = f.Clamp()
	if !finite(elapsed) {
		elapsed = 0
	}
	if !finite(delta) || delta < 0 {
		delta = 0
	}

	intensity := s.Intensity()
	amp := f.Amplitude

	target := Vec2{
		X: f.SpectralTilt * 0.35,
		Y: math.Sin(elapsed*0.22) * 0.12,
	}
	m.camera = DampVec2(m.camera, target, m.tuning.CameraDamping, delta)
	m.particleSize = Damp(m.particleSize, baseParticleSize+amp*0.02, m.tuning.ParticleDamping, delta)

	return RenderParameters{
		State:   s,
		Elapsed: elapsed,
		Delta:   delta,
		Core: SurfaceUniforms{
			Time:          elapsed,
			Amplitude:     amp*intensity + 0.02,
			BassAmplitude: f.BassEnergy * intensity,
			SpectrumTilt:  f.SpectralTilt,
		},
		Shell: SurfaceUniforms{
			Time:          elapsed * 0.8,
			Amplitude:     amp * (0.8 + intensity*0.4),
			BassAmplitude: f.BassEnergy * 0.5,
			SpectrumTilt:  f.SpectralTilt * 0.5,
		},
		BloomStrength:   0.8 + amp*0.9*intensity,
		CameraTarget:    target,
		Camera:          m.camera,
		ParticleSize:    m.particleSize,
		ParticleOpacity: baseParticleOpacity + amp*0.6,
		ParticleColor:   ParticleTint(amp, f.SpectralTilt),
		RotationDelta:   delta * 0.1 * (1 + amp*0.6),
	}
}

// ParticleTint shifts the base particle colour: hue follows amplitude and
// tilt, lightness follows amplitude.
func ParticleTint(amp, tilt float64) colorful.Color {
	h, s, l := ParticleBase.Hsl()
	shift := math.Max(-maxHueShift, math.Min(maxHueShift, 0.1*amp+tilt*0.05))
	h = math.Mod(h+shift*360, 360)
	if h < 0 {
		h += 360
	}
	l = math.Max(0, math.Min(1, l+amp*0.1))
	return colorful.Hsl(h, s, l).Clamped()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
