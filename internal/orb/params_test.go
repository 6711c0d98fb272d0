package orb

import (
	"math"
	"testing"

	"github.com/olivier-w/vorb/internal/audio"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMapUniforms(t *testing.T) {
	m := NewMapper(DefaultTuning())
	f := audio.Features{Amplitude: 0.5, BassEnergy: 0.4, SpectralTilt: -0.2}
	p := m.Map(Speaking, f, 10, 0.016)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"core time", p.Core.Time, 10},
		{"core amplitude", p.Core.Amplitude, 0.5*1.4 + 0.02},
		{"core bass", p.Core.BassAmplitude, 0.4 * 1.4},
		{"core tilt", p.Core.SpectrumTilt, -0.2},
		{"shell time", p.Shell.Time, 8},
		{"shell amplitude", p.Shell.Amplitude, 0.5 * (0.8 + 1.4*0.4)},
		{"shell bass", p.Shell.BassAmplitude, 0.2},
		{"shell tilt", p.Shell.SpectrumTilt, -0.1},
		{"bloom", p.BloomStrength, 0.8 + 0.5*0.9*1.4},
		{"camera target x", p.CameraTarget.X, -0.2 * 0.35},
		{"camera target y", p.CameraTarget.Y, math.Sin(10*0.22) * 0.12},
		{"opacity", p.ParticleOpacity, 0.4 + 0.5*0.6},
		{"rotation", p.RotationDelta, 0.016 * 0.1 * (1 + 0.5*0.6)},
	}
	for _, c := range checks {
		if !approxEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if p.State != Speaking || p.Elapsed != 10 || p.Delta != 0.016 {
		t.Fatalf("frame info = %v %v %v", p.State, p.Elapsed, p.Delta)
	}
}

func TestMapDampsCameraAndParticles(t *testing.T) {
	m := NewMapper(DefaultTuning())
	f := audio.Features{Amplitude: 1, SpectralTilt: 1}

	p := m.Map(Listening, f, 0, 0.1)
	wantX := Damp(0, 0.35, 3, 0.1)
	if !approxEqual(p.Camera.X, wantX) {
		t.Fatalf("Camera.X = %v, want %v", p.Camera.X, wantX)
	}
	wantSize := Damp(0.035, 0.055, 5, 0.1)
	if !approxEqual(p.ParticleSize, wantSize) {
		t.Fatalf("ParticleSize = %v, want %v", p.ParticleSize, wantSize)
	}

	for range 200 {
		p = m.Map(Listening, f, 0, 0.1)
	}
	if !approxEqual(p.Camera.X, 0.35) || !approxEqual(p.ParticleSize, 0.055) {
		t.Fatalf("did not converge: camera %v size %v", p.Camera.X, p.ParticleSize)
	}

	m.Reset()
	p = m.Map(Idle, audio.Features{}, 0, 0)
	if p.Camera != (Vec2{}) || p.ParticleSize != 0.035 {
		t.Fatalf("after Reset camera %v size %v", p.Camera, p.ParticleSize)
	}
}

func TestMapZeroDeltaHoldsSmoothedValues(t *testing.T) {
	m := NewMapper(DefaultTuning())
	for _, delta := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		p := m.Map(Speaking, audio.Features{Amplitude: 1, SpectralTilt: 1}, 3, delta)
		if p.Camera != (Vec2{}) {
			t.Fatalf("delta %v moved camera to %v", delta, p.Camera)
		}
		if p.RotationDelta != 0 || p.Delta != 0 {
			t.Fatalf("delta %v gave rotation %v", delta, p.RotationDelta)
		}
	}
}

func TestMapFiniteAtExtremes(t *testing.T) {
	m := NewMapper(DefaultTuning())
	inputs := []audio.Features{
		{},
		{Amplitude: 1, BassEnergy: 1, SpectralTilt: 1},
		{Amplitude: 1, BassEnergy: 1, SpectralTilt: -1},
		{Amplitude: math.NaN(), BassEnergy: math.Inf(1), SpectralTilt: math.Inf(-1)},
	}
	for _, s := range []State{Idle, Listening, Speaking} {
		for _, f := range inputs {
			p := m.Map(s, f, math.NaN(), 1e6)
			vals := []float64{
				p.Core.Time, p.Core.Amplitude, p.Core.BassAmplitude, p.Core.SpectrumTilt,
				p.Shell.Time, p.Shell.Amplitude, p.Shell.BassAmplitude, p.Shell.SpectrumTilt,
				p.BloomStrength, p.CameraTarget.X, p.CameraTarget.Y, p.Camera.X, p.Camera.Y,
				p.ParticleSize, p.ParticleOpacity, p.RotationDelta,
				p.ParticleColor.R, p.ParticleColor.G, p.ParticleColor.B,
			}
			for i, v := range vals {
				if !finite(v) {
					t.Fatalf("state %v features %+v: value %d not finite", s, f, i)
				}
			}
		}
	}
}

func TestParticleTintNeutralAtRest(t *testing.T) {
	c := ParticleTint(0, 0)
	if c.DistanceRgb(ParticleBase) > 1e-6 {
		t.Fatalf("ParticleTint(0,0) = %v, want %v", c.Hex(), ParticleBase.Hex())
	}
	if ParticleTint(1, 1).DistanceRgb(ParticleBase) < 0.01 {
		t.Fatal("expected loud input to shift the tint")
	}
}

func TestNewMapperRejectsBadTuning(t *testing.T) {
	m := NewMapper(Tuning{CameraDamping: -1})
	if m.tuning != DefaultTuning() {
		t.Fatalf("tuning = %+v, want defaults", m.tuning)
	}
}

func TestDamp(t *testing.T) {
	if got := Damp(0, 1, 3, 0); got != 0 {
		t.Fatalf("Damp with dt=0 = %v", got)
	}
	want := 1 - math.Exp(-3*0.5)
	if got := Damp(0, 1, 3, 0.5); !approxEqual(got, want) {
		t.Fatalf("Damp = %v, want %v", got, want)
	}
}
