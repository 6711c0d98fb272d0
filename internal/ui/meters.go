package ui

import (
	"github.com/charmbracelet/harmonica"
)

const (
	meterAmplitude = iota
	meterBass
	meterTilt
	meterCount
)

// meters smooths the HUD levels with springs so bars glide between frames.
type meters struct {
	spring harmonica.Spring
	pos    [meterCount]float64
	vel    [meterCount]float64
}

func newMeters(fps int) meters {
	if fps <= 0 {
		fps = 30
	}
	return meters{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.9)}
}

func (m *meters) step(i int, target float64) float64 {
	p, v := m.spring.Update(m.pos[i], m.vel[i], target)
	m.pos[i] = p
	m.vel[i] = v
	return p
}

// value returns a meter position clamped to 0..1 for drawing.
func (m meters) value(i int) float64 {
	v := m.pos[i]
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m *meters) reset() {
	m.pos = [meterCount]float64{}
	m.vel = [meterCount]float64{}
}
