package orb

import (
	"errors"
	"fmt"
	"math"
)

// State is the discrete visual mode of the orb.
type State int

const (
	Idle State = iota
	Listening
	Speaking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Speaking:
		return "speaking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Intensity scales the audio response per state. Louder states react harder.
func (s State) Intensity() float64 {
	switch s {
	case Listening:
		return 1.0
	case Speaking:
		return 1.4
	default:
		return 0.6
	}
}

// Thresholds holds the amplitude levels that drive state changes. A state is
// entered above its Enter level and left below Enter minus FallbackMargin.
type Thresholds struct {
	ListeningEnter float64 `yaml:"listening_enter"`
	SpeakingEnter  float64 `yaml:"speaking_enter"`
	FallbackMargin float64 `yaml:"fallback_margin"`
}

// DefaultThresholds returns the standard levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ListeningEnter: 0.05,
		SpeakingEnter:  0.12,
		FallbackMargin: 0.02,
	}
}

// Validate rejects thresholds that would break hysteresis.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.ListeningEnter, t.SpeakingEnter, t.FallbackMargin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("thresholds must be finite")
		}
	}
	if t.ListeningEnter < 0 {
		return fmt.Errorf("listening_enter must be >= 0, got %v", t.ListeningEnter)
	}
	if t.SpeakingEnter <= t.ListeningEnter {
		return fmt.Errorf("speaking_enter (%v) must be above listening_enter (%v)", t.SpeakingEnter, t.ListeningEnter)
	}
	if t.FallbackMargin <= 0 {
		return fmt.Errorf("fallback_margin must be > 0, got %v", t.FallbackMargin)
	}
	return nil
}

// Next applies one transition. Rules are checked in order and the first match
// wins, so Speaking can only fall back to Listening in one step.
func Next(s State, amplitude float64, t Thresholds) State {
	if math.IsNaN(amplitude) {
		amplitude = 0
	}
	switch {
	case s == Idle && amplitude > t.ListeningEnter:
		return Listening
	case s == Listening && amplitude > t.SpeakingEnter:
		return Speaking
	case s == Speaking && amplitude < t.SpeakingEnter-t.FallbackMargin:
		return Listening
	case s == Listening && amplitude < t.ListeningEnter-t.FallbackMargin:
		return Idle
	}
	return s
}

// Machine owns the current state.
type Machine struct {
	state      State
	thresholds Thresholds
}

// NewMachine starts in Idle.
func NewMachine(t Thresholds) *Machine {
	return &Machine{thresholds: t}
}

// Step advances the state for one frame and returns it.
func (m *Machine) Step(amplitude float64) State {
	m.state = Next(m.state, amplitude, m.thresholds)
	return m.state
}

func (m *Machine) State() State { return m.state }

// Reset returns to Idle.
func (m *Machine) Reset() { m.state = Idle }
