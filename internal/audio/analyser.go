package audio

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	defaultFFTSize   = 1024
	defaultSmoothing = 0.8
	defaultMinDB     = -100.0
	defaultMaxDB     = -30.0
)

// Analyser turns the most recent samples into the byte views the feature
// extractor consumes: time-domain bytes centred on 128 and dB-scaled frequency
// bytes with temporal smoothing between refreshes.
type Analyser struct {
	ring      *sampleRing
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	window   []float64
	samples  []float64
	buf      []float64
	spectrum []complex128
	smoothed []float64
	forward  func(dst []complex128, src []float64)
}

// NewAnalyser creates an analyser with a 1024-point FFT and 0.8 smoothing.
func NewAnalyser() (*Analyser, error) {
	return newAnalyser(defaultFFTSize, defaultSmoothing)
}

func newAnalyser(fftSize int, smoothing float64) (*Analyser, error) {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 32, got %d", fftSize)
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}

	window := make([]float64, fftSize)
	for i := range window {
		// Blackman
		x := 2 * math.Pi * float64(i) / float64(fftSize)
		window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}

	return &Analyser{
		ring:      newSampleRing(fftSize * 4),
		fftSize:   fftSize,
		smoothing: clampRange(smoothing, 0, 1),
		minDB:     defaultMinDB,
		maxDB:     defaultMaxDB,
		window:    window,
		samples:   make([]float64, fftSize),
		buf:       make([]float64, fftSize),
		spectrum:  make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
	}, nil
}

// FFTSize is the length of the time-domain window.
func (a *Analyser) FFTSize() int { return a.fftSize }

// BinCount is the number of frequency bins, half the FFT size.
func (a *Analyser) BinCount() int { return a.fftSize / 2 }

// Write feeds mono samples in -1..1. Safe to call from another goroutine.
func (a *Analyser) Write(samples []float64) {
	a.ring.Write(samples)
}

// Reset drops buffered audio and the smoothing history.
func (a *Analyser) Reset() {
	a.ring.Clear()
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// Refresh snapshots the latest window into timeDomain (FFTSize bytes) and
// freq (BinCount bytes). Shorter destination slices are filled as far as they go.
func (a *Analyser) Refresh(timeDomain, freq []uint8) {
	a.ring.Latest(a.samples)

	for i, s := range a.samples {
		if i < len(timeDomain) {
			timeDomain[i] = sampleToByte(s)
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.buf[i] = s * a.window[i]
	}

	a.forward(a.spectrum, a.buf)

	scale := 1 / float64(a.fftSize)
	dbRange := a.maxDB - a.minDB
	for k := range a.smoothed {
		mag := cmplx.Abs(a.spectrum[k]) * scale
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			mag = 0
		}
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k >= len(freq) {
			continue
		}
		if a.smoothed[k] <= 0 {
			freq[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		freq[k] = uint8(clampRange((db-a.minDB)/dbRange*255, 0, 255))
	}
}

func sampleToByte(s float64) uint8 {
	if math.IsNaN(s) {
		return 128
	}
	return uint8(clampRange(math.Floor(128+s*128), 0, 255))
}
