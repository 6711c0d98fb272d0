package audio

import "math"

// bassFraction is the share of the lowest frequency bins averaged into BassEnergy.
const bassFraction = 0.08

// Features are the per-frame scalars the orb reacts to.
type Features struct {
	Amplitude    float64 // 0..1
	BassEnergy   float64 // 0..1
	SpectralTilt float64 // -1..1, negative leans toward low frequencies
}

// Clamp returns f with every field forced into its range. NaN becomes 0.
func (f Features) Clamp() Features {
	return Features{
		Amplitude:    clampRange(f.Amplitude, 0, 1),
		BassEnergy:   clampRange(f.BassEnergy, 0, 1),
		SpectralTilt: clampRange(f.SpectralTilt, -1, 1),
	}
}

// Extract computes clamped features from byte time-domain samples (centred on
// 128) and byte frequency magnitudes (0-255).
func Extract(timeDomain, freq []uint8) Features {
	return Features{
		Amplitude:    Amplitude(timeDomain),
		BassEnergy:   BassEnergy(freq),
		SpectralTilt: SpectralTilt(freq),
	}.Clamp()
}

// Amplitude returns the RMS level of the centred samples. An empty buffer is silent.
func Amplitude(timeDomain []uint8) float64 {
	if len(timeDomain) == 0 {
		return 0
	}
	var sumSquares float64
	for _, b := range timeDomain {
		v := (float64(b) - 128) / 128
		sumSquares += v * v
	}
	return clampRange(math.Sqrt(sumSquares/float64(len(timeDomain))), 0, 1)
}

// BassEnergy returns the mean normalised magnitude of the lowest bins.
func BassEnergy(freq []uint8) float64 {
	if len(freq) == 0 {
		return 0
	}
	binCount := int(math.Floor(float64(len(freq)) * bassFraction))
	if binCount < 1 {
		binCount = 1
	}
	var sum float64
	for _, b := range freq[:binCount] {
		sum += float64(b) / 255
	}
	return clampRange(sum/float64(binCount), 0, 1)
}

// SpectralTilt returns the magnitude-weighted centroid of the spectrum remapped
// to -1..1 around the middle bin. A silent spectrum has no tilt.
func SpectralTilt(freq []uint8) float64 {
	if len(freq) == 0 {
		return 0
	}
	var weighted, total float64
	for i, b := range freq {
		v := float64(b) / 255
		weighted += v * float64(i)
		total += v
	}
	if total == 0 {
		return 0
	}
	normalized := weighted / total / float64(len(freq))
	return clampRange((normalized-0.5)*2, -1, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
